package debugger

import (
	"regexp"

	"shaderdbg/internal/models"
)

// declarationTypes are the six non-opaque types the table scan tracks.
// Matrices and samplers enter the table only through parameter seeding.
var declarationTypes = []models.GlslType{
	models.TypeFloat,
	models.TypeInt,
	models.TypeBool,
	models.TypeVec2,
	models.TypeVec3,
	models.TypeVec4,
}

var declarationPatterns = buildDeclarationPatterns()

func buildDeclarationPatterns() map[models.GlslType]*regexp.Regexp {
	patterns := make(map[models.GlslType]*regexp.Regexp, len(declarationTypes))
	for _, t := range declarationTypes {
		patterns[t] = regexp.MustCompile(`\b` + string(t) + `\s+([A-Za-z_]\w*)\s*[=;]`)
	}
	return patterns
}

// buildTypeTable records declared variable types from the function start (or
// file start when boundary is nil) through upTo inclusive. Parameters are
// seeded first from the enclosing declaration line, then every declaration
// statement in range is applied in line order; a later declaration of the
// same name overwrites the earlier one. This is last-writer-wins, not true
// block scoping.
func buildTypeTable(lines []string, boundary *models.FunctionBoundary, upTo int) map[string]models.GlslType {
	table := make(map[string]models.GlslType)
	start := 0
	if boundary != nil {
		start = boundary.StartLine
		if sig := parseFunctionSignature(lines[boundary.StartLine]); sig != nil {
			for _, p := range sig.Params {
				table[p.Name] = p.Type
			}
		}
	}
	if upTo >= len(lines) {
		upTo = len(lines) - 1
	}
	for i := start; i <= upTo; i++ {
		for _, t := range declarationTypes {
			for _, m := range declarationPatterns[t].FindAllStringSubmatch(lines[i], -1) {
				table[m[1]] = t
			}
		}
	}
	return table
}
