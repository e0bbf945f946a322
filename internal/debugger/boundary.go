package debugger

import (
	"regexp"
	"strings"

	"shaderdbg/internal/models"
)

// functionDeclPattern matches a `returnType name(` declaration at the start
// of a line.
var functionDeclPattern = regexp.MustCompile(`^\s*(float|int|bool|void|vec2|vec3|vec4|mat2|mat3|mat4)\s+([A-Za-z_]\w*)\s*\(`)

var parameterPattern = regexp.MustCompile(`\b(float|int|bool|vec2|vec3|vec4|mat2|mat3|mat4|sampler2D)\s+([A-Za-z_]\w*)`)

// resolveFunctionBoundary finds the function enclosing line, or nil when the
// line sits at top level.
//
// It walks backward from line, decrementing a brace-depth counter on `{` and
// incrementing on `}`. Negative depth means the walk sits inside a scope that
// opened at or above the current line, so a declaration met there encloses
// the query. The `}...{` pairs of a closed nested block cancel out and the
// walk keeps going; depth may be transiently positive while crossing one. A
// declaration met back at depth zero belongs to an already-closed function,
// with one exception: the query line being the declaration itself, its
// opening brace alone on the line below. Lines inside nested control-flow
// blocks still resolve to the function; this resolver is function-granularity
// only.
func resolveFunctionBoundary(lines []string, line int) *models.FunctionBoundary {
	if line < 0 || line >= len(lines) {
		return nil
	}
	depth := 0
	for i := line; i >= 0; i-- {
		text := lines[i]
		for _, ch := range text {
			switch ch {
			case '{':
				depth--
			case '}':
				depth++
			}
		}
		m := functionDeclPattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		enclosing := depth < 0
		if !enclosing && depth == 0 && i == line {
			enclosing = i+1 < len(lines) && strings.Contains(lines[i+1], "{")
		}
		if enclosing {
			return &models.FunctionBoundary{
				Name:      m[2],
				StartLine: i,
				EndLine:   findFunctionEnd(lines, i),
			}
		}
	}
	return nil
}

// findFunctionEnd brace-matches forward from the declaration line.
func findFunctionEnd(lines []string, start int) int {
	depth := 0
	opened := false
	for i := start; i < len(lines); i++ {
		for _, ch := range lines[i] {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if opened && depth <= 0 {
			return i
		}
	}
	return len(lines) - 1
}

type functionParameter struct {
	Name string
	Type models.GlslType
}

type functionSignature struct {
	ReturnType models.GlslType
	Name       string
	Params     []functionParameter
}

// parseFunctionSignature reads a declaration line into its return type, name
// and parameter list. Qualifiers (in/out/inout) are skipped because the
// parameter pattern anchors on the type keyword. Declarations spanning
// multiple lines are not handled.
func parseFunctionSignature(line string) *functionSignature {
	m := functionDeclPattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	sig := &functionSignature{Name: m[2]}
	sig.ReturnType, _ = models.ParseType(m[1])

	open := strings.Index(line, "(")
	if open < 0 {
		return sig
	}
	params := line[open+1:]
	if end := strings.Index(params, ")"); end >= 0 {
		params = params[:end]
	}
	for _, piece := range strings.Split(params, ",") {
		pm := parameterPattern.FindStringSubmatch(piece)
		if pm == nil {
			continue
		}
		t, _ := models.ParseType(pm[1])
		sig.Params = append(sig.Params, functionParameter{Name: pm[2], Type: t})
	}
	return sig
}
