package stages

import (
	"regexp"

	"shaderdbg/internal/models"
)

// ReturnStage matches `return <expr>;` lines. The returned expression has no
// bound name, so the target uses the synthetic DebugReturnName binding.
type ReturnStage struct {
	pattern *regexp.Regexp
}

func NewReturnStage() *ReturnStage {
	return &ReturnStage{
		pattern: regexp.MustCompile(`^\s*return\s+(.+?)\s*;`),
	}
}

func (s *ReturnStage) Name() string {
	return "return"
}

func (s *ReturnStage) Detect(line string, ctx *LineContext) *models.DebugTarget {
	m := s.pattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	// A returned bare identifier reports its table type, which may disagree
	// with the declared return type; the generator repairs the signature.
	if expr := m[1]; identifierPattern.MatchString(expr) {
		if t, ok := ctx.Types[expr]; ok {
			return &models.DebugTarget{Name: models.DebugReturnName, Type: t}
		}
	}
	if ctx.ReturnType == "" || ctx.ReturnType == models.TypeVoid {
		return nil
	}
	return &models.DebugTarget{Name: models.DebugReturnName, Type: ctx.ReturnType}
}
