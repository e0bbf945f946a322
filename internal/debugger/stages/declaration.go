package stages

import (
	"regexp"

	"shaderdbg/internal/models"
)

// DeclarationStage matches `type name = ...` lines. The declared type is
// used directly, bypassing the type table.
type DeclarationStage struct {
	pattern *regexp.Regexp
}

func NewDeclarationStage() *DeclarationStage {
	return &DeclarationStage{
		pattern: regexp.MustCompile(`^\s*(float|int|bool|vec2|vec3|vec4|mat2|mat3|mat4)\s+([A-Za-z_]\w*)\s*=\s*[^=]`),
	}
}

func (s *DeclarationStage) Name() string {
	return "declaration"
}

func (s *DeclarationStage) Detect(line string, ctx *LineContext) *models.DebugTarget {
	m := s.pattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	t, ok := models.ParseType(m[1])
	if !ok {
		return nil
	}
	return &models.DebugTarget{Name: m[2], Type: t}
}
