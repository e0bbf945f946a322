package stages

import (
	"regexp"

	"shaderdbg/internal/models"
)

// SwizzleStage matches member and swizzle assignments (`x.y = ...`,
// `x.rgb *= ...`) on a known identifier. The target is the whole variable,
// not the written components, so the visualization shows the full value.
type SwizzleStage struct {
	pattern *regexp.Regexp
}

func NewSwizzleStage() *SwizzleStage {
	return &SwizzleStage{
		pattern: regexp.MustCompile(`^\s*([A-Za-z_]\w*)\.(\w+)\s*(\+=|-=|\*=|/=|=)\s*[^=]`),
	}
}

func (s *SwizzleStage) Name() string {
	return "swizzle"
}

func (s *SwizzleStage) Detect(line string, ctx *LineContext) *models.DebugTarget {
	m := s.pattern.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	t, ok := ctx.Types[m[1]]
	if !ok {
		return nil
	}
	return &models.DebugTarget{Name: m[1], Type: t}
}
