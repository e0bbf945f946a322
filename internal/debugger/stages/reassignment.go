package stages

import (
	"regexp"

	"shaderdbg/internal/models"
)

// ReassignmentStage matches plain and compound assignments to a bare
// identifier (`x = ...`, `x *= ...`). The identifier must already be in the
// type table; an assignment to an unknown name yields nothing.
type ReassignmentStage struct {
	pattern *regexp.Regexp
}

func NewReassignmentStage() *ReassignmentStage {
	return &ReassignmentStage{
		// `[^=]` after the operator keeps `x == y` comparisons from matching.
		pattern: regexp.MustCompile(`^\s*([A-Za-z_]\w*)\s*(\+=|-=|\*=|/=|=)\s*[^=]`),
	}
}

func (s *ReassignmentStage) Name() string {
	return "reassignment"
}

func (s *ReassignmentStage) Detect(line string, ctx *LineContext) *models.DebugTarget {
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
