// Package stages implements the ordered pattern trials that resolve a single
// source line to a debug target. Each trial is a self-contained matcher
// behind the Stage interface, so a grammar-based detector could replace any
// one of them without touching callers. Multi-line statements are out of
// scope: a stage sees exactly one line of text.
package stages

import (
	"regexp"

	"shaderdbg/internal/models"
)

// LineContext is what a stage may consult besides the line text itself.
type LineContext struct {
	// Types maps identifiers visible at the queried line to their types.
	Types map[string]models.GlslType
	// ReturnType is the enclosing function's declared return type, or ""
	// when the line sits at top level.
	ReturnType models.GlslType
}

// Stage inspects one line of source and returns nil when its pattern does
// not apply. Detection is pure: identical inputs yield identical results.
type Stage interface {
	Name() string
	Detect(line string, ctx *LineContext) *models.DebugTarget
}

// Ordered returns the fixed trial sequence. The order resolves ambiguous
// lines deterministically; there is no partial-success state.
func Ordered() []Stage {
	return []Stage{
		NewReturnStage(),
		NewDeclarationStage(),
		NewReassignmentStage(),
		NewSwizzleStage(),
	}
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)
