// Package session holds the caller-owned override state for one debug view.
// The engine's entry points are pure; whoever integrates them (editor panel,
// CLI, watch loop) owns a Session and lets it track the resolved function
// name. Overrides are keyed by parameter slot and loop discovery index, so
// they must never survive a change of enclosing function: an index that meant
// "radius" in one function may mean "direction" in another.
package session

import (
	"shaderdbg/internal/debugger"
	"shaderdbg/internal/models"
)

type Session struct {
	lastFunction   string
	loopCaps       map[int]int
	paramOverrides map[int]string
}

func New() *Session {
	return &Session{
		loopCaps:       make(map[int]int),
		paramOverrides: make(map[int]string),
	}
}

// Track records the function the cursor currently resolves to. Whenever the
// name changes, both override maps are cleared.
func (s *Session) Track(functionName string) {
	if functionName == s.lastFunction {
		return
	}
	s.lastFunction = functionName
	s.ClearOverrides()
}

func (s *Session) ClearOverrides() {
	s.loopCaps = make(map[int]int)
	s.paramOverrides = make(map[int]string)
}

func (s *Session) SetLoopCap(index, maxIter int) {
	s.loopCaps[index] = maxIter
}

func (s *Session) SetParamOverride(index int, expr string) {
	s.paramOverrides[index] = expr
}

// Options assembles the engine options for the current state. The maps are
// copied so a later Track cannot mutate an in-flight query.
func (s *Session) Options(mode models.NormalizeMode, stepEdge *float64) debugger.Options {
	caps := make(map[int]int, len(s.loopCaps))
	for k, v := range s.loopCaps {
		caps[k] = v
	}
	params := make(map[int]string, len(s.paramOverrides))
	for k, v := range s.paramOverrides {
		params[k] = v
	}
	return debugger.Options{
		LoopCaps:       caps,
		ParamOverrides: params,
		NormalizeMode:  mode,
		StepEdge:       stepEdge,
	}
}

// Annotate folds the recorded overrides into an extracted function context
// for display: loop caps onto MaxIter, parameter overrides onto CustomValue.
func (s *Session) Annotate(ctx *models.DebugFunctionContext) {
	if ctx == nil {
		return
	}
	for i := range ctx.Loops {
		if maxIter, ok := s.loopCaps[ctx.Loops[i].LoopIndex]; ok {
			m := maxIter
			ctx.Loops[i].MaxIter = &m
		}
	}
	for i := range ctx.Parameters {
		if expr, ok := s.paramOverrides[i]; ok {
			ctx.Parameters[i].CustomValue = expr
			ctx.Parameters[i].Mode = models.ParameterModeCustom
		}
	}
}
