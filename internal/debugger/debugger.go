package debugger

import (
	"regexp"
	"strings"

	"shaderdbg/internal/config"
	"shaderdbg/internal/debugger/stages"
	"shaderdbg/internal/models"
)

// Engine rewrites shader source into standalone single-entry-point debug
// programs. It holds no mutable state; every call is a pure function of its
// inputs, so a single Engine is safe to share across goroutines.
type Engine struct {
	entryName      string
	uvExpr         string
	defaultChannel string
	stages         []stages.Stage
}

// Options carries the caller-owned per-query knobs. Both maps are keyed by
// discovery index (loop index, parameter slot) and belong to the host; see
// the session package for the invalidation rules.
type Options struct {
	LoopCaps       map[int]int
	ParamOverrides map[int]string
	NormalizeMode  models.NormalizeMode
	StepEdge       *float64
}

func New() *Engine {
	return &Engine{
		entryName:      "mainImage",
		uvExpr:         "uv",
		defaultChannel: "iChannel0",
		stages:         stages.Ordered(),
	}
}

func NewWithConfig(cfg *config.Config) *Engine {
	e := New()
	if cfg == nil {
		return e
	}
	if cfg.Engine.EntryFunction != "" {
		e.entryName = cfg.Engine.EntryFunction
	}
	if cfg.Engine.UVExpression != "" {
		e.uvExpr = cfg.Engine.UVExpression
	}
	if cfg.Engine.DefaultChannel != "" {
		e.defaultChannel = cfg.Engine.DefaultChannel
	}
	return e
}

// ModifyShaderForDebugging rewrites source into a well-formed program that
// computes and displays the value found at debugLine. lineText is supplied by
// the caller rather than re-read from source so detection stays byte-for-byte
// consistent with what the user is viewing. The bool result is false for
// every expected "nothing to visualize here" condition; those are not errors.
func (e *Engine) ModifyShaderForDebugging(source string, debugLine int, lineText string, opts Options) (string, bool) {
	lines := splitLines(source)
	if debugLine < 0 || debugLine >= len(lines) {
		return "", false
	}

	boundary := resolveFunctionBoundary(lines, debugLine)
	var sig *functionSignature
	returnType := models.GlslType("")
	if boundary != nil {
		sig = parseFunctionSignature(lines[boundary.StartLine])
		if sig != nil {
			returnType = sig.ReturnType
		}
	}
	table := buildTypeTable(lines, boundary, debugLine)
	target := e.detectTarget(lineText, table, returnType)

	var out string
	var ok bool
	switch classifyPath(boundary, target, e.entryName) {
	case pathTopLevel:
		out, ok = e.generateTopLevel(lineText, target)
	case pathEntryTruncate:
		out, ok = e.generateEntryTruncation(lines, boundary, debugLine, target, opts)
	case pathHelperTarget:
		out, ok = e.generateHelperTarget(lines, boundary, sig, debugLine, target, opts)
	case pathHelperFull:
		out, ok = e.generateHelperFull(lines, boundary, sig, opts)
	}
	if !ok {
		return "", false
	}
	return e.ApplyPostProcess(out, opts.NormalizeMode, opts.StepEdge), true
}

// detectTarget runs the ordered stage trials against exactly the queried
// line's text.
func (e *Engine) detectTarget(lineText string, table map[string]models.GlslType, returnType models.GlslType) *models.DebugTarget {
	ctx := &stages.LineContext{Types: table, ReturnType: returnType}
	for _, stage := range e.stages {
		if target := stage.Detect(lineText, ctx); target != nil {
			return target
		}
	}
	return nil
}

func splitLines(source string) []string {
	return strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
}

var indentPattern = regexp.MustCompile(`^[ \t]*`)

func leadingWhitespace(line string) string {
	return indentPattern.FindString(line)
}

// bodyStartLine returns the index of the first body line of a function,
// skipping past an opening brace that sits on the declaration line or alone
// on the line below it.
func bodyStartLine(lines []string, b *models.FunctionBoundary) int {
	if strings.Contains(lines[b.StartLine], "{") {
		return b.StartLine + 1
	}
	for i := b.StartLine + 1; i <= b.EndLine && i < len(lines); i++ {
		if strings.Contains(lines[i], "{") {
			return i + 1
		}
	}
	return b.StartLine + 1
}
