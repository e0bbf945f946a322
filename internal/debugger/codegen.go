package debugger

import (
	"fmt"
	"regexp"
	"strings"

	"shaderdbg/internal/models"
)

// pathKind keys the four mutually exclusive generation paths. Classification
// depends only on whether the line resolved to a target and what kind of
// scope encloses it.
type pathKind int

const (
	pathTopLevel pathKind = iota
	pathEntryTruncate
	pathHelperTarget
	pathHelperFull
)

func classifyPath(boundary *models.FunctionBoundary, target *models.DebugTarget, entryName string) pathKind {
	switch {
	case boundary == nil:
		return pathTopLevel
	case boundary.Name == entryName:
		return pathEntryTruncate
	case target != nil:
		return pathHelperTarget
	default:
		return pathHelperFull
	}
}

var (
	controlFlowPattern   = regexp.MustCompile(`^\s*\}?\s*(if|else|while)\b`)
	bareClosePattern     = regexp.MustCompile(`^\s*\}\s*;?\s*$`)
	bareOpenPattern      = regexp.MustCompile(`^\s*\{\s*$`)
	returnLinePattern    = regexp.MustCompile(`^\s*return\s+(.+?)\s*;`)
	breakContinuePattern = regexp.MustCompile(`^\s*(break|continue)\s*;`)
)

// flattenControlFlow copies lines[from..to] into dst so a truncated body
// stays brace-balanced. A loop whose body closes inside the range is kept
// whole, with caps applied. Only a loop the cut falls inside dissolves to
// its initializer statement: the iteration goes away but later references to
// the loop variable stay valid. Conditional headers and their bare braces
// are dropped, along with break/continue statements stranded by a dissolved
// loop.
func flattenControlFlow(dst []string, lines []string, from, to int, sites []loopSite, caps map[int]int) []string {
	siteByLine := make(map[int]loopSite, len(sites))
	for _, s := range sites {
		siteByLine[s.line] = s
	}
	for i := from; i <= to && i < len(lines); i++ {
		line := lines[i]
		if s, found := siteByLine[i]; found {
			braced := strings.Contains(line, "{") ||
				(i+1 < len(lines) && bareOpenPattern.MatchString(lines[i+1]))
			if braced {
				if end := findFunctionEnd(lines, i); end <= to {
					dst = emitCappedBody(dst, lines, i, end, sites, caps)
					i = end
					continue
				}
			}
			if s.init != "" {
				dst = append(dst, leadingWhitespace(line)+s.init+";")
			}
			continue
		}
		switch {
		case controlFlowPattern.MatchString(line),
			bareClosePattern.MatchString(line),
			bareOpenPattern.MatchString(line),
			breakContinuePattern.MatchString(line):
			// dropped
		default:
			dst = append(dst, line)
		}
	}
	return dst
}

// visualizationStatement maps a typed value into the four-channel output.
// Scalars replicate across RGB with full alpha; vec2 fills the two remaining
// channels with zero and one; matrices show their leading columns.
func visualizationStatement(name string, t models.GlslType) (string, bool) {
	switch t {
	case models.TypeFloat:
		return fmt.Sprintf("    fragColor = vec4(%s, %s, %s, 1.0);", name, name, name), true
	case models.TypeInt:
		f := fmt.Sprintf("float(%s)", name)
		return fmt.Sprintf("    fragColor = vec4(%s, %s, %s, 1.0);", f, f, f), true
	case models.TypeBool:
		f := fmt.Sprintf("(%s ? 1.0 : 0.0)", name)
		return fmt.Sprintf("    fragColor = vec4(%s, %s, %s, 1.0);", f, f, f), true
	case models.TypeVec2:
		return fmt.Sprintf("    fragColor = vec4(%s, 0.0, 1.0);", name), true
	case models.TypeVec3:
		return fmt.Sprintf("    fragColor = vec4(%s, 1.0);", name), true
	case models.TypeVec4:
		return fmt.Sprintf("    fragColor = %s;", name), true
	case models.TypeMat2:
		return fmt.Sprintf("    fragColor = vec4(%s[0], %s[1]);", name, name), true
	case models.TypeMat3:
		return fmt.Sprintf("    fragColor = vec4(%s[0], 1.0);", name), true
	case models.TypeMat4:
		return fmt.Sprintf("    fragColor = %s[0];", name), true
	default:
		return "", false
	}
}

func (e *Engine) entryDeclLine() string {
	return "void " + e.entryName + "(out vec4 fragColor, in vec2 fragCoord) {"
}

// generateTopLevel wraps a single top-level line in a fresh entry function.
func (e *Engine) generateTopLevel(lineText string, target *models.DebugTarget) (string, bool) {
	if target == nil {
		return "", false
	}
	vis, ok := visualizationStatement(target.Name, target.Type)
	if !ok {
		return "", false
	}
	out := []string{
		e.entryDeclLine(),
		"    " + strings.TrimSpace(lineText),
	}
	if target.Name == models.DebugReturnName {
		out = rebindTrailingReturn(out, target.Type)
	}
	out = append(out, vis, "}")
	return strings.Join(out, "\n"), true
}

// generateEntryTruncation truncates the program through the debug line inside
// the entry function itself. Without a target there is nothing to show: the
// entry function has no whole-program fallback.
func (e *Engine) generateEntryTruncation(lines []string, b *models.FunctionBoundary, debugLine int, target *models.DebugTarget, opts Options) (string, bool) {
	if target == nil {
		return "", false
	}
	vis, ok := visualizationStatement(target.Name, target.Type)
	if !ok {
		return "", false
	}
	start := bodyStartLine(lines, b)
	sites := scanLoops(lines, b.StartLine, debugLine)
	out := make([]string, 0, debugLine+4)
	out = append(out, lines[:start]...)
	out = flattenControlFlow(out, lines, start, debugLine, sites, opts.LoopCaps)
	if target.Name == models.DebugReturnName {
		out = rebindTrailingReturn(out, target.Type)
	}
	out = append(out, vis, "}")
	return strings.Join(out, "\n"), true
}

// rebindTrailingReturn turns the copied `return <expr>;` debug line into a
// `<type> _dbgReturn = <expr>;` binding. Left as a return it would exit the
// entry function before the visualization runs.
func rebindTrailingReturn(out []string, t models.GlslType) []string {
	for i := len(out) - 1; i >= 0; i-- {
		m := returnLinePattern.FindStringSubmatch(out[i])
		if m == nil {
			continue
		}
		out[i] = fmt.Sprintf("%s%s %s = %s;", leadingWhitespace(out[i]), t, models.DebugReturnName, m[1])
		break
	}
	return out
}

// generateHelperTarget copies the helper through the debug line, repairs its
// declared return type when the target type disagrees, and synthesizes an
// entry function that calls it and visualizes the result.
func (e *Engine) generateHelperTarget(lines []string, b *models.FunctionBoundary, sig *functionSignature, debugLine int, target *models.DebugTarget, opts Options) (string, bool) {
	if sig == nil {
		return "", false
	}
	out := make([]string, 0, len(lines)+8)
	out = appendPrefixWithoutEntry(out, lines, b.StartLine, e.entryName)
	out = append(out, rewriteReturnType(lines[b.StartLine], sig.ReturnType, target.Type))
	start := bodyStartLine(lines, b)
	if start > b.StartLine+1 {
		// Opening brace on its own line below the declaration.
		out = append(out, lines[b.StartLine+1:start]...)
	}
	sites := scanLoops(lines, b.StartLine, debugLine)
	out = flattenControlFlow(out, lines, start, debugLine, sites, opts.LoopCaps)
	if target.Name != models.DebugReturnName {
		out = append(out, "    return "+target.Name+";")
	}
	out = append(out, "}", "")
	entry, ok := e.synthesizeEntry(lines, sig, target.Type, opts)
	if !ok {
		return "", false
	}
	out = append(out, entry...)
	return strings.Join(out, "\n"), true
}

// generateHelperFull copies the helper untouched except for loop caps and
// synthesizes an entry function visualizing the helper's actual return
// value. A void helper has no result to show, so the path fails.
func (e *Engine) generateHelperFull(lines []string, b *models.FunctionBoundary, sig *functionSignature, opts Options) (string, bool) {
	if sig == nil || sig.ReturnType == models.TypeVoid || sig.ReturnType == "" {
		return "", false
	}
	out := make([]string, 0, len(lines)+8)
	out = appendPrefixWithoutEntry(out, lines, b.StartLine, e.entryName)
	sites := scanLoops(lines, b.StartLine, b.EndLine)
	out = emitCappedBody(out, lines, b.StartLine, b.EndLine, sites, opts.LoopCaps)
	out = append(out, "")
	entry, ok := e.synthesizeEntry(lines, sig, sig.ReturnType, opts)
	if !ok {
		return "", false
	}
	out = append(out, entry...)
	return strings.Join(out, "\n"), true
}

// appendPrefixWithoutEntry copies lines[0..upTo-1] verbatim, skipping an
// entry function that happens to precede the helper; the generated program
// appends its own entry function and must not end up with two.
func appendPrefixWithoutEntry(dst []string, lines []string, upTo int, entryName string) []string {
	skipFrom, skipTo := -1, -1
	for i := 0; i < upTo && i < len(lines); i++ {
		m := functionDeclPattern.FindStringSubmatch(lines[i])
		if m != nil && m[2] == entryName {
			skipFrom = i
			skipTo = findFunctionEnd(lines, i)
			break
		}
	}
	for i := 0; i < upTo && i < len(lines); i++ {
		if skipFrom >= 0 && i >= skipFrom && i <= skipTo {
			continue
		}
		dst = append(dst, lines[i])
	}
	return dst
}

// rewriteReturnType swaps the declared return type token on a declaration
// line for the resolved target type.
func rewriteReturnType(declLine string, declared, target models.GlslType) string {
	if declared == "" || declared == target {
		return declLine
	}
	idx := strings.Index(declLine, string(declared))
	if idx < 0 {
		return declLine
	}
	return declLine[:idx] + string(target) + declLine[idx+len(declared):]
}

// synthesizeEntry builds the replacement entry function. When the helper is
// invoked from the original entry function with replayable arguments, the
// entry statements preceding the call are replayed and the literal arguments
// reused; otherwise every parameter gets its override or synthesized default.
func (e *Engine) synthesizeEntry(lines []string, sig *functionSignature, resultType models.GlslType, opts Options) ([]string, bool) {
	vis, ok := visualizationStatement(models.DebugReturnName, resultType)
	if !ok {
		return nil, false
	}
	out := []string{e.entryDeclLine()}
	if call := e.findEntryCall(lines, sig.Name); call != nil {
		entry := e.findEntryBoundary(lines)
		// Replayed entry loops are not the tracked function's loops, so the
		// caller's caps do not apply to them.
		sites := scanLoops(lines, entry.StartLine, call.line-1)
		out = flattenControlFlow(out, lines, bodyStartLine(lines, entry), call.line-1, sites, nil)
		out = append(out, fmt.Sprintf("    %s %s = %s(%s);", resultType, models.DebugReturnName, sig.Name, call.args))
	} else {
		args := make([]string, len(sig.Params))
		needsUV := false
		for i, p := range sig.Params {
			if override, has := opts.ParamOverrides[i]; has && override != "" {
				args[i] = override
				continue
			}
			expr, usesUV := e.defaultValueFor(p.Type)
			args[i] = expr
			needsUV = needsUV || usesUV
		}
		if needsUV {
			out = append(out, uvSetupLine)
		}
		out = append(out, fmt.Sprintf("    %s %s = %s(%s);", resultType, models.DebugReturnName, sig.Name, strings.Join(args, ", ")))
	}
	out = append(out, vis, "}")
	return out, true
}
