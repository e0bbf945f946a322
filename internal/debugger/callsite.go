package debugger

import (
	"regexp"

	"shaderdbg/internal/models"
)

// builtinNames are identifiers the host environment provides to every
// shader; call arguments referencing them are always resolvable.
var builtinNames = map[string]bool{
	"fragCoord":          true,
	"fragColor":          true,
	"gl_FragCoord":       true,
	"iResolution":        true,
	"iTime":              true,
	"iTimeDelta":         true,
	"iFrame":             true,
	"iFrameRate":         true,
	"iMouse":             true,
	"iDate":              true,
	"iSampleRate":        true,
	"iChannelTime":       true,
	"iChannelResolution": true,
	"iChannel0":          true,
	"iChannel1":          true,
	"iChannel2":          true,
	"iChannel3":          true,
	"true":               true,
	"false":              true,
}

var identifierTokenPattern = regexp.MustCompile(`[A-Za-z_]\w*`)

// callSite is an invocation of a helper found inside the entry function whose
// arguments are safe to replay verbatim.
type callSite struct {
	line int
	args string
}

// findEntryBoundary locates the program's entry function declaration.
func (e *Engine) findEntryBoundary(lines []string) *models.FunctionBoundary {
	for i, line := range lines {
		m := functionDeclPattern.FindStringSubmatch(line)
		if m == nil || m[2] != e.entryName {
			continue
		}
		return &models.FunctionBoundary{Name: m[2], StartLine: i, EndLine: findFunctionEnd(lines, i)}
	}
	return nil
}

// findEntryCall locates the first call to name inside the entry function and
// checks that its arguments reference only identifiers already defined at the
// call site. An argument with a forward or unknown reference cannot be
// replayed, so nil is returned and the generator falls back to synthesized
// defaults. Calls spanning multiple lines are not recognized.
func (e *Engine) findEntryCall(lines []string, name string) *callSite {
	entry := e.findEntryBoundary(lines)
	if entry == nil || name == e.entryName {
		return nil
	}
	callPattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `\s*\(`)
	start := bodyStartLine(lines, entry)
	for i := start; i <= entry.EndLine && i < len(lines); i++ {
		loc := callPattern.FindStringIndex(lines[i])
		if loc == nil {
			continue
		}
		args, ok := sliceArguments(lines[i], loc[1]-1)
		if !ok {
			return nil
		}
		if !e.argumentsResolvable(lines, entry, i, args) {
			return nil
		}
		return &callSite{line: i, args: args}
	}
	return nil
}

// sliceArguments extracts the argument list between the parenthesis at open
// and its match on the same line, without the outer parens.
func sliceArguments(line string, open int) (string, bool) {
	depth := 0
	for i := open; i < len(line); i++ {
		switch line[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return line[open+1 : i], true
			}
		}
	}
	return "", false
}

// argumentsResolvable checks every identifier token in args against the names
// known inside the entry function up to the call line. Tokens followed by `(`
// are calls or constructors and are skipped, as are member accesses after a
// dot.
func (e *Engine) argumentsResolvable(lines []string, entry *models.FunctionBoundary, callLine int, args string) bool {
	table := buildTypeTable(lines, entry, callLine)
	for _, loc := range identifierTokenPattern.FindAllStringIndex(args, -1) {
		token := args[loc[0]:loc[1]]
		if loc[0] > 0 && args[loc[0]-1] == '.' {
			continue
		}
		if isCallToken(args, loc[1]) {
			continue
		}
		if builtinNames[token] {
			continue
		}
		if _, ok := models.ParseType(token); ok {
			continue
		}
		if _, ok := table[token]; !ok {
			return false
		}
	}
	return true
}

func isCallToken(s string, end int) bool {
	for i := end; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t':
			continue
		case '(':
			return true
		default:
			return false
		}
	}
	return false
}
