package debugger

import (
	"fmt"
	"regexp"
	"strings"
)

// loopHeaderPattern matches a `for (init; cond; step)` header on one line.
var loopHeaderPattern = regexp.MustCompile(`\bfor\s*\(([^;]*);([^;]*);([^)]*)\)`)

// loopSite is one discovered iteration construct. Sites are numbered in
// discovery order starting at zero; the override map is keyed by that index.
type loopSite struct {
	index  int
	line   int
	header string
	init   string
}

// scanLoops walks lines[start..end] and records every for-header with its
// discovery index, source line and verbatim header text.
func scanLoops(lines []string, start, end int) []loopSite {
	var sites []loopSite
	if end >= len(lines) {
		end = len(lines) - 1
	}
	if start < 0 {
		start = 0
	}
	for i := start; i <= end; i++ {
		m := loopHeaderPattern.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		sites = append(sites, loopSite{
			index:  len(sites),
			line:   i,
			header: m[0],
			init:   strings.TrimSpace(m[1]),
		})
	}
	return sites
}

// counterName is the injected per-loop counter identifier. The name is
// matched verbatim by downstream tooling; do not change the format.
func counterName(index int) string {
	return fmt.Sprintf("_dbgIter%d", index)
}

// emitCappedBody copies lines[from..to] into dst, bounding every capped loop.
// A cap rewrites the loop into a unique counter declared immediately before
// the header and a break guard injected as the loop's first body statement;
// the loop's own condition and step are left untouched so accumulated state
// keeps its meaning up to the cap. Uncapped loops are emitted unchanged, as
// is a capped loop with a brace-less single-statement body, which has no
// slot to hold the guard.
func emitCappedBody(dst []string, lines []string, from, to int, sites []loopSite, caps map[int]int) []string {
	siteByLine := make(map[int]loopSite, len(sites))
	for _, s := range sites {
		siteByLine[s.line] = s
	}
	for i := from; i <= to && i < len(lines); i++ {
		line := lines[i]
		s, found := siteByLine[i]
		if !found {
			dst = append(dst, line)
			continue
		}
		max, capped := caps[s.index]
		if !capped {
			dst = append(dst, line)
			continue
		}
		indent := leadingWhitespace(line)
		name := counterName(s.index)
		decl := fmt.Sprintf("%sint %s = 0;", indent, name)
		guard := fmt.Sprintf("%s    if (++%s > %d) break;", indent, name, max)
		switch {
		case strings.Contains(line, "{"):
			dst = append(dst, decl, line, guard)
		case i+1 <= to && i+1 < len(lines) && strings.TrimSpace(lines[i+1]) == "{":
			dst = append(dst, decl, line, lines[i+1], guard)
			i++
		default:
			dst = append(dst, line)
		}
	}
	return dst
}
