package debugger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"shaderdbg/internal/models"
)

var outputAssignPattern = regexp.MustCompile(`fragColor\s*=\s*([^;]+);`)

// ApplyPostProcess rewrites the final output-color assignment of a finished
// program, either one generated here or the unmodified original. Soft
// normalization remaps signed values so zero shows as mid-gray; abs shows
// magnitude; a step edge binarizes after the normalize step. Only the output
// expression is rewritten; control flow is never touched. Source without a
// recognizable output assignment comes back unchanged.
func (e *Engine) ApplyPostProcess(source string, mode models.NormalizeMode, stepEdge *float64) string {
	if (mode == "" || mode == models.NormalizeOff) && stepEdge == nil {
		return source
	}
	locs := outputAssignPattern.FindAllStringSubmatchIndex(source, -1)
	if len(locs) == 0 {
		return source
	}
	last := locs[len(locs)-1]
	expr := strings.TrimSpace(source[last[2]:last[3]])

	rgb := fmt.Sprintf("(%s).rgb", expr)
	switch mode {
	case models.NormalizeSoft:
		rgb = fmt.Sprintf("0.5 + 0.5 * %s", rgb)
	case models.NormalizeAbs:
		rgb = fmt.Sprintf("abs(%s)", rgb)
	}
	if stepEdge != nil {
		rgb = fmt.Sprintf("step(vec3(%s), %s)", glslFloat(*stepEdge), rgb)
	}
	replacement := fmt.Sprintf("vec4(%s, 1.0)", rgb)
	return source[:last[2]] + replacement + source[last[3]:]
}

// glslFloat renders a float literal that GLSL accepts as a float, never as
// an int.
func glslFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
