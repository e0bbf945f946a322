package debugger

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaderdbg/internal/models"
)

func loadRaymarch(t *testing.T) (string, []string) {
	t.Helper()
	data, err := os.ReadFile("../../testdata/raymarch.frag")
	require.NoError(t, err)
	source := string(data)
	return source, splitLines(source)
}

func assertBalancedBraces(t *testing.T, generated string) {
	t.Helper()
	assert.Equal(t, strings.Count(generated, "{"), strings.Count(generated, "}"),
		"generated program has unbalanced braces:\n%s", generated)
}

func assertSingleEntry(t *testing.T, generated string) {
	t.Helper()
	assert.Equal(t, 1, strings.Count(generated, "void mainImage("),
		"generated program must declare exactly one entry function:\n%s", generated)
}

// Debugging inside a helper that the entry function never calls directly
// must synthesize default arguments and must not leak the intermediate
// caller's parameters into the generated program.
func TestHelperCalledOnlyByAnotherHelper(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	// float w = sqrt(r * r - h * h); inside sdCutHollowSphere
	line := 7
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{})
	require.True(t, ok)

	assert.Contains(t, out, "float _dbgReturn = sdCutHollowSphere(vec3(0.5), 0.5, 0.5, 0.5);")
	assert.Contains(t, out, "    return w;")
	assert.Contains(t, out, "fragColor = vec4(_dbgReturn, _dbgReturn, _dbgReturn, 1.0);")
	// map()'s own parameter and call arguments never appear.
	assert.NotContains(t, out, "jt")
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// A loop cap injects exactly one counter declaration and one guard carrying
// the literal bound.
func TestLoopCapInjection(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	// Declaration line of rayMarch: no value on the line, so the whole
	// helper body runs with the cap applied.
	line := 29
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{
		LoopCaps: map[int]int{0: 15},
	})
	require.True(t, ok)

	assert.Equal(t, 1, strings.Count(out, "int _dbgIter0 = 0;"))
	assert.Equal(t, 1, strings.Count(out, "if (++_dbgIter0 > 15) break;"))
	// The loop's own condition and step survive.
	assert.Contains(t, out, "for (int i = 0; i < 100; i++) {")
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// `return size;` in a float-declared function where size is vec2: the
// declaration is repaired to vec2 and the entry shows two channels.
func TestReturnTypeRepair(t *testing.T) {
	source := `float getSize(float scale) {
    vec2 size = vec2(scale, scale * 2.0);
    return size;
}

void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    fragColor = vec4(getSize(1.0), 0.0, 1.0);
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 2, lines[2], Options{})
	require.True(t, ok)

	assert.Contains(t, out, "vec2 getSize(float scale) {")
	assert.NotContains(t, out, "float getSize")
	assert.Contains(t, out, "    vec2 _dbgReturn = getSize(1.0);")
	assert.Contains(t, out, "    fragColor = vec4(_dbgReturn, 0.0, 1.0);")
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// A declaration line carrying no value inside a non-void helper runs the
// whole helper and shows its actual return value.
func TestDeclarationLineRunsFullHelper(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	// float map(vec3 p, float jt) {
	line := 14
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{})
	require.True(t, ok)

	// The full body survives, including both return statements.
	assert.Contains(t, out, "return min(d, ground);")
	assert.Contains(t, out, "float _dbgReturn = map(vec3(0.5), 0.5);")
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// The same query against a void helper has nothing to show.
func TestVoidHelperDeclarationLineFails(t *testing.T) {
	source := `void applyFog(inout vec3 col, float d) {
    col *= exp(-d * 0.1);
}

void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    fragColor = vec4(1.0);
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 0, lines[0], Options{})
	assert.False(t, ok)
	assert.Empty(t, out)
}

// A top-level declaration wraps into a minimal entry function.
func TestTopLevelLine(t *testing.T) {
	source := `float tint = 0.25;

void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    fragColor = vec4(tint);
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 0, lines[0], Options{})
	require.True(t, ok)

	expected := `void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    float tint = 0.25;
    fragColor = vec4(tint, tint, tint, 1.0);
}`
	assert.Equal(t, expected, out)
}

func TestTopLevelLineWithoutValueFails(t *testing.T) {
	source := `const int MAX_STEPS = 100;

precision highp float;`
	e := New()
	lines := splitLines(source)

	// No stage matches a precision directive.
	_, ok := e.ModifyShaderForDebugging(source, 2, lines[2], Options{})
	assert.False(t, ok)
}

// Debugging inside the entry function truncates the program through the
// queried line; everything above the entry survives verbatim.
func TestEntryTruncation(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	// float t = rayMarch(ro, rd); inside mainImage
	line := 46
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{})
	require.True(t, ok)

	assert.Contains(t, out, "float sdCutHollowSphere(vec3 p, float r, float h, float t) {")
	assert.Contains(t, out, "    float t = rayMarch(ro, rd);")
	assert.True(t, strings.HasSuffix(out, "    fragColor = vec4(t, t, t, 1.0);\n}"))
	// Statements after the queried line are gone.
	assert.NotContains(t, out, "pow(col, vec3(0.4545))")
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// Truncating inside a conditional block keeps the program brace-balanced by
// dissolving the control-flow structure.
func TestEntryTruncationInsideConditional(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	// float diff = clamp(...) inside the if block of mainImage
	line := 51
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{})
	require.True(t, ok)

	assert.NotContains(t, out, "if (t < 20.0)")
	assert.Contains(t, out, "    vec3 n = getNormal(p);")
	assert.True(t, strings.HasSuffix(out, "    fragColor = vec4(diff, diff, diff, 1.0);\n}"))
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// A line after a closed conditional block must still resolve to its function
// and truncate there, not fall through to the top-level wrap.
func TestEntryTruncationAfterClosedConditional(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	// col = pow(col, vec3(0.4545)); follows the closed if-block in mainImage
	line := 54
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{})
	require.True(t, ok)

	assert.Contains(t, out, "void mainImage(out vec4 fragColor, in vec2 fragCoord) {")
	assert.Contains(t, out, "    vec3 col = vec3(0.1);")
	assert.Contains(t, out, "    col = pow(col, vec3(0.4545));")
	assert.True(t, strings.HasSuffix(out, "    fragColor = vec4(col, 1.0);\n}"))
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// A loop that closed before the debug line survives truncation intact, and
// the caller's cap still applies to it.
func TestEntryTruncationKeepsClosedLoop(t *testing.T) {
	source := `void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    vec3 col = vec3(0.0);
    for (int i = 0; i < 64; i++) {
        col += vec3(0.01);
        if (col.r > 0.5) {
            break;
        }
    }
    col = pow(col, vec3(0.4545));
    fragColor = vec4(col, 1.0);
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 8, lines[8], Options{
		LoopCaps: map[int]int{0: 15},
	})
	require.True(t, ok)

	assert.Contains(t, out, "    int _dbgIter0 = 0;\n    for (int i = 0; i < 64; i++) {\n        if (++_dbgIter0 > 15) break;")
	// The loop's own early exit stays inside the kept body.
	assert.Contains(t, out, "            break;")
	assert.Contains(t, out, "    col = pow(col, vec3(0.4545));")
	assert.True(t, strings.HasSuffix(out, "    fragColor = vec4(col, 1.0);\n}"))
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// In the helper truncation path only the loop containing the debug line
// dissolves; an earlier closed loop is kept and capped, and break statements
// stranded by the dissolve are dropped.
func TestHelperTruncationDissolvesEnclosingLoopOnly(t *testing.T) {
	source := `float accumulate(float seed) {
    float acc = seed;
    for (int i = 0; i < 4; i++) {
        acc += 0.1;
    }
    for (int j = 0; j < 8; j++) {
        if (acc > 10.0) {
            break;
        }
        acc *= 1.5;
    }
    return acc;
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 9, lines[9], Options{
		LoopCaps: map[int]int{0: 2},
	})
	require.True(t, ok)

	assert.Contains(t, out, "    int _dbgIter0 = 0;\n    for (int i = 0; i < 4; i++) {\n        if (++_dbgIter0 > 2) break;")
	assert.Contains(t, out, "    int j = 0;")
	assert.NotContains(t, out, "j < 8")
	// The dissolved loop's own break is dropped, not stranded.
	assert.NotContains(t, out, "            break;")
	assert.Contains(t, out, "    return acc;")
	assert.Contains(t, out, "float _dbgReturn = accumulate(0.5);")
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// A top-level `return` line is rebound so the wrapped entry function does
// not exit before the visualization statement.
func TestTopLevelReturnLineIsRebound(t *testing.T) {
	source := `float limit = 2.0;
return limit;`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 1, lines[1], Options{})
	require.True(t, ok)

	assert.Contains(t, out, "    float _dbgReturn = limit;")
	assert.NotContains(t, out, "return limit;")
	assert.Contains(t, out, "fragColor = vec4(_dbgReturn, _dbgReturn, _dbgReturn, 1.0);")
	assertBalancedBraces(t, out)
}

// A `return expr;` debug line inside the entry function is rebound so the
// visualization still runs.
func TestEntryReturnRebinding(t *testing.T) {
	source := `float score() {
    return 0.25;
}

void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    float s = score();
    return s;
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 6, lines[6], Options{})
	require.True(t, ok)

	assert.Contains(t, out, "    float _dbgReturn = s;")
	assert.NotContains(t, out, "return s;")
	assert.Contains(t, out, "fragColor = vec4(_dbgReturn, _dbgReturn, _dbgReturn, 1.0);")
	assertBalancedBraces(t, out)
}

// Call-site reuse: arguments from the entry's own call are replayed along
// with the statements that produce them.
func TestCallSiteReuse(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	// float d = map(p, 0.0); inside rayMarch: target is d, helper is
	// truncated, and the entry replays its own setup up to rayMarch's call.
	line := 33
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{})
	require.True(t, ok)

	assert.Contains(t, out, "float _dbgReturn = rayMarch(ro, rd);")
	assert.Contains(t, out, "vec3 ro = vec3(0.0, 0.5, -2.0);")
	assert.Contains(t, out, "    return d;")
	assertBalancedBraces(t, out)
	assertSingleEntry(t, out)
}

// Parameter overrides replace synthesized defaults slot by slot.
func TestParameterOverrides(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	line := 7
	out, ok := e.ModifyShaderForDebugging(source, line, lines[line], Options{
		ParamOverrides: map[int]string{1: "0.75", 3: "0.1"},
	})
	require.True(t, ok)

	assert.Contains(t, out, "sdCutHollowSphere(vec3(0.5), 0.75, 0.5, 0.1);")
}

// A vec2 parameter defaults to the fragment-coordinate expression, pulling
// in the one-time uv setup line.
func TestVec2DefaultPullsUVSetup(t *testing.T) {
	source := `float vignette(vec2 q) {
    float r = length(q - 0.5);
    return 1.0 - r;
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 1, lines[1], Options{})
	require.True(t, ok)

	assert.Equal(t, 1, strings.Count(out, "    vec2 uv = fragCoord / iResolution.xy;"))
	assert.Contains(t, out, "float _dbgReturn = vignette(uv);")
	assertBalancedBraces(t, out)
}

// When an entry function precedes the helper in the file, the generated
// program still has exactly one entry function.
func TestEntryPrecedingHelperIsDropped(t *testing.T) {
	source := `void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    fragColor = vec4(ring(fragCoord));
}

float ring(vec2 q) {
    float r = length(q) - 0.5;
    return r;
}`
	e := New()
	lines := splitLines(source)

	out, ok := e.ModifyShaderForDebugging(source, 5, lines[5], Options{})
	require.True(t, ok)
	assertSingleEntry(t, out)
	assertBalancedBraces(t, out)
}

func TestDetectionIsRepeatable(t *testing.T) {
	source, lines := loadRaymarch(t)
	e := New()

	first, ok1 := e.ModifyShaderForDebugging(source, 7, lines[7], Options{})
	second, ok2 := e.ModifyShaderForDebugging(source, 7, lines[7], Options{})
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}

func TestOutOfRangeLine(t *testing.T) {
	e := New()
	_, ok := e.ModifyShaderForDebugging("float x = 1.0;", 5, "", Options{})
	assert.False(t, ok)
	_, ok = e.ModifyShaderForDebugging("float x = 1.0;", -1, "", Options{})
	assert.False(t, ok)
}

func TestVisualizationStatement(t *testing.T) {
	cases := []struct {
		typ  models.GlslType
		want string
	}{
		{models.TypeFloat, "    fragColor = vec4(v, v, v, 1.0);"},
		{models.TypeInt, "    fragColor = vec4(float(v), float(v), float(v), 1.0);"},
		{models.TypeBool, "    fragColor = vec4((v ? 1.0 : 0.0), (v ? 1.0 : 0.0), (v ? 1.0 : 0.0), 1.0);"},
		{models.TypeVec2, "    fragColor = vec4(v, 0.0, 1.0);"},
		{models.TypeVec3, "    fragColor = vec4(v, 1.0);"},
		{models.TypeVec4, "    fragColor = v;"},
		{models.TypeMat2, "    fragColor = vec4(v[0], v[1]);"},
		{models.TypeMat3, "    fragColor = vec4(v[0], 1.0);"},
		{models.TypeMat4, "    fragColor = v[0];"},
	}
	for _, c := range cases {
		got, ok := visualizationStatement("v", c.typ)
		require.True(t, ok, "type %s", c.typ)
		assert.Equal(t, c.want, got)
	}

	_, ok := visualizationStatement("v", models.TypeSampler2D)
	assert.False(t, ok)
	_, ok = visualizationStatement("v", models.TypeVoid)
	assert.False(t, ok)
}

func TestFlattenControlFlow(t *testing.T) {
	lines := []string{
		"    float a = 1.0;",
		"    if (a > 0.5) {",
		"        a *= 2.0;",
		"    }",
		"    for (int i = 0; i < 4; i++) {",
		"        a += float(i);",
		"    }",
		"    while (a > 10.0)",
		"    {",
		"        a -= 1.0;",
		"    }",
	}
	sites := scanLoops(lines, 0, len(lines)-1)

	// Full range: the loop closed inside the range is kept whole; if and
	// while dissolve.
	out := flattenControlFlow(nil, lines, 0, len(lines)-1, sites, nil)
	assert.Equal(t, []string{
		"    float a = 1.0;",
		"        a *= 2.0;",
		"    for (int i = 0; i < 4; i++) {",
		"        a += float(i);",
		"    }",
		"        a -= 1.0;",
	}, out)

	// Cut inside the loop body: only then does the loop dissolve to its
	// initializer.
	out = flattenControlFlow(nil, lines, 0, 5, sites, nil)
	assert.Equal(t, []string{
		"    float a = 1.0;",
		"        a *= 2.0;",
		"    int i = 0;",
		"        a += float(i);",
	}, out)
}

func TestFlattenControlFlowDropsStrandedBreak(t *testing.T) {
	lines := []string{
		"    float acc = 0.0;",
		"    for (int i = 0; i < 8; i++) {",
		"        if (acc > 10.0) {",
		"            break;",
		"        }",
		"        acc += 1.5;",
		"    }",
	}
	sites := scanLoops(lines, 0, len(lines)-1)

	// Cut at the accumulation line: the loop dissolves, so the break it
	// owned has nothing to break out of and is dropped too.
	out := flattenControlFlow(nil, lines, 0, 5, sites, nil)
	assert.Equal(t, []string{
		"    float acc = 0.0;",
		"    int i = 0;",
		"        acc += 1.5;",
	}, out)
}

func TestRewriteReturnType(t *testing.T) {
	got := rewriteReturnType("float getSize(float scale) {", models.TypeFloat, models.TypeVec2)
	assert.Equal(t, "vec2 getSize(float scale) {", got)

	// Same type: untouched.
	got = rewriteReturnType("vec3 shade(vec2 q) {", models.TypeVec3, models.TypeVec3)
	assert.Equal(t, "vec3 shade(vec2 q) {", got)
}
