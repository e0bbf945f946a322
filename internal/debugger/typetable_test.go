package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shaderdbg/internal/models"
)

func TestTypeTableSeedsParameters(t *testing.T) {
	src := `float shade(in vec3 p, inout vec2 uv, float k) {
    float d = k * 2.0;
    return d;
}
`
	lines := splitLines(src)
	b := resolveFunctionBoundary(lines, 1)
	require.NotNil(t, b)

	table := buildTypeTable(lines, b, 1)
	assert.Equal(t, models.TypeVec3, table["p"])
	assert.Equal(t, models.TypeVec2, table["uv"])
	assert.Equal(t, models.TypeFloat, table["k"])
	assert.Equal(t, models.TypeFloat, table["d"])
}

func TestTypeTableLastWriterWins(t *testing.T) {
	src := `void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    float x = 1.0;
    vec3 x = vec3(0.0);
    fragColor = vec4(x, 1.0);
}
`
	lines := splitLines(src)
	b := resolveFunctionBoundary(lines, 3)
	require.NotNil(t, b)

	table := buildTypeTable(lines, b, 3)
	assert.Equal(t, models.TypeVec3, table["x"])
}

func TestTypeTableStopsAtQueryLine(t *testing.T) {
	src := `void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    float a = 1.0;
    float b = 2.0;
}
`
	lines := splitLines(src)
	bnd := resolveFunctionBoundary(lines, 1)
	require.NotNil(t, bnd)

	table := buildTypeTable(lines, bnd, 1)
	assert.Contains(t, table, "a")
	assert.NotContains(t, table, "b")
}

func TestTypeTableTopLevelScansFromFileStart(t *testing.T) {
	src := `float globalScale = 2.0;
vec2 offset = vec2(0.1);
int counter;
`
	lines := splitLines(src)

	table := buildTypeTable(lines, nil, 2)
	assert.Equal(t, models.TypeFloat, table["globalScale"])
	assert.Equal(t, models.TypeVec2, table["offset"])
	assert.Equal(t, models.TypeInt, table["counter"])
}

func TestTypeTableIgnoresLooseIdentifiers(t *testing.T) {
	src := `void mainImage(out vec4 fragColor, in vec2 fragCoord) {
    float t = iTime;
    somefunc(t);
}
`
	lines := splitLines(src)
	b := resolveFunctionBoundary(lines, 2)
	require.NotNil(t, b)

	table := buildTypeTable(lines, b, 2)
	assert.Equal(t, models.TypeFloat, table["t"])
	assert.NotContains(t, table, "somefunc")
	assert.NotContains(t, table, "iTime")
}

func TestTypeTableLoopInitializer(t *testing.T) {
	src := `float accumulate(float seed) {
    float acc = seed;
    for (int i = 0; i < 8; i++) {
        acc += float(i);
    }
    return acc;
}
`
	lines := splitLines(src)
	b := resolveFunctionBoundary(lines, 3)
	require.NotNil(t, b)

	table := buildTypeTable(lines, b, 3)
	assert.Equal(t, models.TypeInt, table["i"])
	assert.Equal(t, models.TypeFloat, table["acc"])
}
