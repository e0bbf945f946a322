package models

// GlslType is the closed set of types the debugger understands. User-defined
// structs and arrays are not modeled; lines using them simply fail detection.
type GlslType string

const (
	TypeFloat     GlslType = "float"
	TypeInt       GlslType = "int"
	TypeBool      GlslType = "bool"
	TypeVec2      GlslType = "vec2"
	TypeVec3      GlslType = "vec3"
	TypeVec4      GlslType = "vec4"
	TypeMat2      GlslType = "mat2"
	TypeMat3      GlslType = "mat3"
	TypeMat4      GlslType = "mat4"
	TypeSampler2D GlslType = "sampler2D"
	TypeVoid      GlslType = "void"
)

// DebugReturnName is the synthetic binding used when a `return` statement (or a
// whole function result) is visualized. Downstream tooling matches on it.
const DebugReturnName = "_dbgReturn"

// ParseType maps a source token to a GlslType.
func ParseType(s string) (GlslType, bool) {
	switch GlslType(s) {
	case TypeFloat, TypeInt, TypeBool, TypeVec2, TypeVec3, TypeVec4,
		TypeMat2, TypeMat3, TypeMat4, TypeSampler2D, TypeVoid:
		return GlslType(s), true
	default:
		return "", false
	}
}

// Components returns how many scalar channels a value of this type carries
// when mapped onto the framebuffer output (0 for types that cannot be shown).
func (t GlslType) Components() int {
	switch t {
	case TypeFloat, TypeInt, TypeBool:
		return 1
	case TypeVec2, TypeMat2:
		return 2
	case TypeVec3, TypeMat3:
		return 3
	case TypeVec4, TypeMat4:
		return 4
	default:
		return 0
	}
}

func (t GlslType) IsVector() bool {
	return t == TypeVec2 || t == TypeVec3 || t == TypeVec4
}

func (t GlslType) IsMatrix() bool {
	return t == TypeMat2 || t == TypeMat3 || t == TypeMat4
}

func (t GlslType) IsScalar() bool {
	return t == TypeFloat || t == TypeInt || t == TypeBool
}

// FunctionBoundary describes the function enclosing a source line. Recomputed
// on every query, never persisted.
type FunctionBoundary struct {
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// DebugTarget is the single value a query line resolves to. Name may be the
// synthetic DebugReturnName when the line is a return statement.
type DebugTarget struct {
	Name string   `json:"name"`
	Type GlslType `json:"type"`
}

// ParameterMode selects where a parameter's debug value comes from.
type ParameterMode string

const (
	ParameterModeUV     ParameterMode = "uv"
	ParameterModeCustom ParameterMode = "custom"
)

// DebugParameterInfo carries per-parameter metadata for the override-editing
// UI and for argument synthesis.
type DebugParameterInfo struct {
	Name               string        `json:"name"`
	Type               GlslType      `json:"type"`
	UVValue            string        `json:"uv_value,omitempty"`
	DefaultCustomValue string        `json:"default_custom_value"`
	Mode               ParameterMode `json:"mode"`
	CustomValue        string        `json:"custom_value,omitempty"`
}

// DebugLoopInfo describes one iteration construct discovered between a
// function's start and the query line. MaxIter nil means uncapped.
type DebugLoopInfo struct {
	LoopIndex  int    `json:"loop_index"`
	LineNumber int    `json:"line_number"`
	LoopHeader string `json:"loop_header"`
	MaxIter    *int   `json:"max_iter,omitempty"`
}

// DebugFunctionContext aggregates everything the control panel needs to know
// about the function enclosing the cursor. IsFunction is false when the cursor
// sits inside the program's entry function, where call-site semantics do not
// apply.
type DebugFunctionContext struct {
	FunctionName string               `json:"function_name"`
	ReturnType   GlslType             `json:"return_type"`
	Parameters   []DebugParameterInfo `json:"parameters"`
	IsFunction   bool                 `json:"is_function"`
	Loops        []DebugLoopInfo      `json:"loops"`
}

// NormalizeMode selects the whole-image output remapping applied by the
// post-processor.
type NormalizeMode string

const (
	NormalizeOff  NormalizeMode = "off"
	NormalizeSoft NormalizeMode = "soft"
	NormalizeAbs  NormalizeMode = "abs"
)

// ParseNormalizeMode validates a mode string from config or flags.
func ParseNormalizeMode(s string) (NormalizeMode, bool) {
	switch NormalizeMode(s) {
	case NormalizeOff, NormalizeSoft, NormalizeAbs:
		return NormalizeMode(s), true
	case "":
		return NormalizeOff, true
	default:
		return "", false
	}
}
