package debugger

import "shaderdbg/internal/models"

// uvSetupLine is the one-time declaration required by fragment-coordinate
// defaults. The generator inserts it at most once per synthesized entry
// function.
const uvSetupLine = "    vec2 uv = fragCoord / iResolution.xy;"

// defaultValueFor maps a parameter type to the expression substituted when
// the caller supplies no override. The second result reports whether the
// expression depends on the uv setup line.
func (e *Engine) defaultValueFor(t models.GlslType) (string, bool) {
	switch t {
	case models.TypeVec2:
		return e.uvExpr, true
	case models.TypeVec3:
		return "vec3(0.5)", false
	case models.TypeVec4:
		return "vec4(0.5)", false
	case models.TypeFloat:
		return "0.5", false
	case models.TypeInt:
		return "1", false
	case models.TypeBool:
		return "true", false
	case models.TypeMat2:
		return "mat2(1.0)", false
	case models.TypeMat3:
		return "mat3(1.0)", false
	case models.TypeMat4:
		return "mat4(1.0)", false
	case models.TypeSampler2D:
		return e.defaultChannel, false
	default:
		return "0.0", false
	}
}
