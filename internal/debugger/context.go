package debugger

import "shaderdbg/internal/models"

// ExtractFunctionContext describes the function enclosing line for the
// override-editing panel: name, return type, parameters with precomputed
// default expressions, and the loops discovered up to the line. It reuses
// the boundary, type-table and loop scans and generates no code. A nil
// result means nothing at that location is resolvable.
func (e *Engine) ExtractFunctionContext(source string, line int) *models.DebugFunctionContext {
	lines := splitLines(source)
	if line < 0 || line >= len(lines) {
		return nil
	}
	b := resolveFunctionBoundary(lines, line)
	if b == nil {
		return nil
	}
	sig := parseFunctionSignature(lines[b.StartLine])
	if sig == nil {
		return nil
	}

	ctx := &models.DebugFunctionContext{
		FunctionName: sig.Name,
		ReturnType:   sig.ReturnType,
		IsFunction:   sig.Name != e.entryName,
	}
	if ctx.IsFunction {
		ctx.Parameters = make([]models.DebugParameterInfo, 0, len(sig.Params))
		for _, p := range sig.Params {
			info := models.DebugParameterInfo{Name: p.Name, Type: p.Type}
			expr, usesUV := e.defaultValueFor(p.Type)
			if usesUV {
				info.UVValue = expr
				info.Mode = models.ParameterModeUV
				info.DefaultCustomValue = "vec2(0.5)"
			} else {
				info.Mode = models.ParameterModeCustom
				info.DefaultCustomValue = expr
			}
			ctx.Parameters = append(ctx.Parameters, info)
		}
	}
	for _, s := range scanLoops(lines, b.StartLine, line) {
		ctx.Loops = append(ctx.Loops, models.DebugLoopInfo{
			LoopIndex:  s.index,
			LineNumber: s.line,
			LoopHeader: s.header,
		})
	}
	return ctx
}
