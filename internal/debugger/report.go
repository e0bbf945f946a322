package debugger

import (
	"encoding/json"
	"fmt"
	"strings"

	"shaderdbg/internal/config"
	"shaderdbg/internal/models"

	"github.com/fatih/color"
)

// Result is one debug query plus its outcome, ready for formatting.
type Result struct {
	File      string                       `json:"file"`
	Line      int                          `json:"line"` // 1-based for display
	Context   *models.DebugFunctionContext `json:"context,omitempty"`
	Generated string                       `json:"generated,omitempty"`
	OK        bool                         `json:"ok"`

	// ContextOnly suppresses the generated-program section; set for
	// --context queries that only describe the enclosing function.
	ContextOnly bool `json:"-"`
}

// ReportGenerator handles formatting and displaying debug results
type ReportGenerator struct {
	format string
	config *config.Config
}

func NewReportGenerator(format string) *ReportGenerator {
	return &ReportGenerator{
		format: format,
		config: config.DefaultConfig(),
	}
}

func NewReportGeneratorWithConfig(cfg *config.Config) *ReportGenerator {
	return &ReportGenerator{
		format: cfg.Output.Format,
		config: cfg,
	}
}

// Generate creates a formatted report for a debug result
func (r *ReportGenerator) Generate(result *Result) string {
	switch r.format {
	case "json":
		return r.generateJSON(result)
	case "glsl":
		// Pipe-friendly: just the rewritten program.
		return result.Generated
	default:
		return r.generateConsole(result)
	}
}

func (r *ReportGenerator) generateJSON(result *Result) string {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error generating JSON report: %v", err)
	}
	return string(data)
}

func (r *ReportGenerator) generateConsole(result *Result) string {
	var report strings.Builder

	useColors := true
	verbose := false
	if r.config != nil {
		useColors = r.config.Output.Colors
		verbose = r.config.Output.Verbose
	}

	if useColors {
		report.WriteString(color.CyanString("🔬 Shader Debug Preview\n"))
		report.WriteString(color.WhiteString("═══════════════════════════════════════\n\n"))
	} else {
		report.WriteString("Shader Debug Preview\n")
		report.WriteString("=======================================\n\n")
	}

	if useColors {
		report.WriteString(color.CyanString("📍 Location: %s:%d\n", result.File, result.Line))
	} else {
		report.WriteString(fmt.Sprintf("Location: %s:%d\n", result.File, result.Line))
	}

	if result.Context != nil {
		r.writeContext(&report, result.Context, useColors, verbose)
	}

	if result.ContextOnly {
		if result.Context == nil {
			if useColors {
				report.WriteString(color.YellowString("\n⚠️  No resolvable function at this line\n"))
			} else {
				report.WriteString("\nNo resolvable function at this line\n")
			}
		}
		return report.String()
	}

	if !result.OK {
		if useColors {
			report.WriteString(color.YellowString("\n⚠️  Nothing to visualize on this line\n"))
		} else {
			report.WriteString("\nNothing to visualize on this line\n")
		}
		return report.String()
	}

	if useColors {
		report.WriteString(color.WhiteString("\n🎨 Generated program:\n"))
	} else {
		report.WriteString("\nGenerated program:\n")
	}
	report.WriteString(strings.Repeat("─", 50) + "\n")
	r.writeGenerated(&report, result.Generated, useColors)
	report.WriteString(strings.Repeat("─", 50) + "\n")

	return report.String()
}

func (r *ReportGenerator) writeContext(report *strings.Builder, ctx *models.DebugFunctionContext, useColors, verbose bool) {
	name := ctx.FunctionName
	if !ctx.IsFunction {
		name += " (entry function)"
	}
	if useColors {
		report.WriteString(fmt.Sprintf("   Function: %s → %s\n",
			color.CyanString(name), color.WhiteString(string(ctx.ReturnType))))
	} else {
		report.WriteString(fmt.Sprintf("   Function: %s -> %s\n", name, ctx.ReturnType))
	}

	for _, p := range ctx.Parameters {
		value := p.DefaultCustomValue
		if p.Mode == models.ParameterModeUV {
			value = p.UVValue
		}
		if p.CustomValue != "" {
			value = p.CustomValue + " (override)"
		}
		if useColors {
			report.WriteString(fmt.Sprintf("   • %s %s = %s\n",
				color.YellowString(string(p.Type)), p.Name, color.GreenString(value)))
		} else {
			report.WriteString(fmt.Sprintf("   - %s %s = %s\n", p.Type, p.Name, value))
		}
	}

	for _, l := range ctx.Loops {
		capText := "uncapped"
		if l.MaxIter != nil {
			capText = fmt.Sprintf("max %d iterations", *l.MaxIter)
		}
		if verbose {
			if useColors {
				report.WriteString(fmt.Sprintf("   🔁 loop #%d at line %d (%s): %s\n",
					l.LoopIndex, l.LineNumber+1, capText, color.WhiteString(l.LoopHeader)))
			} else {
				report.WriteString(fmt.Sprintf("   loop #%d at line %d (%s): %s\n",
					l.LoopIndex, l.LineNumber+1, capText, l.LoopHeader))
			}
		} else {
			if useColors {
				report.WriteString(fmt.Sprintf("   🔁 loop #%d at line %d: %s\n", l.LoopIndex, l.LineNumber+1, capText))
			} else {
				report.WriteString(fmt.Sprintf("   loop #%d at line %d: %s\n", l.LoopIndex, l.LineNumber+1, capText))
			}
		}
	}
}

// writeGenerated prints the rewritten program, highlighting the lines the
// engine injected.
func (r *ReportGenerator) writeGenerated(report *strings.Builder, generated string, useColors bool) {
	for _, line := range strings.Split(generated, "\n") {
		injected := strings.Contains(line, "_dbgIter") ||
			strings.Contains(line, models.DebugReturnName) ||
			strings.Contains(line, "fragColor =")
		if useColors && injected {
			report.WriteString(color.GreenString("%s\n", line))
		} else {
			report.WriteString(line + "\n")
		}
	}
}
