package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"shaderdbg/internal/config"
	"shaderdbg/internal/debugger"
	"shaderdbg/internal/models"
	"shaderdbg/internal/session"
	"shaderdbg/internal/watcher"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	lineFlag           int
	formatFlag         string
	watchFlag          bool
	configFlag         string
	generateConfigFlag bool
	contextFlag        bool
	capFlags           []string
	capLoopsFlag       bool
	paramFlags         []string
	normalizeFlag      string
	thresholdFlag      float64
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shaderdbg [shader file]",
	Short: "Rewrites Shadertoy-style shaders to visualize the value at a line",
	Long: `shaderdbg takes a fragment shader and a cursor line, figures out which
value on that line is worth looking at, and emits a standalone program that
computes and displays exactly that value.

Examples:
  shaderdbg image.frag --line 42                 # Debug the value at line 42
  shaderdbg image.frag --line 42 --watch         # Re-run on every save
  shaderdbg image.frag --line 42 --format=glsl   # Print only the rewritten program
  shaderdbg image.frag --line 42 --cap 0=15      # Cap the first loop at 15 iterations
  shaderdbg image.frag --line 42 --param 1=vec3(1.0)
  shaderdbg image.frag --normalize=soft          # Whole-image normalization, no line debug
  shaderdbg image.frag --line 42 --context       # Describe the enclosing function
  shaderdbg --generate-config                    # Generate sample config file`,
	Run: runDebug,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().IntVarP(&lineFlag, "line", "l", 0, "1-based line to debug (omit for whole-image post-processing)")
	rootCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Output format (console, json, glsl)")
	rootCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-run whenever the shader file changes")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Path to configuration file")
	rootCmd.Flags().BoolVar(&generateConfigFlag, "generate-config", false, "Generate sample configuration file")
	rootCmd.Flags().BoolVar(&contextFlag, "context", false, "Describe the enclosing function instead of generating code")
	rootCmd.Flags().StringArrayVar(&capFlags, "cap", nil, "Cap a loop, as loopIndex=maxIterations (repeatable)")
	rootCmd.Flags().BoolVar(&capLoopsFlag, "cap-loops", false, "Cap every discovered loop at the configured default")
	rootCmd.Flags().StringArrayVar(&paramFlags, "param", nil, "Override a parameter, as paramIndex=expression (repeatable)")
	rootCmd.Flags().StringVar(&normalizeFlag, "normalize", "", "Normalize the final color (off, soft, abs)")
	rootCmd.Flags().Float64Var(&thresholdFlag, "threshold", 0, "Binarize the final color against this edge")
}

func runDebug(cmd *cobra.Command, args []string) {

	if generateConfigFlag {
		generateConfig()
		return
	}

	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		color.Red("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}

	if len(args) != 1 {
		color.Red("Expected exactly one shader file, got %d arguments\n", len(args))
		os.Exit(1)
	}
	path := args[0]

	normalize := cfg.Postprocess.Normalize
	if normalizeFlag != "" {
		normalize = normalizeFlag
	}
	mode, ok := models.ParseNormalizeMode(normalize)
	if !ok {
		color.Red("Invalid normalize mode: %s (valid: off, soft, abs)\n", normalize)
		os.Exit(1)
	}
	var stepEdge *float64
	if cmd.Flags().Changed("threshold") {
		v := thresholdFlag
		stepEdge = &v
	} else if cfg.Postprocess.Threshold != nil {
		stepEdge = cfg.Postprocess.Threshold
	}

	engine := debugger.NewWithConfig(cfg)
	reportGen := debugger.NewReportGeneratorWithConfig(cfg)
	sess := session.New()

	run := func() error {
		return runOnce(engine, reportGen, sess, cfg, path, mode, stepEdge)
	}

	if err := run(); err != nil {
		color.Red("Debug failed: %v\n", err)
		os.Exit(1)
	}

	if !watchFlag {
		return
	}

	sw, err := watcher.NewShaderWatcher(cfg)
	if err != nil {
		color.Red("Error starting watcher: %v\n", err)
		os.Exit(1)
	}
	defer sw.Close()

	if err := sw.Watch([]string{path}, func(changed []string) error {
		for _, c := range changed {
			if filepath.Clean(c) == filepath.Clean(path) {
				return run()
			}
		}
		return nil
	}); err != nil {
		color.Red("Error watching %s: %v\n", path, err)
		os.Exit(1)
	}

	color.Cyan("👀 Watching %s — press Ctrl+C to stop\n", path)
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}

func runOnce(engine *debugger.Engine, reportGen *debugger.ReportGenerator, sess *session.Session, cfg *config.Config, path string, mode models.NormalizeMode, stepEdge *float64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	source := string(data)

	// Without a line, only whole-image post-processing applies.
	if lineFlag <= 0 {
		return writeOutput(engine.ApplyPostProcess(source, mode, stepEdge), cfg)
	}

	idx := lineFlag - 1
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")
	if idx >= len(lines) {
		return fmt.Errorf("line %d is past the end of %s (%d lines)", lineFlag, path, len(lines))
	}
	lineText := lines[idx]

	ctx := engine.ExtractFunctionContext(source, idx)
	if ctx != nil {
		sess.Track(ctx.FunctionName)
	} else {
		sess.Track("")
	}
	applyOverrideFlags(sess, cfg, ctx)
	sess.Annotate(ctx)

	result := &debugger.Result{File: path, Line: lineFlag, Context: ctx}
	if contextFlag {
		result.ContextOnly = true
		result.OK = ctx != nil
		return writeOutput(reportGen.Generate(result), cfg)
	}

	result.Generated, result.OK = engine.ModifyShaderForDebugging(source, idx, lineText, sess.Options(mode, stepEdge))
	return writeOutput(reportGen.Generate(result), cfg)
}

// applyOverrideFlags parses the repeatable --cap and --param flags into the
// session. They are re-applied on every watch-mode run; the session drops
// them on its own whenever the enclosing function changes.
func applyOverrideFlags(sess *session.Session, cfg *config.Config, ctx *models.DebugFunctionContext) {
	if capLoopsFlag && ctx != nil {
		for _, l := range ctx.Loops {
			sess.SetLoopCap(l.LoopIndex, cfg.Engine.DefaultLoopCap)
		}
	}
	for _, spec := range capFlags {
		index, value, ok := splitIndexSpec(spec)
		if !ok {
			color.Yellow("⚠️  Ignoring malformed --cap %q (want loopIndex=maxIterations)\n", spec)
			continue
		}
		maxIter, err := strconv.Atoi(value)
		if err != nil || maxIter < 1 {
			color.Yellow("⚠️  Ignoring --cap %q: max iterations must be a positive integer\n", spec)
			continue
		}
		sess.SetLoopCap(index, maxIter)
	}
	for _, spec := range paramFlags {
		index, expr, ok := splitIndexSpec(spec)
		if !ok || expr == "" {
			color.Yellow("⚠️  Ignoring malformed --param %q (want paramIndex=expression)\n", spec)
			continue
		}
		sess.SetParamOverride(index, expr)
	}
}

func splitIndexSpec(spec string) (int, string, bool) {
	eq := strings.Index(spec, "=")
	if eq <= 0 {
		return 0, "", false
	}
	index, err := strconv.Atoi(spec[:eq])
	if err != nil || index < 0 {
		return 0, "", false
	}
	return index, spec[eq+1:], true
}

func writeOutput(output string, cfg *config.Config) error {
	if cfg.Output.OutputFile == "" {
		fmt.Print(output)
		if !strings.HasSuffix(output, "\n") {
			fmt.Println()
		}
		return nil
	}
	dir := filepath.Dir(cfg.Output.OutputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Output.OutputFile, []byte(output), 0644); err != nil {
		return err
	}
	color.Green("📄 Output saved to: %s\n", cfg.Output.OutputFile)
	return nil
}

func generateConfig() {
	configPath := ".shaderdbg.yml"
	if err := config.GenerateConfig(configPath); err != nil {
		color.Red("Failed to generate config file: %v\n", err)
		os.Exit(1)
	}
	color.Green("✅ Generated sample configuration file: %s\n", configPath)
	color.Cyan("📝 Edit this file to customize shaderdbg behavior\n")
	color.Cyan("🚀 Run 'shaderdbg --config=%s image.frag --line 1' to use it\n", configPath)
}
