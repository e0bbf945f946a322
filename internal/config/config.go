package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents the configuration for shaderdbg
type Config struct {
	// General settings
	Version     string `yaml:"version" json:"version"`
	ProjectName string `yaml:"project_name,omitempty" json:"project_name,omitempty"`

	// Engine settings
	Engine EngineConfig `yaml:"engine" json:"engine"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Output post-processing
	Postprocess PostprocessConfig `yaml:"postprocess" json:"postprocess"`

	// File patterns
	Files FilesConfig `yaml:"files" json:"files"`
}

type EngineConfig struct {
	// Name of the per-pixel entry function the dialect requires
	EntryFunction string `yaml:"entry_function" json:"entry_function"`

	// Expression substituted for vec2 parameters with no override
	UVExpression string `yaml:"uv_expression" json:"uv_expression"`

	// Channel reference substituted for sampler2D parameters
	DefaultChannel string `yaml:"default_channel" json:"default_channel"`

	// Cap applied by --cap-loops when no per-loop value is given
	DefaultLoopCap int `yaml:"default_loop_cap" json:"default_loop_cap"`
}

type OutputConfig struct {
	// Default output format
	Format string `yaml:"format" json:"format"`

	// Colorized output
	Colors bool `yaml:"colors" json:"colors"`

	// Verbosity level
	Verbose bool `yaml:"verbose" json:"verbose"`

	// Output file path (optional)
	OutputFile string `yaml:"output_file,omitempty" json:"output_file,omitempty"`
}

type PostprocessConfig struct {
	// Normalize mode applied to the final color: off, soft, or abs
	Normalize string `yaml:"normalize" json:"normalize"`

	// Optional step edge for binarized output
	Threshold *float64 `yaml:"threshold,omitempty" json:"threshold,omitempty"`
}

type FilesConfig struct {
	// Shader file extensions recognized in watch mode
	Extensions []string `yaml:"extensions" json:"extensions"`

	// Exclude patterns
	Exclude []string `yaml:"exclude" json:"exclude"`

	// Max file size (in KB)
	MaxFileSize int `yaml:"max_file_size" json:"max_file_size"`
}

func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		Engine: EngineConfig{
			EntryFunction:  "mainImage",
			UVExpression:   "uv",
			DefaultChannel: "iChannel0",
			DefaultLoopCap: 32,
		},
		Output: OutputConfig{
			Format:  "console",
			Colors:  true,
			Verbose: false,
		},
		Postprocess: PostprocessConfig{
			Normalize: "off",
		},
		Files: FilesConfig{
			Extensions:  []string{".frag", ".glsl", ".fs", ".fsh"},
			Exclude:     []string{".git/**", "node_modules/**"},
			MaxFileSize: 1024, // 1MB
		},
	}
}

// LoadConfig loads configuration from file or returns default
func LoadConfig(configPath string) (*Config, error) {
	// If no config path provided, look for default config files
	if configPath == "" {
		configPath = findConfigFile()
	}

	// If still no config found, return default
	if configPath == "" {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig() // Start with defaults

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// findConfigFile looks for config files in common locations
func findConfigFile() string {
	possiblePaths := []string{
		".shaderdbg.yml",
		".shaderdbg.yaml",
		"shaderdbg.yml",
		"shaderdbg.yaml",
		".config/shaderdbg.yml",
		".config/shaderdbg.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validFormats := []string{"console", "json", "glsl"}
	formatValid := false
	for _, format := range validFormats {
		if c.Output.Format == format {
			formatValid = true
			break
		}
	}
	if !formatValid {
		return fmt.Errorf("invalid output format: %s (valid: %v)", c.Output.Format, validFormats)
	}

	if !identifierPattern.MatchString(c.Engine.EntryFunction) {
		return fmt.Errorf("entry_function must be a valid identifier, got %q", c.Engine.EntryFunction)
	}

	if c.Engine.DefaultLoopCap < 1 {
		return fmt.Errorf("default_loop_cap must be at least 1")
	}

	switch c.Postprocess.Normalize {
	case "", "off", "soft", "abs":
	default:
		return fmt.Errorf("invalid normalize mode: %s (valid: off, soft, abs)", c.Postprocess.Normalize)
	}

	if len(c.Files.Extensions) == 0 {
		return fmt.Errorf("files.extensions must not be empty")
	}

	return nil
}

// SaveConfig saves configuration to file
func (c *Config) SaveConfig(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateConfig creates a sample configuration file
func GenerateConfig(configPath string) error {
	config := DefaultConfig()
	return config.SaveConfig(configPath)
}

// IsShaderFile reports whether path has one of the configured shader
// extensions.
func (c *Config) IsShaderFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Files.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
