package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "mainImage", cfg.Engine.EntryFunction)
	assert.Equal(t, "uv", cfg.Engine.UVExpression)
	assert.Equal(t, "iChannel0", cfg.Engine.DefaultChannel)
	assert.Equal(t, 32, cfg.Engine.DefaultLoopCap)
	assert.Equal(t, "console", cfg.Output.Format)
	assert.Equal(t, "off", cfg.Postprocess.Normalize)
	assert.Contains(t, cfg.Files.Extensions, ".frag")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(cwd)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".shaderdbg.yml")
	content := `version: "1.0"
engine:
  entry_function: mainImage
  uv_expression: uv * 2.0 - 1.0
  default_channel: iChannel1
  default_loop_cap: 16
output:
  format: json
postprocess:
  normalize: soft
  threshold: 0.5
files:
  extensions: [".frag", ".glsl"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "uv * 2.0 - 1.0", cfg.Engine.UVExpression)
	assert.Equal(t, "iChannel1", cfg.Engine.DefaultChannel)
	assert.Equal(t, 16, cfg.Engine.DefaultLoopCap)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "soft", cfg.Postprocess.Normalize)
	require.NotNil(t, cfg.Postprocess.Threshold)
	assert.Equal(t, 0.5, *cfg.Postprocess.Threshold)
	assert.Equal(t, []string{".frag", ".glsl"}, cfg.Files.Extensions)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("engine: [not a map"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "shaderdbg.yml")

	cfg := DefaultConfig()
	cfg.Engine.DefaultLoopCap = 8
	cfg.Output.Format = "glsl"
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8, loaded.Engine.DefaultLoopCap)
	assert.Equal(t, "glsl", loaded.Output.Format)
}

func TestGenerateConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaderdbg.yml")
	require.NoError(t, GenerateConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"bad entry name", func(c *Config) { c.Engine.EntryFunction = "main image" }},
		{"empty entry name", func(c *Config) { c.Engine.EntryFunction = "" }},
		{"zero loop cap", func(c *Config) { c.Engine.DefaultLoopCap = 0 }},
		{"bad normalize", func(c *Config) { c.Postprocess.Normalize = "clamp" }},
		{"no extensions", func(c *Config) { c.Files.Extensions = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestIsShaderFile(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.IsShaderFile("shaders/scene.frag"))
	assert.True(t, cfg.IsShaderFile("ocean.glsl"))
	assert.False(t, cfg.IsShaderFile("main.go"))
	assert.False(t, cfg.IsShaderFile("README"))
}
