package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
log_level = "warn"

[mesh]
kind = "cube"
size = 2.0
resolution = 0.125

[field]
shape = "sphere"
radius = 0.5

[threshold]
min = -0.1
max = 0.2
inclusive = false
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threshold.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, stderr bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)

	cfg, err = loadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Equal(t, "cube", cfg.Mesh.Kind)
	assert.Equal(t, 0.125, cfg.Mesh.Resolution)
	assert.Equal(t, 0.5, cfg.Field.Radius)
	assert.Equal(t, thresholdConfig{Min: -0.1, Max: 0.2}, cfg.Threshold)
	// Unset values keep their defaults.
	assert.Equal(t, defaultConfig().Field.Side, cfg.Field.Side)

	_, err = loadConfig(writeConfig(t, "[mesh]\nkidn = \"bcc\"\n"))
	assert.Error(t, err)
	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestGLSLCommand(t *testing.T) {
	out, err := run(t, "glsl", "--min", "0", "--max", "1", "--name", "mask")
	require.NoError(t, err)
	assert.Equal(t, "bool mask(float v) {\nreturn 0.0<=v && v<=1.0;\n}\n", out)

	// Flags override the configuration file.
	out, err = run(t, "glsl", "--config", writeConfig(t, testConfig), "--max", "0.5", "--uniforms")
	require.NoError(t, err)
	assert.Contains(t, out, "uniform float thresholdMaskMin;")
	assert.Contains(t, out, "return thresholdMaskMin<v && v<thresholdMaskMax;")
}

func TestExtractCommand(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "shell")
	_, err := run(t, "extract", "--config", writeConfig(t, testConfig), "--out", prefix, "--png")
	require.NoError(t, err)
	for _, name := range []string{"_min.stl", "_max.stl"} {
		info, err := os.Stat(prefix + name)
		require.NoError(t, err)
		// Header and at least one 50 byte triangle.
		assert.Greater(t, info.Size(), int64(84), name)
		assert.Zero(t, (info.Size()-84)%50, name)
	}
	info, err := os.Stat(prefix + ".png")
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestHistCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	_, err := run(t, "hist", "--config", writeConfig(t, testConfig), "--out", path, "--bins", "16")
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestBadConfig(t *testing.T) {
	_, err := run(t, "extract", "--config", writeConfig(t, "[field]\nshape = \"torus\"\n"), "--out", filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
	_, err = run(t, "glsl", "--config", writeConfig(t, "log_level = \"loud\"\n"))
	assert.Error(t, err)
}
