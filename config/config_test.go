package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8660, cfg.Port)
	assert.Equal(t, ".", cfg.OutputDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout.Duration)
	assert.Equal(t, 10, cfg.Generate.ModuleSize)
	assert.Equal(t, 4, cfg.Generate.Border)
	assert.Equal(t, "M", cfg.Generate.Level)
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
port: 9100
output_dir: /tmp/fixtures
log_level: debug
shutdown_timeout: 5s
generate:
  module_size: 3
  border: 2
  level: Q
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/tmp/fixtures", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout.Duration)
	assert.Equal(t, 3, cfg.Generate.ModuleSize)
	assert.Equal(t, 2, cfg.Generate.Border)
	assert.Equal(t, "Q", cfg.Generate.Level)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QRGEN_PORT", "7777")
	t.Setenv("QRGEN_OUTPUT_DIR", "/somewhere/else")
	t.Setenv("QRGEN_LOG_LEVEL", "warn")
	t.Setenv("QRGEN_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("QRGEN_MODULE_SIZE", "6")
	t.Setenv("QRGEN_BORDER", "0")
	t.Setenv("QRGEN_LEVEL", "H")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Port)
	assert.Equal(t, "/somewhere/else", cfg.OutputDir)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout.Duration)
	assert.Equal(t, 6, cfg.Generate.ModuleSize)
	assert.Equal(t, 0, cfg.Generate.Border)
	assert.Equal(t, "H", cfg.Generate.Level)
}

func TestDurationYAML(t *testing.T) {
	t.Parallel()

	var d Duration
	require.NoError(t, yaml.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration)

	out, err := yaml.Marshal(Duration{2 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, "2m0s\n", string(out))

	assert.Error(t, yaml.Unmarshal([]byte(`"soon"`), &d))
}

func TestEnsureOutputDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "out")
	cfg := &Config{OutputDir: dir}
	require.NoError(t, cfg.EnsureOutputDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
