package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 1e-6, cfg.Solver.Tolerance)
	assert.Equal(t, 100, cfg.Solver.MaxIterations)
	assert.Equal(t, 32, cfg.Solver.MaxExpansions)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "localhost", cfg.ActiveSky.Host)
	assert.Equal(t, 19285, cfg.ActiveSky.Port)
	assert.Equal(t, 10*time.Second, cfg.ActiveSky.Timeout)
	assert.Equal(t, 2.04, cfg.Envelope.MaxMach)
	assert.InDelta(t, 127, cfg.Envelope.MaxTotalTempC, 1e-9)
	assert.Empty(t, cfg.Envelope.CASLimitsPath)
	assert.Equal(t, 0, cfg.Table.Workers)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("MACHCAS_SOLVER_TOLERANCE", "1e-9")
	t.Setenv("MACHCAS_LOG_FORMAT", "json")
	t.Setenv("MACHCAS_ACTIVESKY_HOST", "sim-pc")
	t.Setenv("MACHCAS_ACTIVESKY_TIMEOUT", "3s")
	t.Setenv("MACHCAS_TABLE_WORKERS", "4")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	assert.Equal(t, 1e-9, cfg.Solver.Tolerance)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "sim-pc", cfg.ActiveSky.Host)
	assert.Equal(t, 3*time.Second, cfg.ActiveSky.Timeout)
	assert.Equal(t, 4, cfg.Table.Workers)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeFile(t, "config.yaml", `
solver:
  tolerance: 1.0e-8
  max_iterations: 200
activesky:
  port: 19286
envelope:
  max_mach: 2.0
`)

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 1e-8, cfg.Solver.Tolerance)
	assert.Equal(t, 200, cfg.Solver.MaxIterations)
	assert.Equal(t, 32, cfg.Solver.MaxExpansions)
	assert.Equal(t, 19286, cfg.ActiveSky.Port)
	assert.Equal(t, 2.0, cfg.Envelope.MaxMach)
}

func TestLoadConfig_EnvironmentOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: warn\n")
	t.Setenv("MACHCAS_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("MACHCAS_LOG_LEVEL", "warn")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("log-level", "info", "")
	fs.String("log-format", "text", "")
	require.NoError(t, fs.Parse([]string{"--log-level", "error"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"zero tolerance", map[string]string{"MACHCAS_SOLVER_TOLERANCE": "0"}},
		{"no iterations", map[string]string{"MACHCAS_SOLVER_MAX_ITERATIONS": "0"}},
		{"bad level", map[string]string{"MACHCAS_LOG_LEVEL": "loud"}},
		{"bad format", map[string]string{"MACHCAS_LOG_FORMAT": "xml"}},
		{"bad port", map[string]string{"MACHCAS_ACTIVESKY_PORT": "70000"}},
		{"bad timeout", map[string]string{"MACHCAS_ACTIVESKY_TIMEOUT": "-1s"}},
		{"bad mach limit", map[string]string{"MACHCAS_ENVELOPE_MAX_MACH": "0"}},
		{"negative workers", map[string]string{"MACHCAS_TABLE_WORKERS": "-2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig("", nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestConfig_LoadEnvelope(t *testing.T) {
	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	e, err := cfg.LoadEnvelope()
	require.NoError(t, err)
	assert.Nil(t, e.CAS)
	assert.InDelta(t, 400.15, e.MaxTotalTemperature, 1e-9)

	cfg.Envelope.CASLimitsPath = filepath.Join(t.TempDir(), "missing.csv")
	_, err = cfg.LoadEnvelope()
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(os.Stderr, LogConfig{Level: "debug", Format: "json"})
	assert.NoError(t, err)
	_, err = newLogger(os.Stderr, LogConfig{Level: "WARN", Format: "text"})
	assert.NoError(t, err)
	_, err = newLogger(os.Stderr, LogConfig{Level: "verbose", Format: "text"})
	assert.Error(t, err)
	_, err = newLogger(os.Stderr, LogConfig{Level: "info", Format: "logfmt"})
	assert.Error(t, err)
}
