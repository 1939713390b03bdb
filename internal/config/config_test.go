package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/ua-bench/internal/config"
	"github.com/daryltucker/ua-bench/internal/invoker"
)

const sampleYAML = `
adapters:
  - id: mssola
    command: ./bin/ua-adapter-mssola
  - id: matomo
    command: php
    args: [adapters/matomo.php]
    env:
      MEMORY_LIMIT: 512M
    timeout: 30s
    limits:
      max_memory_bytes: 1073741824
      max_cpu_seconds: 20
inputs:
  - "Mozilla/5.0 (Linux; Android 10) Chrome Mobile"
concurrency: 3
timeout: 5s
output_dir: out
formats: [json, table]
log_level: debug
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, t.TempDir(), "custom.yaml", sampleYAML)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Len(t, cfg.Adapters, 2)
	assert.Equal(t, "matomo", cfg.Adapters[1].ID)
	assert.Equal(t, 30*time.Second, cfg.Adapters[1].Timeout)
	assert.Equal(t, int64(20), cfg.Adapters[1].Limits.MaxCPUSeconds)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.True(t, cfg.HasFormat(config.FormatTable))
	assert.False(t, cfg.HasFormat(config.FormatCSV))
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep their default")

	specs := cfg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, invoker.Spec{
		ID:      "matomo",
		Command: "php",
		Args:    []string{"adapters/matomo.php"},
		Env:     map[string]string{"MEMORY_LIMIT": "512M"},
		Timeout: 30 * time.Second,
		Limits:  invoker.Limits{MaxMemoryBytes: 1 << 30, MaxCPUSeconds: 20},
	}, specs[1])
}

func TestLoad_DefaultFileSearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "runner.yaml", "concurrency: 9\n")
	writeFile(t, dir, "ua-bench.yaml", "concurrency: 7\n")
	t.Chdir(dir)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Concurrency)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Timeout, cfg.Timeout)
	assert.ErrorIs(t, cfg.Validate(), config.ErrNoAdapters)
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, t.TempDir(), "bad.yaml", "adapters: {not: [a list")
	_, err = config.Load(bad)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "ua_bench.yaml", sampleYAML)
	writeFile(t, dir, ".env", "UABENCH_OUTPUT_DIR=from-dotenv\nUABENCH_LOG_FORMAT=json\n")
	t.Chdir(dir)
	t.Setenv("UABENCH_CONCURRENCY", "12")
	t.Setenv("UABENCH_LOG_FORMAT", "text")
	// godotenv exports into the process environment; clean up after it.
	t.Setenv("UABENCH_OUTPUT_DIR", "")
	require.NoError(t, os.Unsetenv("UABENCH_OUTPUT_DIR"))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Concurrency)
	assert.Equal(t, "from-dotenv", cfg.OutputDir)
	assert.Equal(t, "text", cfg.LogFormat, "the real environment wins over .env")
	assert.Len(t, cfg.Adapters, 2)
}

func TestApplyEnv(t *testing.T) {
	cfg := config.DefaultConfig()
	err := config.ApplyEnv(cfg, map[string]string{
		"UABENCH_TIMEOUT": "750ms",
		"UABENCH_FORMATS": "csv,json",
		"OTHER_TIMEOUT":   "1h",
	})
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, []string{"csv", "json"}, cfg.Formats)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Error(t, config.ApplyEnv(cfg, map[string]string{"UABENCH_CONCURRENCY": "many"}))
}

func TestParseAdapter(t *testing.T) {
	a, err := config.ParseAdapter("woothee=node adapters/woothee.js --fast")
	require.NoError(t, err)
	assert.Equal(t, config.Adapter{ID: "woothee", Command: "node", Args: []string{"adapters/woothee.js", "--fast"}}, a)

	for _, bad := range []string{"", "noequals", "=cmd", "id=", "id=   "} {
		_, err := config.ParseAdapter(bad)
		assert.ErrorIs(t, err, config.ErrInvalidAdapterArg, bad)
	}
}

func TestValidate(t *testing.T) {
	base := func() *config.Config {
		cfg := config.DefaultConfig()
		cfg.Adapters = []config.Adapter{{ID: "a", Command: "a"}, {ID: "b", Command: "b"}}
		return cfg
	}
	require.NoError(t, base().Validate())

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"no adapters", func(c *config.Config) { c.Adapters = nil }, config.ErrNoAdapters},
		{"empty id", func(c *config.Config) { c.Adapters[0].ID = " " }, config.ErrInvalidAdapter},
		{"empty command", func(c *config.Config) { c.Adapters[1].Command = "" }, config.ErrInvalidAdapter},
		{"duplicate id", func(c *config.Config) { c.Adapters[1].ID = "a" }, config.ErrDuplicateAdapter},
		{"zero concurrency", func(c *config.Config) { c.Concurrency = 0 }, config.ErrInvalidSetting},
		{"zero timeout", func(c *config.Config) { c.Timeout = 0 }, config.ErrInvalidSetting},
		{"unknown format", func(c *config.Config) { c.Formats = []string{"xml"} }, config.ErrInvalidSetting},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}

func TestReadInputs(t *testing.T) {
	src := strings.Join([]string{
		"# corpus header",
		"Mozilla/5.0 (Windows NT 10.0) Chrome",
		"",
		"   ",
		"Googlebot/2.1\r",
		"  # indented comment",
		"curl/8.0 ",
	}, "\n")

	got, err := config.ReadInputs(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"Mozilla/5.0 (Windows NT 10.0) Chrome", "Googlebot/2.1", "curl/8.0 "}, got)
}

func TestLoadInputs(t *testing.T) {
	file := writeFile(t, t.TempDir(), "uas.txt", "b\na\nc\n")
	cfg := config.DefaultConfig()
	cfg.Inputs = []string{"a", "z", "a"}
	cfg.InputFile = file

	got, err := cfg.LoadInputs()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "z", "b", "c"}, got)

	cfg.InputFile = filepath.Join(t.TempDir(), "missing.txt")
	_, err = cfg.LoadInputs()
	assert.Error(t, err)
}
