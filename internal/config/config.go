/*
PURPOSE:
  Defines the configuration structure and loading logic for UA Bench.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Configure adapters (command, args, env, timeout, resource limits),
    input strings, concurrency and output.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Needs to support Environment variables overrides (UABENCH_...),
    optionally read from a .env file.
  - Input strings come from a literal list and/or a newline-delimited file.

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli
  - Dependencies: gopkg.in/yaml.v3, github.com/caarlos0/env/v11,
    github.com/joho/godotenv

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - A missing default config file falls back to defaults.
  - Validate() reports the first invalid setting.

IMPLEMENTATION RULES:
  - Config struct tags support yaml and env.
  - Defaults should be sensible (e.g., 10s timeout).

USAGE:
  cfg, err := config.Load("ua_bench.yaml")

RELATED FILES:
  - internal/cli/root.go
  - inputs.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/daryltucker/ua-bench/internal/invoker"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "UABENCH_"

// DefaultFiles are searched in order when no config path is given.
var DefaultFiles = []string{"ua_bench.yaml", "ua-bench.yaml", "runner.yaml"}

// Formats accepted in Config.Formats.
const (
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatTable = "table"
)

var (
	ErrNoAdapters        = errors.New("no adapters configured")
	ErrInvalidAdapter    = errors.New("invalid adapter")
	ErrDuplicateAdapter  = errors.New("duplicate adapter id")
	ErrInvalidSetting    = errors.New("invalid setting")
	ErrInvalidAdapterArg = errors.New("adapter flag must be id=command")
)

// Limits are per-adapter resource limits applied to the child process.
type Limits struct {
	MaxMemoryBytes int64 `yaml:"max_memory_bytes"`
	MaxCPUSeconds  int64 `yaml:"max_cpu_seconds"`
	MaxOutputBytes int64 `yaml:"max_output_bytes"`
}

// Adapter describes one engine wrapped as an external process.
type Adapter struct {
	ID      string            `yaml:"id"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args"`
	Env     map[string]string `yaml:"env"`
	Dir     string            `yaml:"dir"`
	// Timeout overrides the run-wide timeout for this adapter.
	Timeout time.Duration `yaml:"timeout"`
	Limits  Limits        `yaml:"limits"`
}

// Config represents the full configuration for UA Bench.
type Config struct {
	Adapters    []Adapter     `yaml:"adapters"`
	Inputs      []string      `yaml:"inputs"`
	InputFile   string        `yaml:"input_file"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	OutputDir   string        `yaml:"output_dir"`
	// Formats selects the artefacts: json, csv, table.
	Formats   []string `yaml:"formats"`
	LogLevel  string   `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"`
	// AllowedEnv lists parent environment variables passed to adapters.
	AllowedEnv []string `yaml:"allowed_env"`
}

// envOverrides holds the settings that can be set from UABENCH_* variables.
// Adapters are file-only.
type envOverrides struct {
	InputFile   string        `env:"INPUT_FILE"`
	Concurrency int           `env:"CONCURRENCY"`
	Timeout     time.Duration `env:"TIMEOUT"`
	OutputDir   string        `env:"OUTPUT_DIR"`
	Formats     []string      `env:"FORMATS"`
	LogLevel    string        `env:"LOG_LEVEL"`
	LogFormat   string        `env:"LOG_FORMAT"`
	AllowedEnv  []string      `env:"ALLOWED_ENV"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Concurrency: runtime.NumCPU(),
		Timeout:     10 * time.Second,
		OutputDir:   "results",
		Formats:     []string{FormatJSON, FormatCSV, FormatTable},
		LogLevel:    "info",
		LogFormat:   "text",
		AllowedEnv:  invoker.DefaultOptions().AllowedEnv,
	}
}

// Load reads configuration from a file, then applies environment overrides.
// If path is specified, it attempts to load that file.
// If path is empty, it searches DefaultFiles in order.
// If no file found, defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		for _, name := range DefaultFiles {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name
				break
			}
		}
	}

	if path != "" {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, nil); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv exports the variables of file without overriding the real
// environment. A missing file is not an error.
func loadDotEnv(file string) error {
	if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", file, err)
	}
	return nil
}

// ApplyEnv overrides cfg from UABENCH_* variables. A nil environ reads the
// process environment.
func ApplyEnv(cfg *Config, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}

	o := envOverrides{
		InputFile:   cfg.InputFile,
		Concurrency: cfg.Concurrency,
		Timeout:     cfg.Timeout,
		OutputDir:   cfg.OutputDir,
		Formats:     cfg.Formats,
		LogLevel:    cfg.LogLevel,
		LogFormat:   cfg.LogFormat,
		AllowedEnv:  cfg.AllowedEnv,
	}
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.InputFile = o.InputFile
	cfg.Concurrency = o.Concurrency
	cfg.Timeout = o.Timeout
	cfg.OutputDir = o.OutputDir
	cfg.Formats = o.Formats
	cfg.LogLevel = o.LogLevel
	cfg.LogFormat = o.LogFormat
	cfg.AllowedEnv = o.AllowedEnv
	return nil
}

// ParseAdapter parses the --adapter flag form "id=command [args...]".
func ParseAdapter(s string) (Adapter, error) {
	id, cmdline, ok := strings.Cut(s, "=")
	id = strings.TrimSpace(id)
	fields := strings.Fields(cmdline)
	if !ok || id == "" || len(fields) == 0 {
		return Adapter{}, fmt.Errorf("%w: %q", ErrInvalidAdapterArg, s)
	}
	return Adapter{ID: id, Command: fields[0], Args: fields[1:]}, nil
}

// Validate checks the settings a run needs.
func (c *Config) Validate() error {
	if len(c.Adapters) == 0 {
		return ErrNoAdapters
	}
	seen := make(map[string]bool, len(c.Adapters))
	for i, a := range c.Adapters {
		if strings.TrimSpace(a.ID) == "" {
			return fmt.Errorf("%w: adapter #%d has no id", ErrInvalidAdapter, i+1)
		}
		if a.Command == "" {
			return fmt.Errorf("%w: adapter %q has no command", ErrInvalidAdapter, a.ID)
		}
		if a.Timeout < 0 {
			return fmt.Errorf("%w: adapter %q has a negative timeout", ErrInvalidAdapter, a.ID)
		}
		if seen[a.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateAdapter, a.ID)
		}
		seen[a.ID] = true
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("%w: concurrency must be at least 1, got %d", ErrInvalidSetting, c.Concurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidSetting, c.Timeout)
	}
	for _, f := range c.Formats {
		if !slices.Contains([]string{FormatJSON, FormatCSV, FormatTable}, f) {
			return fmt.Errorf("%w: unknown format %q", ErrInvalidSetting, f)
		}
	}
	return nil
}

// HasFormat reports whether an artefact format is enabled.
func (c *Config) HasFormat(f string) bool {
	return slices.Contains(c.Formats, f)
}

// Specs converts the adapters to invoker specs in configured order.
func (c *Config) Specs() []invoker.Spec {
	specs := make([]invoker.Spec, 0, len(c.Adapters))
	for _, a := range c.Adapters {
		specs = append(specs, invoker.Spec{
			ID:      a.ID,
			Command: a.Command,
			Args:    slices.Clone(a.Args),
			Env:     a.Env,
			Dir:     a.Dir,
			Timeout: a.Timeout,
			Limits: invoker.Limits{
				MaxMemoryBytes: a.Limits.MaxMemoryBytes,
				MaxCPUSeconds:  a.Limits.MaxCPUSeconds,
				MaxOutputBytes: a.Limits.MaxOutputBytes,
			},
		})
	}
	return specs
}
