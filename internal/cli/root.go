/*
PURPOSE:
  Defines the root Cobra command for the UA Bench CLI.
  Handles global flags and command initialization.

REQUIREMENTS:
  User-specified:
  - Provide a CLI interface.
  - Support global flags like --config.

  Implementation-discovered:
  - Needs to expose an Execute() function for main.go.
  - Commands are built by constructors so tests get fresh flag state.
  - Logging is configured once the config (and its overrides) is known.

ARCHITECTURE INTEGRATION:
  - Called by: cmd/ua-bench/main.go
  - Calls: Child commands (run, probe, compare)

ERROR HANDLING:
  - Returns error to main.go for exit code handling.

IMPLEMENTATION RULES:
  - Use `PersistentFlags()` for flags available to all subcommands.
  - Keep Run logic in subcommands, Root is usually empty or helps.

USAGE:
  Called by main.go.

RELATED FILES:
  - cmd/ua-bench/main.go

MAINTENANCE:
  - Update when adding global configuration options.
*/

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ua-bench/internal/config"
	"github.com/daryltucker/ua-bench/internal/output"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type rootOptions struct {
	// cfgFile stores the path to the config file (if specified via flag)
	cfgFile   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ua-bench",
		Short: "Differential benchmark for user-agent detection engines",
		Long: `Runs many user-agent detection engines, each wrapped as an external adapter
process, against the same input strings, normalizes their answers into one
canonical schema and reports cost and per-field agreement.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.cfgFile, "config", "", "config file (default is ./ua_bench.yaml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format: text or json")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newProbeCmd(opts))
	cmd.AddCommand(newCompareCmd(opts))
	return cmd
}

// Execute executes the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext executes the root command with a parent context.
func ExecuteContext(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// loadConfig loads the config file, applies the global flag overrides and
// configures the logger.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.cfgFile)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	if err := output.Configure(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	return cfg, nil
}

// applyAdapterFlags replaces the configured adapters when any --adapter
// flag was given.
func applyAdapterFlags(cfg *config.Config, flags []string) error {
	if len(flags) == 0 {
		return nil
	}
	adapters := make([]config.Adapter, 0, len(flags))
	for _, f := range flags {
		a, err := config.ParseAdapter(f)
		if err != nil {
			return err
		}
		adapters = append(adapters, a)
	}
	cfg.Adapters = adapters
	return nil
}
