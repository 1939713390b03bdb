/*
PURPOSE:
  Defines the 'run' subcommand.
  Executes every adapter against every input and writes the artefacts.

REQUIREMENTS:
  User-specified:
  - Run the benchmark.
  - Flags for overrides (adapters, inputs, concurrency, timeout, output).
  - Exit 0 whenever the run completed, even with adapter failures.

  Implementation-discovered:
  - Need to load config first.
  - Apply flag overrides to config.
  - SIGINT/SIGTERM cancel the run; the partial report is still written.
  - Each run gets its own directory (named by run id) so nothing is
    overwritten.

ARCHITECTURE INTEGRATION:
  - Calls: internal/engine.Runner.Run()
  - Uses: internal/config, internal/invoker, internal/output

ERROR HANDLING:
  - Returns error if config load fails or the run cannot start.
  - Artefact write failures after a completed run are logged only.

IMPLEMENTATION RULES:
  - Logic: Load Config -> Override -> Validate -> Engine.Run -> Write.

USAGE:
  ua-bench run --adapter mssola=./bin/ua-adapter-mssola --ua "Mozilla/5.0 ..."

RELATED FILES:
  - internal/cli/root.go
  - internal/cli/artefacts.go
*/

package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/daryltucker/ua-bench/internal/config"
	"github.com/daryltucker/ua-bench/internal/engine"
	"github.com/daryltucker/ua-bench/internal/invoker"
	"github.com/daryltucker/ua-bench/internal/output"
)

var errNoInputs = errors.New("no input strings: use --ua, --input-file or the inputs config key")

type runOptions struct {
	adapters    []string
	uas         []string
	inputFile   string
	concurrency int
	timeout     time.Duration
	outputDir   string
	formats     []string
	markdown    bool
	allFields   bool
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every adapter against every input",
		Long: `Executes every configured adapter against every input string.
Each invocation is an isolated child process with its own timeout. Failures
(timeouts, crashes, malformed output) are recorded in the report and never
abort the run.

Artefacts are written to <output-dir>/<run-id>/:
  report.json        full run report (reload with 'ua-bench compare')
  invocations.jsonl  one invocation per line
  comparison.jsonl   one per-input comparison per line
  invocations.csv    one row per invocation`,
		Example: `  # Run with defaults (uses ua_bench.yaml)
  ua-bench run

  # Ad-hoc adapters and inputs
  ua-bench run --adapter mssola=./bin/ua-adapter-mssola \
    --adapter woothee="node adapters/woothee.js" \
    --ua "Mozilla/5.0 (Linux; Android 10) Chrome Mobile"

  # A corpus file, 8 workers, 5s per invocation, tables only
  ua-bench run --input-file corpus.txt -c 8 --timeout 5s --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			inputs, err := cfg.LoadInputs()
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				return errNoInputs
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ivOpts := invoker.DefaultOptions()
			ivOpts.AllowedEnv = cfg.AllowedEnv
			ivOpts.DefaultTimeout = cfg.Timeout

			report, err := engine.NewRunner(invoker.New(ivOpts)).Run(ctx, cfg.Specs(), inputs, engine.Options{
				Concurrency:       cfg.Concurrency,
				PerAdapterTimeout: cfg.Timeout,
			})
			if err != nil {
				return err
			}

			mode := output.ASCII
			if opts.markdown {
				mode = output.Markdown
			}
			// A completed run exits 0 even if an artefact is lost.
			if err := writeArtefacts(cmd.OutOrStdout(), cfg, report, tableOptions{mode: mode, allFields: opts.allFields}); err != nil {
				output.Logger.Error("Could not write artefacts", "run_id", report.RunID, "error", err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.adapters, "adapter", nil, `adapter as id=command (repeatable, replaces configured adapters)`)
	f.StringArrayVar(&opts.uas, "ua", nil, "input user-agent string (repeatable, replaces configured inputs)")
	f.StringVar(&opts.inputFile, "input-file", "", "newline-delimited file of user-agent strings")
	f.IntVarP(&opts.concurrency, "concurrency", "c", 0, "maximum parallel invocations")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-invocation timeout")
	f.StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory for artefacts")
	f.StringSliceVar(&opts.formats, "format", nil, "artefacts to produce: json,csv,table")
	f.BoolVar(&opts.markdown, "markdown", false, "render tables as Markdown")
	f.BoolVar(&opts.allFields, "all-fields", false, "list fields no adapter answered")
	return cmd
}

func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	if err := applyAdapterFlags(cfg, o.adapters); err != nil {
		return err
	}
	if len(o.uas) > 0 {
		cfg.Inputs = o.uas
		cfg.InputFile = ""
	}
	if o.inputFile != "" {
		if len(o.uas) == 0 {
			cfg.Inputs = nil
		}
		cfg.InputFile = o.inputFile
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if o.outputDir != "" {
		cfg.OutputDir = o.outputDir
	}
	if len(o.formats) > 0 {
		cfg.Formats = o.formats
	}
	return nil
}
