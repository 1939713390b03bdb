/*
PURPOSE:
  Defines the 'probe' subcommand.
  Runs every adapter's no-input path to check it starts and speaks the
  protocol, and shows its engine version and warm-up cost.

REQUIREMENTS:
  User-specified:
  - List the configured engines.

  Implementation-discovered:
  - Useful validation step before a full run: a broken adapter shows up
    here instead of as a column of failures.

ARCHITECTURE INTEGRATION:
  - Calls: internal/invoker.Invoker.Probe()

ERROR HANDLING:
  - Returns an error when at least one adapter fails, after printing all.

USAGE:
  ua-bench probe --adapter mssola=./bin/ua-adapter-mssola

RELATED FILES:
  - internal/invoker/invoker.go
*/

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/ua-bench/internal/config"
	"github.com/daryltucker/ua-bench/internal/invoker"
	"github.com/daryltucker/ua-bench/internal/model"
	"github.com/daryltucker/ua-bench/internal/output"
)

type probeOptions struct {
	adapters []string
	timeout  time.Duration
	markdown bool
}

func newProbeCmd(root *rootOptions) *cobra.Command {
	opts := &probeOptions{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Start every adapter without input and report version and init time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := applyAdapterFlags(cfg, opts.adapters); err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = opts.timeout
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			invs := probeAll(ctx, cfg)

			mode := output.ASCII
			if opts.markdown {
				mode = output.Markdown
			}
			fmt.Fprintln(cmd.OutOrStdout(), output.ProbeTable(invs, mode))

			failed := 0
			for _, inv := range invs {
				if inv.Failure != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d adapter(s) failed the probe", failed, len(invs))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.adapters, "adapter", nil, "adapter as id=command (repeatable, replaces configured adapters)")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-adapter timeout")
	f.BoolVar(&opts.markdown, "markdown", false, "render the table as Markdown")
	return cmd
}

// probeAll probes the adapters in parallel; results keep configured order.
func probeAll(ctx context.Context, cfg *config.Config) []model.AdapterInvocation {
	ivOpts := invoker.DefaultOptions()
	ivOpts.AllowedEnv = cfg.AllowedEnv
	iv := invoker.New(ivOpts)

	specs := cfg.Specs()
	invs := make([]model.AdapterInvocation, len(specs))

	g := new(errgroup.Group)
	g.SetLimit(cfg.Concurrency)
	for i, spec := range specs {
		timeout := cfg.Timeout
		if spec.Timeout > 0 {
			timeout = spec.Timeout
		}
		g.Go(func() error {
			invs[i] = iv.Probe(ctx, spec, timeout)
			return nil
		})
	}
	_ = g.Wait()
	return invs
}
