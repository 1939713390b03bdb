/*
PURPOSE:
  High-level runner that orchestrates a benchmark run.
  Builds adapters × inputs, drives the invoker through a bounded worker
  pool and assembles the RunReport.

REQUIREMENTS:
  User-specified:
  - Deterministic order: adapters as configured, inputs as supplied.
  - At most `concurrency` invocations in flight.
  - Every (adapter, input) pair appears exactly once, even on failure.
  - A run-wide cancel reaches every worker; unfinished pairs are Cancelled.

  Implementation-discovered:
  - The invocation is the only unit of concurrency.
  - Pairs dispatched after cancellation are recorded without spawning.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Uses: internal/invoker, internal/model, internal/output

ERROR HANDLING:
  - Adapter failures are data; Run only errors when the run cannot start
    or the report cannot be assembled.

USAGE:
  report, err := engine.NewRunner(iv).Run(ctx, specs, inputs, engine.Options{Concurrency: 4})

RELATED FILES:
  - internal/invoker/invoker.go
*/

package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daryltucker/ua-bench/internal/invoker"
	"github.com/daryltucker/ua-bench/internal/model"
	"github.com/daryltucker/ua-bench/internal/output"
)

var (
	ErrNoAdapters         = errors.New("no adapters configured")
	ErrNoInputs           = errors.New("no input strings configured")
	ErrDuplicateAdapter   = errors.New("duplicate adapter id")
	ErrDuplicateInput     = errors.New("duplicate input string")
	ErrInvalidConcurrency = errors.New("concurrency must be at least 1")
)

// Invoker runs one adapter against one input. Implementations must record
// failures in the returned invocation instead of returning errors.
type Invoker interface {
	Invoke(ctx context.Context, spec invoker.Spec, input string, timeout time.Duration) model.AdapterInvocation
}

// Options tunes a run.
type Options struct {
	Concurrency       int
	PerAdapterTimeout time.Duration
	// RunID identifies the run; a random UUID is used when empty.
	RunID string
}

// Runner executes runs.
type Runner struct {
	invoker Invoker
}

// NewRunner creates a Runner around an invoker.
func NewRunner(iv Invoker) *Runner {
	return &Runner{invoker: iv}
}

// Run executes every adapter against every input and returns the finalized
// report.
func (r *Runner) Run(ctx context.Context, specs []invoker.Spec, inputs []string, opts Options) (*model.RunReport, error) {
	ids, err := validate(specs, inputs, opts)
	if err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	report := model.NewRunReport(runID, ids, inputs)

	total := len(specs) * len(inputs)
	output.Logger.Info("Starting run",
		"run_id", runID,
		"adapters", len(specs),
		"inputs", len(inputs),
		"invocations", total,
		"concurrency", opts.Concurrency,
	)

	g := new(errgroup.Group)
	g.SetLimit(opts.Concurrency)

	for _, spec := range specs {
		timeout := opts.PerAdapterTimeout
		if spec.Timeout > 0 {
			timeout = spec.Timeout
		}
		for _, input := range inputs {
			g.Go(func() error {
				inv := r.execute(ctx, spec, input, timeout)
				logInvocation(inv)
				return report.Add(inv)
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble run report: %w", err)
	}
	if err := report.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize run report: %w", err)
	}

	if ctx.Err() != nil {
		output.Logger.Warn("Run cancelled", "run_id", runID)
	}
	output.Logger.Info("Run complete", "run_id", runID, "duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report, nil
}

func (r *Runner) execute(ctx context.Context, spec invoker.Spec, input string, timeout time.Duration) model.AdapterInvocation {
	var inv model.AdapterInvocation
	if err := ctx.Err(); err != nil {
		inv = model.AdapterInvocation{
			HasInput: true,
			ExitCode: -1,
			Failure:  &model.Failure{Kind: model.FailureCancelled, Message: "cancelled before dispatch"},
		}
	} else {
		inv = r.invoker.Invoke(ctx, spec, input, timeout)
	}
	// The report is keyed on these; never trust the invoker to set them.
	inv.AdapterID = spec.ID
	inv.Input = input
	return inv
}

func validate(specs []invoker.Spec, inputs []string, opts Options) ([]string, error) {
	if len(specs) == 0 {
		return nil, ErrNoAdapters
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if opts.Concurrency < 1 {
		return nil, ErrInvalidConcurrency
	}

	ids := make([]string, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if seen[s.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAdapter, s.ID)
		}
		seen[s.ID] = true
		ids = append(ids, s.ID)
	}

	seenInput := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		if seenInput[in] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateInput, in)
		}
		seenInput[in] = true
	}
	return ids, nil
}

func logInvocation(inv model.AdapterInvocation) {
	if inv.Failure == nil {
		output.Logger.Debug("Invocation Success",
			"adapter", inv.AdapterID,
			"input", inv.Input,
			"wall", fmt.Sprintf("%.3fs", inv.WallTimeSeconds),
		)
		return
	}

	log := output.Logger.Warn
	if !inv.Failure.Kind.Infrastructure() {
		log = output.Logger.Debug
	}
	log("Invocation Failed",
		"adapter", inv.AdapterID,
		"input", inv.Input,
		"failure", inv.Failure.Kind,
		"error", inv.Failure.Message,
	)
}
