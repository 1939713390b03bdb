/*
PURPOSE:
  Adapter Invoker. Runs one adapter as an isolated child process against one
  input, applies the timeout, captures stdout/stderr/exit code, decodes the
  envelope and classifies failures.

REQUIREMENTS:
  User-specified:
  - One child process per invocation; no shared memory or global state.
  - Timeout -> force-terminate -> failure=Timeout.
  - stdout is read in full only after the child exits.
  - Non-zero exit -> AdapterCrashed; zero exit + invalid envelope ->
    MalformedOutput; result.err -> LogicalParseError.
  - Never abort the run: every failure is returned as data.

  Implementation-discovered:
  - Kill the whole process group: interpreters (php, node, java) often
    fork helpers that would otherwise keep the pipes open.
  - Cmd.WaitDelay bounds the wait on pipes after the kill.
  - The group is killed again once Wait returns, whatever the outcome, so
    no helper outlives its invocation. A zero exit whose pipes were only
    closed by WaitDelay still counts as a clean exit.
  - Resource limits are per spec and applied right after spawn.

ARCHITECTURE INTEGRATION:
  - Called by: internal/engine, internal/cli (probe)
  - Uses: internal/contract, internal/model, internal/output

ERROR HANDLING:
  - No Go errors are returned. Limit application failures are logged.

USAGE:
  iv := invoker.New(invoker.DefaultOptions())
  inv := iv.Invoke(ctx, spec, ua, 10*time.Second)

RELATED FILES:
  - process_unix.go, platform_linux.go, writer.go
*/

package invoker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/daryltucker/ua-bench/internal/contract"
	"github.com/daryltucker/ua-bench/internal/model"
	"github.com/daryltucker/ua-bench/internal/output"
)

// Limits is the per-adapter resource-limit configuration applied to the
// child at spawn time. Zero means unlimited / default.
type Limits struct {
	MaxMemoryBytes int64
	MaxCPUSeconds  int64
	MaxOutputBytes int64
}

// Spec describes how to start one adapter.
type Spec struct {
	ID      string
	Command string
	Args    []string
	Env     map[string]string
	Dir     string
	Limits  Limits
	// Timeout overrides the run-wide per-invocation timeout when non-zero.
	Timeout time.Duration
}

// Options configures an Invoker.
type Options struct {
	// AllowedEnv lists parent environment variables passed to children.
	AllowedEnv []string
	// MaxOutputBytes caps captured stdout unless the spec overrides it.
	MaxOutputBytes int64
	// MaxStderrBytes caps captured stderr.
	MaxStderrBytes int64
	// WaitDelay bounds the wait for I/O after the child is killed.
	WaitDelay time.Duration
	// DefaultTimeout applies when the caller passes a zero timeout.
	DefaultTimeout time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		AllowedEnv:     []string{"PATH", "HOME", "TMPDIR", "TEMP", "TMP", "LANG", "LC_ALL", "SYSTEMROOT"},
		MaxOutputBytes: 8 << 20,
		MaxStderrBytes: 4 << 10,
		WaitDelay:      2 * time.Second,
		DefaultTimeout: 30 * time.Second,
	}
}

// Invoker runs adapters. It holds no per-invocation state and is safe for
// concurrent use.
type Invoker struct {
	opts Options
}

// New creates an Invoker.
func New(opts Options) *Invoker {
	d := DefaultOptions()
	if opts.MaxOutputBytes <= 0 {
		opts.MaxOutputBytes = d.MaxOutputBytes
	}
	if opts.MaxStderrBytes <= 0 {
		opts.MaxStderrBytes = d.MaxStderrBytes
	}
	if opts.WaitDelay <= 0 {
		opts.WaitDelay = d.WaitDelay
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = d.DefaultTimeout
	}
	return &Invoker{opts: opts}
}

// Invoke runs spec against one input string.
func (iv *Invoker) Invoke(ctx context.Context, spec Spec, input string, timeout time.Duration) model.AdapterInvocation {
	inv := model.AdapterInvocation{
		AdapterID: spec.ID,
		Input:     input,
		HasInput:  true,
	}
	return iv.run(ctx, spec, contract.Args(input), timeout, inv)
}

// Probe runs the adapter's no-input path: warm-up only, no scored call.
func (iv *Invoker) Probe(ctx context.Context, spec Spec, timeout time.Duration) model.AdapterInvocation {
	inv := model.AdapterInvocation{AdapterID: spec.ID}
	return iv.run(ctx, spec, nil, timeout, inv)
}

func fail(inv model.AdapterInvocation, kind model.FailureKind, format string, args ...any) model.AdapterInvocation {
	inv.Failure = &model.Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
	inv.Record = nil
	return inv
}

func (iv *Invoker) run(ctx context.Context, spec Spec, args []string, timeout time.Duration, inv model.AdapterInvocation) model.AdapterInvocation {
	inv.ExitCode = -1
	if timeout <= 0 {
		timeout = iv.opts.DefaultTimeout
	}
	if err := ctx.Err(); err != nil {
		return fail(inv, model.FailureCancelled, "cancelled before start: %v", err)
	}

	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, spec.Command, append(slices.Clone(spec.Args), args...)...)
	cmd.Dir = spec.Dir
	cmd.Env = iv.environment(spec.Env)

	maxOut := iv.opts.MaxOutputBytes
	if spec.Limits.MaxOutputBytes > 0 {
		maxOut = spec.Limits.MaxOutputBytes
	}
	stdout := &cappedWriter{max: maxOut}
	stderr := &cappedWriter{max: iv.opts.MaxStderrBytes}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	setupProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = iv.opts.WaitDelay

	start := time.Now()
	if err := cmd.Start(); err != nil {
		inv.WallTimeSeconds = time.Since(start).Seconds()
		return fail(inv, model.FailureAdapterCrashed, "start %s: %v", spec.Command, err)
	}
	if err := applyLimits(cmd.Process.Pid, spec.Limits); err != nil {
		output.Logger.Warn("Could not apply resource limits", "adapter", spec.ID, "error", err)
	}

	waitErr := cmd.Wait()
	if err := killProcessGroup(cmd); err != nil {
		output.Logger.Debug("Could not kill process group", "adapter", spec.ID, "error", err)
	}
	inv.WallTimeSeconds = time.Since(start).Seconds()
	inv.Stderr = strings.TrimSpace(stderr.String())
	if cmd.ProcessState != nil {
		inv.ExitCode = cmd.ProcessState.ExitCode()
	}

	if waitErr != nil {
		// The parent context wins over our own deadline: a run-wide cancel
		// that races a timeout is still a cancel.
		if ctx.Err() != nil {
			return fail(inv, model.FailureCancelled, "run cancelled after %s", time.Since(start).Round(time.Millisecond))
		}
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			return fail(inv, model.FailureTimeout, "killed after %s", timeout)
		}
	}

	inv.ObservedPeakRSSBytes = peakRSS(cmd.ProcessState)

	if errors.Is(waitErr, exec.ErrWaitDelay) && cmd.ProcessState != nil && cmd.ProcessState.Success() {
		output.Logger.Debug("Adapter left its output pipes open", "adapter", spec.ID)
		waitErr = nil
	}
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return fail(inv, model.FailureAdapterCrashed, "adapter exited: %v", exitErr)
		}
		return fail(inv, model.FailureAdapterCrashed, "wait: %v", waitErr)
	}

	if stdout.truncated {
		return fail(inv, model.FailureMalformedOutput, "stdout exceeded %d bytes", maxOut)
	}

	env, err := contract.Decode(stdout.Bytes())
	if err != nil {
		return fail(inv, model.FailureMalformedOutput, "%v", err)
	}
	if env.HasUA != inv.HasInput {
		return fail(inv, model.FailureMalformedOutput, "hasUa=%t for an invocation with input=%t", env.HasUA, inv.HasInput)
	}

	inv.ParseTimeSeconds = model.Ptr(env.ParseTime)
	inv.InitTimeSeconds = model.Ptr(env.InitTime)
	inv.MemoryUsedBytes = model.Ptr(env.MemoryUsed)
	inv.EngineVersion = env.Version
	inv.InputHeaders = env.Headers

	switch {
	case env.Result.Err != nil:
		return fail(inv, model.FailureLogicalParseError, "%s", env.Result.Err.Message)
	case !inv.HasInput:
		return inv
	case env.Result.Parsed == nil:
		return fail(inv, model.FailureMalformedOutput, "result has neither parsed nor err")
	}

	rec := model.Normalize(*env.Result.Parsed)
	inv.Record = &rec
	return inv
}

// environment builds the child environment from the allow-listed parent
// variables plus the spec's own variables.
func (iv *Invoker) environment(extra map[string]string) []string {
	env := make([]string, 0, len(iv.opts.AllowedEnv)+len(extra))
	for _, key := range iv.opts.AllowedEnv {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env
}
