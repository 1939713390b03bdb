package model

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	// ErrReportFrozen is returned when adding to a finalized report.
	ErrReportFrozen = errors.New("run report is finalized")
	// ErrUnknownPair is returned for an invocation outside the configured cross-product.
	ErrUnknownPair = errors.New("invocation for an unconfigured adapter/input pair")
	// ErrDuplicatePair is returned when a pair is reported twice.
	ErrDuplicatePair = errors.New("adapter/input pair reported twice")
	// ErrMissingPair is returned by Finalize when a pair has no invocation.
	ErrMissingPair = errors.New("adapter/input pair has no invocation")
)

// RunReport accumulates every invocation of a run. Workers call Add
// concurrently; Finalize sorts into configured order and freezes it.
type RunReport struct {
	RunID       string              `json:"runId"`
	StartedAt   time.Time           `json:"startedAt"`
	FinishedAt  time.Time           `json:"finishedAt"`
	Adapters    []string            `json:"adapters"`
	Inputs      []string            `json:"inputs"`
	Invocations []AdapterInvocation `json:"invocations"`

	mu           sync.Mutex
	frozen       bool
	adapterIndex map[string]int
	inputIndex   map[string]int
	seen         map[[2]int]bool
}

// NewRunReport creates an empty report for the adapters × inputs cross-product.
func NewRunReport(runID string, adapters, inputs []string) *RunReport {
	r := &RunReport{
		RunID:       runID,
		StartedAt:   time.Now().UTC(),
		Adapters:    slices.Clone(adapters),
		Inputs:      slices.Clone(inputs),
		Invocations: make([]AdapterInvocation, 0, len(adapters)*len(inputs)),
	}
	r.index()
	return r
}

func (r *RunReport) index() {
	if r.adapterIndex != nil {
		return
	}
	r.adapterIndex = make(map[string]int, len(r.Adapters))
	for i, a := range r.Adapters {
		r.adapterIndex[a] = i
	}
	r.inputIndex = make(map[string]int, len(r.Inputs))
	for i, in := range r.Inputs {
		r.inputIndex[in] = i
	}
}

func (r *RunReport) key(inv AdapterInvocation) ([2]int, bool) {
	a, ok := r.adapterIndex[inv.AdapterID]
	if !ok {
		return [2]int{}, false
	}
	i, ok := r.inputIndex[inv.Input]
	if !ok {
		return [2]int{}, false
	}
	return [2]int{a, i}, true
}

// Add appends one invocation. Safe for concurrent use.
func (r *RunReport) Add(inv AdapterInvocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrReportFrozen
	}
	r.index()
	k, ok := r.key(inv)
	if !ok {
		return fmt.Errorf("%w: adapter=%q", ErrUnknownPair, inv.AdapterID)
	}
	if r.seen == nil {
		r.seen = make(map[[2]int]bool)
	}
	if r.seen[k] {
		return fmt.Errorf("%w: adapter=%q input=%q", ErrDuplicatePair, inv.AdapterID, inv.Input)
	}
	r.seen[k] = true
	r.Invocations = append(r.Invocations, inv)
	return nil
}

// Finalize sorts invocations into (adapter, input) configured order, checks
// that every pair is present exactly once and freezes the report. It is also
// used to re-validate a report decoded from disk.
func (r *RunReport) Finalize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil
	}
	r.index()

	keys := make(map[[2]int]bool, len(r.Invocations))
	for _, inv := range r.Invocations {
		k, ok := r.key(inv)
		if !ok {
			return fmt.Errorf("%w: adapter=%q", ErrUnknownPair, inv.AdapterID)
		}
		if keys[k] {
			return fmt.Errorf("%w: adapter=%q input=%q", ErrDuplicatePair, inv.AdapterID, inv.Input)
		}
		keys[k] = true
	}
	for a, id := range r.Adapters {
		for i, in := range r.Inputs {
			if !keys[[2]int{a, i}] {
				return fmt.Errorf("%w: adapter=%q input=%q", ErrMissingPair, id, in)
			}
		}
	}

	slices.SortFunc(r.Invocations, func(x, y AdapterInvocation) int {
		kx, _ := r.key(x)
		ky, _ := r.key(y)
		if kx[0] != ky[0] {
			return kx[0] - ky[0]
		}
		return kx[1] - ky[1]
	})
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now().UTC()
	}
	r.frozen = true
	return nil
}

// Frozen reports whether Finalize has completed.
func (r *RunReport) Frozen() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frozen
}

// ForInput returns the invocations for one input in adapter order.
// The report must be finalized.
func (r *RunReport) ForInput(inputIdx int) []AdapterInvocation {
	out := make([]AdapterInvocation, 0, len(r.Adapters))
	for a := range r.Adapters {
		out = append(out, r.Invocations[a*len(r.Inputs)+inputIdx])
	}
	return out
}

// ForAdapter returns the invocations of one adapter in input order.
// The report must be finalized.
func (r *RunReport) ForAdapter(adapterIdx int) []AdapterInvocation {
	start := adapterIdx * len(r.Inputs)
	return r.Invocations[start : start+len(r.Inputs)]
}
