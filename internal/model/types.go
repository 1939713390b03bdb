/*
PURPOSE:
  Defines the per-invocation result record and the failure taxonomy.
  One AdapterInvocation exists per (adapter, input) pair in a run.

REQUIREMENTS:
  User-specified:
  - Record parse time, init (warm-up) time, peak memory, engine version.
  - Failures are data, never a gap in the report.

  Implementation-discovered:
  - Adapter-reported metrics are pointers: a timed-out adapter never
    reported them and they must stay unset, not zero.
  - Harness-observed wall time / peak RSS / exit code are kept for
    diagnostics alongside the adapter-reported numbers.

ARCHITECTURE INTEGRATION:
  - Used by: internal/invoker, internal/engine, internal/compare, internal/output
  - Shared across boundaries.

ERROR HANDLING:
  - None (pure data structs).

USAGE:
  inv := model.AdapterInvocation{AdapterID: "mssola", Input: ua, ...}

RELATED FILES:
  - internal/output/csv.go
  - internal/output/json.go

MAINTENANCE:
  - Update CSV/JSON writers when adding fields.
*/

package model

// FailureKind classifies why an invocation produced no canonical record.
type FailureKind string

const (
	FailureTimeout         FailureKind = "Timeout"
	FailureAdapterCrashed  FailureKind = "AdapterCrashed"
	FailureMalformedOutput FailureKind = "MalformedOutput"
	FailureCancelled       FailureKind = "Cancelled"
	// FailureLogicalParseError is the adapter itself reporting result.err.
	// It is a valid outcome, not an infrastructure failure.
	FailureLogicalParseError FailureKind = "LogicalParseError"
)

// FailureKinds lists every kind in reporting order.
var FailureKinds = []FailureKind{
	FailureLogicalParseError,
	FailureTimeout,
	FailureAdapterCrashed,
	FailureMalformedOutput,
	FailureCancelled,
}

// Infrastructure reports whether the kind is a harness-side failure.
func (k FailureKind) Infrastructure() bool {
	switch k {
	case FailureTimeout, FailureAdapterCrashed, FailureMalformedOutput, FailureCancelled:
		return true
	}
	return false
}

// Failure describes why an invocation has no canonical record.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message,omitempty"`
}

// AdapterInvocation is one execution of one adapter against one input.
// It is created once and not modified afterwards.
type AdapterInvocation struct {
	AdapterID    string            `json:"adapterId"`
	Input        string            `json:"input"`
	HasInput     bool              `json:"hasInput"`
	InputHeaders map[string]string `json:"inputHeaders,omitempty"`

	Record *CanonicalRecord `json:"canonicalRecord,omitempty"`

	// Adapter-reported metrics.
	ParseTimeSeconds *float64 `json:"parseTimeSeconds,omitempty"`
	InitTimeSeconds  *float64 `json:"initTimeSeconds,omitempty"`
	MemoryUsedBytes  *int64   `json:"memoryUsedBytes,omitempty"`
	EngineVersion    string   `json:"engineVersion,omitempty"`

	Failure *Failure `json:"failure,omitempty"`

	// Harness-observed diagnostics.
	WallTimeSeconds      float64 `json:"wallTimeSeconds"`
	ObservedPeakRSSBytes *int64  `json:"observedPeakRssBytes,omitempty"`
	ExitCode             int     `json:"exitCode"`
	Stderr               string  `json:"stderr,omitempty"`
}

// Succeeded reports whether the invocation produced a canonical record.
func (inv AdapterInvocation) Succeeded() bool {
	return inv.Failure == nil && inv.Record != nil
}

// FailureKind returns the failure kind or "" on success.
func (inv AdapterInvocation) FailureKind() FailureKind {
	if inv.Failure == nil {
		return ""
	}
	return inv.Failure.Kind
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
