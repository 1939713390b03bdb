package compare

import (
	"slices"

	"github.com/daryltucker/ua-bench/internal/model"
)

// AdapterSummary is the per-adapter cost and outcome profile of a run.
type AdapterSummary struct {
	AdapterID      string                    `json:"adapterId"`
	Invocations    int                       `json:"invocations"`
	Successes      int                       `json:"successes"`
	LogicalErrors  int                       `json:"logicalErrors"`
	Failures       map[model.FailureKind]int `json:"failures,omitempty"`
	MinParseTime   *float64                  `json:"minParseTimeSeconds,omitempty"`
	MeanParseTime  *float64                  `json:"meanParseTimeSeconds,omitempty"`
	MaxParseTime   *float64                  `json:"maxParseTimeSeconds,omitempty"`
	MeanInitTime   *float64                  `json:"meanInitTimeSeconds,omitempty"`
	PeakMemory     *int64                    `json:"peakMemoryBytes,omitempty"`
	EngineVersions []string                  `json:"engineVersions,omitempty"`
}

// InfrastructureFailures counts failures that are not logical parse errors.
func (s AdapterSummary) InfrastructureFailures() int {
	n := 0
	for k, c := range s.Failures {
		if k.Infrastructure() {
			n += c
		}
	}
	return n
}

// Summarize profiles every adapter of a finalized report, in adapter order.
// Metrics only include invocations that reported them.
func Summarize(report *model.RunReport) []AdapterSummary {
	out := make([]AdapterSummary, 0, len(report.Adapters))
	for a, id := range report.Adapters {
		out = append(out, summarize(id, report.ForAdapter(a)))
	}
	return out
}

func summarize(id string, invs []model.AdapterInvocation) AdapterSummary {
	s := AdapterSummary{AdapterID: id, Invocations: len(invs)}

	var parseSum, initSum float64
	var parseN, initN int
	for _, inv := range invs {
		switch {
		case inv.Succeeded():
			s.Successes++
		case inv.Failure != nil:
			if s.Failures == nil {
				s.Failures = make(map[model.FailureKind]int)
			}
			s.Failures[inv.Failure.Kind]++
			if inv.Failure.Kind == model.FailureLogicalParseError {
				s.LogicalErrors++
			}
		}

		if p := inv.ParseTimeSeconds; p != nil {
			parseSum += *p
			parseN++
			if s.MinParseTime == nil || *p < *s.MinParseTime {
				s.MinParseTime = model.Ptr(*p)
			}
			if s.MaxParseTime == nil || *p > *s.MaxParseTime {
				s.MaxParseTime = model.Ptr(*p)
			}
		}
		if p := inv.InitTimeSeconds; p != nil {
			initSum += *p
			initN++
		}
		if m := inv.MemoryUsedBytes; m != nil && (s.PeakMemory == nil || *m > *s.PeakMemory) {
			s.PeakMemory = model.Ptr(*m)
		}
		if v := inv.EngineVersion; v != "" && !slices.Contains(s.EngineVersions, v) {
			s.EngineVersions = append(s.EngineVersions, v)
		}
	}

	if parseN > 0 {
		s.MeanParseTime = model.Ptr(parseSum / float64(parseN))
	}
	if initN > 0 {
		s.MeanInitTime = model.Ptr(initSum / float64(initN))
	}
	return s
}
