/*
PURPOSE:
  Comparison Engine. Turns a finalized RunReport into one ComparisonResult
  per input string: for every canonical field, which adapters agree, which
  disagree, and which had nothing to say.

REQUIREMENTS:
  User-specified:
  - Absence (unknown or unsupported) never counts as a value.
  - Versions compare as opaque strings; "98.0" and "98.0.4758.102" differ.
  - Lazy and restartable; results are independent of each other.
  - Derived purely from the report; the report is never mutated.

  Implementation-discovered:
  - Group and adapter ordering is fixed (size desc, value, adapter id) so
    that output is identical regardless of scheduling or adapter order.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/output
  - Uses: internal/model

USAGE:
  for res := range compare.Compare(report) { ... }

RELATED FILES:
  - internal/model/fields.go
  - summary.go
*/

package compare

import (
	"cmp"
	"iter"
	"slices"

	"github.com/daryltucker/ua-bench/internal/model"
)

// Compare returns a lazy sequence of comparison results, one per input in
// report order. Each iteration recomputes from the report.
func Compare(report *model.RunReport) iter.Seq[model.ComparisonResult] {
	return func(yield func(model.ComparisonResult) bool) {
		for i := range report.Inputs {
			if !yield(Input(report, i)) {
				return
			}
		}
	}
}

// Input compares all adapters for the input at index i.
func Input(report *model.RunReport, i int) model.ComparisonResult {
	invs := report.ForInput(i)
	res := model.ComparisonResult{
		Input:  report.Inputs[i],
		Fields: make([]model.FieldComparison, 0, len(model.Fields)),
	}

	answered := make([]model.AdapterInvocation, 0, len(invs))
	for _, inv := range invs {
		if !inv.Succeeded() {
			res.Failed = append(res.Failed, failed(inv))
			continue
		}
		answered = append(answered, inv)
	}
	slices.SortFunc(res.Failed, func(a, b model.FailedAdapter) int {
		return cmp.Compare(a.AdapterID, b.AdapterID)
	})

	for _, f := range model.Fields {
		res.Fields = append(res.Fields, Field(f, answered))
	}
	return res
}

// Field partitions the successful invocations by their value for f.
func Field(f model.Field, invs []model.AdapterInvocation) model.FieldComparison {
	fc := model.FieldComparison{Field: f.Path}
	byValue := make(map[string][]string)

	for _, inv := range invs {
		v, state := f.Value(inv.Record)
		switch state {
		case model.Known:
			byValue[v] = append(byValue[v], inv.AdapterID)
		case model.Unknown:
			fc.Absent = append(fc.Absent, inv.AdapterID)
		default:
			fc.Unsupported = append(fc.Unsupported, inv.AdapterID)
		}
	}

	for v, ids := range byValue {
		slices.Sort(ids)
		fc.Groups = append(fc.Groups, model.ValueGroup{Value: v, Adapters: ids})
	}
	slices.SortFunc(fc.Groups, func(a, b model.ValueGroup) int {
		if c := cmp.Compare(len(b.Adapters), len(a.Adapters)); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	slices.Sort(fc.Absent)
	slices.Sort(fc.Unsupported)
	return fc
}

func failed(inv model.AdapterInvocation) model.FailedAdapter {
	fa := model.FailedAdapter{AdapterID: inv.AdapterID}
	if inv.Failure != nil {
		fa.Kind = inv.Failure.Kind
		fa.Message = inv.Failure.Message
	} else {
		fa.Kind = model.FailureMalformedOutput
		fa.Message = "no canonical record"
	}
	return fa
}
