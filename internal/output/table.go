package output

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/daryltucker/ua-bench/internal/compare"
	"github.com/daryltucker/ua-bench/internal/model"
)

// Mode controls the table output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode maps "ascii"/"table" and "markdown"/"md" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii", "table":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return ASCII, fmt.Errorf("invalid table mode %q", s)
}

func newTable(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

func render(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// ComparisonTable renders the fields of one input. Only fields with at least
// one answer are listed unless all is set.
func ComparisonTable(res model.ComparisonResult, m Mode, all bool) string {
	w := newTable(m)
	w.SetTitle(Truncate(res.Input, 100))
	w.AppendHeader(table.Row{"Field", "Status", "Values", "Absent", "Unsupported"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 60},
		{Number: 4, WidthMax: 30},
		{Number: 5, WidthMax: 30},
	})

	for _, f := range res.Fields {
		if !all && len(f.Groups) == 0 {
			continue
		}
		status := "agree"
		switch {
		case len(f.Groups) == 0:
			status = "-"
		case !f.Agreed():
			status = "CONFLICT"
		}
		groups := make([]string, 0, len(f.Groups))
		for _, g := range f.Groups {
			groups = append(groups, fmt.Sprintf("%q: %s", g.Value, strings.Join(g.Adapters, ", ")))
		}
		w.AppendRow(table.Row{
			f.Field,
			status,
			strings.Join(groups, "\n"),
			strings.Join(f.Absent, ", "),
			strings.Join(f.Unsupported, ", "),
		})
	}

	for _, fa := range res.Failed {
		w.AppendFooter(table.Row{"failed", fa.Kind, fa.AdapterID, Truncate(fa.Message, 30), ""})
	}
	return render(w, m)
}

// SummaryTable renders the per-adapter cost profile.
func SummaryTable(sums []compare.AdapterSummary, m Mode) string {
	w := newTable(m)
	w.SetTitle("Adapter summary")
	w.AppendHeader(table.Row{"Adapter", "Version", "OK", "Logical", "Infra", "Parse min", "Parse mean", "Parse max", "Init mean", "Peak mem"})
	cfgs := make([]table.ColumnConfig, 0, 8)
	for n := 3; n <= 10; n++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: n, Align: text.AlignRight})
	}
	w.SetColumnConfigs(cfgs)

	for _, s := range sums {
		w.AppendRow(table.Row{
			s.AdapterID,
			strings.Join(s.EngineVersions, ", "),
			fmt.Sprintf("%d/%d", s.Successes, s.Invocations),
			s.LogicalErrors,
			s.InfrastructureFailures(),
			FmtSeconds(s.MinParseTime),
			FmtSeconds(s.MeanParseTime),
			FmtSeconds(s.MaxParseTime),
			FmtSeconds(s.MeanInitTime),
			FmtBytes(s.PeakMemory),
		})
	}
	return render(w, m)
}

// ProbeTable renders the no-input results of every adapter.
func ProbeTable(invs []model.AdapterInvocation, m Mode) string {
	w := newTable(m)
	w.SetTitle("Adapter probe")
	w.AppendHeader(table.Row{"Adapter", "Version", "Init", "Memory", "Wall", "Status"})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, WidthMax: 60},
	})

	for _, inv := range invs {
		status := "ok"
		if inv.Failure != nil {
			status = fmt.Sprintf("%s: %s", inv.Failure.Kind, Truncate(inv.Failure.Message, 50))
		}
		w.AppendRow(table.Row{
			inv.AdapterID,
			inv.EngineVersion,
			FmtSeconds(inv.InitTimeSeconds),
			FmtBytes(inv.MemoryUsedBytes),
			fmt.Sprintf("%.3fs", inv.WallTimeSeconds),
			status,
		})
	}
	return render(w, m)
}

// FmtSeconds formats an optional duration in seconds with a unit that keeps
// sub-millisecond parse times readable. Nil renders as "-".
func FmtSeconds(p *float64) string {
	if p == nil {
		return "-"
	}
	s := *p
	switch {
	case s < 0.001:
		return fmt.Sprintf("%.1fµs", s*1e6)
	case s < 1:
		return fmt.Sprintf("%.2fms", s*1e3)
	default:
		return fmt.Sprintf("%.3fs", s)
	}
}

// FmtBytes formats an optional byte count with a binary suffix.
func FmtBytes(p *int64) string {
	if p == nil {
		return "-"
	}
	n := *p
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fGiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
