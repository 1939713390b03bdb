package output_test

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daryltucker/ua-bench/internal/compare"
	"github.com/daryltucker/ua-bench/internal/model"
	"github.com/daryltucker/ua-bench/internal/output"
)

func sampleReport(t *testing.T) *model.RunReport {
	t.Helper()
	r := model.NewRunReport("run-1", []string{"a", "b"}, []string{"Mozilla/5.0 Chrome Mobile"})
	require.NoError(t, r.Add(model.AdapterInvocation{
		AdapterID:        "b",
		Input:            "Mozilla/5.0 Chrome Mobile",
		HasInput:         true,
		Failure:          &model.Failure{Kind: model.FailureTimeout, Message: "killed after 1s"},
		WallTimeSeconds:  1.01,
		ExitCode:         -1,
		ParseTimeSeconds: nil,
	}))
	require.NoError(t, r.Add(model.AdapterInvocation{
		AdapterID:        "a",
		Input:            "Mozilla/5.0 Chrome Mobile",
		HasInput:         true,
		EngineVersion:    "1.0",
		ParseTimeSeconds: model.Ptr(0.0004),
		InitTimeSeconds:  model.Ptr(0.25),
		MemoryUsedBytes:  model.Ptr(int64(3 << 20)),
		Record: &model.CanonicalRecord{
			Device: &model.Device{Type: model.Some("mobile"), Brand: model.None[string]()},
			Client: &model.Client{Name: model.Some("Chrome Mobile"), Version: model.Some("98.0")},
			Raw:    json.RawMessage(`{"native":true}`),
		},
	}))
	require.NoError(t, r.Finalize())
	return r
}

func TestConfigure(t *testing.T) {
	defer output.SetLogger(output.Logger)

	var buf bytes.Buffer
	require.NoError(t, output.Configure("warn", "json", &buf))
	output.Logger.Info("suppressed")
	output.Logger.Warn("visible", "adapter", "a")

	out := buf.String()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, `"adapter":"a"`)

	assert.Error(t, output.Configure("loud", "text", &buf))
	assert.Error(t, output.Configure("info", "xml", &buf))
}

func TestReport_RoundTrip(t *testing.T) {
	r := sampleReport(t)
	path := filepath.Join(t.TempDir(), "report.json")
	require.NoError(t, output.WriteReport(path, r))

	loaded, err := output.LoadReport(path)
	require.NoError(t, err)
	assert.True(t, loaded.Frozen())
	assert.Equal(t, r.RunID, loaded.RunID)
	assert.Equal(t, r.Adapters, loaded.Adapters)
	require.Len(t, loaded.Invocations, 2)
	assert.Equal(t, r.Invocations[0].Record.Device.Type, loaded.Invocations[0].Record.Device.Type)
	assert.Equal(t, model.Unknown, loaded.Invocations[0].Record.Device.Brand.State())
	assert.Nil(t, loaded.Invocations[1].ParseTimeSeconds)

	var want, got []model.ComparisonResult
	for res := range compare.Compare(r) {
		want = append(want, res)
	}
	for res := range compare.Compare(loaded) {
		got = append(got, res)
	}
	assert.Equal(t, want, got)
}

func TestLoadReport_RejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	doc := `{"runId":"x","adapters":["a","b"],"inputs":["u"],"invocations":[{"adapterId":"a","input":"u","hasInput":true}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := output.LoadReport(path)
	require.ErrorIs(t, err, model.ErrMissingPair)
}

func TestCSVWriter(t *testing.T) {
	r := sampleReport(t)
	path := filepath.Join(t.TempDir(), "invocations.csv")
	w, err := output.NewCSVWriter(path)
	require.NoError(t, err)
	for _, inv := range r.Invocations {
		require.NoError(t, w.Write(inv))
	}
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, output.CSVHeader, rows[0])

	col := func(row []string, name string) string {
		for i, h := range output.CSVHeader {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}
	assert.Equal(t, "a", col(rows[1], "adapter"))
	assert.Equal(t, "mobile", col(rows[1], "device_type"))
	assert.Equal(t, "98.0", col(rows[1], "client_version"))
	assert.Equal(t, "0.000400", col(rows[1], "parse_time_s"))
	assert.Equal(t, "Timeout", col(rows[2], "failure"))
	assert.Empty(t, col(rows[2], "parse_time_s"), "unreported metrics stay empty")
	assert.Empty(t, col(rows[2], "memory_used_bytes"))
}

func TestJSONWriter(t *testing.T) {
	r := sampleReport(t)
	path := filepath.Join(t.TempDir(), "comparison.jsonl")
	w, err := output.NewJSONWriter[model.ComparisonResult](path)
	require.NoError(t, err)
	for res := range compare.Compare(r) {
		require.NoError(t, w.Write(res))
	}
	require.NoError(t, w.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines int
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		lines++
		var res model.ComparisonResult
		require.NoError(t, json.Unmarshal(sc.Bytes(), &res))
		assert.Equal(t, "Mozilla/5.0 Chrome Mobile", res.Input)
		require.Len(t, res.Failed, 1)
		assert.Equal(t, model.FailureTimeout, res.Failed[0].Kind)
	}
	require.NoError(t, sc.Err())
	assert.Equal(t, 1, lines)
}

func TestTables(t *testing.T) {
	r := sampleReport(t)
	var res model.ComparisonResult
	for c := range compare.Compare(r) {
		res = c
	}

	ascii := output.ComparisonTable(res, output.ASCII, false)
	assert.Contains(t, ascii, "device.type")
	assert.Contains(t, ascii, `"mobile": a`)
	assert.NotContains(t, ascii, "platform.name", "fields nobody answered are hidden")
	assert.Contains(t, strings.ToLower(ascii), "timeout")

	all := output.ComparisonTable(res, output.Markdown, true)
	assert.Contains(t, all, "| platform.name")

	summary := output.SummaryTable(compare.Summarize(r), output.ASCII)
	assert.Contains(t, summary, "1/1")
	assert.Contains(t, summary, "400.0µs")
	assert.Contains(t, summary, "3.0MiB")

	probe := output.ProbeTable(r.Invocations, output.ASCII)
	assert.Contains(t, probe, "Timeout: killed after 1s")
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "-", output.FmtSeconds(nil))
	assert.Equal(t, "250.00ms", output.FmtSeconds(model.Ptr(0.25)))
	assert.Equal(t, "1.500s", output.FmtSeconds(model.Ptr(1.5)))
	assert.Equal(t, "512B", output.FmtBytes(model.Ptr(int64(512))))
	assert.Equal(t, "2.0KiB", output.FmtBytes(model.Ptr(int64(2048))))
	assert.Equal(t, "ab...", output.Truncate("abcdefgh", 5))
	assert.Equal(t, "abc", output.Truncate("abc", 5))

	m, err := output.ParseMode("md")
	require.NoError(t, err)
	assert.Equal(t, output.Markdown, m)
	_, err = output.ParseMode("html")
	assert.Error(t, err)
}
