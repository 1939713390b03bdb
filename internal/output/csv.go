/*
PURPOSE:
  Writes invocation results to a CSV file, one row per (adapter, input).
  Ensures data integrity by flushing writes immediately.

REQUIREMENTS:
  User-specified:
  - Output to CSV for spreadsheet comparison of cost per engine.

  Implementation-discovered:
  - Metrics an adapter never reported (timeouts) are empty cells, not 0.
  - Overwrite on each run.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: internal/model.AdapterInvocation

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/csv.
  - Flush() after every write (critical for crash resilience).
  - Mutex-guarded.

USAGE:
  w, err := output.NewCSVWriter("invocations.csv")
  w.Write(inv)
  w.Close()

RELATED FILES:
  - internal/model/types.go

MAINTENANCE:
  - Update Write() mapping when AdapterInvocation changes.
*/

package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/daryltucker/ua-bench/internal/model"
)

// CSVHeader is the first row of every invocations CSV.
var CSVHeader = []string{
	"adapter", "input", "has_input", "engine_version",
	"parse_time_s", "init_time_s", "memory_used_bytes",
	"wall_time_s", "observed_peak_rss_bytes", "exit_code",
	"failure", "error",
	"device_type", "client_name", "client_version", "platform_name", "platform_version", "engine_name",
}

// CSVWriter handles writing invocations to a CSV file.
type CSVWriter struct {
	file   *os.File
	writer *csv.Writer
	mu     sync.Mutex
}

// NewCSVWriter creates a new CSVWriter.
// It overwrites the file if it exists.
func NewCSVWriter(path string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(CSVHeader); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()

	return &CSVWriter{
		file:   f,
		writer: w,
	}, nil
}

// Write writes a single invocation to the CSV file.
// It is thread-safe.
func (cw *CSVWriter) Write(inv model.AdapterInvocation) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if err := cw.writer.Write(Row(inv)); err != nil {
		return err
	}
	cw.writer.Flush()
	return cw.writer.Error()
}

// Close closes the underlying file.
func (cw *CSVWriter) Close() error {
	cw.writer.Flush()
	return cw.file.Close()
}

// Row maps an invocation to CSV cells in CSVHeader order.
func Row(inv model.AdapterInvocation) []string {
	var kind, msg string
	if inv.Failure != nil {
		kind = string(inv.Failure.Kind)
		msg = inv.Failure.Message
	}

	field := func(path string) string {
		f, ok := model.FieldByPath(path)
		if !ok {
			return ""
		}
		v, _ := f.Value(inv.Record)
		return v
	}

	return []string{
		inv.AdapterID,
		inv.Input,
		strconv.FormatBool(inv.HasInput),
		inv.EngineVersion,
		seconds(inv.ParseTimeSeconds),
		seconds(inv.InitTimeSeconds),
		bytesCell(inv.MemoryUsedBytes),
		fmt.Sprintf("%.4f", inv.WallTimeSeconds),
		bytesCell(inv.ObservedPeakRSSBytes),
		strconv.Itoa(inv.ExitCode),
		kind,
		msg,
		field("device.type"),
		field("client.name"),
		field("client.version"),
		field("platform.name"),
		field("platform.version"),
		field("engine.name"),
	}
}

func seconds(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.6f", *p)
}

func bytesCell(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}
