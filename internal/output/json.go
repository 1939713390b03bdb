/*
PURPOSE:
  Writes records to a JSON Lines file (NDJSON): one invocation or one
  comparison result per line.

REQUIREMENTS:
  User-specified:
  - JSON output for easier parsing.

  Implementation-discovered:
  - JSON Lines lets the comparison sequence be streamed without holding
    every result in memory.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli
  - Consumes: internal/model.AdapterInvocation, internal/model.ComparisonResult

ERROR HANDLING:
  - Returns error on file creation or write failure.

IMPLEMENTATION RULES:
  - Use encoding/json.NewEncoder.
  - Thread-safe.

USAGE:
  w, err := output.NewJSONWriter[model.AdapterInvocation]("invocations.jsonl")
  w.Write(inv)
  w.Close()

RELATED FILES:
  - report.go
*/

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// JSONWriter handles writing values to a JSON Lines file.
type JSONWriter[T any] struct {
	file    *os.File
	encoder *json.Encoder
	mu      sync.Mutex
}

// NewJSONWriter creates a new JSONWriter, overwriting path.
func NewJSONWriter[T any](path string) (*JSONWriter[T], error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONWriter[T]{
		file:    f,
		encoder: enc,
	}, nil
}

// Write writes a single value as a JSON line.
func (jw *JSONWriter[T]) Write(v T) error {
	jw.mu.Lock()
	defer jw.mu.Unlock()

	return jw.encoder.Encode(v)
}

// Close closes the underlying file.
func (jw *JSONWriter[T]) Close() error {
	return jw.file.Close()
}
