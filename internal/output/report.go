package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/daryltucker/ua-bench/internal/model"
)

// WriteReport writes the full run report as one indented JSON document.
func WriteReport(path string, r *model.RunReport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		f.Close()
		return fmt.Errorf("encode run report: %w", err)
	}
	return f.Close()
}

// LoadReport reads a report written by WriteReport and re-validates it, so a
// hand-edited file with a missing or duplicated pair is rejected.
func LoadReport(path string) (*model.RunReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	r := new(model.RunReport)
	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := r.Finalize(); err != nil {
		return nil, fmt.Errorf("invalid run report %s: %w", path, err)
	}
	return r, nil
}
