package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/daryltucker/ua-bench/internal/compare"
	"github.com/daryltucker/ua-bench/internal/config"
	"github.com/daryltucker/ua-bench/internal/model"
	"github.com/daryltucker/ua-bench/internal/output"
)

type tableOptions struct {
	mode          output.Mode
	allFields     bool
	conflictsOnly bool
}

// writeArtefacts writes the enabled artefacts of a finished run into
// <output dir>/<run id> and prints the tables to w. Tables are printed even
// when a file could not be written; the file errors are returned joined.
func writeArtefacts(w io.Writer, cfg *config.Config, report *model.RunReport, tables tableOptions) error {
	var errs []error
	if cfg.HasFormat(config.FormatJSON) || cfg.HasFormat(config.FormatCSV) {
		errs = append(errs, writeFiles(cfg, report))
	}
	if cfg.HasFormat(config.FormatTable) {
		printTables(w, report, tables)
	}
	return errors.Join(errs...)
}

func writeFiles(cfg *config.Config, report *model.RunReport) error {
	dir := filepath.Join(cfg.OutputDir, report.RunID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	if cfg.HasFormat(config.FormatJSON) {
		if err := writeJSONArtefacts(dir, report); err != nil {
			return err
		}
	}
	if cfg.HasFormat(config.FormatCSV) {
		if err := writeCSV(filepath.Join(dir, "invocations.csv"), report); err != nil {
			return err
		}
	}
	output.Logger.Info("Artefacts written", "dir", dir)
	return nil
}

func writeJSONArtefacts(dir string, report *model.RunReport) error {
	if err := output.WriteReport(filepath.Join(dir, "report.json"), report); err != nil {
		return err
	}

	invs, err := output.NewJSONWriter[model.AdapterInvocation](filepath.Join(dir, "invocations.jsonl"))
	if err != nil {
		return err
	}
	for _, inv := range report.Invocations {
		if err := invs.Write(inv); err != nil {
			invs.Close()
			return fmt.Errorf("write invocations.jsonl: %w", err)
		}
	}
	if err := invs.Close(); err != nil {
		return err
	}

	cmp, err := output.NewJSONWriter[model.ComparisonResult](filepath.Join(dir, "comparison.jsonl"))
	if err != nil {
		return err
	}
	for res := range compare.Compare(report) {
		if err := cmp.Write(res); err != nil {
			cmp.Close()
			return fmt.Errorf("write comparison.jsonl: %w", err)
		}
	}
	return cmp.Close()
}

func writeCSV(path string, report *model.RunReport) error {
	w, err := output.NewCSVWriter(path)
	if err != nil {
		return err
	}
	for _, inv := range report.Invocations {
		if err := w.Write(inv); err != nil {
			w.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return w.Close()
}

func printTables(w io.Writer, report *model.RunReport, opts tableOptions) {
	for res := range compare.Compare(report) {
		if opts.conflictsOnly && len(res.Conflicts()) == 0 && len(res.Failed) == 0 {
			continue
		}
		fmt.Fprintln(w, output.ComparisonTable(res, opts.mode, opts.allFields))
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, output.SummaryTable(compare.Summarize(report), opts.mode))
}
