// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the summary and detail reports of a run as CSV
// files and, optionally, into a SQLite database.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/formula-cooccurrence/pkg/types"
)

const (
	DefaultSummaryFile = "cooccurrence_summary.csv"
	DefaultWorksFile   = "cooccurrence_works.csv"
)

// CSVWriter writes the two CSV reports into Dir, replacing existing files.
type CSVWriter struct {
	Dir         string
	SummaryFile string
	WorksFile   string
}

// NewCSVWriter returns a writer for cfg, filling in default names.
func NewCSVWriter(cfg types.ReportConfig) *CSVWriter {
	w := &CSVWriter{Dir: cfg.OutDir, SummaryFile: cfg.SummaryFile, WorksFile: cfg.WorksFile}
	if w.Dir == "" {
		w.Dir = "."
	}
	if w.SummaryFile == "" {
		w.SummaryFile = DefaultSummaryFile
	}
	if w.WorksFile == "" {
		w.WorksFile = DefaultWorksFile
	}
	return w
}

// SummaryPath returns the full path of the summary report.
func (w *CSVWriter) SummaryPath() string { return filepath.Join(w.Dir, w.SummaryFile) }

// WorksPath returns the full path of the detail report.
func (w *CSVWriter) WorksPath() string { return filepath.Join(w.Dir, w.WorksFile) }

// WriteReport writes the summary report, then the detail report.
func (w *CSVWriter) WriteReport(_ context.Context, rep types.Report) error {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", w.Dir, err)
	}

	summary := make([][]string, len(rep.Summary))
	for i, r := range rep.Summary {
		summary[i] = r.Record()
	}
	if err := WriteCSV(w.SummaryPath(), types.SummaryColumns, summary); err != nil {
		return err
	}

	works := make([][]string, len(rep.Works))
	for i, r := range rep.Works {
		works[i] = r.Record()
	}
	return WriteCSV(w.WorksPath(), types.WorkColumns, works)
}

// WriteCSV writes header and records to path as UTF-8 CSV with CRLF line
// endings. The data goes to a temp file in the same directory that is renamed
// over path on success, so a failed write leaves any previous file intact.
func WriteCSV(path string, header []string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	cw := csv.NewWriter(tmp)
	cw.UseCRLF = true
	if err := cw.Write(header); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := cw.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}
	return nil
}
