// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/plotarium/plotarium/internal/config"
	"github.com/plotarium/plotarium/internal/ingest"
	"github.com/plotarium/plotarium/internal/models"
	"github.com/plotarium/plotarium/internal/store"
)

// writeSourceFile generates a CSV with the given number of rows, the first
// shortPlots of which have plots below the 50 word threshold.
func writeSourceFile(t *testing.T, dir string, rows, shortPlots int) string {
	t.Helper()

	var sb strings.Builder
	sb.WriteString("Title,Plot,Release Year,Genre\n")

	longPlot := strings.TrimSpace(strings.Repeat("word ", 60))
	shortPlot := strings.TrimSpace(strings.Repeat("word ", 10))
	for i := 0; i < rows; i++ {
		plot := longPlot
		if i < shortPlots {
			plot = shortPlot
		}
		year := 1920 + i%100
		fmt.Fprintf(&sb, "Movie %d,%s,%d,drama\n", i, plot, year)
	}

	path := filepath.Join(dir, "movies.csv")
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		t.Fatalf("failed to write source file: %v", err)
	}
	return path
}

func newTestRunner(t *testing.T, sourcePath string) *Runner {
	t.Helper()

	db, err := store.NewDB(&config.StoreConfig{
		DBPath:    ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	cfg := &config.Config{
		Ingest:    config.IngestConfig{SourcePath: sourcePath},
		Transform: config.TransformConfig{MinPlotWords: 50},
		Quality:   config.QualityConfig{MinRows: 150},
		Store: config.StoreConfig{
			Root:         filepath.Join(t.TempDir(), "store"),
			ArtifactsDir: filepath.Join(t.TempDir(), "artifacts"),
		},
	}
	return NewRunner(cfg, store.New(db, cfg.Store.Root))
}

func TestPipelineRun(t *testing.T) {
	source := writeSourceFile(t, t.TempDir(), 500, 59)
	runner := newTestRunner(t, source)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Summary.InputRows != 500 {
		t.Errorf("InputRows = %d, want 500", result.Summary.InputRows)
	}
	if result.Summary.DroppedShortPlot != 59 {
		t.Errorf("DroppedShortPlot = %d, want 59", result.Summary.DroppedShortPlot)
	}
	if result.Summary.OutputRows != 441 {
		t.Errorf("OutputRows = %d, want 441", result.Summary.OutputRows)
	}
	if result.Write.TotalRows != 441 {
		t.Errorf("stored rows = %d, want 441", result.Write.TotalRows)
	}

	threshold, ok := result.Report.Check("min_row_threshold")
	if !ok || !threshold.Passed {
		t.Errorf("min_row_threshold: ok = %v, passed = %v, want both true", ok, threshold.Passed)
	}
	if !result.Report.AllPassed {
		t.Error("AllPassed = false, want true (titles unique, threshold met)")
	}

	// Store must be readable back in full.
	table, err := runner.store.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(table) != 441 {
		t.Errorf("round-trip rows = %d, want 441", len(table))
	}
}

func TestPipelineWritesValidationReport(t *testing.T) {
	source := writeSourceFile(t, t.TempDir(), 200, 0)
	runner := newTestRunner(t, source)

	result, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(result.ReportPath)
	if err != nil {
		t.Fatalf("failed to read report artifact: %v", err)
	}

	var report models.ValidationReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("failed to parse report artifact: %v", err)
	}
	if report.RunID != result.RunID {
		t.Errorf("artifact run_id = %q, want %q", report.RunID, result.RunID)
	}
	if len(report.Checks) != 5 {
		t.Errorf("artifact checks = %d, want 5", len(report.Checks))
	}
	if report.Timestamp.IsZero() {
		t.Error("artifact timestamp is zero")
	}
	if !report.AllPassed {
		t.Error("artifact all_passed = false, want true (unique titles, enough rows)")
	}
}

func TestPipelineMissingSource(t *testing.T) {
	runner := newTestRunner(t, filepath.Join(t.TempDir(), "nope.csv"))

	if _, err := runner.Run(context.Background()); !errors.Is(err, ingest.ErrSourceNotFound) {
		t.Errorf("Run() error = %v, want ErrSourceNotFound", err)
	}
}
