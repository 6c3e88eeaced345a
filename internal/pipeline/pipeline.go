// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package pipeline orchestrates one batch run: ingest, transform, quality
// checks, store write. Each stage takes the previous stage's output as a
// value and returns a new one; nothing is mutated across stage boundaries.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/plotarium/plotarium/internal/config"
	"github.com/plotarium/plotarium/internal/ingest"
	"github.com/plotarium/plotarium/internal/logging"
	"github.com/plotarium/plotarium/internal/metrics"
	"github.com/plotarium/plotarium/internal/models"
	"github.com/plotarium/plotarium/internal/quality"
	"github.com/plotarium/plotarium/internal/store"
	"github.com/plotarium/plotarium/internal/transform"
)

// reportFileName is the validation artifact written per run.
const reportFileName = "validation_results.json"

// RunResult summarizes one completed pipeline run.
type RunResult struct {
	RunID      string                   `json:"run_id"`
	Summary    models.TransformSummary  `json:"summary"`
	Report     *models.ValidationReport `json:"report"`
	Write      *store.WriteResult       `json:"write"`
	ReportPath string                   `json:"report_path"`
	Duration   time.Duration            `json:"duration"`
}

// Runner wires the pipeline stages together under one configuration.
type Runner struct {
	cfg   *config.Config
	store *store.Store
}

// NewRunner creates a runner that writes to the given store.
func NewRunner(cfg *config.Config, s *store.Store) *Runner {
	return &Runner{cfg: cfg, store: s}
}

// Run executes a full batch pass. Structural failures (missing source,
// schema mismatch, store IO) abort the run; per-row drops and failing
// quality checks are counted and reported but never block the write.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()

	result, err := r.run(ctx)
	metrics.RecordPipelineRun(time.Since(start), err)
	if err != nil {
		logging.Error().Err(err).Msg("Pipeline run failed")
		return nil, err
	}

	result.Duration = time.Since(start)
	logging.Info().
		Str("run_id", result.RunID).
		Int("input_rows", result.Summary.InputRows).
		Int("output_rows", result.Summary.OutputRows).
		Int("partitions", len(result.Write.Partitions)).
		Bool("all_checks_passed", result.Report.AllPassed).
		Dur("duration", result.Duration).
		Msg("Pipeline run complete")

	return result, nil
}

func (r *Runner) run(ctx context.Context) (*RunResult, error) {
	logging.Info().
		Str("source", r.cfg.Ingest.SourcePath).
		Int("row_limit", r.cfg.Ingest.RowLimit).
		Msg("Starting pipeline run")

	raw, err := ingest.NewReader(r.cfg.Ingest.RowLimit).Read(r.cfg.Ingest.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("ingest stage: %w", err)
	}
	metrics.PipelineRowsIngested.Add(float64(len(raw.Rows)))
	logging.Info().Int("rows", len(raw.Rows)).Msg("Ingest complete")

	table, summary, err := transform.Apply(raw, transform.Options{MinPlotWords: r.cfg.Transform.MinPlotWords})
	if err != nil {
		return nil, fmt.Errorf("transform stage: %w", err)
	}
	metrics.RecordDrops(summary.DroppedEmptyFields, summary.DroppedBadYear, summary.DroppedShortPlot)
	logging.Info().
		Int("input_rows", summary.InputRows).
		Int("output_rows", summary.OutputRows).
		Int("dropped", summary.Dropped()).
		Msg("Transform complete")

	report := quality.Evaluate(table, summary, quality.Options{MinRows: r.cfg.Quality.MinRows})
	for _, c := range report.Checks {
		if !c.Passed {
			metrics.ValidationChecksFailed.WithLabelValues(c.Name).Inc()
		}
	}
	if !report.AllPassed {
		logging.Warn().Str("run_id", report.RunID).Msg("One or more validation checks failed; storing anyway")
	}

	reportPath, err := r.writeReport(report)
	if err != nil {
		return nil, err
	}

	writeStart := time.Now()
	writeResult, err := r.store.Write(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("store stage: %w", err)
	}
	metrics.StoreWriteDuration.Observe(time.Since(writeStart).Seconds())
	metrics.StorePartitions.Set(float64(len(writeResult.Partitions)))
	metrics.PipelineRowsStored.Add(float64(writeResult.TotalRows))

	return &RunResult{
		RunID:      report.RunID,
		Summary:    summary,
		Report:     report,
		Write:      writeResult,
		ReportPath: reportPath,
	}, nil
}

// writeReport persists the validation report artifact for humans and CI.
// The pipeline never reads it back.
func (r *Runner) writeReport(report *models.ValidationReport) (string, error) {
	dir := r.cfg.Store.ArtifactsDir
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal validation report: %w", err)
	}

	path := filepath.Join(dir, reportFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write validation report: %w", err)
	}

	logging.Info().Str("path", path).Msg("Validation report written")
	return path, nil
}
