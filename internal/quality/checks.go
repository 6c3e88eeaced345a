// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package quality runs the fixed set of data-quality checks against an
// enriched table and produces a ValidationReport.
//
// Checks observe, they never gate: a failing check is recorded and the
// pipeline persists the table regardless. unique_titles in particular is
// expected to fail on real data (remakes share titles) and that is
// informational, not exceptional.
package quality

import (
	"time"

	"github.com/google/uuid"
	"github.com/plotarium/plotarium/internal/logging"
	"github.com/plotarium/plotarium/internal/models"
)

// Options configure the checks.
type Options struct {
	// MinRows is the row-count floor for the min_row_threshold check.
	MinRows int
}

// check is one named predicate over the enriched table.
type check struct {
	name        string
	description string
	passed      func(models.Table, Options) bool
}

// checks is the fixed, ordered rule set. Order is part of the report
// contract; new checks append, they do not reorder.
var checks = []check{
	{
		name:        "no_null_title",
		description: "All titles are non-null",
		passed: func(t models.Table, _ Options) bool {
			for i := range t {
				if t[i].Title == "" {
					return false
				}
			}
			return true
		},
	},
	{
		name:        "no_null_plot",
		description: "All plots are non-null",
		passed: func(t models.Table, _ Options) bool {
			for i := range t {
				if t[i].Plot == "" {
					return false
				}
			}
			return true
		},
	},
	{
		name:        "plot_length_positive",
		description: "All plot lengths are greater than 0",
		passed: func(t models.Table, _ Options) bool {
			for i := range t {
				if t[i].PlotLength <= 0 {
					return false
				}
			}
			return true
		},
	},
	{
		name:        "unique_titles",
		description: "All titles are unique",
		passed: func(t models.Table, _ Options) bool {
			seen := make(map[string]bool, len(t))
			for i := range t {
				if seen[t[i].Title] {
					return false
				}
				seen[t[i].Title] = true
			}
			return true
		},
	},
	{
		name:        "min_row_threshold",
		description: "Minimum number of rows remain after filtering",
		passed: func(t models.Table, opts Options) bool {
			return len(t) >= opts.MinRows
		},
	},
}

// Evaluate runs every check in order and assembles the immutable report.
// The table is only observed, never mutated or filtered.
func Evaluate(table models.Table, summary models.TransformSummary, opts Options) *models.ValidationReport {
	report := &models.ValidationReport{
		RunID:        uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		TotalRows:    len(table),
		InputRows:    summary.InputRows,
		FilteredRows: summary.Dropped(),
		Checks:       make([]models.CheckResult, 0, len(checks)),
		AllPassed:    true,
	}

	for _, c := range checks {
		passed := c.passed(table, opts)
		report.Checks = append(report.Checks, models.CheckResult{
			Name:        c.name,
			Passed:      passed,
			Description: c.description,
		})
		if !passed {
			report.AllPassed = false
			logging.Warn().Str("check", c.name).Msg("Validation check failed")
		} else {
			logging.Debug().Str("check", c.name).Msg("Validation check passed")
		}
	}

	return report
}
