// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package models

import "time"

// CheckResult is the outcome of a single named data-quality check.
type CheckResult struct {
	Name        string `json:"name"`
	Passed      bool   `json:"passed"`
	Description string `json:"description"`
}

// ValidationReport is the side artifact of one pipeline run's quality
// checks. It is observe-only: a failing check is reported here but never
// blocks storage (unique_titles failing is normal on real data). The report
// is immutable after creation and serialized to validation_results.json for
// humans and CI; the pipeline never reads it back.
type ValidationReport struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`

	TotalRows    int `json:"total_rows"`
	InputRows    int `json:"input_rows"`
	FilteredRows int `json:"filtered_rows"`

	// Checks preserves the fixed evaluation order.
	Checks    []CheckResult `json:"checks"`
	AllPassed bool          `json:"all_passed"`
}

// Check returns the named check result and whether it exists.
func (r *ValidationReport) Check(name string) (CheckResult, bool) {
	for _, c := range r.Checks {
		if c.Name == name {
			return c, true
		}
	}
	return CheckResult{}, false
}
