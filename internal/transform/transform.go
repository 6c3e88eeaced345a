// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package transform turns a raw ingested table into the enriched movie
// table: cleaning, field derivation, and threshold filtering.
//
// The transformer is a pure function: same raw table and options in, same
// enriched table out, no side effects. Per-row data-quality issues (empty
// fields, unparseable years, short plots) never abort a run; the row is
// dropped and counted in the summary. Only an empty input table is a
// structural error.
package transform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/plotarium/plotarium/internal/ingest"
	"github.com/plotarium/plotarium/internal/models"
)

// ErrEmptyInput means the raw table has no rows at all; there is nothing
// to transform and the run should abort.
var ErrEmptyInput = errors.New("raw table is empty")

// Options control the transformation thresholds.
type Options struct {
	// MinPlotWords drops records whose plot has fewer words after cleaning.
	MinPlotWords int
}

// Apply runs the transformation steps in order and returns the enriched
// table plus a summary of what each step dropped. Step order matters:
// plot_length must exist before the word-count filter runs.
func Apply(raw *ingest.RawTable, opts Options) (models.Table, models.TransformSummary, error) {
	summary := models.TransformSummary{}
	if raw == nil || len(raw.Rows) == 0 {
		return nil, summary, ErrEmptyInput
	}
	summary.InputRows = len(raw.Rows)

	table := make(models.Table, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		title := strings.TrimSpace(row["title"])
		plot := strings.TrimSpace(row["plot"])

		// Step 1: drop rows missing either required text field.
		if title == "" || plot == "" {
			summary.DroppedEmptyFields++
			continue
		}

		// Step 4 interleaved per-row: unparseable years drop fail-soft.
		year, err := parseYear(row["release_year"])
		if err != nil {
			summary.DroppedBadYear++
			continue
		}

		rec := models.MovieRecord{
			Seq:         int64(i),
			Title:       title,
			ReleaseYear: year,
			Plot:        plot,
			Genre:       strings.TrimSpace(row["genre"]),
			TitleClean:  CleanTitle(title),         // step 2
			PlotLength:  len(strings.Fields(plot)), // step 3
			Decade:      Decade(year),
		}

		// Step 5: word-count threshold.
		if rec.PlotLength < opts.MinPlotWords {
			summary.DroppedShortPlot++
			continue
		}

		table = append(table, rec)
	}

	summary.OutputRows = len(table)
	return table, summary, nil
}

// CleanTitle derives title_clean: lowercase, whitespace runs collapsed to
// single underscores, anything that is not a letter, digit, or underscore
// stripped. Not a primary key; titles are legitimately duplicated across
// remakes.
func CleanTitle(title string) string {
	joined := strings.Join(strings.Fields(strings.ToLower(title)), "_")

	var b strings.Builder
	b.Grow(len(joined))
	for _, r := range joined {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Decade maps a release year onto its decade: floor(year/10)*10.
// Floor division toward negative infinity, so -5 maps to -10.
func Decade(year int) int {
	d := year / 10
	if year < 0 && year%10 != 0 {
		d--
	}
	return d * 10
}

// parseYear coerces a raw release_year field to an integer.
func parseYear(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty release_year")
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse release_year %q: %w", raw, err)
	}
	return year, nil
}
