// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package models defines the data structures shared across the Plotarium
// pipeline: enriched movie records, transformation summaries, validation
// reports, and query results.
package models

// MovieRecord is a single enriched movie row.
//
// Records are produced by the transformer from raw ingested rows and are
// immutable once written to the store. Titles are NOT unique: remakes
// legitimately share a title ("Dracula" 1931 vs 1958), so Seq is the only
// stable identity a record has.
//
// Derived fields:
//   - TitleClean: lowercased title with whitespace collapsed to underscores
//     and non-word characters stripped; used for aggregation joins, never as
//     a primary key.
//   - PlotLength: whitespace-delimited word count of the trimmed plot.
//   - Decade: floor(ReleaseYear/10)*10, the store's partition key.
type MovieRecord struct {
	// Seq is the record's position in raw ingestion order. It survives
	// filtering (gaps are expected) and is persisted so store reads and
	// query tie-breaks stay deterministic.
	Seq int64 `json:"seq"`

	Title       string `json:"title"`
	ReleaseYear int    `json:"release_year"`
	Plot        string `json:"plot"`
	Genre       string `json:"genre,omitempty"`

	TitleClean string `json:"title_clean"`
	PlotLength int    `json:"plot_length"`
	Decade     int    `json:"decade"`
}

// Table is an ordered set of enriched movie records.
type Table []MovieRecord

// Decades returns the distinct decades present in the table, ascending.
func (t Table) Decades() []int {
	seen := make(map[int]bool)
	var decades []int
	for i := range t {
		if !seen[t[i].Decade] {
			seen[t[i].Decade] = true
			decades = append(decades, t[i].Decade)
		}
	}
	// insertion sort; the decade count is tiny
	for i := 1; i < len(decades); i++ {
		for j := i; j > 0 && decades[j] < decades[j-1]; j-- {
			decades[j], decades[j-1] = decades[j-1], decades[j]
		}
	}
	return decades
}

// TransformSummary records how many rows each transformation step dropped.
// It is returned alongside the enriched table so callers can log or persist
// it; per-row data-quality issues never abort a run.
type TransformSummary struct {
	InputRows          int `json:"input_rows"`
	DroppedEmptyFields int `json:"dropped_empty_fields"`
	DroppedBadYear     int `json:"dropped_bad_year"`
	DroppedShortPlot   int `json:"dropped_short_plot"`
	OutputRows         int `json:"output_rows"`
}

// Dropped returns the total number of rows removed across all steps.
func (s TransformSummary) Dropped() int {
	return s.DroppedEmptyFields + s.DroppedBadYear + s.DroppedShortPlot
}
