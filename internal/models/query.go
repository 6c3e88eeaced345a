// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package models

// QueryMatch is a single ranked search hit.
type QueryMatch struct {
	Title      string `json:"title"`
	PlotLength int    `json:"plot_length"`
	Decade     int    `json:"decade"`
	Year       int    `json:"year"`
	Genre      string `json:"genre,omitempty"`
}

// QueryResult holds the ranked matches for one keyword search.
//
// Results are ordered by descending plot length, ties broken by load order,
// and truncated to the caller's topN. TotalMatches is the pre-truncation
// count, so it may exceed len(Results).
type QueryResult struct {
	Keyword      string       `json:"keyword"`
	TotalMatches int          `json:"total_matches"`
	Results      []QueryMatch `json:"results"`
}
