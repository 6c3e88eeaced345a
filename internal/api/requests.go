// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package api

// SearchRequest carries the validated parameters of GET /api/v1/search.
type SearchRequest struct {
	Keyword string `validate:"required,max=200"`
	TopN    int    `validate:"min=1,max=1000"`
}
