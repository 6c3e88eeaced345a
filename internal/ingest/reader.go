// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package ingest reads raw tabular movie data from a CSV source into an
// in-memory table with normalized column names.
//
// The ingestor does no semantic validation: fields stay raw strings and
// type coercion belongs to the transformer. Only structural problems are
// errors here (missing file, missing required column, empty source); they
// are surfaced as distinct sentinel errors so callers can tell "nothing to
// do" from "something is broken".
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/plotarium/plotarium/internal/logging"
)

// Sentinel errors for structural ingestion failures. Match with errors.Is.
var (
	// ErrSourceNotFound means the source file does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrSchemaMismatch means a required column is absent from the header.
	ErrSchemaMismatch = errors.New("required column missing from source")

	// ErrEmptySource means the source has no header row at all.
	ErrEmptySource = errors.New("source contains no data")
)

// Required source columns after header normalization.
var requiredColumns = []string{"title", "plot", "release_year"}

// RawRow is one unprocessed source row: column name -> raw field value.
type RawRow map[string]string

// RawTable is the ingestor's output: normalized column names plus rows in
// original file order.
type RawTable struct {
	Columns []string
	Rows    []RawRow
}

// Reader ingests CSV movie data.
type Reader struct {
	// rowLimit caps ingestion at the first N data rows. 0 = unlimited.
	rowLimit int
}

// NewReader creates a reader with the given row limit (0 = unlimited).
func NewReader(rowLimit int) *Reader {
	return &Reader{rowLimit: rowLimit}
}

// Read loads up to rowLimit rows from the CSV file at path.
//
// Headers are normalized to lowercase snake_case ("Release Year" ->
// "release_year") and the result preserves file order. Ragged rows are
// tolerated per-row: missing trailing fields read as empty strings and are
// left for the transformer's fail-soft handling.
func (r *Reader) Read(path string) (*RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open source %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logging.Warn().Err(closeErr).Str("path", path).Msg("Error closing source file")
		}
	}()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1 // ragged rows handled per-row below

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	columns := make([]string, len(header))
	for i, name := range header {
		columns[i] = NormalizeColumn(name)
	}
	if err := checkRequiredColumns(columns); err != nil {
		return nil, err
	}

	table := &RawTable{Columns: columns}
	for {
		if r.rowLimit > 0 && len(table.Rows) >= r.rowLimit {
			break
		}

		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d of %s: %w", len(table.Rows)+2, path, err)
		}

		row := make(RawRow, len(columns))
		for i, col := range columns {
			if i < len(record) {
				row[col] = record[i]
			} else {
				row[col] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	logging.Info().
		Int("rows", len(table.Rows)).
		Int("columns", len(table.Columns)).
		Str("path", path).
		Msg("Ingested source file")

	return table, nil
}

// NormalizeColumn maps a human-readable header to its canonical form:
// lowercase, trimmed, inner whitespace runs replaced with one underscore.
func NormalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "_")
}

// checkRequiredColumns verifies every required column is present.
func checkRequiredColumns(columns []string) error {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	for _, required := range requiredColumns {
		if !present[required] {
			return fmt.Errorf("%w: %s", ErrSchemaMismatch, required)
		}
	}
	return nil
}
