// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package transform

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/plotarium/plotarium/internal/ingest"
)

// plotOfWords builds a plot with exactly n distinct words.
func plotOfWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%d", i)
	}
	return strings.Join(words, " ")
}

func rawTable(rows ...ingest.RawRow) *ingest.RawTable {
	return &ingest.RawTable{
		Columns: []string{"title", "release_year", "genre", "plot"},
		Rows:    rows,
	}
}

func TestApply(t *testing.T) {
	opts := Options{MinPlotWords: 5}

	t.Run("enriches valid rows", func(t *testing.T) {
		raw := rawTable(ingest.RawRow{
			"title":        "  The Great Train Robbery  ",
			"release_year": "1903",
			"genre":        "western",
			"plot":         "A band of outlaws robs a train and flees the law.",
		})

		table, summary, err := Apply(raw, opts)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		if len(table) != 1 {
			t.Fatalf("len(table) = %d, want 1", len(table))
		}

		rec := table[0]
		if rec.Title != "The Great Train Robbery" {
			t.Errorf("Title = %q, want trimmed title", rec.Title)
		}
		if rec.TitleClean != "the_great_train_robbery" {
			t.Errorf("TitleClean = %q", rec.TitleClean)
		}
		if rec.PlotLength != 11 {
			t.Errorf("PlotLength = %d, want 11", rec.PlotLength)
		}
		if rec.Decade != 1900 {
			t.Errorf("Decade = %d, want 1900", rec.Decade)
		}
		if rec.Seq != 0 {
			t.Errorf("Seq = %d, want 0", rec.Seq)
		}
		if summary.OutputRows != 1 || summary.Dropped() != 0 {
			t.Errorf("summary = %+v, want clean pass", summary)
		}
	})

	t.Run("drops empty title and plot rows", func(t *testing.T) {
		raw := rawTable(
			ingest.RawRow{"title": "", "release_year": "1950", "plot": plotOfWords(10)},
			ingest.RawRow{"title": "Has Title", "release_year": "1950", "plot": "   "},
			ingest.RawRow{"title": "Keeper", "release_year": "1950", "plot": plotOfWords(10)},
		)

		table, summary, err := Apply(raw, opts)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		if summary.DroppedEmptyFields != 2 {
			t.Errorf("DroppedEmptyFields = %d, want 2", summary.DroppedEmptyFields)
		}
		if len(table) != 1 || table[0].Title != "Keeper" {
			t.Errorf("table = %+v, want only Keeper", table)
		}
	})

	t.Run("drops unparseable years without aborting", func(t *testing.T) {
		raw := rawTable(
			ingest.RawRow{"title": "Bad Year", "release_year": "c. 1925", "plot": plotOfWords(10)},
			ingest.RawRow{"title": "No Year", "release_year": "", "plot": plotOfWords(10)},
			ingest.RawRow{"title": "Good Year", "release_year": " 1925 ", "plot": plotOfWords(10)},
		)

		table, summary, err := Apply(raw, opts)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		if summary.DroppedBadYear != 2 {
			t.Errorf("DroppedBadYear = %d, want 2", summary.DroppedBadYear)
		}
		if len(table) != 1 || table[0].ReleaseYear != 1925 {
			t.Errorf("table = %+v, want one 1925 record", table)
		}
	})

	t.Run("filters plots below word threshold", func(t *testing.T) {
		raw := rawTable(
			ingest.RawRow{"title": "Short", "release_year": "1960", "plot": plotOfWords(4)},
			ingest.RawRow{"title": "Exact", "release_year": "1960", "plot": plotOfWords(5)},
			ingest.RawRow{"title": "Long", "release_year": "1960", "plot": plotOfWords(6)},
		)

		table, summary, err := Apply(raw, opts)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		if summary.DroppedShortPlot != 1 {
			t.Errorf("DroppedShortPlot = %d, want 1", summary.DroppedShortPlot)
		}
		if len(table) != 2 {
			t.Errorf("len(table) = %d, want 2 (threshold is inclusive)", len(table))
		}
	})

	t.Run("seq survives filtering with gaps", func(t *testing.T) {
		raw := rawTable(
			ingest.RawRow{"title": "A", "release_year": "1970", "plot": plotOfWords(10)},
			ingest.RawRow{"title": "B", "release_year": "bogus", "plot": plotOfWords(10)},
			ingest.RawRow{"title": "C", "release_year": "1971", "plot": plotOfWords(10)},
		)

		table, _, err := Apply(raw, opts)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		if table[0].Seq != 0 || table[1].Seq != 2 {
			t.Errorf("Seq = %d,%d, want 0,2", table[0].Seq, table[1].Seq)
		}
	})

	t.Run("empty input is a structural error", func(t *testing.T) {
		if _, _, err := Apply(rawTable(), opts); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Apply(empty) error = %v, want ErrEmptyInput", err)
		}
		if _, _, err := Apply(nil, opts); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("Apply(nil) error = %v, want ErrEmptyInput", err)
		}
	})

	t.Run("idempotent for the same input", func(t *testing.T) {
		raw := rawTable(
			ingest.RawRow{"title": "Dracula", "release_year": "1931", "genre": "horror", "plot": plotOfWords(60)},
			ingest.RawRow{"title": "Dracula", "release_year": "1958", "genre": "horror", "plot": plotOfWords(55)},
		)

		first, firstSummary, err := Apply(raw, opts)
		if err != nil {
			t.Fatalf("Apply() error: %v", err)
		}
		second, secondSummary, err := Apply(raw, opts)
		if err != nil {
			t.Fatalf("Apply() second run error: %v", err)
		}

		if !reflect.DeepEqual(first, second) {
			t.Error("two runs over the same input differ")
		}
		if firstSummary != secondSummary {
			t.Errorf("summaries differ: %+v vs %+v", firstSummary, secondSummary)
		}
		// Duplicate titles are retained, never deduplicated.
		if len(first) != 2 {
			t.Errorf("len(table) = %d, want both Dracula records", len(first))
		}
	})
}

func TestCleanTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Great Train Robbery", "the_great_train_robbery"},
		{"  Spaced   Out  ", "spaced_out"},
		{"What's Up, Doc?", "whats_up_doc"},
		{"Alias Jimmy Valentine (1915)", "alias_jimmy_valentine_1915"},
		{"8½", "8"}, // ½ is category No, not a digit
	}

	for _, tc := range cases {
		if got := CleanTitle(tc.in); got != tc.want {
			t.Errorf("CleanTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecade(t *testing.T) {
	cases := []struct {
		year int
		want int
	}{
		{1903, 1900},
		{1910, 1910},
		{1919, 1910},
		{2000, 2000},
		{2026, 2020},
		{0, 0},
		{-5, -10},
		{-10, -10},
	}
	for _, tc := range cases {
		if got := Decade(tc.year); got != tc.want {
			t.Errorf("Decade(%d) = %d, want %d", tc.year, got, tc.want)
		}
	}
}
