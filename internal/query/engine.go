// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package query answers keyword searches against a loaded store snapshot.
//
// The engine materializes the whole enriched table in memory on Load and
// serves every search from that snapshot, so queries never touch disk and
// concurrent searches need only a read lock. Reload swaps in a fresh
// snapshot atomically after the store has been rewritten.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/plotarium/plotarium/internal/logging"
	"github.com/plotarium/plotarium/internal/metrics"
	"github.com/plotarium/plotarium/internal/models"
	"github.com/plotarium/plotarium/internal/store"
)

var (
	// ErrStoreNotLoaded means a search arrived before Load succeeded.
	ErrStoreNotLoaded = errors.New("store not loaded")

	// ErrInvalidQuery covers empty keywords and non-positive result limits.
	ErrInvalidQuery = errors.New("invalid query")
)

// Engine serves keyword searches from an in-memory store snapshot.
type Engine struct {
	store *store.Store

	mu       sync.RWMutex
	snapshot models.Table
	loaded   bool
}

// NewEngine creates an engine over the given store. Call Load before
// searching.
func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Load reads every partition into the snapshot. The previous snapshot, if
// any, keeps serving searches until the new one is ready.
func (e *Engine) Load(ctx context.Context) error {
	start := time.Now()

	table, err := e.store.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to load store snapshot: %w", err)
	}

	e.mu.Lock()
	e.snapshot = table
	e.loaded = true
	e.mu.Unlock()

	metrics.QueryEngineRecords.Set(float64(len(table)))
	logging.Info().
		Int("records", len(table)).
		Dur("duration", time.Since(start)).
		Msg("Query engine snapshot loaded")

	return nil
}

// Reload refreshes the snapshot from disk. Identical to Load; the name
// exists for call sites that run after the initial load.
func (e *Engine) Reload(ctx context.Context) error {
	return e.Load(ctx)
}

// Loaded reports whether a snapshot is available.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// RecordCount returns the number of records in the current snapshot.
func (e *Engine) RecordCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.snapshot)
}

// SearchByKeyword finds records whose plot contains the keyword,
// case-insensitively. Results are ordered by descending plot length, with
// ties broken by store load order, and truncated to topN. TotalMatches
// always reflects the count before truncation.
func (e *Engine) SearchByKeyword(keyword string, topN int) (*models.QueryResult, error) {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: keyword must not be empty", ErrInvalidQuery)
	}
	if topN <= 0 {
		return nil, fmt.Errorf("%w: top_n must be positive, got %d", ErrInvalidQuery, topN)
	}

	e.mu.RLock()
	snapshot := e.snapshot
	loaded := e.loaded
	e.mu.RUnlock()

	if !loaded {
		return nil, ErrStoreNotLoaded
	}

	start := time.Now()
	needle := strings.ToLower(trimmed)

	var matched []*models.MovieRecord
	for i := range snapshot {
		if strings.Contains(strings.ToLower(snapshot[i].Plot), needle) {
			matched = append(matched, &snapshot[i])
		}
	}

	// The snapshot is in deterministic load order, so a stable sort on
	// plot length alone preserves the seq tie-break.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PlotLength > matched[j].PlotLength
	})

	result := &models.QueryResult{
		Keyword:      trimmed,
		TotalMatches: len(matched),
		Results:      make([]models.QueryMatch, 0, min(topN, len(matched))),
	}
	for _, rec := range matched {
		if len(result.Results) == topN {
			break
		}
		result.Results = append(result.Results, models.QueryMatch{
			Title:      rec.Title,
			PlotLength: rec.PlotLength,
			Decade:     rec.Decade,
			Year:       rec.ReleaseYear,
			Genre:      rec.Genre,
		})
	}

	metrics.QueriesTotal.Inc()
	logging.Debug().
		Str("keyword", trimmed).
		Int("total_matches", result.TotalMatches).
		Int("returned", len(result.Results)).
		Dur("duration", time.Since(start)).
		Msg("Keyword search complete")

	return result, nil
}
