// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/plotarium/plotarium/internal/logging"
	"github.com/plotarium/plotarium/internal/query"
	"github.com/plotarium/plotarium/internal/store"
)

// Handler serves the read-only API over a loaded query engine.
type Handler struct {
	engine      *query.Engine
	store       *store.Store
	defaultTopN int
}

// NewHandler creates a handler. defaultTopN applies when the request
// omits top_n.
func NewHandler(engine *query.Engine, s *store.Store, defaultTopN int) *Handler {
	return &Handler{engine: engine, store: s, defaultTopN: defaultTopN}
}

// Search handles GET /api/v1/search?keyword=...&top_n=N.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	req := SearchRequest{
		Keyword: strings.TrimSpace(r.URL.Query().Get("keyword")),
		TopN:    getIntParam(r, "top_n", h.defaultTopN),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	result, err := h.engine.SearchByKeyword(req.Keyword, req.TopN)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrInvalidQuery):
			respondError(w, http.StatusBadRequest, "INVALID_QUERY", err.Error(), nil)
		case errors.Is(err, query.ErrStoreNotLoaded):
			respondError(w, http.StatusServiceUnavailable, "STORE_NOT_LOADED",
				"no store snapshot is loaded yet", err)
		default:
			respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"search failed", err)
		}
		return
	}

	logging.Debug().
		Str("keyword", sanitizeLogValue(req.Keyword)).
		Int("total_matches", result.TotalMatches).
		Msg("Search request served")

	respondOK(w, result, time.Since(start))
}

// Partitions handles GET /api/v1/store/partitions.
func (h *Handler) Partitions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	partitions, err := h.store.Partitions(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			respondError(w, http.StatusNotFound, "STORE_NOT_FOUND",
				"no store exists at the configured root; run the pipeline first", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"failed to list partitions", err)
		return
	}

	respondOK(w, map[string]interface{}{
		"partitions": partitions,
		"count":      len(partitions),
	}, time.Since(start))
}

// HealthLive handles GET /api/v1/health/live. Always OK while the
// process serves requests.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondOK(w, map[string]string{"status": "alive"}, 0)
}

// HealthReady handles GET /api/v1/health/ready. Ready once the engine
// holds a snapshot.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	if !h.engine.Loaded() {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY",
			"store snapshot not loaded", nil)
		return
	}
	respondOK(w, map[string]interface{}{
		"status":  "ready",
		"records": h.engine.RecordCount(),
	}, 0)
}
