// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/plotarium/plotarium/internal/metrics"
)

// prometheusMetrics records request count and latency per method and
// route pattern.
func prometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		// The route pattern, not the raw path, keeps label cardinality
		// bounded.
		endpoint := chi.RouteContext(r.Context()).RoutePattern()
		metrics.RecordAPIRequest(r.Method, endpoint, strconv.Itoa(ww.Status()), time.Since(start))
	})
}
