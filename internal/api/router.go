// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package api exposes the query engine over HTTP using the chi router.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/plotarium/plotarium/internal/config"
	"github.com/plotarium/plotarium/internal/query"
	"github.com/plotarium/plotarium/internal/store"
)

// Router assembles the HTTP handler stack.
type Router struct {
	cfg     *config.ServerConfig
	handler *Handler
}

// NewRouter creates a router serving searches from the given engine and
// partition listings from the given store.
func NewRouter(cfg *config.ServerConfig, engine *query.Engine, s *store.Store, defaultTopN int) *Router {
	return &Router{
		cfg:     cfg,
		handler: NewHandler(engine, s, defaultTopN),
	}
}

// Setup configures all routes and returns the root handler.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// CORS must be global so OPTIONS preflight is handled everywhere.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(router.cfg.RateLimitRequests, router.cfg.RateLimitWindow))
		r.Use(prometheusMetrics)

		r.Get("/search", router.handler.Search)
		r.Get("/store/partitions", router.handler.Partitions)

		r.Route("/health", func(r chi.Router) {
			r.Get("/live", router.handler.HealthLive)
			r.Get("/ready", router.handler.HealthReady)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
