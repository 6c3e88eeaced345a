// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package metrics registers the Prometheus instrumentation for the
// pipeline, the store, and the query engine. All collectors register on
// the default registry and are exposed on /metrics in serve mode.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	PipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Duration of full pipeline runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PipelineRowsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_rows_ingested_total",
			Help: "Total raw rows read from source files",
		},
	)

	PipelineRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_rows_dropped_total",
			Help: "Total rows dropped during transformation",
		},
		[]string{"reason"}, // "empty_field", "bad_year", "short_plot"
	)

	PipelineRowsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_rows_stored_total",
			Help: "Total enriched rows written to the store",
		},
	)

	// Validation Metrics
	ValidationChecksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validation_checks_failed_total",
			Help: "Total failed data quality checks by check name",
		},
		[]string{"check"},
	)

	// Store Metrics
	StorePartitions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "store_partitions",
			Help: "Number of decade partitions in the store after the last write",
		},
	)

	StoreWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_write_duration_seconds",
			Help:    "Duration of store writes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Query Metrics
	QueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "queries_total",
			Help: "Total keyword searches served",
		},
	)

	QueryEngineRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "query_engine_records",
			Help: "Records in the query engine's current snapshot",
		},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total API requests by method, endpoint, and status code",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordPipelineRun records the outcome and duration of one pipeline run.
func RecordPipelineRun(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	PipelineRuns.WithLabelValues(outcome).Inc()
	PipelineDuration.Observe(duration.Seconds())
}

// RecordDrops records per-reason dropped row counts from a transform pass.
func RecordDrops(emptyField, badYear, shortPlot int) {
	PipelineRowsDropped.WithLabelValues("empty_field").Add(float64(emptyField))
	PipelineRowsDropped.WithLabelValues("bad_year").Add(float64(badYear))
	PipelineRowsDropped.WithLabelValues("short_plot").Add(float64(shortPlot))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
