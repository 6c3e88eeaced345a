// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package config holds all application configuration, loaded via Koanf v2
// with layered sources (highest priority wins):
//
//  1. Environment variables (see envTransformFunc for the mapping)
//  2. Optional YAML config file (PLOTARIUM_CONFIG or default search paths)
//  3. Built-in defaults
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import "time"

// Config is the root configuration for all Plotarium components.
type Config struct {
	Ingest    IngestConfig    `koanf:"ingest"`
	Transform TransformConfig `koanf:"transform"`
	Quality   QualityConfig   `koanf:"quality"`
	Store     StoreConfig     `koanf:"store"`
	Query     QueryConfig     `koanf:"query"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// IngestConfig configures the record ingestor.
type IngestConfig struct {
	// SourcePath is the CSV source file for pipeline runs.
	SourcePath string `koanf:"source_path"`

	// RowLimit caps ingestion at the first N data rows in file order.
	// 0 means unlimited. First-N (not random sampling) is deliberate; see
	// DESIGN.md.
	RowLimit int `koanf:"row_limit"`
}

// TransformConfig configures the enrichment pipeline.
type TransformConfig struct {
	// MinPlotWords drops records whose cleaned plot has fewer words.
	MinPlotWords int `koanf:"min_plot_words"`
}

// QualityConfig configures the data-quality checks.
type QualityConfig struct {
	// MinRows is the threshold for the min_row_threshold check.
	MinRows int `koanf:"min_rows"`
}

// StoreConfig configures the partitioned Parquet store and the DuckDB
// handle used for columnar IO.
type StoreConfig struct {
	// Root is the store directory holding decade=<n> partitions.
	Root string `koanf:"root"`

	// DBPath is the DuckDB database location. The default in-memory handle
	// is sufficient: Parquet files are the durable state, DuckDB is only
	// the engine moving rows in and out of them.
	DBPath string `koanf:"db_path"`

	// MaxMemory bounds DuckDB memory usage (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB thread count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`

	// ArtifactsDir receives run artifacts (validation_results.json,
	// query_<keyword>.json).
	ArtifactsDir string `koanf:"artifacts_dir"`
}

// QueryConfig configures the query engine.
type QueryConfig struct {
	// DefaultTopN is used when a search does not specify top_n.
	DefaultTopN int `koanf:"default_top_n"`
}

// ServerConfig configures the optional HTTP API (serve mode).
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// ReloadInterval is how often the store refresher service reloads the
	// query engine's snapshot. 0 disables refreshing.
	ReloadInterval time.Duration `koanf:"reload_interval"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig configures the zerolog pipeline.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
