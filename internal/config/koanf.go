// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"plotarium.yaml",
	"plotarium.yml",
	"/etc/plotarium/config.yaml",
	"/etc/plotarium/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "PLOTARIUM_CONFIG"

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			SourcePath: "data/movies.csv",
			RowLimit:   0, // unlimited
		},
		Transform: TransformConfig{
			MinPlotWords: 50,
		},
		Quality: QualityConfig{
			MinRows: 150,
		},
		Store: StoreConfig{
			Root:         "data/store",
			DBPath:       ":memory:",
			MaxMemory:    "1GB",
			Threads:      0, // 0 = use runtime.NumCPU()
			ArtifactsDir: "data/artifacts",
		},
		Query: QueryConfig{
			DefaultTopN: 5,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8972,
			Timeout:           30 * time.Second,
			ReloadInterval:    0, // refresher disabled by default
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults: built-in values from defaultConfig
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: override any setting
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file, env override first.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths are parsed as
// comma-separated slices when they arrive as env var strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields. Env vars come in as strings but the config expects
// slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(strVal, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) > 0 {
			if err := k.Set(path, parts); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - SOURCE_PATH -> ingest.source_path
//   - MIN_PLOT_WORDS -> transform.min_plot_words
//   - STORE_ROOT -> store.root
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Ingest
		"source_path": "ingest.source_path",
		"row_limit":   "ingest.row_limit",

		// Transform and quality thresholds
		"min_plot_words": "transform.min_plot_words",
		"min_rows":       "quality.min_rows",

		// Store
		"store_root":     "store.root",
		"duckdb_path":    "store.db_path",
		"duckdb_memory":  "store.max_memory",
		"duckdb_threads": "store.threads",
		"artifacts_dir":  "store.artifacts_dir",

		// Query
		"default_top_n": "query.default_top_n",

		// Server
		"http_host":           "server.host",
		"http_port":           "server.port",
		"http_timeout":        "server.timeout",
		"reload_interval":     "server.reload_interval",
		"rate_limit_requests": "server.rate_limit_requests",
		"rate_limit_window":   "server.rate_limit_window",
		"cors_origins":        "server.cors_origins",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unknown env vars are ignored rather than polluting the config tree.
	return ""
}
