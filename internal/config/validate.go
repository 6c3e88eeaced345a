// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is internally consistent.
// Structural misconfiguration is fatal at load time; there is no partial
// startup with a bad config.
func (c *Config) Validate() error {
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateThresholds() error {
	if c.Ingest.RowLimit < 0 {
		return fmt.Errorf("ROW_LIMIT must be >= 0 (0 = unlimited), got %d", c.Ingest.RowLimit)
	}
	if c.Transform.MinPlotWords < 1 {
		return fmt.Errorf("MIN_PLOT_WORDS must be >= 1, got %d", c.Transform.MinPlotWords)
	}
	if c.Quality.MinRows < 0 {
		return fmt.Errorf("MIN_ROWS must be >= 0, got %d", c.Quality.MinRows)
	}
	if c.Query.DefaultTopN < 1 {
		return fmt.Errorf("DEFAULT_TOP_N must be >= 1, got %d", c.Query.DefaultTopN)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Root == "" {
		return fmt.Errorf("STORE_ROOT must not be empty")
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("DUCKDB_PATH must not be empty (use \":memory:\" for an in-memory handle)")
	}
	if c.Store.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0 (0 = all cores), got %d", c.Store.Threads)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be in range 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	if c.Server.ReloadInterval < 0 {
		return fmt.Errorf("RELOAD_INTERVAL must be >= 0 (0 = disabled), got %s", c.Server.ReloadInterval)
	}
	if c.Server.RateLimitRequests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be >= 1, got %d", c.Server.RateLimitRequests)
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.Server.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace/debug/info/warn/error/fatal/disabled, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
