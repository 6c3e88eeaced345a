// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults failed: %v", err)
	}

	if cfg.Transform.MinPlotWords != 50 {
		t.Errorf("MinPlotWords = %d, want 50", cfg.Transform.MinPlotWords)
	}
	if cfg.Quality.MinRows != 150 {
		t.Errorf("MinRows = %d, want 150", cfg.Quality.MinRows)
	}
	if cfg.Query.DefaultTopN != 5 {
		t.Errorf("DefaultTopN = %d, want 5", cfg.Query.DefaultTopN)
	}
	if cfg.Ingest.RowLimit != 0 {
		t.Errorf("RowLimit = %d, want 0 (unlimited)", cfg.Ingest.RowLimit)
	}
	if cfg.Store.DBPath != ":memory:" {
		t.Errorf("DBPath = %q, want :memory:", cfg.Store.DBPath)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %s, want 30s", cfg.Server.Timeout)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotarium.yaml")
	yamlContent := `
transform:
  min_plot_words: 25
store:
  root: /var/lib/plotarium/store
server:
  port: 9001
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with config file failed: %v", err)
	}

	if cfg.Transform.MinPlotWords != 25 {
		t.Errorf("MinPlotWords = %d, want 25 from file", cfg.Transform.MinPlotWords)
	}
	if cfg.Store.Root != "/var/lib/plotarium/store" {
		t.Errorf("Store.Root = %q, want file value", cfg.Store.Root)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want 9001 from file", cfg.Server.Port)
	}
	// Untouched keys keep defaults.
	if cfg.Quality.MinRows != 150 {
		t.Errorf("MinRows = %d, want default 150", cfg.Quality.MinRows)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plotarium.yaml")
	if err := os.WriteFile(path, []byte("transform:\n  min_plot_words: 25\n"), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MIN_PLOT_WORDS", "10")
	t.Setenv("STORE_ROOT", "/tmp/env-store")
	t.Setenv("CORS_ORIGINS", "http://a.local, http://b.local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Transform.MinPlotWords != 10 {
		t.Errorf("MinPlotWords = %d, want env override 10", cfg.Transform.MinPlotWords)
	}
	if cfg.Store.Root != "/tmp/env-store" {
		t.Errorf("Store.Root = %q, want env override", cfg.Store.Root)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "http://b.local" {
		t.Errorf("CORSOrigins = %v, want two trimmed origins", cfg.Server.CORSOrigins)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"negative row limit", func(c *Config) { c.Ingest.RowLimit = -1 }, true},
		{"zero min plot words", func(c *Config) { c.Transform.MinPlotWords = 0 }, true},
		{"zero default top n", func(c *Config) { c.Query.DefaultTopN = 0 }, true},
		{"empty store root", func(c *Config) { c.Store.Root = "" }, true},
		{"empty db path", func(c *Config) { c.Store.DBPath = "" }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"console format ok", func(c *Config) { c.Logging.Format = "console" }, false},
		{"zero min rows ok", func(c *Config) { c.Quality.MinRows = 0 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
