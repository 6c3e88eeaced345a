// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Plotarium turns a raw movie-metadata CSV into a decade-partitioned
// Parquet store and answers keyword searches against plot text.
//
// Usage:
//
//	plotarium run [-source movies.csv] [-limit N]
//	plotarium query -keywords space,alien [-top-n 5]
//	plotarium serve
//
// run executes the batch pipeline: ingest, transform, quality checks,
// store write. query loads the store and searches plots, printing results
// and writing a query_<keyword>.json artifact per keyword. serve exposes
// the search API over HTTP under a supervision tree.
//
// Configuration comes from defaults, an optional YAML file (path in
// PLOTARIUM_CONFIG or a default search path), and environment variables
// (SOURCE_PATH, STORE_ROOT, HTTP_PORT, ...), in that order of precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	json "github.com/goccy/go-json"

	"github.com/plotarium/plotarium/internal/api"
	"github.com/plotarium/plotarium/internal/config"
	"github.com/plotarium/plotarium/internal/logging"
	"github.com/plotarium/plotarium/internal/models"
	"github.com/plotarium/plotarium/internal/pipeline"
	"github.com/plotarium/plotarium/internal/query"
	"github.com/plotarium/plotarium/internal/store"
	"github.com/plotarium/plotarium/internal/supervisor"
	"github.com/plotarium/plotarium/internal/supervisor/services"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	switch command {
	case "run":
		runPipeline(cfg, args)
	case "query":
		runQuery(cfg, args)
	case "serve":
		runServe(cfg)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: plotarium <command> [flags]

Commands:
  run     execute the batch pipeline (ingest, transform, validate, store)
  query   search plot text in the store by keyword
  serve   expose the search API over HTTP
`)
}

// openStore validates config and opens the DuckDB-backed store.
func openStore(cfg *config.Config) *store.Store {
	if err := cfg.Validate(); err != nil {
		logging.Fatal().Err(err).Msg("Invalid configuration")
	}

	db, err := store.NewDB(&cfg.Store)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open database")
	}
	return store.New(db, cfg.Store.Root)
}

func runPipeline(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	source := fs.String("source", "", "source CSV path (overrides configuration)")
	limit := fs.Int("limit", -1, "maximum rows to ingest (overrides configuration)")
	_ = fs.Parse(args)

	if *source != "" {
		cfg.Ingest.SourcePath = *source
	}
	if *limit >= 0 {
		cfg.Ingest.RowLimit = *limit
	}

	s := openStore(cfg)
	result, err := pipeline.NewRunner(cfg, s).Run(context.Background())
	if err != nil {
		logging.Fatal().Err(err).Msg("Pipeline run failed")
	}

	fmt.Printf("Run %s complete: %d rows in, %d dropped, %d stored across %d partitions (%s)\n",
		result.RunID, result.Summary.InputRows, result.Summary.Dropped(),
		result.Write.TotalRows, len(result.Write.Partitions), result.Duration.Round(time.Millisecond))
	for _, check := range result.Report.Checks {
		status := "PASS"
		if !check.Passed {
			status = "FAIL"
		}
		fmt.Printf("  %-20s %s\n", check.Name, status)
	}
	if !result.Report.AllPassed {
		fmt.Println("Some checks failed; see", result.ReportPath)
	}
}

func runQuery(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	keywords := fs.String("keywords", "", "comma-separated keywords to search for (required)")
	topN := fs.Int("top-n", cfg.Query.DefaultTopN, "maximum results to return per keyword")
	noArtifact := fs.Bool("no-artifact", false, "skip writing query_<keyword>.json artifacts")
	_ = fs.Parse(args)

	if strings.TrimSpace(*keywords) == "" {
		fmt.Fprintln(os.Stderr, "query: -keywords is required")
		fs.Usage()
		os.Exit(2)
	}

	s := openStore(cfg)
	engine := query.NewEngine(s)
	if err := engine.Load(context.Background()); err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			logging.Fatal().Err(err).Msg("No store found; run the pipeline first")
		}
		logging.Fatal().Err(err).Msg("Failed to load store")
	}

	exitCode := 0
	for _, keyword := range strings.Split(*keywords, ",") {
		keyword = strings.TrimSpace(keyword)
		if keyword == "" {
			continue
		}

		result, err := engine.SearchByKeyword(keyword, *topN)
		if err != nil {
			logging.Error().Err(err).Str("keyword", keyword).Msg("Search failed")
			exitCode = 1
			continue
		}

		printResults(result)
		if !*noArtifact {
			path, err := writeQueryArtifact(cfg.Store.ArtifactsDir, result)
			if err != nil {
				logging.Error().Err(err).Str("keyword", keyword).Msg("Failed to write query artifact")
				exitCode = 1
				continue
			}
			fmt.Printf("Saved to %s\n", path)
		}
	}
	os.Exit(exitCode)
}

// printResults renders one query outcome for a terminal reader.
func printResults(result *models.QueryResult) {
	fmt.Printf("\nKeyword %q: %d match(es)", result.Keyword, result.TotalMatches)
	if result.TotalMatches > len(result.Results) {
		fmt.Printf(", showing top %d", len(result.Results))
	}
	fmt.Println()

	for i, match := range result.Results {
		genre := match.Genre
		if genre == "" {
			genre = "unknown"
		}
		fmt.Printf("  %d. %s (%d, %s): %d plot words, decade %d\n",
			i+1, match.Title, match.Year, genre, match.PlotLength, match.Decade)
	}
}

// writeQueryArtifact persists a query_<keyword>.json file for inspection.
func writeQueryArtifact(dir string, result *models.QueryResult) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal query result: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("query_%s.json", artifactSlug(result.Keyword)))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write query artifact: %w", err)
	}
	return path, nil
}

// artifactSlug makes a keyword safe for use in a file name.
func artifactSlug(keyword string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(keyword) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	return sb.String()
}

func runServe(cfg *config.Config) {
	s := openStore(cfg)
	engine := query.NewEngine(s)

	// A missing store is fine at startup; the refresher will pick it up
	// after the first pipeline run.
	if err := engine.Load(context.Background()); err != nil {
		if errors.Is(err, store.ErrStoreNotFound) {
			logging.Warn().Msg("No store found yet; serving will report not ready until one exists")
		} else {
			logging.Fatal().Err(err).Msg("Failed to load store")
		}
	}

	router := api.NewRouter(&cfg.Server, engine, s, cfg.Query.DefaultTopN)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if cfg.Server.ReloadInterval > 0 {
		tree.AddDataService(services.NewStoreRefreshService(engine, cfg.Server.ReloadInterval))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Stopped gracefully")
}
