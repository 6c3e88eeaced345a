// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

// Package store persists the enriched movie table as a decade-partitioned
// Parquet file set and reads it back.
//
// DuckDB is the IO engine: partitions are written with
// COPY ... (FORMAT PARQUET) and read with read_parquet(). The Parquet
// files under the store root are the durable state; the DuckDB handle
// itself is a scratch workspace and defaults to in-memory.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/plotarium/plotarium/internal/config"
	"github.com/plotarium/plotarium/internal/logging"
)

// DB wraps the DuckDB connection used for Parquet IO.
type DB struct {
	conn *sql.DB
	cfg  *config.StoreConfig
}

// NewDB opens a DuckDB handle tuned per the store configuration.
func NewDB(cfg *config.StoreConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Empty path means an in-memory database to the driver.
	path := cfg.DBPath
	if path == ":memory:" {
		path = ""
	}

	// Disable auto-install/auto-load of extensions to prevent hangs in
	// restricted network environments; Parquet support is built in.
	connStr := fmt.Sprintf("%s?threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	db := &DB{conn: conn, cfg: cfg}
	db.configureConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to verify duckdb connection: %w", err)
	}

	return db, nil
}

// configureConnectionPool keeps a single connection. DuckDB is embedded;
// the store's temp tables must stay visible across statements, which rules
// out connection rotation.
func (db *DB) configureConnectionPool() {
	db.conn.SetMaxOpenConns(1)
	db.conn.SetMaxIdleConns(1)
	db.conn.SetConnMaxLifetime(0)
}

// Conn returns the underlying SQL connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Ping checks that the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("duckdb connection is nil")
	}
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// closeWithLog closes a resource and logs any error. Use for cleanup where
// errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error. Use in
// error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close() // cleanup is best-effort
	}
}
