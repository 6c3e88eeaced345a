// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/plotarium/plotarium/internal/logging"
	"github.com/plotarium/plotarium/internal/models"
)

// ErrStoreNotFound means the store root directory does not exist. A root
// that exists with zero partitions is NOT this error; that is a valid,
// empty store.
var ErrStoreNotFound = errors.New("store not found")

// partitionPrefix is the directory naming scheme for decade partitions.
const partitionPrefix = "decade="

// dataFileName is the columnar data file within each partition.
const dataFileName = "data.parquet"

// PartitionInfo describes one decade partition on disk.
type PartitionInfo struct {
	Decade int    `json:"decade"`
	Rows   int64  `json:"rows"`
	Path   string `json:"path"`
}

// WriteResult summarizes a completed store write.
type WriteResult struct {
	TotalRows  int64           `json:"total_rows"`
	Partitions []PartitionInfo `json:"partitions"`
}

// Store reads and writes the decade-partitioned Parquet file set.
type Store struct {
	db   *DB
	root string
}

// New creates a store over the given root directory.
func New(db *DB, root string) *Store {
	return &Store{db: db, root: root}
}

// Root returns the store root directory.
func (s *Store) Root() string {
	return s.root
}

// Write persists the enriched table, replacing any previous store state.
//
// Rows are grouped by decade and each group becomes
// <root>/decade=<n>/data.parquet. Everything is staged into a sibling
// temp directory and renamed over the root at the end, so a concurrent
// reader sees either the old store or the new one, never a half-written
// partition.
func (s *Store) Write(ctx context.Context, table models.Table) (*WriteResult, error) {
	staging := fmt.Sprintf("%s.tmp-%s", s.root, uuid.NewString())
	if err := os.MkdirAll(staging, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		// Left behind only on error paths.
		_ = os.RemoveAll(staging)
	}()

	if err := s.loadStagingTable(ctx, table); err != nil {
		return nil, err
	}
	defer s.dropStagingTable(ctx)

	result := &WriteResult{TotalRows: int64(len(table))}
	for _, decade := range table.Decades() {
		info, err := s.writePartition(ctx, staging, decade)
		if err != nil {
			return nil, err
		}
		result.Partitions = append(result.Partitions, info)
		logging.Info().
			Int("decade", decade).
			Int64("rows", info.Rows).
			Msg("Partition written")
	}

	if err := s.swapIntoPlace(staging); err != nil {
		return nil, err
	}

	logging.Info().
		Int64("total_rows", result.TotalRows).
		Int("partitions", len(result.Partitions)).
		Str("root", s.root).
		Msg("Store write complete")

	return result, nil
}

// loadStagingTable materializes the table inside DuckDB for COPY export.
func (s *Store) loadStagingTable(ctx context.Context, table models.Table) error {
	const createStmt = `
		CREATE OR REPLACE TABLE staging_movies (
			seq          BIGINT  NOT NULL,
			title        VARCHAR NOT NULL,
			release_year INTEGER NOT NULL,
			plot         VARCHAR NOT NULL,
			genre        VARCHAR,
			title_clean  VARCHAR NOT NULL,
			plot_length  INTEGER NOT NULL,
			decade       INTEGER NOT NULL
		)`
	if _, err := s.db.conn.ExecContext(ctx, createStmt); err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin staging transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO staging_movies VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to prepare staging insert: %w", err)
	}

	for i := range table {
		rec := &table[i]
		var genre any
		if rec.Genre != "" {
			genre = rec.Genre
		}
		if _, err := stmt.ExecContext(ctx, rec.Seq, rec.Title, rec.ReleaseYear, rec.Plot, genre,
			rec.TitleClean, rec.PlotLength, rec.Decade); err != nil {
			closeQuietly(stmt)
			_ = tx.Rollback()
			return fmt.Errorf("failed to stage row seq=%d: %w", rec.Seq, err)
		}
	}

	closeWithLog(stmt, "staging insert statement")
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit staging rows: %w", err)
	}
	return nil
}

// dropStagingTable removes the scratch table; failures are non-fatal.
func (s *Store) dropStagingTable(ctx context.Context) {
	if _, err := s.db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS staging_movies"); err != nil {
		logging.Warn().Err(err).Msg("Failed to drop staging table")
	}
}

// writePartition exports one decade group to its Parquet file.
func (s *Store) writePartition(ctx context.Context, staging string, decade int) (PartitionInfo, error) {
	dir := filepath.Join(staging, fmt.Sprintf("%s%d", partitionPrefix, decade))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return PartitionInfo{}, fmt.Errorf("failed to create partition directory: %w", err)
	}
	outputPath := filepath.Join(dir, dataFileName)

	// ZSTD gives notably smaller files than the default SNAPPY for long
	// plot text. The decade value is an integer derived by us, safe to
	// inline; the output path is bound as a parameter.
	exportQuery := fmt.Sprintf(`
		COPY (SELECT * FROM staging_movies WHERE decade = %d ORDER BY seq)
		TO ? (FORMAT PARQUET, COMPRESSION 'ZSTD')`, decade)
	if _, err := s.db.conn.ExecContext(ctx, exportQuery, outputPath); err != nil {
		return PartitionInfo{}, fmt.Errorf("failed to export partition decade=%d: %w", decade, err)
	}

	var rows int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM staging_movies WHERE decade = %d", decade)
	if err := s.db.conn.QueryRowContext(ctx, countQuery).Scan(&rows); err != nil {
		return PartitionInfo{}, fmt.Errorf("failed to count partition decade=%d: %w", decade, err)
	}

	return PartitionInfo{Decade: decade, Rows: rows, Path: filepath.Join(s.root, fmt.Sprintf("%s%d", partitionPrefix, decade))}, nil
}

// swapIntoPlace atomically replaces the store root with the staging dir.
func (s *Store) swapIntoPlace(staging string) error {
	if parent := filepath.Dir(s.root); parent != "" && parent != "." {
		if err := os.MkdirAll(parent, 0o750); err != nil {
			return fmt.Errorf("failed to create store parent directory: %w", err)
		}
	}

	if _, err := os.Stat(s.root); err == nil {
		retired := fmt.Sprintf("%s.old-%s", s.root, uuid.NewString())
		if err := os.Rename(s.root, retired); err != nil {
			return fmt.Errorf("failed to retire previous store: %w", err)
		}
		if err := os.Rename(staging, s.root); err != nil {
			// Best effort restore of the previous store.
			if restoreErr := os.Rename(retired, s.root); restoreErr != nil {
				logging.Error().Err(restoreErr).Msg("Failed to restore previous store after swap failure")
			}
			return fmt.Errorf("failed to activate new store: %w", err)
		}
		if err := os.RemoveAll(retired); err != nil {
			logging.Warn().Err(err).Str("path", retired).Msg("Failed to remove retired store")
		}
		return nil
	}

	if err := os.Rename(staging, s.root); err != nil {
		return fmt.Errorf("failed to activate new store: %w", err)
	}
	return nil
}

// Read loads records from the store, all partitions by default or only
// the given decades. Rows come back ordered by decade ascending, then
// ingestion seq ascending, which is the deterministic load order the
// query engine relies on.
func (s *Store) Read(ctx context.Context, decades ...int) (models.Table, error) {
	partitions, err := s.listPartitions()
	if err != nil {
		return nil, err
	}
	if len(decades) > 0 {
		wanted := make(map[int]bool, len(decades))
		for _, d := range decades {
			wanted[d] = true
		}
		filtered := partitions[:0]
		for _, p := range partitions {
			if wanted[p.Decade] {
				filtered = append(filtered, p)
			}
		}
		partitions = filtered
	}
	if len(partitions) == 0 {
		return models.Table{}, nil
	}

	files := make([]string, len(partitions))
	for i, p := range partitions {
		files[i] = quoteLiteral(filepath.Join(p.Path, dataFileName))
	}
	query := fmt.Sprintf(`
		SELECT seq, title, release_year, plot, COALESCE(genre, ''), title_clean, plot_length, decade
		FROM read_parquet([%s])
		ORDER BY decade, seq`, strings.Join(files, ", "))

	rows, err := s.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read partitions: %w", err)
	}
	defer closeWithLog(rows, "partition result set")

	var table models.Table
	for rows.Next() {
		var rec models.MovieRecord
		if err := rows.Scan(&rec.Seq, &rec.Title, &rec.ReleaseYear, &rec.Plot, &rec.Genre,
			&rec.TitleClean, &rec.PlotLength, &rec.Decade); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		table = append(table, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	logging.Debug().
		Int("rows", len(table)).
		Int("partitions", len(partitions)).
		Msg("Store read complete")

	return table, nil
}

// Partitions reports the decades present on disk with their row counts,
// ascending by decade.
func (s *Store) Partitions(ctx context.Context) ([]PartitionInfo, error) {
	partitions, err := s.listPartitions()
	if err != nil {
		return nil, err
	}

	for i := range partitions {
		file := quoteLiteral(filepath.Join(partitions[i].Path, dataFileName))
		query := fmt.Sprintf("SELECT COUNT(*) FROM read_parquet(%s)", file)
		if err := s.db.conn.QueryRowContext(ctx, query).Scan(&partitions[i].Rows); err != nil {
			return nil, fmt.Errorf("failed to count partition decade=%d: %w", partitions[i].Decade, err)
		}
	}
	return partitions, nil
}

// listPartitions scans the root for decade=<n> directories that contain a
// data file, ascending by decade. A missing root is ErrStoreNotFound; an
// existing root with no partitions is a valid empty store.
func (s *Store) listPartitions() ([]PartitionInfo, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, s.root)
		}
		return nil, fmt.Errorf("failed to list store root: %w", err)
	}

	var partitions []PartitionInfo
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), partitionPrefix) {
			continue
		}
		decade, err := strconv.Atoi(strings.TrimPrefix(entry.Name(), partitionPrefix))
		if err != nil {
			logging.Warn().Str("dir", entry.Name()).Msg("Ignoring non-decade directory in store root")
			continue
		}
		path := filepath.Join(s.root, entry.Name())
		if _, err := os.Stat(filepath.Join(path, dataFileName)); err != nil {
			logging.Warn().Str("dir", entry.Name()).Msg("Ignoring partition without data file")
			continue
		}
		partitions = append(partitions, PartitionInfo{Decade: decade, Path: path})
	}

	sort.Slice(partitions, func(i, j int) bool { return partitions[i].Decade < partitions[j].Decade })
	return partitions, nil
}

// quoteLiteral wraps a string as a single-quoted SQL literal. File paths
// cannot be bound as parameters inside read_parquet().
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
