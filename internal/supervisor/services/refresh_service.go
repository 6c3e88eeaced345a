// Plotarium - Movie Plot ETL and Keyword Search
// Copyright 2026 Plotarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plotarium/plotarium

package services

import (
	"context"
	"errors"
	"time"

	"github.com/plotarium/plotarium/internal/logging"
	"github.com/plotarium/plotarium/internal/store"
)

// SnapshotReloader refreshes an in-memory snapshot from disk. Satisfied
// by *query.Engine.
type SnapshotReloader interface {
	Reload(ctx context.Context) error
}

// StoreRefreshService periodically reloads the query engine's snapshot so
// serve mode picks up pipeline runs executed by other processes. A missing
// store is tolerated; the last good snapshot keeps serving.
type StoreRefreshService struct {
	reloader SnapshotReloader
	interval time.Duration
	name     string
}

// NewStoreRefreshService creates a refresher with the given poll interval.
func NewStoreRefreshService(reloader SnapshotReloader, interval time.Duration) *StoreRefreshService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StoreRefreshService{
		reloader: reloader,
		interval: interval,
		name:     "store-refresher",
	}
}

// Serve implements suture.Service. Reload failures are logged and polling
// continues; only context cancellation ends the service.
func (s *StoreRefreshService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.reloader.Reload(ctx); err != nil {
				if errors.Is(err, store.ErrStoreNotFound) {
					logging.Debug().Msg("Store not present yet, keeping current snapshot")
					continue
				}
				logging.Warn().Err(err).Msg("Snapshot refresh failed")
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in event logs.
func (s *StoreRefreshService) String() string {
	return s.name
}
