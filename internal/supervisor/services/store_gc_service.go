// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package services

import (
	"context"
	"time"

	"github.com/tomtom215/assetsync/internal/logging"
)

// gcDiscardRatio is the fraction of a value log file that must be stale
// before badger rewrites it.
const gcDiscardRatio = 0.5

// GarbageCollector is satisfied by *store.DB.
type GarbageCollector interface {
	RunGC(discardRatio float64) error
}

// StoreGCService runs value log garbage collection on a fixed interval.
// GC errors are logged and do not restart the service.
type StoreGCService struct {
	db       GarbageCollector
	interval time.Duration
}

// NewStoreGCService creates a GC service. interval must be positive.
func NewStoreGCService(db GarbageCollector, interval time.Duration) *StoreGCService {
	return &StoreGCService{db: db, interval: interval}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.db.RunGC(gcDiscardRatio); err != nil {
				logging.Warn().Err(err).Msg("Store value log GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Store value log GC completed")
		}
	}
}

// String implements fmt.Stringer.
func (s *StoreGCService) String() string {
	return "store-gc"
}
