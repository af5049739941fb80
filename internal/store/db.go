// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/assetsync/internal/config"
	"github.com/tomtom215/assetsync/internal/logging"
)

// ErrClosed is returned by operations on a closed DB.
var ErrClosed = errors.New("store is closed")

// DB owns the BadgerDB instance shared by the continuation token store and
// the catalog target. Keys are namespaced by prefix.
type DB struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the database described by cfg.
func Open(cfg *config.StoreConfig) (*DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Msg("Store opened")
	return &DB{db: db}, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*DB, error) {
	return Open(&config.StoreConfig{InMemory: true})
}

// Badger returns the underlying database.
func (d *DB) Badger() *badger.DB {
	return d.db
}

// View runs fn in a read-only transaction.
func (d *DB) View(fn func(txn *badger.Txn) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	return d.db.View(fn)
}

// Update runs fn in a read-write transaction.
func (d *DB) Update(fn func(txn *badger.Txn) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	return d.db.Update(fn)
}

// Ping reports whether the database accepts transactions.
func (d *DB) Ping() error {
	return d.View(func(*badger.Txn) error { return nil })
}

// RunGC reclaims value log space. It returns nil when there was nothing to
// rewrite.
func (d *DB) RunGC(discardRatio float64) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	if d.db.Opts().InMemory {
		return nil
	}
	for {
		err := d.db.RunValueLogGC(discardRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("value log GC: %w", err)
		}
	}
}

// Close closes the database. Further calls return ErrClosed.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Store closed")
	return nil
}
