// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/assetsync/internal/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestTokenStores(t *testing.T) {
	stores := map[string]func(t *testing.T) TokenStore{
		"badger": func(t *testing.T) TokenStore { return NewBadgerTokenStore(openTestDB(t)) },
		"memory": func(*testing.T) TokenStore { return NewMemoryTokenStore() },
	}

	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			s := newStore(t)
			ctx := context.Background()

			got, err := s.Load(ctx, "tenant-a")
			if err != nil || got != "" {
				t.Fatalf("Load() on empty store = %q, %v", got, err)
			}

			if err := s.Save(ctx, "tenant-a", "abc"); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if err := s.Save(ctx, "tenant-b", "xyz"); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if got, _ := s.Load(ctx, "tenant-a"); got != "abc" {
				t.Errorf("Load(tenant-a) = %q, want abc", got)
			}
			if got, _ := s.Load(ctx, "tenant-b"); got != "xyz" {
				t.Errorf("Load(tenant-b) = %q, want xyz", got)
			}

			if err := s.Reset(ctx, "tenant-a"); err != nil {
				t.Fatalf("Reset() error = %v", err)
			}
			if got, _ := s.Load(ctx, "tenant-a"); got != "" {
				t.Errorf("Load() after Reset = %q, want empty", got)
			}
			if got, _ := s.Load(ctx, "tenant-b"); got != "xyz" {
				t.Errorf("Reset must not touch other tenants, got %q", got)
			}
		})
	}
}

func TestBadgerTokenStore_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(&config.StoreConfig{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := NewBadgerTokenStore(db).Save(ctx, "t", "page-7"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err = Open(&config.StoreConfig{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	if got, _ := NewBadgerTokenStore(db).Load(ctx, "t"); got != "page-7" {
		t.Errorf("Load() after reopen = %q, want page-7", got)
	}
	if err := db.RunGC(0.5); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestDB_Closed(t *testing.T) {
	db, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("Ping() on open store = %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := db.Ping(); !errors.Is(err, ErrClosed) {
		t.Errorf("Ping() on closed store = %v, want ErrClosed", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	_, err = NewBadgerTokenStore(db).Load(context.Background(), "t")
	if !errors.Is(err, ErrClosed) {
		t.Errorf("Load() on closed store = %v, want ErrClosed", err)
	}
}

func TestBadgerTokenStore_CanceledContext(t *testing.T) {
	s := NewBadgerTokenStore(openTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Save(ctx, "t", "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Save() = %v, want context.Canceled", err)
	}
}
