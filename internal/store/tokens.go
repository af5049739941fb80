// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

const prefixToken = "continuation:"

// TokenStore persists the last continuation token per tenant so a run
// resumes the asset listing where the previous one stopped. An empty token
// means "start from the beginning".
type TokenStore interface {
	Load(ctx context.Context, tenant string) (string, error)
	Save(ctx context.Context, tenant, token string) error
	Reset(ctx context.Context, tenant string) error
}

// BadgerTokenStore is a TokenStore backed by DB.
type BadgerTokenStore struct {
	db *DB
}

// NewBadgerTokenStore creates a token store on db.
func NewBadgerTokenStore(db *DB) *BadgerTokenStore {
	return &BadgerTokenStore{db: db}
}

func tokenKey(tenant string) []byte {
	return []byte(prefixToken + tenant)
}

// Load returns the stored token, or "" if none was saved.
func (s *BadgerTokenStore) Load(ctx context.Context, tenant string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var token string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey(tenant))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			token = string(val)
			return nil
		})
	})
	if err != nil {
		return "", fmt.Errorf("load continuation token: %w", err)
	}
	return token, nil
}

// Save stores token for tenant.
func (s *BadgerTokenStore) Save(ctx context.Context, tenant, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey(tenant), []byte(token))
	})
	if err != nil {
		return fmt.Errorf("save continuation token: %w", err)
	}
	return nil
}

// Reset forgets the token so the next run starts from the beginning.
func (s *BadgerTokenStore) Reset(ctx context.Context, tenant string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(tokenKey(tenant))
	})
	if err != nil {
		return fmt.Errorf("reset continuation token: %w", err)
	}
	return nil
}

// MemoryTokenStore is a TokenStore kept in process memory.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

// Load returns the stored token, or "".
func (s *MemoryTokenStore) Load(_ context.Context, tenant string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[tenant], nil
}

// Save stores token for tenant.
func (s *MemoryTokenStore) Save(_ context.Context, tenant, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tenant] = token
	return nil
}

// Reset forgets the tenant's token.
func (s *MemoryTokenStore) Reset(_ context.Context, tenant string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tenant)
	return nil
}
