// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package idmap holds the in-memory mapping from source metadata keys to the
// IDs the target assigned to them.
//
// The mapper keeps one table per metadata category. It is cleared and rebuilt
// as a whole by every metadata sync; there is no expiry, eviction or partial
// invalidation. Lookups of unknown keys are not errors: the caller decides
// whether a missing mapping is fatal.
package idmap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tomtom215/assetsync/internal/models"
)

// ErrInvalidMapping is returned when an element lacks a source key or target ID.
var ErrInvalidMapping = errors.New("mapping requires both source key and target ID")

// Mapper maps source keys to target IDs per metadata category.
// It is safe for concurrent use.
type Mapper struct {
	mu     sync.RWMutex
	tables [models.NumCategories]map[string]string
}

// New creates an empty Mapper.
func New() *Mapper {
	m := &Mapper{}
	m.reset()
	return m
}

func (m *Mapper) reset() {
	for i := range m.tables {
		m.tables[i] = make(map[string]string)
	}
}

// Clear empties every table.
func (m *Mapper) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

// Replace swaps in every table of src. src must not be used afterwards.
func (m *Mapper) Replace(src *Mapper) {
	src.mu.Lock()
	tables := src.tables
	src.reset()
	src.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables = tables
}

// IsEmpty reports whether all tables are empty.
func (m *Mapper) IsEmpty() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tables {
		if len(t) > 0 {
			return false
		}
	}
	return true
}

// AddMapping folds imported elements into the category's table. The whole
// batch is rejected if any element lacks a source key or target ID.
func (m *Mapper) AddMapping(category models.MetadataCategory, elements []models.MetadataElement) error {
	if !category.Valid() {
		return fmt.Errorf("add mapping: unknown %s", category)
	}
	for i := range elements {
		if elements[i].SourceKey == "" || elements[i].TargetID == "" {
			return fmt.Errorf("add mapping %s[%d] (key %q): %w", category, i, elements[i].SourceKey, ErrInvalidMapping)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	table := m.tables[category]
	for i := range elements {
		table[elements[i].SourceKey] = elements[i].TargetID
	}
	return nil
}

// Lookup returns the target ID for sourceKey, or false if it is not mapped.
func (m *Mapper) Lookup(category models.MetadataCategory, sourceKey string) (string, bool) {
	if !category.Valid() || sourceKey == "" {
		return "", false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.tables[category][sourceKey]
	return id, ok
}

// LookupAll maps every key it can resolve, preserving order, and returns the
// keys it could not.
func (m *Mapper) LookupAll(category models.MetadataCategory, sourceKeys []string) (ids, missing []string) {
	if len(sourceKeys) == 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range sourceKeys {
		if !category.Valid() {
			missing = append(missing, k)
			continue
		}
		if id, ok := m.tables[category][k]; ok {
			ids = append(ids, id)
		} else {
			missing = append(missing, k)
		}
	}
	return ids, missing
}

// Len returns the number of mappings in one category.
func (m *Mapper) Len(category models.MetadataCategory) int {
	if !category.Valid() {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[category])
}

// Snapshot returns the size of every table, keyed by category name.
func (m *Mapper) Snapshot() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]int, len(m.tables))
	for i, t := range m.tables {
		out[models.MetadataCategory(i).String()] = len(t)
	}
	return out
}
