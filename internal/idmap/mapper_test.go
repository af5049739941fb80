// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package idmap

import (
	"errors"
	"sync"
	"testing"

	"github.com/tomtom215/assetsync/internal/models"
)

func TestLookupAfterAddMapping(t *testing.T) {
	t.Parallel()

	m := New()
	err := m.AddMapping(models.CategoryContentProvider, []models.MetadataElement{{SourceKey: "k", TargetID: "t"}})
	if err != nil {
		t.Fatalf("AddMapping() error = %v", err)
	}

	if got, ok := m.Lookup(models.CategoryContentProvider, "k"); !ok || got != "t" {
		t.Errorf("Lookup(k) = %q, %v; want t, true", got, ok)
	}
	if got, ok := m.Lookup(models.CategoryContentProvider, "other"); ok || got != "" {
		t.Errorf("Lookup(other) = %q, %v; want empty, false", got, ok)
	}
	if _, ok := m.Lookup(models.CategoryContentType, "k"); ok {
		t.Error("categories must be independent")
	}

	m.Clear()
	if _, ok := m.Lookup(models.CategoryContentProvider, "k"); ok {
		t.Error("Lookup after Clear must miss")
	}
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	for _, c := range models.AllCategories() {
		t.Run(c.String(), func(t *testing.T) {
			t.Parallel()
			m := New()
			if !m.IsEmpty() {
				t.Fatal("new mapper must be empty")
			}
			if err := m.AddMapping(c, []models.MetadataElement{{SourceKey: "a", TargetID: "1"}}); err != nil {
				t.Fatal(err)
			}
			if m.IsEmpty() {
				t.Errorf("mapper with one %s entry must not be empty", c)
			}
			m.Clear()
			if !m.IsEmpty() {
				t.Error("mapper must be empty after Clear")
			}
		})
	}
}

func TestAddMappingRejectsIncompleteElements(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		elements []models.MetadataElement
	}{
		{"missing target ID", []models.MetadataElement{{SourceKey: "a"}}},
		{"missing source key", []models.MetadataElement{{TargetID: "1"}}},
		{"one bad among good", []models.MetadataElement{{SourceKey: "a", TargetID: "1"}, {SourceKey: "b"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := New()
			err := m.AddMapping(models.CategoryUsage, tt.elements)
			if !errors.Is(err, ErrInvalidMapping) {
				t.Fatalf("AddMapping() error = %v, want ErrInvalidMapping", err)
			}
			if !m.IsEmpty() {
				t.Error("a rejected batch must not be partially applied")
			}
		})
	}
}

func TestAddMappingUnknownCategory(t *testing.T) {
	t.Parallel()

	m := New()
	if err := m.AddMapping(models.MetadataCategory(99), nil); err == nil {
		t.Error("expected error for unknown category")
	}
	if _, ok := m.Lookup(models.MetadataCategory(-1), "k"); ok {
		t.Error("lookup in unknown category must miss")
	}
}

func TestLookupAll(t *testing.T) {
	t.Parallel()

	m := New()
	_ = m.AddMapping(models.CategoryGeography, []models.MetadataElement{
		{SourceKey: "eu", TargetID: "G1"},
		{SourceKey: "us", TargetID: "G2"},
	})

	ids, missing := m.LookupAll(models.CategoryGeography, []string{"us", "apac", "eu"})
	if len(ids) != 2 || ids[0] != "G2" || ids[1] != "G1" {
		t.Errorf("ids = %v, want [G2 G1]", ids)
	}
	if len(missing) != 1 || missing[0] != "apac" {
		t.Errorf("missing = %v, want [apac]", missing)
	}
	if got := m.Len(models.CategoryGeography); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if got := m.Snapshot()["geography"]; got != 2 {
		t.Errorf("Snapshot()[geography] = %d, want 2", got)
	}
}

func TestReplace(t *testing.T) {
	m := New()
	if err := m.AddMapping(models.CategoryUsage, []models.MetadataElement{{SourceKey: "old", TargetID: "1"}}); err != nil {
		t.Fatal(err)
	}

	staged := New()
	if err := staged.AddMapping(models.CategoryGeography, []models.MetadataElement{{SourceKey: "eu", TargetID: "2"}}); err != nil {
		t.Fatal(err)
	}
	m.Replace(staged)

	if _, ok := m.Lookup(models.CategoryUsage, "old"); ok {
		t.Error("Replace kept a mapping from the previous tables")
	}
	if got, ok := m.Lookup(models.CategoryGeography, "eu"); !ok || got != "2" {
		t.Errorf("Lookup(eu) = %q, %v", got, ok)
	}
	if !staged.IsEmpty() {
		t.Error("source mapper still holds the swapped tables")
	}
}

func TestConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.AddMapping(models.CategorySize, []models.MetadataElement{{SourceKey: "s", TargetID: "1"}})
		}()
		go func() {
			defer wg.Done()
			m.Lookup(models.CategorySize, "s")
			m.IsEmpty()
		}()
	}
	wg.Wait()

	if got, ok := m.Lookup(models.CategorySize, "s"); !ok || got != "1" {
		t.Errorf("Lookup(s) = %q, %v", got, ok)
	}
}
