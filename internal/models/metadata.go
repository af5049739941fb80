// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package models

import "fmt"

// MetadataCategory identifies one of the independent metadata tables that are
// imported into the target and mapped during conversion.
type MetadataCategory int

// Metadata categories in import order.
const (
	CategoryContentProvider MetadataCategory = iota
	CategoryContentType
	CategoryContentCategory
	CategoryBinaryType
	CategoryLicenseType
	CategoryLicenseOption
	CategoryLicenseExclusivity
	CategoryUsage
	CategorySize
	CategoryPlacement
	CategoryDistribution
	CategoryGeography
	CategoryIndustry
	CategoryLanguage

	// NumCategories is the number of metadata categories.
	NumCategories = int(CategoryLanguage) + 1
)

var categoryNames = [NumCategories]string{
	"content_provider",
	"content_type",
	"content_category",
	"binary_type",
	"license_type",
	"license_option",
	"license_exclusivity",
	"usage",
	"size",
	"placement",
	"distribution",
	"geography",
	"industry",
	"language",
}

// String returns the stable snake_case name used in logs, metrics and storage keys.
func (c MetadataCategory) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Valid reports whether c is a known category.
func (c MetadataCategory) Valid() bool {
	return c >= 0 && int(c) < NumCategories
}

// AllCategories returns every category in import order.
func AllCategories() []MetadataCategory {
	out := make([]MetadataCategory, NumCategories)
	for i := range out {
		out[i] = MetadataCategory(i)
	}
	return out
}

// ParseCategory resolves a category from its String form.
func ParseCategory(name string) (MetadataCategory, bool) {
	for i, n := range categoryNames {
		if n == name {
			return MetadataCategory(i), true
		}
	}
	return 0, false
}

// UsageLimitCategory is the source name of usage-limit metadata. It has no
// table of its own: its elements live in the usage table under UsageLimitKey,
// which never equals a plain usage key.
const UsageLimitCategory = "usage_limit"

// UsageLimitKey returns the usage-table key of a usage-limit source key.
func UsageLimitKey(key string) string {
	return UsageLimitCategory + ":" + key
}

// MetadataElement pairs a source key and its display names with the ID the
// target assigned during import. TargetID is empty until the target stamps it.
type MetadataElement struct {
	SourceKey string        `json:"source_key"`
	Names     LocalizedText `json:"names,omitempty"`
	TargetID  string        `json:"target_id,omitempty"`
}

// LocalizedValue is one raw display value as delivered by the source, before
// locale filtering.
type LocalizedValue struct {
	Locale string `json:"locale"`
	Value  string `json:"value"`
}

// RawMetadataElement is a metadata element as delivered by the source.
type RawMetadataElement struct {
	Key    string           `json:"key"`
	Values []LocalizedValue `json:"values"`
}

// MetadataBundle holds the elements of every category.
type MetadataBundle struct {
	Elements [NumCategories][]MetadataElement
}

// Get returns the elements of one category.
func (b *MetadataBundle) Get(c MetadataCategory) []MetadataElement {
	if b == nil || !c.Valid() {
		return nil
	}
	return b.Elements[c]
}

// Set replaces the elements of one category.
func (b *MetadataBundle) Set(c MetadataCategory, elements []MetadataElement) {
	if !c.Valid() {
		return
	}
	b.Elements[c] = elements
}

// Total returns the element count over all categories.
func (b *MetadataBundle) Total() int {
	n := 0
	for _, els := range b.Elements {
		n += len(els)
	}
	return n
}

// Capabilities describes what a target is able to store.
type Capabilities struct {
	MultiLanguage  bool `json:"multi_language"`
	CompoundAssets bool `json:"compound_assets"`
	BinaryUpdates  bool `json:"binary_updates"`
}
