// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package source

import (
	"maps"
	"slices"
	"strings"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/models"
)

// LocaleFilter reduces raw multi-locale metadata to the configured import
// languages. Locale tags compare case-insensitively; output keys use the
// configured spelling.
type LocaleFilter struct {
	languages     []string
	defaultLocale string
}

// NewLocaleFilter creates a filter for the given import languages and
// fallback locale.
func NewLocaleFilter(languages []string, defaultLocale string) *LocaleFilter {
	return &LocaleFilter{
		languages:     append([]string(nil), languages...),
		defaultLocale: defaultLocale,
	}
}

// Apply converts raw metadata into a bundle.
//
// A configured language appears in an element's names only if at least one
// value anywhere in raw carries that locale. Its value is the element's own
// value for the language, else the element's default-locale value. Elements
// without a key are dropped.
func (f *LocaleFilter) Apply(raw *RawMetadata) *models.MetadataBundle {
	bundle := &models.MetadataBundle{}
	if raw == nil {
		return bundle
	}

	present := make(map[string]bool)
	for _, elements := range raw.Categories {
		for _, el := range elements {
			for _, v := range el.Values {
				if v.Value != "" {
					present[normalizeLocale(v.Locale)] = true
				}
			}
		}
	}

	active := make([]string, 0, len(f.languages))
	for _, lang := range f.languages {
		if present[normalizeLocale(lang)] {
			active = append(active, lang)
		}
	}
	fallback := normalizeLocale(f.defaultLocale)

	// Sorted so usage-limit elements follow the usage elements they share a table with.
	for _, name := range slices.Sorted(maps.Keys(raw.Categories)) {
		category, keyOf, ok := resolveCategory(name)
		if !ok {
			logging.Debug().Str("category", name).Msg("Ignoring unknown metadata category")
			continue
		}

		out := bundle.Get(category)
		for _, el := range raw.Categories[name] {
			if el.Key == "" {
				logging.Warn().Str("category", name).Msg("Dropping metadata element without key")
				continue
			}
			out = append(out, models.MetadataElement{
				SourceKey: keyOf(el.Key),
				Names:     f.names(el.Values, active, fallback),
			})
		}
		bundle.Set(category, out)
	}
	return bundle
}

// resolveCategory maps a source category name to its table and the key
// under which its elements are stored there.
func resolveCategory(name string) (models.MetadataCategory, func(string) string, bool) {
	if name == models.UsageLimitCategory {
		return models.CategoryUsage, models.UsageLimitKey, true
	}
	category, ok := models.ParseCategory(name)
	return category, func(key string) string { return key }, ok
}

func (f *LocaleFilter) names(values []models.LocalizedValue, active []string, fallback string) models.LocalizedText {
	byLocale := make(map[string]string, len(values))
	for _, v := range values {
		if v.Value == "" {
			continue
		}
		byLocale[normalizeLocale(v.Locale)] = v.Value
	}

	names := make(models.LocalizedText, len(active))
	for _, lang := range active {
		value := byLocale[normalizeLocale(lang)]
		if value == "" {
			value = byLocale[fallback]
		}
		if value != "" {
			names[lang] = value
		}
	}
	return names
}

func normalizeLocale(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), "_", "-"))
}
