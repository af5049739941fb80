// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package source

import (
	"testing"

	"github.com/tomtom215/assetsync/internal/models"
)

func vals(pairs ...string) []models.LocalizedValue {
	out := make([]models.LocalizedValue, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.LocalizedValue{Locale: pairs[i], Value: pairs[i+1]})
	}
	return out
}

func TestLocaleFilter_Apply(t *testing.T) {
	raw := &RawMetadata{Categories: map[string][]models.RawMetadataElement{
		"usage": {
			{Key: "print", Values: vals("en", "Print", "de", "Druck")},
			{Key: "web", Values: vals("en", "Web")},
		},
		"geography": {
			{Key: "ch", Values: vals("en", "Switzerland", "fr", "Suisse")},
		},
	}}

	f := NewLocaleFilter([]string{"en", "de", "it", "fr"}, "en")
	bundle := f.Apply(raw)

	usage := bundle.Get(models.CategoryUsage)
	if len(usage) != 2 {
		t.Fatalf("usage = %+v", usage)
	}
	byKey := map[string]models.LocalizedText{}
	for _, el := range usage {
		byKey[el.SourceKey] = el.Names
	}

	if byKey["print"]["de"] != "Druck" {
		t.Errorf("print/de = %q", byKey["print"]["de"])
	}
	// de is present elsewhere, so web falls back to the default locale.
	if byKey["web"]["de"] != "Web" {
		t.Errorf("web/de = %q, want fallback", byKey["web"]["de"])
	}
	// fr appears only in geography, but it is present in the bundle.
	if byKey["web"]["fr"] != "Web" {
		t.Errorf("web/fr = %q, want fallback", byKey["web"]["fr"])
	}
	// it appears nowhere and is omitted.
	if _, ok := byKey["print"]["it"]; ok {
		t.Error("language absent everywhere must be omitted")
	}

	geo := bundle.Get(models.CategoryGeography)
	if geo[0].Names["fr"] != "Suisse" {
		t.Errorf("geography/fr = %q", geo[0].Names["fr"])
	}
}

func TestLocaleFilter_UsageLimitSharesUsageTable(t *testing.T) {
	raw := &RawMetadata{Categories: map[string][]models.RawMetadataElement{
		"usage_limit": {{Key: "print", Values: vals("en", "Print run up to 10k")}},
		"usage":       {{Key: "print", Values: vals("en", "Print")}},
	}}
	bundle := NewLocaleFilter([]string{"en"}, "en").Apply(raw)

	usage := bundle.Get(models.CategoryUsage)
	if len(usage) != 2 {
		t.Fatalf("usage = %+v, want 2 elements", usage)
	}
	if usage[0].SourceKey != "print" || usage[0].Names["en"] != "Print" {
		t.Errorf("usage[0] = %+v", usage[0])
	}
	if usage[1].SourceKey != models.UsageLimitKey("print") || usage[1].Names["en"] != "Print run up to 10k" {
		t.Errorf("usage[1] = %+v", usage[1])
	}
}

func TestLocaleFilter_CaseInsensitive(t *testing.T) {
	raw := &RawMetadata{Categories: map[string][]models.RawMetadataElement{
		"language": {{Key: "de", Values: vals("de_ch", "Deutsch (Schweiz)")}},
	}}
	bundle := NewLocaleFilter([]string{"de-CH"}, "en").Apply(raw)

	got := bundle.Get(models.CategoryLanguage)[0].Names
	if got["de-CH"] != "Deutsch (Schweiz)" {
		t.Errorf("names = %v", got)
	}
}

func TestLocaleFilter_DropsInvalid(t *testing.T) {
	raw := &RawMetadata{Categories: map[string][]models.RawMetadataElement{
		"usage":   {{Key: "", Values: vals("en", "x")}, {Key: "ok", Values: vals("en", "OK")}},
		"unknown": {{Key: "k", Values: vals("en", "v")}},
	}}
	bundle := NewLocaleFilter([]string{"en"}, "en").Apply(raw)

	if bundle.Total() != 1 {
		t.Errorf("Total() = %d, want 1", bundle.Total())
	}
}

func TestLocaleFilter_NilRaw(t *testing.T) {
	if got := NewLocaleFilter([]string{"en"}, "en").Apply(nil); got.Total() != 0 {
		t.Errorf("Total() = %d", got.Total())
	}
}
