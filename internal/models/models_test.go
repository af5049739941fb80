// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package models

import (
	"testing"
	"time"
)

func TestMetadataCategory(t *testing.T) {
	all := AllCategories()
	if len(all) != NumCategories || NumCategories != 14 {
		t.Fatalf("AllCategories() has %d entries, NumCategories = %d", len(all), NumCategories)
	}
	for i, c := range all {
		if int(c) != i {
			t.Errorf("AllCategories()[%d] = %d, want import order", i, c)
		}
		parsed, ok := ParseCategory(c.String())
		if !ok || parsed != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), parsed, ok)
		}
	}

	if CategoryContentProvider.String() != "content_provider" || CategoryLanguage.String() != "language" {
		t.Error("unexpected category names")
	}
	if got := MetadataCategory(99).String(); got != "category(99)" {
		t.Errorf("invalid String() = %q", got)
	}
	if MetadataCategory(-1).Valid() || MetadataCategory(NumCategories).Valid() {
		t.Error("out of range category reported valid")
	}
	if UsageLimitKey("print") == "print" {
		t.Error("usage-limit key collides with the usage key")
	}
	if _, ok := ParseCategory("colour"); ok {
		t.Error("ParseCategory accepted an unknown name")
	}
}

func TestMetadataBundle(t *testing.T) {
	var b MetadataBundle
	b.Set(CategoryUsage, []MetadataElement{{SourceKey: "web"}, {SourceKey: "print"}})
	b.Set(CategoryLanguage, []MetadataElement{{SourceKey: "en"}})
	b.Set(MetadataCategory(42), []MetadataElement{{SourceKey: "ignored"}})

	if got := len(b.Get(CategoryUsage)); got != 2 {
		t.Errorf("Get(usage) has %d elements", got)
	}
	if b.Total() != 3 {
		t.Errorf("Total() = %d, want 3", b.Total())
	}
	if b.Get(MetadataCategory(42)) != nil {
		t.Error("Get(invalid) should be nil")
	}

	var nilBundle *MetadataBundle
	if nilBundle.Get(CategoryUsage) != nil {
		t.Error("nil bundle Get should be nil")
	}
}

func TestLocalizedValues(t *testing.T) {
	text := LocalizedText{"en": "Sunset", "de": ""}
	if text.Get("en") != "Sunset" || text.Get("fr") != "" {
		t.Error("Get() mismatch")
	}
	if text.IsEmpty() {
		t.Error("IsEmpty() true with a non-empty value")
	}
	if !(LocalizedText{"de": ""}).IsEmpty() || !LocalizedText(nil).IsEmpty() {
		t.Error("IsEmpty() false for blank values")
	}
	if LocalizedText(nil).Get("en") != "" {
		t.Error("nil Get() should be empty")
	}

	clone := text.Clone()
	clone["en"] = "Dawn"
	if text["en"] != "Sunset" {
		t.Error("Clone shares storage with the original")
	}

	list := LocalizedList{"en": {"sea", "sky"}}
	listClone := list.Clone()
	listClone["en"][0] = "land"
	if list["en"][0] != "sea" {
		t.Error("LocalizedList.Clone shares slices")
	}
	if LocalizedText(nil).Clone() != nil || LocalizedList(nil).Clone() != nil {
		t.Error("nil Clone should be nil")
	}
}

func TestAsset(t *testing.T) {
	a := Asset{Lifecycle: LifecycleCancelled, Binaries: []Binary{{ID: "b1"}}}
	if !a.IsCancelled() {
		t.Error("IsCancelled() = false")
	}
	if a.IsCompound() {
		t.Error("single binary asset reported compound")
	}
	a.Binaries = append(a.Binaries, Binary{ID: "b2"})
	if !a.IsCompound() {
		t.Error("two binary asset not compound")
	}
}

func TestAssetPage_Done(t *testing.T) {
	tests := []struct {
		name string
		page AssetPage
		want bool
	}{
		{"more with token", AssetPage{HasMore: true, ContinuationToken: "abc"}, false},
		{"no more", AssetPage{HasMore: false, ContinuationToken: "abc"}, true},
		{"more without token", AssetPage{HasMore: true}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.page.Done(); got != tt.want {
				t.Errorf("Done() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLicenseTerms(t *testing.T) {
	no := false
	terms := []LicenseTerm{{Sequence: 3}, {Sequence: 1, EditorialUse: &no}, {Sequence: 2}}

	sorted := SortTerms(terms)
	for i, want := range []int{1, 2, 3} {
		if sorted[i].Sequence != want {
			t.Errorf("sorted[%d].Sequence = %d, want %d", i, sorted[i].Sequence, want)
		}
	}
	if terms[0].Sequence != 3 {
		t.Error("SortTerms reordered its input")
	}

	if sorted[0].EffectiveEditorialUse() {
		t.Error("explicit false editorial flag ignored")
	}
	if !sorted[1].EffectiveEditorialUse() {
		t.Error("unset editorial flag should default to true")
	}

	if !(KeyRule{}).IsEmpty() || (KeyRule{Allowed: []string{"web"}}).IsEmpty() {
		t.Error("KeyRule.IsEmpty mismatch")
	}
}

func TestRecords(t *testing.T) {
	b1 := BinaryAsset{Content: ContentMetadata{TransactionID: "tx-1"}, BinaryID: "b1"}
	b2 := BinaryAsset{Content: ContentMetadata{TransactionID: "tx-1"}, BinaryID: "b2"}
	compound := CompoundAsset{Content: ContentMetadata{TransactionID: "tx-1"}, Parts: []BinaryAsset{b1, b2}}

	if b1.Kind() != KindBinary || compound.Kind() != KindCompound {
		t.Error("Kind() mismatch")
	}
	if KindBinary.String() != "binary" || KindCompound.String() != "compound" || RecordKind(0).String() != "unknown" {
		t.Error("RecordKind.String mismatch")
	}
	if compound.TransactionID() != "tx-1" || b2.TransactionID() != "tx-1" {
		t.Error("TransactionID mismatch")
	}
	if ids := compound.PartIDs(); len(ids) != 2 || ids[0] != "b1" || ids[1] != "b2" {
		t.Errorf("PartIDs() = %v", ids)
	}

	withPath := b1.WithLocalPath("/tmp/x.jpg")
	if withPath.LocalPath != "/tmp/x.jpg" || b1.LocalPath != "" {
		t.Error("WithLocalPath must return a modified copy")
	}

	result := ConversionResult{Binaries: []BinaryAsset{b1, b2}, Compound: &compound}
	if result.Len() != 3 {
		t.Errorf("Len() = %d, want 3", result.Len())
	}
	records := result.Records()
	if len(records) != 3 || records[2].Kind() != KindCompound {
		t.Errorf("Records() = %v, want binaries then compound", records)
	}
	if (ConversionResult{Binaries: []BinaryAsset{b1}}).Len() != 1 {
		t.Error("Len() without compound")
	}
}

func TestBucketCountsAndReport(t *testing.T) {
	c := BucketCounts{NewBinaries: 2, UpdatedCompounds: 1}
	c.Add(BucketCounts{NewBinaries: 1, UpdatedBinaries: 3, NewCompounds: 1})
	if c.NewBinaries != 3 || c.UpdatedBinaries != 3 || c.NewCompounds != 1 || c.UpdatedCompounds != 1 {
		t.Errorf("Add() = %+v", c)
	}
	if c.Total() != 8 {
		t.Errorf("Total() = %d, want 8", c.Total())
	}

	start := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	r := RunReport{StartedAt: start}
	if r.Duration() != 0 {
		t.Error("unfinished run should report zero duration")
	}
	r.FinishedAt = start.Add(90 * time.Second)
	if r.Duration() != 90*time.Second {
		t.Errorf("Duration() = %v", r.Duration())
	}
}
