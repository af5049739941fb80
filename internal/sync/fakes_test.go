// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/syncerr"
	"github.com/tomtom215/assetsync/internal/target"
)

// fakeSource serves a fixed metadata bundle and a scripted list of pages.
type fakeSource struct {
	mu            sync.Mutex
	credErr       error
	metadata      *models.MetadataBundle
	metadataErr   error
	metadataCalls int
	pages         []*models.AssetPage
	pageErr       error
	requested     []string
}

func (s *fakeSource) CheckCredential(context.Context) error { return s.credErr }

func (s *fakeSource) FetchMetadata(context.Context) (*models.MetadataBundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadataCalls++
	if s.metadataErr != nil {
		return nil, s.metadataErr
	}
	return s.metadata, nil
}

func (s *fakeSource) FetchAssetPage(_ context.Context, continuation string, _ models.Capabilities) (*models.AssetPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = append(s.requested, continuation)
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	i := len(s.requested) - 1
	if i >= len(s.pages) {
		return &models.AssetPage{}, nil
	}
	return s.pages[i], nil
}

func (s *fakeSource) fetches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requested)
}

// fakeTarget is an in-memory adapter recording every call.
type fakeTarget struct {
	mu   sync.Mutex
	caps models.Capabilities

	beforeSync     bool
	beforeMetadata bool
	beforeAssets   bool
	hookErr        error
	panicIn        string
	dropTargetID   string

	binaries  map[string]string
	compounds map[string]string

	calls    []string
	newBins  []models.BinaryAsset
	updBins  []target.BinaryUpdate
	newComps []models.CompoundAsset
	updComps []target.CompoundUpdate
	authErrs []error
	syncErrs []error
	imported map[models.MetadataCategory][]models.MetadataElement
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		caps:           models.Capabilities{MultiLanguage: true, CompoundAssets: true, BinaryUpdates: true},
		beforeSync:     true,
		beforeMetadata: true,
		beforeAssets:   true,
		binaries:       make(map[string]string),
		compounds:      make(map[string]string),
		imported:       make(map[models.MetadataCategory][]models.MetadataElement),
	}
}

func (f *fakeTarget) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.panicIn == name {
		panic(name + " exploded")
	}
}

func (f *fakeTarget) called(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == name {
			return true
		}
	}
	return false
}

func (f *fakeTarget) Capabilities() models.Capabilities { return f.caps }

func (f *fakeTarget) BeforeSync(context.Context) (bool, error) {
	f.record("BeforeSync")
	return f.beforeSync, f.hookErr
}

func (f *fakeTarget) AfterSync(context.Context) error {
	f.record("AfterSync")
	return nil
}

func (f *fakeTarget) BeforeGenericMetadataSync(context.Context) (bool, error) {
	f.record("BeforeGenericMetadataSync")
	return f.beforeMetadata, nil
}

func (f *fakeTarget) AfterGenericMetadataSync(context.Context) error {
	f.record("AfterGenericMetadataSync")
	return nil
}

func (f *fakeTarget) BeforeAssetsSync(context.Context) (bool, error) {
	f.record("BeforeAssetsSync")
	return f.beforeAssets, nil
}

func (f *fakeTarget) AfterAssetsSync(context.Context) error {
	f.record("AfterAssetsSync")
	return nil
}

func (f *fakeTarget) ImportMetadata(_ context.Context, category models.MetadataCategory, elements []models.MetadataElement) ([]models.MetadataElement, error) {
	f.record("ImportMetadata")
	out := make([]models.MetadataElement, len(elements))
	for i, el := range elements {
		if el.SourceKey != f.dropTargetID {
			el.TargetID = "T-" + el.SourceKey
		}
		out[i] = el
	}
	f.mu.Lock()
	f.imported[category] = out
	f.mu.Unlock()
	return out, nil
}

func (f *fakeTarget) TargetIDForBinary(_ context.Context, tx, bin string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.binaries[tx+"/"+bin], nil
}

func (f *fakeTarget) TargetIDForCompound(_ context.Context, tx string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.compounds[tx], nil
}

func (f *fakeTarget) ImportNewBinaries(_ context.Context, records []models.BinaryAsset) error {
	f.record("ImportNewBinaries")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		f.binaries[r.TransactionID()+"/"+r.BinaryID] = uuid.New().String()
		f.newBins = append(f.newBins, r)
	}
	return nil
}

func (f *fakeTarget) UpdateBinaries(_ context.Context, updates []target.BinaryUpdate) error {
	f.record("UpdateBinaries")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updBins = append(f.updBins, updates...)
	return nil
}

func (f *fakeTarget) ImportNewCompounds(_ context.Context, records []models.CompoundAsset) error {
	f.record("ImportNewCompounds")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		f.compounds[r.TransactionID()] = uuid.New().String()
		f.newComps = append(f.newComps, r)
	}
	return nil
}

func (f *fakeTarget) UpdateCompounds(_ context.Context, updates []target.CompoundUpdate) error {
	f.record("UpdateCompounds")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updComps = append(f.updComps, updates...)
	return nil
}

func (f *fakeTarget) OnAuthError(_ context.Context, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authErrs = append(f.authErrs, err)
}

func (f *fakeTarget) OnSyncError(_ context.Context, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncErrs = append(f.syncErrs, err)
}

// fakeDownloader writes the URL into the destination file.
type fakeDownloader struct {
	mu     sync.Mutex
	failOn string
	paths  []string
}

func (d *fakeDownloader) Download(_ context.Context, sourceURL, destPath string) (string, error) {
	if d.failOn != "" && strings.Contains(sourceURL, d.failOn) {
		return "", fmt.Errorf("download failed: %s", sourceURL)
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
		return "", err
	}
	if err := os.WriteFile(destPath, []byte(sourceURL), 0o600); err != nil {
		return "", err
	}
	d.mu.Lock()
	d.paths = append(d.paths, destPath)
	d.mu.Unlock()
	return destPath, nil
}

// testMetadata returns a bundle covering the keys used by testAsset.
func testMetadata() *models.MetadataBundle {
	b := &models.MetadataBundle{}
	el := func(keys ...string) []models.MetadataElement {
		out := make([]models.MetadataElement, len(keys))
		for i, k := range keys {
			out[i] = models.MetadataElement{SourceKey: k, Names: models.LocalizedText{"en": k}}
		}
		return out
	}
	b.Set(models.CategoryContentProvider, el("prov"))
	b.Set(models.CategoryContentType, el("photo"))
	b.Set(models.CategoryBinaryType, el("hires"))
	b.Set(models.CategoryLicenseType, el("rf"))
	return b
}

func testAsset(tx string, binaries int) models.Asset {
	a := models.Asset{
		TransactionID:  tx,
		Lifecycle:      models.LifecycleCompleted,
		ProviderKey:    "prov",
		TypeKey:        "photo",
		LicenseTypeKey: "rf",
		Name:           models.LocalizedText{"en": tx},
	}
	for i := 0; i < binaries; i++ {
		id := fmt.Sprintf("%s-b%d", tx, i+1)
		a.Binaries = append(a.Binaries, models.Binary{
			ID:                  id,
			BinaryTypeKey:       "hires",
			Version:             1,
			RecommendedFileName: id + ".jpg",
			DownloadURL:         "https://cdn.example.com/" + id,
		})
	}
	return a
}

func authError() error {
	return syncerr.Auth("fetch asset page", syncerr.ErrUnauthorized)
}
