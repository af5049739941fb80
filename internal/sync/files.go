// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package sync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/tomtom215/assetsync/internal/models"
)

var errEmptyDownloadURL = errors.New("binary has no download URL")

// downloadAll fetches every binary of result into dir and returns a copy
// whose records point at the local files. Compound parts share the files of
// the matching binary records.
func (o *Orchestrator) downloadAll(ctx context.Context, dir string, result models.ConversionResult) (models.ConversionResult, error) {
	out := models.ConversionResult{Binaries: make([]models.BinaryAsset, len(result.Binaries))}
	paths := make(map[string]string, len(result.Binaries))

	for i, b := range result.Binaries {
		if b.DownloadURL == "" {
			return models.ConversionResult{}, fmt.Errorf("%w: %s", errEmptyDownloadURL, b.BinaryID)
		}
		dest := filepath.Join(dir, safeSegment(b.TransactionID()), safeSegment(b.BinaryID), localName(&b))
		path, err := o.downloader.Download(ctx, b.DownloadURL, dest)
		if err != nil {
			return models.ConversionResult{}, err
		}
		paths[b.BinaryID] = path
		out.Binaries[i] = b.WithLocalPath(path)
	}

	if result.Compound != nil {
		compound := *result.Compound
		compound.Parts = make([]models.BinaryAsset, len(result.Compound.Parts))
		for i, p := range result.Compound.Parts {
			compound.Parts[i] = p.WithLocalPath(paths[p.BinaryID])
		}
		out.Compound = &compound
	}
	return out, nil
}

// localName returns a file name for b that cannot escape its directory.
func localName(b *models.BinaryAsset) string {
	name := filepath.Base(b.FileName)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = safeSegment(b.BinaryID)
	}
	return name
}

func safeSegment(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, s)
	if s == "" || s == "." || s == ".." {
		return "_"
	}
	return s
}

// removeTree deletes root and everything below it, deepest entries first.
func removeTree(root string) error {
	var paths []string
	err := filepath.WalkDir(root, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk %s: %w", root, err)
	}

	// Sort by depth, deepest first; WalkDir order breaks ties.
	depth := func(p string) int { return strings.Count(p, string(filepath.Separator)) }
	slices.SortStableFunc(paths, func(a, b string) int {
		return depth(b) - depth(a)
	})

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
