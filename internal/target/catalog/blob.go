// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tomtom215/assetsync/internal/models"
)

// storeBlob copies the downloaded file of b into the blob directory and
// returns its path. The file is named after the target ID so renames on the
// source never collide.
func (c *Catalog) storeBlob(targetID string, b *models.BinaryAsset) (string, error) {
	dest := filepath.Join(c.blobDir, targetID+filepath.Ext(b.FileName))

	src, err := os.Open(b.LocalPath)
	if err != nil {
		return "", fmt.Errorf("open downloaded binary %s: %w", b.BinaryID, err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(c.blobDir, ".blob-*")
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("copy blob %s: %w", b.BinaryID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close blob: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("commit blob: %w", err)
	}
	return dest, nil
}
