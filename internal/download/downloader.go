// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
downloader.go - Binary Payload Downloader

Downloads binary payloads referenced by URL into the per-run temp directory.

Behavior:
  - Memoized by destination path: an existing non-empty file is returned
    without a request, and concurrent calls for one path share a single
    request (golang.org/x/sync/singleflight).
  - Credentials: "Authorization: Bearer <token>" is sent only when the URL
    host is the source platform domain or one of its subdomains. Other
    hosts (CDNs, signed URLs) receive a placeholder header instead.
  - Failures are terminal for that binary: 401/403 is
    ErrDownloadUnauthorized, any other non-2xx or stream error is
    ErrDownloadFailed. No retry happens here.
  - Data is written to a temp file in the destination directory and renamed
    into place, so a partial download never looks complete.
*/

//nolint:staticcheck // File documentation, not package doc
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/metrics"
)

// PlaceholderHeader is sent instead of credentials to foreign hosts.
const (
	PlaceholderHeader = "X-Assetsync-Auth"
	PlaceholderValue  = "none"
)

var (
	// ErrDownloadUnauthorized is returned for 401/403 responses.
	ErrDownloadUnauthorized = errors.New("download unauthorized")
	// ErrDownloadFailed is returned for any other download failure.
	ErrDownloadFailed = errors.New("download failed")
)

// TokenSource supplies the bearer token for platform-hosted downloads.
// source.TokenProvider satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Downloader fetches binaries to local files.
type Downloader struct {
	httpClient *http.Client
	tokens     TokenSource
	domain     string
	group      singleflight.Group
}

// New creates a downloader. domain is the source platform's domain; it and
// its subdomains receive credentials.
func New(tokens TokenSource, domain string, timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Downloader{
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
		domain:     strings.ToLower(strings.TrimSuffix(domain, ".")),
	}
}

// Download fetches sourceURL into destPath and returns destPath.
func (d *Downloader) Download(ctx context.Context, sourceURL, destPath string) (string, error) {
	if nonEmptyFile(destPath) {
		metrics.RecordDownload("reused", 0)
		logging.Debug().Str("path", destPath).Msg("Reusing downloaded file")
		return destPath, nil
	}

	_, err, _ := d.group.Do(destPath, func() (interface{}, error) {
		// A caller that lost the race may find the file already written.
		if nonEmptyFile(destPath) {
			return nil, nil
		}
		return nil, d.fetch(ctx, sourceURL, destPath)
	})
	if err != nil {
		return "", err
	}
	return destPath, nil
}

func (d *Downloader) fetch(ctx context.Context, sourceURL, destPath string) error {
	safeURL := logging.SanitizeURL(sourceURL)

	u, err := url.Parse(sourceURL)
	if err != nil || u.Host == "" {
		metrics.RecordDownload("failed", 0)
		return fmt.Errorf("%w: invalid URL %s", ErrDownloadFailed, safeURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, http.NoBody)
	if err != nil {
		metrics.RecordDownload("failed", 0)
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, safeURL, err)
	}
	if err := d.authorize(ctx, req, u); err != nil {
		metrics.RecordDownload("failed", 0)
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, safeURL, err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		metrics.RecordDownload("failed", 0)
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, safeURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		metrics.RecordDownload("unauthorized", 0)
		return fmt.Errorf("%w: %s returned status %d", ErrDownloadUnauthorized, safeURL, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		metrics.RecordDownload("failed", 0)
		return fmt.Errorf("%w: %s returned status %d", ErrDownloadFailed, safeURL, resp.StatusCode)
	}

	n, err := writeAtomic(destPath, resp.Body)
	if err != nil {
		metrics.RecordDownload("failed", 0)
		return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, safeURL, err)
	}

	metrics.RecordDownload("downloaded", n)
	logging.Debug().Str("url", safeURL).Str("path", destPath).Int64("bytes", n).Msg("Binary downloaded")
	return nil
}

func (d *Downloader) authorize(ctx context.Context, req *http.Request, u *url.URL) error {
	if !d.trustedHost(u.Hostname()) {
		req.Header.Set(PlaceholderHeader, PlaceholderValue)
		return nil
	}
	token, err := d.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// trustedHost reports whether host is the source domain or a subdomain.
func (d *Downloader) trustedHost(host string) bool {
	if d.domain == "" {
		return false
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == d.domain || strings.HasSuffix(host, "."+d.domain)
}

// writeAtomic streams r into a temp file next to dest and renames it.
func writeAtomic(dest string, r io.Reader) (int64, error) {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*.part")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	n, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return n, fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		return n, fmt.Errorf("rename: %w", err)
	}
	tmpName = ""
	return n, nil
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
