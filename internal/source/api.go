// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tomtom215/assetsync/internal/models"
)

// API is the raw, single-attempt view of the purchasing platform.
// HTTPClient and BreakerAPI implement it; ResilientClient consumes it.
type API interface {
	FetchMetadata(ctx context.Context, token string) (*RawMetadata, error)
	FetchAssetPage(ctx context.Context, token string, req PageRequest) (*models.AssetPage, error)
	FetchBinariesForTransaction(ctx context.Context, token, cartID, transactionID string) ([]models.Binary, error)
}

// TokenProvider supplies bearer tokens for the source API.
type TokenProvider interface {
	// Token returns the current access token.
	Token(ctx context.Context) (string, error)
	// RefreshToken exchanges a rejected token for a new one.
	RefreshToken(ctx context.Context, old string) (string, error)
}

// PageRequest selects one page of the asset listing.
type PageRequest struct {
	ContinuationToken string
	PageSize          int
}

// RawMetadata is the unfiltered metadata listing, keyed by category name.
// Category names the engine does not know are ignored.
type RawMetadata struct {
	Categories map[string][]models.RawMetadataElement `json:"categories"`
}

// StatusError is returned for any non-200 response from the source API.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// IsAuthFailure reports whether err carries a 401 or 403 response.
func IsAuthFailure(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == http.StatusUnauthorized || se.StatusCode == http.StatusForbidden
}

// isClientError reports whether err carries a 4xx response other than
// 408 and 429. The circuit breaker does not count these as failures.
func isClientError(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode >= 400 && se.StatusCode < 500 &&
		se.StatusCode != http.StatusRequestTimeout &&
		se.StatusCode != http.StatusTooManyRequests
}
