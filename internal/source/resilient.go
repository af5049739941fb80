// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
resilient.go - Retrying, Re-authenticating Source Client

ResilientClient is the only way the sync engine talks to the purchasing
platform. Every call runs under the injected RetryPolicy:

  - Transient failures (network, 5xx, 429 after client-side retries, open
    circuit) are retried with exponential backoff until the attempt budget
    is spent, then surface as syncerr.ErrRetriesExhausted (sync-job kind).
  - A 401/403 triggers TokenProvider.RefreshToken and the next attempt uses
    the new token. A second consecutive 401/403, or a failed refresh, is a
    terminal authentication error.
  - Target capability violations in a fetched page are terminal sync-job
    errors and are never retried.

Metadata is locale-filtered before it is returned.
*/

//nolint:staticcheck // File documentation, not package doc
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/metrics"
	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/syncerr"
)

// DefaultPageSize is the number of assets requested per page.
const DefaultPageSize = 10

// ResilientClient wraps an API with retry, token refresh, capability
// checks and locale filtering.
type ResilientClient struct {
	api      API
	tokens   TokenProvider
	policy   RetryPolicy
	filter   *LocaleFilter
	pageSize int
}

// Options configures a ResilientClient.
type Options struct {
	Policy          RetryPolicy
	PageSize        int
	ImportLanguages []string
	DefaultLocale   string
}

// NewResilientClient creates a client. A zero PageSize uses DefaultPageSize.
func NewResilientClient(api API, tokens TokenProvider, opts Options) *ResilientClient {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &ResilientClient{
		api:      api,
		tokens:   tokens,
		policy:   opts.Policy,
		filter:   NewLocaleFilter(opts.ImportLanguages, opts.DefaultLocale),
		pageSize: pageSize,
	}
}

// CheckCredential verifies that the token provider yields a token.
func (c *ResilientClient) CheckCredential(ctx context.Context) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return syncerr.Auth("check credential", fmt.Errorf("%w: %w", syncerr.ErrUnauthorized, err))
	}
	if token == "" {
		return syncerr.Config("check credential", syncerr.ErrMissingCredential)
	}
	return nil
}

// FetchMetadata fetches and locale-filters the metadata listing.
func (c *ResilientClient) FetchMetadata(ctx context.Context) (*models.MetadataBundle, error) {
	var raw *RawMetadata
	err := c.call(ctx, "fetch metadata", func(token string) error {
		var err error
		raw, err = c.api.FetchMetadata(ctx, token)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c.filter.Apply(raw), nil
}

// FetchAssetPage fetches one page of assets after the continuation token,
// completes missing binaries and enforces the target's capabilities.
func (c *ResilientClient) FetchAssetPage(ctx context.Context, continuation string, caps models.Capabilities) (*models.AssetPage, error) {
	req := PageRequest{ContinuationToken: continuation, PageSize: c.pageSize}

	var page *models.AssetPage
	err := c.call(ctx, "fetch asset page", func(token string) error {
		var err error
		page, err = c.api.FetchAssetPage(ctx, token, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &models.AssetPage{}
	}

	for i := range page.Assets {
		asset := &page.Assets[i]
		if len(asset.Binaries) > 0 || asset.CartTransactionID == "" || asset.IsCancelled() {
			continue
		}
		binaries, err := c.FetchBinariesForTransaction(ctx, asset.CartTransactionID, asset.TransactionID)
		if err != nil {
			return nil, err
		}
		asset.Binaries = binaries
	}

	if err := checkCapabilities(page.Assets, caps); err != nil {
		return nil, err
	}
	return page, nil
}

// FetchBinariesForTransaction fetches the binaries of one purchase.
func (c *ResilientClient) FetchBinariesForTransaction(ctx context.Context, cartID, transactionID string) ([]models.Binary, error) {
	var binaries []models.Binary
	err := c.call(ctx, "fetch binaries", func(token string) error {
		var err error
		binaries, err = c.api.FetchBinariesForTransaction(ctx, token, cartID, transactionID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return binaries, nil
}

// call runs fn under the retry policy, refreshing the token on the first
// auth failure of a streak.
func (c *ResilientClient) call(ctx context.Context, op string, fn func(token string) error) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return syncerr.Auth(op, fmt.Errorf("%w: %w", syncerr.ErrUnauthorized, err))
	}
	if token == "" {
		return syncerr.Config(op, syncerr.ErrMissingCredential)
	}

	attempts := 0
	authFailures := 0
	operation := func() error {
		attempts++
		err := fn(token)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}

		if !IsAuthFailure(err) {
			authFailures = 0
			return syncerr.Transient(op, err)
		}

		authFailures++
		if authFailures > 1 {
			return backoff.Permanent(syncerr.Auth(op, fmt.Errorf("%w: %w", syncerr.ErrUnauthorized, err)))
		}

		newToken, rerr := c.tokens.RefreshToken(ctx, token)
		if rerr != nil || newToken == "" {
			metrics.RecordTokenRefresh(false)
			if rerr == nil {
				rerr = errors.New("empty token")
			}
			return backoff.Permanent(syncerr.Auth(op, fmt.Errorf("%w: %w", syncerr.ErrTokenRefresh, rerr)))
		}
		metrics.RecordTokenRefresh(true)
		token = newToken
		return err
	}

	notify := func(err error, delay time.Duration) {
		metrics.SourceRetries.WithLabelValues(op).Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("operation", op).
			Int("attempt", attempts).
			Dur("retry_delay", delay).
			Msg("Source call failed, retrying")
	}

	err = backoff.RetryNotify(operation, c.policy.newBackOff(ctx), notify)
	if err == nil {
		return nil
	}

	var serr *syncerr.Error
	if errors.As(err, &serr) && serr.Kind != syncerr.KindTransient {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return syncerr.SyncJob(op, fmt.Errorf("%w: %w", ctxErr, err))
	}
	return syncerr.SyncJob(op, fmt.Errorf("%w after %d attempts: %w", syncerr.ErrRetriesExhausted, attempts, err))
}

// checkCapabilities rejects pages the target cannot store.
func checkCapabilities(assets []models.Asset, caps models.Capabilities) error {
	for i := range assets {
		a := &assets[i]
		if !caps.CompoundAssets && a.IsCompound() {
			return syncerr.SyncJob("fetch asset page", fmt.Errorf(
				"%w: asset %s has %d binaries but target does not support compound assets",
				syncerr.ErrCapabilityViolation, a.TransactionID, len(a.Binaries)))
		}
		if caps.BinaryUpdates {
			continue
		}
		for _, b := range a.Binaries {
			if b.Version > 1 {
				return syncerr.SyncJob("fetch asset page", fmt.Errorf(
					"%w: binary %s of asset %s has version %d but target does not support binary updates",
					syncerr.ErrCapabilityViolation, b.ID, a.TransactionID, b.Version))
			}
		}
	}
	return nil
}
