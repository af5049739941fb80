// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
http_client.go - Source Platform REST Client

Single-attempt client for the purchasing platform REST API. Retry, token
refresh and capability checks live in ResilientClient; this file only
performs HTTP exchanges.

Endpoints:
  - GET /metadata: every metadata category with raw localized values
  - GET /assets?page_size=N&continuation_token=T: one page of purchases
  - GET /carts/{cart}/transactions/{tx}/binaries: binaries of one purchase

Request Handling:
  - Authentication: Authorization: Bearer <token> on every request
  - Throttling: client-side token bucket (golang.org/x/time/rate)
  - HTTP 429: bounded retry honoring Retry-After (RFC 6585)
  - Errors: non-200 responses become *StatusError with a truncated body
*/

//nolint:staticcheck // File documentation, not package doc
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/assetsync/internal/config"
	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/metrics"
	"github.com/tomtom215/assetsync/internal/models"
)

const (
	endpointMetadata = "metadata"
	endpointAssets   = "assets"
	endpointBinaries = "binaries"

	// maxErrorBodySize limits how much of an error response is read.
	maxErrorBodySize = 64 * 1024

	maxRateLimitRetries = 3
	rateLimitBaseDelay  = time.Second
)

// Ensure HTTPClient implements API
var _ API = (*HTTPClient)(nil)

// HTTPClient talks to the source platform REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	// rateLimitDelay is the base delay for 429 retries without Retry-After.
	rateLimitDelay time.Duration
}

// NewHTTPClient creates a source API client from configuration.
// A RequestsPerSecond of 0 disables client-side throttling.
func NewHTTPClient(cfg *config.SourceConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &HTTPClient{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		limiter:        rate.NewLimiter(limit, burst),
		rateLimitDelay: rateLimitBaseDelay,
	}
}

// FetchMetadata retrieves the raw metadata listing.
func (c *HTTPClient) FetchMetadata(ctx context.Context, token string) (*RawMetadata, error) {
	var result RawMetadata
	if err := c.getJSON(ctx, endpointMetadata, "/metadata", nil, token, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchAssetPage retrieves one page of purchased assets.
func (c *HTTPClient) FetchAssetPage(ctx context.Context, token string, req PageRequest) (*models.AssetPage, error) {
	query := url.Values{}
	if req.PageSize > 0 {
		query.Set("page_size", strconv.Itoa(req.PageSize))
	}
	if req.ContinuationToken != "" {
		query.Set("continuation_token", req.ContinuationToken)
	}

	var page models.AssetPage
	if err := c.getJSON(ctx, endpointAssets, "/assets", query, token, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// FetchBinariesForTransaction retrieves the binaries of one purchase.
func (c *HTTPClient) FetchBinariesForTransaction(ctx context.Context, token, cartID, transactionID string) ([]models.Binary, error) {
	path := fmt.Sprintf("/carts/%s/transactions/%s/binaries",
		url.PathEscape(cartID), url.PathEscape(transactionID))

	var result struct {
		Binaries []models.Binary `json:"binaries"`
	}
	if err := c.getJSON(ctx, endpointBinaries, path, nil, token, &result); err != nil {
		return nil, err
	}
	return result.Binaries, nil
}

// getJSON performs an authenticated GET and decodes a 200 response into result.
func (c *HTTPClient) getJSON(ctx context.Context, endpoint, path string, query url.Values, token string, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.doRequestWithRateLimit(req)
	if err != nil {
		metrics.RecordSourceRequest(endpoint, "error", time.Since(start))
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordSourceRequest(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// doRequestWithRateLimit executes req, retrying HTTP 429 responses with
// exponential backoff or the server's Retry-After value.
func (c *HTTPClient) doRequestWithRateLimit(req *http.Request) (*http.Response, error) {
	for attempt := 0; ; attempt++ {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("execute request: %w", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt == maxRateLimitRetries {
			return resp, nil
		}
		resp.Body.Close()
		metrics.SourceRateLimited.Inc()

		retryDelay := c.rateLimitDelay * (1 << attempt)
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds >= 0 {
				retryDelay = time.Duration(seconds) * time.Second
			}
		}

		logging.Warn().
			Str("path", req.URL.Path).
			Dur("retry_delay", retryDelay).
			Int("attempt", attempt+1).
			Msg("Source API rate limited (HTTP 429), retrying")

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(retryDelay):
		}
	}
}

// readBodyForError reads at most maxErrorBodySize bytes of an error body.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
