// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package source provides the client for the hosted purchasing platform.

The package is layered:

	HTTPClient        single HTTP exchange, throttled, 429-aware
	BreakerAPI        sony/gobreaker circuit breaker around any API
	ResilientClient   retry policy, token refresh, capability checks, locale filter

Only ResilientClient is used by the sync engine. Its behavior:

  - RetryPolicy (cenkalti/backoff) allows MaxAttempts attempts with
    exponential delays, 2s, 4s, 8s, 16s by default
  - a 401/403 refreshes the token through the TokenProvider once; a second
    consecutive rejection or a failed refresh is an authentication error
  - assets with several binaries are rejected when the target cannot store
    compound assets, and binary versions above 1 when it cannot update
  - metadata display names are reduced to the configured import languages

Token providers:

  - StaticTokenProvider serves a fixed bearer token
  - OAuthTokenProvider (golang.org/x/oauth2) renews tokens with a refresh token

Example:

	api := source.NewBreakerAPI(source.NewHTTPClient(&cfg.Source), source.DefaultBreakerSettings())
	client := source.NewResilientClient(api, source.NewOAuthTokenProvider(&cfg.Source), source.Options{
	    Policy:          source.DefaultRetryPolicy(),
	    PageSize:        cfg.Source.PageSize,
	    ImportLanguages: cfg.Sync.ImportLanguages,
	    DefaultLocale:   cfg.Sync.DefaultLocale,
	})
*/
package source
