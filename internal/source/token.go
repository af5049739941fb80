// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package source

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/tomtom215/assetsync/internal/config"
	"github.com/tomtom215/assetsync/internal/logging"
)

// ErrRefreshUnsupported is returned by providers that cannot renew a token.
var ErrRefreshUnsupported = errors.New("token refresh not supported")

// StaticTokenProvider serves a fixed access token and cannot refresh it.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a fixed token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// Token returns the fixed token.
func (p *StaticTokenProvider) Token(_ context.Context) (string, error) {
	return p.token, nil
}

// RefreshToken always fails.
func (p *StaticTokenProvider) RefreshToken(_ context.Context, _ string) (string, error) {
	return "", ErrRefreshUnsupported
}

// OAuthTokenProvider renews access tokens with an OAuth2 refresh token.
type OAuthTokenProvider struct {
	mu        sync.Mutex
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token)
}

// NewOAuthTokenProvider creates a provider from source configuration. The
// initial access token may be empty, in which case the first Token call
// performs a refresh.
func NewOAuthTokenProvider(cfg *config.SourceConfig) *OAuthTokenProvider {
	return &OAuthTokenProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: cfg.TokenURL,
			},
		},
		token: &oauth2.Token{
			AccessToken:  cfg.AccessToken,
			RefreshToken: cfg.RefreshToken,
			TokenType:    "Bearer",
		},
	}
}

// SetRefreshCallback registers fn to be called with every renewed token.
func (p *OAuthTokenProvider) SetRefreshCallback(fn func(*oauth2.Token)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRefresh = fn
}

// Token returns the current access token, refreshing first if none is held.
func (p *OAuthTokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token.AccessToken != "" {
		return p.token.AccessToken, nil
	}
	if err := p.refreshLocked(ctx); err != nil {
		return "", err
	}
	return p.token.AccessToken, nil
}

// RefreshToken exchanges the refresh token for a new access token. If the
// held token already differs from old, another caller refreshed it and the
// held token is returned without a new exchange.
func (p *OAuthTokenProvider) RefreshToken(ctx context.Context, old string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token.AccessToken != "" && p.token.AccessToken != old {
		return p.token.AccessToken, nil
	}
	if err := p.refreshLocked(ctx); err != nil {
		return "", err
	}
	return p.token.AccessToken, nil
}

func (p *OAuthTokenProvider) refreshLocked(ctx context.Context) error {
	if p.token.RefreshToken == "" {
		return ErrRefreshUnsupported
	}

	// An expired token forces the token source to hit the token endpoint.
	expired := &oauth2.Token{RefreshToken: p.token.RefreshToken}
	tok, err := p.config.TokenSource(ctx, expired).Token()
	if err != nil {
		return fmt.Errorf("refresh access token: %w", err)
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = p.token.RefreshToken
	}
	p.token = tok

	logging.Info().
		Str("token", logging.SanitizeToken(tok.AccessToken)).
		Time("expiry", tok.Expiry).
		Msg("Source access token refreshed")

	if p.onRefresh != nil {
		p.onRefresh(tok)
	}
	return nil
}
