// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/assetsync/internal/config"
	"github.com/tomtom215/assetsync/internal/source"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Source: config.SourceConfig{
			BaseURL:     "https://api.example.com/v1",
			Domain:      "example.com",
			AccessToken: "static-token",
			PageSize:    25,
			Burst:       1,
		},
		Sync: config.SyncConfig{
			TenantID:        "tenant-1",
			ImportLanguages: []string{"en", "de"},
			DefaultLocale:   "en",
			RetryAttempts:   3,
			RetryDelay:      time.Second,
			Schedule:        "@every 1h",
			TempDir:         t.TempDir(),
		},
		Store:   config.StoreConfig{InMemory: true},
		Catalog: config.CatalogConfig{BlobDir: filepath.Join(t.TempDir(), "blobs"), MultiLanguage: true},
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 8686, Timeout: 30 * time.Second},
	}
}

func TestTokenProvider(t *testing.T) {
	static := tokenProvider(&config.SourceConfig{AccessToken: "abc"})
	if _, ok := static.(*source.StaticTokenProvider); !ok {
		t.Errorf("tokenProvider() = %T, want *StaticTokenProvider", static)
	}

	oauth := tokenProvider(&config.SourceConfig{
		AccessToken:  "abc",
		RefreshToken: "refresh",
		ClientID:     "client",
		TokenURL:     "https://auth.example.com/token",
	})
	if _, ok := oauth.(*source.OAuthTokenProvider); !ok {
		t.Errorf("tokenProvider() = %T, want *OAuthTokenProvider", oauth)
	}
}

func TestRetryPolicy(t *testing.T) {
	p := retryPolicy(&config.SyncConfig{RetryAttempts: 3, RetryDelay: time.Second})
	if p.MaxAttempts != 3 || p.InitialInterval != time.Second {
		t.Errorf("retryPolicy() = %+v", p)
	}
	if got := p.Delays(); len(got) != 2 || got[0] != time.Second || got[1] != 2*time.Second {
		t.Errorf("Delays() = %v, want [1s 2s]", got)
	}

	if got := retryPolicy(&config.SyncConfig{}); got != source.DefaultRetryPolicy() {
		t.Errorf("zero settings = %+v, want defaults", got)
	}
}

func TestBuild(t *testing.T) {
	c, err := build(testConfig(t))
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer func() { _ = c.db.Close() }()

	if c.scheduler == nil {
		t.Error("scheduler not created for non-empty schedule")
	}
	if c.server.Addr != "127.0.0.1:8686" {
		t.Errorf("server.Addr = %q", c.server.Addr)
	}
	if err := c.breakerCheck(); err != nil {
		t.Errorf("breakerCheck() = %v, want closed circuit", err)
	}

	rec := httptest.NewRecorder()
	c.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /health = %d", rec.Code)
	}
}

func TestBuild_NoSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sync.Schedule = ""

	c, err := build(cfg)
	if err != nil {
		t.Fatalf("build() error = %v", err)
	}
	defer func() { _ = c.db.Close() }()

	if c.scheduler != nil {
		t.Error("scheduler created for empty schedule")
	}
}

func TestBuild_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sync.Schedule = "every tuesday"

	if _, err := build(cfg); err == nil {
		t.Fatal("build() accepted an invalid schedule")
	}
}
