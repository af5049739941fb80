// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/oauth2"

	"github.com/tomtom215/assetsync/internal/api"
	"github.com/tomtom215/assetsync/internal/config"
	"github.com/tomtom215/assetsync/internal/download"
	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/source"
	"github.com/tomtom215/assetsync/internal/store"
	"github.com/tomtom215/assetsync/internal/sync"
	"github.com/tomtom215/assetsync/internal/target/catalog"
)

// components is everything main starts and stops.
type components struct {
	db        *store.DB
	breaker   *source.BreakerAPI
	manager   *sync.Manager
	scheduler *sync.Scheduler
	server    *http.Server
}

// tokenProvider picks the OAuth refresh flow when a refresh token is
// configured and a fixed bearer token otherwise.
func tokenProvider(cfg *config.SourceConfig) source.TokenProvider {
	if cfg.RefreshToken == "" {
		return source.NewStaticTokenProvider(cfg.AccessToken)
	}
	p := source.NewOAuthTokenProvider(cfg)
	p.SetRefreshCallback(func(tok *oauth2.Token) {
		logging.Info().
			Str("access_token", logging.SanitizeToken(tok.AccessToken)).
			Time("expiry", tok.Expiry).
			Msg("Source access token refreshed")
	})
	return p
}

// retryPolicy maps sync settings onto the source client's backoff.
func retryPolicy(cfg *config.SyncConfig) source.RetryPolicy {
	p := source.DefaultRetryPolicy()
	if cfg.RetryAttempts > 0 {
		p.MaxAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		p.InitialInterval = cfg.RetryDelay
	}
	return p
}

// build wires configuration into running components. The caller owns
// closing c.db.
func build(cfg *config.Config) (*components, error) {
	db, err := store.Open(&cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	tokens := tokenProvider(&cfg.Source)
	breaker := source.NewBreakerAPI(source.NewHTTPClient(&cfg.Source), source.DefaultBreakerSettings())
	client := source.NewResilientClient(breaker, tokens, source.Options{
		Policy:          retryPolicy(&cfg.Sync),
		PageSize:        cfg.Source.PageSize,
		ImportLanguages: cfg.Sync.ImportLanguages,
		DefaultLocale:   cfg.Sync.DefaultLocale,
	})

	cat, err := catalog.New(db, cfg.Sync.TenantID, &cfg.Catalog)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	orch := sync.NewOrchestrator(sync.Settings{
		TenantID:        cfg.Sync.TenantID,
		ImportLanguages: cfg.Sync.ImportLanguages,
		TempDir:         cfg.Sync.TempDir,
	}, sync.Deps{
		Source:     client,
		Target:     cat,
		Downloader: download.New(tokens, cfg.Source.Domain, 0),
		Tokens:     store.NewBadgerTokenStore(db),
	})

	manager := sync.NewManager(orch, sync.ManagerOptions{
		TenantID:   cfg.Sync.TenantID,
		RunOnStart: cfg.Sync.RunOnStart,
	})
	manager.SetOnRunCompleted(logRunReport)

	c := &components{
		db:      db,
		breaker: breaker,
		manager: manager,
	}

	if cfg.Sync.Schedule != "" {
		c.scheduler, err = sync.NewScheduler(cfg.Sync.Schedule, cfg.Sync.ScheduleMetadata, manager)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	handler := api.NewHandler(manager,
		api.HealthCheck{Name: "store", Check: db.Ping},
		api.HealthCheck{Name: "source", Check: c.breakerCheck},
	)
	router := api.NewRouter(handler, api.RouterConfig{
		TriggerRateLimit:  cfg.Server.TriggerRateLimit,
		TriggerRateWindow: cfg.Server.TriggerRateWindow,
	})
	c.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	return c, nil
}

var errCircuitOpen = errors.New("circuit breaker open")

func (c *components) breakerCheck() error {
	if c.breaker.State() == gobreaker.StateOpen {
		return errCircuitOpen
	}
	return nil
}

func logRunReport(report *models.RunReport) {
	level := zerolog.InfoLevel
	if report.Outcome != models.OutcomeSucceeded {
		level = zerolog.WarnLevel
	}
	logger := logging.Logger()
	logger.WithLevel(level).
		Str("run_id", report.RunID).
		Str("trigger", report.Trigger).
		Str("outcome", report.Outcome).
		Str("error", report.Error).
		Bool("metadata_ran", report.MetadataRan).
		Int("pages", report.Pages).
		Int("records", report.Buckets.Total()).
		Int("failed_assets", len(report.FailedAssets)).
		Dur("duration", report.Duration()).
		Msg("Sync run finished")
}
