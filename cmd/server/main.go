// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/assetsync/internal/config"
	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/supervisor"
	"github.com/tomtom215/assetsync/internal/supervisor/services"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("tenant", cfg.Sync.TenantID).
		Str("source", cfg.Source.BaseURL).
		Strs("languages", cfg.Sync.ImportLanguages).
		Str("schedule", cfg.Sync.Schedule).
		Bool("store_in_memory", cfg.Store.InMemory).
		Msg("Starting Assetsync")

	c, err := build(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize components")
	}
	defer func() {
		if err := c.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	watchLogLevel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(slog.New(logging.NewSlogHandler(logging.Logger())), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  30 * time.Second,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return
	}

	if cfg.Store.GCInterval > 0 && !cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(c.db, cfg.Store.GCInterval))
	}
	tree.AddSyncService(services.NewLifecycleService("sync-manager", c.manager))
	if c.scheduler != nil {
		tree.AddSyncService(services.NewLifecycleService("sync-scheduler", c.scheduler))
		logging.Info().Str("schedule", cfg.Sync.Schedule).Msg("Scheduled sync enabled")
	}
	tree.AddAPIService(services.NewHTTPServerService(c.server, 10*time.Second))
	logging.Info().Str("addr", c.server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Assetsync stopped")
}

// watchLogLevel reloads the log level when the config file changes. Other
// settings need a restart.
func watchLogLevel() {
	path := config.ConfigFilePath()
	if path == "" {
		return
	}
	err := config.WatchConfigFile(path, func() {
		cfg, err := config.LoadFile(path)
		if err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Ignoring invalid config reload")
			return
		}
		logging.SetLevelString(cfg.Logging.Level)
		logging.Info().Str("level", cfg.Logging.Level).Msg("Log level reloaded")
	})
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Config file watch disabled")
	}
}
