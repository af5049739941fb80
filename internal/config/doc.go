// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package config provides centralized configuration management for Assetsync.

# Configuration Sources

Configuration is layered with Koanf v2, later layers overriding earlier ones:

  - Built-in defaults (defaultConfig)
  - Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/assetsync/config.yaml)
  - Environment variables (explicit mapping in envTransformFunc)

# Configuration Structure

  - SourceConfig: purchasing platform API, credentials, page size, throttle
  - SyncConfig: tenant, import languages, default locale, retry policy, cron schedule
  - StoreConfig: BadgerDB location for continuation tokens and the catalog
  - CatalogConfig: bundled catalog target capabilities and blob directory
  - ServerConfig: HTTP trigger API listen address and trigger rate limit
  - LoggingConfig: zerolog level, format and caller info

# Validation

Validate runs struct-tag validation through internal/validation (import
languages must be BCP 47 tags) followed by cross-field checks: credentials,
OAuth refresh settings, cron syntax and store location.

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Configuration error")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
*/
package config
