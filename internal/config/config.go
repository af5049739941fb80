// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Source: purchasing platform API endpoint, credentials and paging
//  2. Sync: tenant, import languages, retry policy and schedule
//  3. Store: BadgerDB location for the continuation token and catalog
//  4. Catalog: reference target adapter settings
//  5. Server: HTTP trigger/status API
//  6. Logging: log level and output format
//
// Example:
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//
// Thread Safety:
// Config is immutable after loading and safe for concurrent read access.
type Config struct {
	Source  SourceConfig  `koanf:"source"`
	Sync    SyncConfig    `koanf:"sync"`
	Store   StoreConfig   `koanf:"store"`
	Catalog CatalogConfig `koanf:"catalog"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// SourceConfig holds the purchasing platform API settings.
//
// Environment Variables:
//   - SOURCE_BASE_URL: REST API base URL (required)
//   - SOURCE_DOMAIN: Platform domain; downloads from this domain or its subdomains carry credentials
//   - SOURCE_ACCESS_TOKEN: Initial bearer token
//   - SOURCE_REFRESH_TOKEN: OAuth refresh token used to renew the bearer token
//   - SOURCE_CLIENT_ID / SOURCE_CLIENT_SECRET / SOURCE_TOKEN_URL: OAuth client settings
//   - SOURCE_PAGE_SIZE: Assets per page (default: 10)
//   - SOURCE_REQUESTS_PER_SECOND: Client-side throttle, 0 disables (default: 5)
type SourceConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,url"`
	Domain            string        `koanf:"domain" validate:"required,hostname_rfc1123"`
	AccessToken       string        `koanf:"access_token"`
	RefreshToken      string        `koanf:"refresh_token"`
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	TokenURL          string        `koanf:"token_url" validate:"omitempty,url"`
	PageSize          int           `koanf:"page_size" validate:"min=1,max=100"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=1"`
	Timeout           time.Duration `koanf:"timeout"`
}

// SyncConfig holds synchronization settings for one tenant.
type SyncConfig struct {
	TenantID        string   `koanf:"tenant_id" validate:"required"`
	ImportLanguages []string `koanf:"import_languages" validate:"required,min=1,dive,bcp47_language_tag"`
	DefaultLocale   string   `koanf:"default_locale" validate:"required,bcp47_language_tag"`

	// RetryAttempts and RetryDelay drive the source client's exponential backoff:
	// RetryDelay, 2*RetryDelay, 4*RetryDelay, ... for at most RetryAttempts attempts.
	RetryAttempts int           `koanf:"retry_attempts" validate:"min=1,max=20"`
	RetryDelay    time.Duration `koanf:"retry_delay"`

	// Schedule is a cron expression (5-field or descriptor such as "@every 1h").
	// Empty disables scheduled runs.
	Schedule         string `koanf:"schedule"`
	ScheduleMetadata bool   `koanf:"schedule_metadata"`
	RunOnStart       bool   `koanf:"run_on_start"`

	// TempDir is the parent directory for per-run download directories.
	// Empty uses os.TempDir().
	TempDir string `koanf:"temp_dir"`
}

// StoreConfig holds BadgerDB settings.
type StoreConfig struct {
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`

	// GCInterval is how often value log garbage collection runs. Zero
	// disables it.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// CatalogConfig holds settings for the bundled catalog target.
type CatalogConfig struct {
	BlobDir        string `koanf:"blob_dir" validate:"required"`
	MultiLanguage  bool   `koanf:"multi_language"`
	CompoundAssets bool   `koanf:"compound_assets"`
	BinaryUpdates  bool   `koanf:"binary_updates"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port              int           `koanf:"port" validate:"min=1,max=65535"`
	Host              string        `koanf:"host"`
	Timeout           time.Duration `koanf:"timeout"`
	TriggerRateLimit  int           `koanf:"trigger_rate_limit" validate:"gte=0"`
	TriggerRateWindow time.Duration `koanf:"trigger_rate_window"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}
