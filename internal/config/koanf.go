// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/assetsync/config.yaml",
	"/etc/assetsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			PageSize:          10,
			RequestsPerSecond: 5,
			Burst:             1,
			Timeout:           60 * time.Second,
		},
		Sync: SyncConfig{
			ImportLanguages:  []string{"en"},
			DefaultLocale:    "en",
			RetryAttempts:    5,
			RetryDelay:       2 * time.Second,
			Schedule:         "@every 1h",
			ScheduleMetadata: true,
			RunOnStart:       false,
		},
		Store: StoreConfig{
			Path:       "/data/assetsync/badger",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Catalog: CatalogConfig{
			BlobDir:        "/data/assetsync/blobs",
			MultiLanguage:  true,
			CompoundAssets: true,
			BinaryUpdates:  true,
		},
		Server: ServerConfig{
			Port:              8686,
			Host:              "0.0.0.0",
			Timeout:           30 * time.Second,
			TriggerRateLimit:  10,
			TriggerRateWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration from the given YAML file plus defaults and
// environment overrides. An empty path skips the file layer.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Environment variables (highest priority)
	// SOURCE_BASE_URL -> source.base_url, IMPORT_LANGUAGES -> sync.import_languages
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ConfigFilePath returns the config file LoadWithKoanf reads, or "" when
// none exists.
func ConfigFilePath() string {
	return findConfigFile()
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"sync.import_languages",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from defaults or YAML)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Source platform
	"source_base_url":            "source.base_url",
	"source_domain":              "source.domain",
	"source_access_token":        "source.access_token",
	"source_refresh_token":       "source.refresh_token",
	"source_client_id":           "source.client_id",
	"source_client_secret":       "source.client_secret",
	"source_token_url":           "source.token_url",
	"source_page_size":           "source.page_size",
	"source_requests_per_second": "source.requests_per_second",
	"source_burst":               "source.burst",
	"source_timeout":             "source.timeout",

	// Sync
	"tenant_id":              "sync.tenant_id",
	"import_languages":       "sync.import_languages",
	"default_locale":         "sync.default_locale",
	"sync_retry_attempts":    "sync.retry_attempts",
	"sync_retry_delay":       "sync.retry_delay",
	"sync_schedule":          "sync.schedule",
	"sync_schedule_metadata": "sync.schedule_metadata",
	"sync_run_on_start":      "sync.run_on_start",
	"sync_temp_dir":          "sync.temp_dir",

	// Store
	"store_path":        "store.path",
	"store_in_memory":   "store.in_memory",
	"store_gc_interval": "store.gc_interval",

	// Catalog target
	"catalog_blob_dir":        "catalog.blob_dir",
	"catalog_multi_language":  "catalog.multi_language",
	"catalog_compound_assets": "catalog.compound_assets",
	"catalog_binary_updates":  "catalog.binary_updates",

	// Server
	"http_host":           "server.host",
	"http_port":           "server.port",
	"http_timeout":        "server.timeout",
	"trigger_rate_limit":  "server.trigger_rate_limit",
	"trigger_rate_window": "server.trigger_rate_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - SOURCE_BASE_URL -> source.base_url
//   - TENANT_ID -> sync.tenant_id
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped keys are skipped so unrelated environment variables do not pollute config
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when swapping configuration.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)
	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
