// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/assetsync/internal/validation"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	if err := c.validateSource(); err != nil {
		return err
	}

	if err := c.validateSync(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateSource checks credential combinations that struct tags cannot express.
func (c *Config) validateSource() error {
	if c.Source.AccessToken == "" && c.Source.RefreshToken == "" {
		return fmt.Errorf("SOURCE_ACCESS_TOKEN or SOURCE_REFRESH_TOKEN is required")
	}
	if c.Source.RefreshToken != "" {
		if c.Source.TokenURL == "" {
			return fmt.Errorf("SOURCE_TOKEN_URL is required when SOURCE_REFRESH_TOKEN is set")
		}
		if c.Source.ClientID == "" {
			return fmt.Errorf("SOURCE_CLIENT_ID is required when SOURCE_REFRESH_TOKEN is set")
		}
	}
	if containsPlaceholder(c.Source.AccessToken) || containsPlaceholder(c.Source.ClientSecret) {
		return fmt.Errorf("source credentials contain a placeholder value; set real credentials")
	}
	return nil
}

// validateSync checks retry timing and the cron schedule.
func (c *Config) validateSync() error {
	if c.Sync.RetryDelay <= 0 {
		return fmt.Errorf("SYNC_RETRY_DELAY must be positive")
	}
	if c.Sync.Schedule == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.Sync.Schedule); err != nil {
		return fmt.Errorf("SYNC_SCHEDULE %q is not a valid cron expression: %w", c.Sync.Schedule, err)
	}
	return nil
}

// validateStore requires a path unless the store is in-memory.
func (c *Config) validateStore() error {
	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_TOKEN",
	"PLACEHOLDER",
}

// containsPlaceholder checks if a value contains common placeholder patterns.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upperValue, pattern) {
			return true
		}
	}
	return false
}
