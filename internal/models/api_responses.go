// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "QUEUE_FULL",
//	    "message": "A sync job is already waiting"
//	  },
//	  "metadata": {"timestamp": "2026-03-02T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string       `json:"status"`
	Data     interface{}  `json:"data"`
	Metadata ResponseMeta `json:"metadata"`
	Error    *APIError    `json:"error,omitempty"`
}

// ResponseMeta contains response metadata for observability.
type ResponseMeta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - QUEUE_FULL: The trigger was coalesced with an already waiting job
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TriggerRequest is the body of a scheduled-trigger request.
type TriggerRequest struct {
	SyncMetadata bool `json:"sync_metadata"`
}

// TriggerResponse reports the job created by an accepted trigger.
type TriggerResponse struct {
	JobID    string `json:"job_id"`
	Trigger  string `json:"trigger"`
	Waiting  int    `json:"waiting"`
	Metadata bool   `json:"sync_metadata"`
}

// SyncStatus is the externally visible state of a tenant's sync pipeline.
type SyncStatus struct {
	TenantID   string     `json:"tenant_id"`
	Running    bool       `json:"running"`
	Waiting    int        `json:"waiting"`
	LastReport *RunReport `json:"last_report,omitempty"`
}

// HealthStatus is returned by the health endpoint. Status is "healthy" when
// every check passed and "degraded" otherwise.
type HealthStatus struct {
	Status     string            `json:"status"`
	Version    string            `json:"version"`
	Uptime     float64           `json:"uptime_seconds"`
	Checks     map[string]string `json:"checks,omitempty"`
	LastSyncAt *time.Time        `json:"last_sync_at,omitempty"`
}

// BucketCounts counts dispatched records per partition bucket.
type BucketCounts struct {
	NewBinaries      int `json:"new_binaries"`
	UpdatedBinaries  int `json:"updated_binaries"`
	NewCompounds     int `json:"new_compounds"`
	UpdatedCompounds int `json:"updated_compounds"`
}

// Add accumulates other into c.
func (c *BucketCounts) Add(other BucketCounts) {
	c.NewBinaries += other.NewBinaries
	c.UpdatedBinaries += other.UpdatedBinaries
	c.NewCompounds += other.NewCompounds
	c.UpdatedCompounds += other.UpdatedCompounds
}

// Total returns the number of records over all buckets.
func (c BucketCounts) Total() int {
	return c.NewBinaries + c.UpdatedBinaries + c.NewCompounds + c.UpdatedCompounds
}

// Run outcomes.
const (
	OutcomeSucceeded   = "succeeded"
	OutcomeCancelled   = "cancelled"
	OutcomeAuthError   = "auth_error"
	OutcomeSyncError   = "sync_error"
	OutcomeConfigError = "config_error"
)

// AssetFailure records an asset that was skipped within a page.
type AssetFailure struct {
	TransactionID string `json:"transaction_id"`
	Reason        string `json:"reason"`
}

// RunReport summarizes one orchestrator run.
type RunReport struct {
	RunID        string         `json:"run_id"`
	Trigger      string         `json:"trigger,omitempty"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Outcome      string         `json:"outcome"`
	Error        string         `json:"error,omitempty"`
	MetadataRan  bool           `json:"metadata_ran"`
	Pages        int            `json:"pages"`
	Assets       int            `json:"assets"`
	Buckets      BucketCounts   `json:"buckets"`
	FailedAssets []AssetFailure `json:"failed_assets,omitempty"`
}

// Duration returns the run's wall-clock duration.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
