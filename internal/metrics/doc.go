// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package metrics defines the Prometheus instrumentation for Assetsync.

All collectors are registered on the default registry via promauto and are
exposed by the API server at GET /metrics. Every metric name carries the
assetsync_ prefix.

# Metric Groups

  - Sync runs: runs by trigger and outcome, run duration, pages, records per
    bucket, skipped assets, imported metadata elements
  - Source API: requests, latency, retries, token refreshes, 429 responses
  - Downloads: results and bytes written
  - Job queue: admissions, waiting depth, running flag
  - API: request count and latency
  - Circuit breaker: state, requests, consecutive failures, transitions

# Usage

	metrics.RecordSyncRun("scheduled", "succeeded", time.Since(start))
	metrics.RecordQueueAdmission("event", false)
	metrics.CircuitBreakerState.WithLabelValues("source-api").Set(0)

Tests read values with prometheus/testutil.
*/
package metrics
