// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "assetsync"

var (
	// Sync run metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Total number of sync runs by trigger and outcome",
		},
		[]string{"trigger", "outcome"}, // outcome: succeeded, cancelled, auth_error, sync_error, config_error
	)

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_run_duration_seconds",
			Help:      "Duration of sync runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800, 3600},
		},
		[]string{"trigger"},
	)

	SyncLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_last_success_timestamp",
			Help:      "Unix timestamp of the last successful sync run",
		},
	)

	SyncPagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_pages_total",
			Help:      "Total number of asset pages processed",
		},
	)

	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_records_total",
			Help:      "Total number of converted records handed to the target, by bucket",
		},
		[]string{"bucket"}, // created, updated, cancelled, completed_compound, cancelled_compound
	)

	SyncAssetFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_asset_failures_total",
			Help:      "Total number of assets skipped during a run",
		},
		[]string{"reason"}, // conversion, download
	)

	MetadataElementsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metadata_elements_imported_total",
			Help:      "Total number of metadata elements imported into the target, by category",
		},
		[]string{"category"},
	)

	// Source API metrics
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Total number of source API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_request_duration_seconds",
			Help:      "Duration of source API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	SourceRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_retries_total",
			Help:      "Total number of retried source calls",
		},
		[]string{"operation"},
	)

	SourceTokenRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_token_refreshes_total",
			Help:      "Total number of access token refreshes after an authentication failure",
		},
		[]string{"result"}, // success, failure
	)

	SourceRateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rate_limited_total",
			Help:      "Total number of HTTP 429 responses from the source API",
		},
	)

	// Download metrics
	DownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloads_total",
			Help:      "Total number of binary downloads by result",
		},
		[]string{"result"}, // downloaded, reused, unauthorized, failed
	)

	DownloadBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Total number of bytes written by binary downloads",
		},
	)

	// Job queue metrics
	QueueAdmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queue_admissions_total",
			Help:      "Total number of sync requests offered to the job queue",
		},
		[]string{"trigger", "result"}, // result: admitted, dropped
	)

	QueueWaiting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_waiting_jobs",
			Help:      "Current number of waiting sync jobs",
		},
	)

	QueueRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queue_running",
			Help:      "1 while a sync job is executing",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_consecutive_failures",
			Help:      "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordSyncRun records the outcome and duration of a finished sync run.
func RecordSyncRun(trigger, outcome string, duration time.Duration) {
	SyncRunsTotal.WithLabelValues(trigger, outcome).Inc()
	SyncRunDuration.WithLabelValues(trigger).Observe(duration.Seconds())
	if outcome == "succeeded" {
		SyncLastSuccess.Set(float64(time.Now().Unix()))
	}
}

// RecordRecords adds n records to the given bucket counter.
func RecordRecords(bucket string, n int) {
	if n <= 0 {
		return
	}
	SyncRecordsTotal.WithLabelValues(bucket).Add(float64(n))
}

// RecordSourceRequest records a single source API HTTP exchange.
func RecordSourceRequest(endpoint, status string, duration time.Duration) {
	SourceRequestsTotal.WithLabelValues(endpoint, status).Inc()
	SourceRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordTokenRefresh records an access token refresh attempt.
func RecordTokenRefresh(success bool) {
	if success {
		SourceTokenRefreshes.WithLabelValues("success").Inc()
		return
	}
	SourceTokenRefreshes.WithLabelValues("failure").Inc()
}

// RecordDownload records a download result and, for fresh downloads, its size.
func RecordDownload(result string, bytes int64) {
	DownloadsTotal.WithLabelValues(result).Inc()
	if bytes > 0 {
		DownloadBytes.Add(float64(bytes))
	}
}

// RecordQueueAdmission records whether a sync request was admitted or dropped.
func RecordQueueAdmission(trigger string, admitted bool) {
	result := "dropped"
	if admitted {
		result = "admitted"
	}
	QueueAdmissions.WithLabelValues(trigger, result).Inc()
}

// RecordAPIRequest records API request metrics.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
