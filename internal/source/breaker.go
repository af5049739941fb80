// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/metrics"
	"github.com/tomtom215/assetsync/internal/models"
)

// BreakerName labels the source API circuit breaker in logs and metrics.
const BreakerName = "source-api"

// Ensure BreakerAPI implements API
var _ API = (*BreakerAPI)(nil)

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	// MaxRequests is the number of probe requests allowed while half-open.
	MaxRequests uint32
	// Interval is the closed-state window after which counts reset.
	Interval time.Duration
	// Timeout is how long the circuit stays open before probing.
	Timeout time.Duration
	// MinRequests is the sample size required before the circuit may trip.
	MinRequests uint32
	// FailureRatio trips the circuit once reached.
	FailureRatio float64
}

// DefaultBreakerSettings opens after a 60% failure rate over at least 10
// requests and probes again after two minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerAPI wraps an API with a circuit breaker so a failing platform is
// not hammered by every retry of every run. Client errors (4xx other than
// 408/429), including 401/403, do not count as failures.
type BreakerAPI struct {
	api  API
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
}

// NewBreakerAPI wraps api with a circuit breaker.
func NewBreakerAPI(api API, s BreakerSettings) *BreakerAPI {
	name := BreakerName

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err) || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerAPI{api: api, cb: cb, name: name}
}

// State returns the current breaker state.
func (b *BreakerAPI) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerAPI) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
			counts := b.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// castResult type-asserts a breaker result.
func castResult[T any](result interface{}, err error) (T, error) {
	var zero T
	if err != nil {
		return zero, err
	}
	typed, ok := result.(T)
	if !ok {
		return zero, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// FetchMetadata retrieves metadata with circuit breaker protection.
func (b *BreakerAPI) FetchMetadata(ctx context.Context, token string) (*RawMetadata, error) {
	return castResult[*RawMetadata](b.execute(func() (interface{}, error) {
		return b.api.FetchMetadata(ctx, token)
	}))
}

// FetchAssetPage retrieves an asset page with circuit breaker protection.
func (b *BreakerAPI) FetchAssetPage(ctx context.Context, token string, req PageRequest) (*models.AssetPage, error) {
	return castResult[*models.AssetPage](b.execute(func() (interface{}, error) {
		return b.api.FetchAssetPage(ctx, token, req)
	}))
}

// FetchBinariesForTransaction retrieves binaries with circuit breaker protection.
func (b *BreakerAPI) FetchBinariesForTransaction(ctx context.Context, token, cartID, transactionID string) ([]models.Binary, error) {
	return castResult[[]models.Binary](b.execute(func() (interface{}, error) {
		return b.api.FetchBinariesForTransaction(ctx, token, cartID, transactionID)
	}))
}
