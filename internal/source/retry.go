// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package source

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryPolicy is the attempt budget and delay schedule for source calls.
// Delays are InitialInterval, InitialInterval*Multiplier, ... with no jitter.
// The policy has no overall deadline, only the attempt count.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	Multiplier      float64
	// MaxInterval caps a single delay. Zero means uncapped.
	MaxInterval time.Duration
}

// DefaultRetryPolicy allows 5 attempts with delays of 2s, 4s, 8s and 16s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     5,
		InitialInterval: 2 * time.Second,
		Multiplier:      2,
	}
}

// Delays returns the wait before each retry, in order.
func (p RetryPolicy) Delays() []time.Duration {
	b := p.exponential()
	n := p.attempts() - 1
	out := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, b.NextBackOff())
	}
	return out
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func (p RetryPolicy) exponential() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.RandomizationFactor = 0
	b.Multiplier = p.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.MaxInterval = p.MaxInterval
	if b.MaxInterval <= 0 {
		b.MaxInterval = time.Duration(1<<63 - 1)
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// newBackOff returns a context-aware schedule allowing MaxAttempts-1 retries.
func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(backoff.WithMaxRetries(p.exponential(), uint64(p.attempts()-1)), ctx)
}
