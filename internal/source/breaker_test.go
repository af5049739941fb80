// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package source

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/assetsync/internal/models"
)

func testBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  4,
		FailureRatio: 0.5,
	}
}

func TestBreakerAPI_PassesThrough(t *testing.T) {
	api := &fakeAPI{page: &models.AssetPage{ContinuationToken: "next"}}
	b := NewBreakerAPI(api, testBreakerSettings())

	page, err := b.FetchAssetPage(context.Background(), "t", PageRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if page.ContinuationToken != "next" {
		t.Errorf("page = %+v", page)
	}
}

func TestBreakerAPI_OpensOnFailures(t *testing.T) {
	api := &fakeAPI{errs: []error{err503, err503, err503, err503}}
	b := NewBreakerAPI(api, testBreakerSettings())

	for i := 0; i < 4; i++ {
		if _, err := b.FetchMetadata(context.Background(), "t"); !errors.Is(err, err503) {
			t.Fatalf("call %d: error = %v", i, err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}

	_, err := b.FetchMetadata(context.Background(), "t")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if api.calls != 4 {
		t.Errorf("calls = %d, open circuit must not reach the API", api.calls)
	}
}

func TestBreakerAPI_ClientErrorsDoNotTrip(t *testing.T) {
	api := &fakeAPI{errs: []error{err401, err403, err401, err403, err401}}
	b := NewBreakerAPI(api, testBreakerSettings())

	for i := 0; i < 5; i++ {
		_, _ = b.FetchMetadata(context.Background(), "t")
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %v, auth failures must not open the circuit", b.State())
	}
}

func TestBreakerAPI_Binaries(t *testing.T) {
	api := &fakeAPI{binaries: map[string][]models.Binary{"tx": {{ID: "b"}}}}
	b := NewBreakerAPI(api, testBreakerSettings())

	bins, err := b.FetchBinariesForTransaction(context.Background(), "t", "cart", "tx")
	if err != nil || len(bins) != 1 {
		t.Fatalf("bins = %v, err = %v", bins, err)
	}

	none, err := b.FetchBinariesForTransaction(context.Background(), "t", "cart", "missing")
	if err != nil || len(none) != 0 {
		t.Fatalf("nil result should cast cleanly, got %v, %v", none, err)
	}
}

func TestStateConversions(t *testing.T) {
	tests := []struct {
		state gobreaker.State
		f     float64
		s     string
	}{
		{gobreaker.StateClosed, 0, "closed"},
		{gobreaker.StateHalfOpen, 1, "half-open"},
		{gobreaker.StateOpen, 2, "open"},
	}
	for _, tt := range tests {
		if got := stateToFloat(tt.state); got != tt.f {
			t.Errorf("stateToFloat(%v) = %v", tt.state, got)
		}
		if got := stateToString(tt.state); got != tt.s {
			t.Errorf("stateToString(%v) = %v", tt.state, got)
		}
	}
}
