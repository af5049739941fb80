// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package syncerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"config", Config("validate", ErrMissingTenant), KindConfiguration},
		{"auth", Auth("fetch", ErrUnauthorized), KindAuthentication},
		{"transient", Transient("fetch", errors.New("timeout")), KindTransient},
		{"sync job", SyncJob("import", ErrMissingTargetID), KindSyncJob},
		{"unclassified", errors.New("boom"), KindSyncJob},
		{"wrapped auth", fmt.Errorf("asset phase: %w", Auth("fetch", ErrUnauthorized)), KindAuthentication},
		{"outermost wins", SyncJob("page", Transient("fetch", errors.New("eof"))), KindSyncJob},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := Config("validate settings", ErrInvalidLanguage)
	if !errors.Is(err, ErrInvalidLanguage) {
		t.Error("expected errors.Is to find the sentinel")
	}
	if got, want := err.Error(), "validate settings: invalid import language tag"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !IsConfig(err) || IsAuth(err) || IsTransient(err) {
		t.Error("unexpected classification")
	}
}

func TestNilErrorStaysNil(t *testing.T) {
	t.Parallel()

	if Config("op", nil) != nil || Auth("op", nil) != nil || SyncJob("op", nil) != nil {
		t.Error("classifying nil must return nil")
	}
	if IsAuth(nil) || IsConfig(nil) {
		t.Error("nil must not be classified")
	}
}
