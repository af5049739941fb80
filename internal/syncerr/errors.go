// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package syncerr defines the error taxonomy shared by the sync pipeline.
//
// Every error that leaves a pipeline component is classified into one of four
// kinds. The orchestrator uses the kind to decide whether an error is returned
// to the caller (configuration), routed to the target's authentication handler
// (authentication) or to its generic handler (everything else). Transient
// errors never leave the source client unless its retry budget is exhausted,
// at which point they are re-classified as sync-job errors.
//
// Usage:
//
//	if token == "" {
//	    return syncerr.Config("validate credentials", syncerr.ErrMissingCredential)
//	}
//
//	if syncerr.IsAuth(err) {
//	    adapter.OnAuthError(ctx, err)
//	}
package syncerr

import (
	"errors"
	"fmt"
)

// Kind classifies pipeline errors.
type Kind int

const (
	// KindSyncJob is the default classification for any failure inside a run.
	KindSyncJob Kind = iota
	// KindConfiguration covers invalid settings detected before any network call.
	KindConfiguration
	// KindAuthentication covers rejected or unrefreshable credentials.
	KindAuthentication
	// KindTransient covers I/O failures that may succeed when retried.
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindAuthentication:
		return "authentication"
	case KindTransient:
		return "transient"
	default:
		return "sync_job"
	}
}

// Sentinel conditions. They are wrapped in *Error with the matching kind.
var (
	ErrMissingTenant            = errors.New("tenant ID is required")
	ErrNoImportLanguages        = errors.New("at least one import language is required")
	ErrInvalidLanguage          = errors.New("invalid import language tag")
	ErrMultiLanguageUnsupported = errors.New("target supports a single language but several import languages are configured")
	ErrMissingCredential        = errors.New("source credential is missing")
	ErrMissingTargetID          = errors.New("metadata element was not stamped with a target ID")
	ErrCapabilityViolation      = errors.New("source data exceeds target capabilities")
	ErrUnmappedKey              = errors.New("required metadata key has no target mapping")
	ErrRetriesExhausted         = errors.New("max retry attempts reached")
	ErrUnauthorized             = errors.New("source rejected credentials")
	ErrTokenRefresh             = errors.New("token refresh failed")
)

// Error is a classified pipeline error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Config classifies err as a configuration error.
func Config(op string, err error) error { return newError(KindConfiguration, op, err) }

// Auth classifies err as an authentication error.
func Auth(op string, err error) error { return newError(KindAuthentication, op, err) }

// SyncJob classifies err as a generic sync-job error.
func SyncJob(op string, err error) error { return newError(KindSyncJob, op, err) }

// Transient classifies err as a retryable I/O error.
func Transient(op string, err error) error { return newError(KindTransient, op, err) }

// KindOf returns the kind of the outermost classified error in err's chain.
// Unclassified errors are sync-job errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSyncJob
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool { return err != nil && KindOf(err) == KindConfiguration }

// IsAuth reports whether err is an authentication error.
func IsAuth(err error) bool { return err != nil && KindOf(err) == KindAuthentication }

// IsTransient reports whether err is a transient error.
func IsTransient(err error) bool { return err != nil && KindOf(err) == KindTransient }
