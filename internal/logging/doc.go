// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package logging provides zerolog-based structured logging for Assetsync.
//
// A single global logger is configured once at startup with Init and used
// through the package-level helpers:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("tenant", id).Msg("Sync started")
//
// Sync runs carry a run ID and tenant in their context. Ctx attaches those
// (and any correlation ID) to every event:
//
//	ctx = logging.ContextWithRun(ctx, runID, tenant)
//	logging.Ctx(ctx).Warn().Err(err).Str("asset_id", id).Msg("Asset skipped")
//
// Access tokens and signed download URLs must never be logged raw; use
// SanitizeToken and SanitizeURL.
//
// SlogHandler adapts zerolog to log/slog for libraries that require it,
// notably the suture supervisor via sutureslog.
package logging
