// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package convert turns source assets into target records.
//
// Each binary of an asset becomes a models.BinaryAsset. An asset with two or
// more binaries additionally becomes a models.CompoundAsset whose parts are
// those binary records. Every metadata key is resolved to a target ID
// through an IDLookup (normally *idmap.Mapper). Conversion is pure: it
// performs no I/O and never mutates its input.
package convert
