// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package catalog is the bundled target adapter. It stores synchronized
// metadata and asset records in BadgerDB and keeps the downloaded binaries
// in a blob directory.
package catalog
