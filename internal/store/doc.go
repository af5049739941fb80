// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package store provides the BadgerDB instance used for durable state and
// the continuation token stores built on it.
//
// Key prefixes:
//
//	continuation:<tenant>          last continuation token of the asset listing
//	catalog:<tenant>:...           records of the catalog target adapter
package store
