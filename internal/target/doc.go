// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package target defines the boundary between the sync engine and the
downstream asset-management system.

An Adapter receives, in order:

  - lifecycle hooks around the run and each phase
  - one ImportMetadata call per metadata category
  - existence lookups used to split records into new and updated
  - batched imports and updates per page
  - error handler calls for failures the run could not recover from

Records cross the boundary as models.BinaryAsset and models.CompoundAsset
values; Buckets holds one page's records after partitioning. The catalog
subpackage is a complete Adapter backed by BadgerDB.
*/
package target
