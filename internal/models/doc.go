// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package models defines the data structures shared across Assetsync.

Source side:

  - Asset, Binary, AssetPage: the paged purchase feed
  - LicenseTerm, KeyRule, DownloadConstraints: license details by source key
  - RawMetadataElement: generic metadata before locale filtering

Mapping:

  - MetadataCategory: the fourteen generic metadata tables, in import order
  - MetadataElement, MetadataBundle: filtered elements, stamped with target IDs

Target side:

  - Record: closed sum of BinaryAsset and CompoundAsset
  - ContentMetadata, LicenseMetadata, MappedTerm: fields resolved to target IDs
  - ConversionResult: every record produced from one asset

API:

  - APIResponse, APIError, ResponseMeta: the HTTP response envelope
  - SyncStatus, RunReport, HealthStatus: status payloads

Localized values are maps keyed by locale tag. Clone before mutating a
value that is shared with another record.
*/
package models
