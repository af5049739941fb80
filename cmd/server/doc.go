// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package main is the entry point for the Assetsync server.

Assetsync copies a tenant's licensed assets (purchased images, videos and
compound bundles) and their generic metadata from a purchasing platform's
API into a target asset catalog. Runs are incremental: a continuation token
persisted in BadgerDB marks how far the asset feed has been consumed.

# Application Architecture

	RootSupervisor ("assetsync")
	├── data-layer
	│   └── store-gc          BadgerDB value log GC
	├── sync-layer
	│   ├── sync-manager      job queue, one run at a time
	│   └── sync-scheduler    cron, enqueues scheduled runs (optional)
	└── api-layer
	    └── http-server       trigger/status API, /metrics

Initialization order:

 1. Configuration: Koanf v2 (defaults, YAML file, environment)
 2. Logging: zerolog, JSON or console
 3. Store: BadgerDB for continuation tokens and the bundled catalog
 4. Source client: rate-limited HTTP, circuit breaker, retry, token refresh
 5. Catalog target, orchestrator, manager, scheduler
 6. HTTP router (chi) and supervisor tree (suture v4)

# Configuration

	SOURCE_BASE_URL=https://api.platform.example/v1
	SOURCE_DOMAIN=platform.example
	SOURCE_ACCESS_TOKEN=...            # or SOURCE_REFRESH_TOKEN + client settings
	TENANT_ID=acme
	IMPORT_LANGUAGES=en,de,fr
	SYNC_SCHEDULE="@every 1h"          # empty disables scheduled runs
	STORE_PATH=/data/assetsync/badger
	CATALOG_BLOB_DIR=/data/assetsync/blobs
	HTTP_PORT=8686
	LOG_LEVEL=info

When a config file is in use, changes to logging.level are applied without a
restart.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains for up to
10s, the manager cancels its in-flight run, and the store is closed last.
*/
package main
