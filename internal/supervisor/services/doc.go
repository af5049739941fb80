// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package services adapts Assetsync components to suture.Service.

  - LifecycleService: Start/Stop components (sync.Manager, sync.Scheduler)
  - HTTPServerService: *http.Server with graceful shutdown
  - StoreGCService: periodic BadgerDB value log GC

Every service returns ctx.Err() on a clean shutdown and a wrapped error on
failure, which suture turns into a restart.
*/
package services
