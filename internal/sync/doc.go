// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package sync runs the one-way synchronization from the purchasing platform
into a target adapter.

# Components

  - Orchestrator: performs one run (validation, metadata phase, asset phase)
    and routes failures to the target's error handlers
  - Manager: owns the tenant's job queue and drains it in the background
  - Scheduler: enqueues scheduled runs from a cron expression

# Run Outcomes

Synchronize returns an error only for configuration problems detected before
any network call. Authentication failures go to Adapter.OnAuthError, every
other failure to Adapter.OnSyncError. Each run produces a models.RunReport
that the Manager keeps as its last report.

# Example

	orch := sync.NewOrchestrator(sync.Settings{
	    TenantID:        cfg.Sync.TenantID,
	    ImportLanguages: cfg.Sync.ImportLanguages,
	}, sync.Deps{
	    Source:     client,
	    Target:     catalog,
	    Downloader: downloader,
	    Tokens:     tokens,
	})
	manager := sync.NewManager(orch, sync.ManagerOptions{TenantID: cfg.Sync.TenantID})
	if err := manager.Start(ctx); err != nil {
	    return err
	}
	manager.TriggerEvent()
*/
package sync
