// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package supervisor provides process supervision for Assetsync using suture v4.

The tree has three layers under the root supervisor:

	assetsync (root)
	├── data-layer   store value log GC
	├── sync-layer   sync manager, cron scheduler
	└── api-layer    HTTP trigger/status server

Each long-running component is wrapped by a service in the services
subpackage that adapts its Start/Stop lifecycle to suture's Serve(ctx).
A service that returns an error is restarted with backoff; one that keeps
failing trips FailureThreshold and the layer backs off for FailureBackoff.

Supervisor events are logged through sutureslog into the zerolog pipeline
(logging.NewSlogHandler).

Usage:

	logger := slog.New(logging.NewSlogHandler(logging.Logger()))
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddSyncService(services.NewLifecycleService("sync-manager", manager))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	errCh := tree.ServeBackground(ctx)
*/
package supervisor
