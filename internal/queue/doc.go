// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

// Package queue serializes sync runs for one tenant.
//
// At most one job runs at a time. Behind it wait at most one scheduled job
// and one event job; redundant requests are dropped rather than queued.
// Callers receive a *Job whose Done channel closes when the job completes,
// whether it succeeded or failed.
//
//	q := queue.New(func(ctx context.Context, job *queue.Job) error {
//	    return orchestrator.Synchronize(ctx, job.SyncMetadata)
//	})
//	for q.WaitForWork(ctx) {
//	    q.Run(ctx)
//	}
package queue
