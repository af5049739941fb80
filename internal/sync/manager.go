// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
manager.go - Sync Manager Lifecycle

Manager owns one tenant's job queue and orchestrator and runs the queue's
drain loop in the background.

Lifecycle Methods:
  - NewManager(): wire the orchestrator into a fresh queue
  - Start(): start the drain loop, optionally enqueue a run on start
  - Stop(): cancel the in-flight run and wait for the loop to exit
  - TriggerScheduled() / TriggerEvent(): enqueue runs under the queue's
    admission rules
  - LastReport() / Status(): observe the pipeline

Thread Safety:
  - mu: protects running, lastReport and the cancel function
  - The queue serializes runs; the orchestrator is only called from the
    drain loop goroutine
*/

//nolint:staticcheck // File documentation, not package doc
package sync

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/queue"
)

// Runner performs one sync run. *Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, trigger string, syncMetadata bool) (*models.RunReport, error)
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	TenantID string
	// RunOnStart enqueues a scheduled run with a forced metadata sync on Start.
	RunOnStart bool
}

// Manager runs sync jobs for one tenant in the background.
type Manager struct {
	runner Runner
	opts   ManagerOptions
	queue  *queue.Queue

	mu             sync.RWMutex
	running        bool
	cancel         context.CancelFunc
	lastReport     *models.RunReport
	onRunCompleted func(report *models.RunReport)

	wg sync.WaitGroup
}

// NewManager creates a manager around runner.
func NewManager(runner Runner, opts ManagerOptions) *Manager {
	m := &Manager{
		runner: runner,
		opts:   opts,
	}
	m.queue = queue.New(m.execute)
	return m
}

// SetOnRunCompleted sets a callback invoked after every run with its report.
func (m *Manager) SetOnRunCompleted(callback func(report *models.RunReport)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRunCompleted = callback
}

// Start begins draining the job queue.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	m.running = true
	m.cancel = cancel
	m.mu.Unlock()

	logging.Info().Str("tenant", m.opts.TenantID).Msg("Starting sync manager...")

	m.wg.Add(1)
	go m.drainLoop(runCtx)

	if m.opts.RunOnStart {
		m.TriggerScheduled(true)
	}
	return nil
}

// Stop cancels the in-flight run, waits for the drain loop to exit and
// finishes every job still waiting with context.Canceled.
func (m *Manager) Stop() error {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return fmt.Errorf("sync manager is not running")
	}
	m.running = false
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	logging.Info().Str("tenant", m.opts.TenantID).Msg("Stopping sync manager...")
	cancel()
	m.wg.Wait()
	discarded := m.queue.Discard(context.Canceled)
	logging.Info().Str("tenant", m.opts.TenantID).Int("discarded_jobs", discarded).Msg("Sync manager stopped")
	return nil
}

func (m *Manager) drainLoop(ctx context.Context) {
	defer m.wg.Done()
	for m.queue.WaitForWork(ctx) {
		m.queue.Run(ctx)
	}
}

func (m *Manager) execute(ctx context.Context, job *queue.Job) error {
	ctx = logging.ContextWithCorrelationID(ctx, job.ID[:8])
	report, err := m.runner.Run(ctx, string(job.Trigger), job.SyncMetadata)

	m.mu.Lock()
	if report != nil {
		m.lastReport = report
	}
	callback := m.onRunCompleted
	m.mu.Unlock()

	if callback != nil && report != nil {
		callback(report)
	}
	return err
}

// TriggerScheduled enqueues a scheduled run. It returns false when an
// equivalent job is already waiting.
func (m *Manager) TriggerScheduled(syncMetadata bool) (*queue.Job, bool) {
	return m.queue.EnqueueScheduled(syncMetadata)
}

// TriggerEvent enqueues an event-triggered run. It returns false when any
// job is already waiting.
func (m *Manager) TriggerEvent() (*queue.Job, bool) {
	return m.queue.EnqueueEvent()
}

// IsRunning reports whether the drain loop is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// LastReport returns a copy of the most recent run report, or nil.
func (m *Manager) LastReport() *models.RunReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.lastReport == nil {
		return nil
	}
	r := *m.lastReport
	r.FailedAssets = append([]models.AssetFailure(nil), m.lastReport.FailedAssets...)
	return &r
}

// Status returns the current pipeline state.
func (m *Manager) Status() models.SyncStatus {
	return models.SyncStatus{
		TenantID:   m.opts.TenantID,
		Running:    m.queue.Running(),
		Waiting:    m.queue.Waiting(),
		LastReport: m.LastReport(),
	}
}
