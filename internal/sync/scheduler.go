// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/queue"
)

// ScheduledTrigger enqueues scheduled runs. *Manager satisfies it.
type ScheduledTrigger interface {
	TriggerScheduled(syncMetadata bool) (*queue.Job, bool)
}

// Scheduler enqueues scheduled runs on a cron schedule.
type Scheduler struct {
	spec         string
	syncMetadata bool
	trigger      ScheduledTrigger

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
}

// NewScheduler validates spec (standard 5-field or a descriptor such as
// "@every 1h") and creates a stopped scheduler.
func NewScheduler(spec string, syncMetadata bool, trigger ScheduledTrigger) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", spec, err)
	}
	return &Scheduler{
		spec:         spec,
		syncMetadata: syncMetadata,
		trigger:      trigger,
	}, nil
}

// Start starts the cron loop.
func (s *Scheduler) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("scheduler is already running")
	}

	logger := cronLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger)))
	id, err := c.AddFunc(s.spec, s.fire)
	if err != nil {
		return fmt.Errorf("schedule sync: %w", err)
	}
	c.Start()

	s.cron = c
	s.entryID = id
	logging.Info().
		Str("schedule", s.spec).
		Bool("sync_metadata", s.syncMetadata).
		Time("next", c.Entry(id).Next).
		Msg("Sync scheduler started")
	return nil
}

// Stop stops the cron loop and waits for a running trigger to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return fmt.Errorf("scheduler is not running")
	}
	<-c.Stop().Done()
	logging.Info().Msg("Sync scheduler stopped")
	return nil
}

// Next returns the next scheduled fire time, or zero when stopped.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *Scheduler) fire() {
	job, ok := s.trigger.TriggerScheduled(s.syncMetadata)
	if !ok {
		logging.Info().Msg("Scheduled sync skipped, a scheduled job is already waiting")
		return
	}
	logging.Info().Str("job_id", job.ID).Msg("Scheduled sync queued")
}

// cronLogger routes cron's logr-style messages to zerolog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logging.Debug().Str("component", "cron").Fields(keysAndValues).Msg(msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logging.Error().Err(err).Str("component", "cron").Fields(keysAndValues).Msg(msg)
}
