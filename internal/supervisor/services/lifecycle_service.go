// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package services

import (
	"context"
	"fmt"
)

// StartStopper is the lifecycle shared by sync.Manager and sync.Scheduler.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop() error
}

// LifecycleService adapts a Start/Stop component to suture's Serve:
//  1. Start(ctx) spawns the component's goroutines and returns
//  2. Serve blocks until ctx is canceled
//  3. Stop() waits for those goroutines to exit
//
// A failed Start is returned so suture restarts the service with backoff.
type LifecycleService struct {
	component StartStopper
	name      string
}

// NewLifecycleService wraps component under the given service name.
//
//	tree.AddSyncService(services.NewLifecycleService("sync-manager", manager))
//	tree.AddSyncService(services.NewLifecycleService("sync-scheduler", scheduler))
func NewLifecycleService(name string, component StartStopper) *LifecycleService {
	return &LifecycleService{
		component: component,
		name:      name,
	}
}

// Serve implements suture.Service.
func (s *LifecycleService) Serve(ctx context.Context) error {
	if err := s.component.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()

	if err := s.component.Stop(); err != nil {
		return fmt.Errorf("%s stop failed: %w", s.name, err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer. Suture uses it in log messages.
func (s *LifecycleService) String() string {
	return s.name
}
