// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func noopRun(context.Context, *Job) error { return nil }

func TestQueue_AdmissionRules(t *testing.T) {
	q := New(noopRun)

	event, ok := q.EnqueueEvent()
	if !ok || event == nil {
		t.Fatal("first event must be admitted")
	}
	sched, ok := q.EnqueueScheduled(true)
	if !ok || sched == nil {
		t.Fatal("scheduled after event must be admitted")
	}
	if got := q.Waiting(); got != 2 {
		t.Fatalf("Waiting() = %d, want 2", got)
	}

	if _, ok := q.EnqueueEvent(); ok {
		t.Error("event must be dropped while jobs are waiting")
	}
	if _, ok := q.EnqueueScheduled(false); ok {
		t.Error("second scheduled must be dropped while a scheduled job waits")
	}
	if got := q.Waiting(); got != 2 {
		t.Errorf("Waiting() = %d, want 2 after drops", got)
	}
}

func TestQueue_ScheduledThenEventDropsEvent(t *testing.T) {
	q := New(noopRun)

	if _, ok := q.EnqueueScheduled(false); !ok {
		t.Fatal("scheduled must be admitted")
	}
	if _, ok := q.EnqueueEvent(); ok {
		t.Error("event must be dropped while a scheduled job waits")
	}
	if got := q.Waiting(); got != 1 {
		t.Errorf("Waiting() = %d, want 1", got)
	}
}

func TestQueue_RunFIFO(t *testing.T) {
	var mu sync.Mutex
	var order []Trigger
	q := New(func(_ context.Context, job *Job) error {
		mu.Lock()
		order = append(order, job.Trigger)
		mu.Unlock()
		return nil
	})

	q.EnqueueEvent()
	q.EnqueueScheduled(true)

	if n := q.Run(context.Background()); n != 2 {
		t.Fatalf("Run() = %d, want 2", n)
	}
	if len(order) != 2 || order[0] != TriggerEvent || order[1] != TriggerScheduled {
		t.Errorf("order = %v, want [event scheduled]", order)
	}
	if q.Waiting() != 0 || q.Running() {
		t.Error("queue must be idle after Run")
	}
}

func TestQueue_JobResult(t *testing.T) {
	boom := errors.New("boom")
	q := New(func(_ context.Context, job *Job) error {
		if job.Trigger == TriggerEvent {
			return boom
		}
		return nil
	})

	event, _ := q.EnqueueEvent()
	sched, _ := q.EnqueueScheduled(false)
	q.Run(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := event.Wait(ctx); !errors.Is(err, boom) {
		t.Errorf("event.Wait() = %v, want boom", err)
	}
	if err := sched.Wait(ctx); err != nil {
		t.Errorf("sched.Wait() = %v, want nil", err)
	}
	if !errors.Is(event.Err(), boom) {
		t.Errorf("event.Err() = %v", event.Err())
	}
}

func TestQueue_PanicBecomesError(t *testing.T) {
	q := New(func(context.Context, *Job) error {
		panic("kaboom")
	})
	job, _ := q.EnqueueEvent()
	q.Run(context.Background())

	select {
	case <-job.Done():
	default:
		t.Fatal("job must be done after a panic")
	}
	if job.Err() == nil {
		t.Error("panic must surface as an error")
	}
	if q.Running() {
		t.Error("queue must not stay running after a panic")
	}
}

func TestQueue_OneRunAtATime(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	var mu sync.Mutex
	active, maxActive := 0, 0

	q := New(func(context.Context, *Job) error {
		mu.Lock()
		active++
		if active > maxActive {
			maxActive = active
		}
		mu.Unlock()
		started <- struct{}{}
		<-release
		mu.Lock()
		active--
		mu.Unlock()
		return nil
	})

	q.EnqueueEvent()
	done := make(chan int, 1)
	go func() { done <- q.Run(context.Background()) }()
	<-started

	// A second drainer must yield while the first job runs.
	if n := q.Run(context.Background()); n != 0 {
		t.Errorf("concurrent Run() = %d, want 0", n)
	}

	if _, ok := q.EnqueueScheduled(false); !ok {
		t.Error("scheduled must be admitted while a job runs")
	}
	if got := q.Waiting(); got != 1 {
		t.Errorf("Waiting() = %d, want 1", got)
	}

	close(release)
	if n := <-done; n != 2 {
		t.Errorf("Run() = %d, want 2", n)
	}
	if maxActive != 1 {
		t.Errorf("max concurrent jobs = %d, want 1", maxActive)
	}
}

func TestQueue_EventAdmittedWhileRunning(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := New(func(context.Context, *Job) error {
		started <- struct{}{}
		<-release
		return nil
	})

	q.EnqueueScheduled(true)
	done := make(chan int, 1)
	go func() { done <- q.Run(context.Background()) }()
	<-started

	if _, ok := q.EnqueueEvent(); !ok {
		t.Error("event must be admitted when nothing waits")
	}
	if _, ok := q.EnqueueScheduled(false); !ok {
		t.Error("scheduled must be admitted behind a waiting event")
	}
	if _, ok := q.EnqueueEvent(); ok {
		t.Error("third request must be dropped")
	}

	close(release)
	if n := <-done; n != 3 {
		t.Errorf("Run() = %d, want 3", n)
	}
}

func TestQueue_WaitForWork(t *testing.T) {
	q := New(noopRun)

	t.Run("returns when work arrives", func(t *testing.T) {
		got := make(chan bool, 1)
		go func() { got <- q.WaitForWork(context.Background()) }()
		time.Sleep(20 * time.Millisecond)
		q.EnqueueEvent()

		select {
		case ok := <-got:
			if !ok {
				t.Error("WaitForWork() = false, want true")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("WaitForWork did not wake on enqueue")
		}
		q.Run(context.Background())
	})

	t.Run("returns false on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		got := make(chan bool, 1)
		go func() { got <- q.WaitForWork(ctx) }()
		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case ok := <-got:
			if ok {
				t.Error("WaitForWork() = true after cancel")
			}
		case <-time.After(2 * time.Second):
			t.Fatal("WaitForWork did not wake on cancel")
		}
	})
}

func TestJob_WaitHonorsContext(t *testing.T) {
	q := New(noopRun)
	job, _ := q.EnqueueEvent()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := job.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() = %v, want DeadlineExceeded", err)
	}
	if job.Err() != nil {
		t.Error("Err() must be nil before the job finishes")
	}
	if job.ID == "" {
		t.Error("job must have an ID")
	}
}

func TestQueue_DiscardFinishesWaitingJobs(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := New(func(context.Context, *Job) error {
		started <- struct{}{}
		<-release
		return nil
	})

	running, _ := q.EnqueueScheduled(true)
	done := make(chan int, 1)
	go func() { done <- q.Run(context.Background()) }()
	<-started

	event, _ := q.EnqueueEvent()
	scheduled, _ := q.EnqueueScheduled(false)

	if n := q.Discard(context.Canceled); n != 2 {
		t.Errorf("Discard() = %d, want 2", n)
	}
	if q.Waiting() != 0 {
		t.Errorf("Waiting() = %d after Discard", q.Waiting())
	}
	for _, job := range []*Job{event, scheduled} {
		select {
		case <-job.Done():
		default:
			t.Fatalf("discarded %s job not finished", job.Trigger)
		}
		if !errors.Is(job.Err(), context.Canceled) {
			t.Errorf("%s job Err() = %v, want context.Canceled", job.Trigger, job.Err())
		}
	}

	close(release)
	if n := <-done; n != 1 {
		t.Errorf("Run() = %d, want only the running job", n)
	}
	if err := running.Err(); err != nil {
		t.Errorf("running job Err() = %v, want nil", err)
	}
}

func TestQueue_RunStopsWhenContextDone(t *testing.T) {
	var calls int
	q := New(func(context.Context, *Job) error {
		calls++
		return nil
	})
	job, _ := q.EnqueueEvent()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if n := q.Run(ctx); n != 0 || calls != 0 {
		t.Errorf("Run() = %d with %d calls, want 0", n, calls)
	}
	if q.Waiting() != 1 {
		t.Errorf("Waiting() = %d, job must stay queued", q.Waiting())
	}
	q.Discard(context.Canceled)
	if !errors.Is(job.Err(), context.Canceled) {
		t.Errorf("Err() = %v", job.Err())
	}
}
