// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/metrics"
)

// Trigger identifies what requested a sync run.
type Trigger string

const (
	// TriggerScheduled is a timer-driven run that may force a metadata sync.
	TriggerScheduled Trigger = "scheduled"
	// TriggerEvent is a run requested by an external event. It never forces
	// a metadata sync.
	TriggerEvent Trigger = "event"
)

// RunFunc executes one job.
type RunFunc func(ctx context.Context, job *Job) error

// Job is one admitted sync request. Done is closed when it finishes.
type Job struct {
	ID           string
	Trigger      Trigger
	SyncMetadata bool
	EnqueuedAt   time.Time

	done chan struct{}
	err  error
}

func newJob(trigger Trigger, syncMetadata bool) *Job {
	return &Job{
		ID:           uuid.New().String(),
		Trigger:      trigger,
		SyncMetadata: syncMetadata,
		EnqueuedAt:   time.Now(),
		done:         make(chan struct{}),
	}
}

// Done returns a channel closed when the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Err returns the job's result. It is only meaningful after Done is closed.
func (j *Job) Err() error {
	select {
	case <-j.done:
		return j.err
	default:
		return nil
	}
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return j.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Job) finish(err error) {
	j.err = err
	close(j.done)
}

// Queue serializes sync runs: one job runs at a time and at most one
// scheduled and one event job wait behind it.
//
// Admission:
//   - an event request is dropped if any job is waiting
//   - a scheduled request is dropped only if a scheduled job is waiting
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	waiting []*Job
	running *Job
	run     RunFunc
}

// New creates a queue executing jobs with run.
func New(run RunFunc) *Queue {
	q := &Queue{run: run}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// EnqueueScheduled requests a scheduled run. It returns the admitted job, or
// false if the request was coalesced into an already waiting scheduled job.
func (q *Queue) EnqueueScheduled(syncMetadata bool) (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, j := range q.waiting {
		if j.Trigger == TriggerScheduled {
			q.dropLocked(TriggerScheduled)
			return nil, false
		}
	}
	return q.admitLocked(newJob(TriggerScheduled, syncMetadata)), true
}

// EnqueueEvent requests an event-triggered run. It returns the admitted job,
// or false if any job is already waiting.
func (q *Queue) EnqueueEvent() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) > 0 {
		q.dropLocked(TriggerEvent)
		return nil, false
	}
	return q.admitLocked(newJob(TriggerEvent, false)), true
}

func (q *Queue) admitLocked(job *Job) *Job {
	q.waiting = append(q.waiting, job)
	metrics.RecordQueueAdmission(string(job.Trigger), true)
	metrics.QueueWaiting.Set(float64(len(q.waiting)))
	logging.Debug().
		Str("job_id", job.ID).
		Str("trigger", string(job.Trigger)).
		Bool("sync_metadata", job.SyncMetadata).
		Int("waiting", len(q.waiting)).
		Msg("Sync job queued")
	q.cond.Broadcast()
	return job
}

func (q *Queue) dropLocked(trigger Trigger) {
	metrics.RecordQueueAdmission(string(trigger), false)
	logging.Debug().Str("trigger", string(trigger)).Int("waiting", len(q.waiting)).Msg("Sync request dropped, equivalent job already waiting")
}

// Waiting returns the number of queued jobs.
func (q *Queue) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}

// Running reports whether a job is executing.
func (q *Queue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running != nil
}

// Current returns the executing job, or nil.
func (q *Queue) Current() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// WaitForWork blocks until at least one job is waiting or ctx is done. It
// reports whether work is available.
func (q *Queue) WaitForWork(ctx context.Context) bool {
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.waiting) == 0 && ctx.Err() == nil {
		q.cond.Wait()
	}
	return len(q.waiting) > 0 && ctx.Err() == nil
}

// Run executes waiting jobs in FIFO order, one at a time, until the queue is
// empty or ctx is done, and returns how many it executed. If another Run is
// already draining the queue it returns 0 immediately.
func (q *Queue) Run(ctx context.Context) int {
	executed := 0
	for ctx.Err() == nil {
		job := q.next()
		if job == nil {
			return executed
		}
		err := q.execute(ctx, job)
		q.complete(job, err)
		executed++
	}
	return executed
}

// Discard removes every waiting job and finishes it with err. The running
// job is not affected. It returns the number of jobs discarded.
func (q *Queue) Discard(err error) int {
	q.mu.Lock()
	jobs := q.waiting
	q.waiting = nil
	q.mu.Unlock()

	metrics.QueueWaiting.Set(0)
	for _, job := range jobs {
		logging.Debug().Str("job_id", job.ID).Str("trigger", string(job.Trigger)).Msg("Sync job discarded")
		job.finish(err)
	}
	return len(jobs)
}

func (q *Queue) next() *Job {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running != nil || len(q.waiting) == 0 {
		return nil
	}
	job := q.waiting[0]
	q.waiting[0] = nil
	q.waiting = q.waiting[1:]
	q.running = job

	metrics.QueueWaiting.Set(float64(len(q.waiting)))
	metrics.QueueRunning.Set(1)
	return job
}

func (q *Queue) complete(job *Job, err error) {
	q.mu.Lock()
	q.running = nil
	q.mu.Unlock()

	metrics.QueueRunning.Set(0)
	job.finish(err)
}

func (q *Queue) execute(ctx context.Context, job *Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sync job %s panicked: %v", job.ID, r)
			logging.Error().Str("job_id", job.ID).Interface("panic", r).Msg("Sync job panicked")
		}
	}()

	start := time.Now()
	logging.Info().Str("job_id", job.ID).Str("trigger", string(job.Trigger)).Bool("sync_metadata", job.SyncMetadata).Msg("Sync job started")
	err = q.run(ctx, job)

	event := logging.Info()
	if err != nil {
		event = logging.Error().Err(err)
	}
	event.Str("job_id", job.ID).Dur("duration", time.Since(start)).Msg("Sync job finished")
	return err
}
