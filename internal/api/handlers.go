// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/assetsync/internal/logging"
	"github.com/tomtom215/assetsync/internal/models"
	"github.com/tomtom215/assetsync/internal/queue"
)

// Version is reported by the health endpoint. Overridden at build time.
var Version = "dev"

// SyncController is the part of sync.Manager the API drives.
type SyncController interface {
	TriggerScheduled(syncMetadata bool) (*queue.Job, bool)
	TriggerEvent() (*queue.Job, bool)
	Status() models.SyncStatus
}

// HealthCheck is a named dependency probe.
type HealthCheck struct {
	Name  string
	Check func() error
}

// Handler serves the trigger and status endpoints.
type Handler struct {
	sync      SyncController
	checks    []HealthCheck
	startTime time.Time
}

// NewHandler creates a handler for the given controller.
func NewHandler(controller SyncController, checks ...HealthCheck) *Handler {
	return &Handler{
		sync:      controller,
		checks:    checks,
		startTime: time.Now(),
	}
}

// Health handles GET /health. It always answers 200 so liveness probes do not
// restart the process for a degraded dependency; Status carries the verdict.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := models.HealthStatus{
		Status:  "healthy",
		Version: Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if len(h.checks) > 0 {
		health.Checks = make(map[string]string, len(h.checks))
		for _, c := range h.checks {
			if err := c.Check(); err != nil {
				health.Checks[c.Name] = err.Error()
				health.Status = "degraded"
				continue
			}
			health.Checks[c.Name] = "ok"
		}
	}

	if report := h.sync.Status().LastReport; report != nil && !report.FinishedAt.IsZero() {
		finished := report.FinishedAt
		health.LastSyncAt = &finished
	}

	respondSuccess(w, r, http.StatusOK, health)
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, h.sync.Status())
}

// TriggerEvent handles POST /api/v1/sync/events.
func (h *Handler) TriggerEvent(w http.ResponseWriter, r *http.Request) {
	job, ok := h.sync.TriggerEvent()
	h.respondTrigger(w, r, queue.TriggerEvent, job, ok)
}

// TriggerScheduled handles POST /api/v1/sync/scheduled. An empty body means
// sync_metadata=false.
func (h *Handler) TriggerScheduled(w http.ResponseWriter, r *http.Request) {
	var req models.TriggerRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, r, http.StatusBadRequest, &models.APIResponse{Status: "error", Error: apiErr})
		return
	}

	job, ok := h.sync.TriggerScheduled(req.SyncMetadata)
	h.respondTrigger(w, r, queue.TriggerScheduled, job, ok)
}

func (h *Handler) respondTrigger(w http.ResponseWriter, r *http.Request, trigger queue.Trigger, job *queue.Job, admitted bool) {
	status := h.sync.Status()
	if !admitted {
		logging.Ctx(r.Context()).Info().
			Str("trigger", string(trigger)).
			Int("waiting", status.Waiting).
			Msg("Sync trigger coalesced with waiting job")
		respondJSON(w, r, http.StatusConflict, &models.APIResponse{
			Status: "error",
			Error: &models.APIError{
				Code:    ErrCodeQueueFull,
				Message: "A sync job is already waiting",
				Details: map[string]interface{}{"trigger": string(trigger), "waiting": status.Waiting},
			},
		})
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("trigger", string(trigger)).
		Str("job_id", job.ID).
		Bool("sync_metadata", job.SyncMetadata).
		Msg("Sync job queued")
	respondSuccess(w, r, http.StatusAccepted, models.TriggerResponse{
		JobID:    job.ID,
		Trigger:  string(trigger),
		Waiting:  status.Waiting,
		Metadata: job.SyncMetadata,
	})
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
