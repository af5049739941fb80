// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

/*
Package api provides the HTTP trigger and status API for Assetsync.

Routes (Chi router):

  - GET  /health                   liveness plus named dependency checks
  - GET  /api/v1/status            running flag, waiting jobs, last run report
  - POST /api/v1/sync/events       event trigger, 202 Accepted or 409 QUEUE_FULL
  - POST /api/v1/sync/scheduled    scheduled trigger, body {"sync_metadata": bool}
  - GET  /metrics                  Prometheus exposition

Every JSON response uses the models.APIResponse envelope. The trigger routes
are rate limited per client IP with go-chi/httprate; a limited request gets
429 with code RATE_LIMIT_EXCEEDED.

A dropped trigger is not an error in the queue: the job already waiting
covers the same work. The API still reports it as 409 so callers can tell
that no new job was created.

Usage:

	handler := api.NewHandler(manager, api.HealthCheck{Name: "store", Check: db.Ping})
	router := api.NewRouter(handler, api.RouterConfig{
	    TriggerRateLimit:  cfg.Server.TriggerRateLimit,
	    TriggerRateWindow: cfg.Server.TriggerRateWindow,
	})
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: router.Setup()}
*/
package api
