// Assetsync - Licensed Asset Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assetsync

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds router settings.
type RouterConfig struct {
	// TriggerRateLimit is the number of trigger requests allowed per client IP
	// per TriggerRateWindow. Zero disables limiting.
	TriggerRateLimit  int
	TriggerRateWindow time.Duration
}

// Router builds the HTTP handler tree.
type Router struct {
	handler *Handler
	config  RouterConfig
}

// NewRouter creates a router for handler.
func NewRouter(handler *Handler, config RouterConfig) *Router {
	return &Router{handler: handler, config: config}
}

// Setup configures all routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics)
	r.Use(RequestLogger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	r.Get("/health", router.handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", router.handler.Status)

		r.Route("/sync", func(r chi.Router) {
			r.Use(RateLimitTriggers(router.config.TriggerRateLimit, router.config.TriggerRateWindow))
			r.Post("/events", router.handler.TriggerEvent)
			r.Post("/scheduled", router.handler.TriggerScheduled)
		})
	})

	return r
}
