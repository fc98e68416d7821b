// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pushward/internal/config"
)

// Router wires the ops handlers into a Chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	deliverAPI    bool
	deliverAuth   *TokenAuth
}

// NewRouter creates a router for the given server settings. It fails when
// the deliver token cannot be hashed.
func NewRouter(cfg config.ServerConfig, handler *Handler) (*Router, error) {
	router := &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(cfg),
		deliverAPI:    cfg.DeliverAPI,
	}
	if cfg.DeliverAPI && cfg.DeliverAPIToken != "" {
		auth, err := NewTokenAuth(cfg.DeliverAPIToken)
		if err != nil {
			return nil, fmt.Errorf("deliver api token: %w", err)
		}
		router.deliverAuth = auth
	}
	return router, nil
}

// SetupChi builds the HTTP handler.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(PrometheusMetrics)
	r.Use(router.chiMiddleware.CORS())

	// Probes and scraping are not rate limited.
	r.Get("/healthz", router.handler.HealthLive)
	r.Get("/readyz", router.handler.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Get("/providers", router.handler.Providers)
		if router.deliverAPI {
			r.Group(func(r chi.Router) {
				if router.deliverAuth != nil {
					r.Use(router.deliverAuth.Middleware)
				}
				r.Post("/deliver", router.handler.Deliver)
			})
		}
	})

	return r
}
