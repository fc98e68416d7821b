// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/delivery"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/push"
	"github.com/tomtom215/pushward/internal/validation"
)

// maxDeliverBodyBytes bounds a synchronous delivery request.
const maxDeliverBodyBytes = 1 << 20

// ProviderStatuser reports provider state. *push.Registry implements it.
type ProviderStatuser interface {
	Status() []push.ProviderStatus
	AnyConfigured() bool
}

// Deliverer delivers one request. *delivery.Orchestrator implements it.
type Deliverer interface {
	Deliver(ctx context.Context, req *delivery.Request) (*delivery.Report, error)
}

// ReadinessCheck is a named condition that must hold before /readyz
// reports ready.
type ReadinessCheck struct {
	Name  string
	Ready func() bool
}

// Handler serves the ops endpoints.
type Handler struct {
	providers ProviderStatuser
	deliverer Deliverer
	checks    []ReadinessCheck
	version   string
	startTime time.Time
}

// NewHandler creates a handler. deliverer may be nil when the deliver
// endpoint is disabled.
func NewHandler(providers ProviderStatuser, deliverer Deliverer, version string, checks ...ReadinessCheck) *Handler {
	return &Handler{
		providers: providers,
		deliverer: deliverer,
		checks:    checks,
		version:   version,
		startTime: time.Now(),
	}
}

// HealthLive handles GET /healthz.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, Health{
		Status:        "alive",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /readyz. At least one provider must be configured
// and every registered check must pass.
func (h *Handler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	checks := make(map[string]bool, len(h.checks)+1)
	ready := true

	providersOK := h.providers != nil && h.providers.AnyConfigured()
	checks["providers"] = providersOK
	ready = ready && providersOK

	for _, c := range h.checks {
		ok := c.Ready != nil && c.Ready()
		checks[c.Name] = ok
		ready = ready && ok
	}

	status := http.StatusOK
	health := Health{
		Status:        "ready",
		Version:       h.version,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Checks:        checks,
	}
	if !ready {
		status = http.StatusServiceUnavailable
		health.Status = "not_ready"
	}
	respondJSON(w, status, health)
}

// Providers handles GET /api/v1/providers.
func (h *Handler) Providers(w http.ResponseWriter, _ *http.Request) {
	if h.providers == nil {
		respondJSON(w, http.StatusOK, []push.ProviderStatus{})
		return
	}
	respondJSON(w, http.StatusOK, h.providers.Status())
}

// Deliver handles POST /api/v1/deliver.
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	if h.deliverer == nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Delivery endpoint is disabled", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDeliverBodyBytes)

	var req delivery.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Request body is not valid JSON", nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondInvalid(w, "Invalid delivery request", verr.Fields())
		return
	}

	start := time.Now()
	ctx := logging.ContextWithNotificationID(r.Context(), req.Notification.ID)
	report, err := h.deliverer.Deliver(ctx, &req)
	if err != nil {
		if errors.Is(err, delivery.ErrInvalidRequest) {
			respondInvalid(w, err.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DELIVERY_ERROR", "Delivery failed", err)
		return
	}

	respondTimed(w, report, start)
}
