// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/logging"
)

// Envelope wraps every ops HTTP response body.
//
//	{"status":"error","error":{"code":"VALIDATION_ERROR","message":"..."},"meta":{"at":"..."}}
type Envelope struct {
	Status string      `json:"status"` // "success" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  *ErrorBody  `json:"error,omitempty"`
	Meta   Meta        `json:"meta"`
}

// Meta carries response timing.
type Meta struct {
	At         time.Time `json:"at"`
	DurationMS int64     `json:"durationMs,omitempty"`
}

// ErrorBody is a stable machine-readable code plus a human message.
type ErrorBody struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

// Health is the body of /healthz and /readyz.
type Health struct {
	Status        string          `json:"status"`
	Version       string          `json:"version"`
	UptimeSeconds float64         `json:"uptimeSeconds"`
	Checks        map[string]bool `json:"checks,omitempty"`
}

// respondJSON writes a success envelope.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	writeEnvelope(w, status, Envelope{Status: "success", Data: data})
}

// respondTimed writes a success envelope stamped with the time since start.
func respondTimed(w http.ResponseWriter, data interface{}, start time.Time) {
	writeEnvelope(w, http.StatusOK, Envelope{
		Status: "success",
		Data:   data,
		Meta:   Meta{DurationMS: time.Since(start).Milliseconds()},
	})
}

// respondError writes an error envelope. A non-nil err is logged, never
// echoed to the client.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Warn().Err(err).Str("code", code).Int("status", status).Msg(message)
	}
	writeEnvelope(w, status, Envelope{
		Status: "error",
		Error:  &ErrorBody{Code: code, Message: message},
	})
}

// respondInvalid writes a 400 naming the offending request fields.
func respondInvalid(w http.ResponseWriter, message string, fields []string) {
	writeEnvelope(w, http.StatusBadRequest, Envelope{
		Status: "error",
		Error:  &ErrorBody{Code: "VALIDATION_ERROR", Message: message, Fields: fields},
	})
}

// writeEnvelope serialises env; ops responses are never cached.
//
//nolint:gocritic // Envelope is small and built per call
func writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	env.Meta.At = time.Now().UTC()
	data, err := json.Marshal(env)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Debug().Err(err).Msg("Client went away before response was written")
	}
}
