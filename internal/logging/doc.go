// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package logging provides centralized zerolog-based structured logging for Pushward.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once from LOG_LEVEL/LOG_FORMAT/LOG_CALLER
//   - Context-aware logging: correlation and notification IDs are attached by Ctx
//   - An slog adapter so the suture supervisor logs through zerolog
//   - Redaction helpers for device tokens, Web Push endpoints and provider bodies
//   - IntakeLogger for the delivery request consumer
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("port", 8086).Msg("Ops server listening")
//	logging.Ctx(ctx).Warn().Str("error_code", "RATE_LIMITED").Msg("Send failed")
//
// # Privacy
//
// Notification content is end-to-end encrypted and must never reach the logs.
// Log payloads only through the redacted view produced by the payload package,
// device targets through UserDevice.MaskedTarget or SanitizeToken, and provider
// error bodies through SanitizeProviderMessage.
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
