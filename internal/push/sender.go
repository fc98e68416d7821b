// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
)

// ErrNotConfigured is the cause recorded for sends to a provider that is
// disabled or missing credentials.
var ErrNotConfigured = errors.New("push provider not configured")

// Sender delivers a built payload to one push provider.
type Sender interface {
	// Platform returns the device platform this sender serves.
	Platform() models.Platform

	// Configured reports whether credentials are present. It does not parse
	// or verify them.
	Configured() bool

	// Send delivers built to device. Provider failures are reported in the
	// Result, never as an error.
	Send(ctx context.Context, device *models.UserDevice, built *payload.Built) (*Result, error)
}

// Result is the outcome of one provider call.
type Result struct {
	// Success indicates the provider accepted the payload.
	Success bool

	// StatusCode is the HTTP status returned by the provider (0 if no response).
	StatusCode int

	// ErrorCode is a machine-readable failure class.
	ErrorCode string

	// ErrorMessage contains sanitized failure details.
	ErrorMessage string

	// Reason is the provider's own error identifier (APNs reason, FCM errorCode).
	Reason string

	// PayloadTooLarge is set when the provider rejected the payload size.
	PayloadTooLarge bool

	// TokenInvalid marks a device token or subscription the provider will
	// never accept again.
	TokenInvalid bool

	// IsTransient indicates the failure may succeed if retried later.
	IsTransient bool

	// RetryAfter is the provider's requested back-off, when given.
	RetryAfter *time.Duration

	// ExternalID is the provider message id (apns-id, FCM name, Location).
	ExternalID string
}

// Error codes for push failures.
const (
	ErrorCodeCrypto              = "CRYPTO_ERROR"
	ErrorCodePayloadTooLarge     = "PAYLOAD_TOO_LARGE"
	ErrorCodeInvalidToken        = "INVALID_TOKEN"
	ErrorCodeAuthFailed          = "AUTH_FAILED"
	ErrorCodeNotConfigured       = "NOT_CONFIGURED"
	ErrorCodeProviderUnavailable = "PROVIDER_UNAVAILABLE"
	ErrorCodeRateLimited         = "RATE_LIMITED"
	ErrorCodeTimeout             = "TIMEOUT"
	ErrorCodeConnectionFailed    = "CONNECTION_FAILED"
	ErrorCodeServerError         = "SERVER_ERROR"
	ErrorCodeBadRequest          = "BAD_REQUEST"
	ErrorCodeUnknown             = "UNKNOWN"
)

// failure builds a failed Result for code.
func failure(code, message string) *Result {
	return &Result{
		ErrorCode:    code,
		ErrorMessage: message,
		IsTransient:  isTransientError(code),
	}
}

// notConfigured is the Result for a provider without usable credentials.
func notConfigured(platform models.Platform) *Result {
	return failure(ErrorCodeNotConfigured, fmt.Sprintf("%s: %v", platform, ErrNotConfigured))
}

// tooLarge is the Result for a payload the provider will not accept.
func tooLarge(message string) *Result {
	r := failure(ErrorCodePayloadTooLarge, message)
	r.PayloadTooLarge = true
	return r
}

// invalidToken is the Result for a token or subscription that is gone.
func invalidToken(message string) *Result {
	r := failure(ErrorCodeInvalidToken, message)
	r.TokenInvalid = true
	return r
}

// checkSendArgs rejects calls that can never be sent.
func checkSendArgs(platform models.Platform, device *models.UserDevice, built *payload.Built) error {
	if device == nil {
		return fmt.Errorf("%s send: nil device", platform)
	}
	if built == nil {
		return fmt.Errorf("%s send: nil payload", platform)
	}
	if built.Platform != "" && built.Platform != platform {
		return fmt.Errorf("%s send: payload built for %s", platform, built.Platform)
	}
	return nil
}
