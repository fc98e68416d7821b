// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxErrorBody bounds how much of a provider error response is read.
const maxErrorBody = 4096

// classifyHTTPStatusCode maps a provider HTTP status to an error code.
func classifyHTTPStatusCode(statusCode int) string {
	switch {
	case statusCode == http.StatusBadRequest:
		return ErrorCodeBadRequest
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorCodeAuthFailed
	case statusCode == http.StatusNotFound, statusCode == http.StatusGone:
		return ErrorCodeInvalidToken
	case statusCode == http.StatusRequestEntityTooLarge:
		return ErrorCodePayloadTooLarge
	case statusCode == http.StatusTooManyRequests:
		return ErrorCodeRateLimited
	case statusCode >= 500:
		return ErrorCodeServerError
	default:
		return ErrorCodeUnknown
	}
}

// classifyHTTPError maps a transport error to an error code.
func classifyHTTPError(err error) string {
	if err == nil {
		return ErrorCodeUnknown
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCodeUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCodeTimeout
	}

	// Anything else failed before a response arrived: refused, reset, DNS, TLS.
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline") {
		return ErrorCodeTimeout
	}
	return ErrorCodeConnectionFailed
}

// isTransientError returns true if the error code indicates a transient failure.
func isTransientError(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeServerError,
		ErrorCodeRateLimited, ErrorCodeProviderUnavailable:
		return true
	default:
		return false
	}
}

// isProviderFailure reports whether a failure reflects provider health and
// should count against the circuit breaker.
func isProviderFailure(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeServerError,
		ErrorCodeRateLimited, ErrorCodeAuthFailed:
		return true
	default:
		return false
	}
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func parseRetryAfter(value string, now time.Time) *time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		d := time.Duration(seconds) * time.Second
		return &d
	}
	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return &d
	}
	return nil
}

// readErrorBody reads a bounded prefix of a provider response body.
func readErrorBody(resp *http.Response) []byte {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return []byte("(failed to read response)")
	}
	return body
}
