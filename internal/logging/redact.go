// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package logging

import (
	"net/url"
	"strings"
)

// SanitizeToken masks a device token or credential, showing only the first
// and last 4 characters.
// Example: "a1b2c3d4e5f6a7b8c9d0" -> "a1b2...c9d0"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeEndpoint reduces a Web Push endpoint to scheme and host. The path
// of an endpoint identifies the subscription and is a bearer capability.
// Example: "https://fcm.googleapis.com/fcm/send/abc" -> "https://fcm.googleapis.com/..."
func SanitizeEndpoint(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Scheme + "://" + u.Host + "/..."
}

// sensitiveMarkers flag provider responses that echo credentials.
var sensitiveMarkers = []string{
	"bearer ",
	"authorization",
	"private key",
	"private_key",
}

// SanitizeProviderMessage prepares a provider error body for logs and
// delivery reports: credentials are never echoed and long bodies are cut.
func SanitizeProviderMessage(msg string) string {
	lower := strings.ToLower(msg)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return "provider response withheld"
		}
	}
	return truncateString(strings.TrimSpace(msg), 200)
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
