// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"slices"
	"strings"
)

var (
	httpSchemes = []string{"http", "https"}
	natsSchemes = []string{"nats", "tls", "ws", "wss"}
)

// checkEndpoint parses raw and requires one of schemes plus a host.
// Provider base URLs get paths appended at request time, so a query
// string is never meaningful and is rejected.
func checkEndpoint(raw string, schemes []string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("unparseable URL: %w", err)
	}
	if !slices.Contains(schemes, u.Scheme) {
		return nil, fmt.Errorf("scheme must be %s, got %q", strings.Join(schemes, " or "), u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if u.RawQuery != "" {
		return nil, fmt.Errorf("must not contain a query string")
	}
	return u, nil
}

// validateHTTPURL checks a provider base URL and prefixes errors with the
// environment variable that configures it.
func validateHTTPURL(raw, envName string) error {
	if _, err := checkEndpoint(raw, httpSchemes); err != nil {
		return fmt.Errorf("%s %w", envName, err)
	}
	return nil
}

// validateNATSURL accepts the comma separated server list understood by
// nats.Connect ("nats://a:4222,nats://b:4222").
func validateNATSURL(raw string) error {
	for i, server := range strings.Split(raw, ",") {
		if _, err := checkEndpoint(strings.TrimSpace(server), natsSchemes); err != nil {
			return fmt.Errorf("server %d: %w", i+1, err)
		}
	}
	return nil
}

// validateVAPIDSubject checks the RFC 8292 contact: a mailto: address or an
// https URL.
func validateVAPIDSubject(subject string) error {
	if addr, ok := strings.CutPrefix(subject, "mailto:"); ok {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("VAPID_SUBJECT mailto: address is invalid: %w", err)
		}
		return nil
	}
	if !strings.HasPrefix(subject, "https://") {
		return fmt.Errorf("VAPID_SUBJECT must start with mailto: or https://")
	}
	return validateHTTPURL(subject, "VAPID_SUBJECT")
}
