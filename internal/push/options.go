// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/tomtom215/pushward/internal/logging"
)

// options holds the injectable collaborators of a sender.
type options struct {
	httpClient  *http.Client
	logger      *zerolog.Logger
	now         func() time.Time
	tokenSource oauth2.TokenSource
}

// Option configures a sender.
type Option func(*options)

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithLogger sets the sender logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithClock overrides time.Now, used for provider token lifetimes.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithTokenSource replaces the service account token source of the FCM
// sender. Other senders ignore it.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *options) {
		o.tokenSource = ts
	}
}

// newOptions applies opts over defaults. component names the default logger.
func newOptions(component string, opts []Option) *options {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	if o.httpClient == nil {
		o.httpClient = defaultHTTPClient()
	}
	if o.logger == nil {
		l := logging.WithComponent(component)
		o.logger = &l
	} else {
		l := o.logger.With().Str("component", component).Logger()
		o.logger = &l
	}
	return o
}

// defaultHTTPClient returns a client tuned for long-lived provider
// connections. APNs requires HTTP/2.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			ForceAttemptHTTP2:   true,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}
