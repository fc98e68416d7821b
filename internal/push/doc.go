// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package push provides the provider senders that hand built payloads to
// Apple Push Notification service, Firebase Cloud Messaging and Web Push
// services.
//
// Each sender implements the Sender interface:
//   - APNsSender: HTTP/2 provider API with an ES256 provider token (golang-jwt)
//   - FCMSender: FCM HTTP v1 with service account OAuth2 (golang.org/x/oauth2/google)
//   - WebPushSender: RFC 8291 message encryption and VAPID (webpush-go)
//
// Senders never return provider failures as Go errors. Send returns a Result
// whose ErrorCode classifies the failure (PAYLOAD_TOO_LARGE, INVALID_TOKEN,
// RATE_LIMITED, ...) so the delivery ladder can decide what to try next. The
// error return is reserved for programming errors such as a nil payload.
//
// Credentials are parsed lazily on the first send and the outcome memoized,
// so a broken key is reported on every send without being re-parsed. A
// provider that is disabled or missing credentials reports NOT_CONFIGURED.
//
// Every provider call passes through a guard: an optional token bucket
// (golang.org/x/time/rate) followed by a circuit breaker (sony/gobreaker).
// Only provider-side failures (server errors, timeouts, connection failures,
// throttling, rejected credentials) count against the breaker; a stale device
// token or an oversized payload says nothing about provider health. While the
// breaker is open sends fail fast with PROVIDER_UNAVAILABLE.
package push
