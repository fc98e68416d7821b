// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package api provides the ops HTTP surface using the Chi router.

Endpoints:

	GET  /healthz           liveness, always 200 while the process serves
	GET  /readyz            readiness, 503 until every readiness check passes
	GET  /metrics           Prometheus exposition
	GET  /api/v1/providers  provider configuration and circuit breaker state
	POST /api/v1/deliver    synchronous delivery (only when enabled)

Every request gets an X-Request-ID and a correlation id in its logging
context, and is counted in the API request metrics by route pattern.

The deliver endpoint accepts the same JSON request as the broker intake and
answers with the delivery report. It carries device tokens and private keys
in the request body, so it is disabled by default and must only be exposed
on a private network.
*/
package api
