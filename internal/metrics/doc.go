// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package metrics holds the Prometheus collectors. They register on the default
registry through promauto and are served by the ops router at /metrics. Every
series is prefixed pushward_.

Push (labels platform, variant, outcome, error_code):

	push_attempts_total  push_provider_duration_seconds  push_errors_total
	push_payload_size_kib  push_invalid_tokens_total  push_rate_limit_waits_total

Delivery ladder:

	delivery_ladder_transitions_total{from_state,to_state}
	delivery_results_total{platform,final_state}
	delivery_duration_seconds  delivery_active_devices

Provider breakers (label name is the platform):

	breaker_state  breaker_calls_total{result}  breaker_consecutive_failures
	breaker_transitions_total{from_state,to_state}

NATS intake:

	intake_requests_received_total  intake_requests_delivered_total
	intake_requests_rejected_total  intake_reports_published_total
	intake_handle_duration_seconds

Ops HTTP:

	http_requests_total{method,route,status}  http_request_duration_seconds

Label values are platform, variant, state and error code strings only;
payload contents never appear.

	metrics.RecordPushAttempt("IOS", "encrypted", "success", elapsed, built.SizeKB())
*/
package metrics
