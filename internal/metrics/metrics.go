// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// namespace prefixes every series, e.g. pushward_push_attempts_total.
const namespace = "pushward"

var (
	// Push Provider Metrics
	PushAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_attempts_total",
			Help:      "Total number of provider send attempts",
		},
		[]string{"platform", "variant", "outcome"}, // outcome: "success", "too_large", "failed"
	)

	PushProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "push_provider_duration_seconds",
			Help:      "Duration of a single provider call in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"platform"},
	)

	PushErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_errors_total",
			Help:      "Total number of provider failures by error code",
		},
		[]string{"platform", "error_code"},
	)

	PushPayloadSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "push_payload_size_kib",
			Help:      "Serialized payload size in KiB",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 8, 16},
		},
		[]string{"platform", "variant"},
	)

	PushInvalidTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_invalid_tokens_total",
			Help:      "Total number of tokens reported as unregistered by the provider",
		},
		[]string{"platform"},
	)

	PushRateLimitWaits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "push_rate_limit_waits_total",
			Help:      "Total number of sends delayed by the local provider rate limiter",
		},
		[]string{"platform"},
	)

	// Delivery Ladder Metrics
	LadderTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_ladder_transitions_total",
			Help:      "Total number of delivery ladder state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	DeliveryResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_results_total",
			Help:      "Total number of per-device delivery results",
		},
		[]string{"platform", "final_state"},
	)

	DeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_duration_seconds",
			Help:      "Duration of a full notification delivery across all devices",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	DeliveryActiveDevices = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delivery_active_devices",
			Help:      "Current number of devices being delivered to",
		},
	)

	// Provider breakers (gobreaker), one per platform
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "breaker",
			Name:      "state",
			Help:      "Provider breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "breaker",
			Name:      "calls_total",
			Help:      "Provider calls seen by the breaker, by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "breaker",
			Name:      "consecutive_failures",
			Help:      "Provider health failures since the last success",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "breaker",
			Name:      "transitions_total",
			Help:      "Provider breaker state changes",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// NATS intake
	NATSMessagesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "requests_received_total",
			Help:      "Delivery requests taken off the request topic",
		},
	)

	NATSMessagesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "requests_delivered_total",
			Help:      "Delivery requests that produced a report",
		},
	)

	NATSMessagesParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "requests_rejected_total",
			Help:      "Delivery requests dropped as undecodable or invalid",
		},
	)

	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "reports_published_total",
			Help:      "Delivery reports published to the result topic",
		},
	)

	NATSProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "intake",
			Name:      "handle_duration_seconds",
			Help:      "Time from receiving a delivery request to publishing its report",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Ops HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Ops HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Ops HTTP request latency",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15},
		},
		[]string{"method", "route"},
	)

	// Build
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Always 1; labels carry the build version and Go runtime",
		},
		[]string{"version", "go_version"},
	)
)

// RecordPushAttempt records one provider call.
func RecordPushAttempt(platform, variant, outcome string, duration time.Duration, sizeKB float64) {
	PushAttempts.WithLabelValues(platform, variant, outcome).Inc()
	PushProviderDuration.WithLabelValues(platform).Observe(duration.Seconds())
	PushPayloadSize.WithLabelValues(platform, variant).Observe(sizeKB)
}

// RecordPushError records a classified provider failure.
func RecordPushError(platform, errorCode string) {
	PushErrors.WithLabelValues(platform, errorCode).Inc()
}

// RecordInvalidToken records a token the provider no longer accepts.
func RecordInvalidToken(platform string) {
	PushInvalidTokens.WithLabelValues(platform).Inc()
}

// RecordRateLimitWait records a send that had to wait for a limiter token.
func RecordRateLimitWait(platform string) {
	PushRateLimitWaits.WithLabelValues(platform).Inc()
}

// RecordLadderTransition records a delivery ladder transition.
func RecordLadderTransition(from, to string) {
	LadderTransitions.WithLabelValues(from, to).Inc()
}

// RecordDeliveryResult records the final state reached for one device.
func RecordDeliveryResult(platform, finalState string) {
	DeliveryResults.WithLabelValues(platform, finalState).Inc()
}

// RecordDelivery records the duration of a whole delivery.
func RecordDelivery(duration time.Duration) {
	DeliveryDuration.Observe(duration.Seconds())
}

// TrackActiveDevice tracks devices currently in a delivery ladder
func TrackActiveDevice(inc bool) {
	if inc {
		DeliveryActiveDevices.Inc()
	} else {
		DeliveryActiveDevices.Dec()
	}
}

// RecordAPIRequest records one ops HTTP request under its route pattern.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordNATSConsume() { NATSMessagesConsumed.Inc() }

// RecordNATSProcessed counts a request that produced a report.
func RecordNATSProcessed(duration time.Duration) {
	NATSMessagesProcessed.Inc()
	NATSProcessingDuration.Observe(duration.Seconds())
}

// RecordNATSParseFailed counts a request dropped without delivery.
func RecordNATSParseFailed() { NATSMessagesParseFailed.Inc() }

func RecordNATSPublish() { NATSMessagesPublished.Inc() }
