// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package logging

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// IntakeLogger provides logging for the delivery request intake.
// It is used by the Watermill handlers that consume delivery requests
// and publish delivery reports.
type IntakeLogger struct {
	logger zerolog.Logger
}

// NewIntakeLogger creates a logger configured for the intake component.
func NewIntakeLogger() *IntakeLogger {
	return &IntakeLogger{
		logger: WithComponent("intake"),
	}
}

// NewIntakeLoggerWithLogger creates an IntakeLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewIntakeLoggerWithLogger(logger zerolog.Logger) *IntakeLogger {
	return &IntakeLogger{
		logger: logger.With().Str("component", "intake").Logger(),
	}
}

func (l *IntakeLogger) with(ctx context.Context) *zerolog.Logger {
	logger := scoped(ctx, &l.logger).Logger()
	return &logger
}

// LogRequestReceived logs a delivery request taken off the queue.
func (l *IntakeLogger) LogRequestReceived(ctx context.Context, messageID string, devices int) {
	l.with(ctx).Debug().
		Str("message_id", messageID).
		Int("devices", devices).
		Msg("delivery request received")
}

// LogRequestRejected logs a request that can never be delivered (malformed or
// invalid) and is acknowledged without retry.
func (l *IntakeLogger) LogRequestRejected(ctx context.Context, messageID string, err error) {
	l.with(ctx).Warn().
		Str("message_id", messageID).
		Err(err).
		Msg("delivery request rejected")
}

// LogRequestDelivered logs a completed request with its outcome counts.
func (l *IntakeLogger) LogRequestDelivered(ctx context.Context, delivered, failed, skipped int, d time.Duration) {
	l.with(ctx).Info().
		Int("delivered", delivered).
		Int("failed", failed).
		Int("skipped", skipped).
		Dur("duration", d).
		Msg("delivery request completed")
}

// LogReportPublished logs a delivery report written to the result topic.
func (l *IntakeLogger) LogReportPublished(ctx context.Context, topic string) {
	l.with(ctx).Debug().
		Str("topic", topic).
		Msg("delivery report published")
}

// LogSubscriptionStarted logs the router subscribing to the request topic.
func (l *IntakeLogger) LogSubscriptionStarted(topic, queue string) {
	l.logger.Info().Str("topic", topic).Str("queue", queue).Msg("subscription started")
}

// LogRouterStopped logs the Watermill router returning.
func (l *IntakeLogger) LogRouterStopped() {
	l.logger.Info().Msg("router stopped")
}
