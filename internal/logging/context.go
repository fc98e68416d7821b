// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// deliveryScope is the per-request state carried through a context. It is
// copied on every derivation so parent contexts never observe changes.
type deliveryScope struct {
	correlationID  string
	notificationID string
	logger         *zerolog.Logger
}

type scopeKey struct{}

func scopeFrom(ctx context.Context) deliveryScope {
	if s, ok := ctx.Value(scopeKey{}).(deliveryScope); ok {
		return s
	}
	return deliveryScope{}
}

func withScope(ctx context.Context, mutate func(*deliveryScope)) context.Context {
	s := scopeFrom(ctx)
	mutate(&s)
	return context.WithValue(ctx, scopeKey{}, s)
}

// GenerateCorrelationID returns a short random id (8 hex characters) for
// requests that arrive without one.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// ContextWithCorrelationID tags ctx with a correlation id.
//
//	ctx = logging.ContextWithCorrelationID(ctx, msg.UUID)
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *deliveryScope) { s.correlationID = id })
}

// CorrelationIDFromContext returns the correlation id, or "".
func CorrelationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).correlationID
}

// ContextWithNotificationID tags ctx with the notification being delivered.
func ContextWithNotificationID(ctx context.Context, id string) context.Context {
	return withScope(ctx, func(s *deliveryScope) { s.notificationID = id })
}

// NotificationIDFromContext returns the notification id, or "".
func NotificationIDFromContext(ctx context.Context) string {
	return scopeFrom(ctx).notificationID
}

// ContextWithLogger pins a base logger for everything logged through ctx.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return withScope(ctx, func(s *deliveryScope) { s.logger = &logger })
}

// Ctx returns a logger carrying the correlation and notification ids of ctx.
//
//	logging.Ctx(ctx).Info().Str("platform", "IOS").Msg("Delivered")
func Ctx(ctx context.Context) *zerolog.Logger {
	logger := CtxWith(ctx).Logger()
	return &logger
}

// CtxWith is Ctx for callers that add fields of their own.
//
//	logger := logging.CtxWith(ctx).Str("device_id", id).Logger()
func CtxWith(ctx context.Context) zerolog.Context {
	base := global.Load()
	if pinned := scopeFrom(ctx).logger; pinned != nil {
		base = pinned
	}
	return scoped(ctx, base)
}

// scoped derives from base with the ids carried by ctx.
func scoped(ctx context.Context, base *zerolog.Logger) zerolog.Context {
	s := scopeFrom(ctx)
	logCtx := base.With()
	if s.correlationID != "" {
		logCtx = logCtx.Str("correlation_id", s.correlationID)
	}
	if s.notificationID != "" {
		logCtx = logCtx.Str("notification_id", s.notificationID)
	}
	return logCtx
}

// WithComponent derives a logger from the global one with a component field.
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
