// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/metrics"
	"github.com/tomtom215/pushward/internal/models"
)

// errProviderFailure marks a Result that counts against the breaker.
var errProviderFailure = errors.New("provider failure")

// guard wraps provider calls with a rate limiter and a circuit breaker.
type guard struct {
	name     string
	platform models.Platform
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker[*Result]
	logger   zerolog.Logger
}

// newGuard creates the guard of one provider.
//
// The breaker allows 3 probe requests while half-open, resets its counts
// every BreakerInterval while closed and waits BreakerTimeout before probing.
// It opens once BreakerMinRequests calls were seen and the share of provider
// failures reaches BreakerFailureRatio. A ratio of 0 disables tripping.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func newGuard(platform models.Platform, limits config.ProviderLimits, logger zerolog.Logger) *guard {
	name := "push-" + strings.ToLower(string(platform))

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	g := &guard{
		name:     name,
		platform: platform,
		logger:   logger,
	}

	if limits.RatePerSecond > 0 {
		burst := limits.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(limits.RatePerSecond), burst)
	}

	g.cb = gobreaker.NewCircuitBreaker[*Result](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    limits.BreakerInterval,
		Timeout:     limits.BreakerTimeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if limits.BreakerFailureRatio <= 0 || counts.Requests < limits.BreakerMinRequests {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= limits.BreakerFailureRatio

			if shouldTrip {
				logger.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("Opening provider circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("breaker", name).Stringer("from", from).Stringer("to", to).Msg("Provider circuit state transition")

			// gobreaker numbers its states closed=0, half-open=1, open=2.
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return g
}

// do runs call under the limiter and breaker. It always returns a Result.
func (g *guard) do(ctx context.Context, call func(context.Context) *Result) *Result {
	if g.limiter != nil {
		if g.limiter.Tokens() < 1 {
			metrics.RecordRateLimitWait(string(g.platform))
		}
		if err := g.limiter.Wait(ctx); err != nil {
			return g.record(failure(ErrorCodeRateLimited, fmt.Sprintf("local rate limit: %v", err)))
		}
	}

	result, err := g.cb.Execute(func() (*Result, error) {
		r := call(ctx)
		if r == nil {
			r = failure(ErrorCodeUnknown, "provider call returned no result")
		}
		if !r.Success && isProviderFailure(r.ErrorCode) {
			return r, errProviderFailure
		}
		return r, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "rejected").Inc()
		g.logger.Debug().Str("breaker", g.name).Err(err).Msg("Provider call rejected")
		return g.record(failure(ErrorCodeProviderUnavailable, fmt.Sprintf("%s circuit breaker: %v", g.platform, err)))

	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(g.name, "failure").Inc()
		counts := g.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(g.name).Set(float64(counts.ConsecutiveFailures))
		return g.record(result)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(g.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(g.name).Set(0)
	return g.record(result)
}

// record updates failure metrics for r and returns it.
func (g *guard) record(r *Result) *Result {
	if r.Success {
		return r
	}
	metrics.RecordPushError(string(g.platform), r.ErrorCode)
	if r.TokenInvalid {
		metrics.RecordInvalidToken(string(g.platform))
	}
	return r
}

// state returns the breaker state for status reporting.
func (g *guard) state() string {
	return g.cb.State().String()
}
