// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pushward/internal/actions"
	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/envelope"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/metrics"
	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
	"github.com/tomtom215/pushward/internal/push"
)

// ErrInvalidRequest is returned for requests that cannot be delivered at all.
var ErrInvalidRequest = errors.New("invalid delivery request")

// Senders resolves the provider sender of a platform.
type Senders interface {
	Sender(platform models.Platform) (push.Sender, bool)
}

// Orchestrator delivers notifications to devices, driving the size-failure
// ladder for each device.
type Orchestrator struct {
	senders        Senders
	logger         zerolog.Logger
	parallelism    int
	requestTimeout time.Duration
	allowPlain     bool
	audit          bool
}

// New creates an orchestrator.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func New(senders Senders, cfg config.DeliveryConfig, logger zerolog.Logger) *Orchestrator {
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 10
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	return &Orchestrator{
		senders:        senders,
		logger:         logger.With().Str("component", "delivery").Logger(),
		parallelism:    cfg.Parallelism,
		requestTimeout: cfg.RequestTimeout,
		allowPlain:     cfg.AllowUnencryptedRetry,
		audit:          cfg.AuditPayloads,
	}
}

// Deliver sends req.Notification to every device. Per-device failures are
// reported in the Report; an error is returned only for unusable requests.
func (o *Orchestrator) Deliver(ctx context.Context, req *Request) (*Report, error) {
	if req == nil || req.Notification == nil {
		return nil, fmt.Errorf("%w: missing notification", ErrInvalidRequest)
	}
	if req.Notification.Message == nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, payload.ErrMissingMessage)
	}

	n := req.Notification
	report := &Report{
		NotificationID: n.ID,
		MessageID:      n.Message.ID,
		StartedAt:      time.Now(),
	}

	ctx = logging.ContextWithNotificationID(ctx, n.ID)
	logger := o.logger.With().
		Str("notification_id", n.ID).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Logger()

	if n.Message.DeliveryType == models.DeliveryTypeNoPush {
		report.Skipped = true
		report.Results = []SendResult{}
		report.CompletedAt = report.StartedAt
		logger.Debug().Int("devices", len(req.Devices)).Msg("NO_PUSH message, skipping delivery")
		return report, nil
	}

	allowPlain := o.allowPlain
	if req.AllowUnencryptedRetry != nil {
		allowPlain = *req.AllowUnencryptedRetry
	}

	logger.Info().
		Int("devices", len(req.Devices)).
		Str("delivery_type", string(n.Message.DeliveryType)).
		Msg("starting push delivery")

	report.Results = make([]SendResult, len(req.Devices))
	actionSets := platformActions(req)

	jobs := make(chan int, len(req.Devices))
	var wg sync.WaitGroup

	workerCount := o.parallelism
	if workerCount > len(req.Devices) {
		workerCount = len(req.Devices)
	}

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				report.Results[idx] = o.deliverToDevice(ctx, &logger, req, req.Devices[idx], actionSets, allowPlain)
			}
		}()
	}

	for i := range req.Devices {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i := range report.Results {
		if report.Results[i].Success {
			report.Delivered++
		} else {
			report.Failed++
		}
	}
	report.Success = report.Delivered > 0

	report.CompletedAt = time.Now()
	duration := report.CompletedAt.Sub(report.StartedAt)
	report.DurationMS = duration.Milliseconds()
	metrics.RecordDelivery(duration)

	logger.Info().
		Int("delivered", report.Delivered).
		Int("failed", report.Failed).
		Int64("duration_ms", report.DurationMS).
		Msg("push delivery completed")

	return report, nil
}

// deliverToDevice runs the ladder for one device.
func (o *Orchestrator) deliverToDevice(ctx context.Context, parent *zerolog.Logger, req *Request, device *models.UserDevice, actionSets map[models.Platform][]models.NotificationAction, allowPlain bool) SendResult {
	if device == nil {
		return SendResult{
			FinalState: StateDoneFailure,
			Error:      "nil device",
			ErrorCode:  push.ErrorCodeBadRequest,
		}
	}

	result := SendResult{
		DeviceID: device.ID,
		Platform: device.Platform,
		Token:    device.MaskedTarget(),
	}
	logger := parent.With().
		Str("device_id", device.ID).
		Str("platform", string(device.Platform)).
		Logger()

	finish := func(state State) SendResult {
		result.FinalState = state
		result.Success = state == StateDoneSuccess
		metrics.RecordDeliveryResult(string(device.Platform), string(state))
		return result
	}

	if !device.Platform.IsValid() {
		result.Error = fmt.Sprintf("unsupported platform %q", device.Platform)
		result.ErrorCode = push.ErrorCodeBadRequest
		return finish(StateDoneFailure)
	}

	sender, ok := o.senders.Sender(device.Platform)
	if !ok {
		result.Error = fmt.Sprintf("%s: %v", device.Platform, push.ErrNotConfigured)
		result.ErrorCode = push.ErrorCodeNotConfigured
		return finish(StateDoneFailure)
	}

	view, err := payload.NewView(req.Notification, device, actionSets[device.Platform])
	if err != nil {
		result.Error = err.Error()
		result.ErrorCode = push.ErrorCodeBadRequest
		return finish(StateDoneFailure)
	}

	metrics.TrackActiveDevice(true)
	defer metrics.TrackActiveDevice(false)

	policy := Policy{
		AllowPlain: allowPlain,
		Ladder:     device.Platform != models.PlatformWeb,
	}

	state := Initial(device.HasPublicKey())
	for !state.Terminal() {
		variant := state.Variant()
		attempt := Attempt{State: state, Variant: variant}

		built, err := build(view, device.Platform, variant)
		if err != nil {
			code := buildErrorCode(err, variant)
			// Never log content or the error text of the sealing step.
			logger.Warn().
				Str("state", string(state)).
				Str("error_code", code).
				Msg("failed to build push payload")

			attempt.ErrorCode = code
			result.Attempts = append(result.Attempts, attempt)
			result.Error = "failed to build payload"
			result.ErrorCode = code
			o.transition(&logger, state, StateDoneFailure)
			return finish(StateDoneFailure)
		}

		attempt.PayloadSizeKB = built.SizeKB()
		result.PayloadSizeKB = built.SizeKB()
		result.Redacted = built.Redacted

		if o.audit {
			logger.Debug().
				Str("state", string(state)).
				RawJSON("payload", built.Redacted).
				Msg("push payload")
		}

		res, elapsed := o.send(ctx, sender, device, built)
		attempt.Duration = elapsed
		attempt.Success = res.Success
		attempt.StatusCode = res.StatusCode
		attempt.ErrorCode = res.ErrorCode
		result.Attempts = append(result.Attempts, attempt)

		outcome := classify(res)
		metrics.RecordPushAttempt(string(device.Platform), string(variant), string(outcome), elapsed, built.SizeKB())

		if res.PayloadTooLarge {
			result.PayloadTooLarge = true
		}
		if res.TokenInvalid {
			result.TokenInvalid = true
		}
		if res.Success {
			result.Error = ""
			result.ErrorCode = ""
			result.RetrySuccess = state.Retry()
		} else {
			result.Error = res.ErrorMessage
			result.ErrorCode = res.ErrorCode
		}

		next := Next(state, outcome, policy)
		if next == StateRetryPlain {
			result.RetriedWithoutEncryption = true
		}
		o.transition(&logger, state, next)
		state = next
	}

	if state == StateDoneFailure {
		logger.Warn().
			Str("error_code", result.ErrorCode).
			Str("token", result.Token).
			Int("attempts", len(result.Attempts)).
			Msg("push delivery failed")
	}

	return finish(state)
}

// platformActions encodes the action list once for each platform present in
// the request. Workers only read the returned map.
func platformActions(req *Request) map[models.Platform][]models.NotificationAction {
	sets := make(map[models.Platform][]models.NotificationAction)
	for _, device := range req.Devices {
		if device == nil || !device.Platform.IsValid() {
			continue
		}
		if _, done := sets[device.Platform]; done {
			continue
		}
		sets[device.Platform] = actions.BuildActions(req.Notification.Message, req.Notification.ID, device.Platform, req.Settings)
	}
	return sets
}

// send performs one provider call bounded by the request timeout.
func (o *Orchestrator) send(ctx context.Context, sender push.Sender, device *models.UserDevice, built *payload.Built) (*push.Result, time.Duration) {
	callCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()

	start := time.Now()
	res, err := sender.Send(callCtx, device, built)
	elapsed := time.Since(start)

	if err != nil {
		return &push.Result{ErrorCode: push.ErrorCodeUnknown, ErrorMessage: err.Error()}, elapsed
	}
	if res == nil {
		return &push.Result{ErrorCode: push.ErrorCodeUnknown, ErrorMessage: "sender returned no result"}, elapsed
	}
	if !res.Success && errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		res.ErrorCode = push.ErrorCodeTimeout
	}
	return res, elapsed
}

func (o *Orchestrator) transition(logger *zerolog.Logger, from, to State) {
	metrics.RecordLadderTransition(string(from), string(to))
	logger.Debug().Str("from", string(from)).Str("to", string(to)).Msg("ladder transition")
}

// classify maps a provider result to a ladder outcome.
func classify(res *push.Result) Outcome {
	switch {
	case res.Success:
		return OutcomeSuccess
	case res.PayloadTooLarge:
		return OutcomeTooLarge
	default:
		return OutcomeFailed
	}
}

// build serializes the view for platform in variant.
func build(v *payload.View, platform models.Platform, variant payload.Variant) (*payload.Built, error) {
	switch platform {
	case models.PlatformIOS:
		return payload.BuildIOS(v, variant)
	case models.PlatformAndroid:
		return payload.BuildFCM(v, variant)
	case models.PlatformWeb:
		return payload.BuildWeb(v, variant)
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
}

// buildErrorCode classifies a payload build failure. Any failure of the
// sealing step is a crypto error.
func buildErrorCode(err error, variant payload.Variant) string {
	switch {
	case variant == payload.VariantEncrypted,
		errors.Is(err, envelope.ErrInvalidPublicKey),
		errors.Is(err, envelope.ErrMalformedEnvelope),
		errors.Is(err, payload.ErrNoPublicKey):
		return push.ErrorCodeCrypto
	default:
		return push.ErrorCodeUnknown
	}
}
