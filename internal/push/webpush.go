// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
)

// webPushMaxPayloadBytes is the largest plaintext accepted before the
// aes128gcm record overhead is added.
const webPushMaxPayloadBytes = 3993

// WebPushSender delivers browser payloads through RFC 8030 push services
// with VAPID authentication.
type WebPushSender struct {
	cfg    config.WebPushConfig
	client *http.Client
	guard  *guard
	logger zerolog.Logger
	now    func() time.Time
	vapid  *lazy[*vapidKeys]
}

// vapidKeys are the validated application server keys.
type vapidKeys struct {
	subscriber string
	public     string
	private    string
}

// transportError marks errors raised by the HTTP client, as opposed to
// errors raised while encrypting the record.
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// markingClient tags every transport failure with transportError.
type markingClient struct {
	client *http.Client
}

func (c markingClient) Do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &transportError{err: err}
	}
	return resp, nil
}

// NewWebPushSender creates a Web Push sender. VAPID keys are decoded on the
// first send.
func NewWebPushSender(cfg config.WebPushConfig, limits config.ProviderLimits, opts ...Option) *WebPushSender {
	o := newOptions("webpush", opts)

	s := &WebPushSender{
		cfg:    cfg,
		client: o.httpClient,
		guard:  newGuard(models.PlatformWeb, limits, *o.logger),
		logger: *o.logger,
		now:    o.now,
	}
	s.vapid = newLazy(s.loadKeys)
	return s
}

// Platform returns the platform served by this sender.
func (s *WebPushSender) Platform() models.Platform {
	return models.PlatformWeb
}

// Configured reports whether Web Push is enabled with VAPID credentials.
func (s *WebPushSender) Configured() bool {
	return s.cfg.Enabled && s.cfg.Subject != "" && s.cfg.VAPIDPublicKey != "" && s.cfg.VAPIDPrivateKey != ""
}

// Status reports configuration, initialization and breaker state. Web Push
// has no fixed endpoint.
func (s *WebPushSender) Status() ProviderStatus {
	return ProviderStatus{
		Platform:    models.PlatformWeb,
		Configured:  s.Configured(),
		Initialized: s.vapid.initialized(),
		Breaker:     s.guard.state(),
	}
}

// loadKeys checks the VAPID key sizes: a 65 byte uncompressed P-256 point
// and a 32 byte scalar.
func (s *WebPushSender) loadKeys() (*vapidKeys, error) {
	pub, err := decodeKey(s.cfg.VAPIDPublicKey)
	if err != nil {
		return nil, fmt.Errorf("VAPID public key: %w", err)
	}
	if len(pub) != 65 {
		return nil, fmt.Errorf("VAPID public key must be 65 bytes, got %d", len(pub))
	}
	priv, err := decodeKey(s.cfg.VAPIDPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("VAPID private key: %w", err)
	}
	if len(priv) != 32 {
		return nil, fmt.Errorf("VAPID private key must be 32 bytes, got %d", len(priv))
	}

	// The library adds the mailto: scheme itself.
	subscriber := strings.TrimPrefix(s.cfg.Subject, "mailto:")

	return &vapidKeys{
		subscriber: subscriber,
		public:     s.cfg.VAPIDPublicKey,
		private:    s.cfg.VAPIDPrivateKey,
	}, nil
}

// decodeKey accepts URL-safe or standard base64, padded or not.
func decodeKey(key string) ([]byte, error) {
	key = strings.TrimRight(strings.TrimSpace(key), "=")
	if b, err := base64.RawURLEncoding.DecodeString(key); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(key)
}

// Send encrypts built for the subscription and posts it to the push service.
func (s *WebPushSender) Send(ctx context.Context, device *models.UserDevice, built *payload.Built) (*Result, error) {
	if err := checkSendArgs(models.PlatformWeb, device, built); err != nil {
		return nil, err
	}
	if !s.Configured() {
		return s.guard.record(notConfigured(models.PlatformWeb)), nil
	}

	keys, err := s.vapid.get()
	if err != nil {
		return s.guard.record(failure(ErrorCodeNotConfigured, fmt.Sprintf("invalid VAPID keys: %v", err))), nil
	}

	sub := device.Subscription
	if sub == nil || sub.Endpoint == "" || sub.P256dh == "" || sub.Auth == "" {
		return s.guard.record(invalidToken("device has no complete Web Push subscription")), nil
	}

	if built.SizeBytes() > webPushMaxPayloadBytes {
		return s.guard.record(tooLarge(fmt.Sprintf("payload is %d bytes, Web Push limit is %d", built.SizeBytes(), webPushMaxPayloadBytes))), nil
	}

	return s.guard.do(ctx, func(ctx context.Context) *Result {
		return s.post(ctx, keys, sub, built)
	}), nil
}

// post encrypts and sends one message.
func (s *WebPushSender) post(ctx context.Context, keys *vapidKeys, sub *models.WebSubscription, built *payload.Built) *Result {
	opts := &webpush.Options{
		HTTPClient:      markingClient{client: s.client},
		Subscriber:      keys.subscriber,
		TTL:             int(s.cfg.TTL / time.Second),
		Urgency:         webpush.Urgency(built.Headers[payload.HeaderWebUrgency]),
		Topic:           built.Headers[payload.HeaderWebTopic],
		VAPIDPublicKey:  keys.public,
		VAPIDPrivateKey: keys.private,
	}

	resp, err := webpush.SendNotificationWithContext(ctx, built.Body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, opts)
	if err != nil {
		var te *transportError
		switch {
		case errors.Is(err, webpush.ErrMaxPadExceeded):
			return tooLarge("Web Push record size exceeded")
		case errors.As(err, &te):
			return failure(classifyHTTPError(te.err), fmt.Sprintf("failed to reach push service: %v", te.err))
		default:
			// A malformed p256dh or auth secret is a broken subscription.
			return failure(ErrorCodeCrypto, fmt.Sprintf("failed to encrypt Web Push message: %v", err))
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return &Result{
			Success:    true,
			StatusCode: resp.StatusCode,
			ExternalID: resp.Header.Get("Location"),
		}
	}

	body := readErrorBody(resp)

	var result *Result
	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusGone:
		result = invalidToken("push service expired the subscription")
	case http.StatusRequestEntityTooLarge:
		result = tooLarge("push service rejected payload size")
	case http.StatusTooManyRequests:
		result = failure(ErrorCodeRateLimited, "push service throttled requests")
		result.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), s.now())
	case http.StatusUnauthorized, http.StatusForbidden:
		result = failure(ErrorCodeAuthFailed, "push service rejected VAPID credentials")
	default:
		result = failure(classifyHTTPStatusCode(resp.StatusCode), "push service rejected message")
	}
	result.StatusCode = resp.StatusCode
	result.ErrorMessage = fmt.Sprintf("push service returned %d: %s", resp.StatusCode, logging.SanitizeProviderMessage(string(body)))

	s.logger.Debug().
		Int("status", resp.StatusCode).
		Str("endpoint", logging.SanitizeEndpoint(sub.Endpoint)).
		Msg("Push service rejected message")

	return result
}
