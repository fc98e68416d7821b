// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
)

// APNs provider API hosts.
const (
	APNsProductionEndpoint = "https://api.push.apple.com"
	APNsSandboxEndpoint    = "https://api.sandbox.push.apple.com"
)

const (
	// apnsTokenLifetime is how long a provider token is reused. Apple rejects
	// tokens older than one hour and throttles refreshes under 20 minutes.
	apnsTokenLifetime = 50 * time.Minute

	// apnsMaxPayloadBytes is the APNs limit for regular notifications.
	apnsMaxPayloadBytes = 4096
)

// APNs reasons that mean the token will never be accepted again.
var apnsInvalidTokenReasons = map[string]bool{
	"BadDeviceToken":         true,
	"Unregistered":           true,
	"DeviceTokenNotForTopic": true,
}

// APNs reasons that mean the provider token was rejected.
var apnsProviderTokenReasons = map[string]bool{
	"ExpiredProviderToken": true,
	"InvalidProviderToken": true,
	"MissingProviderToken": true,
}

// APNsSender delivers iOS payloads through the APNs provider API.
type APNsSender struct {
	cfg      config.APNsConfig
	endpoint string
	client   *http.Client
	guard    *guard
	logger   zerolog.Logger
	now      func() time.Time
	signer   *lazy[*apnsSigner]
}

// NewAPNsSender creates an APNs sender. The signing key is parsed on the
// first send.
func NewAPNsSender(cfg config.APNsConfig, limits config.ProviderLimits, opts ...Option) *APNsSender {
	o := newOptions("apns", opts)

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = APNsSandboxEndpoint
		if cfg.Production {
			endpoint = APNsProductionEndpoint
		}
	}

	s := &APNsSender{
		cfg:      cfg,
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   o.httpClient,
		guard:    newGuard(models.PlatformIOS, limits, *o.logger),
		logger:   *o.logger,
		now:      o.now,
	}
	s.signer = newLazy(func() (*apnsSigner, error) {
		return newAPNsSigner(cfg)
	})
	return s
}

// Platform returns the platform served by this sender.
func (s *APNsSender) Platform() models.Platform {
	return models.PlatformIOS
}

// Configured reports whether APNs is enabled with a complete credential set.
func (s *APNsSender) Configured() bool {
	return s.cfg.Enabled && s.cfg.KeyID != "" && s.cfg.TeamID != "" &&
		s.cfg.BundleID != "" && s.cfg.PrivateKey != ""
}

// Status reports configuration, initialization and breaker state.
func (s *APNsSender) Status() ProviderStatus {
	return ProviderStatus{
		Platform:    models.PlatformIOS,
		Configured:  s.Configured(),
		Initialized: s.signer.initialized(),
		Breaker:     s.guard.state(),
		Endpoint:    s.endpoint,
	}
}

// Send delivers an iOS payload to the device token.
func (s *APNsSender) Send(ctx context.Context, device *models.UserDevice, built *payload.Built) (*Result, error) {
	if err := checkSendArgs(models.PlatformIOS, device, built); err != nil {
		return nil, err
	}
	if !s.Configured() {
		return s.guard.record(notConfigured(models.PlatformIOS)), nil
	}

	signer, err := s.signer.get()
	if err != nil {
		return s.guard.record(failure(ErrorCodeNotConfigured, fmt.Sprintf("invalid APNs signing key: %v", err))), nil
	}

	token := strings.TrimSpace(device.DeviceToken)
	if token == "" {
		return s.guard.record(invalidToken("device has no APNs token")), nil
	}

	if built.SizeBytes() > apnsMaxPayloadBytes {
		return s.guard.record(tooLarge(fmt.Sprintf("payload is %d bytes, APNs limit is %d", built.SizeBytes(), apnsMaxPayloadBytes))), nil
	}

	return s.guard.do(ctx, func(ctx context.Context) *Result {
		return s.post(ctx, signer, token, built)
	}), nil
}

// post performs one provider API request.
func (s *APNsSender) post(ctx context.Context, signer *apnsSigner, token string, built *payload.Built) *Result {
	endpoint := s.endpoint + "/3/device/" + url.PathEscape(token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(built.Body))
	if err != nil {
		return failure(ErrorCodeUnknown, fmt.Sprintf("failed to create request: %v", err))
	}

	now := s.now()
	bearer, err := signer.bearer(now)
	if err != nil {
		return failure(ErrorCodeAuthFailed, fmt.Sprintf("failed to sign provider token: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "bearer "+bearer)
	req.Header.Set("apns-topic", s.cfg.BundleID)
	for key, value := range built.Headers {
		req.Header.Set(key, value)
	}
	if s.cfg.Expiration > 0 {
		req.Header.Set("apns-expiration", strconv.FormatInt(now.Add(s.cfg.Expiration).Unix(), 10))
	} else {
		req.Header.Set("apns-expiration", "0")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return failure(classifyHTTPError(err), fmt.Sprintf("failed to reach APNs: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return &Result{
			Success:    true,
			StatusCode: resp.StatusCode,
			ExternalID: resp.Header.Get("apns-id"),
		}
	}

	body := readErrorBody(resp)
	var apnsErr struct {
		Reason string `json:"reason"`
	}
	_ = json.Unmarshal(body, &apnsErr)

	result := s.classify(resp.StatusCode, apnsErr.Reason)
	result.StatusCode = resp.StatusCode
	result.Reason = apnsErr.Reason
	result.ErrorMessage = fmt.Sprintf("APNs returned %d: %s", resp.StatusCode, logging.SanitizeProviderMessage(apnsErr.Reason))
	if resp.StatusCode == http.StatusTooManyRequests {
		result.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), s.now())
	}

	s.logger.Debug().
		Int("status", resp.StatusCode).
		Str("reason", apnsErr.Reason).
		Str("token", logging.SanitizeToken(token)).
		Msg("APNs rejected notification")

	return result
}

// classify maps an APNs status and reason to a Result.
func (s *APNsSender) classify(status int, reason string) *Result {
	switch {
	case status == http.StatusRequestEntityTooLarge || reason == "PayloadTooLarge":
		return tooLarge("APNs rejected payload size")
	case status == http.StatusGone || apnsInvalidTokenReasons[reason]:
		return invalidToken("APNs rejected device token")
	case apnsProviderTokenReasons[reason]:
		if signer, err := s.signer.get(); err == nil {
			signer.invalidate()
		}
		return failure(ErrorCodeAuthFailed, "APNs rejected provider token")
	case reason == "TooManyProviderTokenUpdates" || status == http.StatusTooManyRequests:
		return failure(ErrorCodeRateLimited, "APNs throttled requests")
	case status == http.StatusNotFound:
		// 404 is BadPath on APNs, never a token problem.
		return failure(ErrorCodeBadRequest, "APNs rejected request path")
	default:
		return failure(classifyHTTPStatusCode(status), "APNs rejected notification")
	}
}

// apnsSigner issues and caches ES256 provider tokens.
type apnsSigner struct {
	key    *ecdsa.PrivateKey
	keyID  string
	teamID string

	mu       sync.Mutex
	token    string
	issuedAt time.Time
}

func newAPNsSigner(cfg config.APNsConfig) (*apnsSigner, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse .p8 key: %w", err)
	}
	return &apnsSigner{
		key:    key,
		keyID:  cfg.KeyID,
		teamID: cfg.TeamID,
	}, nil
}

// bearer returns a cached provider token, signing a new one when the cached
// token is older than apnsTokenLifetime.
func (s *apnsSigner) bearer(now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && now.Sub(s.issuedAt) < apnsTokenLifetime {
		return s.token, nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": s.teamID,
		"iat": now.Unix(),
	})
	token.Header["kid"] = s.keyID

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", err
	}

	s.token = signed
	s.issuedAt = now
	return signed, nil
}

// invalidate drops the cached token so the next send signs a fresh one.
func (s *apnsSigner) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}
