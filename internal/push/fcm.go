// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/logging"
	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
)

// FCMDefaultEndpoint is the FCM HTTP v1 API base URL.
const FCMDefaultEndpoint = "https://fcm.googleapis.com"

// fcmScope is the OAuth2 scope required by messages:send.
const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

// FCMSender delivers Android payloads through the FCM HTTP v1 API.
type FCMSender struct {
	cfg         config.FCMConfig
	endpoint    string
	base        *http.Client
	tokenSource oauth2.TokenSource
	guard       *guard
	logger      zerolog.Logger
	now         func() time.Time
	client      *lazy[*fcmClient]
}

// fcmClient is the authorized HTTP client and target project.
type fcmClient struct {
	http      *http.Client
	projectID string
}

// fcmErrorResponse is the google.rpc.Status error body.
type fcmErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type      string `json:"@type"`
			ErrorCode string `json:"errorCode"`
		} `json:"details"`
	} `json:"error"`
}

// errorCode returns the FcmError code from the details, if any.
func (e *fcmErrorResponse) errorCode() string {
	for _, d := range e.Error.Details {
		if d.ErrorCode != "" {
			return d.ErrorCode
		}
	}
	return ""
}

// NewFCMSender creates an FCM sender. The service account is parsed on the
// first send.
func NewFCMSender(cfg config.FCMConfig, limits config.ProviderLimits, opts ...Option) *FCMSender {
	o := newOptions("fcm", opts)

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = FCMDefaultEndpoint
	}

	s := &FCMSender{
		cfg:         cfg,
		endpoint:    strings.TrimRight(endpoint, "/"),
		base:        o.httpClient,
		tokenSource: o.tokenSource,
		guard:       newGuard(models.PlatformAndroid, limits, *o.logger),
		logger:      *o.logger,
		now:         o.now,
	}
	s.client = newLazy(s.newClient)
	return s
}

// Platform returns the platform served by this sender.
func (s *FCMSender) Platform() models.Platform {
	return models.PlatformAndroid
}

// Configured reports whether FCM is enabled with credentials.
func (s *FCMSender) Configured() bool {
	return s.cfg.Enabled && (s.cfg.CredentialsJSON != "" || s.tokenSource != nil)
}

// Status reports configuration, initialization and breaker state.
func (s *FCMSender) Status() ProviderStatus {
	return ProviderStatus{
		Platform:    models.PlatformAndroid,
		Configured:  s.Configured(),
		Initialized: s.client.initialized(),
		Breaker:     s.guard.state(),
		Endpoint:    s.endpoint,
	}
}

// newClient builds the OAuth2 client from the service account.
func (s *FCMSender) newClient() (*fcmClient, error) {
	projectID := s.cfg.ProjectID

	if projectID == "" && s.cfg.CredentialsJSON != "" {
		var account struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal([]byte(s.cfg.CredentialsJSON), &account); err != nil {
			return nil, fmt.Errorf("failed to parse service account: %w", err)
		}
		projectID = account.ProjectID
	}
	if projectID == "" {
		return nil, errors.New("FCM project id is not configured and not present in the service account")
	}

	ts := s.tokenSource
	if ts == nil {
		conf, err := google.JWTConfigFromJSON([]byte(s.cfg.CredentialsJSON), fcmScope)
		if err != nil {
			return nil, fmt.Errorf("failed to load service account: %w", err)
		}
		// Token requests use the same transport as FCM calls.
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, s.base)
		ts = conf.TokenSource(tokenCtx)
	}

	base := s.base.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &fcmClient{
		http: &http.Client{
			Timeout: s.base.Timeout,
			Transport: &oauth2.Transport{
				Source: oauth2.ReuseTokenSource(nil, ts),
				Base:   base,
			},
		},
		projectID: projectID,
	}, nil
}

// Send delivers an FCM v1 request body to the device token.
func (s *FCMSender) Send(ctx context.Context, device *models.UserDevice, built *payload.Built) (*Result, error) {
	if err := checkSendArgs(models.PlatformAndroid, device, built); err != nil {
		return nil, err
	}
	if !s.Configured() {
		return s.guard.record(notConfigured(models.PlatformAndroid)), nil
	}

	client, err := s.client.get()
	if err != nil {
		return s.guard.record(failure(ErrorCodeNotConfigured, fmt.Sprintf("invalid FCM credentials: %v", err))), nil
	}

	if strings.TrimSpace(device.DeviceToken) == "" {
		return s.guard.record(invalidToken("device has no FCM token")), nil
	}

	return s.guard.do(ctx, func(ctx context.Context) *Result {
		return s.post(ctx, client, device.DeviceToken, built)
	}), nil
}

// post performs one messages:send request.
func (s *FCMSender) post(ctx context.Context, client *fcmClient, token string, built *payload.Built) *Result {
	endpoint := fmt.Sprintf("%s/v1/projects/%s/messages:send", s.endpoint, url.PathEscape(client.projectID))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(built.Body))
	if err != nil {
		return failure(ErrorCodeUnknown, fmt.Sprintf("failed to create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range built.Headers {
		req.Header.Set(key, value)
	}

	resp, err := client.http.Do(req)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return failure(ErrorCodeAuthFailed, fmt.Sprintf("failed to obtain FCM access token: %s", logging.SanitizeProviderMessage(retrieveErr.Error())))
		}
		return failure(classifyHTTPError(err), fmt.Sprintf("failed to reach FCM: %v", err))
	}
	defer resp.Body.Close()

	body := readErrorBody(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		result := &Result{Success: true, StatusCode: resp.StatusCode}
		var sent struct {
			Name string `json:"name"`
		}
		if err := json.Unmarshal(body, &sent); err == nil {
			result.ExternalID = sent.Name
		}
		return result
	}

	var fcmErr fcmErrorResponse
	_ = json.Unmarshal(body, &fcmErr)
	code := fcmErr.errorCode()

	result := classifyFCM(resp.StatusCode, code, fcmErr.Error.Message)
	result.StatusCode = resp.StatusCode
	result.Reason = code
	if result.Reason == "" {
		result.Reason = fcmErr.Error.Status
	}
	result.ErrorMessage = fmt.Sprintf("FCM returned %d: %s", resp.StatusCode, logging.SanitizeProviderMessage(fcmErr.Error.Message))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		result.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), s.now())
	}

	s.logger.Debug().
		Int("status", resp.StatusCode).
		Str("reason", result.Reason).
		Str("token", logging.SanitizeToken(token)).
		Msg("FCM rejected message")

	return result
}

// classifyFCM maps an FCM status, FcmError code and message to a Result.
func classifyFCM(status int, errorCode, message string) *Result {
	msg := strings.ToLower(message)

	switch {
	case (status == http.StatusBadRequest || status == http.StatusForbidden || status == http.StatusRequestEntityTooLarge) &&
		(strings.Contains(msg, "too big") || strings.Contains(msg, "too large")):
		return tooLarge("FCM rejected payload size")
	case errorCode == "UNREGISTERED", errorCode == "SENDER_ID_MISMATCH", status == http.StatusNotFound,
		strings.Contains(msg, "not a valid fcm registration token"):
		return invalidToken("FCM rejected registration token")
	case errorCode == "QUOTA_EXCEEDED", status == http.StatusTooManyRequests:
		return failure(ErrorCodeRateLimited, "FCM quota exceeded")
	case errorCode == "THIRD_PARTY_AUTH_ERROR", status == http.StatusUnauthorized:
		return failure(ErrorCodeAuthFailed, "FCM rejected credentials")
	case errorCode == "UNAVAILABLE", errorCode == "INTERNAL", status >= 500:
		return failure(ErrorCodeServerError, "FCM unavailable")
	default:
		return failure(classifyHTTPStatusCode(status), "FCM rejected message")
	}
}
