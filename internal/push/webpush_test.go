// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
)

func webConfig(t *testing.T) config.WebPushConfig {
	t.Helper()
	private, public, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("GenerateVAPIDKeys: %v", err)
	}
	return config.WebPushConfig{
		Enabled:         true,
		Subject:         "mailto:ops@example.com",
		VAPIDPublicKey:  public,
		VAPIDPrivateKey: private,
		TTL:             time.Hour,
	}
}

func webDevice(t *testing.T, endpoint string) *models.UserDevice {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return &models.UserDevice{
		ID:       "dev-3",
		Platform: models.PlatformWeb,
		Subscription: &models.WebSubscription{
			Endpoint: endpoint,
			P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:     base64.RawURLEncoding.EncodeToString(auth),
		},
	}
}

func webBuilt(body string, topic string) *payload.Built {
	headers := map[string]string{payload.HeaderWebUrgency: "high"}
	if topic != "" {
		headers[payload.HeaderWebTopic] = topic
	}
	return &payload.Built{
		Platform: models.PlatformWeb,
		Variant:  payload.VariantPlain,
		Body:     []byte(body),
		Headers:  headers,
	}
}

type capturedRequest struct {
	mu     sync.Mutex
	header http.Header
	calls  int
}

func (c *capturedRequest) store(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.header = r.Header.Clone()
	c.calls++
}

func (c *capturedRequest) get() (http.Header, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.header, c.calls
}

func newTestWebPush(t *testing.T, status int, captured *capturedRequest) (*WebPushSender, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.store(r)
		if status == http.StatusCreated {
			w.Header().Set("Location", "https://push.example.com/message/abc")
		}
		if status == http.StatusTooManyRequests {
			w.Header().Set("Retry-After", "5")
		}
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	sender := NewWebPushSender(webConfig(t), config.ProviderLimits{},
		WithHTTPClient(srv.Client()),
		WithLogger(zerolog.Nop()),
	)
	return sender, srv.URL + "/push/subscription-1"
}

func TestWebPushSender_Success(t *testing.T) {
	captured := &capturedRequest{}
	sender, endpoint := newTestWebPush(t, http.StatusCreated, captured)

	result, err := sender.Send(context.Background(), webDevice(t, endpoint), webBuilt(`{"title":"hi"}`, "deploy_42"))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if !result.Success || result.StatusCode != http.StatusCreated {
		t.Fatalf("Send() = %+v, want success", result)
	}
	if result.ExternalID != "https://push.example.com/message/abc" {
		t.Errorf("ExternalID = %q", result.ExternalID)
	}

	header, calls := captured.get()
	if calls != 1 {
		t.Fatalf("push service called %d times", calls)
	}
	if header.Get("TTL") != "3600" {
		t.Errorf("TTL = %q, want 3600", header.Get("TTL"))
	}
	if header.Get("Urgency") != "high" {
		t.Errorf("Urgency = %q, want high", header.Get("Urgency"))
	}
	if header.Get("Topic") != "deploy_42" {
		t.Errorf("Topic = %q, want deploy_42", header.Get("Topic"))
	}
	if header.Get("Content-Encoding") != "aes128gcm" {
		t.Errorf("Content-Encoding = %q", header.Get("Content-Encoding"))
	}
	if !strings.HasPrefix(header.Get("Authorization"), "vapid ") {
		t.Errorf("Authorization = %q, want vapid scheme", header.Get("Authorization"))
	}
	if !sender.Status().Initialized {
		t.Error("Initialized = false after a successful send")
	}
}

func TestWebPushSender_Failures(t *testing.T) {
	tests := []struct {
		status       int
		wantCode     string
		wantTooLarge bool
		wantInvalid  bool
	}{
		{http.StatusGone, ErrorCodeInvalidToken, false, true},
		{http.StatusNotFound, ErrorCodeInvalidToken, false, true},
		{http.StatusRequestEntityTooLarge, ErrorCodePayloadTooLarge, true, false},
		{http.StatusTooManyRequests, ErrorCodeRateLimited, false, false},
		{http.StatusForbidden, ErrorCodeAuthFailed, false, false},
		{http.StatusBadGateway, ErrorCodeServerError, false, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sender, endpoint := newTestWebPush(t, tt.status, &capturedRequest{})

			result, err := sender.Send(context.Background(), webDevice(t, endpoint), webBuilt(`{"title":"hi"}`, ""))
			if err != nil {
				t.Fatalf("Send() error = %v", err)
			}
			if result.ErrorCode != tt.wantCode {
				t.Errorf("ErrorCode = %q, want %q", result.ErrorCode, tt.wantCode)
			}
			if result.PayloadTooLarge != tt.wantTooLarge {
				t.Errorf("PayloadTooLarge = %v, want %v", result.PayloadTooLarge, tt.wantTooLarge)
			}
			if result.TokenInvalid != tt.wantInvalid {
				t.Errorf("TokenInvalid = %v, want %v", result.TokenInvalid, tt.wantInvalid)
			}
			if tt.status == http.StatusTooManyRequests && (result.RetryAfter == nil || *result.RetryAfter != 5*time.Second) {
				t.Errorf("RetryAfter = %v, want 5s", result.RetryAfter)
			}
		})
	}
}

func TestWebPushSender_LocalChecks(t *testing.T) {
	captured := &capturedRequest{}
	sender, endpoint := newTestWebPush(t, http.StatusCreated, captured)

	noSub := &models.UserDevice{ID: "dev-4", Platform: models.PlatformWeb}
	result, _ := sender.Send(context.Background(), noSub, webBuilt(`{}`, ""))
	if !result.TokenInvalid {
		t.Errorf("missing subscription = %+v, want invalid token", result)
	}

	big := webBuilt(`{"body":"`+strings.Repeat("x", 5000)+`"}`, "")
	result, _ = sender.Send(context.Background(), webDevice(t, endpoint), big)
	if !result.PayloadTooLarge {
		t.Errorf("oversized payload = %+v, want too large", result)
	}

	if _, calls := captured.get(); calls != 0 {
		t.Errorf("push service called %d times, want 0", calls)
	}
}

func TestWebPushSender_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/push/gone"
	srv.Close()

	sender := NewWebPushSender(webConfig(t), config.ProviderLimits{}, WithLogger(zerolog.Nop()))
	result, err := sender.Send(context.Background(), webDevice(t, endpoint), webBuilt(`{}`, ""))
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if result.ErrorCode != ErrorCodeConnectionFailed {
		t.Errorf("ErrorCode = %q, want %q", result.ErrorCode, ErrorCodeConnectionFailed)
	}
}

func TestWebPushSender_BadKeys(t *testing.T) {
	cfg := webConfig(t)
	cfg.VAPIDPrivateKey = "c2hvcnQ"
	sender := NewWebPushSender(cfg, config.ProviderLimits{}, WithLogger(zerolog.Nop()))

	result, _ := sender.Send(context.Background(), webDevice(t, "https://push.example.com/x"), webBuilt(`{}`, ""))
	if result.ErrorCode != ErrorCodeNotConfigured {
		t.Errorf("ErrorCode = %q, want %q", result.ErrorCode, ErrorCodeNotConfigured)
	}

	disabled := NewWebPushSender(config.WebPushConfig{}, config.ProviderLimits{}, WithLogger(zerolog.Nop()))
	if disabled.Configured() {
		t.Error("empty config reports configured")
	}
}
