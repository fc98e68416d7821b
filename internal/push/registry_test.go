// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
)

type stubSender struct {
	platform models.Platform
}

func (s stubSender) Platform() models.Platform { return s.platform }
func (s stubSender) Configured() bool          { return true }
func (s stubSender) Send(context.Context, *models.UserDevice, *payload.Built) (*Result, error) {
	return &Result{Success: true}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		stubSender{platform: models.PlatformWeb},
		NewAPNsSender(config.APNsConfig{}, config.ProviderLimits{}, WithLogger(zerolog.Nop())),
		nil,
	)

	if _, ok := r.Sender(models.PlatformAndroid); ok {
		t.Error("Sender(ANDROID) found, want missing")
	}
	if s, ok := r.Sender(models.PlatformWeb); !ok || s.Platform() != models.PlatformWeb {
		t.Errorf("Sender(WEB) = %v, %v", s, ok)
	}

	status := r.Status()
	if len(status) != 2 {
		t.Fatalf("Status() len = %d, want 2", len(status))
	}
	if status[0].Platform != models.PlatformIOS || status[0].Configured {
		t.Errorf("status[0] = %+v, want unconfigured IOS", status[0])
	}
	if status[1].Platform != models.PlatformWeb || !status[1].Configured {
		t.Errorf("status[1] = %+v, want configured WEB", status[1])
	}
	if !r.AnyConfigured() {
		t.Error("AnyConfigured() = false")
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{}
	r := NewFromConfig(cfg, WithLogger(zerolog.Nop()))

	for _, p := range []models.Platform{models.PlatformIOS, models.PlatformAndroid, models.PlatformWeb} {
		if _, ok := r.Sender(p); !ok {
			t.Errorf("Sender(%s) missing", p)
		}
	}
	if r.AnyConfigured() {
		t.Error("empty config reports a configured provider")
	}
}
