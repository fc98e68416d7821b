// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package push

import (
	"sync"

	"github.com/tomtom215/pushward/internal/config"
	"github.com/tomtom215/pushward/internal/models"
)

// ProviderStatus describes one provider for the ops API.
type ProviderStatus struct {
	Platform    models.Platform `json:"platform"`
	Configured  bool            `json:"configured"`
	Initialized bool            `json:"initialized"`
	Breaker     string          `json:"breaker"`
	Endpoint    string          `json:"endpoint,omitempty"`
}

// statusReporter is implemented by senders that expose ProviderStatus.
type statusReporter interface {
	Status() ProviderStatus
}

// Registry maps platforms to senders.
type Registry struct {
	mu      sync.RWMutex
	senders map[models.Platform]Sender
}

// NewRegistry creates a registry of senders. A later sender for the same
// platform replaces an earlier one.
func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[models.Platform]Sender, len(senders))}
	for _, s := range senders {
		r.Register(s)
	}
	return r
}

// NewFromConfig creates the APNs, FCM and Web Push senders from cfg. Disabled
// providers are still registered and report NOT_CONFIGURED on send.
func NewFromConfig(cfg *config.Config, opts ...Option) *Registry {
	return NewRegistry(
		NewAPNsSender(cfg.APNs, cfg.Limits.APNs, opts...),
		NewFCMSender(cfg.FCM, cfg.Limits.FCM, opts...),
		NewWebPushSender(cfg.WebPush, cfg.Limits.WebPush, opts...),
	)
}

// Register adds or replaces the sender of s.Platform().
func (r *Registry) Register(s Sender) {
	if s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.senders[s.Platform()] = s
}

// Sender returns the sender for platform.
func (r *Registry) Sender(platform models.Platform) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.senders[platform]
	return s, ok
}

// Status lists every registered provider in IOS, ANDROID, WEB order.
func (r *Registry) Status() []ProviderStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderStatus, 0, len(r.senders))
	for _, platform := range []models.Platform{models.PlatformIOS, models.PlatformAndroid, models.PlatformWeb} {
		s, ok := r.senders[platform]
		if !ok {
			continue
		}
		if sr, ok := s.(statusReporter); ok {
			out = append(out, sr.Status())
			continue
		}
		out = append(out, ProviderStatus{Platform: platform, Configured: s.Configured()})
	}
	return out
}

// AnyConfigured reports whether at least one provider has credentials.
func (r *Registry) AnyConfigured() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.senders {
		if s.Configured() {
			return true
		}
	}
	return false
}
