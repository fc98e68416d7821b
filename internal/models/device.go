// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package models

// Platform is the operating system family of a registered device.
type Platform string

const (
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "ANDROID"
	PlatformWeb     Platform = "WEB"
)

// IsValid reports whether p is a supported platform.
func (p Platform) IsValid() bool {
	return p == PlatformIOS || p == PlatformAndroid || p == PlatformWeb
}

// WebSubscription is the Web Push subscription triple issued by a browser.
type WebSubscription struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}

// UserDevice is one registered push endpoint.
//
// PublicKey is an RSA public key in JWK form. When empty the device receives
// unencrypted payloads. PrivateKey is only populated on the client side (or in
// tooling) and is never required for delivery.
type UserDevice struct {
	ID           string           `json:"id" validate:"required"`
	UserID       string           `json:"userId"`
	Platform     Platform         `json:"platform" validate:"required,platform"`
	DeviceToken  string           `json:"deviceToken,omitempty"`
	Subscription *WebSubscription `json:"subscription,omitempty"`
	PublicKey    string           `json:"publicKey,omitempty"`
	PrivateKey   string           `json:"privateKey,omitempty"`
}

// HasPublicKey reports whether payloads for this device must be encrypted.
func (d *UserDevice) HasPublicKey() bool {
	return d != nil && d.PublicKey != ""
}

// Target returns the provider address of the device: the push token for
// APNs/FCM and the subscription endpoint for Web Push.
func (d *UserDevice) Target() string {
	if d.Platform == PlatformWeb && d.Subscription != nil {
		return d.Subscription.Endpoint
	}
	return d.DeviceToken
}

// MaskedTarget returns a log-safe form of Target.
func (d *UserDevice) MaskedTarget() string {
	t := d.Target()
	if len(t) <= 12 {
		return "***"
	}
	return t[:8] + "..." + t[len(t)-4:]
}
