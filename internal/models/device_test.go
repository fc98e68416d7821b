// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package models

import "testing"

func TestActionType_IsSensitive(t *testing.T) {
	tests := []struct {
		actionType ActionType
		want       bool
	}{
		{ActionTypeNavigate, true},
		{ActionTypeBackgroundCall, true},
		{ActionTypeDelete, false},
		{ActionTypeMarkAsRead, false},
		{ActionTypeOpenNotification, false},
		{ActionTypeSnooze, false},
		{ActionTypePostpone, false},
		{ActionTypeWebhook, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.actionType), func(t *testing.T) {
			if got := tt.actionType.IsSensitive(); got != tt.want {
				t.Errorf("IsSensitive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserDevice_Target(t *testing.T) {
	ios := &UserDevice{Platform: PlatformIOS, DeviceToken: "abcdef0123456789abcdef"}
	if ios.Target() != "abcdef0123456789abcdef" {
		t.Errorf("Target() = %q", ios.Target())
	}
	if got := ios.MaskedTarget(); got != "abcdef01...cdef" {
		t.Errorf("MaskedTarget() = %q", got)
	}

	web := &UserDevice{
		Platform:     PlatformWeb,
		Subscription: &WebSubscription{Endpoint: "https://push.example.com/send/xyz"},
	}
	if web.Target() != "https://push.example.com/send/xyz" {
		t.Errorf("Target() = %q", web.Target())
	}

	short := &UserDevice{Platform: PlatformAndroid, DeviceToken: "tok"}
	if short.MaskedTarget() != "***" {
		t.Errorf("MaskedTarget() = %q, want ***", short.MaskedTarget())
	}
}

func TestUserDevice_HasPublicKey(t *testing.T) {
	var nilDevice *UserDevice
	if nilDevice.HasPublicKey() {
		t.Error("nil device should not have a public key")
	}
	if (&UserDevice{}).HasPublicKey() {
		t.Error("device without key should report false")
	}
	if !(&UserDevice{PublicKey: "{}"}).HasPublicKey() {
		t.Error("device with key should report true")
	}
}

func TestDeliveryType_IsValid(t *testing.T) {
	for _, dt := range []DeliveryType{DeliveryTypeSilent, DeliveryTypeNormal, DeliveryTypeCritical, DeliveryTypeNoPush} {
		if !dt.IsValid() {
			t.Errorf("%s should be valid", dt)
		}
	}
	if DeliveryType("LOUD").IsValid() {
		t.Error("unknown delivery type should be invalid")
	}
	if !PlatformWeb.IsValid() || Platform("TV").IsValid() {
		t.Error("platform validity mismatch")
	}
}
