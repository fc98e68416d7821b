// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package payload

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/models"
)

// Android message priorities in the FCM HTTP v1 API.
const (
	AndroidPriorityHigh   = "HIGH"
	AndroidPriorityNormal = "NORMAL"
)

// FCMRequest is the body of an FCM HTTP v1 messages:send call.
type FCMRequest struct {
	Message FCMMessage `json:"message"`
}

// FCMMessage is the FCM v1 message resource.
type FCMMessage struct {
	Token   string            `json:"token"`
	Data    map[string]string `json:"data,omitempty"`
	Android *FCMAndroid       `json:"android,omitempty"`
	APNs    *FCMAPNs          `json:"apns,omitempty"`
}

// FCMAndroid is the Android-specific section.
type FCMAndroid struct {
	Priority     string                  `json:"priority"`
	CollapseKey  string                  `json:"collapse_key,omitempty"`
	Notification *FCMAndroidNotification `json:"notification,omitempty"`
}

// FCMAndroidNotification is the system-displayed notification. Encrypted
// messages only show the placeholder title.
type FCMAndroidNotification struct {
	Title string `json:"title,omitempty"`
	Body  string `json:"body,omitempty"`
	Image string `json:"image,omitempty"`
}

// FCMAPNs carries the iOS payload and headers through FCM unchanged.
type FCMAPNs struct {
	Headers map[string]string `json:"headers,omitempty"`
	Payload *APNsPayload      `json:"payload"`
}

// BuildFCM serializes a view as an FCM v1 request. The APNs payload is built
// from the same split as the data map so an envelope is generated only once.
func BuildFCM(v *View, variant Variant) (*Built, error) {
	s, err := v.split(variant)
	if err != nil {
		return nil, err
	}

	apns, apnsHeaders := apnsPayload(v, variant, s)

	data := map[string]string{
		"nid": v.NotificationID,
		"dty": string(v.DeliveryType),
	}
	if v.MessageID != "" {
		data["mid"] = v.MessageID
	}
	if v.Bucket.ID != "" {
		data["bid"] = v.Bucket.ID
	}

	switch variant {
	case VariantPlain:
		c := s.clear
		data["tit"] = c.Title
		setIfNotEmpty(data, "bdy", c.Body)
		setIfNotEmpty(data, "stl", c.Subtitle)
		setIfNotEmpty(data, "img", v.ImageURL)
		if err := setJSON(data, "att", c.Attachments, len(c.Attachments) > 0); err != nil {
			return nil, err
		}
		if err := setJSON(data, "tp", c.TapAction, c.TapAction != nil); err != nil {
			return nil, err
		}
		if err := setJSON(data, "act", c.Actions, len(c.Actions) > 0); err != nil {
			return nil, err
		}
	case VariantEncrypted:
		data["enc"] = s.envelope
		if err := setJSON(data, "act", s.public, len(s.public) > 0); err != nil {
			return nil, err
		}
	case VariantSelfDownload:
		data["sd"] = strconv.FormatBool(true)
	}

	android := &FCMAndroid{Priority: AndroidPriority(v.Priority)}
	if v.CollapseID != "" {
		android.CollapseKey = v.CollapseID
	}
	android.Notification = androidNotification(v, variant, s)

	req := FCMRequest{Message: FCMMessage{
		Token:   v.DeviceToken,
		Data:    data,
		Android: android,
		APNs:    &FCMAPNs{Headers: apnsHeaders, Payload: apns},
	}}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal FCM message: %w", err)
	}
	return finish(models.PlatformAndroid, variant, body, nil)
}

// androidNotification returns the display block, or nil for silent and
// self-download messages, which stay data-only for the app to handle.
func androidNotification(v *View, variant Variant, s *sealed) *FCMAndroidNotification {
	if v.Priority == PrioritySilent {
		return nil
	}
	switch variant {
	case VariantPlain:
		return &FCMAndroidNotification{Title: s.clear.Title, Body: s.clear.Body, Image: v.ImageURL}
	case VariantEncrypted:
		return &FCMAndroidNotification{Title: EncryptedPlaceholder}
	default:
		return nil
	}
}

// AndroidPriority maps a priority class to the FCM Android priority.
func AndroidPriority(p PriorityClass) string {
	if p == PrioritySilent {
		return AndroidPriorityNormal
	}
	return AndroidPriorityHigh
}

func setIfNotEmpty(data map[string]string, key, value string) {
	if value != "" {
		data[key] = value
	}
}

// setJSON stores value as a JSON string, since FCM data values are strings.
func setJSON(data map[string]string, key string, value any, present bool) error {
	if !present {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal data field %s: %w", key, err)
	}
	data[key] = string(raw)
	return nil
}
