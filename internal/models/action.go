// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package models

// ActionType is the kind of a notification action button.
type ActionType string

const (
	ActionTypeDelete           ActionType = "DELETE"
	ActionTypeMarkAsRead       ActionType = "MARK_AS_READ"
	ActionTypeOpenNotification ActionType = "OPEN_NOTIFICATION"
	ActionTypeNavigate         ActionType = "NAVIGATE"
	ActionTypeBackgroundCall   ActionType = "BACKGROUND_CALL"
	ActionTypeSnooze           ActionType = "SNOOZE"
	ActionTypePostpone         ActionType = "POSTPONE"
	ActionTypeWebhook          ActionType = "WEBHOOK"
)

// IsSensitive reports whether values of this action type may disclose
// private information and must travel inside the encrypted envelope.
func (t ActionType) IsSensitive() bool {
	return t == ActionTypeNavigate || t == ActionTypeBackgroundCall
}

// NotificationAction is a user-facing action attached to a notification.
type NotificationAction struct {
	Type        ActionType `json:"type" validate:"required"`
	Value       string     `json:"value,omitempty"`
	Title       string     `json:"title,omitempty"`
	Icon        string     `json:"icon,omitempty"`
	Destructive bool       `json:"destructive,omitempty"`
}

// AutoActionSettings is a per-user (or per-device) snapshot of the automatic
// action preferences. It is consumed, never mutated, by the action encoder.
type AutoActionSettings struct {
	AutoAddDeleteAction           *bool  `json:"autoAddDeleteAction,omitempty"`
	AutoAddMarkAsReadAction       *bool  `json:"autoAddMarkAsReadAction,omitempty"`
	AutoAddOpenNotificationAction *bool  `json:"autoAddOpenNotificationAction,omitempty"`
	DefaultSnoozes                []int  `json:"defaultSnoozes,omitempty"`
	DefaultPostpones              []int  `json:"defaultPostpones,omitempty"`
	Locale                        string `json:"locale,omitempty"`
}

// Bool returns a pointer to b. It keeps optional-flag literals short.
func Bool(b bool) *bool {
	return &b
}
