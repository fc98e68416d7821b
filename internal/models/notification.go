// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package models

import (
	"time"
)

// ============================================================================
// Delivery Types
// ============================================================================

// DeliveryType controls how loudly a message interrupts the user.
type DeliveryType string

const (
	// DeliveryTypeSilent delivers in the background without an alert.
	DeliveryTypeSilent DeliveryType = "SILENT"

	// DeliveryTypeNormal delivers a standard alert.
	DeliveryTypeNormal DeliveryType = "NORMAL"

	// DeliveryTypeCritical breaks through focus modes and mute switches.
	DeliveryTypeCritical DeliveryType = "CRITICAL"

	// DeliveryTypeNoPush stores the message without sending any push.
	DeliveryTypeNoPush DeliveryType = "NO_PUSH"
)

// IsValid reports whether t is a known delivery type.
func (t DeliveryType) IsValid() bool {
	switch t {
	case DeliveryTypeSilent, DeliveryTypeNormal, DeliveryTypeCritical, DeliveryTypeNoPush:
		return true
	}
	return false
}

// ============================================================================
// Attachments
// ============================================================================

// MediaType identifies the kind of media an attachment points to.
type MediaType string

const (
	MediaTypeImage MediaType = "IMAGE"
	MediaTypeVideo MediaType = "VIDEO"
	MediaTypeGIF   MediaType = "GIF"
	MediaTypeAudio MediaType = "AUDIO"
	MediaTypeIcon  MediaType = "ICON"
)

// Attachment is a piece of media linked from a message.
type Attachment struct {
	MediaType MediaType `json:"mediaType" validate:"required"`
	URL       string    `json:"url" validate:"required"`
	Name      string    `json:"name,omitempty"`
}

// ============================================================================
// Message and Notification
// ============================================================================

// Bucket is the display grouping a message belongs to.
type Bucket struct {
	ID      string `json:"id" validate:"required"`
	Name    string `json:"name"`
	Color   string `json:"color,omitempty"`
	IconURL string `json:"iconUrl,omitempty"`
}

// Message is the content unit shared by all notifications created from it.
// It is produced by the messaging subsystem and treated as read-only here.
type Message struct {
	ID           string       `json:"id" validate:"required"`
	Title        string       `json:"title" validate:"required"`
	Subtitle     string       `json:"subtitle,omitempty"`
	Body         string       `json:"body,omitempty"`
	Sound        string       `json:"sound,omitempty"`
	DeliveryType DeliveryType `json:"deliveryType" validate:"required,deliverytype"`

	Attachments []Attachment         `json:"attachments,omitempty" validate:"dive"`
	Actions     []NotificationAction `json:"actions,omitempty" validate:"dive"`
	TapAction   *NotificationAction  `json:"tapAction,omitempty"`

	GroupID    string `json:"groupId,omitempty"`
	CollapseID string `json:"collapseId,omitempty"`
	Bucket     Bucket `json:"bucket"`

	// Per-message overrides for automatic actions. Nil defers to the
	// user's AutoActionSettings.
	AddDeleteAction           *bool `json:"addDeleteAction,omitempty"`
	AddMarkAsReadAction       *bool `json:"addMarkAsReadAction,omitempty"`
	AddOpenNotificationAction *bool `json:"addOpenNotificationAction,omitempty"`

	// Snooze and postpone durations in minutes. Nil means the user's
	// defaults apply; an empty non-nil slice disables them.
	Snoozes   []int `json:"snoozes,omitempty"`
	Postpones []int `json:"postpones,omitempty"`

	Locale string `json:"locale,omitempty"`
}

// Notification is a single (message, user, device) delivery unit.
type Notification struct {
	ID        string     `json:"id" validate:"required"`
	UserID    string     `json:"userId"`
	Message   *Message   `json:"message" validate:"required"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	SentAt    *time.Time `json:"sentAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
