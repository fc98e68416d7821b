// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package delivery

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/models"
	"github.com/tomtom215/pushward/internal/payload"
)

// Request is one notification to deliver to a set of devices.
type Request struct {
	Notification *models.Notification      `json:"notification" validate:"required"`
	Devices      []*models.UserDevice      `json:"devices" validate:"dive,required"`
	Settings     models.AutoActionSettings `json:"settings"`

	// AllowUnencryptedRetry is the user's opt-in to plain retries after a
	// size failure. Nil uses the configured default.
	AllowUnencryptedRetry *bool `json:"allowUnencryptedRetry,omitempty"`
}

// Attempt records one provider call of the ladder.
type Attempt struct {
	State         State           `json:"state"`
	Variant       payload.Variant `json:"variant"`
	PayloadSizeKB float64         `json:"payloadSizeKB"`
	Success       bool            `json:"success"`
	StatusCode    int             `json:"statusCode,omitempty"`
	ErrorCode     string          `json:"errorCode,omitempty"`
	Duration      time.Duration   `json:"durationNs"`
}

// SendResult is the outcome for one device.
type SendResult struct {
	DeviceID string          `json:"deviceId"`
	Platform models.Platform `json:"platform"`
	// Token is the masked device token or subscription endpoint.
	Token string `json:"token"`

	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorCode string `json:"errorCode,omitempty"`

	PayloadTooLarge          bool    `json:"payloadTooLarge"`
	RetriedWithoutEncryption bool    `json:"retriedWithoutEncryption"`
	RetrySuccess             bool    `json:"retrySuccess"`
	PayloadSizeKB            float64 `json:"payloadSizeKB"`

	FinalState State     `json:"finalState"`
	Attempts   []Attempt `json:"attempts,omitempty"`

	// Redacted is the last payload sent, with sensitive values truncated.
	Redacted json.RawMessage `json:"redacted,omitempty"`

	// TokenInvalid asks the caller to remove the device.
	TokenInvalid bool `json:"tokenInvalid"`
}

// Report aggregates the results of a delivery.
type Report struct {
	NotificationID string `json:"notificationId"`
	MessageID      string `json:"messageId,omitempty"`

	// Success is true when at least one device accepted the notification.
	Success bool `json:"success"`

	// Skipped is set for NO_PUSH messages; no device is contacted.
	Skipped bool `json:"skipped"`

	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`

	// Results are in the order of Request.Devices.
	Results []SendResult `json:"results"`

	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
	DurationMS  int64     `json:"durationMs"`
}

// InvalidTokens returns the ids of devices whose token the provider rejected
// for good.
func (r *Report) InvalidTokens() []string {
	var ids []string
	for i := range r.Results {
		if r.Results[i].TokenInvalid {
			ids = append(ids, r.Results[i].DeviceID)
		}
	}
	return ids
}
