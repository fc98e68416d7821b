// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package payload

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/models"
)

// APNs header names.
const (
	HeaderAPNsPushType   = "apns-push-type"
	HeaderAPNsPriority   = "apns-priority"
	HeaderAPNsCollapseID = "apns-collapse-id"
)

// DynamicCategory is the notification category registered by the iOS app
// whose buttons are filled in from the payload actions.
const DynamicCategory = "DYNAMIC"

// maxCollapseIDBytes is the APNs limit for apns-collapse-id.
const maxCollapseIDBytes = 64

// APSAlert is the visible alert of an APNs payload.
type APSAlert struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body,omitempty"`
}

// CriticalSound is the dictionary form of aps.sound for critical alerts.
type CriticalSound struct {
	Critical int     `json:"critical"`
	Name     string  `json:"name"`
	Volume   float64 `json:"volume"`
}

// APS is the Apple-defined dictionary of an APNs payload.
type APS struct {
	Alert             *APSAlert `json:"alert,omitempty"`
	Sound             any       `json:"sound,omitempty"`
	Category          string    `json:"category,omitempty"`
	ThreadID          string    `json:"thread-id,omitempty"`
	MutableContent    int       `json:"mutable-content,omitempty"`
	ContentAvailable  int       `json:"content-available,omitempty"`
	InterruptionLevel string    `json:"interruption-level,omitempty"`
	RelevanceScore    *float64  `json:"relevance-score,omitempty"`
}

// APNsPayload is the canonical payload. FCM embeds it verbatim under apns.
// Root keys are short to keep payloads under the 4 KiB provider limit.
type APNsPayload struct {
	APS APS `json:"aps"`

	NotificationID string              `json:"nid"`
	MessageID      string              `json:"mid,omitempty"`
	BucketID       string              `json:"bid,omitempty"`
	DeliveryType   models.DeliveryType `json:"dty"`

	Title       string   `json:"tit,omitempty"`
	Body        string   `json:"bdy,omitempty"`
	Subtitle    string   `json:"stl,omitempty"`
	Attachments []string `json:"att,omitempty"`
	TapAction   *Action  `json:"tp,omitempty"`
	Actions     []Action `json:"act,omitempty"`

	Encrypted    string `json:"enc,omitempty"`
	SelfDownload bool   `json:"sd,omitempty"`
}

// BuildIOS serializes a view as an APNs payload.
func BuildIOS(v *View, variant Variant) (*Built, error) {
	s, err := v.split(variant)
	if err != nil {
		return nil, err
	}

	p, headers := apnsPayload(v, variant, s)
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal APNs payload: %w", err)
	}
	return finish(models.PlatformIOS, variant, body, headers)
}

// apnsPayload assembles the payload and headers from a prepared split.
func apnsPayload(v *View, variant Variant, s *sealed) (*APNsPayload, map[string]string) {
	p := &APNsPayload{
		NotificationID: v.NotificationID,
		MessageID:      v.MessageID,
		BucketID:       v.Bucket.ID,
		DeliveryType:   v.DeliveryType,
	}

	switch variant {
	case VariantPlain:
		c := s.clear
		p.APS.Alert = &APSAlert{Title: c.Title, Subtitle: c.Subtitle, Body: c.Body}
		p.Title = c.Title
		p.Body = c.Body
		p.Subtitle = c.Subtitle
		p.Attachments = c.Attachments
		p.TapAction = c.TapAction
		p.Actions = c.Actions
	case VariantEncrypted:
		p.APS.Alert = &APSAlert{Title: EncryptedPlaceholder}
		p.Encrypted = s.envelope
		p.Actions = s.public
	case VariantSelfDownload:
		p.APS.Alert = &APSAlert{Title: EncryptedPlaceholder}
		p.SelfDownload = true
	}

	headers := map[string]string{
		HeaderAPNsPushType: "alert",
		HeaderAPNsPriority: "10",
	}

	switch v.Priority {
	case PriorityCritical:
		one := 1.0
		p.APS.InterruptionLevel = "critical"
		p.APS.RelevanceScore = &one
		if v.Sound != "" {
			p.APS.Sound = CriticalSound{Critical: 1, Name: v.Sound, Volume: 1.0}
		} else {
			p.APS.Sound = CriticalSound{Critical: 1, Name: "default", Volume: 1.0}
		}
		p.APS.MutableContent = 1
	case PrioritySilent:
		p.APS.Alert = nil
		p.APS.ContentAvailable = 1
		headers[HeaderAPNsPushType] = "background"
		headers[HeaderAPNsPriority] = "5"
	default:
		p.APS.InterruptionLevel = "active"
		if v.Sound != "" {
			p.APS.Sound = v.Sound
		} else {
			p.APS.Sound = "default"
		}
		p.APS.MutableContent = 1
	}

	if len(p.Actions) > 0 && v.Priority != PrioritySilent {
		p.APS.Category = DynamicCategory
	}

	if v.CollapseID != "" {
		headers[HeaderAPNsCollapseID] = truncateBytes(v.CollapseID, maxCollapseIDBytes)
	} else {
		p.APS.ThreadID = v.ThreadID
	}

	return p, headers
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && (s[n]&0xC0) == 0x80 {
		n--
	}
	return s[:n]
}
