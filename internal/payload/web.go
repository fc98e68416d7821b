// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package payload

import (
	"fmt"
	"regexp"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/models"
)

// Web Push request header names (RFC 8030).
const (
	HeaderWebUrgency = "Urgency"
	HeaderWebTopic   = "Topic"
)

// webTopicPattern is the RFC 8030 topic constraint: URL-safe base64
// alphabet, at most 32 characters.
var webTopicPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)

// WebBucket is the display grouping shown by the service worker.
type WebBucket struct {
	Name  string `json:"n,omitempty"`
	Color string `json:"c,omitempty"`
	Icon  string `json:"i,omitempty"`
}

// WebPayload is the JSON handed to the service worker push event.
type WebPayload struct {
	NotificationID string              `json:"nid"`
	MessageID      string              `json:"mid,omitempty"`
	BucketID       string              `json:"bid,omitempty"`
	DeliveryType   models.DeliveryType `json:"dty"`
	Bucket         *WebBucket          `json:"bkt,omitempty"`

	Title       string   `json:"tit,omitempty"`
	Body        string   `json:"bdy,omitempty"`
	Subtitle    string   `json:"stl,omitempty"`
	Image       string   `json:"img,omitempty"`
	Attachments []string `json:"att,omitempty"`
	TapAction   *Action  `json:"tp,omitempty"`
	Actions     []Action `json:"act,omitempty"`

	Encrypted    string `json:"enc,omitempty"`
	SelfDownload bool   `json:"sd,omitempty"`
	Silent       bool   `json:"sil,omitempty"`
}

// BuildWeb serializes a view for the Web Push service worker.
func BuildWeb(v *View, variant Variant) (*Built, error) {
	s, err := v.split(variant)
	if err != nil {
		return nil, err
	}

	p := WebPayload{
		NotificationID: v.NotificationID,
		MessageID:      v.MessageID,
		BucketID:       v.Bucket.ID,
		DeliveryType:   v.DeliveryType,
		Silent:         v.Priority == PrioritySilent,
	}
	if variant != VariantSelfDownload && (v.Bucket.Name != "" || v.Bucket.IconURL != "") {
		p.Bucket = &WebBucket{Name: v.Bucket.Name, Color: v.Bucket.Color, Icon: v.Bucket.IconURL}
	}

	switch variant {
	case VariantPlain:
		c := s.clear
		p.Title = c.Title
		p.Body = c.Body
		p.Subtitle = c.Subtitle
		p.Image = v.ImageURL
		p.Attachments = c.Attachments
		p.TapAction = c.TapAction
		p.Actions = c.Actions
	case VariantEncrypted:
		p.Title = EncryptedPlaceholder
		p.Encrypted = s.envelope
		p.Actions = s.public
	case VariantSelfDownload:
		p.Title = EncryptedPlaceholder
		p.SelfDownload = true
	}

	headers := map[string]string{HeaderWebUrgency: WebUrgency(v.Priority)}
	if webTopicPattern.MatchString(v.CollapseID) {
		headers[HeaderWebTopic] = v.CollapseID
	}

	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal web payload: %w", err)
	}
	return finish(models.PlatformWeb, variant, body, headers)
}

// WebUrgency maps a priority class to the RFC 8030 Urgency header.
func WebUrgency(p PriorityClass) string {
	switch p {
	case PriorityCritical:
		return "high"
	case PrioritySilent:
		return "very-low"
	default:
		return "normal"
	}
}
