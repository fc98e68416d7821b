// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package payload converts a notification into the wire payload of each push
// provider.
//
// A View is built once per (notification, device). It holds everything the
// serializers need: content, priority class, grouping, formatted attachments,
// the merged action list (already partitioned into sensitive and public) and
// the effective tap action. BuildIOS, BuildFCM and BuildWeb are independent
// serializers over the same View, so the three formats cannot drift apart on
// priority mapping or action sets.
//
// Variants:
//   - VariantPlain: content in the clear (device has no key, or the user opted
//     into unencrypted retries)
//   - VariantEncrypted: content sealed in an envelope; the visible alert is
//     the fixed placeholder and only public actions stay outside
//   - VariantSelfDownload: no content at all; the client fetches it by id
package payload

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/tomtom215/pushward/internal/actions"
	"github.com/tomtom215/pushward/internal/models"
)

// EncryptedPlaceholder is the only alert text shown for encrypted payloads.
const EncryptedPlaceholder = "Encrypted Notification"

// Variant selects how much content a payload carries.
type Variant string

const (
	VariantPlain        Variant = "plain"
	VariantEncrypted    Variant = "encrypted"
	VariantSelfDownload Variant = "self_download"
)

// PriorityClass is the provider-independent interruption class of a message.
type PriorityClass string

const (
	PriorityCritical PriorityClass = "critical"
	PriorityNormal   PriorityClass = "normal"
	PrioritySilent   PriorityClass = "silent"
)

var (
	// ErrMissingMessage is returned when a notification has no message.
	ErrMissingMessage = errors.New("notification has no message")

	// ErrNoPublicKey is returned when an encrypted variant is requested for a
	// device without a registered public key.
	ErrNoPublicKey = errors.New("device has no public key")

	// ErrNotPushable is returned for NO_PUSH messages.
	ErrNotPushable = errors.New("message delivery type is NO_PUSH")
)

// View is the normalized form of one notification for one device.
type View struct {
	NotificationID string
	MessageID      string
	Bucket         models.Bucket
	DeliveryType   models.DeliveryType
	Priority       PriorityClass

	Title    string
	Subtitle string
	Body     string
	Sound    string

	// Attachments are formatted as "TYPE:url"; ICON attachments are excluded.
	Attachments []string
	// ImageURL is the first IMAGE attachment, used as Android large image.
	ImageURL string

	TapAction *models.NotificationAction
	Actions   []models.NotificationAction
	Sensitive []models.NotificationAction
	Public    []models.NotificationAction

	// CollapseID replaces older notifications natively. When set, ThreadID
	// is empty: collapse and thread grouping are mutually exclusive.
	CollapseID string
	ThreadID   string

	DeviceToken string
	PublicKey   string
}

// NewView normalizes a notification for a device. actionList is the output
// of actions.BuildActions for the device's platform.
func NewView(n *models.Notification, device *models.UserDevice, actionList []models.NotificationAction) (*View, error) {
	if n == nil || n.Message == nil {
		return nil, ErrMissingMessage
	}
	if device == nil {
		return nil, fmt.Errorf("nil device")
	}
	msg := n.Message
	if msg.DeliveryType == models.DeliveryTypeNoPush {
		return nil, ErrNotPushable
	}

	v := &View{
		NotificationID: n.ID,
		MessageID:      msg.ID,
		Bucket:         msg.Bucket,
		DeliveryType:   msg.DeliveryType,
		Priority:       Classify(msg.DeliveryType),
		Title:          msg.Title,
		Subtitle:       msg.Subtitle,
		Body:           msg.Body,
		Sound:          msg.Sound,
		Attachments:    FormatAttachments(msg.Attachments),
		ImageURL:       firstImage(msg.Attachments),
		TapAction:      actions.TapAction(msg, n.ID),
		Actions:        actionList,
		DeviceToken:    device.Target(),
		PublicKey:      device.PublicKey,
	}
	v.Sensitive, v.Public = actions.Partition(actionList)

	switch {
	case msg.CollapseID != "":
		v.CollapseID = msg.CollapseID
	case msg.GroupID != "":
		v.ThreadID = msg.GroupID
	default:
		v.ThreadID = msg.Bucket.ID
	}

	return v, nil
}

// DefaultVariant is the first variant to try for a device.
func DefaultVariant(device *models.UserDevice) Variant {
	if device.HasPublicKey() {
		return VariantEncrypted
	}
	return VariantPlain
}

// Classify maps a delivery type to its priority class. NO_PUSH never reaches
// a builder and classifies as normal.
func Classify(dt models.DeliveryType) PriorityClass {
	switch dt {
	case models.DeliveryTypeCritical:
		return PriorityCritical
	case models.DeliveryTypeSilent:
		return PrioritySilent
	default:
		return PriorityNormal
	}
}

// FormatAttachments renders attachments as "TYPE:url", skipping icons.
func FormatAttachments(list []models.Attachment) []string {
	var out []string
	for _, a := range list {
		if a.MediaType == models.MediaTypeIcon || a.URL == "" {
			continue
		}
		out = append(out, string(a.MediaType)+":"+a.URL)
	}
	return out
}

func firstImage(list []models.Attachment) string {
	for _, a := range list {
		if a.MediaType == models.MediaTypeImage && a.URL != "" {
			return a.URL
		}
	}
	return ""
}

// Built is a serialized provider payload ready to send.
type Built struct {
	Platform models.Platform
	Variant  Variant
	Body     []byte
	Headers  map[string]string
	// Redacted is Body with every sensitive value truncated, for audit logs.
	Redacted []byte
}

// SizeBytes is the serialized payload size.
func (b *Built) SizeBytes() int {
	return len(b.Body)
}

// SizeKB is the payload size in KiB rounded to two decimals.
func (b *Built) SizeKB() float64 {
	return math.Round(float64(len(b.Body))/1024*100) / 100
}

func finish(platform models.Platform, variant Variant, body []byte, headers map[string]string) (*Built, error) {
	redacted, err := Redact(body)
	if err != nil {
		return nil, fmt.Errorf("failed to redact payload: %w", err)
	}
	return &Built{
		Platform: platform,
		Variant:  variant,
		Body:     body,
		Headers:  headers,
		Redacted: redacted,
	}, nil
}

// checkVariant validates a requested variant against the view.
func (v *View) checkVariant(variant Variant) error {
	switch variant {
	case VariantPlain, VariantSelfDownload:
		return nil
	case VariantEncrypted:
		if strings.TrimSpace(v.PublicKey) == "" {
			return ErrNoPublicKey
		}
		return nil
	default:
		return fmt.Errorf("unknown payload variant %q", variant)
	}
}
