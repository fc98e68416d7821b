// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package payload

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/envelope"
	"github.com/tomtom215/pushward/internal/models"
)

// Action is the compact wire form of a notification action.
type Action struct {
	Type        models.ActionType `json:"t"`
	Value       string            `json:"v,omitempty"`
	Title       string            `json:"n,omitempty"`
	Icon        string            `json:"i,omitempty"`
	Destructive bool              `json:"d,omitempty"`
}

// Content is the sensitive part of a notification. It is embedded at the
// payload root in the clear, or serialized and sealed into the envelope.
type Content struct {
	Title       string   `json:"tit"`
	Body        string   `json:"bdy,omitempty"`
	Subtitle    string   `json:"stl,omitempty"`
	Attachments []string `json:"att,omitempty"`
	TapAction   *Action  `json:"tp,omitempty"`
	Actions     []Action `json:"act,omitempty"`
}

func compact(a models.NotificationAction) Action {
	return Action{
		Type:        a.Type,
		Value:       a.Value,
		Title:       a.Title,
		Icon:        a.Icon,
		Destructive: a.Destructive,
	}
}

func compactAll(list []models.NotificationAction) []Action {
	if len(list) == 0 {
		return nil
	}
	out := make([]Action, len(list))
	for i, a := range list {
		out[i] = compact(a)
	}
	return out
}

func compactPtr(a *models.NotificationAction) *Action {
	if a == nil {
		return nil
	}
	c := compact(*a)
	return &c
}

// sealed is the content split of a view for one variant.
type sealed struct {
	// clear is set for VariantPlain.
	clear *Content
	// envelope is set for VariantEncrypted.
	envelope string
	// public are the actions that stay outside the envelope.
	public []Action
}

// split prepares the content section for a variant, encrypting when needed.
// The envelope is produced once and shared by every place that embeds it.
func (v *View) split(variant Variant) (*sealed, error) {
	if err := v.checkVariant(variant); err != nil {
		return nil, err
	}

	switch variant {
	case VariantPlain:
		return &sealed{clear: &Content{
			Title:       v.Title,
			Body:        v.Body,
			Subtitle:    v.Subtitle,
			Attachments: v.Attachments,
			TapAction:   compactPtr(v.TapAction),
			Actions:     compactAll(v.Actions),
		}}, nil

	case VariantEncrypted:
		secret := Content{
			Title:       v.Title,
			Body:        v.Body,
			Subtitle:    v.Subtitle,
			Attachments: v.Attachments,
			TapAction:   compactPtr(v.TapAction),
			Actions:     compactAll(v.Sensitive),
		}
		raw, err := json.Marshal(secret)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal sealed content: %w", err)
		}
		blob, err := envelope.Encrypt(string(raw), v.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt content: %w", err)
		}
		return &sealed{envelope: blob, public: compactAll(v.Public)}, nil

	default:
		return &sealed{}, nil
	}
}

// actions returns the actions visible outside any envelope.
func (s *sealed) actions() []Action {
	if s.clear != nil {
		return s.clear.Actions
	}
	return s.public
}
