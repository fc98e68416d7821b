// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package actions

import (
	"strings"

	"github.com/tomtom215/pushward/internal/models"
)

// Icon is a symbolic icon identifier, resolved per platform.
type Icon string

const (
	IconTrash          Icon = "trash"
	IconCheckmark      Icon = "checkmark"
	IconOpen           Icon = "open"
	IconSnooze         Icon = "snooze"
	IconPostpone       Icon = "postpone"
	IconNavigate       Icon = "navigate"
	IconBackgroundCall Icon = "background_call"
	IconWebhook        Icon = "webhook"
)

// iconTable maps a symbolic icon to the glyph each platform renders:
// SF Symbols on iOS, Material icon names on Android, emoji on the web.
var iconTable = map[Icon]map[models.Platform]string{
	IconTrash: {
		models.PlatformIOS:     "trash",
		models.PlatformAndroid: "delete",
		models.PlatformWeb:     "🗑️",
	},
	IconCheckmark: {
		models.PlatformIOS:     "checkmark",
		models.PlatformAndroid: "done",
		models.PlatformWeb:     "✅",
	},
	IconOpen: {
		models.PlatformIOS:     "arrow.up.forward.app",
		models.PlatformAndroid: "open_in_new",
		models.PlatformWeb:     "↗️",
	},
	IconSnooze: {
		models.PlatformIOS:     "clock",
		models.PlatformAndroid: "snooze",
		models.PlatformWeb:     "⏰",
	},
	IconPostpone: {
		models.PlatformIOS:     "calendar.badge.clock",
		models.PlatformAndroid: "schedule",
		models.PlatformWeb:     "📅",
	},
	IconNavigate: {
		models.PlatformIOS:     "safari",
		models.PlatformAndroid: "link",
		models.PlatformWeb:     "🔗",
	},
	IconBackgroundCall: {
		models.PlatformIOS:     "arrow.triangle.2.circlepath",
		models.PlatformAndroid: "sync",
		models.PlatformWeb:     "🔄",
	},
	IconWebhook: {
		models.PlatformIOS:     "bolt",
		models.PlatformAndroid: "bolt",
		models.PlatformWeb:     "⚡",
	},
}

// defaultIcons is the icon used for an action type when the author set none.
var defaultIcons = map[models.ActionType]Icon{
	models.ActionTypeDelete:           IconTrash,
	models.ActionTypeMarkAsRead:       IconCheckmark,
	models.ActionTypeOpenNotification: IconOpen,
	models.ActionTypeSnooze:           IconSnooze,
	models.ActionTypePostpone:         IconPostpone,
	models.ActionTypeNavigate:         IconNavigate,
	models.ActionTypeBackgroundCall:   IconBackgroundCall,
	models.ActionTypeWebhook:          IconWebhook,
}

// sfSymbolPrefix marks an author-supplied iOS symbol name.
const sfSymbolPrefix = "sfsymbols:"

// ResolveIcon returns the platform glyph for a symbolic icon. Unknown icons
// are passed through unchanged; an "sfsymbols:" prefix is stripped so authors
// may address SF Symbols directly.
func ResolveIcon(icon string, platform models.Platform) string {
	if icon == "" {
		return ""
	}
	if glyphs, ok := iconTable[Icon(icon)]; ok {
		if glyph, ok := glyphs[platform]; ok {
			return glyph
		}
	}
	return strings.TrimPrefix(icon, sfSymbolPrefix)
}

// iconFor resolves the icon of an action, falling back to the type default.
func iconFor(action models.NotificationAction, platform models.Platform) string {
	if action.Icon != "" {
		return ResolveIcon(action.Icon, platform)
	}
	if icon, ok := defaultIcons[action.Type]; ok {
		return ResolveIcon(string(icon), platform)
	}
	return ""
}
