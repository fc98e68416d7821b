// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package actions derives the notification action buttons for a message.
//
// BuildActions merges automatic actions (delete, mark-as-read, open, snooze,
// postpone) synthesized from message flags and user settings with the
// actions the message author supplied, resolving icons and titles for the
// target platform. It is pure: the same inputs always produce the same list.
package actions

import (
	"strconv"

	"github.com/tomtom215/pushward/internal/models"
)

// Hard defaults used when neither the message nor the user settings decide.
const (
	defaultAddDelete     = true
	defaultAddMarkAsRead = true
	defaultAddOpen       = false
)

// BuildActions returns the ordered action list for one notification on one
// platform: delete, mark-as-read, open, snoozes, postpones, then the
// message-defined actions.
func BuildActions(msg *models.Message, notificationID string, platform models.Platform, settings models.AutoActionSettings) []models.NotificationAction {
	if msg == nil {
		return nil
	}

	locale := msg.Locale
	if locale == "" {
		locale = settings.Locale
	}
	cat := catalogFor(locale)

	authored := make(map[models.ActionType]bool, len(msg.Actions))
	for _, a := range msg.Actions {
		authored[a.Type] = true
	}

	var out []models.NotificationAction
	addAuto := func(t models.ActionType, title string, destructive bool) {
		if authored[t] {
			return
		}
		out = append(out, models.NotificationAction{
			Type:        t,
			Value:       notificationID,
			Title:       title,
			Icon:        ResolveIcon(string(defaultIcons[t]), platform),
			Destructive: destructive,
		})
	}

	if resolveFlag(msg.AddDeleteAction, settings.AutoAddDeleteAction, defaultAddDelete) {
		addAuto(models.ActionTypeDelete, cat.text(phraseDelete), true)
	}
	if resolveFlag(msg.AddMarkAsReadAction, settings.AutoAddMarkAsReadAction, defaultAddMarkAsRead) {
		addAuto(models.ActionTypeMarkAsRead, cat.text(phraseMarkAsRead), false)
	}
	if resolveFlag(msg.AddOpenNotificationAction, settings.AutoAddOpenNotificationAction, defaultAddOpen) {
		addAuto(models.ActionTypeOpenNotification, cat.text(phraseOpen), false)
	}

	for _, minutes := range durations(msg.Snoozes, settings.DefaultSnoozes) {
		out = append(out, models.NotificationAction{
			Type:  models.ActionTypeSnooze,
			Value: strconv.Itoa(minutes),
			Title: cat.withDuration(phraseSnooze, minutes),
			Icon:  ResolveIcon(string(IconSnooze), platform),
		})
	}
	for _, minutes := range durations(msg.Postpones, settings.DefaultPostpones) {
		out = append(out, models.NotificationAction{
			Type:  models.ActionTypePostpone,
			Value: strconv.Itoa(minutes),
			Title: cat.withDuration(phrasePostpone, minutes),
			Icon:  ResolveIcon(string(IconPostpone), platform),
		})
	}

	for _, a := range msg.Actions {
		a.Icon = iconFor(a, platform)
		out = append(out, a)
	}

	return out
}

// TapAction returns the action fired when the notification itself is tapped:
// the message's tap action, or opening the notification in the app.
func TapAction(msg *models.Message, notificationID string) *models.NotificationAction {
	if msg != nil && msg.TapAction != nil {
		tap := *msg.TapAction
		if tap.Value == "" && tap.Type == models.ActionTypeOpenNotification {
			tap.Value = notificationID
		}
		return &tap
	}
	return &models.NotificationAction{
		Type:  models.ActionTypeOpenNotification,
		Value: notificationID,
	}
}

// Partition splits actions into sensitive (NAVIGATE, BACKGROUND_CALL) and
// public subsets, preserving order within each.
func Partition(list []models.NotificationAction) (sensitive, public []models.NotificationAction) {
	for _, a := range list {
		if a.Type.IsSensitive() {
			sensitive = append(sensitive, a)
		} else {
			public = append(public, a)
		}
	}
	return sensitive, public
}

// resolveFlag applies message > settings > default precedence.
func resolveFlag(message, settings *bool, fallback bool) bool {
	if message != nil {
		return *message
	}
	if settings != nil {
		return *settings
	}
	return fallback
}

// durations returns the message list when set (even if empty), otherwise
// the user's defaults. Non-positive entries are dropped.
func durations(message, defaults []int) []int {
	src := defaults
	if message != nil {
		src = message
	}
	out := make([]int, 0, len(src))
	for _, m := range src {
		if m > 0 {
			out = append(out, m)
		}
	}
	return out
}
