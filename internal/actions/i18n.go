// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package actions

import (
	"fmt"

	"golang.org/x/text/language"
)

type phrase int

const (
	phraseDelete phrase = iota
	phraseMarkAsRead
	phraseOpen
	phraseSnooze
	phrasePostpone
)

type catalog struct {
	phrases map[phrase]string
	minute  string
	hour    string
	day     string
}

var supportedLanguages = []language.Tag{
	language.English, // first entry is the fallback
	language.Italian,
	language.German,
	language.French,
	language.Spanish,
}

var matcher = language.NewMatcher(supportedLanguages)

var catalogs = map[language.Tag]catalog{
	language.English: {
		phrases: map[phrase]string{
			phraseDelete:     "Delete",
			phraseMarkAsRead: "Mark as read",
			phraseOpen:       "Open",
			phraseSnooze:     "Snooze %s",
			phrasePostpone:   "Postpone %s",
		},
		minute: "m", hour: "h", day: "d",
	},
	language.Italian: {
		phrases: map[phrase]string{
			phraseDelete:     "Elimina",
			phraseMarkAsRead: "Segna come letto",
			phraseOpen:       "Apri",
			phraseSnooze:     "Posticipa %s",
			phrasePostpone:   "Rimanda %s",
		},
		minute: "m", hour: "h", day: "g",
	},
	language.German: {
		phrases: map[phrase]string{
			phraseDelete:     "Löschen",
			phraseMarkAsRead: "Als gelesen markieren",
			phraseOpen:       "Öffnen",
			phraseSnooze:     "Schlummern %s",
			phrasePostpone:   "Verschieben %s",
		},
		minute: "Min", hour: "Std", day: "T",
	},
	language.French: {
		phrases: map[phrase]string{
			phraseDelete:     "Supprimer",
			phraseMarkAsRead: "Marquer comme lu",
			phraseOpen:       "Ouvrir",
			phraseSnooze:     "Répéter %s",
			phrasePostpone:   "Reporter %s",
		},
		minute: "min", hour: "h", day: "j",
	},
	language.Spanish: {
		phrases: map[phrase]string{
			phraseDelete:     "Eliminar",
			phraseMarkAsRead: "Marcar como leído",
			phraseOpen:       "Abrir",
			phraseSnooze:     "Posponer %s",
			phrasePostpone:   "Aplazar %s",
		},
		minute: "min", hour: "h", day: "d",
	},
}

// catalogFor picks the best catalog for a BCP 47 locale string.
func catalogFor(locale string) catalog {
	if locale == "" {
		return catalogs[language.English]
	}
	_, idx := language.MatchStrings(matcher, locale)
	return catalogs[supportedLanguages[idx]]
}

func (c catalog) text(p phrase) string {
	return c.phrases[p]
}

func (c catalog) withDuration(p phrase, minutes int) string {
	return fmt.Sprintf(c.phrases[p], c.duration(minutes))
}

// duration renders minutes compactly: 15m, 1h, 1h 30m, 2d.
func (c catalog) duration(minutes int) string {
	const (
		minutesPerHour = 60
		minutesPerDay  = 24 * minutesPerHour
	)
	switch {
	case minutes >= minutesPerDay && minutes%minutesPerDay == 0:
		return fmt.Sprintf("%d%s", minutes/minutesPerDay, c.day)
	case minutes >= minutesPerHour && minutes%minutesPerHour == 0:
		return fmt.Sprintf("%d%s", minutes/minutesPerHour, c.hour)
	case minutes > minutesPerHour:
		return fmt.Sprintf("%d%s %d%s", minutes/minutesPerHour, c.hour, minutes%minutesPerHour, c.minute)
	default:
		return fmt.Sprintf("%d%s", minutes, c.minute)
	}
}
