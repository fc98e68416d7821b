// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package payload

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// redactPrefixRunes caps how much of a sensitive value survives redaction.
// Shorter values keep at most half their runes.
const redactPrefixRunes = 8

// redactEllipsis marks a truncated value.
const redactEllipsis = "…"

// sensitiveKeys are payload keys whose whole subtree is redacted, in every
// provider format (root fields, aps.alert, FCM data, action values).
var sensitiveKeys = map[string]bool{
	"tit":      true,
	"bdy":      true,
	"stl":      true,
	"att":      true,
	"tp":       true,
	"img":      true,
	"enc":      true,
	"title":    true,
	"subtitle": true,
	"body":     true,
	"image":    true,
	"v":        true,
	"n":        true,
	"token":    true,
}

// Redact returns a copy of a serialized payload with every sensitive value
// truncated to a short prefix plus an ellipsis. All builders share this
// function so the truncation rules cannot diverge per provider.
func Redact(body []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return json.Marshal(redactNode(tree, false))
}

func redactNode(node any, sensitive bool) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			childSensitive := sensitive || sensitiveKeys[k]
			// FCM carries actions as a JSON string in the data map.
			if k == "act" {
				if _, isString := v.(string); isString {
					childSensitive = true
				}
			}
			out[k] = redactNode(v, childSensitive)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = redactNode(v, sensitive)
		}
		return out
	case string:
		if sensitive {
			return Truncate(n)
		}
		return n
	default:
		return n
	}
}

// Truncate shortens s to a prefix plus an ellipsis. Every non-empty value is
// cut, so no value survives whole. The encrypted placeholder is not secret and
// is kept intact.
func Truncate(s string) string {
	if s == "" || s == EncryptedPlaceholder {
		return s
	}
	runes := []rune(s)
	keep := min(redactPrefixRunes, len(runes)/2)
	return string(runes[:keep]) + redactEllipsis
}
