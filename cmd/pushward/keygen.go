// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package main

import (
	"fmt"
	"io"
	"strconv"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/goccy/go-json"

	"github.com/tomtom215/pushward/internal/envelope"
)

const defaultKeyBits = 2048

type deviceKeys struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

type vapidKeys struct {
	PublicKey  string `json:"vapidPublicKey"`
	PrivateKey string `json:"vapidPrivateKey"`
}

// runKeygen prints a device key pair in the forms a client registers and
// stores.
func runKeygen(w io.Writer, args []string) error {
	bits := defaultKeyBits
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid key size %q: %w", args[0], err)
		}
		bits = n
	}

	pair, err := envelope.GenerateKeyPair(bits)
	if err != nil {
		return err
	}
	return writeJSON(w, deviceKeys{PublicKey: pair.PublicJWK, PrivateKey: pair.PrivatePEM})
}

// runVAPID prints a VAPID key pair for WEBPUSH configuration.
func runVAPID(w io.Writer) error {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return fmt.Errorf("generate VAPID keys: %w", err)
	}
	return writeJSON(w, vapidKeys{PublicKey: publicKey, PrivateKey: privateKey})
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
