// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package main is the entry point of the Pushward delivery service.
//
// Pushward takes delivery requests for stored notifications and pushes them
// to APNs, FCM and Web Push, encrypting the content for each device's public
// key and falling back along the retry ladder when a provider rejects an
// oversized payload.
//
// # Commands
//
//	pushward [serve]        run the service (default)
//	pushward keygen [bits]  print a device key pair (public JWK, private PEM)
//	pushward vapid          print a VAPID key pair for Web Push
//
// # Service Startup
//
//  1. Configuration: Koanf v2 layering of defaults, config.yaml and env vars
//  2. Logging: zerolog with the configured level and format
//  3. Providers: APNs, FCM and Web Push senders (lazily initialized)
//  4. Orchestrator: per-device retry ladder over a bounded worker pool
//  5. Intake (NATS_ENABLED): JetStream consumer of notification.deliver
//  6. Ops HTTP: /healthz, /readyz, /metrics, /api/v1/providers
//
// Everything long-lived runs under a suture supervisor tree. SIGINT and
// SIGTERM cancel the tree and every service shuts down gracefully.
package main

import (
	"fmt"
	"os"

	"github.com/tomtom215/pushward/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "serve":
		err = runServe()
	case "keygen":
		err = runKeygen(os.Stdout, args)
	case "vapid":
		err = runVAPID(os.Stdout)
	case "version":
		fmt.Println(version)
	case "-h", "--help", "help":
		fmt.Fprintln(os.Stderr, "usage: pushward [serve|keygen [bits]|vapid|version]")
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		os.Exit(2)
	}

	if err != nil {
		logging.Fatal().Err(err).Str("command", cmd).Msg("Command failed")
	}
}
