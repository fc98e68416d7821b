// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package delivery sends one notification to a set of devices.

Each device runs a small state machine (the ladder). A device with a public
key starts with the encrypted payload; a device without one gets a single
plain attempt.

	ENCRYPTED_SEND --too large--> RETRY_PLAIN          (opt-in only)
	ENCRYPTED_SEND --too large--> RETRY_SELF_DOWNLOAD  (otherwise)
	RETRY_PLAIN    --too large--> RETRY_SELF_DOWNLOAD
	any state      --success----> DONE_SUCCESS
	any state      --failure----> DONE_FAILURE

Only size rejections move along the ladder. Token, auth, transport and
crypto failures end it at once. Web Push has no ladder.

Devices are processed by a bounded worker pool; results keep the order of
the request. Each provider call runs under its own timeout, and a timeout is
a terminal TIMEOUT failure.

Usage:

	orch := delivery.New(push.NewFromConfig(cfg), cfg.Delivery, logger)
	report, err := orch.Deliver(ctx, &delivery.Request{
		Notification: n,
		Devices:      devices,
		Settings:     settings,
	})
*/
package delivery
