// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package supervisor runs the long-lived services of Pushward under a suture v4
supervisor tree.

	RootSupervisor ("pushward")
	├── DeliverySupervisor ("delivery-layer")
	│   ├── intake consumer (if NATS_ENABLED)
	│   └── report cache janitor
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (ops endpoints)

A crashing intake consumer is restarted with backoff while the ops endpoints
keep answering, so /readyz can report the outage. Supervisor events are
logged through sutureslog using the zerolog-backed slog logger from the
logging package.

Cancel the context passed to Serve to shut the tree down; every service gets
ShutdownTimeout to return.
*/
package supervisor
