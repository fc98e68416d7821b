// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package intake consumes delivery requests from a message broker and publishes
delivery reports.

Requests are JSON encoded delivery.Request values read from the request topic
(default notification.deliver). Each one is validated, delivered through the
orchestrator and answered with a JSON delivery.Report on the result topic
(default notification.delivered). The correlation id of the request is copied
to the report.

Malformed and invalid requests are acknowledged and dropped: redelivering
them can never succeed. Reports of recent notifications are cached, so a
redelivered request republishes its report instead of pushing twice.

In production the transport is NATS JetStream through watermill-nats; tests
use watermill's in-memory gochannel.
*/
package intake
