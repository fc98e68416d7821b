// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package cache provides a bounded, thread-safe LRU cache with per-entry TTL.

The intake consumer uses it to remember the report of every recently
delivered notification. A redelivered request (JetStream redelivers when an
ack is lost) is answered from the cache instead of sending the push again.

	reports := cache.NewLRU[[]byte](10000, 10*time.Minute)

	if report, ok := reports.Get(notificationID); ok {
	    return republish(report)
	}
	reports.Add(notificationID, encoded)

Expiration is lazy: an expired entry is dropped when it is next read, when it
is the eviction candidate, or by CleanupExpired.
*/
package cache
