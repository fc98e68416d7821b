// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package services adapts blocking components to suture.Service: the ops
// HTTP server (ListenAndServe/Shutdown) and periodic housekeeping tasks.
package services
