// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package models defines the records consumed by the push delivery pipeline.

Notifications, messages and devices are owned by other subsystems (storage,
messaging, device registration). Pushward reads them, never mutates them, and
persists nothing of its own.

Key Components:

  - Notification: one (message, user, device) delivery unit
  - Message: title/body/attachments/actions shared by its notifications
  - UserDevice: a platform endpoint with an optional RSA public key (JWK)
  - NotificationAction: a tagged action variant; NAVIGATE and BACKGROUND_CALL
    are sensitive and are encrypted when the device has a key
  - AutoActionSettings: user defaults for synthesized actions
*/
package models
