// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the configuration loader and the
// delivery intake. Besides the built-in tags it registers:
//
//   - platform: value must be a known models.Platform (IOS, ANDROID, WEB)
//   - deliverytype: value must be a known models.DeliveryType
//
// Field names in errors use JSON wire names namespaced below the root struct,
// so a bad device platform in a delivery request reports "devices[0].platform".
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    logging.Warn().Strs("fields", verr.Fields()).Msg("rejected delivery request")
//	}
package validation
