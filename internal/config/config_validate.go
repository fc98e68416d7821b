// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/pushward/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Struct tags cover presence and ranges; the checks below cover
// cross-field rules the tags cannot express.
func (c *Config) Validate() error {
	if verr := validation.ValidateStruct(c); verr != nil {
		return verr
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDelivery(); err != nil {
		return err
	}

	if err := c.validateAPNs(); err != nil {
		return err
	}

	if err := c.validateFCM(); err != nil {
		return err
	}

	if err := c.validateWebPush(); err != nil {
		return err
	}

	if err := c.validateLimits(); err != nil {
		return err
	}

	return c.validateNATS()
}

// validateServer validates ops HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("HTTP_RATE_WINDOW must be positive when HTTP_RATE_LIMIT is set")
	}
	return nil
}

// validateDelivery validates orchestrator settings
func (c *Config) validateDelivery() error {
	if c.Delivery.RequestTimeout < 100*time.Millisecond || c.Delivery.RequestTimeout > 5*time.Minute {
		return fmt.Errorf("DELIVERY_REQUEST_TIMEOUT must be between 100ms and 5m, got %v", c.Delivery.RequestTimeout)
	}
	return nil
}

// validateAPNs validates APNs configuration (only if enabled)
func (c *Config) validateAPNs() error {
	if !c.APNs.Enabled {
		return nil
	}

	if strings.TrimSpace(c.APNs.PrivateKey) == "" {
		return fmt.Errorf("APNS_PRIVATE_KEY or APNS_PRIVATE_KEY_PATH is required when APNS_ENABLED=true")
	}
	if !strings.Contains(c.APNs.PrivateKey, "PRIVATE KEY") {
		return fmt.Errorf("APNS_PRIVATE_KEY does not look like a PEM encoded .p8 key")
	}
	if c.APNs.Endpoint != "" {
		if err := validateHTTPURL(c.APNs.Endpoint, "APNS_ENDPOINT"); err != nil {
			return err
		}
	}
	if c.APNs.Expiration < 0 {
		return fmt.Errorf("APNS_EXPIRATION must not be negative")
	}
	return nil
}

// validateFCM validates FCM configuration (only if enabled)
func (c *Config) validateFCM() error {
	if !c.FCM.Enabled {
		return nil
	}

	if strings.TrimSpace(c.FCM.CredentialsJSON) == "" {
		return fmt.Errorf("FCM_CREDENTIALS_JSON or FCM_CREDENTIALS_FILE is required when FCM_ENABLED=true")
	}
	if err := validateHTTPURL(c.FCM.Endpoint, "FCM_ENDPOINT"); err != nil {
		return err
	}
	return nil
}

// validateWebPush validates Web Push configuration (only if enabled)
func (c *Config) validateWebPush() error {
	if !c.WebPush.Enabled {
		return nil
	}

	if err := validateVAPIDSubject(c.WebPush.Subject); err != nil {
		return err
	}
	if c.WebPush.TTL < 0 {
		return fmt.Errorf("WEBPUSH_TTL must not be negative")
	}
	return nil
}

// validateLimits validates per-provider limits
func (c *Config) validateLimits() error {
	for name, l := range map[string]ProviderLimits{
		"APNS":    c.Limits.APNs,
		"FCM":     c.Limits.FCM,
		"WEBPUSH": c.Limits.WebPush,
	} {
		if l.RatePerSecond > 0 && l.Burst < 1 {
			return fmt.Errorf("%s_RATE_BURST must be at least 1 when %s_RATE_LIMIT is set", name, name)
		}
		if l.BreakerTimeout <= 0 {
			return fmt.Errorf("%s_BREAKER_TIMEOUT must be positive", name)
		}
	}
	return nil
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.NATS.RequestTopic == c.NATS.ResultTopic {
		return fmt.Errorf("NATS_REQUEST_TOPIC and NATS_RESULT_TOPIC must differ")
	}
	return nil
}
