// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

/*
Package config provides centralized configuration management for Pushward.

# Configuration Sources

Configuration is layered with Koanf v2, later sources overriding earlier ones:
  - Built-in defaults (defaultConfig)
  - Optional YAML file: $CONFIG_PATH, ./config.yaml, /etc/pushward/config.yaml
  - Environment variables

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8086), HTTP_TIMEOUT
  - ENVIRONMENT: development, staging, production
  - DELIVER_API: expose POST /api/v1/deliver (default: false)
  - DELIVER_API_TOKEN: bearer token required by the deliver endpoint
  - HTTP_RATE_LIMIT, HTTP_RATE_WINDOW (default: 300 per 1m, 0 disables)
  - CORS_ORIGINS: comma separated origins allowed to read the ops API

Delivery:
  - DELIVERY_PARALLELISM (default: 10)
  - DELIVERY_REQUEST_TIMEOUT (default: 10s)
  - DELIVERY_ALLOW_UNENCRYPTED_RETRY (default: false)
  - DELIVERY_AUDIT_PAYLOADS (default: false)

APNs:
  - APNS_ENABLED, APNS_KEY_ID, APNS_TEAM_ID, APNS_BUNDLE_ID
  - APNS_PRIVATE_KEY or APNS_PRIVATE_KEY_PATH
  - APNS_PRODUCTION, APNS_ENDPOINT, APNS_EXPIRATION

FCM:
  - FCM_ENABLED, FCM_PROJECT_ID
  - FCM_CREDENTIALS_JSON or FCM_CREDENTIALS_FILE
  - FCM_ENDPOINT

Web Push:
  - WEBPUSH_ENABLED, VAPID_SUBJECT, VAPID_PUBLIC_KEY, VAPID_PRIVATE_KEY, WEBPUSH_TTL

Provider limits (PROVIDER is APNS, FCM or WEBPUSH):
  - <PROVIDER>_RATE_LIMIT, <PROVIDER>_RATE_BURST
  - <PROVIDER>_BREAKER_MIN_REQUESTS, <PROVIDER>_BREAKER_FAILURE_RATIO
  - <PROVIDER>_BREAKER_INTERVAL, <PROVIDER>_BREAKER_TIMEOUT

NATS intake:
  - NATS_ENABLED, NATS_URL, NATS_REQUEST_TOPIC, NATS_RESULT_TOPIC
  - NATS_DURABLE_NAME, NATS_QUEUE_GROUP, NATS_SUBSCRIBERS
  - NATS_ACK_WAIT, NATS_CLOSE_TIMEOUT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Validate runs go-playground/validator struct tags through the shared
validation package, then cross-field checks (key material present for
enabled providers, endpoint URLs, VAPID subject form, breaker settings).
A disabled provider is never validated; the delivery layer reports
NOT_CONFIGURED for its devices instead.

# Example

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
*/
package config
