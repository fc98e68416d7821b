// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Providers:
//     - APNs: Apple Push Notification service (token-based auth, .p8 key)
//     - FCM: Firebase Cloud Messaging HTTP v1 (service account)
//     - WebPush: RFC 8030 Web Push with VAPID
//
//  2. Delivery:
//     - Delivery: worker pool size, per-call timeout, unencrypted fallback
//     - Limits: per-provider rate limit and circuit breaker thresholds
//
//  3. Infrastructure:
//     - Server: ops HTTP server (health, readiness, metrics, provider status)
//     - NATS: delivery request intake via Watermill/NATS JetStream (optional)
//     - Logging: log level and output format
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Delivery DeliveryConfig `koanf:"delivery"`
	APNs     APNsConfig     `koanf:"apns"`
	FCM      FCMConfig      `koanf:"fcm"`
	WebPush  WebPushConfig  `koanf:"webpush"`
	Limits   LimitsConfig   `koanf:"limits"`
	NATS     NATSConfig     `koanf:"nats"`
}

// ServerConfig holds ops HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port" validate:"min=1,max=65535"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment" validate:"oneof=development staging production"`

	// DeliverAPI exposes POST /api/v1/deliver for synchronous delivery.
	// Keep it on a private network; it has no authentication.
	DeliverAPI bool `koanf:"deliver_api"`
	// DeliverAPIToken, when set, is required as a bearer token on the
	// deliver endpoint.
	DeliverAPIToken string `koanf:"deliver_api_token" validate:"max=72"`

	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// DeliveryConfig controls the delivery orchestrator.
//
// Environment Variables:
//   - DELIVERY_PARALLELISM: concurrent device deliveries (default: 10)
//   - DELIVERY_REQUEST_TIMEOUT: timeout of one provider call (default: 10s)
//   - DELIVERY_ALLOW_UNENCRYPTED_RETRY: default for users without a preference (default: false)
//   - DELIVERY_AUDIT_PAYLOADS: log redacted payloads at debug level (default: false)
type DeliveryConfig struct {
	Parallelism           int           `koanf:"parallelism" validate:"min=1,max=256"`
	RequestTimeout        time.Duration `koanf:"request_timeout"`
	AllowUnencryptedRetry bool          `koanf:"allow_unencrypted_retry"`
	AuditPayloads         bool          `koanf:"audit_payloads"`
}

// APNsConfig holds Apple Push Notification service credentials.
// Token-based authentication is used: an ES256 provider token is signed with
// the .p8 key and refreshed before Apple's one hour limit.
//
// Environment Variables:
//   - APNS_ENABLED
//   - APNS_KEY_ID, APNS_TEAM_ID: 10 character identifiers from the developer account
//   - APNS_BUNDLE_ID: app bundle id, sent as apns-topic
//   - APNS_PRIVATE_KEY or APNS_PRIVATE_KEY_PATH: the .p8 key contents or path
//   - APNS_PRODUCTION: use api.push.apple.com instead of the sandbox
//   - APNS_ENDPOINT: override the host (testing, proxies)
//   - APNS_EXPIRATION: how long APNs keeps undelivered notifications (default: 24h)
type APNsConfig struct {
	Enabled        bool          `koanf:"enabled"`
	KeyID          string        `koanf:"key_id" validate:"required_if=Enabled true,omitempty,len=10"`
	TeamID         string        `koanf:"team_id" validate:"required_if=Enabled true,omitempty,len=10"`
	BundleID       string        `koanf:"bundle_id" validate:"required_if=Enabled true"`
	PrivateKey     string        `koanf:"private_key"`
	PrivateKeyPath string        `koanf:"private_key_path"`
	Production     bool          `koanf:"production"`
	Endpoint       string        `koanf:"endpoint"`
	Expiration     time.Duration `koanf:"expiration"`
}

// FCMConfig holds Firebase Cloud Messaging HTTP v1 credentials.
//
// Environment Variables:
//   - FCM_ENABLED
//   - FCM_PROJECT_ID: defaults to project_id of the service account
//   - FCM_CREDENTIALS_JSON or FCM_CREDENTIALS_FILE: service account key
//   - FCM_ENDPOINT: API base URL (default: https://fcm.googleapis.com)
type FCMConfig struct {
	Enabled         bool   `koanf:"enabled"`
	ProjectID       string `koanf:"project_id"`
	CredentialsJSON string `koanf:"credentials_json"`
	CredentialsFile string `koanf:"credentials_file"`
	Endpoint        string `koanf:"endpoint"`
}

// WebPushConfig holds VAPID credentials for Web Push.
//
// Environment Variables:
//   - WEBPUSH_ENABLED
//   - VAPID_SUBJECT: mailto: or https: contact of the application server
//   - VAPID_PUBLIC_KEY, VAPID_PRIVATE_KEY: URL-safe base64 P-256 keys
//   - WEBPUSH_TTL: how long the push service keeps a message (default: 24h)
type WebPushConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Subject         string        `koanf:"subject" validate:"required_if=Enabled true"`
	VAPIDPublicKey  string        `koanf:"vapid_public_key" validate:"required_if=Enabled true"`
	VAPIDPrivateKey string        `koanf:"vapid_private_key" validate:"required_if=Enabled true"`
	TTL             time.Duration `koanf:"ttl"`
}

// ProviderLimits bounds traffic to one provider.
type ProviderLimits struct {
	// RatePerSecond is the sustained send rate; 0 disables the limiter.
	RatePerSecond float64 `koanf:"rate_per_second" validate:"gte=0"`
	Burst         int     `koanf:"burst" validate:"gte=0"`

	// Circuit breaker: opens when FailureRatio of at least MinRequests calls
	// inside Interval failed on the provider side; probes again after Timeout.
	BreakerMinRequests  uint32        `koanf:"breaker_min_requests"`
	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio" validate:"gte=0,lte=1"`
	BreakerInterval     time.Duration `koanf:"breaker_interval"`
	BreakerTimeout      time.Duration `koanf:"breaker_timeout"`
}

// LimitsConfig holds per-provider limits.
type LimitsConfig struct {
	APNs    ProviderLimits `koanf:"apns"`
	FCM     ProviderLimits `koanf:"fcm"`
	WebPush ProviderLimits `koanf:"webpush"`
}

// NATSConfig holds settings for the optional delivery request intake.
// Requests are consumed from RequestTopic and reports published to ResultTopic.
//
// Environment Variables:
//   - NATS_ENABLED: consume delivery requests from NATS (default: false)
//   - NATS_URL: server URL (default: nats://127.0.0.1:4222)
//   - NATS_REQUEST_TOPIC, NATS_RESULT_TOPIC
//   - NATS_DURABLE_NAME, NATS_QUEUE_GROUP, NATS_SUBSCRIBERS
type NATSConfig struct {
	Enabled          bool          `koanf:"enabled"`
	URL              string        `koanf:"url"`
	RequestTopic     string        `koanf:"request_topic" validate:"required_if=Enabled true"`
	ResultTopic      string        `koanf:"result_topic" validate:"required_if=Enabled true"`
	DurableName      string        `koanf:"durable_name"`
	QueueGroup       string        `koanf:"queue_group"`
	SubscribersCount int           `koanf:"subscribers_count" validate:"min=1,max=64"`
	AckWaitTimeout   time.Duration `koanf:"ack_wait_timeout"`
	CloseTimeout     time.Duration `koanf:"close_timeout"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
