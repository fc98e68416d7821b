// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pushward/config.yaml",
	"/etc/pushward/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultProviderLimits are the limits applied to every provider unless overridden.
func defaultProviderLimits() ProviderLimits {
	return ProviderLimits{
		RatePerSecond:       0, // Unlimited
		Burst:               50,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.6,
		BreakerInterval:     time.Minute,
		BreakerTimeout:      30 * time.Second,
	}
}

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8086,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",

			DeliverAPI:        false,
			RateLimitRequests: 300,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Delivery: DeliveryConfig{
			Parallelism:           10,
			RequestTimeout:        10 * time.Second,
			AllowUnencryptedRetry: false, // Never weaken encryption unless the user opted in
			AuditPayloads:         false,
		},
		APNs: APNsConfig{
			Enabled:    false,
			Production: false,
			Expiration: 24 * time.Hour,
		},
		FCM: FCMConfig{
			Enabled:  false,
			Endpoint: "https://fcm.googleapis.com",
		},
		WebPush: WebPushConfig{
			Enabled: false,
			TTL:     24 * time.Hour,
		},
		Limits: LimitsConfig{
			APNs:    defaultProviderLimits(),
			FCM:     defaultProviderLimits(),
			WebPush: defaultProviderLimits(),
		},
		NATS: NATSConfig{
			Enabled:          false,
			URL:              "nats://127.0.0.1:4222",
			RequestTopic:     "notification.deliver",
			ResultTopic:      "notification.delivered",
			DurableName:      "pushward-delivery",
			QueueGroup:       "pushward",
			SubscribersCount: 4,
			AckWaitTimeout:   60 * time.Second,
			CloseTimeout:     30 * time.Second,
		},
	}
}

// source is one configuration layer.
type source struct {
	what     string
	provider koanf.Provider
	parser   koanf.Parser
}

// LoadWithKoanf merges, lowest priority first: built-in defaults, the
// optional YAML file (see findConfigFile), then mapped environment
// variables. Key material referenced by path is read in afterwards and the
// result is validated.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	sources := []source{{what: "defaults", provider: structs.Provider(defaultConfig(), "koanf")}}
	if path := findConfigFile(); path != "" {
		sources = append(sources, source{what: "config file " + path, provider: file.Provider(path), parser: yaml.Parser()})
	}
	sources = append(sources, source{what: "environment", provider: env.Provider("", ".", envTransformFunc)})

	for _, src := range sources {
		if err := k.Load(src.provider, src.parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", src.what, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.resolveSecretFiles(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// findConfigFile returns CONFIG_PATH when it names an existing file,
// otherwise the first existing DefaultConfigPaths entry, otherwise "".
func findConfigFile() string {
	candidates := DefaultConfigPaths
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		candidates = append([]string{p}, DefaultConfigPaths...)
	}
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// resolveSecretFiles reads key material given by path into the inline fields.
// Inline values win when both are set.
func (c *Config) resolveSecretFiles() error {
	if c.APNs.PrivateKey == "" && c.APNs.PrivateKeyPath != "" {
		raw, err := os.ReadFile(c.APNs.PrivateKeyPath)
		if err != nil {
			return fmt.Errorf("failed to read APNS_PRIVATE_KEY_PATH: %w", err)
		}
		c.APNs.PrivateKey = string(raw)
	}
	if c.FCM.CredentialsJSON == "" && c.FCM.CredentialsFile != "" {
		raw, err := os.ReadFile(c.FCM.CredentialsFile)
		if err != nil {
			return fmt.Errorf("failed to read FCM_CREDENTIALS_FILE: %w", err)
		}
		c.FCM.CredentialsJSON = string(raw)
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_port":         "server.port",
	"http_host":         "server.host",
	"http_timeout":      "server.timeout",
	"environment":       "server.environment",
	"deliver_api":       "server.deliver_api",
	"deliver_api_token": "server.deliver_api_token",
	"http_rate_limit":   "server.rate_limit_requests",
	"http_rate_window":  "server.rate_limit_window",
	"cors_origins":      "server.cors_origins",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Delivery mappings
	"delivery_parallelism":             "delivery.parallelism",
	"delivery_request_timeout":         "delivery.request_timeout",
	"delivery_allow_unencrypted_retry": "delivery.allow_unencrypted_retry",
	"delivery_audit_payloads":          "delivery.audit_payloads",

	// APNs mappings
	"apns_enabled":          "apns.enabled",
	"apns_key_id":           "apns.key_id",
	"apns_team_id":          "apns.team_id",
	"apns_bundle_id":        "apns.bundle_id",
	"apns_private_key":      "apns.private_key",
	"apns_private_key_path": "apns.private_key_path",
	"apns_production":       "apns.production",
	"apns_endpoint":         "apns.endpoint",
	"apns_expiration":       "apns.expiration",

	// FCM mappings
	"fcm_enabled":          "fcm.enabled",
	"fcm_project_id":       "fcm.project_id",
	"fcm_credentials_json": "fcm.credentials_json",
	"fcm_credentials_file": "fcm.credentials_file",
	"fcm_endpoint":         "fcm.endpoint",

	// Web Push mappings
	"webpush_enabled":   "webpush.enabled",
	"vapid_subject":     "webpush.subject",
	"vapid_public_key":  "webpush.vapid_public_key",
	"vapid_private_key": "webpush.vapid_private_key",
	"webpush_ttl":       "webpush.ttl",

	// NATS mappings
	"nats_enabled":       "nats.enabled",
	"nats_url":           "nats.url",
	"nats_request_topic": "nats.request_topic",
	"nats_result_topic":  "nats.result_topic",
	"nats_durable_name":  "nats.durable_name",
	"nats_queue_group":   "nats.queue_group",
	"nats_subscribers":   "nats.subscribers_count",
	"nats_ack_wait":      "nats.ack_wait_timeout",
	"nats_close_timeout": "nats.close_timeout",
}

// limitEnvSuffixes maps the suffix of <PROVIDER>_<SUFFIX> limit variables.
var limitEnvSuffixes = map[string]string{
	"rate_limit":            "rate_per_second",
	"rate_burst":            "burst",
	"breaker_min_requests":  "breaker_min_requests",
	"breaker_failure_ratio": "breaker_failure_ratio",
	"breaker_interval":      "breaker_interval",
	"breaker_timeout":       "breaker_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - APNS_KEY_ID -> apns.key_id
//   - VAPID_PUBLIC_KEY -> webpush.vapid_public_key
//   - FCM_RATE_LIMIT -> limits.fcm.rate_per_second
//   - WEBPUSH_BREAKER_TIMEOUT -> limits.webpush.breaker_timeout
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	for _, provider := range []string{"apns", "fcm", "webpush"} {
		prefix := provider + "_"
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if field, ok := limitEnvSuffixes[strings.TrimPrefix(key, prefix)]; ok {
			return "limits." + provider + "." + field
		}
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
