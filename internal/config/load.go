package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// MinSessionSecretLength is the minimum length of the session secret.
// Shorter secrets are refused at startup.
const MinSessionSecretLength = 32

// DefaultExchangeTimeout bounds the backend code-exchange call
const DefaultExchangeTimeout = 30 * time.Second

// KnownProviders is the closed set of identity providers the relay supports
var KnownProviders = []string{"google", "apple", "facebook", "twitch"}

// Load loads and processes the config with immediate env var resolution
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return Config{}, fmt.Errorf("parsing config JSON: %w", err)
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		return Config{}, fmt.Errorf("config version is required")
	}
	if !strings.HasPrefix(version, "v1") {
		return Config{}, fmt.Errorf("unsupported config version: %s", version)
	}

	if err := validateRawConfig(rawConfig); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	// Parse directly into the typed Config struct. The custom UnmarshalJSON
	// methods resolve env var references immediately.
	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return Config{}, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// validateRawConfig validates the config structure before environment resolution.
// Secrets must arrive as env references, never as literals in the file.
func validateRawConfig(rawConfig map[string]any) error {
	relay, ok := rawConfig["relay"].(map[string]any)
	if !ok {
		return fmt.Errorf("relay section is required")
	}

	if session, ok := relay["session"].(map[string]any); ok {
		if secret, exists := session["secret"]; exists {
			if _, isString := secret.(string); isString {
				return fmt.Errorf("session.secret must use environment variable reference for security")
			}
			if refMap, isMap := secret.(map[string]any); isMap {
				if _, hasEnv := refMap["$env"]; !hasEnv {
					return fmt.Errorf("session.secret must use {\"$env\": \"VAR_NAME\"} format")
				}
			}
		}
	}

	return nil
}

func applyDefaults(config *Config) {
	relay := &config.Relay

	if relay.CallbackURL == "" && relay.BaseURL != "" {
		relay.CallbackURL = strings.TrimRight(relay.BaseURL, "/") + "/callback"
	}
	if relay.Session.Storage == "" {
		relay.Session.Storage = PendingStorageCookie
	}
	if relay.Session.FirestoreCollection == "" {
		relay.Session.FirestoreCollection = "auth_front_pending_logins"
	}
	if relay.Exchange.Timeout == 0 {
		relay.Exchange.Timeout = DefaultExchangeTimeout
	}
}

// ValidateConfig validates the resolved configuration
func ValidateConfig(config *Config) error {
	relay := &config.Relay

	if relay.BaseURL == "" {
		return fmt.Errorf("relay.baseURL is required")
	}
	if _, err := url.ParseRequestURI(relay.BaseURL); err != nil {
		return fmt.Errorf("relay.baseURL is not a valid URL: %w", err)
	}
	if relay.Addr == "" {
		return fmt.Errorf("relay.addr is required")
	}
	if _, err := url.ParseRequestURI(relay.CallbackURL); err != nil {
		return fmt.Errorf("relay.callbackURL is not a valid URL: %w", err)
	}

	if len(relay.Session.Secret) < MinSessionSecretLength {
		return fmt.Errorf("relay.session.secret must be at least %d characters", MinSessionSecretLength)
	}

	switch relay.Session.Storage {
	case PendingStorageCookie, PendingStorageMemory:
	case PendingStorageFirestore:
		if relay.Session.GCPProject == "" {
			return fmt.Errorf("relay.session.gcpProject is required for firestore storage")
		}
	default:
		return fmt.Errorf("unknown session storage: %s", relay.Session.Storage)
	}

	if relay.Exchange.BaseURL == "" {
		return fmt.Errorf("relay.exchange.baseURL is required")
	}
	if _, err := url.ParseRequestURI(relay.Exchange.BaseURL); err != nil {
		return fmt.Errorf("relay.exchange.baseURL is not a valid URL: %w", err)
	}
	if relay.Exchange.Timeout < 0 {
		return fmt.Errorf("relay.exchange.timeout cannot be negative")
	}

	for name := range relay.Providers {
		if !isKnownProvider(name) {
			return fmt.Errorf("unknown provider in config: %s", name)
		}
	}

	return nil
}

func isKnownProvider(name string) bool {
	for _, p := range KnownProviders {
		if p == name {
			return true
		}
	}
	return false
}
