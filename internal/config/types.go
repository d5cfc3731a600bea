package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Secret is a string type that redacts itself when printed
type Secret string

// String implements fmt.Stringer to redact the secret
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "***"
}

// MarshalJSON implements json.Marshaler to prevent secrets in JSON logs
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("***")
}

// PendingStorage selects the pending-login store backend
type PendingStorage string

const (
	PendingStorageCookie    PendingStorage = "cookie"
	PendingStorageMemory    PendingStorage = "memory"
	PendingStorageFirestore PendingStorage = "firestore"
)

// Config is the root configuration for auth-front
type Config struct {
	Version string      `json:"version"`
	Relay   RelayConfig `json:"relay"`
}

// RelayConfig configures the OAuth relay itself
type RelayConfig struct {
	BaseURL     string                         `json:"baseURL"`
	Addr        string                         `json:"addr"`
	CallbackURL string                         `json:"callbackURL"`
	Session     SessionConfig                  `json:"session"`
	Exchange    ExchangeConfig                 `json:"exchange"`
	Providers   map[string]ProviderCredentials `json:"providers"`
}

// SessionConfig configures the pending-login store
type SessionConfig struct {
	Secret              Secret         `json:"secret"`
	Storage             PendingStorage `json:"storage"`
	GCPProject          string         `json:"gcpProject,omitempty"`
	FirestoreDatabase   string         `json:"firestoreDatabase,omitempty"`
	FirestoreCollection string         `json:"firestoreCollection,omitempty"`
}

// ExchangeConfig configures the backend identity-exchange service client
type ExchangeConfig struct {
	BaseURL string        `json:"baseURL"`
	Timeout time.Duration `json:"timeout"`

	// ClearOnFailure controls whether a failed code exchange destroys the
	// pending login. When false (the default) the same callback may be
	// retried against the surviving record until it expires.
	ClearOnFailure bool `json:"clearOnFailure"`
}

// ProviderCredentials holds the per-provider deployment configuration.
// A provider with an empty client ID is simply not configured.
type ProviderCredentials struct {
	ClientID string `json:"clientId"`
}

// RawConfigValue holds a parsed config value
type RawConfigValue struct {
	value string
}

// Value returns the resolved string
func (r *RawConfigValue) Value() string { return r.value }

// ParseConfigValue parses a config value that is either a plain JSON string
// or an environment reference of the form {"$env": "VAR_NAME"}.
func ParseConfigValue(raw json.RawMessage) (*RawConfigValue, error) {
	// Try plain string first
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return &RawConfigValue{value: str}, nil
	}

	// Try reference object
	var ref map[string]string
	if err := json.Unmarshal(raw, &ref); err != nil {
		return nil, fmt.Errorf("config value must be string or reference object")
	}

	envVar, ok := ref["$env"]
	if !ok {
		return nil, fmt.Errorf("unknown reference type in config value")
	}

	value := os.Getenv(envVar)
	if value == "" {
		return nil, fmt.Errorf("environment variable %s not set", envVar)
	}
	// Strip surrounding quotes if present (only matching pairs)
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			value = value[1 : len(value)-1]
		}
	}
	return &RawConfigValue{value: value}, nil
}
