package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// UnmarshalJSON resolves {"$env": ...} references in relay config fields
// at parse time, so the rest of the program only ever sees final values.
func (rc *RelayConfig) UnmarshalJSON(data []byte) error {
	type rawRelay struct {
		BaseURL     json.RawMessage            `json:"baseURL"`
		Addr        string                     `json:"addr"`
		CallbackURL json.RawMessage            `json:"callbackURL"`
		Session     json.RawMessage            `json:"session"`
		Exchange    json.RawMessage            `json:"exchange"`
		Providers   map[string]json.RawMessage `json:"providers"`
	}

	var raw rawRelay
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rc.Addr = raw.Addr

	if raw.BaseURL != nil {
		parsed, err := ParseConfigValue(raw.BaseURL)
		if err != nil {
			return fmt.Errorf("parsing baseURL: %w", err)
		}
		rc.BaseURL = parsed.Value()
	}

	if raw.CallbackURL != nil {
		parsed, err := ParseConfigValue(raw.CallbackURL)
		if err != nil {
			return fmt.Errorf("parsing callbackURL: %w", err)
		}
		rc.CallbackURL = parsed.Value()
	}

	if raw.Session != nil {
		if err := json.Unmarshal(raw.Session, &rc.Session); err != nil {
			return fmt.Errorf("parsing session: %w", err)
		}
	}

	if raw.Exchange != nil {
		if err := json.Unmarshal(raw.Exchange, &rc.Exchange); err != nil {
			return fmt.Errorf("parsing exchange: %w", err)
		}
	}

	rc.Providers = make(map[string]ProviderCredentials, len(raw.Providers))
	for name, rawCreds := range raw.Providers {
		var creds struct {
			ClientID json.RawMessage `json:"clientId"`
		}
		if err := json.Unmarshal(rawCreds, &creds); err != nil {
			return fmt.Errorf("parsing providers.%s: %w", name, err)
		}
		var clientID string
		if creds.ClientID != nil {
			parsed, err := ParseConfigValue(creds.ClientID)
			if err != nil {
				return fmt.Errorf("parsing providers.%s.clientId: %w", name, err)
			}
			clientID = parsed.Value()
		}
		rc.Providers[name] = ProviderCredentials{ClientID: clientID}
	}

	return nil
}

// UnmarshalJSON resolves the session secret env reference
func (sc *SessionConfig) UnmarshalJSON(data []byte) error {
	type rawSession struct {
		Secret              json.RawMessage `json:"secret"`
		Storage             string          `json:"storage"`
		GCPProject          json.RawMessage `json:"gcpProject"`
		FirestoreDatabase   string          `json:"firestoreDatabase"`
		FirestoreCollection string          `json:"firestoreCollection"`
	}

	var raw rawSession
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	sc.Storage = PendingStorage(raw.Storage)
	sc.FirestoreDatabase = raw.FirestoreDatabase
	sc.FirestoreCollection = raw.FirestoreCollection

	if raw.Secret != nil {
		parsed, err := ParseConfigValue(raw.Secret)
		if err != nil {
			return fmt.Errorf("parsing secret: %w", err)
		}
		sc.Secret = Secret(parsed.Value())
	}

	if raw.GCPProject != nil {
		parsed, err := ParseConfigValue(raw.GCPProject)
		if err != nil {
			return fmt.Errorf("parsing gcpProject: %w", err)
		}
		sc.GCPProject = parsed.Value()
	}

	return nil
}

// UnmarshalJSON parses the exchange timeout from its duration string form
func (ec *ExchangeConfig) UnmarshalJSON(data []byte) error {
	type rawExchange struct {
		BaseURL        json.RawMessage `json:"baseURL"`
		Timeout        string          `json:"timeout"`
		ClearOnFailure bool            `json:"clearOnFailure"`
	}

	var raw rawExchange
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ec.ClearOnFailure = raw.ClearOnFailure

	if raw.BaseURL != nil {
		parsed, err := ParseConfigValue(raw.BaseURL)
		if err != nil {
			return fmt.Errorf("parsing baseURL: %w", err)
		}
		ec.BaseURL = parsed.Value()
	}

	if raw.Timeout != "" {
		timeout, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			return fmt.Errorf("parsing timeout: %w", err)
		}
		ec.Timeout = timeout
	}

	return nil
}
