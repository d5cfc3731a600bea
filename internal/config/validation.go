package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ValidationError describes a single problem found in a config file
type ValidationError struct {
	Path    string
	Message string
}

// ValidationResult holds all errors and warnings from config validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// IsValid reports whether validation found no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

func (v *ValidationResult) addError(path, message string) {
	v.Errors = append(v.Errors, ValidationError{Path: path, Message: message})
}

func (v *ValidationResult) addWarning(path, message string) {
	v.Warnings = append(v.Warnings, ValidationError{Path: path, Message: message})
}

// ValidateFile performs structural validation of a config file without
// requiring the referenced environment variables to be set. Used by the
// -validate CLI mode.
func ValidateFile(path string) (*ValidationResult, error) {
	result := &ValidationResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		result.addError("", fmt.Sprintf("invalid JSON: %v", err))
		return result, nil
	}

	version, ok := rawConfig["version"].(string)
	if !ok {
		result.addError("version", "config version is required")
	} else if !strings.HasPrefix(version, "v1") {
		result.addError("version", fmt.Sprintf("unsupported config version: %s", version))
	}

	relay, ok := rawConfig["relay"].(map[string]any)
	if !ok {
		result.addError("relay", "relay section is required")
		return result, nil
	}

	validateRelayStructure(relay, result)
	return result, nil
}

func validateRelayStructure(relay map[string]any, result *ValidationResult) {
	if _, ok := relay["baseURL"]; !ok {
		result.addError("relay.baseURL", "baseURL is required")
	}
	if _, ok := relay["addr"]; !ok {
		result.addError("relay.addr", "addr is required")
	}

	session, ok := relay["session"].(map[string]any)
	if !ok {
		result.addError("relay.session", "session section is required")
	} else {
		validateSessionStructure(session, result)
	}

	exchangeSection, ok := relay["exchange"].(map[string]any)
	if !ok {
		result.addError("relay.exchange", "exchange section is required")
	} else if _, ok := exchangeSection["baseURL"]; !ok {
		result.addError("relay.exchange.baseURL", "baseURL is required")
	}

	providers, ok := relay["providers"].(map[string]any)
	if !ok || len(providers) == 0 {
		result.addWarning("relay.providers", "no providers configured; every login will fail with provider_not_configured")
		return
	}
	for name := range providers {
		if !isKnownProvider(name) {
			result.addError("relay.providers."+name, "unknown provider")
		}
	}
}

func validateSessionStructure(session map[string]any, result *ValidationResult) {
	secret, ok := session["secret"]
	if !ok {
		result.addError("relay.session.secret", "secret is required")
		return
	}
	if _, isString := secret.(string); isString {
		result.addError("relay.session.secret", "must use {\"$env\": \"VAR_NAME\"} reference, not a literal")
		return
	}
	if refMap, isMap := secret.(map[string]any); isMap {
		if _, hasEnv := refMap["$env"]; !hasEnv {
			result.addError("relay.session.secret", "must use {\"$env\": \"VAR_NAME\"} format")
		}
	}

	if storage, ok := session["storage"].(string); ok {
		switch PendingStorage(storage) {
		case PendingStorageCookie, PendingStorageMemory:
		case PendingStorageFirestore:
			if _, ok := session["gcpProject"]; !ok {
				result.addError("relay.session.gcpProject", "required for firestore storage")
			}
		default:
			result.addError("relay.session.storage", fmt.Sprintf("unknown storage: %s", storage))
		}
	}
}
