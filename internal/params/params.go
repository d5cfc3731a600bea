// Package params validates and normalizes inbound login request parameters.
package params

import (
	"fmt"
	"net/url"
)

// AuthProvider identifies an upstream identity provider
type AuthProvider string

const (
	ProviderGoogle   AuthProvider = "google"
	ProviderApple    AuthProvider = "apple"
	ProviderFacebook AuthProvider = "facebook"
	ProviderTwitch   AuthProvider = "twitch"
)

// AuthMode selects how the final result is delivered to the client application
type AuthMode string

const (
	ModePopup    AuthMode = "popup"
	ModeRedirect AuthMode = "redirect"
)

// CodeChallengeMethodS256 is the only PKCE method the relay accepts
const CodeChallengeMethodS256 = "S256"

// LoginParams is the canonical validated login request. Every field except
// RequestID is mandatory. The JSON tags define the serialized form held by
// the pending-login store.
type LoginParams struct {
	ClientID            string       `json:"client_id"`
	RedirectURI         string       `json:"redirect_uri"`
	State               string       `json:"state"`
	Nonce               string       `json:"nonce"`
	ReturnOrigin        string       `json:"return_origin"`
	Mode                AuthMode     `json:"mode"`
	Provider            AuthProvider `json:"provider"`
	CodeChallenge       string       `json:"code_challenge"`
	CodeChallengeMethod string       `json:"code_challenge_method"`
	RequestID           string       `json:"request_id,omitempty"`
}

// ValidationError reports the first offending field and a human-readable reason
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ParseLoginParams validates query parameters into LoginParams. Fields are
// checked in declaration order so the reported error is deterministic.
// The function is pure: no session state is touched.
func ParseLoginParams(q url.Values) (*LoginParams, error) {
	p := &LoginParams{
		ClientID:            q.Get("client_id"),
		RedirectURI:         q.Get("redirect_uri"),
		State:               q.Get("state"),
		Nonce:               q.Get("nonce"),
		ReturnOrigin:        q.Get("return_origin"),
		Mode:                AuthMode(q.Get("mode")),
		Provider:            AuthProvider(q.Get("provider")),
		CodeChallenge:       q.Get("code_challenge"),
		CodeChallengeMethod: q.Get("code_challenge_method"),
		RequestID:           q.Get("request_id"),
	}

	if p.ClientID == "" {
		return nil, &ValidationError{Field: "client_id", Reason: "client_id is required"}
	}
	if !isAbsoluteURL(p.RedirectURI) {
		return nil, &ValidationError{Field: "redirect_uri", Reason: "redirect_uri must be a valid URL"}
	}
	if p.State == "" {
		return nil, &ValidationError{Field: "state", Reason: "state is required"}
	}
	if p.Nonce == "" {
		return nil, &ValidationError{Field: "nonce", Reason: "nonce is required"}
	}
	if p.ReturnOrigin == "" {
		return nil, &ValidationError{Field: "return_origin", Reason: "return_origin is required"}
	}
	switch p.Mode {
	case ModePopup, ModeRedirect:
	default:
		return nil, &ValidationError{Field: "mode", Reason: "mode must be one of popup, redirect"}
	}
	switch p.Provider {
	case ProviderGoogle, ProviderApple, ProviderFacebook, ProviderTwitch:
	default:
		return nil, &ValidationError{Field: "provider", Reason: "provider must be one of google, apple, facebook, twitch"}
	}
	if p.CodeChallenge == "" {
		return nil, &ValidationError{Field: "code_challenge", Reason: "code_challenge is required"}
	}
	if p.CodeChallengeMethod != CodeChallengeMethodS256 {
		return nil, &ValidationError{Field: "code_challenge_method", Reason: "code_challenge_method must be S256"}
	}

	return p, nil
}

// Values encodes the params back into query parameters. For any valid
// LoginParams, ParseLoginParams(p.Values()) yields an identical structure.
func (p *LoginParams) Values() url.Values {
	q := url.Values{}
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", p.RedirectURI)
	q.Set("state", p.State)
	q.Set("nonce", p.Nonce)
	q.Set("return_origin", p.ReturnOrigin)
	q.Set("mode", string(p.Mode))
	q.Set("provider", string(p.Provider))
	q.Set("code_challenge", p.CodeChallenge)
	q.Set("code_challenge_method", p.CodeChallengeMethod)
	if p.RequestID != "" {
		q.Set("request_id", p.RequestID)
	}
	return q
}

func isAbsoluteURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}
