// Package providers maps identity providers to their authorization endpoints
// and builds outbound authorization URLs.
//
// The provider set is closed: google, apple, facebook, twitch. Each entry
// carries the provider's fixed scope list and its extra authorization
// parameters (re-consent, offline access, response mode). Facebook and Twitch
// do not support PKCE upstream, so their authorization requests omit the
// code challenge.
package providers

import (
	"golang.org/x/oauth2"

	"github.com/mysocial/auth-front/internal/params"
)

// ProviderConfig describes one configured identity provider
type ProviderConfig struct {
	AuthURL  string
	ClientID string
	Scopes   []string

	// UsesPKCE controls whether code_challenge parameters are attached
	UsesPKCE bool

	// Extras are provider-specific fixed authorization parameters
	Extras []oauth2.AuthCodeOption
}

// providerDef is the static part of a registry entry, independent of deployment
type providerDef struct {
	authURL  string
	scopes   []string
	usesPKCE bool
	extras   []oauth2.AuthCodeOption
}

// definitions is the closed provider table. Extra parameters live here as
// data, not as branching logic at call sites.
var definitions = map[params.AuthProvider]providerDef{
	params.ProviderGoogle: {
		authURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		scopes:   []string{"openid", "email", "profile"},
		usesPKCE: true,
		extras: []oauth2.AuthCodeOption{
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"),
		},
	},
	params.ProviderApple: {
		authURL:  "https://appleid.apple.com/auth/authorize",
		scopes:   []string{"name", "email"},
		usesPKCE: true,
		extras: []oauth2.AuthCodeOption{
			oauth2.SetAuthURLParam("response_mode", "query"),
		},
	},
	params.ProviderFacebook: {
		authURL:  "https://www.facebook.com/v18.0/dialog/oauth",
		scopes:   []string{"email,public_profile"},
		usesPKCE: false,
	},
	params.ProviderTwitch: {
		authURL:  "https://id.twitch.tv/oauth2/authorize",
		scopes:   []string{"openid", "user:read:email"},
		usesPKCE: false,
		extras: []oauth2.AuthCodeOption{
			oauth2.SetAuthURLParam("force_verify", "true"),
		},
	},
}

// Registry resolves providers against the deployment's runtime configuration.
// All providers share one fixed callback URL.
type Registry struct {
	callbackURL string
	clientIDs   map[params.AuthProvider]string
}

// NewRegistry creates a registry from per-provider client IDs. Providers with
// an empty client ID are treated as not configured.
func NewRegistry(callbackURL string, clientIDs map[string]string) *Registry {
	ids := make(map[params.AuthProvider]string, len(clientIDs))
	for name, id := range clientIDs {
		if id != "" {
			ids[params.AuthProvider(name)] = id
		}
	}
	return &Registry{callbackURL: callbackURL, clientIDs: ids}
}

// Config returns the provider's configuration, or false when the provider has
// no client ID in this deployment. Unknown providers also report false.
func (r *Registry) Config(provider params.AuthProvider) (*ProviderConfig, bool) {
	def, ok := definitions[provider]
	if !ok {
		return nil, false
	}
	clientID, ok := r.clientIDs[provider]
	if !ok {
		return nil, false
	}
	return &ProviderConfig{
		AuthURL:  def.authURL,
		ClientID: clientID,
		Scopes:   def.scopes,
		UsesPKCE: def.usesPKCE,
		Extras:   def.extras,
	}, true
}

// AuthURL assembles the provider's authorization URL with the relay's fixed
// callback URL, the provider's scope list, and PKCE parameters where the
// provider supports them. Returns false for unconfigured providers.
func (r *Registry) AuthURL(provider params.AuthProvider, state, codeChallenge string) (string, bool) {
	pc, ok := r.Config(provider)
	if !ok {
		return "", false
	}

	conf := oauth2.Config{
		ClientID:    pc.ClientID,
		RedirectURL: r.callbackURL,
		Scopes:      pc.Scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: pc.AuthURL},
	}

	opts := make([]oauth2.AuthCodeOption, 0, len(pc.Extras)+2)
	opts = append(opts, pc.Extras...)
	if pc.UsesPKCE {
		opts = append(opts,
			oauth2.SetAuthURLParam("code_challenge", codeChallenge),
			oauth2.SetAuthURLParam("code_challenge_method", params.CodeChallengeMethodS256),
		)
	}

	return conf.AuthCodeURL(state, opts...), true
}

// CallbackURL returns the fixed callback URL shared by all providers
func (r *Registry) CallbackURL() string {
	return r.callbackURL
}
