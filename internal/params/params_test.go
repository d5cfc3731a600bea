package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validQuery() url.Values {
	return url.Values{
		"client_id":             {"client-1"},
		"redirect_uri":          {"https://app.example/auth/done"},
		"state":                 {"state-abc"},
		"nonce":                 {"nonce-xyz"},
		"return_origin":         {"https://app.example"},
		"mode":                  {"popup"},
		"provider":              {"google"},
		"code_challenge":        {"challenge123"},
		"code_challenge_method": {"S256"},
	}
}

func TestParseLoginParams(t *testing.T) {
	p, err := ParseLoginParams(validQuery())
	require.NoError(t, err)

	assert.Equal(t, "client-1", p.ClientID)
	assert.Equal(t, "https://app.example/auth/done", p.RedirectURI)
	assert.Equal(t, "state-abc", p.State)
	assert.Equal(t, "nonce-xyz", p.Nonce)
	assert.Equal(t, "https://app.example", p.ReturnOrigin)
	assert.Equal(t, ModePopup, p.Mode)
	assert.Equal(t, ProviderGoogle, p.Provider)
	assert.Equal(t, "challenge123", p.CodeChallenge)
	assert.Equal(t, CodeChallengeMethodS256, p.CodeChallengeMethod)
	assert.Empty(t, p.RequestID)
}

func TestParseLoginParamsOptionalRequestID(t *testing.T) {
	q := validQuery()
	q.Set("request_id", "req-42")

	p, err := ParseLoginParams(q)
	require.NoError(t, err)
	assert.Equal(t, "req-42", p.RequestID)
}

func TestParseLoginParamsValidationErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(url.Values)
		wantField string
	}{
		{
			name:      "missing client_id",
			mutate:    func(q url.Values) { q.Del("client_id") },
			wantField: "client_id",
		},
		{
			name:      "missing redirect_uri",
			mutate:    func(q url.Values) { q.Del("redirect_uri") },
			wantField: "redirect_uri",
		},
		{
			name:      "relative redirect_uri",
			mutate:    func(q url.Values) { q.Set("redirect_uri", "/auth/done") },
			wantField: "redirect_uri",
		},
		{
			name:      "missing state",
			mutate:    func(q url.Values) { q.Del("state") },
			wantField: "state",
		},
		{
			name:      "missing nonce",
			mutate:    func(q url.Values) { q.Del("nonce") },
			wantField: "nonce",
		},
		{
			name:      "missing return_origin",
			mutate:    func(q url.Values) { q.Del("return_origin") },
			wantField: "return_origin",
		},
		{
			name:      "unknown mode",
			mutate:    func(q url.Values) { q.Set("mode", "iframe") },
			wantField: "mode",
		},
		{
			name:      "unknown provider",
			mutate:    func(q url.Values) { q.Set("provider", "github") },
			wantField: "provider",
		},
		{
			name:      "missing code_challenge",
			mutate:    func(q url.Values) { q.Del("code_challenge") },
			wantField: "code_challenge",
		},
		{
			name:      "plain code_challenge_method",
			mutate:    func(q url.Values) { q.Set("code_challenge_method", "plain") },
			wantField: "code_challenge_method",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuery()
			tt.mutate(q)

			p, err := ParseLoginParams(q)
			assert.Nil(t, p)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestParseLoginParamsReportsFirstError(t *testing.T) {
	// client_id is checked before everything else
	q := url.Values{}
	_, err := ParseLoginParams(q)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "client_id", verr.Field)
}

func TestLoginParamsRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		p    LoginParams
	}{
		{
			name: "popup google",
			p: LoginParams{
				ClientID:            "client-1",
				RedirectURI:         "https://app.example/done",
				State:               "s1",
				Nonce:               "n1",
				ReturnOrigin:        "https://app.example",
				Mode:                ModePopup,
				Provider:            ProviderGoogle,
				CodeChallenge:       "ch1",
				CodeChallengeMethod: CodeChallengeMethodS256,
			},
		},
		{
			name: "redirect twitch with request id",
			p: LoginParams{
				ClientID:            "client-2",
				RedirectURI:         "https://game.example/cb?embed=1",
				State:               "s2",
				Nonce:               "n2",
				ReturnOrigin:        "https://game.example",
				Mode:                ModeRedirect,
				Provider:            ProviderTwitch,
				CodeChallenge:       "ch2",
				CodeChallengeMethod: CodeChallengeMethodS256,
				RequestID:           "req-7",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := ParseLoginParams(tt.p.Values())
			require.NoError(t, err)
			assert.Equal(t, &tt.p, decoded)
		})
	}
}
