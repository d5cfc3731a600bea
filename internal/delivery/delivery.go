// Package delivery decides how a resolved login outcome reaches the client
// application: a structured message posted to the opener window, a top-level
// redirect, or an in-page error when neither route exists.
package delivery

import (
	"fmt"
	"net/url"

	"github.com/mysocial/auth-front/internal/params"
	"github.com/mysocial/auth-front/internal/resolver"
)

// Message type tags recognized by client applications listening on the
// opener window.
const (
	MessageTypeResult = "MYSOCIAL_AUTH_RESULT"
	MessageTypeError  = "MYSOCIAL_AUTH_ERROR"
)

// Channel is how the outcome travels back to the client application.
type Channel string

const (
	// ChannelPopup posts a message to the opener window, falling back to
	// the redirect URL when no opener is available.
	ChannelPopup Channel = "popup"
	// ChannelRedirect navigates the top-level window to the redirect URL.
	ChannelRedirect Channel = "redirect"
	// ChannelPage renders the message in-page without posting anything.
	// Last resort, used when no routing metadata survived.
	ChannelPage Channel = "page"
)

// SuccessMessage is the payload posted to the opener on success.
type SuccessMessage struct {
	Type      string `json:"type"`
	Code      string `json:"code"`
	State     string `json:"state"`
	Nonce     string `json:"nonce"`
	ClientID  string `json:"clientId"`
	RequestID string `json:"requestId,omitempty"`
}

// ErrorMessage is the payload posted to the opener on failure.
type ErrorMessage struct {
	Type      string `json:"type"`
	Error     string `json:"error"`
	State     string `json:"state,omitempty"`
	ClientID  string `json:"clientId,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Plan tells the callback page what to do. Exactly one channel applies;
// the popup channel additionally carries a redirect fallback for when the
// opener window is gone.
type Plan struct {
	Channel Channel

	// TargetOrigin is the exact origin messages are posted to. Page plans
	// carry neither a message nor a target origin; nothing is posted when
	// no trusted origin survived.
	TargetOrigin string
	Message      any

	RedirectURL string
	FallbackURL string

	PageMessage string
}

// PlanSuccess builds the delivery plan for a completed exchange.
func PlanSuccess(s *resolver.Success) Plan {
	msg := SuccessMessage{
		Type:      MessageTypeResult,
		Code:      s.Code,
		State:     s.State,
		Nonce:     s.Nonce,
		ClientID:  s.ClientID,
		RequestID: s.RequestID,
	}
	redirect := SuccessRedirectURL(s.RedirectURI, s.Code, s.State, s.Nonce)

	if s.Mode == params.ModePopup && s.ReturnOrigin != "" {
		return Plan{
			Channel:      ChannelPopup,
			TargetOrigin: s.ReturnOrigin,
			Message:      msg,
			FallbackURL:  redirect,
		}
	}
	return Plan{
		Channel:     ChannelRedirect,
		RedirectURL: redirect,
	}
}

// PlanError builds the delivery plan for a terminal failure. routing may be
// nil when the pending login could not be recovered; in that case the error
// is surfaced in-page since there is nowhere trustworthy to send it.
func PlanError(routing *resolver.Routing, errCode, message string, state string) Plan {
	if routing == nil {
		return Plan{
			Channel:     ChannelPage,
			PageMessage: message,
		}
	}

	msg := ErrorMessage{
		Type:      MessageTypeError,
		Error:     errCode,
		State:     state,
		ClientID:  routing.ClientID,
		RequestID: routing.RequestID,
	}

	if routing.Mode == params.ModePopup && routing.ReturnOrigin != "" {
		return Plan{
			Channel:      ChannelPopup,
			TargetOrigin: routing.ReturnOrigin,
			Message:      msg,
			FallbackURL:  ErrorRedirectURL(routing.RedirectURI, errCode, state),
			PageMessage:  message,
		}
	}
	if routing.RedirectURI != "" {
		return Plan{
			Channel:     ChannelRedirect,
			RedirectURL: ErrorRedirectURL(routing.RedirectURI, errCode, state),
		}
	}
	return Plan{
		Channel:     ChannelPage,
		PageMessage: message,
	}
}

// SuccessRedirectURL appends the login code, state, and nonce to the client
// application's redirect URI.
func SuccessRedirectURL(redirectURI, code, state, nonce string) string {
	return appendQuery(redirectURI, url.Values{
		"code":  {code},
		"state": {state},
		"nonce": {nonce},
	})
}

// ErrorRedirectURL appends the error code and state to the client
// application's redirect URI.
func ErrorRedirectURL(redirectURI, errCode, state string) string {
	q := url.Values{"error": {errCode}}
	if state != "" {
		q.Set("state", state)
	}
	return appendQuery(redirectURI, q)
}

func appendQuery(rawURL string, extra url.Values) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// The redirect URI was validated at login time, this should not
		// happen. Fall back to naive concatenation rather than dropping
		// the result on the floor.
		sep := "?"
		if len(rawURL) > 0 && rawURL[len(rawURL)-1] == '?' {
			sep = ""
		}
		return fmt.Sprintf("%s%s%s", rawURL, sep, extra.Encode())
	}
	q := u.Query()
	for k, vs := range extra {
		for _, v := range vs {
			q.Set(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}
