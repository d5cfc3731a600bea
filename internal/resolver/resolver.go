// Package resolver implements the callback state machine: it matches an
// inbound provider callback against the pending login, redeems the provider
// code with the backend, and decides which terminal outcome the browser sees.
package resolver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mysocial/auth-front/internal/exchange"
	"github.com/mysocial/auth-front/internal/log"
	"github.com/mysocial/auth-front/internal/params"
	"github.com/mysocial/auth-front/internal/pending"
)

// ErrorKind is the machine-readable error code returned to the callback page.
type ErrorKind string

const (
	KindMissingParams  ErrorKind = "missing_params"
	KindSessionExpired ErrorKind = "session_expired"
	KindInvalidState   ErrorKind = "invalid_state"
	KindExchangeFailed ErrorKind = "exchange_failed"
)

// Error is a terminal resolution failure.
type Error struct {
	Kind    ErrorKind
	Message string
	Status  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Routing is the metadata bundle the delivery layer needs to reach the
// client application. Field names follow the wire contract of the
// callback-resolution endpoint.
type Routing struct {
	Mode         params.AuthMode `json:"mode"`
	ReturnOrigin string          `json:"returnOrigin"`
	RedirectURI  string          `json:"redirectUri"`
	ClientID     string          `json:"clientId"`
	RequestID    string          `json:"requestId,omitempty"`
}

// Success is a completed code exchange. Code is the backend-issued one-time
// login code, not the provider's authorization code.
type Success struct {
	Success bool `json:"success"`
	Routing
	Code  string `json:"code"`
	State string `json:"state"`
	Nonce string `json:"nonce"`
}

// CallbackRequest is what the callback page sends back for resolution. A
// request without a code is a state-only probe recovering routing metadata
// after a provider-side failure.
type CallbackRequest struct {
	Code  string `json:"code,omitempty"`
	State string `json:"state"`
}

// Outcome is the successful result of a resolution: exactly one of Probe or
// Result is set.
type Outcome struct {
	Probe  *Routing
	Result *Success
}

// Exchanger redeems provider authorization codes with the backend.
type Exchanger interface {
	Exchange(ctx context.Context, req *exchange.Request) (*exchange.Result, error)
}

// Resolver drives the callback state machine over a pending-login store and
// an exchange client.
type Resolver struct {
	store          pending.Store
	exchanger      Exchanger
	clearOnFailure bool
}

// New creates a Resolver. When clearOnFailure is true a failed exchange
// consumes the pending login, forcing a fresh login instead of permitting a
// retry with the same state.
func New(store pending.Store, exchanger Exchanger, clearOnFailure bool) *Resolver {
	return &Resolver{
		store:          store,
		exchanger:      exchanger,
		clearOnFailure: clearOnFailure,
	}
}

// Resolve runs the state machine for one callback request. Checks happen in
// a fixed order: parameter presence, then session lookup, then state
// comparison, then the exchange call. Each stage reports its own error kind
// so callers always receive the most specific one.
func (rs *Resolver) Resolve(w http.ResponseWriter, r *http.Request, req *CallbackRequest) (*Outcome, *Error) {
	if req.State == "" {
		return nil, &Error{
			Kind:    KindMissingParams,
			Message: "state parameter is required",
			Status:  http.StatusBadRequest,
		}
	}

	p, ok := rs.store.Get(r, req.State)
	if !ok {
		return nil, &Error{
			Kind:    KindSessionExpired,
			Message: "no pending login found, the session may have expired",
			Status:  http.StatusBadRequest,
		}
	}

	if p.State != req.State {
		// CSRF mismatch on a real callback consumes the pending login. A
		// state-only probe leaves it alone so the matching flow can still
		// complete.
		if req.Code != "" {
			rs.store.Clear(w, r, p.State)
		}
		log.LogWarnWithFields("resolver", "Callback state does not match pending login", map[string]any{
			"provider": string(p.Provider),
		})
		return nil, &Error{
			Kind:    KindInvalidState,
			Message: "state does not match pending login",
			Status:  http.StatusBadRequest,
		}
	}

	routing := Routing{
		Mode:         p.Mode,
		ReturnOrigin: p.ReturnOrigin,
		RedirectURI:  p.RedirectURI,
		ClientID:     p.ClientID,
		RequestID:    p.RequestID,
	}

	if req.Code == "" {
		// State-only probe: the provider reported an error upstream, so there
		// is no code to redeem. Hand back the routing metadata and consume
		// the pending login without contacting the exchange service.
		rs.store.Clear(w, r, p.State)
		return &Outcome{Probe: &routing}, nil
	}

	result, err := rs.exchanger.Exchange(r.Context(), &exchange.Request{
		Provider:      string(p.Provider),
		Code:          req.Code,
		CodeChallenge: p.CodeChallenge,
		RedirectURI:   p.RedirectURI,
		ClientID:      p.ClientID,
		State:         p.State,
		Nonce:         p.Nonce,
		RequestID:     p.RequestID,
	})
	if err != nil {
		if rs.clearOnFailure {
			rs.store.Clear(w, r, p.State)
		}
		log.LogErrorWithFields("resolver", "Code exchange failed", map[string]any{
			"provider": string(p.Provider),
			"error":    err.Error(),
		})
		return nil, &Error{
			Kind:    KindExchangeFailed,
			Message: err.Error(),
			Status:  http.StatusInternalServerError,
		}
	}

	rs.store.Clear(w, r, p.State)
	return &Outcome{Result: &Success{
		Success: true,
		Routing: routing,
		Code:    result.Code,
		State:   p.State,
		Nonce:   p.Nonce,
	}}, nil
}
