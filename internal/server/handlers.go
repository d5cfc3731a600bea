package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/mysocial/auth-front/internal/delivery"
	jsonwriter "github.com/mysocial/auth-front/internal/json"
	"github.com/mysocial/auth-front/internal/log"
	"github.com/mysocial/auth-front/internal/params"
	"github.com/mysocial/auth-front/internal/pending"
	"github.com/mysocial/auth-front/internal/providers"
	"github.com/mysocial/auth-front/internal/resolver"
)

// RelayHandlers provides the login, callback, and resolution HTTP handlers
type RelayHandlers struct {
	registry *providers.Registry
	store    pending.Store
	resolver *resolver.Resolver
}

// NewRelayHandlers creates new relay handlers with dependency injection
func NewRelayHandlers(registry *providers.Registry, store pending.Store, rs *resolver.Resolver) *RelayHandlers {
	return &RelayHandlers{
		registry: registry,
		store:    store,
		resolver: rs,
	}
}

// LoginHandler validates the login request, records the pending login, and
// redirects the browser to the provider's authorization endpoint.
func (h *RelayHandlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	p, err := params.ParseLoginParams(r.URL.Query())
	if err != nil {
		log.LogDebug("Login request rejected: %v", err)
		h.redirectToError(w, r, url.Values{
			"reason":  {"invalid_params"},
			"message": {err.Error()},
		})
		return
	}

	if _, ok := h.registry.Config(p.Provider); !ok {
		log.LogWarnWithFields("server", "Login requested for unconfigured provider", map[string]any{
			"provider": string(p.Provider),
		})
		h.redirectToError(w, r, url.Values{
			"reason":   {"provider_not_configured"},
			"provider": {string(p.Provider)},
		})
		return
	}

	if err := h.store.Put(w, r, p); err != nil {
		log.LogError("Failed to store pending login: %v", err)
		h.redirectToError(w, r, url.Values{
			"reason": {"login_failed"},
		})
		return
	}

	authURL, ok := h.registry.AuthURL(p.Provider, p.State, p.CodeChallenge)
	if !ok {
		h.redirectToError(w, r, url.Values{
			"reason":   {"provider_not_configured"},
			"provider": {string(p.Provider)},
		})
		return
	}

	log.LogInfoWithFields("server", "Login started", map[string]any{
		"provider": string(p.Provider),
		"mode":     string(p.Mode),
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// CallbackHandler receives the provider redirect, resolves it against the
// pending login, and renders the delivery plan: a page that posts the result
// to the opener, a redirect to the client application, or an in-page error.
func (h *RelayHandlers) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	providerError := q.Get("error")
	code := q.Get("code")
	state := q.Get("state")

	if providerError != "" {
		errMsg := q.Get("error_description")
		if errMsg == "" {
			errMsg = providerError
		}
		h.handleProviderError(w, r, errMsg, state)
		return
	}

	if code == "" || state == "" {
		h.renderCallbackPage(w, CallbackPageData{
			ErrorMessage: "Missing code or state from provider",
		})
		return
	}

	outcome, rerr := h.resolver.Resolve(w, r, &resolver.CallbackRequest{Code: code, State: state})
	if rerr != nil {
		h.renderCallbackPage(w, CallbackPageData{
			ErrorMessage: rerr.Message,
		})
		return
	}

	h.renderPlan(w, r, delivery.PlanSuccess(outcome.Result))
}

// handleProviderError recovers routing metadata with a state-only probe and
// forwards the provider's error to the client application.
func (h *RelayHandlers) handleProviderError(w http.ResponseWriter, r *http.Request, errMsg, state string) {
	var routing *resolver.Routing
	if state != "" {
		if outcome, rerr := h.resolver.Resolve(w, r, &resolver.CallbackRequest{State: state}); rerr == nil {
			routing = outcome.Probe
		}
	}
	h.renderPlan(w, r, delivery.PlanError(routing, errMsg, errMsg, state))
}

// renderPlan executes a delivery plan in the browser.
func (h *RelayHandlers) renderPlan(w http.ResponseWriter, r *http.Request, plan delivery.Plan) {
	switch plan.Channel {
	case delivery.ChannelRedirect:
		http.Redirect(w, r, plan.RedirectURL, http.StatusFound)
	default:
		data := CallbackPageData{
			TargetOrigin: plan.TargetOrigin,
			FallbackURL:  plan.FallbackURL,
			ErrorMessage: plan.PageMessage,
		}
		if plan.Message != nil {
			encoded, err := json.Marshal(plan.Message)
			if err != nil {
				log.LogError("Failed to encode delivery message: %v", err)
				h.renderCallbackPage(w, CallbackPageData{ErrorMessage: "Failed to complete sign in"})
				return
			}
			data.MessageJSON = template.JS(encoded)
		}
		h.renderCallbackPage(w, data)
	}
}

func (h *RelayHandlers) renderCallbackPage(w http.ResponseWriter, data CallbackPageData) {
	if data.MessageJSON == "" {
		data.MessageJSON = "null"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := callbackPageTemplate.Execute(w, data); err != nil {
		log.LogError("Failed to render callback page: %v", err)
	}
}

// ResolveHandler is the JSON callback-resolution endpoint. The request body
// is {code?, state}; a body without a code is a state-only probe returning
// routing metadata.
func (h *RelayHandlers) ResolveHandler(w http.ResponseWriter, r *http.Request) {
	var req resolver.CallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonwriter.WriteError(w, http.StatusBadRequest, string(resolver.KindMissingParams), "invalid request body")
		return
	}

	outcome, rerr := h.resolver.Resolve(w, r, &req)
	if rerr != nil {
		jsonwriter.WriteError(w, rerr.Status, string(rerr.Kind), rerr.Message)
		return
	}

	if outcome.Probe != nil {
		_ = jsonwriter.Write(w, outcome.Probe)
		return
	}
	_ = jsonwriter.Write(w, outcome.Result)
}

// errorPageMessages maps error reasons to what the error page displays.
var errorPageMessages = map[string]string{
	"invalid_params":          "Invalid or missing parameters",
	"provider_not_configured": "Provider is not configured",
	"login_failed":            "Failed to start sign in",
	"callback_failed":         "Failed to complete sign in",
	"session_expired":         "Session expired. Please try again.",
	"unknown":                 "An error occurred",
}

// ErrorPageHandler renders the human-readable error page.
func (h *RelayHandlers) ErrorPageHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reason := q.Get("reason")
	if reason == "" {
		reason = "unknown"
	}

	message, ok := errorPageMessages[reason]
	if !ok {
		message = errorPageMessages["unknown"]
	}
	switch reason {
	case "invalid_params":
		if m := q.Get("message"); m != "" {
			message = m
		}
	case "provider_not_configured":
		provider := q.Get("provider")
		if provider == "" {
			provider = "unknown"
		}
		message = fmt.Sprintf("Provider %q is not configured", provider)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := errorPageTemplate.Execute(w, ErrorPageData{Message: message}); err != nil {
		log.LogError("Failed to render error page: %v", err)
	}
}

func (h *RelayHandlers) redirectToError(w http.ResponseWriter, r *http.Request, q url.Values) {
	http.Redirect(w, r, "/error?"+q.Encode(), http.StatusFound)
}
