package pending

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/mysocial/auth-front/internal/envutil"
	"github.com/mysocial/auth-front/internal/log"
	"github.com/mysocial/auth-front/internal/params"
)

const (
	cookieName   = "auth_state"
	payloadKey   = "login"
	minSecretLen = 32
)

// CookieStore keeps the pending login in one encrypted, signed browser cookie.
// The record is exclusively owned by the browser's cookie jar: a new login
// overwrites any prior pending record for that browser (last-write-wins).
//
// securecookie stamps each cookie with its creation time and rejects values
// older than MaxAge on decode, so the 10-minute absolute expiry holds even if
// the browser keeps the cookie around.
type CookieStore struct {
	store *sessions.CookieStore
}

// NewCookieStore derives the signing and encryption keys from the session
// secret. The secret must be at least 32 characters.
func NewCookieStore(secret string) (*CookieStore, error) {
	if len(secret) < minSecretLen {
		return nil, fmt.Errorf("session secret must be at least %d characters, got %d", minSecretLen, len(secret))
	}

	// Domain-separated key derivation: one key authenticates, one encrypts.
	authKey := sha256.Sum256([]byte(secret + ":auth"))
	encKey := sha256.Sum256([]byte(secret + ":enc"))

	store := sessions.NewCookieStore(authKey[:], encKey[:])
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(TTL.Seconds()),
		HttpOnly: true,
		Secure:   !envutil.IsDev(),
		SameSite: http.SameSiteLaxMode,
	}
	store.MaxAge(int(TTL.Seconds()))

	return &CookieStore{store: store}, nil
}

// Put encrypts and writes the session cookie, overwriting any existing
// pending login for this browser.
func (cs *CookieStore) Put(w http.ResponseWriter, r *http.Request, p *params.LoginParams) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pending login: %w", err)
	}

	// A decode failure here just means there was no usable prior record;
	// gorilla hands back a fresh session either way.
	session, _ := cs.store.Get(r, cookieName)
	session.Values[payloadKey] = string(data)

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to write session cookie: %w", err)
	}
	return nil
}

// Get decrypts and returns the current record. Missing, expired, and corrupt
// cookies all read as absent. The state argument is ignored: this store holds
// one slot per browser.
func (cs *CookieStore) Get(r *http.Request, _ string) (*params.LoginParams, bool) {
	session, err := cs.store.Get(r, cookieName)
	if err != nil {
		log.LogDebugWithFields("pending", "Session cookie rejected", map[string]any{
			"error": err.Error(),
		})
		return nil, false
	}

	raw, ok := session.Values[payloadKey].(string)
	if !ok || raw == "" {
		return nil, false
	}

	var p params.LoginParams
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		log.LogWarnWithFields("pending", "Corrupt pending login payload", map[string]any{
			"error": err.Error(),
		})
		return nil, false
	}
	return &p, true
}

// Clear idempotently destroys the record by expiring the cookie.
func (cs *CookieStore) Clear(w http.ResponseWriter, r *http.Request, _ string) {
	session, _ := cs.store.Get(r, cookieName)
	delete(session.Values, payloadKey)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
}
