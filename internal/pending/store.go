// Package pending holds the server side of an in-flight login: the validated
// request parameters persisted between the redirect to the provider and the
// provider's callback.
package pending

import (
	"net/http"
	"time"

	"github.com/mysocial/auth-front/internal/params"
)

// TTL is the fixed absolute lifetime of a pending login, enforced by each
// store independently of application logic.
const TTL = 10 * time.Minute

// Store persists the pending login for an in-flight flow. The callback never
// re-transmits the login parameters; the store is the sole source of truth.
//
// Get treats corrupt and expired records identically to absent ones. Clear is
// idempotent. The state argument lets state-keyed backends address individual
// flows; the cookie backend holds one record per browser and ignores it.
type Store interface {
	Put(w http.ResponseWriter, r *http.Request, p *params.LoginParams) error
	Get(r *http.Request, state string) (*params.LoginParams, bool)
	Clear(w http.ResponseWriter, r *http.Request, state string)
}
