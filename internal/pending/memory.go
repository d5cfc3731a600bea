package pending

import (
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mysocial/auth-front/internal/params"
)

const memoryCleanupInterval = time.Minute

// MemoryStore keys pending logins by their state token instead of holding one
// slot per browser, so concurrent flows from the same browser no longer
// clobber each other. A callback with an unknown state reads as absent, which
// the resolver reports as session_expired.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore creates a state-keyed in-memory store with per-entry TTL
// and a background janitor.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(TTL, memoryCleanupInterval),
	}
}

// Put stores the pending login under its state token.
func (ms *MemoryStore) Put(_ http.ResponseWriter, _ *http.Request, p *params.LoginParams) error {
	cp := *p
	ms.cache.Set(p.State, &cp, gocache.DefaultExpiration)
	return nil
}

// Get returns the pending login for the given state, or absent when the state
// is unknown or its entry has expired.
func (ms *MemoryStore) Get(_ *http.Request, state string) (*params.LoginParams, bool) {
	if state == "" {
		return nil, false
	}
	v, ok := ms.cache.Get(state)
	if !ok {
		return nil, false
	}
	p := *(v.(*params.LoginParams))
	return &p, true
}

// Clear removes the entry for the given state. Clearing an unknown state is
// a no-op.
func (ms *MemoryStore) Clear(_ http.ResponseWriter, _ *http.Request, state string) {
	ms.cache.Delete(state)
}
