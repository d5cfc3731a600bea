package pending

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Put(nil, nil, testLogin("state-1")))

	got, ok := store.Get(nil, "state-1")
	require.True(t, ok)
	assert.Equal(t, testLogin("state-1"), got)
}

func TestMemoryStoreUnknownState(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get(nil, "never-stored")
	assert.False(t, ok)

	_, ok = store.Get(nil, "")
	assert.False(t, ok)
}

func TestMemoryStoreConcurrentFlows(t *testing.T) {
	store := NewMemoryStore()

	// Two flows from the same browser coexist, keyed by state
	require.NoError(t, store.Put(nil, nil, testLogin("state-1")))
	require.NoError(t, store.Put(nil, nil, testLogin("state-2")))

	first, ok := store.Get(nil, "state-1")
	require.True(t, ok)
	assert.Equal(t, "state-1", first.State)

	second, ok := store.Get(nil, "state-2")
	require.True(t, ok)
	assert.Equal(t, "state-2", second.State)
}

func TestMemoryStoreClear(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Put(nil, nil, testLogin("state-1")))
	store.Clear(nil, nil, "state-1")

	_, ok := store.Get(nil, "state-1")
	assert.False(t, ok)

	// Idempotent
	store.Clear(nil, nil, "state-1")
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(nil, nil, testLogin("state-1")))

	got, ok := store.Get(nil, "state-1")
	require.True(t, ok)
	got.Nonce = "mutated"

	again, ok := store.Get(nil, "state-1")
	require.True(t, ok)
	assert.Equal(t, "nonce-1", again.Nonce)
}
