package pending

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysocial/auth-front/internal/params"
)

const testSecret = "test-session-secret-0123456789abcdef"

func testLogin(state string) *params.LoginParams {
	return &params.LoginParams{
		ClientID:            "client-1",
		RedirectURI:         "https://app.example/done",
		State:               state,
		Nonce:               "nonce-1",
		ReturnOrigin:        "https://app.example",
		Mode:                params.ModePopup,
		Provider:            params.ProviderGoogle,
		CodeChallenge:       "challenge-1",
		CodeChallengeMethod: params.CodeChallengeMethodS256,
	}
}

// requestWithCookies replays the cookies a prior response set.
func requestWithCookies(t *testing.T, rec *httptest.ResponseRecorder) *http.Request {
	t.Helper()
	req := httptest.NewRequest("GET", "/callback", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestNewCookieStoreRejectsShortSecret(t *testing.T) {
	_, err := NewCookieStore("too-short")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32")
}

func TestCookieStorePutGet(t *testing.T) {
	store, err := NewCookieStore(testSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/login", nil)
	require.NoError(t, store.Put(rec, req, testLogin("state-1")))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "auth_state", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	got, ok := store.Get(requestWithCookies(t, rec), "state-1")
	require.True(t, ok)
	assert.Equal(t, testLogin("state-1"), got)
}

func TestCookieStoreGetWithoutCookie(t *testing.T) {
	store, err := NewCookieStore(testSecret)
	require.NoError(t, err)

	_, ok := store.Get(httptest.NewRequest("GET", "/callback", nil), "state-1")
	assert.False(t, ok)
}

func TestCookieStoreTamperedCookieReadsAsAbsent(t *testing.T) {
	store, err := NewCookieStore(testSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/login", nil)
	require.NoError(t, store.Put(rec, req, testLogin("state-1")))

	cookie := rec.Result().Cookies()[0]
	tampered := httptest.NewRequest("GET", "/callback", nil)
	tampered.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value + "x"})

	_, ok := store.Get(tampered, "state-1")
	assert.False(t, ok)
}

func TestCookieStoreDifferentSecretReadsAsAbsent(t *testing.T) {
	store, err := NewCookieStore(testSecret)
	require.NoError(t, err)
	other, err := NewCookieStore("another-session-secret-0123456789abc")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/login", nil)
	require.NoError(t, store.Put(rec, req, testLogin("state-1")))

	_, ok := other.Get(requestWithCookies(t, rec), "state-1")
	assert.False(t, ok)
}

func TestCookieStoreOverwrite(t *testing.T) {
	store, err := NewCookieStore(testSecret)
	require.NoError(t, err)

	rec1 := httptest.NewRecorder()
	require.NoError(t, store.Put(rec1, httptest.NewRequest("GET", "/login", nil), testLogin("state-1")))

	// Second login from the same browser replaces the record
	rec2 := httptest.NewRecorder()
	require.NoError(t, store.Put(rec2, requestWithCookies(t, rec1), testLogin("state-2")))

	got, ok := store.Get(requestWithCookies(t, rec2), "state-2")
	require.True(t, ok)
	assert.Equal(t, "state-2", got.State)
}

func TestCookieStoreClear(t *testing.T) {
	store, err := NewCookieStore(testSecret)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	require.NoError(t, store.Put(rec, httptest.NewRequest("GET", "/login", nil), testLogin("state-1")))

	clearRec := httptest.NewRecorder()
	store.Clear(clearRec, requestWithCookies(t, rec), "state-1")

	cookies := clearRec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[0].MaxAge)

	// Clearing again with no cookie at all must not panic
	store.Clear(httptest.NewRecorder(), httptest.NewRequest("GET", "/callback", nil), "state-1")
}
