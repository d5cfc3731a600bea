package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() *Request {
	return &Request{
		Provider:      "google",
		Code:          "ABC123",
		CodeChallenge: "challenge-1",
		RedirectURI:   "https://app.example/done",
		ClientID:      "client-1",
		State:         "state-1",
		Nonce:         "nonce-1",
	}
}

func TestExchangeSuccess(t *testing.T) {
	var received Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/provider/callback", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"XYZ"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	result, err := client.Exchange(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "XYZ", result.Code)
	assert.Equal(t, *testRequest(), received)
}

func TestExchangeOmitsEmptyRequestID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["request_id"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"code":"XYZ"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	_, err = client.Exchange(context.Background(), testRequest())
	require.NoError(t, err)
}

func TestExchangeNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"upstream token exchange failed"}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	result, err := client.Exchange(context.Background(), testRequest())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream token exchange failed")
}

func TestExchangeMissingCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	result, err := client.Exchange(context.Background(), testRequest())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing code")
}

func TestExchangeContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Exchange(ctx, testRequest())
	require.Error(t, err)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient("", time.Second)
	require.Error(t, err)
}
