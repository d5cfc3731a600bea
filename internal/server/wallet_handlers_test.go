package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletCreateHandler(t *testing.T) {
	h := NewWalletHandlers()

	req := httptest.NewRequest("POST", "/api/wallet/create", nil)
	rec := httptest.NewRecorder()
	h.CreateHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp walletCreateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Address, "0x"))
	assert.Len(t, strings.Fields(resp.Mnemonic), 12)
}

func TestWalletImportHandlerMnemonic(t *testing.T) {
	h := NewWalletHandlers()

	// Create first, then re-import the mnemonic and expect the same address
	createRec := httptest.NewRecorder()
	h.CreateHandler(createRec, httptest.NewRequest("POST", "/api/wallet/create", nil))
	var created walletCreateResponse
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))

	body, err := json.Marshal(walletImportRequest{Mnemonic: created.Mnemonic})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ImportHandler(rec, httptest.NewRequest("POST", "/api/wallet/import", strings.NewReader(string(body))))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp walletImportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, created.Address, resp.Address)
}

func TestWalletImportHandlerErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid body", `{not json`},
		{"neither field", `{}`},
		{"both fields", `{"mnemonic":"a b c","privateKey":"0xff"}`},
		{"bad mnemonic", `{"mnemonic":"only three words"}`},
		{"bad private key", `{"privateKey":"0xzz"}`},
	}

	h := NewWalletHandlers()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ImportHandler(rec, httptest.NewRequest("POST", "/api/wallet/import", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
