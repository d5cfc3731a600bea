package server

import (
	"encoding/json"
	"net/http"

	jsonwriter "github.com/mysocial/auth-front/internal/json"
	"github.com/mysocial/auth-front/internal/log"
	"github.com/mysocial/auth-front/internal/wallet"
)

// WalletHandlers provides wallet creation and import endpoints
type WalletHandlers struct{}

// NewWalletHandlers creates new wallet handlers
func NewWalletHandlers() *WalletHandlers {
	return &WalletHandlers{}
}

type walletCreateResponse struct {
	Address  string `json:"address"`
	Mnemonic string `json:"mnemonic"`
}

type walletImportRequest struct {
	Mnemonic   string `json:"mnemonic,omitempty"`
	PrivateKey string `json:"privateKey,omitempty"`
}

type walletImportResponse struct {
	Address string `json:"address"`
}

// CreateHandler generates a fresh wallet and returns its address and
// mnemonic. The server keeps nothing; the mnemonic exists only in this
// response.
func (h *WalletHandlers) CreateHandler(w http.ResponseWriter, r *http.Request) {
	account, err := wallet.Generate()
	if err != nil {
		log.LogError("Failed to generate wallet: %v", err)
		jsonwriter.WriteInternalServerError(w, "Failed to generate wallet")
		return
	}

	_ = jsonwriter.Write(w, walletCreateResponse{
		Address:  account.Address,
		Mnemonic: account.Mnemonic,
	})
}

// ImportHandler derives the address for an existing mnemonic or raw private
// key. Exactly one of the two must be supplied.
func (h *WalletHandlers) ImportHandler(w http.ResponseWriter, r *http.Request) {
	var req walletImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonwriter.WriteBadRequest(w, "invalid request body")
		return
	}

	var account *wallet.Account
	var err error
	switch {
	case req.Mnemonic != "" && req.PrivateKey != "":
		jsonwriter.WriteBadRequest(w, "provide either mnemonic or privateKey, not both")
		return
	case req.Mnemonic != "":
		account, err = wallet.ImportFromMnemonic(req.Mnemonic)
	case req.PrivateKey != "":
		account, err = wallet.ImportFromPrivateKey(req.PrivateKey)
	default:
		jsonwriter.WriteBadRequest(w, "mnemonic or privateKey is required")
		return
	}
	if err != nil {
		jsonwriter.WriteBadRequest(w, err.Error())
		return
	}

	_ = jsonwriter.Write(w, walletImportResponse{Address: account.Address})
}
