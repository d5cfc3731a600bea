// Package wallet generates and imports ed25519 key pairs for on-chain
// accounts. Keys derive from BIP-39 mnemonics via SLIP-0010 along a fixed
// all-hardened path; the address is a prefixed hash of the public key.
package wallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/blake2b"
)

const (
	// EntropyBits sizes newly generated mnemonics: 128 bits yields 12 words.
	EntropyBits = 128

	hardenedOffset = 0x80000000

	addressPrefix = "0x"
	// ed25519 public keys carry a scheme byte in the address preimage.
	schemeED25519 = 0x00
)

// derivationPath is m/44'/6976'/0'/0'/0'. Every segment is hardened as
// SLIP-0010 ed25519 requires.
var derivationPath = []uint32{
	44 + hardenedOffset,
	6976 + hardenedOffset,
	0 + hardenedOffset,
	0 + hardenedOffset,
	0 + hardenedOffset,
}

// Account is a derived key pair and its address. Mnemonic is set only when
// the account came from Generate.
type Account struct {
	Address    string
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	Mnemonic   string
}

// Generate creates a fresh mnemonic and derives its account. Derivation runs
// twice and the results are compared before anything is returned.
func Generate() (*Account, error) {
	entropy, err := bip39.NewEntropy(EntropyBits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, fmt.Errorf("failed to generate mnemonic: %w", err)
	}

	account, err := deriveChecked(mnemonic)
	if err != nil {
		return nil, err
	}
	account.Mnemonic = mnemonic
	return account, nil
}

// ImportFromMnemonic derives the account for an existing mnemonic phrase.
func ImportFromMnemonic(mnemonic string) (*Account, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	words := strings.Fields(mnemonic)
	if len(words) < 12 || len(words) > 24 {
		return nil, fmt.Errorf("mnemonic must be between 12 and 24 words, got %d", len(words))
	}
	mnemonic = strings.Join(words, " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic phrase")
	}
	return deriveChecked(mnemonic)
}

// ImportFromPrivateKey builds the account for a raw 32-byte ed25519 seed.
// Accepted encodings: 0x-prefixed hex, bare hex, or 32 comma-separated
// decimal bytes.
func ImportFromPrivateKey(input string) (*Account, error) {
	seed, err := parsePrivateKey(input)
	if err != nil {
		return nil, err
	}

	first := accountFromSeed(seed)
	second := accountFromSeed(seed)
	if first.Address != second.Address {
		return nil, fmt.Errorf("key derivation self-check failed")
	}
	return first, nil
}

func parsePrivateKey(input string) ([]byte, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("private key is required")
	}

	if strings.Contains(input, ",") {
		parts := strings.Split(input, ",")
		if len(parts) != ed25519.SeedSize {
			return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.SeedSize, len(parts))
		}
		seed := make([]byte, ed25519.SeedSize)
		for i, part := range parts {
			n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid private key byte at position %d", i)
			}
			seed[i] = byte(n)
		}
		return seed, nil
	}

	hexStr := strings.TrimPrefix(input, "0x")
	seed, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, fmt.Errorf("invalid private key hex: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return seed, nil
}

// deriveChecked derives the account twice from the same mnemonic and refuses
// to return unless both runs agree.
func deriveChecked(mnemonic string) (*Account, error) {
	first, err := deriveAccount(mnemonic)
	if err != nil {
		return nil, err
	}
	second, err := deriveAccount(mnemonic)
	if err != nil {
		return nil, err
	}
	if first.Address != second.Address {
		return nil, fmt.Errorf("key derivation self-check failed")
	}
	return first, nil
}

func deriveAccount(mnemonic string) (*Account, error) {
	seed := bip39.NewSeed(mnemonic, "")

	key, chainCode := masterKey(seed)
	for _, index := range derivationPath {
		if index < hardenedOffset {
			return nil, fmt.Errorf("ed25519 derivation requires hardened indexes")
		}
		key, chainCode = childKey(key, chainCode, index)
	}

	return accountFromSeed(key), nil
}

func accountFromSeed(seed []byte) *Account {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	return &Account{
		Address:    addressFor(pub),
		PublicKey:  pub,
		PrivateKey: priv,
	}
}

// addressFor hashes the scheme byte and public key with BLAKE2b-256.
func addressFor(pub ed25519.PublicKey) string {
	preimage := make([]byte, 0, 1+ed25519.PublicKeySize)
	preimage = append(preimage, schemeED25519)
	preimage = append(preimage, pub...)
	sum := blake2b.Sum256(preimage)
	return addressPrefix + hex.EncodeToString(sum[:])
}

// masterKey is the SLIP-0010 ed25519 master node.
func masterKey(seed []byte) ([]byte, []byte) {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}

// childKey is one hardened SLIP-0010 derivation step.
func childKey(key, chainCode []byte, index uint32) ([]byte, []byte) {
	data := make([]byte, 0, 1+len(key)+4)
	data = append(data, 0x00)
	data = append(data, key...)
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)
	return sum[:32], sum[32:]
}
