package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Standard BIP-39 test vector phrase
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestGenerate(t *testing.T) {
	account, err := Generate()
	require.NoError(t, err)

	assert.Len(t, strings.Fields(account.Mnemonic), 12)
	assert.True(t, strings.HasPrefix(account.Address, "0x"))
	assert.Len(t, account.Address, 2+64)
	assert.Len(t, []byte(account.PublicKey), ed25519.PublicKeySize)
	assert.Len(t, []byte(account.PrivateKey), ed25519.PrivateKeySize)
}

func TestGenerateMnemonicRestoresSameAddress(t *testing.T) {
	account, err := Generate()
	require.NoError(t, err)

	restored, err := ImportFromMnemonic(account.Mnemonic)
	require.NoError(t, err)
	assert.Equal(t, account.Address, restored.Address)
	assert.Equal(t, account.PublicKey, restored.PublicKey)
}

func TestGenerateUniqueAccounts(t *testing.T) {
	first, err := Generate()
	require.NoError(t, err)
	second, err := Generate()
	require.NoError(t, err)

	assert.NotEqual(t, first.Mnemonic, second.Mnemonic)
	assert.NotEqual(t, first.Address, second.Address)
}

func TestImportFromMnemonicDeterministic(t *testing.T) {
	first, err := ImportFromMnemonic(testMnemonic)
	require.NoError(t, err)
	second, err := ImportFromMnemonic(testMnemonic)
	require.NoError(t, err)

	assert.Equal(t, first.Address, second.Address)
	assert.Equal(t, first.PrivateKey, second.PrivateKey)
	assert.Empty(t, first.Mnemonic)
}

func TestImportFromMnemonicNormalizesWhitespace(t *testing.T) {
	canonical, err := ImportFromMnemonic(testMnemonic)
	require.NoError(t, err)

	padded, err := ImportFromMnemonic("  " + strings.ReplaceAll(testMnemonic, " ", "   ") + "\n")
	require.NoError(t, err)
	assert.Equal(t, canonical.Address, padded.Address)
}

func TestImportFromMnemonicErrors(t *testing.T) {
	tests := []struct {
		name     string
		mnemonic string
	}{
		{"empty", ""},
		{"too few words", "abandon abandon abandon"},
		{"too many words", strings.Repeat("abandon ", 25)},
		{"bad checksum", "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon"},
		{"unknown words", "zebra zebra zebra zebra zebra zebra zebra zebra zebra zebra zebra zebra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := ImportFromMnemonic(tt.mnemonic)
			assert.Nil(t, account)
			assert.Error(t, err)
		})
	}
}

func TestImportFromPrivateKeyFormats(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	hexSeed := hex.EncodeToString(seed)

	decimals := make([]string, len(seed))
	for i, b := range seed {
		decimals[i] = fmt.Sprintf("%d", b)
	}

	prefixed, err := ImportFromPrivateKey("0x" + hexSeed)
	require.NoError(t, err)
	bare, err := ImportFromPrivateKey(hexSeed)
	require.NoError(t, err)
	commas, err := ImportFromPrivateKey(strings.Join(decimals, ","))
	require.NoError(t, err)

	assert.Equal(t, prefixed.Address, bare.Address)
	assert.Equal(t, prefixed.Address, commas.Address)
	assert.Empty(t, prefixed.Mnemonic)
}

func TestImportFromPrivateKeyMatchesDerivedKey(t *testing.T) {
	account, err := ImportFromMnemonic(testMnemonic)
	require.NoError(t, err)

	imported, err := ImportFromPrivateKey("0x" + hex.EncodeToString(account.PrivateKey.Seed()))
	require.NoError(t, err)
	assert.Equal(t, account.Address, imported.Address)
}

func TestImportFromPrivateKeyErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not hex", "0xzz"},
		{"short hex", "0xdeadbeef"},
		{"short byte list", "1,2,3"},
		{"byte out of range", strings.TrimSuffix(strings.Repeat("300,", 32), ",")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := ImportFromPrivateKey(tt.input)
			assert.Nil(t, account)
			assert.Error(t, err)
		})
	}
}

func TestAddressDependsOnDerivationPath(t *testing.T) {
	// The derived key must differ from the raw BIP-39 seed head, proving the
	// SLIP-0010 path actually ran.
	account, err := ImportFromMnemonic(testMnemonic)
	require.NoError(t, err)

	direct := accountFromSeed(make([]byte, ed25519.SeedSize))
	assert.NotEqual(t, direct.Address, account.Address)
}
