package solana

import (
	"bytes"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyManager(t *testing.T) {
	km := NewKeyManager("test-password")

	// Test key pair generation
	t.Run("Generate Key Pair", func(t *testing.T) {
		account, err := km.GenerateKeyPair()
		require.NoError(t, err)
		assert.NotNil(t, account)
		assert.NotEmpty(t, account.PublicKey.ToBase58())
		assert.NotEmpty(t, account.PrivateKey)
		assert.Equal(t, 64, len(account.PrivateKey), "Private key should be 64 bytes")
	})

	// Test encryption and decryption
	t.Run("Encrypt and Decrypt Private Key", func(t *testing.T) {
		account, err := km.GenerateKeyPair()
		require.NoError(t, err)

		encrypted, err := km.EncryptPrivateKey(account.PrivateKey)
		require.NoError(t, err)
		assert.NotEmpty(t, encrypted)

		decrypted, err := km.DecryptPrivateKey(encrypted)
		require.NoError(t, err)

		// check if the decrypted key is the same as the original key
		assert.True(t, bytes.Equal(account.PrivateKey[:], decrypted), "Decrypted private key should match original")
	})

	t.Run("Wrong Password Fails Decryption", func(t *testing.T) {
		account, err := km.GenerateKeyPair()
		require.NoError(t, err)

		encrypted, err := km.EncryptPrivateKey(account.PrivateKey)
		require.NoError(t, err)

		other := NewKeyManager("different-password")
		_, err = other.DecryptPrivateKey(encrypted)
		assert.Error(t, err)
	})

	t.Run("Signer From Encrypted Key", func(t *testing.T) {
		account, err := km.GenerateKeyPair()
		require.NoError(t, err)

		encrypted, err := km.EncryptPrivateKey(account.PrivateKey)
		require.NoError(t, err)

		signer, err := km.SignerFromEncrypted(encrypted)
		require.NoError(t, err)
		assert.Equal(t, account.PublicKey.ToBase58(), signer.PublicKey().String())
	})

	t.Run("Account From Base58 Roundtrip", func(t *testing.T) {
		account, err := km.GenerateKeyPair()
		require.NoError(t, err)

		restored, err := km.AccountFromBase58(base58.Encode(account.PrivateKey))
		require.NoError(t, err)
		assert.Equal(t, account.PublicKey.ToBase58(), restored.PublicKey.ToBase58())
	})

	t.Run("Address From Private Key Bytes", func(t *testing.T) {
		account, err := km.GenerateKeyPair()
		require.NoError(t, err)

		address, err := km.GetSolanaAddressFromPrivateKey(account.PrivateKey)
		require.NoError(t, err)
		assert.Equal(t, account.PublicKey.ToBase58(), address)
	})
}
