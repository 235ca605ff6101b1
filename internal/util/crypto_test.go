package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	t.Run("generates 64 character hex string", func(t *testing.T) {
		token, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, token, 64)
	})

	t.Run("generates unique tokens", func(t *testing.T) {
		token1, _ := GenerateToken()
		token2, _ := GenerateToken()
		assert.NotEqual(t, token1, token2)
	})
}

func TestHashToken(t *testing.T) {
	t.Run("same input produces same hash", func(t *testing.T) {
		assert.Equal(t, HashToken("test-token"), HashToken("test-token"))
	})

	t.Run("different input produces different hash", func(t *testing.T) {
		assert.NotEqual(t, HashToken("token-1"), HashToken("token-2"))
	})
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "abcd-****", MaskToken("abcdef123456"))
	assert.Equal(t, "****", MaskToken("ab"))
}

func TestEncryptDecrypt(t *testing.T) {
	const secret = "a-reasonably-long-operator-secret"
	const info = "pending-state"

	t.Run("round trips plaintext", func(t *testing.T) {
		plaintext := []byte(`{"proxy_url":"https://gw.example","keypair":{}}`)

		encrypted, err := Encrypt(secret, info, plaintext)
		require.NoError(t, err)
		assert.NotContains(t, encrypted, "proxy_url")

		decrypted, err := Decrypt(secret, info, encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("output is url safe", func(t *testing.T) {
		encrypted, err := Encrypt(secret, info, []byte("payload"))
		require.NoError(t, err)
		assert.NotContains(t, encrypted, "+")
		assert.NotContains(t, encrypted, "/")
		assert.NotContains(t, encrypted, "=")
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		encrypted, err := Encrypt(secret, info, []byte("payload"))
		require.NoError(t, err)

		_, err = Decrypt("another-secret", info, encrypted)
		assert.Error(t, err)
	})

	t.Run("wrong info string fails", func(t *testing.T) {
		encrypted, err := Encrypt(secret, info, []byte("payload"))
		require.NoError(t, err)

		_, err = Decrypt(secret, "other-context", encrypted)
		assert.Error(t, err)
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		encrypted, err := Encrypt(secret, info, []byte("payload"))
		require.NoError(t, err)

		tampered := "A" + encrypted[1:]
		_, err = Decrypt(secret, info, tampered)
		assert.Error(t, err)
	})
}
