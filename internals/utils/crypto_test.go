package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "0123456789abcdef0123456789abcdef" // 32 bytes

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipherText, err := Encrypt("JBSWY3DPEHPK3PXP", testEncryptionKey)
	require.NoError(t, err)
	require.NotEmpty(t, cipherText)

	plain, err := Decrypt(cipherText, testEncryptionKey)
	require.NoError(t, err)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", plain)
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	a, err := Encrypt("same-secret", testEncryptionKey)
	require.NoError(t, err)
	b, err := Encrypt("same-secret", testEncryptionKey)
	require.NoError(t, err)

	// a fresh nonce every call
	assert.NotEqual(t, a, b)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	cipherText, err := Encrypt("secret", testEncryptionKey)
	require.NoError(t, err)

	_, err = Decrypt(cipherText, "ffffffffffffffffffffffffffffffff")
	assert.Error(t, err)
}

func TestDecryptTamperedDataFails(t *testing.T) {
	cipherText, err := Encrypt("secret", testEncryptionKey)
	require.NoError(t, err)

	tampered := []byte(cipherText)
	if tampered[len(tampered)-1] == 'a' {
		tampered[len(tampered)-1] = 'b'
	} else {
		tampered[len(tampered)-1] = 'a'
	}

	_, err = Decrypt(string(tampered), testEncryptionKey)
	assert.Error(t, err)
}

func TestDecryptRejectsShortCiphertext(t *testing.T) {
	_, err := Decrypt("abcd", testEncryptionKey)
	assert.Error(t, err)

	_, err = Decrypt("not hex", testEncryptionKey)
	assert.Error(t, err)
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	_, err := Encrypt("secret", "short-key")
	assert.Error(t, err)
}
