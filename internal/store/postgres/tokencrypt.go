package postgres

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// tokenCipher encrypts SocialAccount access/refresh tokens at rest.
// Grounded on the teacher's internal/social/encryption.go TokenEncryption,
// generalized from stdlib AES-256-GCM to golang.org/x/crypto's
// ChaCha20-Poly1305 AEAD. A package-level singleton, set once at process
// startup via SetTokenKey, since every store in this package that reads
// or writes a token goes through the same scanAccount/encryptToken pair
// and none of them carry a request-scoped key.
var cipherAEAD tokenAEAD

type tokenAEAD interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// SetTokenKey installs the 32-byte key used to encrypt/decrypt
// SocialAccount tokens. Must be called before any store in this package
// touches a social_accounts row.
func SetTokenKey(key []byte) error {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return fmt.Errorf("postgres: invalid token encryption key: %w", err)
	}
	cipherAEAD = aead
	return nil
}

func encryptToken(plaintext string) (string, error) {
	if plaintext == "" || cipherAEAD == nil {
		return plaintext, nil
	}
	nonce := make([]byte, cipherAEAD.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("postgres: generate nonce: %w", err)
	}
	sealed := cipherAEAD.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func decryptToken(ciphertext string) (string, error) {
	if ciphertext == "" || cipherAEAD == nil {
		return ciphertext, nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		// Pre-encryption-rollout rows may still hold plaintext tokens;
		// treat an undecodable value as plaintext rather than failing.
		return ciphertext, nil
	}
	nonceSize := cipherAEAD.NonceSize()
	if len(raw) < nonceSize {
		return ciphertext, nil
	}
	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plain, err := cipherAEAD.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("postgres: decrypt token: %w", err)
	}
	return string(plain), nil
}
