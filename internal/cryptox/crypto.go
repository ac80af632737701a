// Package cryptox implements the client-side encryption used by ZeroShare:
// AES-256-GCM with a fresh random 12-byte nonce per file. The key is
// generated (or derived from a passphrase) on the sender's machine and never
// reaches the server; ciphertext integrity is covered by the GCM tag.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/zeroshare/zeroshare/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// SaltSize is the salt length used for passphrase-derived keys.
	SaltSize = 16
)

// GenerateKey returns a cryptographically secure 256-bit key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return key, nil
}

// GenerateSalt returns a random salt for DeriveKey.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return salt, nil
}

// DeriveKey derives a 256-bit key from a passphrase and salt using argon2id.
// The same passphrase and salt always produce the same key, which lets a
// recipient reconstruct the key from a passphrase shared out of band.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Encrypt encrypts plaintext with AES-GCM under key, drawing a fresh random
// 12-byte nonce. The returned ciphertext includes the 16-byte authentication
// tag appended by GCM. Nonce and ciphertext are returned separately; Pack
// frames them for transport.
func Encrypt(plaintext, key []byte) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return nonce, ciphertext, nil
}

// Decrypt verifies and decrypts ciphertext produced by Encrypt. A tag
// mismatch (wrong key, truncated or tampered data) yields
// common.ErrAuthentication and no output.
func Decrypt(nonce, ciphertext, key []byte) ([]byte, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrAuthentication
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCrypto, err)
	}
	return aesgcm, nil
}

// EncodeKey returns the portable string form of a key or salt, suitable for
// a URL fragment. Base64url without padding, matching what browsers produce
// for exported WebCrypto keys.
func EncodeKey(key []byte) string {
	return base64.RawURLEncoding.EncodeToString(key)
}

// DecodeKey reverses EncodeKey.
func DecodeKey(s string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFormat, err)
	}
	return b, nil
}
