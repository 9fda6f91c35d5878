// Package vault derives the session key from the account password and
// seals individual text fields with AES-256-GCM.
//
// Payload layout: base64(nonce || ciphertext || tag).
package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	SaltSize          = 16
	KeySize           = 32
	NonceSize         = 12
	DefaultIterations = 210_000
)

// ErrAuthentication means a payload could not be opened with the key: wrong
// password, corrupted or truncated payload. Callers must not treat it as an
// empty plaintext.
var ErrAuthentication = errors.New("vault: cannot decrypt payload")

// Key is a derived AES-256 key. It is held in memory only.
type Key struct {
	b []byte
}

// String keeps key material out of logs and fmt output.
func (k *Key) String() string { return "vault.Key(redacted)" }

// Wipe zeroes the key bytes. A wiped key cannot encrypt or decrypt.
func (k *Key) Wipe() {
	if k == nil {
		return
	}
	for i := range k.b {
		k.b[i] = 0
	}
	k.b = nil
}

// NewSalt returns SaltSize random bytes, base64 encoded for storage.
func NewSalt() (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(salt), nil
}

// DeriveKey runs PBKDF2-SHA256 over password with the stored salt. It does
// not check the password: a wrong password yields a different key and the
// failure surfaces on the first Decrypt.
func DeriveKey(password, salt string, iterations int) (*Key, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("derive key: iterations must be positive, got %d", iterations)
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: decode salt: %w", err)
	}
	if len(rawSalt) == 0 {
		return nil, fmt.Errorf("derive key: empty salt")
	}
	return &Key{b: pbkdf2.Key([]byte(password), rawSalt, iterations, KeySize, sha256.New)}, nil
}

// Encrypt seals plain under k with a fresh random nonce.
func Encrypt(plain string, k *Key) (string, error) {
	gcm, err := newGCM(k)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a payload produced by Encrypt. Every failure to decode or
// authenticate the payload is reported as ErrAuthentication.
func Decrypt(payload string, k *Key) (string, error) {
	gcm, err := newGCM(k)
	if err != nil {
		return "", err
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrAuthentication
	}
	if len(raw) < gcm.NonceSize()+gcm.Overhead() {
		return "", ErrAuthentication
	}
	nonce, body := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return "", ErrAuthentication
	}
	return string(plain), nil
}

func newGCM(k *Key) (cipher.AEAD, error) {
	if k == nil || len(k.b) != KeySize {
		return nil, errors.New("vault: key not available")
	}
	block, err := aes.NewCipher(k.b)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	return gcm, nil
}
