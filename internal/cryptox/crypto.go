// Package cryptox seals account access tokens at rest. A key is derived
// from a user passphrase with Argon2id and the token is encrypted with
// AES-256-GCM under a fresh random nonce.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tootcache/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SaltSize  = 16
	NonceSize = 12
	KeySize   = 32
)

// Sealed holds everything needed to recover a secret except the passphrase.
type Sealed struct {
	Ciphertext []byte
	Nonce      []byte
	Salt       []byte
}

func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, KeySize)
}

// Seal encrypts secret under a key derived from passphrase and a new
// random salt. The derived key is wiped before returning.
func Seal(secret, passphrase []byte) (*Sealed, error) {
	if len(passphrase) == 0 {
		return nil, common.ErrInvalidPassphrase
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("salt: %w", err)
	}

	key := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}

	return &Sealed{
		Ciphertext: aesgcm.Seal(nil, nonce, secret, nil),
		Nonce:      nonce,
		Salt:       salt,
	}, nil
}

// Open reverses Seal. A wrong passphrase or tampered ciphertext yields
// common.ErrInvalidPassphrase.
func Open(s *Sealed, passphrase []byte) ([]byte, error) {
	if s == nil || len(s.Nonce) != NonceSize || len(s.Salt) == 0 {
		return nil, errors.New("cryptox: malformed sealed value")
	}

	key := DeriveKey(passphrase, s.Salt)
	defer common.WipeByteArray(key)

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesgcm.Open(nil, s.Nonce, s.Ciphertext, nil)
	if err != nil {
		return nil, common.ErrInvalidPassphrase
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
