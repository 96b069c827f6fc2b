// Package cryptox seals individual secrets with AES-256-GCM.
//
// Every call to EncryptPassword draws a fresh 12-byte nonce from the OS
// CSPRNG; callers cannot supply one. Ciphertext and nonce are hex-encoded so
// they can be stored as TEXT columns. The additional authenticated data is empty.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"golang.org/x/crypto/hkdf"
)

// NonceSize is the GCM standard nonce length in bytes.
const NonceSize = 12

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: want %d-byte key, got %d", common.ErrKeyFormat, common.KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyFormat, err)
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrCryptoOp, err)
	}
	return aesgcm, nil
}

// EncryptPassword seals plaintext under key and returns the hex-encoded
// ciphertext (including the 16-byte tag) and the hex-encoded nonce.
//
// Example:
//
//	ct, nonce, err := cryptox.EncryptPassword(key, "hunter2")
//	if err != nil {
//	    return err
//	}
//	// store ct and nonce side by side
func EncryptPassword(key []byte, plaintext string) (ciphertextHex, nonceHex string, err error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", "", err
	}

	nonce, err := common.GenerateRandByteArray(NonceSize)
	if err != nil {
		return "", "", fmt.Errorf("%w: nonce: %w", common.ErrCryptoOp, err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(ciphertext), hex.EncodeToString(nonce), nil
}

// DecryptPassword reverses EncryptPassword. A tag mismatch (wrong key or
// tampered data) yields common.ErrCryptoAuth.
func DecryptPassword(key []byte, ciphertextHex, nonceHex string) (string, error) {
	aesgcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	ciphertext, err := hex.DecodeString(ciphertextHex)
	if err != nil {
		return "", fmt.Errorf("%w: ciphertext: %w", common.ErrKeyFormat, err)
	}
	nonce, err := hex.DecodeString(nonceHex)
	if err != nil {
		return "", fmt.Errorf("%w: nonce: %w", common.ErrKeyFormat, err)
	}
	if len(nonce) != aesgcm.NonceSize() {
		return "", fmt.Errorf("%w: want %d-byte nonce, got %d", common.ErrKeyFormat, aesgcm.NonceSize(), len(nonce))
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrCryptoAuth, err)
	}

	if !utf8.Valid(plaintext) {
		return "", common.ErrEncoding
	}
	return string(plaintext), nil
}

// DeriveSubkey expands the master key into an independent 32-byte key bound
// to info, using HKDF-SHA256 with no salt.
func DeriveSubkey(masterKey []byte, info string) ([]byte, error) {
	if len(masterKey) != common.KeySize {
		return nil, fmt.Errorf("%w: want %d-byte key, got %d", common.ErrKeyFormat, common.KeySize, len(masterKey))
	}

	sub := make([]byte, common.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, []byte(info)), sub); err != nil {
		return nil, fmt.Errorf("%w: hkdf: %w", common.ErrCryptoOp, err)
	}
	return sub, nil
}
