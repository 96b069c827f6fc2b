// Package common defines shared constants and sentinel errors used across
// the key provider, crypto codec, storage and command layers of jasmify.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Key material errors.
	ErrKeyMissing = errors.New("key missing")
	ErrKeyFormat  = errors.New("key format")

	// Crypto errors.
	ErrCryptoOp   = errors.New("crypto operation failed")
	ErrCryptoAuth = errors.New("crypto authentication failed")
	ErrEncoding   = errors.New("invalid utf-8 plaintext")

	// Storage errors.
	ErrSchema = errors.New("schema error")
	ErrIO     = errors.New("io error")

	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Command surface errors.
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadPayload     = errors.New("bad payload")

	// Channel auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

var taxonomy = []struct {
	err  error
	name string
}{
	{ErrKeyMissing, "KeyMissing"},
	{ErrKeyFormat, "KeyFormat"},
	{ErrCryptoOp, "CryptoOp"},
	{ErrCryptoAuth, "CryptoAuth"},
	{ErrEncoding, "Encoding"},
	{ErrSchema, "Schema"},
	{ErrIO, "IO"},
	{ErrorNotFound, "NotFound"},
	{ErrUnknownCommand, "UnknownCommand"},
	{ErrBadPayload, "BadPayload"},
}

// Classify returns the taxonomy name of err, "" for nil and "Internal" when
// err matches none of the sentinels above.
func Classify(err error) string {
	if err == nil {
		return ""
	}
	for _, t := range taxonomy {
		if errors.Is(err, t.err) {
			return t.name
		}
	}
	return "Internal"
}
