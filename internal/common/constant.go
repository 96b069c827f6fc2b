// Package common contains shared constants, sentinel errors and small helpers
// used across jasmify components.
package common

const (
	// AccessTokenHeaderName is the gRPC metadata key used to carry the
	// channel access token on outbound requests.
	AccessTokenHeaderName = "access_token"

	// AESKeyEnvVar overrides the on-disk master key when set.
	AESKeyEnvVar = "JASMIFY_AES_KEY"

	// KeyFileName is the master key file created in the working directory.
	// The content is plaintext hex; the name is historical.
	KeyFileName = "encrypted_key.hex"

	// DatabaseDir and DatabaseFile locate the SQLite store under the working directory.
	DatabaseDir  = "DB"
	DatabaseFile = "db.sqlite"

	// KeySize is the AES-256 master key length in bytes.
	KeySize = 32
)
