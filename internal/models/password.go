package models

// Password is a stored password row. EncryptedValue and Nonce are hex strings
// produced by cryptox.EncryptPassword.
type Password struct {
	ID             int64
	IdentifierULID string
	EncryptedValue string
	Nonce          string
}
