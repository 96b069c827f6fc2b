// Package auth issues and checks the short-lived tokens that guard the host
// channel. Tokens are HS256 JWTs signed with a subkey derived from the master
// key, so only a process that can read the master key can obtain one.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/cryptox"
	"github.com/golang-jwt/jwt/v5"
)

// SubkeyInfo is the HKDF info string for the channel signing key.
const SubkeyInfo = "jasmify channel token v1"

// KeySource returns the current master key.
type KeySource interface {
	GetKey() ([]byte, error)
}

// Claims carries the standard claims and the name of the calling client.
type Claims struct {
	jwt.RegisteredClaims
	Client string `json:"client"`
}

// Authenticator signs and verifies channel tokens. The signing key is
// re-derived from the master key on every call.
type Authenticator struct {
	keys KeySource
	ttl  time.Duration
	now  func() time.Time
}

func NewAuthenticator(keys KeySource, ttl time.Duration) *Authenticator {
	return &Authenticator{keys: keys, ttl: ttl, now: time.Now}
}

func (a *Authenticator) signingKey() ([]byte, error) {
	master, err := a.keys.GetKey()
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(master)

	return cryptox.DeriveSubkey(master, SubkeyInfo)
}

// GenerateToken returns a token for client valid for the configured TTL.
func (a *Authenticator) GenerateToken(client string) (string, error) {
	key, err := a.signingKey()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	now := a.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
		Client: client,
	})

	tokenString, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tokenString, nil
}

// GetClientFromToken verifies tokenString and returns the client it was
// issued to. Expired tokens yield common.ErrTokenExpired, any other failure
// common.ErrInvalidToken.
func (a *Authenticator) GetClientFromToken(tokenString string) (string, error) {
	key, err := a.signingKey()
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(key)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	return claims.Client, nil
}
