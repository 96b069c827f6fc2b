package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKey struct {
	key []byte
	err error
}

func (k staticKey) GetKey() ([]byte, error) {
	if k.err != nil {
		return nil, k.err
	}
	return append([]byte(nil), k.key...), nil
}

func newKey(t *testing.T) staticKey {
	t.Helper()
	key, err := common.GenerateRandByteArray(common.KeySize)
	require.NoError(t, err)
	return staticKey{key: key}
}

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(newKey(t), time.Minute)

	tok, err := a.GenerateToken("cli")
	require.NoError(t, err)

	client, err := a.GetClientFromToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "cli", client)
}

func TestGetClientFromToken_Expired(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(newKey(t), time.Minute)
	start := time.Now()
	a.now = func() time.Time { return start }

	tok, err := a.GenerateToken("cli")
	require.NoError(t, err)

	a.now = func() time.Time { return start.Add(2 * time.Minute) }
	_, err = a.GetClientFromToken(tok)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetClientFromToken_DifferentMasterKey(t *testing.T) {
	t.Parallel()

	tok, err := NewAuthenticator(newKey(t), time.Minute).GenerateToken("cli")
	require.NoError(t, err)

	_, err = NewAuthenticator(newKey(t), time.Minute).GetClientFromToken(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetClientFromToken_NotSignedWithMasterKey(t *testing.T) {
	t.Parallel()

	keys := newKey(t)
	// A token signed with the raw master key instead of the derived subkey.
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Client:           "evil",
	}).SignedString(keys.key)
	require.NoError(t, err)

	_, err = NewAuthenticator(keys, time.Minute).GetClientFromToken(forged)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetClientFromToken_RejectsNoneAlg(t *testing.T) {
	t.Parallel()

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewAuthenticator(newKey(t), time.Minute).GetClientFromToken(unsigned)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetClientFromToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := NewAuthenticator(newKey(t), time.Minute).GetClientFromToken("not.a.jwt")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestKeyErrorsPropagate(t *testing.T) {
	t.Parallel()

	a := NewAuthenticator(staticKey{err: common.ErrKeyMissing}, time.Minute)

	_, err := a.GenerateToken("cli")
	require.ErrorIs(t, err, common.ErrKeyMissing)

	_, err = a.GetClientFromToken("x.y.z")
	require.ErrorIs(t, err, common.ErrKeyMissing)
}
