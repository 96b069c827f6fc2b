package cryptox

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, common.KeySize)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := testKey(1)

	for _, plaintext := range []string{"hunter2", "", "пароль-密码-🔑", "test_password"} {
		ct, nonce, err := EncryptPassword(key, plaintext)
		require.NoError(t, err)

		got, err := DecryptPassword(key, ct, nonce)
		require.NoError(t, err)
		assert.Equal(t, plaintext, got)
	}
}

func TestEncryptPassword_HexFraming(t *testing.T) {
	const password = "test_password"

	ct, nonce, err := EncryptPassword(testKey(1), password)
	require.NoError(t, err)

	// ciphertext carries the 16-byte GCM tag
	assert.Len(t, ct, (len(password)+16)*2)
	assert.Len(t, nonce, NonceSize*2)
	assert.Regexp(t, "^[0-9a-f]+$", ct)
	assert.Regexp(t, "^[0-9a-f]+$", nonce)
}

func TestEncryptPassword_FreshNonceEachCall(t *testing.T) {
	key := testKey(1)

	ct1, n1, err := EncryptPassword(key, "same")
	require.NoError(t, err)
	ct2, n2, err := EncryptPassword(key, "same")
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
	assert.NotEqual(t, ct1, ct2)
}

func TestDecryptPassword_WrongKeyIsAuthError(t *testing.T) {
	ct, nonce, err := EncryptPassword(testKey(0xA), "hunter2")
	require.NoError(t, err)

	_, err = DecryptPassword(testKey(0xB), ct, nonce)
	require.ErrorIs(t, err, common.ErrCryptoAuth)
}

func TestDecryptPassword_TamperedCiphertext(t *testing.T) {
	key := testKey(1)
	ct, nonce, err := EncryptPassword(key, "hunter2")
	require.NoError(t, err)

	raw, _ := hex.DecodeString(ct)
	raw[0] ^= 0xff

	_, err = DecryptPassword(key, hex.EncodeToString(raw), nonce)
	require.ErrorIs(t, err, common.ErrCryptoAuth)
}

func TestDecryptPassword_MalformedInputs(t *testing.T) {
	key := testKey(1)
	ct, nonce, err := EncryptPassword(key, "x")
	require.NoError(t, err)

	tests := []struct {
		name  string
		key   []byte
		ct    string
		nonce string
	}{
		{"ciphertext not hex", key, "zz", nonce},
		{"nonce not hex", key, ct, "zz"},
		{"short nonce", key, ct, "00ff"},
		{"short key", key[:16], ct, nonce},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecryptPassword(tt.key, tt.ct, tt.nonce)
			require.ErrorIs(t, err, common.ErrKeyFormat)
		})
	}
}

func TestDecryptPassword_NonUTF8Plaintext(t *testing.T) {
	key := testKey(1)
	aesgcm, err := newGCM(key)
	require.NoError(t, err)

	nonce, err := common.GenerateRandByteArray(NonceSize)
	require.NoError(t, err)
	ct := aesgcm.Seal(nil, nonce, []byte{0xff, 0xfe, 0xfd}, nil)

	_, err = DecryptPassword(key, hex.EncodeToString(ct), hex.EncodeToString(nonce))
	require.ErrorIs(t, err, common.ErrEncoding)
}

func TestEncryptPassword_BadKey(t *testing.T) {
	_, _, err := EncryptPassword([]byte("short"), "x")
	require.ErrorIs(t, err, common.ErrKeyFormat)
}

func TestDeriveSubkey(t *testing.T) {
	master := testKey(7)

	a1, err := DeriveSubkey(master, "a")
	require.NoError(t, err)
	a2, err := DeriveSubkey(master, "a")
	require.NoError(t, err)
	b, err := DeriveSubkey(master, "b")
	require.NoError(t, err)

	assert.Len(t, a1, common.KeySize)
	assert.Equal(t, a1, a2)
	assert.NotEqual(t, a1, b)
	assert.NotEqual(t, master, a1)

	_, err = DeriveSubkey(master[:5], "a")
	require.ErrorIs(t, err, common.ErrKeyFormat)
}
