package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString_KeySized(t *testing.T) {
	s, err := MakeRandHexString(KeySize)
	require.NoError(t, err)
	require.Len(t, s, 64)

	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	assert.Len(t, b, KeySize)

	other, err := MakeRandHexString(KeySize)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Empty(t, s)
}

func TestGenerateRandByteArray(t *testing.T) {
	a, err := GenerateRandByteArray(12)
	require.NoError(t, err)
	b, err := GenerateRandByteArray(12)
	require.NoError(t, err)
	require.Len(t, a, 12)
	require.Len(t, b, 12)
	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	WipeByteArray(buf)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, buf)

	WipeByteArray(nil)
}
