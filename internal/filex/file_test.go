package filex

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnsureSubDir_CreatesDirectory(t *testing.T) {
	base := t.TempDir()

	got, err := EnsureSubDir(base, "DB")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(base, "DB"), got)

	fi, err := os.Stat(got)
	require.NoError(t, err)
	require.True(t, fi.IsDir())

	// second call is a no-op
	again, err := EnsureSubDir(base, "DB")
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestEnsureSubDir_FailsWhenFileInTheWay(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "DB"), []byte("x"), 0o600))

	_, err := EnsureSubDir(base, "DB")
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	base := t.TempDir()
	p := filepath.Join(base, "f")

	ok, err := Exists(p)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, os.WriteFile(p, nil, 0o600))
	ok, err = Exists(p)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestWriteFileAtomic_WritesAndReplaces(t *testing.T) {
	base := t.TempDir()
	p := filepath.Join(base, "encrypted_key.hex")

	require.NoError(t, WriteFileAtomic(p, []byte("first"), 0o600))
	require.NoError(t, WriteFileAtomic(p, []byte("second"), 0o600))

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	require.Equal(t, "second", string(b))

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(p)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}

	// no temp files left behind
	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
