// Package keyprovider resolves the 256-bit master key used to seal passwords.
//
// Resolution happens on every GetKey call, in this order:
//
//  1. the JASMIFY_AES_KEY environment variable (64 hex characters);
//  2. the key file <dir>/encrypted_key.hex.
//
// Nothing is cached, so changing the variable or swapping the file takes
// effect on the next call.
package keyprovider

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/jasmify/internal/common"
	"github.com/dmitrijs2005/jasmify/internal/filex"
)

// Provider reads the master key from the environment or from the key file in dir.
type Provider struct {
	dir    string
	envVar string
}

// NewProvider returns a Provider rooted at dir (normally the working directory).
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir, envVar: common.AESKeyEnvVar}
}

// KeyFilePath returns the location of the on-disk key.
func (p *Provider) KeyFilePath() string {
	return filepath.Join(p.dir, common.KeyFileName)
}

// GetKey returns the 32-byte master key.
func (p *Provider) GetKey() ([]byte, error) {
	if v, ok := os.LookupEnv(p.envVar); ok {
		key, err := decodeKey(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p.envVar, err)
		}
		return key, nil
	}

	data, err := os.ReadFile(p.KeyFilePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not set and %s absent", common.ErrKeyMissing, p.envVar, p.KeyFilePath())
		}
		return nil, fmt.Errorf("%w: read key file: %w", common.ErrIO, err)
	}

	key, err := decodeKey(string(data))
	if err != nil {
		return nil, fmt.Errorf("key file %s: %w", p.KeyFilePath(), err)
	}
	return key, nil
}

// CreateKeyFile draws a fresh key from the OS CSPRNG and writes it hex-encoded
// to the key file in a single atomic write.
func (p *Provider) CreateKeyFile() error {
	hexKey, err := common.MakeRandHexString(common.KeySize)
	if err != nil {
		return fmt.Errorf("%w: generate key: %w", common.ErrCryptoOp, err)
	}

	if err := filex.WriteFileAtomic(p.KeyFilePath(), []byte(hexKey), 0o600); err != nil {
		return fmt.Errorf("%w: %w", common.ErrIO, err)
	}
	return nil
}

// EnsureKey creates the key file when the environment variable is unset and
// the file does not exist yet. It reports whether a key was created.
func (p *Provider) EnsureKey() (bool, error) {
	if _, ok := os.LookupEnv(p.envVar); ok {
		return false, nil
	}

	exists, err := filex.Exists(p.KeyFilePath())
	if err != nil {
		return false, fmt.Errorf("%w: %w", common.ErrIO, err)
	}
	if exists {
		return false, nil
	}

	if err := p.CreateKeyFile(); err != nil {
		return false, err
	}
	return true, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrKeyFormat, err)
	}
	if len(key) != common.KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", common.ErrKeyFormat, common.KeySize, len(key))
	}
	return key, nil
}
