// Package ulidx mints the ULIDs that identify accounts and identifier rows:
// a 48-bit millisecond timestamp followed by 80 random bits, rendered as
// 26 Crockford base32 characters.
package ulidx

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Minter produces strictly increasing ULIDs, also within the same millisecond.
// It is safe for concurrent use.
type Minter struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

// NewMinter returns a Minter backed by crypto/rand with monotonic entropy.
func NewMinter() *Minter {
	return &Minter{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// New returns a fresh ULID string.
func (m *Minter) New() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(m.now()), m.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Valid reports whether s parses as a canonical ULID.
func Valid(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
