package ulidx

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinter_FormatAndTimestamp(t *testing.T) {
	m := NewMinter()
	before := time.Now().Add(-time.Millisecond)

	s, err := m.New()
	require.NoError(t, err)
	require.Len(t, s, 26)
	require.True(t, Valid(s))

	id := ulid.MustParse(s)
	ts := ulid.Time(id.Time())
	assert.False(t, ts.Before(before.Truncate(time.Millisecond)))
	assert.False(t, ts.After(time.Now()))
}

func TestMinter_MonotonicWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	m := NewMinter()
	m.now = func() time.Time { return fixed }

	var ids []string
	for i := 0; i < 100; i++ {
		s, err := m.New()
		require.NoError(t, err)
		ids = append(ids, s)
	}

	assert.True(t, sort.StringsAreSorted(ids))
	seen := map[string]struct{}{}
	for _, s := range ids {
		seen[s] = struct{}{}
	}
	assert.Len(t, seen, len(ids))
}

func TestMinter_LexicographicByTime(t *testing.T) {
	m := NewMinter()
	now := time.UnixMilli(1_700_000_000_000)
	m.now = func() time.Time { return now }
	a, err := m.New()
	require.NoError(t, err)

	now = now.Add(time.Second)
	b, err := m.New()
	require.NoError(t, err)

	assert.Less(t, a, b)
}

func TestMinter_ConcurrentUnique(t *testing.T) {
	m := NewMinter()

	const n = 8
	const per = 200
	out := make(chan string, n*per)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < per; j++ {
				s, err := m.New()
				if err == nil {
					out <- s
				}
			}
		}()
	}
	wg.Wait()
	close(out)

	seen := map[string]struct{}{}
	for s := range out {
		seen[s] = struct{}{}
	}
	assert.Len(t, seen, n*per)
}

func TestValid(t *testing.T) {
	assert.False(t, Valid(""))
	assert.False(t, Valid("not-a-ulid"))
	assert.True(t, Valid("01ARZ3NDEKTSV4RRFFQ69G5FAV"))
}
