package idempotency

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) *MemoryStore {
	return NewMemoryStore(ttl, nil)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "idem:confirm:s1:abc", Key("confirm", "s1", "abc"))
}

func TestSeen_FirstClaimWins(t *testing.T) {
	s := newTestStore(time.Hour)
	ctx := context.Background()

	seen, err := s.Seen(ctx, "k")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = s.Seen(ctx, "k")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, _ = s.Seen(ctx, "other")
	assert.False(t, seen)
}

func TestSeen_ExpiredKeyIsClaimable(t *testing.T) {
	s := newTestStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	_, _ = s.Seen(context.Background(), "k")
	now = now.Add(2 * time.Minute)

	seen, err := s.Seen(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestRelease(t *testing.T) {
	s := newTestStore(time.Hour)
	ctx := context.Background()

	_, _ = s.Seen(ctx, "k")
	require.NoError(t, s.Release(ctx, "k"))

	seen, _ := s.Seen(ctx, "k")
	assert.False(t, seen)
}

func TestSweep(t *testing.T) {
	s := newTestStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }

	_, _ = s.Seen(context.Background(), "old")
	now = now.Add(2 * time.Minute)
	_, _ = s.Seen(context.Background(), "fresh")

	assert.Equal(t, 1, s.sweep())
	assert.Len(t, s.data, 1)
}

func TestSeen_ConcurrentClaimsOnlyOneWins(t *testing.T) {
	s := newTestStore(time.Hour)
	var wins atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if seen, _ := s.Seen(context.Background(), "same"); !seen {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
