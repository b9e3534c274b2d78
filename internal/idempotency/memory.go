package idempotency

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// MemoryStore is the single-instance Store used when no Redis address is configured.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]time.Time // key -> claimed at
	ttl  time.Duration
	log  *slog.Logger
	now  func() time.Time
}

func NewMemoryStore(ttl time.Duration, logger *slog.Logger) *MemoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		data: make(map[string]time.Time),
		ttl:  ttl,
		log:  logger,
		now:  time.Now,
	}
}

// Seen claims key and reports whether it was already claimed and not yet expired.
func (ms *MemoryStore) Seen(_ context.Context, key string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	if claimed, ok := ms.data[key]; ok && now.Sub(claimed) <= ms.ttl {
		return true, nil
	}
	ms.data[key] = now
	return false, nil
}

// Release forgets key so the same request may be retried.
func (ms *MemoryStore) Release(_ context.Context, key string) error {
	ms.mu.Lock()
	delete(ms.data, key)
	ms.mu.Unlock()
	return nil
}

// StartSweeper evicts expired keys every interval until ctx is done.
func (ms *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ms.sweep()
			}
		}
	}()
}

func (ms *MemoryStore) sweep() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := ms.now()
	evicted := 0
	for key, claimed := range ms.data {
		if now.Sub(claimed) > ms.ttl {
			delete(ms.data, key)
			evicted++
		}
	}
	if evicted > 0 {
		ms.log.Info("sweeper evicted expired idempotency keys", "count", evicted)
	}
	return evicted
}
