package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store owns every live session. Sessions idle for longer than the TTL are closed and
// evicted by the sweeper.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Session
	ttl  time.Duration
	opts Options
	log  *slog.Logger
}

// NewStore creates an empty store; opts is applied to every session it creates.
func NewStore(ttl time.Duration, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		data: make(map[string]*Session),
		ttl:  ttl,
		opts: opts,
		log:  opts.Logger,
	}
}

// Create starts a new session with a random ID.
func (st *Store) Create() *Session {
	s := New(uuid.NewString(), st.opts)

	st.mu.Lock()
	st.data[s.ID] = s
	st.mu.Unlock()

	st.log.Info("session created", "session_id", s.ID)
	return s
}

// Get returns the session and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.data[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.markAccess()
	return s, nil
}

// Delete closes and removes the session. The analogue of a page reload.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	s, ok := st.data[id]
	delete(st.data, id)
	st.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	st.log.Info("session deleted", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.data)
}

// StartSweeper evicts idle sessions every interval until ctx is done.
func (st *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				st.sweep(time.Now().UTC())
			}
		}
	}()
}

// CloseAll closes every session. Used on shutdown so no settle timer outlives the server.
func (st *Store) CloseAll() {
	st.mu.Lock()
	sessions := st.data
	st.data = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

// sweep takes a write lock, removes sessions idle past the TTL and closes them outside it.
func (st *Store) sweep(now time.Time) int {
	var expired []*Session

	st.mu.Lock()
	for id, s := range st.data {
		if now.Sub(s.idleSince()) > st.ttl {
			delete(st.data, id)
			expired = append(expired, s)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		st.log.Info("sweeper evicted idle sessions", "count", len(expired))
	}
	return len(expired)
}
