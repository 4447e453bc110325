package session

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu  sync.RWMutex
	now func() time.Time
	m   map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithClock(time.Now)
}

func NewMemoryStoreWithClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{
		now: now,
		m:   make(map[string]Session),
	}
}

func (s *MemoryStore) Save(ctx context.Context, sess Session, ttl time.Duration) error {
	sess.ExpiresAt = s.now().Add(ttl)

	s.mu.Lock()
	s.m[sess.ID] = sess
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Load(ctx context.Context, id string) (Session, bool, error) {
	now := s.now()

	s.mu.RLock()
	sess, ok := s.m[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, false, nil
	}

	if sess.Expired(now) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return Session{}, false, nil
	}

	return sess, true, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.m, id)
	s.mu.Unlock()

	return nil
}

// Sweep drops expired sessions and reports how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.m {
		if sess.Expired(now) {
			delete(s.m, id)
			removed++
		}
	}

	return removed
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
