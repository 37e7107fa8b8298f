package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memEntry struct {
	userID string
	exp    time.Time
}

// MemoryStore is a process local store used in dev mode (no Redis configured)
// and in tests.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]memEntry),
	}
}

func (s *MemoryStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	s.m[token] = memEntry{userID: userID, exp: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) Get(ctx context.Context, token string) (string, error) {
	now := time.Now()

	s.mu.RLock()
	e, ok := s.m[token]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}

	if now.After(e.exp) {
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()

		return "", ErrNotFound
	}

	return e.userID, nil
}

func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[token]; !ok {
		return ErrNotFound
	}

	delete(s.m, token)

	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}
