package api

import (
	"context"
	"sync"
	"time"
)

// SessionStore remembers which signed session tokens are still live.
type SessionStore interface {
	Create(ctx context.Context, userID, sessionToken string, ttl time.Duration) error
	Exists(ctx context.Context, userID, sessionToken string) (bool, error)
	Delete(ctx context.Context, userID, sessionToken string) error
}

type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]time.Time)}
}

func (m *MemorySessionStore) Create(_ context.Context, userID, sessionToken string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID+":"+sessionToken] = time.Now().Add(ttl)
	return nil
}

func (m *MemorySessionStore) Exists(_ context.Context, userID, sessionToken string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.sessions[userID+":"+sessionToken]
	return ok && time.Now().Before(exp), nil
}

func (m *MemorySessionStore) Delete(_ context.Context, userID, sessionToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID+":"+sessionToken)
	return nil
}
