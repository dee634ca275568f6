package jsonform

import (
	"context"
	"sync"
	"time"
)

// StateRepository persists editor sessions between requests. LoadState
// returns nil and no error when nothing is stored under key.
type StateRepository interface {
	LoadState(ctx context.Context, key string) (*State, error)
	SaveState(ctx context.Context, key string, state State, ttl time.Duration) error
	DeleteState(ctx context.Context, key string) error
}

type memoryEntry struct {
	state   State
	expires time.Time
}

type MemoryStateRepository struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{entries: make(map[string]memoryEntry), now: time.Now}
}

func (r *MemoryStateRepository) LoadState(_ context.Context, key string) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && r.now().After(e.expires) {
		delete(r.entries, key)
		return nil, nil
	}
	st := e.state.clone()
	return &st, nil
}

func (r *MemoryStateRepository) SaveState(_ context.Context, key string, state State, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := memoryEntry{state: state.clone()}
	if ttl > 0 {
		e.expires = r.now().Add(ttl)
	}
	r.entries[key] = e
	return nil
}

func (r *MemoryStateRepository) DeleteState(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}
