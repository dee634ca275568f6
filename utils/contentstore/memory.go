package contentstore

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps pages in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	pages map[string]StoredDocument
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]StoredDocument), now: time.Now}
}

func copyDoc(doc StoredDocument) StoredDocument {
	doc.Content = append([]byte(nil), doc.Content...)
	return doc
}

func (m *MemoryStore) LoadDocument(_ context.Context, id string) (*StoredDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.pages[id]
	if !ok {
		return nil, ErrDocumentNotFound
	}
	out := copyDoc(doc)
	return &out, nil
}

func (m *MemoryStore) SaveDocument(_ context.Context, doc StoredDocument) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.pages[doc.ID]
	if !ok {
		return 0, ErrDocumentNotFound
	}
	if current.Revision != doc.Revision {
		return 0, ErrRevisionConflict
	}
	current.Content = append([]byte(nil), doc.Content...)
	current.Revision++
	current.UpdatedAt = m.now()
	if doc.Title != "" {
		current.Title = doc.Title
	}
	m.pages[doc.ID] = current
	return current.Revision, nil
}

func (m *MemoryStore) ListPages(_ context.Context) ([]PageSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PageSummary, 0, len(m.pages))
	for _, p := range m.pages {
		out = append(out, PageSummary{ID: p.ID, Title: p.Title, Revision: p.Revision, UpdatedAt: p.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// CreatePage stores a new page at revision 1.
func (m *MemoryStore) CreatePage(_ context.Context, doc StoredDocument) (*StoredDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[doc.ID]; ok {
		return nil, ErrDocumentExists
	}
	doc = copyDoc(doc)
	doc.Revision = 1
	doc.UpdatedAt = m.now()
	m.pages[doc.ID] = doc
	out := copyDoc(doc)
	return &out, nil
}

func (m *MemoryStore) DeletePage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.pages[id]; !ok {
		return ErrDocumentNotFound
	}
	delete(m.pages, id)
	return nil
}
