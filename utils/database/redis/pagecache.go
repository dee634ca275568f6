package redis

import (
	"context"
	"time"

	"assistante-suite/utils/contentstore"
	appLogger "assistante-suite/utils/logger"
)

// CachedPageStore reads pages through Redis and drops the cached copy on
// every write that goes through it.
type CachedPageStore struct {
	contentstore.PageStore
	redis *RedisManager
	ttl   time.Duration
}

func NewCachedPageStore(inner contentstore.PageStore, redis *RedisManager, ttl time.Duration) *CachedPageStore {
	return &CachedPageStore{PageStore: inner, redis: redis, ttl: ttl}
}

func (s *CachedPageStore) LoadDocument(ctx context.Context, id string) (*contentstore.StoredDocument, error) {
	key := BuildPageCacheKey(id)
	var cached contentstore.StoredDocument
	if found, err := s.redis.GetCache(ctx, key, &cached); err == nil && found {
		return &cached, nil
	}
	doc, err := s.PageStore.LoadDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.redis.SetCache(ctx, key, doc, s.ttl); err != nil {
		appLogger.Warnf("page %s not cached: %v", id, err)
	}
	return doc, nil
}

func (s *CachedPageStore) SaveDocument(ctx context.Context, doc contentstore.StoredDocument) (int64, error) {
	revision, err := s.PageStore.SaveDocument(ctx, doc)
	s.invalidate(ctx, doc.ID)
	return revision, err
}

func (s *CachedPageStore) CreatePage(ctx context.Context, doc contentstore.StoredDocument) (*contentstore.StoredDocument, error) {
	created, err := s.PageStore.CreatePage(ctx, doc)
	s.invalidate(ctx, doc.ID)
	return created, err
}

func (s *CachedPageStore) DeletePage(ctx context.Context, id string) error {
	err := s.PageStore.DeletePage(ctx, id)
	s.invalidate(ctx, id)
	return err
}

func (s *CachedPageStore) invalidate(ctx context.Context, id string) {
	if err := s.redis.DeleteCache(ctx, BuildPageCacheKey(id)); err != nil {
		appLogger.Warnf("page %s cache not invalidated: %v", id, err)
	}
}
