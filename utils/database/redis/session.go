package redis

import (
	"context"
	"time"
)

// AdminSessionStore records issued admin session tokens.
type AdminSessionStore struct {
	redis *RedisManager
}

func NewAdminSessionStore(redis *RedisManager) *AdminSessionStore {
	return &AdminSessionStore{redis: redis}
}

func (s *AdminSessionStore) Create(ctx context.Context, userID, sessionToken string, ttl time.Duration) error {
	return s.redis.Redis.Set(ctx, BuildAdminSessionKey(userID, sessionToken), "1", ttl).Err()
}

func (s *AdminSessionStore) Exists(ctx context.Context, userID, sessionToken string) (bool, error) {
	n, err := s.redis.Redis.Exists(ctx, BuildAdminSessionKey(userID, sessionToken)).Result()
	return n > 0, err
}

func (s *AdminSessionStore) Delete(ctx context.Context, userID, sessionToken string) error {
	return s.redis.Redis.Del(ctx, BuildAdminSessionKey(userID, sessionToken)).Err()
}

func (s *AdminSessionStore) DeleteAll(ctx context.Context, userID string) error {
	return s.redis.DeletePrefix(ctx, BuildAdminSessionPrefix(userID))
}
