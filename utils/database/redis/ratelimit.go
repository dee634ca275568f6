package redis

import (
	"context"
	"time"
)

// Allow counts one hit against key and reports whether the count is still
// within limit for the current window. The window starts at the first hit.
func (r *RedisManager) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.Redis.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.Redis.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
