package redis

import (
	"context"
	"fmt"

	"assistante-suite/config"
	appLogger "assistante-suite/utils/logger"

	"github.com/redis/go-redis/v9"
)

type RedisManager struct {
	Redis *redis.Client
}

func NewRedisClient(cfg config.RedisConfig) *RedisManager {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		appLogger.Errorf("Failed to connect to Redis: %v", err)
	}
	return &RedisManager{
		Redis: client,
	}
}

func (r *RedisManager) Ping(ctx context.Context) error {
	return r.Redis.Ping(ctx).Err()
}

func (r *RedisManager) Close() error {
	return r.Redis.Close()
}
