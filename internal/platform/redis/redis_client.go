// Package redis creates the Redis client shared by sessions and rate limiting.
package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"social_backend/internal/platform/config"
)

// ErrDisabled is returned when no Redis address is configured.
var ErrDisabled = errors.New("redis is not configured")

const dialTimeout = 3 * time.Second

// NewRedisClient connects to cfg.RedisAddr and verifies it with PING.
// The server is optional: callers fall back to SQL sessions and skip rate limiting on error.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisAddr == "" {
		return nil, ErrDisabled
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: dialTimeout,
	})

	// 接続確認
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", cfg.RedisAddr, "db", cfg.RedisDB)
	return rdb, nil
}
