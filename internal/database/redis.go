package database

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/config"
)

// NewRedisClient creates and validates a Redis client connection. Command
// retries on network errors are delegated to go-redis.
func NewRedisClient(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opt.MaxRetries = cfg.RedisRetries
	opt.MinRetryBackoff = cfg.DBRetryBackoff
	opt.MaxRetryBackoff = cfg.DBRetryBackoff * 8

	rdb := redis.NewClient(opt)

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	log.Info().
		Str("addr", opt.Addr).
		Int("db", opt.DB).
		Int("max_retries", opt.MaxRetries).
		Msg("Redis connected")

	return rdb, nil
}
