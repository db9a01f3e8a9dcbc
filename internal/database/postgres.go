package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/tuition-backend/internal/config"
)

// NewPostgres creates and validates a PostgreSQL connection pool and wraps it
// with the configured retry policy.
func NewPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxDBConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	db := New(pool, RetryPolicy{Attempts: cfg.DBRetries, Backoff: cfg.DBRetryBackoff}, log)
	if err := db.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Int32("max_conns", cfg.MaxDBConns).
		Int("retry_attempts", cfg.DBRetries).
		Msg("PostgreSQL connected")

	return db, nil
}
