package database

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Querier is the subset of pgx shared by the pool, DB and transactions.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RetryPolicy bounds the retries of a transient failure. The delay doubles
// after each failed attempt.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DB wraps a pgx pool and retries statements that failed before reaching
// the server (dropped connections, dial timeouts). Statements that may have
// executed are never retried.
type DB struct {
	pool   *pgxpool.Pool
	policy RetryPolicy
	log    zerolog.Logger
}

// New wraps pool with policy. Attempts below 1 means a single try.
func New(pool *pgxpool.Pool, policy RetryPolicy, log zerolog.Logger) *DB {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &DB{pool: pool, policy: policy, log: log.With().Str("component", "database").Logger()}
}

// Pool exposes the underlying pool for tools that need pgx directly.
func (db *DB) Pool() *pgxpool.Pool { return db.pool }

func (db *DB) Close() { db.pool.Close() }

func (db *DB) Ping(ctx context.Context) error {
	return db.retry(ctx, "ping", func() error { return db.pool.Ping(ctx) })
}

func (db *DB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	var tag pgconn.CommandTag
	err := db.retry(ctx, "exec", func() error {
		var err error
		tag, err = db.pool.Exec(ctx, sql, args...)
		return err
	})
	return tag, err
}

func (db *DB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	var rows pgx.Rows
	err := db.retry(ctx, "query", func() error {
		var err error
		rows, err = db.pool.Query(ctx, sql, args...)
		return err
	})
	return rows, err
}

// QueryRow defers the query until Scan so that a transient failure can be
// retried there.
func (db *DB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &retryRow{db: db, ctx: ctx, sql: sql, args: args}
}

// InTx runs fn inside a transaction, committing when fn returns nil. Only
// BEGIN is retried; a failure inside fn rolls back and is returned as is.
func (db *DB) InTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var tx pgx.Tx
	err := db.retry(ctx, "begin", func() error {
		var err error
		tx, err = db.pool.Begin(ctx)
		return err
	})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type retryRow struct {
	db   *DB
	ctx  context.Context
	sql  string
	args []any
}

func (r *retryRow) Scan(dest ...any) error {
	return r.db.retry(r.ctx, "query_row", func() error {
		return r.db.pool.QueryRow(r.ctx, r.sql, r.args...).Scan(dest...)
	})
}

func (db *DB) retry(ctx context.Context, op string, fn func() error) error {
	delay := db.policy.Backoff
	var err error
	for attempt := 1; ; attempt++ {
		err = fn()
		if err == nil || attempt >= db.policy.Attempts || !IsTransient(err) {
			return err
		}

		db.log.Warn().Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Msg("transient database error, retrying")

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// IsTransient reports whether err is a failure that happened before the
// statement reached the server, so repeating it cannot apply it twice.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pgconn.SafeToRetry(err) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
