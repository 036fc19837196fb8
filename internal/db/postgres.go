// Package db provides database connection helpers and the schema migration.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Option tunes how a connection is opened.
type Option func(*options)

type options struct {
	maxConns int32
	attempts int
	delay    time.Duration
	log      *zap.Logger
}

// WithMaxConns caps the Postgres pool size. Zero keeps the pgxpool default.
func WithMaxConns(n int32) Option { return func(o *options) { o.maxConns = n } }

// WithRetry pings up to attempts times, doubling delay between tries.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(o *options) { o.attempts, o.delay = attempts, delay }
}

// WithLogger reports retries on log.
func WithLogger(log *zap.Logger) Option { return func(o *options) { o.log = log } }

func apply(opts []Option) options {
	o := options{attempts: 1, delay: time.Second, log: zap.NewNop()}
	for _, fn := range opts {
		fn(&o)
	}
	if o.attempts < 1 {
		o.attempts = 1
	}
	return o
}

// NewPostgresPool creates a pgxpool connection pool and waits until it
// answers a ping.
func NewPostgresPool(ctx context.Context, databaseURL string, opts ...Option) (*pgxpool.Pool, error) {
	o := apply(opts)
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	cfg.MaxConnIdleTime = 5 * time.Minute
	if o.maxConns > 0 {
		cfg.MaxConns = o.maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.NewWithConfig: %w", err)
	}
	if err := retry(ctx, "postgres", o, pool.Ping); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// retry runs ping until it succeeds, ctx ends or the attempts run out.
func retry(ctx context.Context, what string, o options, ping func(context.Context) error) error {
	delay := o.delay
	var err error
	for attempt := 1; ; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt >= o.attempts {
			return fmt.Errorf("%s ping failed after %d attempt(s): %w", what, attempt, err)
		}
		o.log.Warn("database not ready, retrying",
			zap.String("db", what),
			zap.Int("attempt", attempt),
			zap.Duration("wait", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s ping: %w", what, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
}
