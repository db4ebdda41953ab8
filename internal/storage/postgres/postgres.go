// Package postgres implements storage.Store on PostgreSQL using pgx
// directly (no ORM). The confirmation unit runs as a serializable
// transaction with a row lock on the registration, so concurrent callbacks
// for the same payment id serialize and duplicate deliveries observe the
// already-paid record.
package postgres

import (
	"context"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the PostgreSQL-backed document store.
type Store struct {
	pool *pgxpool.Pool
}

// New creates and validates a pgxpool connection pool. It retries up to
// 5 times to accommodate containers starting up. Decimal codecs are
// registered per connection so numeric columns scan into decimal.Decimal.
func New(ctx context.Context, dsn string) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}

	// Sensible pool defaults for a small service.
	poolCfg.MaxConns = 20
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	var pool *pgxpool.Pool
	for attempt := 1; attempt <= 5; attempt++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			pingErr := pool.Ping(ctx)
			if pingErr == nil {
				break
			}
			pool.Close()
			err = fmt.Errorf("ping: %w", pingErr)
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Migrate creates the schema when it does not exist yet. Safe to run on
// every startup.
func (s *Store) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS camp_weeks (
	id           text PRIMARY KEY,
	label        text NOT NULL,
	start_date   timestamptz NOT NULL,
	end_date     timestamptz NOT NULL,
	weekly_slots int NOT NULL,
	weekly_used  int NOT NULL DEFAULT 0,
	daily_slots  int NOT NULL,
	daily_used   int NOT NULL DEFAULT 0,
	CONSTRAINT camp_weeks_weekly_bounds CHECK (weekly_used >= 0 AND weekly_used <= weekly_slots),
	CONSTRAINT camp_weeks_daily_bounds CHECK (daily_used >= 0 AND daily_used <= daily_slots)
);

CREATE TABLE IF NOT EXISTS promo_codes (
	id          uuid PRIMARY KEY,
	code        text NOT NULL UNIQUE,
	type        text NOT NULL,
	value       numeric NOT NULL,
	description text NOT NULL DEFAULT '',
	active      boolean NOT NULL DEFAULT true,
	used_count  int NOT NULL DEFAULT 0,
	max_uses    int,
	created_at  timestamptz NOT NULL,
	CONSTRAINT promo_codes_usage_bounds CHECK (max_uses IS NULL OR used_count <= max_uses)
);

CREATE TABLE IF NOT EXISTS registrations (
	id              text PRIMARY KEY,
	season          text NOT NULL DEFAULT '',
	parent          jsonb NOT NULL,
	emergency       jsonb NOT NULL,
	children        jsonb NOT NULL,
	waiver_accepted boolean NOT NULL,
	promo_code      text NOT NULL DEFAULT '',
	subtotal        numeric NOT NULL,
	discount        numeric NOT NULL,
	total           numeric NOT NULL,
	status          text NOT NULL,
	payment_id      text NOT NULL UNIQUE,
	created_at      timestamptz NOT NULL,
	paid_at         timestamptz
);

CREATE INDEX IF NOT EXISTS idx_registrations_created_at ON registrations (created_at DESC);
`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
