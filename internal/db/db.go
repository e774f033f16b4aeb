package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse db dsn: %w", err)
	}
	cfg.MaxConns = 8
	cfg.MaxConnIdleTime = 5 * time.Minute
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

var schema = []string{
	`create table if not exists previous_closes (
		symbol text not null,
		trade_date date not null,
		close double precision not null,
		updated_at timestamptz not null default now(),
		primary key (symbol, trade_date)
	)`,
	`create table if not exists chain_snapshots (
		id bigserial primary key,
		symbol text not null,
		spot double precision not null,
		days_to_expiry double precision not null,
		max_pain_strike double precision not null,
		pcr double precision not null,
		total_call_oi double precision not null,
		total_put_oi double precision not null,
		taken_at timestamptz not null default now()
	)`,
	`create index if not exists chain_snapshots_symbol_taken_idx on chain_snapshots (symbol, taken_at desc)`,
}

// Migrate creates the tables used by the close and snapshot stores.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
