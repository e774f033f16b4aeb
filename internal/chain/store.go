package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) (Snapshot, error)
	Latest(ctx context.Context, symbol string) (Snapshot, error)
}

type PgSnapshotStore struct {
	pool *pgxpool.Pool
}

func NewPgSnapshotStore(pool *pgxpool.Pool) *PgSnapshotStore {
	return &PgSnapshotStore{pool: pool}
}

func (s *PgSnapshotStore) Save(ctx context.Context, snap Snapshot) (Snapshot, error) {
	err := s.pool.QueryRow(ctx, `
		insert into chain_snapshots
			(symbol, spot, days_to_expiry, max_pain_strike, pcr, total_call_oi, total_put_oi, taken_at)
		values ($1, $2, $3, $4, $5, $6, $7, $8)
		returning id
	`, snap.Symbol, snap.Spot, snap.DaysToExpiry, snap.MaxPainStrike, snap.PCR,
		snap.TotalCallOI, snap.TotalPutOI, snap.TakenAt).Scan(&snap.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

func (s *PgSnapshotStore) Latest(ctx context.Context, symbol string) (Snapshot, error) {
	var snap Snapshot
	err := s.pool.QueryRow(ctx, `
		select id, symbol, spot, days_to_expiry, max_pain_strike, pcr, total_call_oi, total_put_oi, taken_at
		from chain_snapshots
		where symbol = $1
		order by taken_at desc, id desc
		limit 1
	`, symbol).Scan(&snap.ID, &snap.Symbol, &snap.Spot, &snap.DaysToExpiry, &snap.MaxPainStrike,
		&snap.PCR, &snap.TotalCallOI, &snap.TotalPutOI, &snap.TakenAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}

type MemorySnapshotStore struct {
	mu     sync.Mutex
	nextID int64
	latest map[string]Snapshot
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{latest: map[string]Snapshot{}}
}

func (s *MemorySnapshotStore) Save(_ context.Context, snap Snapshot) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	snap.ID = s.nextID
	if prev, ok := s.latest[snap.Symbol]; !ok || !snap.TakenAt.Before(prev.TakenAt) {
		s.latest[snap.Symbol] = snap
	}
	return snap, nil
}

func (s *MemorySnapshotStore) Latest(_ context.Context, symbol string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.latest[symbol]
	if !ok {
		return Snapshot{}, ErrNoSnapshot
	}
	return snap, nil
}
