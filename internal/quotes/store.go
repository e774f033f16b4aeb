package quotes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoPreviousClose = errors.New("no previous close for symbol")

type Close struct {
	Symbol    string    `json:"symbol"`
	TradeDate time.Time `json:"trade_date"`
	Close     float64   `json:"close"`
}

// CloseStore keeps daily closes pushed in by an operator.
type CloseStore interface {
	SaveClose(ctx context.Context, c Close) error
	// PreviousClose returns the latest close dated strictly before day.
	PreviousClose(ctx context.Context, symbol string, day time.Time) (Close, error)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type PgCloseStore struct {
	pool *pgxpool.Pool
}

func NewPgCloseStore(pool *pgxpool.Pool) *PgCloseStore {
	return &PgCloseStore{pool: pool}
}

func (s *PgCloseStore) SaveClose(ctx context.Context, c Close) error {
	_, err := s.pool.Exec(ctx, `
		insert into previous_closes (symbol, trade_date, close, updated_at)
		values ($1, $2, $3, now())
		on conflict (symbol, trade_date) do update set close = excluded.close, updated_at = now()
	`, normalizeSymbol(c.Symbol), dateOnly(c.TradeDate), c.Close)
	if err != nil {
		return fmt.Errorf("save close: %w", err)
	}
	return nil
}

func (s *PgCloseStore) PreviousClose(ctx context.Context, symbol string, day time.Time) (Close, error) {
	c := Close{Symbol: normalizeSymbol(symbol)}
	err := s.pool.QueryRow(ctx, `
		select trade_date, close from previous_closes
		where symbol = $1 and trade_date < $2
		order by trade_date desc
		limit 1
	`, c.Symbol, dateOnly(day)).Scan(&c.TradeDate, &c.Close)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Close{}, ErrNoPreviousClose
		}
		return Close{}, fmt.Errorf("previous close: %w", err)
	}
	return c, nil
}

type MemoryCloseStore struct {
	mu   sync.RWMutex
	data map[string]map[time.Time]float64
}

func NewMemoryCloseStore() *MemoryCloseStore {
	return &MemoryCloseStore{data: map[string]map[time.Time]float64{}}
}

func (s *MemoryCloseStore) SaveClose(_ context.Context, c Close) error {
	sym := normalizeSymbol(c.Symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay, ok := s.data[sym]
	if !ok {
		byDay = map[time.Time]float64{}
		s.data[sym] = byDay
	}
	byDay[dateOnly(c.TradeDate)] = c.Close
	return nil
}

func (s *MemoryCloseStore) PreviousClose(_ context.Context, symbol string, day time.Time) (Close, error) {
	sym := normalizeSymbol(symbol)
	cutoff := dateOnly(day)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var best Close
	for d, v := range s.data[sym] {
		if d.Before(cutoff) && d.After(best.TradeDate) {
			best = Close{Symbol: sym, TradeDate: d, Close: v}
		}
	}
	if best.TradeDate.IsZero() {
		return Close{}, ErrNoPreviousClose
	}
	return best, nil
}
