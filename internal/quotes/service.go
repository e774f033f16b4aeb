package quotes

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidQuote   = errors.New("last price must be greater than zero")
	ErrInvalidClose   = errors.New("close must be greater than zero")
	ErrSymbolRequired = errors.New("symbol is required")
)

type Service struct {
	store CloseStore
	now   func() time.Time
}

func NewService(store CloseStore) *Service {
	return &Service{store: store, now: time.Now}
}

// Move uses prevClose when given, else the stored close before today.
func (s *Service) Move(ctx context.Context, symbol string, last float64, prevClose *float64) (Move, error) {
	if !finite(last) || last <= 0 {
		return Move{}, ErrInvalidQuote
	}
	var prev float64
	if prevClose != nil {
		prev = *prevClose
	} else {
		c, err := s.store.PreviousClose(ctx, symbol, s.now().UTC())
		if err != nil {
			return Move{}, err
		}
		prev = c.Close
	}
	m := Change(last, prev)
	m.Symbol = normalizeSymbol(symbol)
	return m, nil
}

func (s *Service) RecordClose(ctx context.Context, c Close) error {
	if !finite(c.Close) || c.Close <= 0 {
		return ErrInvalidClose
	}
	if normalizeSymbol(c.Symbol) == "" {
		return ErrSymbolRequired
	}
	if c.TradeDate.IsZero() {
		c.TradeDate = s.now().UTC()
	}
	return s.store.SaveClose(ctx, c)
}
