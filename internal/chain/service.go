// Package chain prices a whole option chain and derives its max-pain level.
package chain

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"strings"
	"time"

	"optiondesk/internal/greeks"
	"optiondesk/internal/maxpain"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyChain    = errors.New("chain has no rows")
	ErrSymbolMissing = errors.New("symbol is required")
	ErrNoSnapshot    = errors.New("no snapshot for symbol")
)

type Service struct {
	store       SnapshotStore
	defaultRate float64
	workers     int
	now         func() time.Time
}

func NewService(store SnapshotStore, defaultRate float64) *Service {
	return &Service{
		store:       store,
		defaultRate: defaultRate,
		workers:     runtime.GOMAXPROCS(0),
		now:         time.Now,
	}
}

// Price evaluates every row independently. Invalid rows carry their error;
// they never fail the chain.
func (s *Service) Price(ctx context.Context, c Chain) (Priced, error) {
	if len(c.Rows) == 0 {
		return Priced{}, ErrEmptyChain
	}
	rate := s.defaultRate
	if c.RiskFreeRate != nil {
		rate = *c.RiskFreeRate
	}
	out := Priced{
		Symbol:       strings.ToUpper(strings.TrimSpace(c.Symbol)),
		Spot:         c.Spot,
		DaysToExpiry: c.DaysToExpiry,
		RiskFreeRate: rate,
		Rows:         make([]PricedRow, len(c.Rows)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range c.Rows {
		i, row := i, row
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out.Rows[i] = PricedRow{
				Strike: row.Strike,
				CallOI: row.CallOI,
				PutOI:  row.PutOI,
				Call:   priceLeg(c.Spot, row.Strike, c.DaysToExpiry, row.CallIV, rate),
				Put:    priceLeg(c.Spot, row.Strike, c.DaysToExpiry, row.PutIV, rate),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Priced{}, err
	}
	sort.SliceStable(out.Rows, func(i, j int) bool { return out.Rows[i].Strike < out.Rows[j].Strike })

	mp, err := maxpain.Compute(c.openInterest())
	if err != nil {
		out.MaxPainError = err.Error()
	} else {
		out.MaxPain = &mp
	}
	return out, nil
}

func priceLeg(spot, strike, days, iv, rate float64) Leg {
	leg := Leg{IV: iv}
	res, err := greeks.Price(spot, strike, days, iv, rate)
	if err != nil {
		leg.Error = err.Error()
		return leg
	}
	leg.Greeks = &res
	return leg
}

func (s *Service) MaxPain(c Chain) (maxpain.Result, error) {
	return maxpain.Compute(c.openInterest())
}

// Snapshot records the chain's max-pain level and open-interest totals.
func (s *Service) Snapshot(ctx context.Context, c Chain) (Snapshot, error) {
	sym := strings.ToUpper(strings.TrimSpace(c.Symbol))
	if sym == "" {
		return Snapshot{}, ErrSymbolMissing
	}
	mp, err := maxpain.Compute(c.openInterest())
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Symbol:        sym,
		Spot:          c.Spot,
		DaysToExpiry:  c.DaysToExpiry,
		MaxPainStrike: mp.Strike,
		PCR:           mp.PCR,
		TotalCallOI:   mp.TotalCallOI,
		TotalPutOI:    mp.TotalPutOI,
		TakenAt:       s.now().UTC(),
	}
	saved, err := s.store.Save(ctx, snap)
	if err != nil {
		return Snapshot{}, err
	}
	log.WithFields(log.Fields{"symbol": sym, "max_pain": mp.Strike, "pcr": mp.PCR}).Debug("chain snapshot saved")
	return saved, nil
}

func (s *Service) LatestSnapshot(ctx context.Context, symbol string) (Snapshot, error) {
	return s.store.Latest(ctx, strings.ToUpper(strings.TrimSpace(symbol)))
}
