package greeks

import (
	"math"
	"strings"
)

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType accepts call/put and the exchange shorthands CE/PE.
func ParseOptionType(s string) (OptionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c", "ce":
		return Call, true
	case "put", "p", "pe":
		return Put, true
	}
	return "", false
}

type IVRequest struct {
	Type         OptionType `json:"type"`
	Premium      float64    `json:"premium"`
	Spot         float64    `json:"spot"`
	Strike       float64    `json:"strike"`
	DaysToExpiry float64    `json:"days_to_expiry"`
	RiskFreeRate *float64   `json:"risk_free_rate,omitempty"`
}

func (r IVRequest) Rate() float64 {
	if r.RiskFreeRate == nil {
		return DefaultRiskFreeRate
	}
	return *r.RiskFreeRate
}

const (
	ivMinVol  = 0.01 // percent
	ivMaxVol  = 500.0
	ivGuess   = 20.0
	ivTol     = 1e-6
	ivMaxIter = 100
)

// ImpliedVolatility returns the percent volatility whose theoretical premium
// matches req.Premium, rounded to 2 places.
func ImpliedVolatility(req IVRequest) (float64, error) {
	rate := req.Rate()
	if req.Type != Call && req.Type != Put {
		return 0, invalid("type", "must be call or put")
	}
	if math.IsNaN(req.Premium) || math.IsInf(req.Premium, 0) || req.Premium <= 0 {
		return 0, invalid("premium", "must be a finite number greater than zero")
	}
	if err := validate(req.Spot, req.Strike, req.DaysToExpiry, ivGuess, rate); err != nil {
		return 0, err
	}

	t := req.DaysToExpiry / daysPerYear
	discounted := req.Strike * math.Exp(-rate/100*t)
	lower, upper := math.Max(0, req.Spot-discounted), req.Spot
	if req.Type == Put {
		lower, upper = math.Max(0, discounted-req.Spot), discounted
	}
	if req.Premium <= lower || req.Premium >= upper {
		return 0, invalid("premium", "outside no-arbitrage bounds")
	}

	premium := func(vol float64) (float64, float64, error) {
		v, err := compute(req.Spot, req.Strike, req.DaysToExpiry, vol, rate)
		if err != nil {
			return 0, 0, err
		}
		if req.Type == Call {
			return v.call, v.vega, nil
		}
		return v.put, v.vega, nil
	}

	vol := ivGuess
	for i := 0; i < ivMaxIter; i++ {
		p, vega, err := premium(vol)
		if err != nil {
			break
		}
		diff := p - req.Premium
		if math.Abs(diff) < ivTol {
			return round(vol, 2), nil
		}
		// vega is per unit of decimal sigma
		if vega < 1e-8 {
			break
		}
		next := vol - diff/vega*100
		if next <= ivMinVol || next >= ivMaxVol || math.IsNaN(next) {
			break
		}
		vol = next
	}
	return bisect(premium, req.Premium)
}

func bisect(premium func(float64) (float64, float64, error), target float64) (float64, error) {
	lo, hi := ivMinVol, ivMaxVol
	for i := 0; i < 200; i++ {
		mid := (lo + hi) / 2
		p, _, err := premium(mid)
		if err != nil {
			return 0, ErrNoConvergence
		}
		diff := p - target
		if math.Abs(diff) < ivTol {
			return round(mid, 2), nil
		}
		if hi-lo < 1e-9 {
			if math.Abs(diff) > 1e-4 {
				return 0, ErrNoConvergence
			}
			return round(mid, 2), nil
		}
		if diff > 0 {
			hi = mid
		} else {
			lo = mid
		}
	}
	return 0, ErrNoConvergence
}
