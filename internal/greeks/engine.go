// Package greeks prices European options with Black-Scholes (no dividends)
// and reports call/put premiums with first-order sensitivities.
//
// Inputs follow the quoting conventions of the index option chain: days to
// expiry in calendar days, volatility and risk-free rate in percent.
package greeks

import (
	"math"
)

// DefaultRiskFreeRate is applied when a Request carries no rate.
const DefaultRiskFreeRate = 6.5

const daysPerYear = 365.0

type Request struct {
	Spot         float64  `json:"spot"`
	Strike       float64  `json:"strike"`
	DaysToExpiry float64  `json:"days_to_expiry"`
	Volatility   float64  `json:"volatility"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
}

// Rate returns the risk-free rate in percent, falling back to DefaultRiskFreeRate.
func (r Request) Rate() float64 {
	if r.RiskFreeRate == nil {
		return DefaultRiskFreeRate
	}
	return *r.RiskFreeRate
}

// Result is rounded for presentation: delta to 4 places, gamma to 6, the rest to 2.
// Theta is per calendar day. Vega is per 1.0 of the percent volatility input.
type Result struct {
	CallPrice float64 `json:"call_price"`
	PutPrice  float64 `json:"put_price"`
	Delta     float64 `json:"delta"`
	Gamma     float64 `json:"gamma"`
	Theta     float64 `json:"theta"`
	Vega      float64 `json:"vega"`
}

// raw holds full-precision outputs before rounding.
type raw struct {
	call, put                 float64
	delta, gamma, theta, vega float64
	d1, d2                    float64
}

func (v raw) result() Result {
	return Result{
		CallPrice: round(v.call, 2),
		PutPrice:  round(v.put, 2),
		Delta:     round(v.delta, 4),
		Gamma:     round(v.gamma, 6),
		Theta:     round(v.theta, 2),
		Vega:      round(v.vega, 2),
	}
}

// Compute validates req and returns its prices and greeks.
// Any failure is an *InvalidParametersError.
func Compute(req Request) (Result, error) {
	v, err := compute(req.Spot, req.Strike, req.DaysToExpiry, req.Volatility, req.Rate())
	if err != nil {
		return Result{}, err
	}
	return v.result(), nil
}

// Price is Compute with positional arguments and an explicit rate.
func Price(spot, strike, daysToExpiry, volatility, riskFreeRate float64) (Result, error) {
	return Compute(Request{
		Spot:         spot,
		Strike:       strike,
		DaysToExpiry: daysToExpiry,
		Volatility:   volatility,
		RiskFreeRate: &riskFreeRate,
	})
}

func compute(spot, strike, days, vol, rate float64) (raw, error) {
	if err := validate(spot, strike, days, vol, rate); err != nil {
		return raw{}, err
	}

	t := days / daysPerYear
	r := rate / 100
	sigma := vol / 100
	sqrtT := math.Sqrt(t)
	sd := sigma * sqrtT
	if sd <= 0 {
		// underflow for vanishingly small sigma*sqrt(T)
		return raw{}, invalid("volatility", "too small for days_to_expiry")
	}

	variance := sigma * sigma / 2 * t
	if math.IsInf(variance, 0) || math.IsInf(sd, 0) {
		return raw{}, invalid("volatility", "out of range")
	}
	discount := strike * math.Exp(-r*t)
	if math.IsInf(r*t, 0) || math.IsInf(discount, 0) {
		return raw{}, invalid("risk_free_rate", "out of range")
	}

	d1 := (math.Log(spot/strike) + r*t + variance) / sd
	d2 := d1 - sd

	nd1 := normCDF(d1)
	nd2 := normCDF(d2)
	pdf := normPDF(d1)

	v := raw{d1: d1, d2: d2}
	v.call = spot*nd1 - discount*nd2
	v.put = discount*normCDF(-d2) - spot*normCDF(-d1)
	v.delta = nd1
	v.gamma = pdf / (spot * sd)
	thetaAnnual := -(spot*pdf*sigma)/(2*sqrtT) - r*discount*nd2
	v.theta = thetaAnnual / daysPerYear
	v.vega = spot * pdf * sqrtT

	for _, x := range []float64{v.call, v.put, v.delta, v.gamma, v.theta, v.vega} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return raw{}, invalid("volatility", "out of range for spot and days_to_expiry")
		}
	}

	// approximation noise can leave a deep OTM premium a hair below zero
	v.call = math.Max(v.call, 0)
	v.put = math.Max(v.put, 0)
	return v, nil
}

func validate(spot, strike, days, vol, rate float64) error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"spot", spot},
		{"strike", strike},
		{"days_to_expiry", days},
		{"volatility", vol},
		{"risk_free_rate", rate},
	} {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return invalid(p.name, "must be a finite number")
		}
	}
	switch {
	case days <= 0:
		return invalid("days_to_expiry", "must be greater than zero")
	case vol <= 0:
		return invalid("volatility", "must be greater than zero")
	case spot <= 0:
		return invalid("spot", "must be greater than zero")
	case strike <= 0:
		return invalid("strike", "must be greater than zero")
	}
	return nil
}
