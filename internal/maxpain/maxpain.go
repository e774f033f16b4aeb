// Package maxpain estimates the expiry price at which option writers pay out
// the least, from per-strike open interest.
package maxpain

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrEmptyChain = errors.New("option chain has no strikes")
	ErrInvalidRow = errors.New("invalid open interest row")
)

type StrikeOI struct {
	Strike float64 `json:"strike" csv:"strike"`
	CallOI float64 `json:"call_oi" csv:"call_oi"`
	PutOI  float64 `json:"put_oi" csv:"put_oi"`
}

// StrikePain is the total writer payout if the underlying settles at Strike.
type StrikePain struct {
	Strike    float64 `json:"strike"`
	CallPain  float64 `json:"call_pain"`
	PutPain   float64 `json:"put_pain"`
	TotalPain float64 `json:"total_pain"`
}

type Result struct {
	Strike      float64      `json:"max_pain_strike"`
	TotalCallOI float64      `json:"total_call_oi"`
	TotalPutOI  float64      `json:"total_put_oi"`
	PCR         float64      `json:"pcr"`
	Pains       []StrikePain `json:"pains"`
}

// Compute evaluates every listed strike as a settlement price. Ties go to the lower strike.
func Compute(rows []StrikeOI) (Result, error) {
	if len(rows) == 0 {
		return Result{}, ErrEmptyChain
	}
	sorted := make([]StrikeOI, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Strike < sorted[j].Strike })

	var res Result
	for i, row := range sorted {
		if err := checkRow(row); err != nil {
			return Result{}, err
		}
		if i > 0 && sorted[i-1].Strike == row.Strike {
			return Result{}, fmt.Errorf("%w: duplicate strike %v", ErrInvalidRow, row.Strike)
		}
		res.TotalCallOI += row.CallOI
		res.TotalPutOI += row.PutOI
	}

	res.Pains = make([]StrikePain, 0, len(sorted))
	best := -1
	for _, settle := range sorted {
		p := StrikePain{Strike: settle.Strike}
		for _, row := range sorted {
			if settle.Strike > row.Strike {
				p.CallPain += row.CallOI * (settle.Strike - row.Strike)
			}
			if settle.Strike < row.Strike {
				p.PutPain += row.PutOI * (row.Strike - settle.Strike)
			}
		}
		p.TotalPain = p.CallPain + p.PutPain
		res.Pains = append(res.Pains, p)
		if best < 0 || p.TotalPain < res.Pains[best].TotalPain {
			best = len(res.Pains) - 1
		}
	}
	res.Strike = res.Pains[best].Strike
	if res.TotalCallOI > 0 {
		res.PCR = math.Round(res.TotalPutOI/res.TotalCallOI*100) / 100
	}
	return res, nil
}

func checkRow(row StrikeOI) error {
	for _, v := range []float64{row.Strike, row.CallOI, row.PutOI} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite value at strike %v", ErrInvalidRow, row.Strike)
		}
	}
	if row.Strike <= 0 {
		return fmt.Errorf("%w: strike must be greater than zero", ErrInvalidRow)
	}
	if row.CallOI < 0 || row.PutOI < 0 {
		return fmt.Errorf("%w: negative open interest at strike %v", ErrInvalidRow, row.Strike)
	}
	return nil
}
