// Package quotes computes an index quote's move against its previous close.
// The previous close is always an explicit input; the stores here only hold
// closes an operator has pushed in.
package quotes

import (
	"math"

	"github.com/shopspring/decimal"
)

type Move struct {
	Symbol    string  `json:"symbol,omitempty"`
	Last      float64 `json:"last"`
	PrevClose float64 `json:"prev_close"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
}

// Change returns the absolute and percent move, both rounded to 2 places.
// The percent is 0 when prevClose is not positive.
func Change(last, prevClose float64) Move {
	m := Move{Last: last, PrevClose: prevClose}
	if !finite(last) || !finite(prevClose) {
		return m
	}
	l := decimal.NewFromFloat(last)
	p := decimal.NewFromFloat(prevClose)
	diff := l.Sub(p)
	m.Change, _ = diff.Round(2).Float64()
	if prevClose > 0 {
		m.ChangePct, _ = diff.Div(p).Mul(decimal.NewFromInt(100)).Round(2).Float64()
	}
	return m
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
