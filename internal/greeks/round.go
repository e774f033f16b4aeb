package greeks

import (
	"math"

	"github.com/shopspring/decimal"
)

// round uses decimal so that values like 1.005 round half away from zero
// on their shortest decimal form rather than their binary expansion.
func round(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	if f == 0 {
		// drop negative zero
		return 0
	}
	return f
}
