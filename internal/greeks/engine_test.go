package greeks

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func rate(v float64) *float64 { return &v }

func assertDecimals(t *testing.T, v float64, places int) {
	t.Helper()
	scaled := v * math.Pow10(places)
	assert.InDelta(t, math.Round(scaled), scaled, 1e-6, "%v has more than %d decimals", v, places)
}

func TestComputeInTheMoneyCall(t *testing.T) {
	res, err := Compute(Request{Spot: 25142, Strike: 25100, DaysToExpiry: 7, Volatility: 15, RiskFreeRate: rate(6.5)})
	require.NoError(t, err)

	assert.Greater(t, res.Delta, 0.5)
	assert.Less(t, res.Delta, 1.0)
	assert.Greater(t, res.Gamma, 0.0)
	assert.Greater(t, res.CallPrice, res.PutPrice)
	assert.Less(t, res.Theta, 0.0)
	assertDecimals(t, res.CallPrice, 2)
	assertDecimals(t, res.PutPrice, 2)
	assertDecimals(t, res.Theta, 2)
	assertDecimals(t, res.Vega, 2)
	assertDecimals(t, res.Delta, 4)
	assertDecimals(t, res.Gamma, 6)
}

func TestComputeAtTheMoneyDeltaDrift(t *testing.T) {
	res, err := Compute(Request{Spot: 25142, Strike: 25142, DaysToExpiry: 30, Volatility: 20})
	require.NoError(t, err)

	assert.Greater(t, res.Delta, 0.5)
	assert.Less(t, res.Delta, 0.6)
}

func TestComputeReferencePrices(t *testing.T) {
	// S=100 K=100 r=5% sigma=20% T=1y: call 10.4506, put 5.5735
	res, err := Price(100, 100, 365, 20, 5)
	require.NoError(t, err)

	assert.Equal(t, 10.45, res.CallPrice)
	assert.Equal(t, 5.57, res.PutPrice)
	assert.Equal(t, 0.6368, res.Delta)
	assert.Equal(t, 37.52, res.Vega)
}

func TestComputeDefaultsRiskFreeRate(t *testing.T) {
	withDefault, err := Compute(Request{Spot: 22000, Strike: 22100, DaysToExpiry: 12, Volatility: 13.2})
	require.NoError(t, err)
	explicit, err := Price(22000, 22100, 12, 13.2, DefaultRiskFreeRate)
	require.NoError(t, err)

	assert.Equal(t, explicit, withDefault)
}

func TestComputeInvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		req   Request
		param string
	}{
		{"negative days", Request{Spot: 25142, Strike: 25100, DaysToExpiry: -1, Volatility: 15}, "days_to_expiry"},
		{"zero days", Request{Spot: 25142, Strike: 25100, DaysToExpiry: 0, Volatility: 15}, "days_to_expiry"},
		{"zero volatility", Request{Spot: 25142, Strike: 25100, DaysToExpiry: 7, Volatility: 0}, "volatility"},
		{"negative volatility", Request{Spot: 25142, Strike: 25100, DaysToExpiry: 7, Volatility: -3}, "volatility"},
		{"zero spot", Request{Spot: 0, Strike: 25100, DaysToExpiry: 7, Volatility: 15}, "spot"},
		{"negative strike", Request{Spot: 25142, Strike: -5, DaysToExpiry: 7, Volatility: 15}, "strike"},
		{"nan spot", Request{Spot: math.NaN(), Strike: 25100, DaysToExpiry: 7, Volatility: 15}, "spot"},
		{"infinite volatility", Request{Spot: 25142, Strike: 25100, DaysToExpiry: 7, Volatility: math.Inf(1)}, "volatility"},
		{"infinite rate", Request{Spot: 25142, Strike: 25100, DaysToExpiry: 7, Volatility: 15, RiskFreeRate: rate(math.Inf(-1))}, "risk_free_rate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Compute(tc.req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidParameters))

			var ipe *InvalidParametersError
			require.True(t, errors.As(err, &ipe))
			assert.Equal(t, tc.param, ipe.Param)
			assert.Equal(t, Result{}, res)
		})
	}
}

func inputGrid() []Request {
	var out []Request
	for _, spot := range []float64{80, 100, 125, 25142} {
		for _, moneyness := range []float64{0.7, 0.95, 1, 1.05, 1.4} {
			for _, days := range []float64{1, 7, 30, 365} {
				for _, vol := range []float64{5, 18.5, 60} {
					for _, r := range []float64{0, 6.5, 10} {
						out = append(out, Request{
							Spot:         spot,
							Strike:       spot * moneyness,
							DaysToExpiry: days,
							Volatility:   vol,
							RiskFreeRate: rate(r),
						})
					}
				}
			}
		}
	}
	return out
}

func TestPutCallParity(t *testing.T) {
	for _, req := range inputGrid() {
		v, err := compute(req.Spot, req.Strike, req.DaysToExpiry, req.Volatility, req.Rate())
		require.NoError(t, err)

		tYears := req.DaysToExpiry / 365
		want := req.Spot - req.Strike*math.Exp(-req.Rate()/100*tYears)
		got := v.call - v.put
		tol := 1e-6 * math.Max(1, math.Max(req.Spot, req.Strike))
		assert.InDelta(t, want, got, tol, "parity for %+v", req)
	}
}

func TestSensitivityBounds(t *testing.T) {
	for _, req := range inputGrid() {
		res, err := Compute(req)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, res.Delta, 0.0)
		assert.LessOrEqual(t, res.Delta, 1.0)
		assert.GreaterOrEqual(t, res.Gamma, 0.0)
		assert.GreaterOrEqual(t, res.Vega, 0.0)
		assert.GreaterOrEqual(t, res.CallPrice, 0.0)
		assert.GreaterOrEqual(t, res.PutPrice, 0.0)
	}
}

func TestPremiumsIncreaseWithVolatility(t *testing.T) {
	prev, err := Price(25142, 25100, 7, 10, 6.5)
	require.NoError(t, err)
	for _, vol := range []float64{12, 15, 20, 30, 45} {
		next, err := Price(25142, 25100, 7, vol, 6.5)
		require.NoError(t, err)
		assert.Greater(t, next.CallPrice, prev.CallPrice, "call at vol %v", vol)
		assert.Greater(t, next.PutPrice, prev.PutPrice, "put at vol %v", vol)
		prev = next
	}
}

func TestAtTheMoneyZeroRateSymmetry(t *testing.T) {
	v, err := compute(25142, 25142, 30, 20, 0)
	require.NoError(t, err)
	assert.InDelta(t, v.call, v.put, 1e-6)

	res, err := Price(25142, 25142, 30, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, res.CallPrice, res.PutPrice)
	assert.False(t, math.IsNaN(v.d1) || math.IsInf(v.d1, 0))
}

func TestExtremeMoneynessSaturates(t *testing.T) {
	for _, tc := range []struct{ spot, strike float64 }{
		{1e300, 1e-300},
		{1e-300, 1e300},
		{25142, 1e-9},
	} {
		res, err := Price(tc.spot, tc.strike, 30, 20, 6.5)
		require.NoError(t, err)
		for _, v := range []float64{res.CallPrice, res.PutPrice, res.Delta, res.Gamma, res.Theta, res.Vega} {
			assert.False(t, math.IsNaN(v), "NaN for %+v", tc)
		}
		assert.Contains(t, []float64{0, 1}, res.Delta)
	}
}

func TestComputeRejectsOverflowingInputs(t *testing.T) {
	tests := []struct {
		name                    string
		days, vol, riskFreeRate float64
		param                   string
	}{
		{"discount overflow from rate", 365, 20, -100000, "risk_free_rate"},
		{"discount overflow from horizon", 3e5, 20, -100, "risk_free_rate"},
		{"variance overflow", 7, 1e308, 6.5, "volatility"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Price(100, 100, tc.days, tc.vol, tc.riskFreeRate)
			require.Error(t, err)
			var ipe *InvalidParametersError
			require.True(t, errors.As(err, &ipe))
			assert.Equal(t, tc.param, ipe.Param)
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestHugeVolatilityApproachesSpot(t *testing.T) {
	res, err := Price(100, 100, 7, 1e150, 6.5)
	require.NoError(t, err)
	assert.Equal(t, 100.0, res.CallPrice)
	assert.Equal(t, 1.0, res.Delta)
	for _, v := range []float64{res.CallPrice, res.PutPrice, res.Gamma, res.Theta, res.Vega} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}

func TestNormCDFApproximation(t *testing.T) {
	ref := distuv.UnitNormal
	for x := -8.0; x <= 8.0; x += 0.01 {
		assert.InDelta(t, ref.CDF(x), normCDF(x), 1.5e-7, "x=%v", x)
		assert.InDelta(t, ref.Prob(x), normPDF(x), 1e-12, "x=%v", x)
	}
	assert.Equal(t, 1.0, normCDF(math.Inf(1)))
	assert.Equal(t, 0.0, normCDF(math.Inf(-1)))
	assert.InDelta(t, 0.5, normCDF(0), 1e-9)
}

func TestComputeIsDeterministicAcrossGoroutines(t *testing.T) {
	want, err := Price(25142, 25100, 7, 15, 6.5)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]Result, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Price(25142, 25100, 7, 15, 6.5)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestRoundHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 1.01, round(1.005, 2))
	assert.Equal(t, -1.01, round(-1.005, 2))
	assert.Equal(t, 0.0, round(-0.001, 2))
	assert.Equal(t, 0.123457, round(0.1234565, 6))
}
