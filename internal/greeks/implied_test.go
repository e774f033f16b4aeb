package greeks

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedVolatilityRecoversInput(t *testing.T) {
	tests := []struct {
		name   string
		typ    OptionType
		spot   float64
		strike float64
		days   float64
		vol    float64
	}{
		{"atm call", Call, 25142, 25142, 30, 18.5},
		{"otm call", Call, 25142, 25600, 7, 14},
		{"itm put", Put, 25142, 25600, 21, 16.25},
		{"otm put short dated", Put, 51000, 50000, 2, 22},
		{"high vol call", Call, 100, 90, 90, 85},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v, err := compute(tc.spot, tc.strike, tc.days, tc.vol, DefaultRiskFreeRate)
			require.NoError(t, err)
			premium := v.call
			if tc.typ == Put {
				premium = v.put
			}

			iv, err := ImpliedVolatility(IVRequest{
				Type:         tc.typ,
				Premium:      premium,
				Spot:         tc.spot,
				Strike:       tc.strike,
				DaysToExpiry: tc.days,
			})
			require.NoError(t, err)
			assert.InDelta(t, tc.vol, iv, 0.011)
		})
	}
}

func TestImpliedVolatilityFallsBackToBisection(t *testing.T) {
	// at the 20% starting guess this strike is so far out that vega is ~1e-30
	v, err := compute(100, 200, 30, 250, DefaultRiskFreeRate)
	require.NoError(t, err)
	start, err := compute(100, 200, 30, ivGuess, DefaultRiskFreeRate)
	require.NoError(t, err)
	require.Less(t, start.vega, 1e-8)

	iv, err := ImpliedVolatility(IVRequest{Type: Call, Premium: v.call, Spot: 100, Strike: 200, DaysToExpiry: 30})
	require.NoError(t, err)
	assert.InDelta(t, 250, iv, 0.011)
}

func TestImpliedVolatilityNoConvergence(t *testing.T) {
	// inside the no-arbitrage bounds but above the premium at the 500% ceiling
	ceiling, err := compute(100, 100, 1, ivMaxVol, DefaultRiskFreeRate)
	require.NoError(t, err)
	require.Less(t, ceiling.call, 99.0)

	_, err = ImpliedVolatility(IVRequest{Type: Call, Premium: 99, Spot: 100, Strike: 100, DaysToExpiry: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoConvergence))
	assert.False(t, errors.Is(err, ErrInvalidParameters))
}

func TestImpliedVolatilityRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		req   IVRequest
		param string
	}{
		{"unknown type", IVRequest{Type: "straddle", Premium: 10, Spot: 100, Strike: 100, DaysToExpiry: 30}, "type"},
		{"zero premium", IVRequest{Type: Call, Premium: 0, Spot: 100, Strike: 100, DaysToExpiry: 30}, "premium"},
		{"call above spot", IVRequest{Type: Call, Premium: 101, Spot: 100, Strike: 100, DaysToExpiry: 30}, "premium"},
		{"put below intrinsic", IVRequest{Type: Put, Premium: 1, Spot: 80, Strike: 100, DaysToExpiry: 30}, "premium"},
		{"expired", IVRequest{Type: Put, Premium: 1, Spot: 80, Strike: 100, DaysToExpiry: 0}, "days_to_expiry"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ImpliedVolatility(tc.req)
			require.Error(t, err)
			var ipe *InvalidParametersError
			require.True(t, errors.As(err, &ipe))
			assert.Equal(t, tc.param, ipe.Param)
		})
	}
}

func TestParseOptionType(t *testing.T) {
	for in, want := range map[string]OptionType{"CE": Call, "call": Call, " p ": Put, "PE": Put} {
		got, ok := ParseOptionType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseOptionType("future")
	assert.False(t, ok)
}
