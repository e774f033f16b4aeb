package chain

import (
	"time"

	"optiondesk/internal/greeks"
	"optiondesk/internal/maxpain"
)

type Row struct {
	Strike float64 `json:"strike" csv:"strike"`
	CallOI float64 `json:"call_oi" csv:"call_oi"`
	PutOI  float64 `json:"put_oi" csv:"put_oi"`
	CallIV float64 `json:"call_iv" csv:"call_iv"`
	PutIV  float64 `json:"put_iv" csv:"put_iv"`
}

type Chain struct {
	Symbol       string   `json:"symbol"`
	Spot         float64  `json:"spot"`
	DaysToExpiry float64  `json:"days_to_expiry"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty"`
	Rows         []Row    `json:"rows"`
}

// Leg is one side of a strike. Error is set instead of Greeks when the inputs are invalid.
type Leg struct {
	IV     float64        `json:"iv"`
	Greeks *greeks.Result `json:"greeks,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type PricedRow struct {
	Strike float64 `json:"strike"`
	CallOI float64 `json:"call_oi"`
	PutOI  float64 `json:"put_oi"`
	Call   Leg     `json:"call"`
	Put    Leg     `json:"put"`
}

// Priced carries SnapshotError when ?save=true was requested and the snapshot failed.
type Priced struct {
	Symbol        string          `json:"symbol"`
	Spot          float64         `json:"spot"`
	DaysToExpiry  float64         `json:"days_to_expiry"`
	RiskFreeRate  float64         `json:"risk_free_rate"`
	Rows          []PricedRow     `json:"rows"`
	MaxPain       *maxpain.Result `json:"max_pain,omitempty"`
	MaxPainError  string          `json:"max_pain_error,omitempty"`
	SnapshotError string          `json:"snapshot_error,omitempty"`
}

type Snapshot struct {
	ID            int64     `json:"id"`
	Symbol        string    `json:"symbol"`
	Spot          float64   `json:"spot"`
	DaysToExpiry  float64   `json:"days_to_expiry"`
	MaxPainStrike float64   `json:"max_pain_strike"`
	PCR           float64   `json:"pcr"`
	TotalCallOI   float64   `json:"total_call_oi"`
	TotalPutOI    float64   `json:"total_put_oi"`
	TakenAt       time.Time `json:"taken_at"`
}

func (c Chain) openInterest() []maxpain.StrikeOI {
	out := make([]maxpain.StrikeOI, 0, len(c.Rows))
	for _, r := range c.Rows {
		out = append(out, maxpain.StrikeOI{Strike: r.Strike, CallOI: r.CallOI, PutOI: r.PutOI})
	}
	return out
}
