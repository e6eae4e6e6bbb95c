package types

// AdjustmentBreakdown records every factor that went into a sizing decision so
// callers can audit why a position ended up at a given size.
type AdjustmentBreakdown struct {
	ConfidenceFactor  float64 `json:"confidence_factor"`
	VolatilityFactor  float64 `json:"volatility_factor"`
	CorrelationFactor float64 `json:"correlation_factor"`
	FundamentalFactor float64 `json:"fundamental_factor"`
	CombinedFactor    float64 `json:"combined_factor"` // product of the above, before clamping
	ClampedFactor     float64 `json:"clamped_factor"`
}

// SizingResult is the outcome of a sizing request. A no-trade outcome is a
// normal result with Contracts == 0 and a Reason, never an error.
type SizingResult struct {
	InstrumentID    string              `json:"instrument_id"`
	Contracts       int                 `json:"contracts"`
	PositionValue   float64             `json:"position_value"`
	MinPositionSize float64             `json:"min_position_size"`
	Breakdown       AdjustmentBreakdown `json:"breakdown"`
	NoTrade         bool                `json:"no_trade"`
	Reason          string              `json:"reason,omitempty"`
	Substitutions   []string            `json:"substitutions,omitempty"` // conservative defaults applied for missing data
}

// ExitActionType enumerates what the exit engine wants done with a position.
type ExitActionType string

const (
	ExitHold         ExitActionType = "HOLD"
	ExitPartialClose ExitActionType = "PARTIAL_CLOSE"
	ExitClose        ExitActionType = "CLOSE"
)

// ExitAction is one decision from the exit engine for a single price update.
type ExitAction struct {
	Type          ExitActionType `json:"type"`
	CloseFraction float64        `json:"close_fraction,omitempty"` // fraction of the original size
	Contracts     int            `json:"contracts,omitempty"`
	ProfitPct     float64        `json:"profit_pct"`
	TierIndex     int            `json:"tier_index"` // -1 when no tier triggered
	StopPrice     float64        `json:"stop_price,omitempty"`
	TargetPrice   float64        `json:"target_price,omitempty"`
	Reason        string         `json:"reason,omitempty"`
}

// Fill is a broker fill confirmation used to keep exposure tracking in sync.
type Fill struct {
	InstrumentID string
	Amount       float64 // dollars
	RealizedPnL  float64 // non-zero on closing fills
}
