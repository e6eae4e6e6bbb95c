package types

import "time"

// SignalContext carries everything the engine needs to know about a trade signal.
// It is produced by an external signal generator and is immutable per sizing call.
type SignalContext struct {
	InstrumentID  string
	Symbol        string
	Confidence    float64 // 0.0 - 1.0
	StrategyType  string
	Side          PositionSide
	OptionPremium float64 // per-share premium; one contract costs OptionPremium * ContractMultiplier
	GeneratedAt   time.Time
}

// MarketContext is the volatility/regime snapshot supplied by the market-data service.
type MarketContext struct {
	VolatilityIndex   float64 // VIX-style implied volatility gauge
	UnusualRegime     bool
	FundamentalFactor *float64 // weekly variant only, nil when not provided
}

// CorrelationView summarizes how correlated a candidate instrument is with
// current holdings. Available is false when the correlation service has no data.
type CorrelationView struct {
	AverageAbsCorrelation float64 // 0.0 - 1.0
	Available             bool
}

// Account is an immutable snapshot of the trading account, refreshed by the
// caller each cycle.
type Account struct {
	Size             float64
	AvailableCapital float64
}

// PortfolioSnapshot is the caller-provided view of current portfolio state.
type PortfolioSnapshot struct {
	Account       Account
	TotalValue    float64
	Allocations   map[string]float64 // instrument ID -> currently allocated dollars
	OpenPositions []Position
}
