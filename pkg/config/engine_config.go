package config

// Engine configuration constants
const (
	// Variant-specific bet-size policy
	DefaultZeroDTEMinBetFraction = 0.20 // 20% of account per trade minimum
	DefaultZeroDTEMaxBetFraction = 0.40 // 40% of account per trade maximum
	DefaultWeeklyMinBetFraction  = 0.33 // 33% of account per trade minimum
	DefaultWeeklyMaxBetFraction  = 0.66 // 66% of account per trade maximum

	// Account-level loss limits
	DefaultDailyLossFraction     = 0.10 // 10% of account stops new entries for the day
	DefaultEmergencyHaltFraction = 0.20 // 20% of account halts the engine until reset

	// Exposure limits
	DefaultMaxPerInstrumentPct     = 0.40 // 40% of portfolio value per instrument
	DefaultMaxPortfolioExposurePct = 0.80 // 80% of portfolio value across all instruments

	// Combined adjustment factor bounds
	MinSizeMultiplier = 1.0
	MaxSizeMultiplier = 2.0

	// Conservative fallbacks when input data is missing
	DefaultVolatilityFallbackFactor  = 0.8
	DefaultCorrelationFallbackFactor = 0.8

	// Zero-DTE tier compression
	ZeroDTEMiddayCompression  = 0.85
	ZeroDTELateDayCompression = 0.70
	ZeroDTEAgedCompression    = 0.90 // applied once a position is older than AgedPositionCutoff
)

// Variant selects which trading profile the engine runs.
type Variant string

const (
	VariantZeroDTE Variant = "zero_dte" // same-day ETF options
	VariantWeekly  Variant = "weekly"   // multi-day single-stock options
)

// EngineConfig holds the user-supplied engine configuration. Zero values fall
// back to the variant defaults when the profile is built.
type EngineConfig struct {
	AccountSize             float64        `json:"account_size"`
	Variant                 Variant        `json:"variant"`
	MinBetFraction          float64        `json:"min_bet_fraction,omitempty"`
	MaxBetFraction          float64        `json:"max_bet_fraction,omitempty"`
	MaxPerInstrumentPct     float64        `json:"max_per_instrument_pct,omitempty"`
	MaxPortfolioExposurePct float64        `json:"max_portfolio_exposure_pct,omitempty"`
	DailyLossFraction       float64        `json:"daily_loss_fraction,omitempty"`
	EmergencyHaltFraction   float64        `json:"emergency_halt_fraction,omitempty"`
	ExitTiers               []ExitTierSpec `json:"exit_tiers,omitempty"`
}

// ExitTierSpec is the JSON shape of one take-profit tier.
type ExitTierSpec struct {
	ProfitThreshold float64 `json:"profit_threshold"`
	CloseFraction   float64 `json:"close_fraction"`
}

// NewDefaultEngineConfig returns a zero-DTE configuration with all defaults.
func NewDefaultEngineConfig(accountSize float64) *EngineConfig {
	return &EngineConfig{
		AccountSize:             accountSize,
		Variant:                 VariantZeroDTE,
		MinBetFraction:          DefaultZeroDTEMinBetFraction,
		MaxBetFraction:          DefaultZeroDTEMaxBetFraction,
		MaxPerInstrumentPct:     DefaultMaxPerInstrumentPct,
		MaxPortfolioExposurePct: DefaultMaxPortfolioExposurePct,
		DailyLossFraction:       DefaultDailyLossFraction,
		EmergencyHaltFraction:   DefaultEmergencyHaltFraction,
	}
}
