package config

import (
	"fmt"

	engerrors "github.com/ducminhle1904/options-risk-engine/internal/errors"
)

// RiskLimits is the hard bet-size and loss policy derived from account size.
// Pure data; every field is in dollars except the percentage limits.
type RiskLimits struct {
	AccountSize             float64 `json:"account_size"`
	MinPositionSize         float64 `json:"min_position_size"`
	MaxPositionSize         float64 `json:"max_position_size"`
	MaxDailyLoss            float64 `json:"max_daily_loss"`
	EmergencyHaltLoss       float64 `json:"emergency_halt_loss"`
	MaxPerInstrumentPct     float64 `json:"max_per_instrument_pct"`
	MaxPortfolioExposurePct float64 `json:"max_portfolio_exposure_pct"`
}

// NewRiskLimits derives the limit set for an account under the given profile.
// Returns a configuration error unless 0 < min <= max <= account size.
func NewRiskLimits(cfg *EngineConfig, profile Profile) (RiskLimits, error) {
	if cfg.AccountSize <= 0 {
		return RiskLimits{}, engerrors.NewConfigurationError("risk_limits",
			fmt.Sprintf("account size must be positive, got: %.2f", cfg.AccountSize))
	}

	dailyLoss := cfg.DailyLossFraction
	if dailyLoss <= 0 {
		dailyLoss = DefaultDailyLossFraction
	}
	emergency := cfg.EmergencyHaltFraction
	if emergency <= 0 {
		emergency = DefaultEmergencyHaltFraction
	}
	perInstrument := cfg.MaxPerInstrumentPct
	if perInstrument <= 0 {
		perInstrument = DefaultMaxPerInstrumentPct
	}
	portfolio := cfg.MaxPortfolioExposurePct
	if portfolio <= 0 {
		portfolio = DefaultMaxPortfolioExposurePct
	}

	limits := RiskLimits{
		AccountSize:             cfg.AccountSize,
		MinPositionSize:         cfg.AccountSize * profile.MinBetFraction,
		MaxPositionSize:         cfg.AccountSize * profile.MaxBetFraction,
		MaxDailyLoss:            cfg.AccountSize * dailyLoss,
		EmergencyHaltLoss:       cfg.AccountSize * emergency,
		MaxPerInstrumentPct:     perInstrument,
		MaxPortfolioExposurePct: portfolio,
	}

	if err := limits.Validate(); err != nil {
		return RiskLimits{}, err
	}

	return limits, nil
}

// Validate enforces the bet-size invariant 0 < min <= max <= account size.
func (l RiskLimits) Validate() error {
	if l.MinPositionSize <= 0 {
		return engerrors.NewConfigurationError("risk_limits",
			fmt.Sprintf("minimum position size must be positive, got: %.2f", l.MinPositionSize))
	}
	if l.MinPositionSize > l.MaxPositionSize {
		return engerrors.NewConfigurationError("risk_limits",
			fmt.Sprintf("minimum position size %.2f exceeds maximum %.2f", l.MinPositionSize, l.MaxPositionSize))
	}
	if l.MaxPositionSize > l.AccountSize {
		return engerrors.NewConfigurationError("risk_limits",
			fmt.Sprintf("maximum position size %.2f exceeds account size %.2f", l.MaxPositionSize, l.AccountSize))
	}
	if l.MaxPerInstrumentPct <= 0 || l.MaxPerInstrumentPct > 1.0 {
		return engerrors.NewConfigurationError("risk_limits",
			fmt.Sprintf("per-instrument exposure limit must be within (0, 1], got: %.2f", l.MaxPerInstrumentPct))
	}
	if l.MaxPortfolioExposurePct <= 0 || l.MaxPortfolioExposurePct > 1.0 {
		return engerrors.NewConfigurationError("risk_limits",
			fmt.Sprintf("portfolio exposure limit must be within (0, 1], got: %.2f", l.MaxPortfolioExposurePct))
	}
	return nil
}
