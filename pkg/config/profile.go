package config

import (
	"time"

	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

// AgedPositionCutoff is how long a zero-DTE position can stay open before its
// tier thresholds are compressed a further notch.
const AgedPositionCutoff = 3 * time.Hour

// Profile parameterizes the engine for one trading variant. Both variants run
// the same sizing and exit code; only the profile differs.
type Profile struct {
	Variant        Variant
	MinBetFraction float64
	MaxBetFraction float64
	ExitTiers      []types.Tier

	// Weekly-only behavior
	DTEScaling        bool
	DynamicRiskReward bool
	TrailingStop      bool
	UseFundamental    bool

	// Zero-DTE-only behavior
	TimeCompression bool
}

// ZeroDTEProfile returns the same-day ETF options profile.
func ZeroDTEProfile() Profile {
	return Profile{
		Variant:         VariantZeroDTE,
		MinBetFraction:  DefaultZeroDTEMinBetFraction,
		MaxBetFraction:  DefaultZeroDTEMaxBetFraction,
		ExitTiers:       DefaultZeroDTETiers(),
		TimeCompression: true,
	}
}

// WeeklyProfile returns the multi-day single-stock options profile.
func WeeklyProfile() Profile {
	return Profile{
		Variant:           VariantWeekly,
		MinBetFraction:    DefaultWeeklyMinBetFraction,
		MaxBetFraction:    DefaultWeeklyMaxBetFraction,
		ExitTiers:         DefaultWeeklyTiers(),
		DTEScaling:        true,
		DynamicRiskReward: true,
		TrailingStop:      true,
		UseFundamental:    true,
	}
}

// DefaultZeroDTETiers is the stock three-step plan for same-day positions.
func DefaultZeroDTETiers() []types.Tier {
	return []types.Tier{
		{ProfitThreshold: 0.05, CloseFraction: 0.33},
		{ProfitThreshold: 0.10, CloseFraction: 0.33},
		{ProfitThreshold: 0.15, CloseFraction: 0.34},
	}
}

// DefaultWeeklyTiers leaves half the position running for the larger move.
func DefaultWeeklyTiers() []types.Tier {
	return []types.Tier{
		{ProfitThreshold: 0.10, CloseFraction: 0.25},
		{ProfitThreshold: 0.20, CloseFraction: 0.25},
		{ProfitThreshold: 0.35, CloseFraction: 0.50},
	}
}

// ProfileFromConfig builds a profile from an engine configuration, filling in
// variant defaults for any field left at its zero value.
func ProfileFromConfig(cfg *EngineConfig) (Profile, error) {
	var profile Profile
	switch cfg.Variant {
	case VariantZeroDTE, "":
		profile = ZeroDTEProfile()
	case VariantWeekly:
		profile = WeeklyProfile()
	default:
		return Profile{}, newUnknownVariantError(cfg.Variant)
	}

	if cfg.MinBetFraction > 0 {
		profile.MinBetFraction = cfg.MinBetFraction
	}
	if cfg.MaxBetFraction > 0 {
		profile.MaxBetFraction = cfg.MaxBetFraction
	}
	if len(cfg.ExitTiers) > 0 {
		tiers := make([]types.Tier, 0, len(cfg.ExitTiers))
		for _, spec := range cfg.ExitTiers {
			tiers = append(tiers, types.Tier{
				ProfitThreshold: spec.ProfitThreshold,
				CloseFraction:   spec.CloseFraction,
			})
		}
		profile.ExitTiers = tiers
	}

	if err := ValidateTiers(profile.ExitTiers); err != nil {
		return Profile{}, err
	}

	return profile, nil
}
