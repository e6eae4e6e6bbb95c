package config

import (
	"fmt"

	engerrors "github.com/ducminhle1904/options-risk-engine/internal/errors"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

// EngineValidator implements validation for engine configurations
type EngineValidator struct{}

// NewEngineValidator creates a new engine configuration validator
func NewEngineValidator() *EngineValidator {
	return &EngineValidator{}
}

// Validate performs comprehensive validation on engine configuration parameters
func (v *EngineValidator) Validate(cfg *EngineConfig) error {
	if cfg == nil {
		return engerrors.NewConfigurationError("engine_config", "configuration is nil")
	}

	if cfg.AccountSize <= 0 {
		return engerrors.NewConfigurationError("engine_config",
			fmt.Sprintf("account size must be positive, got: %.2f", cfg.AccountSize))
	}

	switch cfg.Variant {
	case VariantZeroDTE, VariantWeekly, "":
	default:
		return newUnknownVariantError(cfg.Variant)
	}

	if cfg.MinBetFraction < 0 || cfg.MinBetFraction > 1.0 {
		return engerrors.NewConfigurationError("engine_config",
			fmt.Sprintf("min bet fraction must be between 0 and 1, got: %.4f", cfg.MinBetFraction))
	}
	if cfg.MaxBetFraction < 0 || cfg.MaxBetFraction > 1.0 {
		return engerrors.NewConfigurationError("engine_config",
			fmt.Sprintf("max bet fraction must be between 0 and 1, got: %.4f", cfg.MaxBetFraction))
	}
	if cfg.MinBetFraction > 0 && cfg.MaxBetFraction > 0 && cfg.MinBetFraction > cfg.MaxBetFraction {
		return engerrors.NewConfigurationError("engine_config",
			fmt.Sprintf("min bet fraction %.4f exceeds max bet fraction %.4f", cfg.MinBetFraction, cfg.MaxBetFraction))
	}

	if cfg.DailyLossFraction < 0 || cfg.DailyLossFraction > 1.0 {
		return engerrors.NewConfigurationError("engine_config",
			fmt.Sprintf("daily loss fraction must be between 0 and 1, got: %.4f", cfg.DailyLossFraction))
	}
	if cfg.EmergencyHaltFraction < 0 || cfg.EmergencyHaltFraction > 1.0 {
		return engerrors.NewConfigurationError("engine_config",
			fmt.Sprintf("emergency halt fraction must be between 0 and 1, got: %.4f", cfg.EmergencyHaltFraction))
	}

	if len(cfg.ExitTiers) > 0 {
		tiers := make([]types.Tier, 0, len(cfg.ExitTiers))
		for _, spec := range cfg.ExitTiers {
			tiers = append(tiers, types.Tier{ProfitThreshold: spec.ProfitThreshold, CloseFraction: spec.CloseFraction})
		}
		if err := ValidateTiers(tiers); err != nil {
			return err
		}
	}

	return nil
}

// ValidateTiers checks the structural invariants of a take-profit plan:
// thresholds strictly ascending, fractions positive, fractions summing to at
// most 1.0 of the original position size.
func ValidateTiers(tiers []types.Tier) error {
	if len(tiers) == 0 {
		return engerrors.NewConfigurationError("exit_tiers", "exit plan must contain at least one tier")
	}

	totalFraction := 0.0
	lastThreshold := 0.0
	for i, tier := range tiers {
		if tier.ProfitThreshold <= 0 {
			return engerrors.NewConfigurationError("exit_tiers",
				fmt.Sprintf("tier %d profit threshold must be positive, got: %.4f", i, tier.ProfitThreshold))
		}
		if i > 0 && tier.ProfitThreshold <= lastThreshold {
			return engerrors.NewConfigurationError("exit_tiers",
				fmt.Sprintf("tier %d threshold %.4f must ascend past %.4f", i, tier.ProfitThreshold, lastThreshold))
		}
		if tier.CloseFraction <= 0 || tier.CloseFraction > 1.0 {
			return engerrors.NewConfigurationError("exit_tiers",
				fmt.Sprintf("tier %d close fraction must be within (0, 1], got: %.4f", i, tier.CloseFraction))
		}
		totalFraction += tier.CloseFraction
		lastThreshold = tier.ProfitThreshold
	}

	if totalFraction > 1.0+1e-9 {
		return engerrors.NewConfigurationError("exit_tiers",
			fmt.Sprintf("tier close fractions sum to %.4f, must not exceed 1.0", totalFraction))
	}

	return nil
}

func newUnknownVariantError(variant Variant) error {
	return engerrors.NewConfigurationError("engine_config",
		fmt.Sprintf("unknown variant %q, expected %q or %q", variant, VariantZeroDTE, VariantWeekly))
}
