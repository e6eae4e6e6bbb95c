package sizing

import (
	"math"

	"github.com/ducminhle1904/options-risk-engine/pkg/config"
)

// VolatilityBand maps an exclusive lower bound on the volatility index to a
// size multiplier. Bands are evaluated top-down, highest bound first.
type VolatilityBand struct {
	Above      float64
	Multiplier float64
}

// VolatilityAdjuster scales position size inversely with market volatility.
// Elevated volatility cuts size; unusually calm markets allow a small bump.
type VolatilityAdjuster struct {
	bands          []VolatilityBand
	calmBelow      float64
	calmMultiplier float64
	fallback       float64
}

// NewVolatilityAdjuster creates the adjuster with the standard VIX bands.
func NewVolatilityAdjuster() *VolatilityAdjuster {
	return &VolatilityAdjuster{
		bands: []VolatilityBand{
			{Above: 30, Multiplier: 0.5},
			{Above: 25, Multiplier: 0.7},
			{Above: 20, Multiplier: 0.9},
		},
		calmBelow:      12,
		calmMultiplier: 1.1,
		fallback:       config.DefaultVolatilityFallbackFactor,
	}
}

// Factor returns the multiplier for the given volatility index. Missing or
// invalid readings return the conservative fallback rather than failing;
// substituted reports whether that happened.
func (a *VolatilityAdjuster) Factor(volatilityIndex float64) (factor float64, substituted bool) {
	if math.IsNaN(volatilityIndex) || math.IsInf(volatilityIndex, 0) || volatilityIndex <= 0 {
		return a.fallback, true
	}

	for _, band := range a.bands {
		if volatilityIndex > band.Above {
			return band.Multiplier, false
		}
	}
	if volatilityIndex < a.calmBelow {
		return a.calmMultiplier, false
	}
	return 1.0, false
}
