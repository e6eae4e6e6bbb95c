package sizing

import (
	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

// CorrelationAdjuster scales position size by how correlated the candidate
// instrument is with current holdings. Concentrated, highly correlated books
// get cut; genuinely diversifying trades get a small bump.
type CorrelationAdjuster struct {
	fallback float64
}

// NewCorrelationAdjuster creates the adjuster with the standard fallback.
func NewCorrelationAdjuster() *CorrelationAdjuster {
	return &CorrelationAdjuster{fallback: config.DefaultCorrelationFallbackFactor}
}

// Factor returns the multiplier for the candidate instrument. With no open
// positions there is no correlation risk and the factor is neutral. When the
// correlation service has no data the conservative fallback applies;
// substituted reports whether that happened.
func (a *CorrelationAdjuster) Factor(view types.CorrelationView, openPositions int) (factor float64, substituted bool) {
	if openPositions == 0 {
		return 1.0, false
	}
	if !view.Available {
		return a.fallback, true
	}

	avg := view.AverageAbsCorrelation
	switch {
	case avg > 0.8:
		return 0.5, false
	case avg > 0.6:
		return 0.75, false
	case avg < 0.3:
		return 1.2, false
	default:
		return 1.0, false
	}
}
