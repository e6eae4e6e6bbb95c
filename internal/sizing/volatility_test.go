package sizing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestVolatilityAdjuster_Bands tests the multiplier in each volatility band
func TestVolatilityAdjuster_Bands(t *testing.T) {
	adjuster := NewVolatilityAdjuster()

	tests := []struct {
		name     string
		vix      float64
		expected float64
	}{
		{"extreme volatility", 35.0, 0.5},
		{"just above panic band", 30.1, 0.5},
		{"elevated", 27.0, 0.7},
		{"mildly elevated", 22.0, 0.9},
		{"band edge is not elevated", 20.0, 1.0},
		{"normal", 16.0, 1.0},
		{"calm", 11.0, 1.1},
		{"calm edge stays neutral", 12.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factor, substituted := adjuster.Factor(tt.vix)
			assert.Equal(t, tt.expected, factor)
			assert.False(t, substituted)
		})
	}
}

// TestVolatilityAdjuster_InvalidInput tests the conservative fallback
func TestVolatilityAdjuster_InvalidInput(t *testing.T) {
	adjuster := NewVolatilityAdjuster()

	for _, vix := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		factor, substituted := adjuster.Factor(vix)
		assert.Equal(t, 0.8, factor)
		assert.True(t, substituted)
	}
}
