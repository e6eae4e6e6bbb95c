package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRiskLimits tests the dollar limits derived for each variant
func TestNewRiskLimits(t *testing.T) {
	t.Run("zero dte", func(t *testing.T) {
		limits, err := NewRiskLimits(NewDefaultEngineConfig(60000), ZeroDTEProfile())
		require.NoError(t, err)

		assert.Equal(t, 12000.0, limits.MinPositionSize)
		assert.Equal(t, 24000.0, limits.MaxPositionSize)
		assert.Equal(t, 6000.0, limits.MaxDailyLoss)
		assert.Equal(t, 12000.0, limits.EmergencyHaltLoss)
		assert.Equal(t, 0.40, limits.MaxPerInstrumentPct)
		assert.Equal(t, 0.80, limits.MaxPortfolioExposurePct)
	})

	t.Run("weekly", func(t *testing.T) {
		limits, err := NewRiskLimits(NewDefaultEngineConfig(60000), WeeklyProfile())
		require.NoError(t, err)

		assert.Equal(t, 19800.0, limits.MinPositionSize)
		assert.Equal(t, 39600.0, limits.MaxPositionSize)
	})

	t.Run("non-positive account", func(t *testing.T) {
		_, err := NewRiskLimits(NewDefaultEngineConfig(-5), ZeroDTEProfile())
		assert.Error(t, err)
	})

	t.Run("min above max", func(t *testing.T) {
		profile := ZeroDTEProfile()
		profile.MinBetFraction = 0.50
		profile.MaxBetFraction = 0.40
		_, err := NewRiskLimits(NewDefaultEngineConfig(60000), profile)
		assert.Error(t, err)
	})

	t.Run("max above account", func(t *testing.T) {
		profile := ZeroDTEProfile()
		profile.MaxBetFraction = 1.5
		_, err := NewRiskLimits(NewDefaultEngineConfig(60000), profile)
		assert.Error(t, err)
	})
}

// TestRiskLimits_Validate tests the exposure percentage bounds
func TestRiskLimits_Validate(t *testing.T) {
	limits, err := NewRiskLimits(NewDefaultEngineConfig(60000), ZeroDTEProfile())
	require.NoError(t, err)

	limits.MaxPerInstrumentPct = 1.5
	assert.Error(t, limits.Validate())

	limits.MaxPerInstrumentPct = 0.40
	limits.MaxPortfolioExposurePct = 0
	assert.Error(t, limits.Validate())
}
