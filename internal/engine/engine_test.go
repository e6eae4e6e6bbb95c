package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := New(config.NewDefaultEngineConfig(60000), nil)
	require.NoError(t, err)
	return eng
}

func testSignal(instrument string, confidence float64) types.SignalContext {
	return types.SignalContext{
		InstrumentID:  instrument,
		Symbol:        "SPY",
		Confidence:    confidence,
		Side:          types.SideLong,
		OptionPremium: 2.00,
	}
}

// TestEngine_New tests construction and configuration failures
func TestEngine_New(t *testing.T) {
	eng := testEngine(t)
	assert.Equal(t, 12000.0, eng.Limits().MinPositionSize)
	assert.Equal(t, config.VariantZeroDTE, eng.Profile().Variant)

	_, err := New(config.NewDefaultEngineConfig(-1), nil)
	assert.Error(t, err)

	bad := config.NewDefaultEngineConfig(60000)
	bad.Variant = "monthly"
	_, err = New(bad, nil)
	assert.Error(t, err)
}

// TestEngine_SizeAndReserve tests that a sized trade consumes headroom
func TestEngine_SizeAndReserve(t *testing.T) {
	eng := testEngine(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	market := types.MarketContext{VolatilityIndex: 15}

	result, err := eng.SizeAndReserve(testSignal("SPY-0DTE-C", 0.6), market, types.CorrelationView{}, types.PortfolioSnapshot{}, now)
	require.NoError(t, err)
	require.False(t, result.NoTrade)
	assert.Equal(t, 12000.0, result.PositionValue)
	assert.Equal(t, 12000.0, eng.Tracker().Allocation("SPY-0DTE-C"))

	// per-instrument headroom is now $12k; a high-confidence signal wants $24k
	// but fits after the sizer clamps to headroom
	result, err = eng.SizeAndReserve(testSignal("SPY-0DTE-C", 0.9), market, types.CorrelationView{}, types.PortfolioSnapshot{}, now)
	require.NoError(t, err)
	require.False(t, result.NoTrade)
	assert.Equal(t, 12000.0, result.PositionValue)
	assert.Equal(t, 24000.0, eng.Tracker().Allocation("SPY-0DTE-C"))

	// the instrument cap is exhausted
	result, err = eng.SizeAndReserve(testSignal("SPY-0DTE-C", 0.9), market, types.CorrelationView{}, types.PortfolioSnapshot{}, now)
	require.NoError(t, err)
	assert.True(t, result.NoTrade)
	assert.Equal(t, "insufficient headroom", result.Reason)
}

// TestEngine_FullLifecycle tests size, open, tiered exits and fills end to end
func TestEngine_FullLifecycle(t *testing.T) {
	eng := testEngine(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	signal := testSignal("SPY-0DTE-C", 0.6)
	market := types.MarketContext{VolatilityIndex: 15}

	result, err := eng.SizeAndReserve(signal, market, types.CorrelationView{}, types.PortfolioSnapshot{}, now)
	require.NoError(t, err)
	require.False(t, result.NoTrade)

	pos := eng.OpenPosition(signal, result, now, now.Add(6*time.Hour), 0)
	assert.Equal(t, result.Contracts, pos.Contracts)
	assert.Len(t, pos.Tiers, 3)

	// replay prices through every tier
	for i, price := range []float64{2.10, 2.20, 2.30} {
		action, err := eng.EvaluateExit(pos, price, now.Add(time.Duration(i+1)*10*time.Minute))
		require.NoError(t, err)
		require.Equal(t, types.ExitPartialClose, action.Type)

		closedValue := result.PositionValue * action.CloseFraction
		eng.ApplyCloseFill(pos, types.Fill{
			InstrumentID: signal.InstrumentID,
			Amount:       closedValue,
			RealizedPnL:  closedValue * action.ProfitPct,
		}, now)
	}

	assert.Equal(t, types.PositionClosed, pos.State)
	assert.InDelta(t, 0.0, eng.Tracker().Allocation(signal.InstrumentID), 1e-6)
	assert.Greater(t, eng.Monitor().Status(now).DailyPnL, 0.0)
}

// TestEngine_LossesHaltNewEntries tests that recorded losses feed straight
// into the sizer's halt check
func TestEngine_LossesHaltNewEntries(t *testing.T) {
	eng := testEngine(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	market := types.MarketContext{VolatilityIndex: 15}

	// a $7k realized loss crosses the $6k daily limit
	eng.ApplyCloseFill(nil, types.Fill{InstrumentID: "SPY-0DTE-C", RealizedPnL: -7000}, now)

	result, err := eng.SizeAndReserve(testSignal("QQQ-0DTE-C", 0.9), market, types.CorrelationView{}, types.PortfolioSnapshot{}, now)
	require.NoError(t, err)
	assert.True(t, result.NoTrade)
	assert.Equal(t, "daily loss limit reached", result.Reason)

	// next day the daily halt is gone
	result, err = eng.SizeAndReserve(testSignal("QQQ-0DTE-C", 0.9), market, types.CorrelationView{}, types.PortfolioSnapshot{}, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, result.NoTrade)
}

// TestEngine_EmergencyReset tests the manual recovery path
func TestEngine_EmergencyReset(t *testing.T) {
	eng := testEngine(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	market := types.MarketContext{VolatilityIndex: 15}

	eng.ApplyCloseFill(nil, types.Fill{InstrumentID: "SPY-0DTE-C", RealizedPnL: -13000}, now)

	result, err := eng.SizeAndReserve(testSignal("QQQ-0DTE-C", 0.9), market, types.CorrelationView{}, types.PortfolioSnapshot{}, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, result.NoTrade)

	eng.ResetEmergency()

	result, err = eng.SizeAndReserve(testSignal("QQQ-0DTE-C", 0.9), market, types.CorrelationView{}, types.PortfolioSnapshot{}, now.Add(24*time.Hour))
	require.NoError(t, err)
	assert.False(t, result.NoTrade)
}
