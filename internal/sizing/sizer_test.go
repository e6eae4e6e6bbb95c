package sizing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

type stubHeadroom struct {
	instrument float64
	total      float64
}

func (s stubHeadroom) Headroom(string) float64 { return s.instrument }
func (s stubHeadroom) HeadroomTotal() float64  { return s.total }

type stubHalt struct {
	halted bool
	reason string
}

func (s stubHalt) Halted(time.Time) (bool, string) { return s.halted, s.reason }

func testLimits(t *testing.T, accountSize float64) config.RiskLimits {
	t.Helper()
	limits, err := config.NewRiskLimits(config.NewDefaultEngineConfig(accountSize), config.ZeroDTEProfile())
	require.NoError(t, err)
	return limits
}

func testSizer(t *testing.T, headroom stubHeadroom) *PositionSizer {
	t.Helper()
	return NewPositionSizer(testLimits(t, 60000), config.ZeroDTEProfile(), headroom, nil, nil)
}

func baseSignal() types.SignalContext {
	return types.SignalContext{
		InstrumentID:  "SPY-0DTE-C",
		Symbol:        "SPY",
		Confidence:    0.6,
		Side:          types.SideLong,
		OptionPremium: 2.00,
	}
}

// TestPositionSizer_MinimumBet tests that a weak signal still gets the minimum
// bet: 60k account, 20% min fraction, confidence 0.6, VIX 20, no correlation data
func TestPositionSizer_MinimumBet(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 24000, total: 48000})

	signal := baseSignal()
	market := types.MarketContext{VolatilityIndex: 20}
	correlation := types.CorrelationView{Available: false}
	snapshot := types.PortfolioSnapshot{OpenPositions: []types.Position{{InstrumentID: "QQQ-0DTE-C"}}}

	result := sizer.Size(signal, market, correlation, snapshot, time.Now())

	require.False(t, result.NoTrade)
	assert.Equal(t, 12000.0, result.PositionValue)
	assert.Equal(t, 60, result.Contracts)
	assert.Equal(t, 1.0, result.Breakdown.ClampedFactor)
	assert.NotEmpty(t, result.Substitutions)
}

// TestPositionSizer_HighConfidence tests that a 0.9-confidence signal doubles
// the bet up to the maximum position size
func TestPositionSizer_HighConfidence(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 24000, total: 48000})

	signal := baseSignal()
	signal.Confidence = 0.9
	market := types.MarketContext{VolatilityIndex: 20}
	result := sizer.Size(signal, market, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	require.False(t, result.NoTrade)
	assert.Equal(t, 2.0, result.Breakdown.ClampedFactor)
	assert.GreaterOrEqual(t, result.PositionValue, 18000.0)
	assert.LessOrEqual(t, result.PositionValue, 24000.0)
}

// TestPositionSizer_HighCorrelationCut tests that a crowded book halves the
// combined factor even for high-confidence signals
func TestPositionSizer_HighCorrelationCut(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 24000, total: 48000})

	signal := baseSignal()
	signal.Confidence = 0.95
	market := types.MarketContext{VolatilityIndex: 18}
	correlation := types.CorrelationView{AverageAbsCorrelation: 0.85, Available: true}
	snapshot := types.PortfolioSnapshot{OpenPositions: []types.Position{{InstrumentID: "QQQ-0DTE-C"}}}

	result := sizer.Size(signal, market, correlation, snapshot, time.Now())

	require.False(t, result.NoTrade)
	assert.Equal(t, 0.5, result.Breakdown.CorrelationFactor)
	// 2.0 x 1.0 x 0.5 = 1.0 after clamping, back to the minimum bet
	assert.Equal(t, 1.0, result.Breakdown.ClampedFactor)
	assert.Equal(t, 12000.0, result.PositionValue)
}

// TestPositionSizer_InsufficientHeadroom tests that headroom below the minimum
// bet is a no-trade, never a silent undersize
func TestPositionSizer_InsufficientHeadroom(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 5000, total: 48000})

	signal := baseSignal()
	signal.Confidence = 0.95
	result := sizer.Size(signal, types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	assert.True(t, result.NoTrade)
	assert.Equal(t, 0, result.Contracts)
	assert.Equal(t, ReasonInsufficientHeadroom, result.Reason)
}

// TestPositionSizer_PortfolioHeadroomBinds tests that the tighter of the two
// headroom limits wins
func TestPositionSizer_PortfolioHeadroomBinds(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 24000, total: 3000})

	result := sizer.Size(baseSignal(), types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	assert.True(t, result.NoTrade)
	assert.Equal(t, ReasonInsufficientHeadroom, result.Reason)
}

// TestPositionSizer_Halted tests that an active halt refuses all sizing
func TestPositionSizer_Halted(t *testing.T) {
	halts := stubHalt{halted: true, reason: "daily loss limit reached"}
	sizer := NewPositionSizer(testLimits(t, 60000), config.ZeroDTEProfile(), stubHeadroom{instrument: 24000, total: 48000}, halts, nil)

	result := sizer.Size(baseSignal(), types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	assert.True(t, result.NoTrade)
	assert.Equal(t, "daily loss limit reached", result.Reason)
}

// TestPositionSizer_InvalidPremium tests the no-trade on a bad option quote
func TestPositionSizer_InvalidPremium(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 24000, total: 48000})

	signal := baseSignal()
	signal.OptionPremium = 0

	result := sizer.Size(signal, types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	assert.True(t, result.NoTrade)
	assert.Equal(t, ReasonInvalidPremium, result.Reason)
}

// TestPositionSizer_CeilingRounding tests that contract conversion rounds up
// to guarantee the minimum bet
func TestPositionSizer_CeilingRounding(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 24000, total: 48000})

	signal := baseSignal()
	signal.OptionPremium = 0.37 // one contract = $37, min bet does not divide evenly

	result := sizer.Size(signal, types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	require.False(t, result.NoTrade)
	assert.GreaterOrEqual(t, result.PositionValue, 12000.0)
	assert.Equal(t, 325, result.Contracts) // ceil(12000 / 37)
}

// TestPositionSizer_RoundingRespectsHeadroom tests that ceiling rounding never
// produces a value the exposure tracker would have to refuse
func TestPositionSizer_RoundingRespectsHeadroom(t *testing.T) {
	// $12100 of headroom holds 60 contracts at $200, not the rounded-up 61
	sizer := testSizer(t, stubHeadroom{instrument: 12100, total: 48000})

	signal := baseSignal()
	signal.Confidence = 0.9

	result := sizer.Size(signal, types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	require.False(t, result.NoTrade)
	assert.Equal(t, 60, result.Contracts)
	assert.Equal(t, 12000.0, result.PositionValue)
	assert.LessOrEqual(t, result.PositionValue, 12100.0)
}

// TestPositionSizer_RoundingCannotSatisfyMin tests the narrow window where
// stepping back under the maximum violates the minimum
func TestPositionSizer_RoundingCannotSatisfyMin(t *testing.T) {
	profile := config.ZeroDTEProfile()
	profile.MinBetFraction = 0.20
	profile.MaxBetFraction = 0.20 // min == max leaves no room for rounding
	limits, err := config.NewRiskLimits(config.NewDefaultEngineConfig(60000), profile)
	require.NoError(t, err)

	sizer := NewPositionSizer(limits, profile, stubHeadroom{instrument: 24000, total: 48000}, nil, nil)

	signal := baseSignal()
	signal.OptionPremium = 7.00 // $700 per contract never lands on exactly $12000

	result := sizer.Size(signal, types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	assert.True(t, result.NoTrade)
	assert.Equal(t, ReasonRoundingBelowMin, result.Reason)
}

// TestPositionSizer_NeverUndersized tests the core policy: every result is
// either zero or at least the minimum position size
func TestPositionSizer_NeverUndersized(t *testing.T) {
	limits := testLimits(t, 60000)

	for _, headroom := range []stubHeadroom{
		{instrument: 24000, total: 48000},
		{instrument: 13000, total: 48000},
		{instrument: 9000, total: 48000},
		{instrument: 24000, total: 1000},
	} {
		sizer := NewPositionSizer(limits, config.ZeroDTEProfile(), headroom, nil, nil)
		for confidence := 0.0; confidence <= 1.0; confidence += 0.05 {
			for _, vix := range []float64{8, 15, 22, 28, 35, -1} {
				signal := baseSignal()
				signal.Confidence = confidence
				result := sizer.Size(signal, types.MarketContext{VolatilityIndex: vix}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

				if result.NoTrade {
					assert.Equal(t, 0, result.Contracts)
				} else {
					assert.GreaterOrEqual(t, result.PositionValue, limits.MinPositionSize)
					assert.LessOrEqual(t, result.PositionValue, limits.MaxPositionSize+1e-9)
				}
			}
		}
	}
}

// TestPositionSizer_MonotonicInConfidence tests that position value never
// shrinks as confidence crosses the tier boundaries
func TestPositionSizer_MonotonicInConfidence(t *testing.T) {
	sizer := testSizer(t, stubHeadroom{instrument: 24000, total: 48000})

	last := 0.0
	for _, confidence := range []float64{0.60, 0.70, 0.75, 0.80, 0.85, 0.90, 0.95} {
		signal := baseSignal()
		signal.Confidence = confidence
		result := sizer.Size(signal, types.MarketContext{VolatilityIndex: 15}, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

		require.False(t, result.NoTrade)
		assert.GreaterOrEqual(t, result.PositionValue, last, "position value dropped at confidence %.2f", confidence)
		last = result.PositionValue
	}
}

// TestPositionSizer_FundamentalFactor tests the weekly-only fundamental input
func TestPositionSizer_FundamentalFactor(t *testing.T) {
	profile := config.WeeklyProfile()
	limits, err := config.NewRiskLimits(config.NewDefaultEngineConfig(60000), profile)
	require.NoError(t, err)
	sizer := NewPositionSizer(limits, profile, stubHeadroom{instrument: 24000, total: 48000}, nil, nil)

	fundamental := 1.3
	signal := baseSignal()
	signal.Confidence = 0.75
	market := types.MarketContext{VolatilityIndex: 15, FundamentalFactor: &fundamental}

	result := sizer.Size(signal, market, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())

	require.False(t, result.NoTrade)
	assert.Equal(t, 1.3, result.Breakdown.FundamentalFactor)
	assert.InDelta(t, 1.25*1.3, result.Breakdown.CombinedFactor, 1e-9)

	// Missing fundamental data falls back to neutral and is recorded
	market.FundamentalFactor = nil
	result = sizer.Size(signal, market, types.CorrelationView{}, types.PortfolioSnapshot{}, time.Now())
	assert.Equal(t, 1.0, result.Breakdown.FundamentalFactor)
	assert.NotEmpty(t, result.Substitutions)
}
