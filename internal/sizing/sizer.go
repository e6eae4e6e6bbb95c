package sizing

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/options-risk-engine/internal/monitoring"
	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

// No-trade reasons surfaced in SizingResult
const (
	ReasonInsufficientHeadroom = "insufficient headroom"
	ReasonInvalidPremium       = "invalid option premium"
	ReasonRoundingBelowMin     = "contract rounding cannot satisfy minimum bet"
)

// PositionSizer composes the three adjusters plus exposure headroom into a
// final sized decision. Size is a pure function over its inputs; the caller is
// responsible for reserving the computed size against the exposure tracker.
type PositionSizer struct {
	limits      config.RiskLimits
	profile     config.Profile
	confidence  *ConfidenceScaler
	volatility  *VolatilityAdjuster
	correlation *CorrelationAdjuster
	headroom    HeadroomSource
	halts       HaltSource
	logger      *zap.Logger
}

// NewPositionSizer wires a sizer for the given profile. The headroom source is
// required; the halt source and logger may be nil.
func NewPositionSizer(limits config.RiskLimits, profile config.Profile, headroom HeadroomSource, halts HaltSource, logger *zap.Logger) *PositionSizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PositionSizer{
		limits:      limits,
		profile:     profile,
		confidence:  NewConfidenceScaler(nil),
		volatility:  NewVolatilityAdjuster(),
		correlation: NewCorrelationAdjuster(),
		headroom:    headroom,
		halts:       halts,
		logger:      logger,
	}
}

// Size computes how much capital to commit to a new signal. A zero-contract
// result with a reason is the normal "do not trade" outcome; an undersized
// trade below the minimum bet policy is never returned.
func (s *PositionSizer) Size(signal types.SignalContext, market types.MarketContext, correlation types.CorrelationView, snapshot types.PortfolioSnapshot, asOf time.Time) types.SizingResult {
	result := types.SizingResult{
		InstrumentID:    signal.InstrumentID,
		MinPositionSize: s.limits.MinPositionSize,
	}

	if s.halts != nil {
		if halted, reason := s.halts.Halted(asOf); halted {
			s.logger.Warn("sizing refused, account halted",
				zap.String("instrument", signal.InstrumentID),
				zap.String("reason", reason))
			return s.noTrade(result, reason)
		}
	}

	if signal.OptionPremium <= 0 || math.IsNaN(signal.OptionPremium) {
		return s.noTrade(result, ReasonInvalidPremium)
	}

	confidenceFactor := s.confidence.Factor(signal.Confidence)
	volatilityFactor, volSubstituted := s.volatility.Factor(market.VolatilityIndex)
	if volSubstituted {
		result.Substitutions = append(result.Substitutions, "volatility indicator missing, conservative default applied")
	}
	correlationFactor, corrSubstituted := s.correlation.Factor(correlation, len(snapshot.OpenPositions))
	if corrSubstituted {
		result.Substitutions = append(result.Substitutions, "correlation data unavailable, conservative default applied")
	}

	fundamentalFactor := 1.0
	if s.profile.UseFundamental {
		if market.FundamentalFactor != nil {
			fundamentalFactor = *market.FundamentalFactor
		} else {
			result.Substitutions = append(result.Substitutions, "fundamental adjustment missing, neutral factor applied")
		}
	}

	combined := confidenceFactor * volatilityFactor * correlationFactor * fundamentalFactor
	clamped := clamp(combined, config.MinSizeMultiplier, config.MaxSizeMultiplier)

	result.Breakdown = types.AdjustmentBreakdown{
		ConfidenceFactor:  confidenceFactor,
		VolatilityFactor:  volatilityFactor,
		CorrelationFactor: correlationFactor,
		FundamentalFactor: fundamentalFactor,
		CombinedFactor:    combined,
		ClampedFactor:     clamped,
	}

	candidate := s.limits.MinPositionSize * clamped
	if candidate > s.limits.MaxPositionSize {
		candidate = s.limits.MaxPositionSize
	}

	headroom := math.Min(s.headroom.Headroom(signal.InstrumentID), s.headroom.HeadroomTotal())
	if candidate > headroom {
		candidate = headroom
	}

	if candidate+1e-9 < s.limits.MinPositionSize {
		s.logger.Info("no trade, headroom below minimum bet",
			zap.String("instrument", signal.InstrumentID),
			zap.Float64("headroom", headroom),
			zap.Float64("min_position_size", s.limits.MinPositionSize))
		return s.noTrade(result, ReasonInsufficientHeadroom)
	}

	contractCost := signal.OptionPremium * types.ContractMultiplier
	contracts := int(math.Ceil(candidate / contractCost))
	value := float64(contracts) * contractCost

	// Ceiling rounding can overshoot the maximum or the remaining headroom;
	// step back one contract and re-check the minimum bet before giving up.
	if bound := math.Min(s.limits.MaxPositionSize, headroom); value > bound+1e-9 {
		contracts--
		value = float64(contracts) * contractCost
	}
	if contracts <= 0 || value+1e-9 < s.limits.MinPositionSize {
		return s.noTrade(result, ReasonRoundingBelowMin)
	}

	result.Contracts = contracts
	result.PositionValue = value

	monitoring.RecordSizingDecision(string(s.profile.Variant), "sized")
	monitoring.ObservePositionValue(string(s.profile.Variant), value)

	s.logger.Info("position sized",
		zap.String("instrument", signal.InstrumentID),
		zap.Int("contracts", contracts),
		zap.Float64("position_value", value),
		zap.Float64("combined_factor", combined),
		zap.Float64("clamped_factor", clamped))

	return result
}

func (s *PositionSizer) noTrade(result types.SizingResult, reason string) types.SizingResult {
	result.NoTrade = true
	result.Reason = reason
	result.Contracts = 0
	result.PositionValue = 0
	monitoring.RecordSizingDecision(string(s.profile.Variant), "no_trade")
	return result
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
