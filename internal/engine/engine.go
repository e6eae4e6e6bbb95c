package engine

import (
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/options-risk-engine/internal/exits"
	"github.com/ducminhle1904/options-risk-engine/internal/exposure"
	"github.com/ducminhle1904/options-risk-engine/internal/sizing"
	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

// Engine wires the sizer, exit manager, exposure tracker and loss monitor into
// one unit the order-management layer can hold. The engine performs no I/O and
// owns no goroutines; every method is a synchronous call.
type Engine struct {
	profile config.Profile
	limits  config.RiskLimits
	sizer   *sizing.PositionSizer
	exits   *exits.Manager
	tracker *exposure.Tracker
	monitor *exposure.DailyLossMonitor
	logger  *zap.Logger
}

// New builds an engine from a validated configuration. Configuration problems
// are the only fatal failures; everything at runtime is surfaced in results.
func New(cfg *config.EngineConfig, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	profile, err := config.ProfileFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	limits, err := config.NewRiskLimits(cfg, profile)
	if err != nil {
		return nil, err
	}

	tracker := exposure.NewTracker(limits, cfg.AccountSize, logger)
	monitor := exposure.NewDailyLossMonitor(limits, logger)

	return &Engine{
		profile: profile,
		limits:  limits,
		sizer:   sizing.NewPositionSizer(limits, profile, tracker, monitor, logger),
		exits:   exits.NewManager(profile, logger),
		tracker: tracker,
		monitor: monitor,
		logger:  logger,
	}, nil
}

// Size computes a sizing decision without reserving exposure.
func (e *Engine) Size(signal types.SignalContext, market types.MarketContext, correlation types.CorrelationView, snapshot types.PortfolioSnapshot, asOf time.Time) types.SizingResult {
	return e.sizer.Size(signal, market, correlation, snapshot, asOf)
}

// SizeAndReserve sizes a signal and reserves the computed value in one step.
// The tracker's reserve re-checks the limits under its own lock, so a
// concurrent sizing call that won the race turns this one into a normal
// no-trade result instead of an overcommit.
func (e *Engine) SizeAndReserve(signal types.SignalContext, market types.MarketContext, correlation types.CorrelationView, snapshot types.PortfolioSnapshot, asOf time.Time) (types.SizingResult, error) {
	result := e.sizer.Size(signal, market, correlation, snapshot, asOf)
	if result.NoTrade {
		return result, nil
	}

	if err := e.tracker.Reserve(signal.InstrumentID, result.PositionValue); err != nil {
		e.logger.Warn("reservation lost to concurrent sizing",
			zap.String("instrument", signal.InstrumentID),
			zap.Float64("position_value", result.PositionValue),
			zap.Error(err))
		result.NoTrade = true
		result.Reason = sizing.ReasonInsufficientHeadroom
		result.Contracts = 0
		result.PositionValue = 0
	}

	return result, nil
}

// OpenPosition builds the tracked position for a filled sizing decision,
// attaching the profile's exit plan.
func (e *Engine) OpenPosition(signal types.SignalContext, result types.SizingResult, entryTime, expiration time.Time, initialStop float64) *types.Position {
	return types.NewPosition(signal, result.Contracts, result.PositionValue, entryTime, expiration, initialStop, e.profile.ExitTiers)
}

// EvaluateExit processes one price tick for a position.
func (e *Engine) EvaluateExit(pos *types.Position, price float64, asOf time.Time) (types.ExitAction, error) {
	return e.exits.Evaluate(pos, price, asOf)
}

// ApplyCloseFill releases exposure for a closing fill, records realized PnL
// against the daily loss limits, and retires fully closed positions.
func (e *Engine) ApplyCloseFill(pos *types.Position, fill types.Fill, asOf time.Time) {
	e.tracker.Release(fill.InstrumentID, fill.Amount)
	e.monitor.RecordPnL(asOf, fill.RealizedPnL)
	if pos != nil && pos.State == types.PositionClosed {
		e.exits.Forget(pos.ID)
	}
}

// ResetEmergency clears the emergency halt after operator intervention.
func (e *Engine) ResetEmergency() {
	e.monitor.ResetEmergency()
}

// Limits returns the derived risk limits.
func (e *Engine) Limits() config.RiskLimits { return e.limits }

// Profile returns the active variant profile.
func (e *Engine) Profile() config.Profile { return e.profile }

// Tracker exposes the exposure tracker for the order-management layer.
func (e *Engine) Tracker() *exposure.Tracker { return e.tracker }

// Monitor exposes the daily loss monitor.
func (e *Engine) Monitor() *exposure.DailyLossMonitor { return e.monitor }
