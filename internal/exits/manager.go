package exits

import (
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	engerrors "github.com/ducminhle1904/options-risk-engine/internal/errors"
	"github.com/ducminhle1904/options-risk-engine/internal/monitoring"
	"github.com/ducminhle1904/options-risk-engine/pkg/config"
	"github.com/ducminhle1904/options-risk-engine/pkg/types"
)

const closedEpsilon = 1e-9

// Manager drives the per-position exit state machine: tiered take-profit with
// partial closes, threshold scaling, trailing stops and dynamic risk-reward.
// Evaluations of the same position are strictly serialized; tier triggering
// mutates the position, and two near-simultaneous ticks must never
// double-trigger a tier.
type Manager struct {
	profile config.Profile
	logger  *zap.Logger

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	scales map[string]*scaleState
}

// scaleState caches the threshold scale so it is recomputed once per trading
// day (weekly) or when the age bucket flips (zero-DTE), not on every tick.
type scaleState struct {
	factor     float64
	computedOn string
}

// NewManager creates an exit manager for the given profile.
func NewManager(profile config.Profile, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		profile: profile,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
		scales:  make(map[string]*scaleState),
	}
}

// Evaluate processes one price update for a position and returns the action
// the caller should take. At most one tier triggers per evaluation; if price
// gaps past several thresholds the remaining tiers trigger on successive
// evaluations of the same price, so no tier is ever skipped. Per-position
// bookkeeping is released automatically once a position reaches the closed
// state; positions retired any other way must be handed to Forget.
func (m *Manager) Evaluate(pos *types.Position, price float64, asOf time.Time) (types.ExitAction, error) {
	if pos == nil {
		return types.ExitAction{}, engerrors.NewEngineError(engerrors.ErrorCategoryValidation, "exit_manager", "evaluate", "position is nil")
	}
	if price <= 0 || math.IsNaN(price) {
		return types.ExitAction{}, engerrors.NewEngineError(engerrors.ErrorCategoryValidation, "exit_manager", "evaluate",
			fmt.Sprintf("price must be positive, got: %.4f", price))
	}

	lock := m.positionLock(pos.ID)
	lock.Lock()
	defer lock.Unlock()

	action := types.ExitAction{Type: types.ExitHold, TierIndex: -1}

	if pos.State == types.PositionClosed {
		action.Reason = "position already closed"
		m.Forget(pos.ID)
		return action, nil
	}

	pos.CurrentPrice = price
	profit := profitPct(pos, price)
	action.ProfitPct = profit

	// Stop handling: the effective stop may only tighten over the life of a
	// winning position.
	if pos.InitialStop > 0 {
		if m.profile.TrailingStop {
			m.updateTrailingStop(pos, profit)
		}
		stop := effectiveStop(pos)
		action.StopPrice = stop
		if stopHit(pos, price, stop) {
			return m.closeRemainder(pos, action, fmt.Sprintf("stop hit at $%.4f", stop)), nil
		}
	}

	if m.profile.DynamicRiskReward && pos.InitialStop > 0 {
		risk := math.Abs(pos.EntryPrice - pos.InitialStop)
		ratio := RiskRewardRatio(profit)
		if pos.Side == types.SideShort {
			action.TargetPrice = pos.EntryPrice - risk*ratio
		} else {
			action.TargetPrice = pos.EntryPrice + risk*ratio
		}
	}

	scale := m.thresholdScale(pos, asOf)

	idx := nextTierIndex(pos.Tiers, profit, scale)
	if idx < 0 {
		return action, nil
	}

	remaining := pos.RemainingContracts()
	tier := &pos.Tiers[idx]
	tier.Triggered = true

	contracts := types.TierContracts(pos.Contracts, tier.CloseFraction)
	if contracts > remaining {
		contracts = remaining
	}

	pos.ClosedFraction += tier.CloseFraction
	if pos.ClosedFraction >= 1.0-closedEpsilon {
		pos.ClosedFraction = 1.0
		pos.State = types.PositionClosed
		contracts = remaining // close whatever is left, no dust
	} else {
		pos.State = types.PositionPartiallyClosed
	}

	action.Type = types.ExitPartialClose
	action.CloseFraction = tier.CloseFraction
	action.Contracts = contracts
	action.TierIndex = idx
	action.Reason = fmt.Sprintf("profit tier %d reached at %.1f%%", idx+1, profit*100)

	monitoring.RecordExitAction(string(m.profile.Variant), string(action.Type))

	m.logger.Info("profit tier triggered",
		zap.String("position", pos.ID),
		zap.String("symbol", pos.Symbol),
		zap.Int("tier", idx+1),
		zap.Float64("profit_pct", profit),
		zap.Float64("close_fraction", tier.CloseFraction),
		zap.Int("contracts", contracts),
		zap.Float64("closed_fraction", pos.ClosedFraction))

	if pos.State == types.PositionClosed {
		m.Forget(pos.ID)
	}

	return action, nil
}

// Forget releases the per-position bookkeeping. Evaluate calls this itself
// when a position closes; it is needed for positions retired without closing
// through the manager, such as expiry or a manual broker close.
func (m *Manager) Forget(positionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, positionID)
	delete(m.scales, positionID)
}

func (m *Manager) positionLock(positionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[positionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[positionID] = lock
	}
	return lock
}

// closeRemainder closes everything still open, marking all tiers done.
func (m *Manager) closeRemainder(pos *types.Position, action types.ExitAction, reason string) types.ExitAction {
	remaining := pos.RemainingContracts()
	closedFraction := 1.0 - pos.ClosedFraction

	pos.ClosedFraction = 1.0
	pos.State = types.PositionClosed

	action.Type = types.ExitClose
	action.CloseFraction = closedFraction
	action.Contracts = remaining
	action.Reason = reason

	monitoring.RecordExitAction(string(m.profile.Variant), string(action.Type))

	m.logger.Info("position closed",
		zap.String("position", pos.ID),
		zap.String("symbol", pos.Symbol),
		zap.Float64("profit_pct", action.ProfitPct),
		zap.Int("contracts", remaining),
		zap.String("reason", reason))

	m.Forget(pos.ID)

	return action
}

// thresholdScale returns the multiplier applied to every tier threshold of
// this position, cached so it is not recomputed per tick.
func (m *Manager) thresholdScale(pos *types.Position, asOf time.Time) float64 {
	switch {
	case m.profile.DTEScaling:
		key := asOf.UTC().Format("2006-01-02")
		return m.cachedScale(pos.ID, key, func() float64 {
			return DTEScale(pos.DaysToExpiration(asOf))
		})
	case m.profile.TimeCompression:
		key := "fresh"
		if asOf.Sub(pos.EntryTime) > config.AgedPositionCutoff {
			key = "aged"
		}
		return m.cachedScale(pos.ID, key, func() float64 {
			return EntryTimeFactor(pos.EntryTime) * AgeFactor(asOf.Sub(pos.EntryTime))
		})
	default:
		return 1.0
	}
}

func (m *Manager) cachedScale(positionID, key string, compute func() float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.scales[positionID]
	if ok && state.computedOn == key {
		return state.factor
	}
	factor := compute()
	m.scales[positionID] = &scaleState{factor: factor, computedOn: key}
	return factor
}

// updateTrailingStop ratchets the trailing stop in the trade's favor. It
// never loosens.
func (m *Manager) updateTrailingStop(pos *types.Position, profit float64) {
	lockFraction := TrailingLockFraction(profit)
	if lockFraction <= 0 {
		return
	}

	if pos.Side == types.SideShort {
		candidate := pos.EntryPrice * (1.0 - profit*lockFraction)
		if pos.TrailingStop == 0 || candidate < pos.TrailingStop {
			pos.TrailingStop = candidate
		}
		return
	}

	candidate := pos.EntryPrice * (1.0 + profit*lockFraction)
	if candidate > pos.TrailingStop {
		pos.TrailingStop = candidate
	}
}

// nextTierIndex finds the first untriggered tier whose scaled threshold the
// current profit satisfies. Tiers are scanned in ascending threshold order.
func nextTierIndex(tiers []types.Tier, profit, scale float64) int {
	for i, tier := range tiers {
		if tier.Triggered {
			continue
		}
		if profit+1e-12 >= tier.ProfitThreshold*scale {
			return i
		}
		return -1 // thresholds ascend; nothing later can be met either
	}
	return -1
}

// profitPct returns the signed profit fraction, positive when the position is
// winning, for either side.
func profitPct(pos *types.Position, price float64) float64 {
	if pos.EntryPrice <= 0 {
		return 0
	}
	raw := (price - pos.EntryPrice) / pos.EntryPrice
	if pos.Side == types.SideShort {
		return -raw
	}
	return raw
}

// effectiveStop combines the initial and trailing stops so the result may only
// tighten.
func effectiveStop(pos *types.Position) float64 {
	if pos.Side == types.SideShort {
		if pos.TrailingStop > 0 && pos.TrailingStop < pos.InitialStop {
			return pos.TrailingStop
		}
		return pos.InitialStop
	}
	return math.Max(pos.InitialStop, pos.TrailingStop)
}

func stopHit(pos *types.Position, price, stop float64) bool {
	if stop <= 0 {
		return false
	}
	if pos.Side == types.SideShort {
		return price >= stop
	}
	return price <= stop
}
