package types

import (
	"time"

	"github.com/google/uuid"
)

// ContractMultiplier is the standard US equity option contract size.
const ContractMultiplier = 100.0

// PositionSide indicates the direction of the option position.
type PositionSide string

const (
	SideLong  PositionSide = "LONG"
	SideShort PositionSide = "SHORT"
)

// PositionState tracks the lifecycle of an open position.
type PositionState string

const (
	PositionOpen            PositionState = "OPEN"
	PositionPartiallyClosed PositionState = "PARTIALLY_CLOSED"
	PositionClosed          PositionState = "CLOSED"
)

// Tier is one step of a tiered take-profit plan. CloseFraction is expressed
// against the original position size, so the fractions of a plan sum to 1.0.
type Tier struct {
	ProfitThreshold float64 `json:"profit_threshold"`
	CloseFraction   float64 `json:"close_fraction"`
	Triggered       bool    `json:"triggered"`
}

// Position is an open options position managed by the exit engine.
// It is created once at trade entry and mutated tier-by-tier on price updates.
type Position struct {
	ID             string
	InstrumentID   string
	Symbol         string
	Side           PositionSide
	EntryPrice     float64 // per-share premium at entry
	Contracts      int
	OriginalSize   float64 // dollars committed at entry
	EntryTime      time.Time
	Expiration     time.Time
	CurrentPrice   float64
	ClosedFraction float64
	InitialStop    float64
	TrailingStop   float64
	Tiers          []Tier
	State          PositionState
}

// NewPosition builds an open position with a fresh ID and a copy of the exit plan.
func NewPosition(signal SignalContext, contracts int, size float64, entryTime, expiration time.Time, initialStop float64, tiers []Tier) *Position {
	plan := make([]Tier, len(tiers))
	copy(plan, tiers)

	return &Position{
		ID:           uuid.New().String(),
		InstrumentID: signal.InstrumentID,
		Symbol:       signal.Symbol,
		Side:         signal.Side,
		EntryPrice:   signal.OptionPremium,
		Contracts:    contracts,
		OriginalSize: size,
		EntryTime:    entryTime,
		Expiration:   expiration,
		CurrentPrice: signal.OptionPremium,
		InitialStop:  initialStop,
		Tiers:        plan,
		State:        PositionOpen,
	}
}

// RemainingContracts returns the whole contracts still open after partial closes.
func (p *Position) RemainingContracts() int {
	closed := 0
	for _, tier := range p.Tiers {
		if tier.Triggered {
			closed += TierContracts(p.Contracts, tier.CloseFraction)
		}
	}
	remaining := p.Contracts - closed
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// RemainingSize returns the dollar value still open, measured against the
// original position size.
func (p *Position) RemainingSize() float64 {
	remaining := p.OriginalSize * (1.0 - p.ClosedFraction)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DaysToExpiration returns whole calendar days until expiration, rounding up so
// that a position expiring tomorrow morning still counts as one day out.
func (p *Position) DaysToExpiration(asOf time.Time) int {
	if p.Expiration.IsZero() || !asOf.Before(p.Expiration) {
		return 0
	}
	hours := p.Expiration.Sub(asOf).Hours()
	days := int(hours / 24)
	if hours-float64(days)*24 > 0 {
		days++
	}
	return days
}

// TierContracts converts a tier close fraction into a whole contract count.
func TierContracts(totalContracts int, fraction float64) int {
	contracts := int(float64(totalContracts)*fraction + 0.5)
	if contracts < 1 && fraction > 0 && totalContracts > 0 {
		contracts = 1
	}
	if contracts > totalContracts {
		contracts = totalContracts
	}
	return contracts
}
