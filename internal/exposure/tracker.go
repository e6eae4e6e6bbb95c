package exposure

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	engerrors "github.com/ducminhle1904/options-risk-engine/internal/errors"
	"github.com/ducminhle1904/options-risk-engine/internal/monitoring"
	"github.com/ducminhle1904/options-risk-engine/pkg/config"
)

// ReservationEvent records one exposure change for audit history.
type ReservationEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	EventType    string    `json:"event_type"` // RESERVE, RELEASE
	InstrumentID string    `json:"instrument_id"`
	Amount       float64   `json:"amount"`
	Description  string    `json:"description"`
}

// Tracker maintains current allocation per instrument and the portfolio total.
// It is the only engine component with externally visible mutable state, and
// Reserve performs its limit check and the reservation under one lock so two
// concurrent sizing calls can never jointly overcommit.
type Tracker struct {
	mu             sync.RWMutex
	limits         config.RiskLimits
	portfolioValue float64
	allocations    map[string]float64
	totalReserved  float64
	history        []ReservationEvent
	logger         *zap.Logger
}

// NewTracker creates a tracker for a portfolio of the given current value.
func NewTracker(limits config.RiskLimits, portfolioValue float64, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		limits:         limits,
		portfolioValue: portfolioValue,
		allocations:    make(map[string]float64),
		history:        make([]ReservationEvent, 0),
		logger:         logger,
	}
}

// Reserve atomically checks headroom and commits the reservation. A limit
// breach leaves state untouched and returns a categorized error.
func (t *Tracker) Reserve(instrumentID string, amount float64) error {
	if amount <= 0 {
		return engerrors.NewEngineError(engerrors.ErrorCategoryValidation, "exposure_tracker", "reserve",
			fmt.Sprintf("reservation amount must be positive, got: %.2f", amount))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if amount > t.instrumentHeadroomLocked(instrumentID)+1e-9 {
		return engerrors.NewLimitBreachError("exposure_tracker",
			fmt.Sprintf("reserving $%.2f for %s would exceed the per-instrument limit (headroom $%.2f)",
				amount, instrumentID, t.instrumentHeadroomLocked(instrumentID)))
	}
	if amount > t.totalHeadroomLocked()+1e-9 {
		return engerrors.NewLimitBreachError("exposure_tracker",
			fmt.Sprintf("reserving $%.2f for %s would exceed the portfolio limit (headroom $%.2f)",
				amount, instrumentID, t.totalHeadroomLocked()))
	}

	t.allocations[instrumentID] += amount
	t.totalReserved += amount
	t.recordEventLocked("RESERVE", instrumentID, amount,
		fmt.Sprintf("Reserved $%.2f, instrument total $%.2f", amount, t.allocations[instrumentID]))
	monitoring.UpdateExposure(instrumentID, t.allocations[instrumentID], t.totalReserved)

	t.logger.Debug("exposure reserved",
		zap.String("instrument", instrumentID),
		zap.Float64("amount", amount),
		zap.Float64("total_reserved", t.totalReserved))

	return nil
}

// Release returns capacity after a close or partial close. Releasing more than
// is allocated clamps to zero rather than going negative.
func (t *Tracker) Release(instrumentID string, amount float64) {
	if amount <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	current := t.allocations[instrumentID]
	if amount > current {
		amount = current
	}
	t.allocations[instrumentID] = current - amount
	t.totalReserved -= amount
	if t.totalReserved < 0 {
		t.totalReserved = 0
	}
	if t.allocations[instrumentID] <= 0 {
		delete(t.allocations, instrumentID)
	}
	t.recordEventLocked("RELEASE", instrumentID, amount,
		fmt.Sprintf("Released $%.2f, instrument total $%.2f", amount, t.allocations[instrumentID]))
	monitoring.UpdateExposure(instrumentID, t.allocations[instrumentID], t.totalReserved)
}

// Headroom returns remaining capacity for one instrument before its limit.
func (t *Tracker) Headroom(instrumentID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.instrumentHeadroomLocked(instrumentID)
}

// HeadroomTotal returns remaining capacity before the portfolio-wide limit.
func (t *Tracker) HeadroomTotal() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalHeadroomLocked()
}

// Allocation returns the dollars currently reserved for one instrument.
func (t *Tracker) Allocation(instrumentID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.allocations[instrumentID]
}

// TotalReserved returns the dollars reserved across all instruments.
func (t *Tracker) TotalReserved() float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalReserved
}

// SetPortfolioValue refreshes the portfolio value the limits are computed from.
func (t *Tracker) SetPortfolioValue(value float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.portfolioValue = value
}

// History returns a copy of the reservation event history.
func (t *Tracker) History() []ReservationEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()
	events := make([]ReservationEvent, len(t.history))
	copy(events, t.history)
	return events
}

func (t *Tracker) instrumentHeadroomLocked(instrumentID string) float64 {
	headroom := t.limits.MaxPerInstrumentPct*t.portfolioValue - t.allocations[instrumentID]
	if headroom < 0 {
		return 0
	}
	return headroom
}

func (t *Tracker) totalHeadroomLocked() float64 {
	headroom := t.limits.MaxPortfolioExposurePct*t.portfolioValue - t.totalReserved
	if headroom < 0 {
		return 0
	}
	return headroom
}

func (t *Tracker) recordEventLocked(eventType, instrumentID string, amount float64, description string) {
	t.history = append(t.history, ReservationEvent{
		Timestamp:    time.Now(),
		EventType:    eventType,
		InstrumentID: instrumentID,
		Amount:       amount,
		Description:  description,
	})
}
