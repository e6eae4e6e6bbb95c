package exposure

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/options-risk-engine/internal/monitoring"
	"github.com/ducminhle1904/options-risk-engine/pkg/config"
)

// Halt reasons reported to the sizer
const (
	reasonDailyHalt     = "daily loss limit reached"
	reasonEmergencyHalt = "emergency halt active, manual reset required"
)

// HaltStatus is a snapshot of the loss-limit state for one trading day.
type HaltStatus struct {
	TradingDate     string  `json:"trading_date"`
	DailyPnL        float64 `json:"daily_pnl"`
	DailyHalted     bool    `json:"daily_halted"`
	EmergencyHalted bool    `json:"emergency_halted"`
}

// DailyLossMonitor tracks realized PnL per trading day and enforces the two
// account-level loss limits. The daily halt resets on date rollover; the
// emergency halt is sticky until ResetEmergency is called.
type DailyLossMonitor struct {
	mu              sync.Mutex
	limits          config.RiskLimits
	tradingDate     string
	dailyPnL        float64
	dailyHalted     bool
	emergencyHalted bool
	logger          *zap.Logger
}

// NewDailyLossMonitor creates a monitor for the given limits.
func NewDailyLossMonitor(limits config.RiskLimits, logger *zap.Logger) *DailyLossMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyLossMonitor{
		limits: limits,
		logger: logger,
	}
}

// RecordPnL applies a realized profit or loss (negative for losses) and
// updates the halt flags.
func (m *DailyLossMonitor) RecordPnL(ts time.Time, pnl float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rolloverLocked(ts)
	m.dailyPnL += pnl

	// A loss big enough for the emergency halt has also crossed the daily
	// limit, so both flags are evaluated on every call. Otherwise resetting
	// the emergency halt would reopen a day that must stay closed.
	loss := -m.dailyPnL
	if loss >= m.limits.MaxDailyLoss && !m.dailyHalted {
		m.dailyHalted = true
		monitoring.UpdateHaltState("daily", true)
		m.logger.Warn("daily loss limit reached, new entries stopped",
			zap.String("trading_date", m.tradingDate),
			zap.Float64("daily_pnl", m.dailyPnL),
			zap.Float64("max_daily_loss", m.limits.MaxDailyLoss))
	}
	if loss >= m.limits.EmergencyHaltLoss && !m.emergencyHalted {
		m.emergencyHalted = true
		monitoring.UpdateHaltState("emergency", true)
		m.logger.Error("emergency halt triggered",
			zap.String("trading_date", m.tradingDate),
			zap.Float64("daily_pnl", m.dailyPnL),
			zap.Float64("emergency_halt_loss", m.limits.EmergencyHaltLoss))
	}
}

// Halted reports whether new entries are currently forbidden.
func (m *DailyLossMonitor) Halted(asOf time.Time) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rolloverLocked(asOf)
	if m.emergencyHalted {
		return true, reasonEmergencyHalt
	}
	if m.dailyHalted {
		return true, reasonDailyHalt
	}
	return false, ""
}

// Status returns the current loss-limit snapshot.
func (m *DailyLossMonitor) Status(asOf time.Time) HaltStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rolloverLocked(asOf)
	return HaltStatus{
		TradingDate:     m.tradingDate,
		DailyPnL:        m.dailyPnL,
		DailyHalted:     m.dailyHalted,
		EmergencyHalted: m.emergencyHalted,
	}
}

// ResetEmergency clears the emergency halt. Only an explicit caller decision
// may do this; the engine never resets it on its own.
func (m *DailyLossMonitor) ResetEmergency() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emergencyHalted = false
	monitoring.UpdateHaltState("emergency", false)
	m.logger.Warn("emergency halt manually reset")
}

// rolloverLocked resets the per-day state when the trading date changes. The
// emergency halt survives rollover.
func (m *DailyLossMonitor) rolloverLocked(ts time.Time) {
	date := ts.UTC().Format("2006-01-02")
	if date == m.tradingDate {
		return
	}
	m.tradingDate = date
	m.dailyPnL = 0
	if m.dailyHalted {
		m.dailyHalted = false
		monitoring.UpdateHaltState("daily", false)
	}
}
