package monitoring

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthSnapshot is the engine state the health endpoint reports.
type HealthSnapshot struct {
	TradingDate     string  `json:"trading_date"`
	DailyPnL        float64 `json:"daily_pnl"`
	DailyHalted     bool    `json:"daily_halted"`
	EmergencyHalted bool    `json:"emergency_halted"`
	TotalReserved   float64 `json:"total_reserved"`
}

// HealthSource supplies the current snapshot on each request.
type HealthSource func(now time.Time) HealthSnapshot

// HealthStatus is the JSON body served by the health endpoint.
type HealthStatus struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Uptime    string    `json:"uptime"`
	HealthSnapshot
}

// HealthHandler serves engine health over HTTP. A daily halt degrades the
// status, an emergency halt fails it.
type HealthHandler struct {
	start  time.Time
	source HealthSource
}

// NewHealthHandler creates a health endpoint backed by the given source.
func NewHealthHandler(source HealthSource) *HealthHandler {
	return &HealthHandler{
		start:  time.Now(),
		source: source,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	snapshot := h.source(now)

	w.Header().Set("Content-Type", "application/json")

	status := "healthy"
	switch {
	case snapshot.EmergencyHalted:
		status = "halted"
		w.WriteHeader(http.StatusServiceUnavailable)
	case snapshot.DailyHalted:
		status = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(HealthStatus{
		Status:         status,
		Timestamp:      now,
		Uptime:         now.Sub(h.start).String(),
		HealthSnapshot: snapshot,
	})
}
