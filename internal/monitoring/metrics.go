package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sizing metrics
	sizingDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_sizing_decisions_total",
			Help: "Total number of sizing decisions by outcome",
		},
		[]string{"variant", "outcome"},
	)

	positionValue = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "risk_engine_position_value_dollars",
			Help:    "Distribution of sized position values",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 8),
		},
		[]string{"variant"},
	)

	// Exit metrics
	exitActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_exit_actions_total",
			Help: "Total number of exit actions by type",
		},
		[]string{"variant", "action"},
	)

	// Exposure metrics
	portfolioExposure = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_engine_portfolio_exposure_dollars",
			Help: "Total dollars currently reserved across all instruments",
		},
	)

	instrumentExposure = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_engine_instrument_exposure_dollars",
			Help: "Dollars currently reserved per instrument",
		},
		[]string{"instrument"},
	)

	// Halt metrics
	haltState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "risk_engine_halt_state",
			Help: "1 when the named halt is active, 0 otherwise",
		},
		[]string{"kind"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(sizingDecisionsTotal)
	prometheus.MustRegister(positionValue)
	prometheus.MustRegister(exitActionsTotal)
	prometheus.MustRegister(portfolioExposure)
	prometheus.MustRegister(instrumentExposure)
	prometheus.MustRegister(haltState)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordSizingDecision records a sizing decision outcome
func RecordSizingDecision(variant, outcome string) {
	sizingDecisionsTotal.WithLabelValues(variant, outcome).Inc()
}

// ObservePositionValue records the dollar value of a sized position
func ObservePositionValue(variant string, value float64) {
	positionValue.WithLabelValues(variant).Observe(value)
}

// RecordExitAction records an exit engine action
func RecordExitAction(variant, action string) {
	exitActionsTotal.WithLabelValues(variant, action).Inc()
}

// UpdateExposure updates the exposure gauges after a reserve or release
func UpdateExposure(instrument string, instrumentDollars, totalDollars float64) {
	instrumentExposure.WithLabelValues(instrument).Set(instrumentDollars)
	portfolioExposure.Set(totalDollars)
}

// UpdateHaltState flips a halt gauge
func UpdateHaltState(kind string, active bool) {
	value := 0.0
	if active {
		value = 1.0
	}
	haltState.WithLabelValues(kind).Set(value)
}
