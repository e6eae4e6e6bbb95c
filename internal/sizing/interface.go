package sizing

import "time"

// HeadroomSource supplies the remaining exposure capacity before the
// per-instrument and portfolio limits are reached. Implemented by the
// exposure tracker.
type HeadroomSource interface {
	Headroom(instrumentID string) float64
	HeadroomTotal() float64
}

// HaltSource reports whether account-level loss limits currently forbid new
// entries. Implemented by the daily loss monitor.
type HaltSource interface {
	Halted(asOf time.Time) (halted bool, reason string)
}
