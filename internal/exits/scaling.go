package exits

import (
	"time"

	"github.com/ducminhle1904/options-risk-engine/pkg/config"
)

// ScaleStep maps an inclusive upper bound to a multiplier. Steps are data so
// each table is independently testable, mirroring the confidence tier table.
type ScaleStep struct {
	UpTo   float64
	Factor float64
}

// dteSteps compresses profit targets as expiration approaches: theta decay
// makes waiting for the full move a losing proposition.
var dteSteps = []ScaleStep{
	{UpTo: 1, Factor: 0.40},
	{UpTo: 2, Factor: 0.60},
	{UpTo: 3, Factor: 0.75},
	{UpTo: 5, Factor: 0.90},
}

// DTEScale returns the tier threshold multiplier for the given days to
// expiration. Beyond five days targets are unscaled.
func DTEScale(daysToExpiration int) float64 {
	for _, step := range dteSteps {
		if float64(daysToExpiration) <= step.UpTo {
			return step.Factor
		}
	}
	return 1.0
}

// riskRewardSteps raise the reward target as a position proves itself.
var riskRewardSteps = []ScaleStep{
	{UpTo: 0.15, Factor: 1.5},
	{UpTo: 0.30, Factor: 2.0},
}

// RiskRewardRatio returns the reward-to-risk multiple used to project the
// take-profit price from realized risk, stepping up with achieved profit.
func RiskRewardRatio(profitPct float64) float64 {
	for _, step := range riskRewardSteps {
		if profitPct < step.UpTo {
			return step.Factor
		}
	}
	return 3.0
}

// TrailingLockFraction returns what fraction of current gains the trailing
// stop should protect at this profit level. Zero means keep the initial stop.
func TrailingLockFraction(profitPct float64) float64 {
	switch {
	case profitPct > 0.30:
		return 0.50
	case profitPct > 0.15:
		return 0.25
	default:
		return 0
	}
}

// Zero-DTE entry buckets. A late entry has less of the session left to work
// with, so its profit targets are compressed from the start.
const (
	middayStartMinutes  = 12 * 60            // 12:00
	lateDayStartMinutes = 14*60 + 30         // 14:30
)

// EntryTimeFactor returns the tier compression for a same-day position based
// on when during the session it was opened.
func EntryTimeFactor(entryTime time.Time) float64 {
	minutes := entryTime.Hour()*60 + entryTime.Minute()
	switch {
	case minutes >= lateDayStartMinutes:
		return config.ZeroDTELateDayCompression
	case minutes >= middayStartMinutes:
		return config.ZeroDTEMiddayCompression
	default:
		return 1.0
	}
}

// AgeFactor compresses targets a further notch once a same-day position has
// been open past the aged cutoff.
func AgeFactor(age time.Duration) float64 {
	if age > config.AgedPositionCutoff {
		return config.ZeroDTEAgedCompression
	}
	return 1.0
}
