package exits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestDTEScale tests the threshold compression per days to expiration
func TestDTEScale(t *testing.T) {
	tests := []struct {
		days     int
		expected float64
	}{
		{0, 0.40},
		{1, 0.40},
		{2, 0.60},
		{3, 0.75},
		{4, 0.90},
		{5, 0.90},
		{6, 1.0},
		{10, 1.0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, DTEScale(tt.days), "days=%d", tt.days)
	}
}

// TestRiskRewardRatio tests the stepped reward multiple
func TestRiskRewardRatio(t *testing.T) {
	assert.Equal(t, 1.5, RiskRewardRatio(0.05))
	assert.Equal(t, 1.5, RiskRewardRatio(0.149))
	assert.Equal(t, 2.0, RiskRewardRatio(0.15))
	assert.Equal(t, 2.0, RiskRewardRatio(0.29))
	assert.Equal(t, 3.0, RiskRewardRatio(0.30))
	assert.Equal(t, 3.0, RiskRewardRatio(0.80))
}

// TestTrailingLockFraction tests the gain-protection steps
func TestTrailingLockFraction(t *testing.T) {
	assert.Equal(t, 0.0, TrailingLockFraction(0.10))
	assert.Equal(t, 0.0, TrailingLockFraction(0.15))
	assert.Equal(t, 0.25, TrailingLockFraction(0.20))
	assert.Equal(t, 0.25, TrailingLockFraction(0.30))
	assert.Equal(t, 0.50, TrailingLockFraction(0.40))
}

// TestEntryTimeFactor tests the session buckets for same-day entries
func TestEntryTimeFactor(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		clock    time.Duration
		expected float64
	}{
		{"open", 9*time.Hour + 30*time.Minute, 1.0},
		{"just before midday", 11*time.Hour + 59*time.Minute, 1.0},
		{"midday", 12 * time.Hour, 0.85},
		{"afternoon", 14 * time.Hour, 0.85},
		{"late day", 14*time.Hour + 30*time.Minute, 0.70},
		{"near close", 15*time.Hour + 45*time.Minute, 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EntryTimeFactor(day.Add(tt.clock)))
		})
	}
}

// TestAgeFactor tests the extra compression past the aged cutoff
func TestAgeFactor(t *testing.T) {
	assert.Equal(t, 1.0, AgeFactor(time.Hour))
	assert.Equal(t, 1.0, AgeFactor(3*time.Hour))
	assert.Equal(t, 0.9, AgeFactor(3*time.Hour+time.Minute))
}
