package sizing

// ConfidenceTier maps a lower confidence bound to a size multiplier. Tiers are
// data rather than branching logic so the thresholds stay independently
// testable and reusable across variants.
type ConfidenceTier struct {
	MinConfidence float64
	Multiplier    float64
}

// DefaultConfidenceTiers returns the standard tier table, ordered descending.
// Evaluation is top-down, first match wins.
func DefaultConfidenceTiers() []ConfidenceTier {
	return []ConfidenceTier{
		{MinConfidence: 0.9, Multiplier: 2.0},
		{MinConfidence: 0.8, Multiplier: 1.5},
		{MinConfidence: 0.7, Multiplier: 1.25},
	}
}

// ConfidenceScaler converts signal confidence into a size multiplier.
type ConfidenceScaler struct {
	tiers []ConfidenceTier
}

// NewConfidenceScaler creates a scaler from a tier table; nil uses the defaults.
func NewConfidenceScaler(tiers []ConfidenceTier) *ConfidenceScaler {
	if len(tiers) == 0 {
		tiers = DefaultConfidenceTiers()
	}
	return &ConfidenceScaler{tiers: tiers}
}

// Factor returns the multiplier for the given confidence. Confidence below
// every tier returns the neutral 1.0.
func (s *ConfidenceScaler) Factor(confidence float64) float64 {
	for _, tier := range s.tiers {
		if confidence >= tier.MinConfidence {
			return tier.Multiplier
		}
	}
	return 1.0
}
