// Package risk maps numeric fraud scores onto coarse risk bands.
// This is pure domain logic - no I/O, no side effects.
package risk

import (
	"math"

	"veridoc/internal/domain"
)

// Classify maps a fraud score onto a band. Boundaries are exclusive on the
// lower side of each band: exactly 70 is Medium, exactly 30 is Low. Existing
// risk displays depend on these exact cut points.
func Classify(score int) domain.Band {
	switch {
	case score > 70:
		return domain.BandHigh
	case score > 30:
		return domain.BandMedium
	default:
		return domain.BandLow
	}
}

// ClampScore rounds a raw upstream score to the nearest integer and clamps it
// into [0,100]. Every stored fraud score passes through here so the band is
// always derivable from a valid score.
func ClampScore(raw float64) int {
	score := int(math.Round(raw))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Assess builds the canonical score+band pair from a raw upstream score.
func Assess(raw float64) domain.FraudAssessment {
	score := ClampScore(raw)
	return domain.FraudAssessment{Score: score, Band: Classify(score)}
}
