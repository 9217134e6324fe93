package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"veridoc/internal/domain"
)

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		score int
		want  domain.Band
	}{
		{0, domain.BandLow},
		{29, domain.BandLow},
		{30, domain.BandLow},
		{31, domain.BandMedium},
		{70, domain.BandMedium},
		{71, domain.BandHigh},
		{100, domain.BandHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %d", tt.score)
	}
}

func TestClassifyIsTotal(t *testing.T) {
	for score := 0; score <= 100; score++ {
		band := Classify(score)
		assert.Contains(t, []domain.Band{domain.BandLow, domain.BandMedium, domain.BandHigh}, band)
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		raw  float64
		want int
	}{
		{0, 0},
		{84.5, 85},
		{84.4, 84},
		{-3, 0},
		{250, 100},
		{100, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampScore(tt.raw), "raw %v", tt.raw)
	}
}

func TestAssessDerivesBandFromClampedScore(t *testing.T) {
	got := Assess(85)
	assert.Equal(t, domain.FraudAssessment{Score: 85, Band: domain.BandHigh}, got)

	got = Assess(-10)
	assert.Equal(t, domain.FraudAssessment{Score: 0, Band: domain.BandLow}, got)
}
