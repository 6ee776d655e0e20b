package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierForDefaults(t *testing.T) {
	cases := []struct {
		confidence int
		label      string
		advisory   bool
	}{
		{100, "ELITE", false},
		{95, "ELITE", false},
		{94, "HIGH", false},
		{85, "HIGH", false},
		{84, "MEDIUM", true},
		{60, "MEDIUM", true},
		{55, "LOW", true},
		{0, "LOW", true},
	}
	for _, tc := range cases {
		tier := TierFor(tc.confidence, nil)
		assert.Equal(t, tc.label, tier.Label, "confidence %d", tc.confidence)
		assert.Equal(t, tc.advisory, tier.Advisory != "", "confidence %d", tc.confidence)
	}
}

func TestTierSeverityMonotonic(t *testing.T) {
	prev := -1
	for c := 0; c <= 100; c++ {
		sev := TierFor(c, nil).Severity
		assert.GreaterOrEqual(t, sev, prev, "severity dipped at confidence %d", c)
		prev = sev
	}
}

func TestTierForCustomTable(t *testing.T) {
	tiers := []Tier{
		{MinConfidence: 90, Label: "GO", Severity: 1},
		{MinConfidence: 0, Label: "NO-GO", Severity: 0, Advisory: "stand aside"},
	}
	assert.Equal(t, "GO", TierFor(91, tiers).Label)
	assert.Equal(t, "NO-GO", TierFor(89, tiers).Label)
	assert.Equal(t, "stand aside", TierFor(10, tiers).Advisory)
}
