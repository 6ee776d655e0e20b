package render

import "SignalDesk/internal/domain/models"

// Tier is one row of the confidence policy table.
type Tier struct {
	MinConfidence int    `yaml:"min_confidence"`
	Label         string `yaml:"label"`
	Class         string `yaml:"class"`
	Severity      int    `yaml:"severity"`
	Advisory      string `yaml:"advisory"`
}

// DefaultTiers returns the built-in policy, ordered by descending threshold.
// Severity is strictly monotonic in confidence: a higher score never lands in
// a weaker tier.
func DefaultTiers() []Tier {
	return []Tier{
		{MinConfidence: 95, Label: "ELITE", Class: "elite", Severity: 3},
		{MinConfidence: 85, Label: "HIGH", Class: "high", Severity: 2},
		{MinConfidence: 60, Label: "MEDIUM", Class: "medium", Severity: 1,
			Advisory: "Lower confidence – observation only"},
		{MinConfidence: 0, Label: "LOW", Class: "low", Severity: 0,
			Advisory: "Low confidence – no trade, observation only"},
	}
}

// TierFor buckets a confidence score. tiers must be ordered by descending
// MinConfidence; the first threshold at or below the score wins. An empty or
// exhausted table falls through to the last tier.
func TierFor(confidence int, tiers []Tier) models.ConfidenceTier {
	if len(tiers) == 0 {
		tiers = DefaultTiers()
	}
	chosen := tiers[len(tiers)-1]
	for _, t := range tiers {
		if confidence >= t.MinConfidence {
			chosen = t
			break
		}
	}
	return models.ConfidenceTier{
		Label:    chosen.Label,
		Class:    chosen.Class,
		Severity: chosen.Severity,
		Advisory: chosen.Advisory,
	}
}
