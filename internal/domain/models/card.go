package models

// CardViewModel is a flat, display-ready projection of a NormalizedSignal.
// Only primitive fields; no markup, so the rendering layer owns escaping.
type CardViewModel struct {
	Asset          string `json:"asset"`
	DirectionText  string `json:"direction_text"`  // "🟢 BUY" / "🔴 SELL"
	DirectionClass string `json:"direction_class"` // "buy" / "sell"

	EntryZone string `json:"entry_zone"`
	TP        string `json:"tp"`
	SL        string `json:"sl"`

	Timeframe string `json:"timeframe"`
	Session   string `json:"session"`
	Strategy  string `json:"strategy"`

	Confidence int    `json:"confidence"`
	TierLabel  string `json:"tier_label"`
	TierClass  string `json:"tier_class"`

	RiskReward string `json:"risk_reward"`
	TargetPips string `json:"target_pips"`

	StateLabel string `json:"state_label"`
	StateClass string `json:"state_class"`
	Live       bool   `json:"live"`

	ExpiryPercent    int `json:"expiry_percent"`
	MinutesRemaining int `json:"minutes_remaining"`

	// Advisory is empty unless the confidence tier warns or the signal is
	// expired/cancelled.
	Advisory string `json:"advisory,omitempty"`

	Disclaimer string `json:"disclaimer"`
}

// ConfidenceTier is the named bucket a confidence score falls into. Derived,
// never stored.
type ConfidenceTier struct {
	Label    string `json:"label"`
	Class    string `json:"class"`
	Severity int    `json:"severity"` // higher = stronger signal
	Advisory string `json:"advisory,omitempty"`
}
