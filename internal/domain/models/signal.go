package models

import (
	"fmt"
	"time"
)

// RawSignal is one upstream record as decoded from JSON. Upstream schemas
// drift release to release, so nothing here is trusted: fields may be absent,
// renamed, or typed differently (string vs number, scalar vs zone).
type RawSignal map[string]any

// Direction of a trade recommendation.
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// LifecycleState is the resolved stage of a signal's life.
type LifecycleState string

const (
	StateWaitingForEntry LifecycleState = "WAITING_FOR_ENTRY"
	StateEntryHit        LifecycleState = "ENTRY_HIT"
	StateTPHit           LifecycleState = "TP_HIT"
	StateSLHit           LifecycleState = "SL_HIT"
	StateExpired         LifecycleState = "EXPIRED"
	StateCancelled       LifecycleState = "CANCELLED"
	StateUnknown         LifecycleState = "UNKNOWN"
)

// Terminal reports whether the state can no longer change. A terminal signal
// is historical: it must never be rendered as tradeable again.
func (s LifecycleState) Terminal() bool {
	switch s {
	case StateTPHit, StateSLHit, StateExpired, StateCancelled:
		return true
	default:
		return false
	}
}

// Open reports whether the signal is still live (waiting or active).
func (s LifecycleState) Open() bool {
	return s == StateWaitingForEntry || s == StateEntryHit
}

// NormalizedSignal is the canonical internal model built from one RawSignal.
// Constructed fresh per fetch and never mutated after construction.
//
// Invariants: Asset is non-empty, Direction is BUY or SELL, Confidence is an
// integer in [0,100], EntryMid is finite, AgeMinutes >= 0, State is one of the
// LifecycleState constants.
type NormalizedSignal struct {
	Asset     string    `json:"asset"`
	Direction Direction `json:"direction"`

	EntryLow  float64 `json:"entry_low"`
	EntryHigh float64 `json:"entry_high"`
	EntryMid  float64 `json:"entry_mid"`
	TP        float64 `json:"tp"`
	SL        float64 `json:"sl"`

	Confidence int    `json:"confidence"`
	Timeframe  string `json:"timeframe"`
	Session    string `json:"session"`
	Strategy   string `json:"strategy"`

	GeneratedAt     time.Time `json:"generated_at"`
	ValidityMinutes float64   `json:"validity_minutes"`
	AgeMinutes      float64   `json:"age_minutes"`

	State LifecycleState `json:"state"`

	// Derived presentation metrics.
	RiskDistance   float64 `json:"risk_distance"`
	RewardDistance float64 `json:"reward_distance"`
	RiskReward     string  `json:"risk_reward"` // "1 : X.XX" or "n/a"
	TargetPips     float64 `json:"target_pips"`
	StopPips       float64 `json:"stop_pips"`
	ExpiryPercent  float64 `json:"expiry_percent"`
}

// ID identifies a signal by asset and generation time. The upstream engine
// carries no stable identifier, so this pair stands in for one.
func (s NormalizedSignal) ID() string {
	return fmt.Sprintf("%s@%d", s.Asset, s.GeneratedAt.Unix())
}

// SignalEvent is the wire payload published per refreshed signal.
type SignalEvent struct {
	Asset      string         `json:"asset"`
	Direction  Direction      `json:"direction"`
	EntryMid   float64        `json:"entry_mid"`
	TP         float64        `json:"tp"`
	SL         float64        `json:"sl"`
	Confidence int            `json:"confidence"`
	State      LifecycleState `json:"state"`
	ObservedAt time.Time      `json:"observed_at"`
}
