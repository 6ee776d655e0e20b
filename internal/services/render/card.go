package render

import (
	"fmt"
	"math"
	"strings"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/market"
)

// Config is the injectable presentation policy.
type Config struct {
	Tiers            []Tier
	DefaultPrecision int            // decimal places for price strings
	PricePrecision   map[string]int // per-asset override
	Disclaimer       string
}

func (c Config) withDefaults() Config {
	if len(c.Tiers) == 0 {
		c.Tiers = DefaultTiers()
	}
	if c.DefaultPrecision <= 0 {
		c.DefaultPrecision = 5
	}
	if c.Disclaimer == "" {
		c.Disclaimer = "Not financial advice. Trade responsibly."
	}
	return c
}

// PrecisionFor returns the decimal places for an asset's prices: explicit
// override, JPY convention (3), or the FX default.
func (c Config) PrecisionFor(asset string) int {
	if p, ok := c.PricePrecision[asset]; ok && p > 0 {
		return p
	}
	if strings.Contains(strings.ToUpper(asset), "JPY") {
		return 3
	}
	return c.DefaultPrecision
}

var stateLabels = map[models.LifecycleState]struct{ label, class string }{
	models.StateWaitingForEntry: {"Waiting for entry", "waiting"},
	models.StateEntryHit:        {"Active", "active"},
	models.StateTPHit:           {"Target hit", "tp-hit"},
	models.StateSLHit:           {"Stopped out", "sl-hit"},
	models.StateExpired:         {"Expired", "expired"},
	models.StateCancelled:       {"Cancelled", "cancelled"},
	models.StateUnknown:         {"Unknown", "unknown"},
}

// ToCard projects a normalized signal into the flat card view model. Pure and
// deterministic: identical inputs yield identical output.
//
// Terminal signals render read-only: Live is false, the countdown is zeroed,
// and the advisory marks the card as historical. A resolved signal must never
// look tradeable.
func ToCard(sig models.NormalizedSignal, cfg Config) models.CardViewModel {
	cfg = cfg.withDefaults()
	prec := cfg.PrecisionFor(sig.Asset)
	tier := TierFor(sig.Confidence, cfg.Tiers)
	st := stateLabels[sig.State]

	vm := models.CardViewModel{
		Asset:          sig.Asset,
		DirectionText:  directionText(sig.Direction),
		DirectionClass: strings.ToLower(string(sig.Direction)),
		EntryZone:      formatEntryZone(sig, prec),
		TP:             formatPrice(sig.TP, prec),
		SL:             formatPrice(sig.SL, prec),
		Timeframe:      sig.Timeframe,
		Session:        market.SessionDisplayName(sig.Session),
		Strategy:       sig.Strategy,
		Confidence:     sig.Confidence,
		TierLabel:      tier.Label,
		TierClass:      tier.Class,
		RiskReward:     sig.RiskReward,
		TargetPips:     fmt.Sprintf("%+.1f pips", sig.TargetPips),
		StateLabel:     st.label,
		StateClass:     st.class,
		Live:           sig.State.Open(),
		Disclaimer:     cfg.Disclaimer,
	}

	if sig.State.Open() {
		vm.ExpiryPercent = int(math.Round(sig.ExpiryPercent))
		vm.MinutesRemaining = minutesRemaining(sig)
	} else {
		vm.ExpiryPercent = 100
	}

	switch {
	case sig.State == models.StateExpired:
		vm.Advisory = "Signal expired – historical record only"
	case sig.State == models.StateCancelled:
		vm.Advisory = "Signal cancelled – historical record only"
	default:
		vm.Advisory = tier.Advisory
	}
	return vm
}

// PlaceholderCard is the single stable rendering used whenever a record fails
// normalization. The shell shows this instead of crashing or going blank.
func PlaceholderCard(cfg Config) models.CardViewModel {
	cfg = cfg.withDefaults()
	return models.CardViewModel{
		Asset:          "—",
		DirectionText:  "—",
		DirectionClass: "none",
		StateLabel:     "No valid signal data available",
		StateClass:     "error",
		ExpiryPercent:  0,
		Disclaimer:     cfg.Disclaimer,
	}
}

func directionText(d models.Direction) string {
	if d == models.DirectionBuy {
		return "🟢 BUY"
	}
	return "🔴 SELL"
}

func formatPrice(p float64, prec int) string {
	return fmt.Sprintf("%.*f", prec, p)
}

func formatEntryZone(sig models.NormalizedSignal, prec int) string {
	if sig.EntryLow == sig.EntryHigh {
		return formatPrice(sig.EntryMid, prec)
	}
	return formatPrice(sig.EntryLow, prec) + " – " + formatPrice(sig.EntryHigh, prec)
}

func minutesRemaining(sig models.NormalizedSignal) int {
	rem := sig.ValidityMinutes - sig.AgeMinutes
	if rem <= 0 {
		return 0
	}
	return int(math.Ceil(rem))
}
