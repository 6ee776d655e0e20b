package render

import (
	"fmt"
	"html"
	"math"
	"strings"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/market"
)

// ToTextMessage renders a signal as one Telegram-ready string (HTML parse
// mode). All upstream-derived text is escaped so a hostile asset or strategy
// name cannot break message markup. Pure and deterministic.
func ToTextMessage(sig models.NormalizedSignal, cfg Config) string {
	cfg = cfg.withDefaults()
	prec := cfg.PrecisionFor(sig.Asset)
	tier := TierFor(sig.Confidence, cfg.Tiers)

	asset := html.EscapeString(sig.Asset)
	strategy := html.EscapeString(sig.Strategy)
	session := html.EscapeString(market.SessionDisplayName(sig.Session))
	timeframe := html.EscapeString(sig.Timeframe)

	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>%s | %s</b>\n", asset, timeframe)
	fmt.Fprintf(&b, "%s\n\n", directionLine(sig.Direction))

	fmt.Fprintf(&b, "🎯 Entry Zone: %s\n", formatEntryZone(sig, prec))
	fmt.Fprintf(&b, "💰 TP: %s\n", formatPrice(sig.TP, prec))
	fmt.Fprintf(&b, "🛑 SL: %s\n\n", formatPrice(sig.SL, prec))

	fmt.Fprintf(&b, "📏 Target: %+.1f pips\n", sig.TargetPips)
	fmt.Fprintf(&b, "⚖️ Risk–Reward: %s\n", sig.RiskReward)
	fmt.Fprintf(&b, "⭐ Confidence: %s (%d%%)\n", tier.Label, sig.Confidence)
	fmt.Fprintf(&b, "🌍 Session: %s\n\n", session)

	if sig.State.Open() {
		fmt.Fprintf(&b, "⏳ Expires in %d min (%d%% elapsed)\n",
			minutesRemaining(sig), int(math.Round(sig.ExpiryPercent)))
	} else {
		fmt.Fprintf(&b, "🔒 %s – historical record\n", stateLabels[sig.State].label)
	}
	fmt.Fprintf(&b, "🧠 Strategy: %s\n", strategy)

	if adv := advisoryFor(sig, tier); adv != "" {
		fmt.Fprintf(&b, "\n⚠️ %s\n", adv)
	}
	fmt.Fprintf(&b, "\n⚠️ <i>%s</i>", html.EscapeString(cfg.Disclaimer))
	return b.String()
}

// PlaceholderMessage is the fixed "no data" message mirroring PlaceholderCard.
func PlaceholderMessage() string {
	return "⚠️ No valid signal data available."
}

func directionLine(d models.Direction) string {
	if d == models.DirectionBuy {
		return "🟢 BUY (expect price to go up)"
	}
	return "🔴 SELL (expect price to go down)"
}

func advisoryFor(sig models.NormalizedSignal, tier models.ConfidenceTier) string {
	switch sig.State {
	case models.StateExpired:
		return "Signal expired – historical record only"
	case models.StateCancelled:
		return "Signal cancelled – historical record only"
	default:
		return tier.Advisory
	}
}
