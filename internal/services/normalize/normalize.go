package normalize

import (
	"fmt"
	"math"
	"strings"
	"time"

	"SignalDesk/internal/domain/models"
)

// Config is the injectable normalization policy. Zero value works; defaults
// fill in on first use.
type Config struct {
	// DefaultAsset is used when no asset key resolves. Empty means asset is
	// required and its absence is a MissingRequiredFieldError.
	DefaultAsset string

	DefaultTimeframe   string
	DefaultSession     string
	DefaultStrategy    string
	DefaultValidityMin float64

	// Synonyms overrides entries of DefaultSynonyms per canonical field.
	Synonyms map[string][]string

	// PipMultipliers maps asset symbols to their pip convention. Assets not
	// listed fall back to the JPY heuristic (x100) or the FX default (x10000).
	PipMultipliers map[string]float64
}

func (c Config) withDefaults() Config {
	if c.DefaultTimeframe == "" {
		c.DefaultTimeframe = "M15"
	}
	if c.DefaultSession == "" {
		c.DefaultSession = "London-NewYork"
	}
	if c.DefaultStrategy == "" {
		c.DefaultStrategy = "unknown"
	}
	if c.DefaultValidityMin <= 0 {
		c.DefaultValidityMin = 90
	}
	return c
}

// PipMultiplier returns the pip convention for an asset.
func (c Config) PipMultiplier(asset string) float64 {
	if m, ok := c.PipMultipliers[asset]; ok && m > 0 {
		return m
	}
	if strings.Contains(strings.ToUpper(asset), "JPY") {
		return 100
	}
	return 10000
}

// fractionCutoff separates fractional confidence encodings from percent ones.
// Values at or below it are treated as fractions and scaled x100. The cutoff
// is 1.2 rather than 1.0 to absorb upstream fractions slightly over 1 (a
// "105%" typo arrives as 1.05); inherited behavior, kept for compatibility.
const fractionCutoff = 1.2

// Normalize maps one raw upstream record into the canonical model. now is
// passed explicitly so the result is reproducible. The only failures are
// InvalidPriceError and MissingRequiredFieldError; every other irregularity
// degrades to a documented default.
func Normalize(raw models.RawSignal, now time.Time, cfg Config) (models.NormalizedSignal, error) {
	return NormalizeAt(raw, now, nil, cfg)
}

// NormalizeAt is Normalize with an optional live price used for entry/tp/sl
// crossing checks on open signals.
func NormalizeAt(raw models.RawSignal, now time.Time, livePrice *float64, cfg Config) (models.NormalizedSignal, error) {
	cfg = cfg.withDefaults()
	r := newResolver(raw, cfg.Synonyms)

	asset := r.str(FieldAsset, cfg.DefaultAsset)
	if asset == "" {
		return models.NormalizedSignal{}, &MissingRequiredFieldError{Field: FieldAsset}
	}

	dir, ok := parseDirection(r.str(FieldDirection, ""))
	if !ok {
		return models.NormalizedSignal{}, &MissingRequiredFieldError{Field: FieldDirection}
	}

	entryLow, entryHigh, entryMid, err := resolveEntry(r)
	if err != nil {
		return models.NormalizedSignal{}, err
	}
	tp, rawTP, ok := r.num(FieldTP)
	if !ok {
		return models.NormalizedSignal{}, &InvalidPriceError{Field: FieldTP, Value: rawTP}
	}
	sl, rawSL, ok := r.num(FieldSL)
	if !ok {
		return models.NormalizedSignal{}, &InvalidPriceError{Field: FieldSL, Value: rawSL}
	}

	confidence := scaleConfidence(r)

	validity := cfg.DefaultValidityMin
	if v, _, ok := r.num(FieldValidity); ok && v > 0 {
		validity = v
	}

	genAt, ok := r.when(FieldTimestamp)
	if !ok {
		genAt = now
	}
	age := now.Sub(genAt).Minutes()
	if age < 0 {
		age = 0
	}

	mult := cfg.PipMultiplier(asset)
	riskDist := math.Abs(entryMid - sl)
	rewardDist := math.Abs(tp - entryMid)

	state := classify(r.str(FieldStatus, ""), age, validity, dir, entryMid, tp, sl, livePrice)

	return models.NormalizedSignal{
		Asset:           asset,
		Direction:       dir,
		EntryLow:        entryLow,
		EntryHigh:       entryHigh,
		EntryMid:        entryMid,
		TP:              tp,
		SL:              sl,
		Confidence:      confidence,
		Timeframe:       r.str(FieldTimeframe, cfg.DefaultTimeframe),
		Session:         r.str(FieldSession, cfg.DefaultSession),
		Strategy:        r.str(FieldStrategy, cfg.DefaultStrategy),
		GeneratedAt:     genAt,
		ValidityMinutes: validity,
		AgeMinutes:      age,
		State:           state,
		RiskDistance:    riskDist,
		RewardDistance:  rewardDist,
		RiskReward:      FormatRiskReward(riskDist, rewardDist),
		TargetPips:      signedPips(dir, entryMid, tp, mult),
		StopPips:        stopPips(dir, entryMid, sl, mult),
		ExpiryPercent:   expiryPercent(age, validity),
	}, nil
}

// FormatRiskReward renders "1 : X.XX", or the "n/a" sentinel when the risk
// distance is zero (entry == stop), so a degenerate record never divides by
// zero or shows a fabricated ratio.
func FormatRiskReward(riskDist, rewardDist float64) string {
	if riskDist == 0 {
		return "n/a"
	}
	return fmt.Sprintf("1 : %.2f", rewardDist/riskDist)
}

func parseDirection(s string) (models.Direction, bool) {
	switch strings.ToUpper(s) {
	case "BUY", "LONG":
		return models.DirectionBuy, true
	case "SELL", "SHORT":
		return models.DirectionSell, true
	default:
		return "", false
	}
}

// resolveEntry accepts either a scalar price or a two-element [low, high]
// zone; the mid-price is the zone midpoint.
func resolveEntry(r resolver) (low, high, mid float64, err error) {
	v, ok := r.lookup(FieldEntry)
	if !ok {
		return 0, 0, 0, &InvalidPriceError{Field: FieldEntry, Value: nil}
	}
	if zone, isZone := v.([]any); isZone {
		if len(zone) != 2 {
			return 0, 0, 0, &InvalidPriceError{Field: FieldEntry, Value: v}
		}
		a, okA := coerceFloat(zone[0])
		b, okB := coerceFloat(zone[1])
		if !okA || !okB {
			return 0, 0, 0, &InvalidPriceError{Field: FieldEntry, Value: v}
		}
		if a > b {
			a, b = b, a
		}
		return a, b, (a + b) / 2, nil
	}
	p, ok := coerceFloat(v)
	if !ok {
		return 0, 0, 0, &InvalidPriceError{Field: FieldEntry, Value: v}
	}
	return p, p, p, nil
}

// scaleConfidence resolves confidence to an integer percent in [0,100].
// Values at or below fractionCutoff are fractional encodings and scale x100.
func scaleConfidence(r resolver) int {
	c, _, ok := r.num(FieldConfidence)
	if !ok {
		return 0
	}
	if c <= fractionCutoff {
		c = c * 100
	}
	n := int(math.Round(c))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// signedPips is the target distance in pips; positive when the target sits on
// the profitable side of entry.
func signedPips(dir models.Direction, entryMid, tp, mult float64) float64 {
	d := (tp - entryMid) * mult
	if dir == models.DirectionSell {
		d = -d
	}
	return math.Round(d*10) / 10
}

func stopPips(dir models.Direction, entryMid, sl, mult float64) float64 {
	d := (entryMid - sl) * mult
	if dir == models.DirectionSell {
		d = -d
	}
	return math.Round(d*10) / 10
}

// expiryPercent is elapsed/validity clamped to [0,100]; drives the card
// progress indicator.
func expiryPercent(ageMin, validityMin float64) float64 {
	if validityMin <= 0 {
		return 100
	}
	p := ageMin / validityMin * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
