package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func baseRaw() models.RawSignal {
	return models.RawSignal{
		"asset":        "EUR/USD",
		"direction":    "BUY",
		"entry":        []any{1.1000, 1.1010},
		"tp":           1.1050,
		"sl":           1.0980,
		"confidence":   0.92,
		"status":       "WAITING_FOR_ENTRY",
		"generated_at": t0.Format(time.RFC3339),
	}
}

func TestNormalizeZoneSignal(t *testing.T) {
	sig, err := Normalize(baseRaw(), t0.Add(5*time.Minute), Config{})
	require.NoError(t, err)

	assert.Equal(t, "EUR/USD", sig.Asset)
	assert.Equal(t, models.DirectionBuy, sig.Direction)
	assert.InDelta(t, 1.1005, sig.EntryMid, 1e-9)
	assert.Equal(t, 92, sig.Confidence)
	assert.Equal(t, models.StateWaitingForEntry, sig.State)
	assert.InDelta(t, 5.0/90.0*100, sig.ExpiryPercent, 0.01)
	assert.Equal(t, "1 : 1.80", sig.RiskReward)
	assert.InDelta(t, 45.0, sig.TargetPips, 1e-9)
	assert.InDelta(t, 25.0, sig.StopPips, 1e-9)
}

func TestNormalizeExpiresByAge(t *testing.T) {
	sig, err := Normalize(baseRaw(), t0.Add(95*time.Minute), Config{})
	require.NoError(t, err)
	assert.Equal(t, models.StateExpired, sig.State)
	assert.Equal(t, 100.0, sig.ExpiryPercent)
}

func TestConfidenceScaling(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"fraction", 0.92, 92},
		{"fraction rounds", 0.555, 56},
		{"slightly over one is still a fraction", 1.05, 100},
		{"cutoff is inclusive", 1.2, 100},
		{"percent", 55.0, 55},
		{"percent above cap clamps", 140.0, 100},
		{"negative clamps", -3.0, 0},
		{"string percent", "87", 87},
		{"zero", 0.0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := baseRaw()
			raw["confidence"] = tc.in
			sig, err := Normalize(raw, t0, Config{})
			require.NoError(t, err)
			assert.Equal(t, tc.want, sig.Confidence)
		})
	}
}

func TestConfidenceMissingDefaultsToZero(t *testing.T) {
	raw := baseRaw()
	delete(raw, "confidence")
	sig, err := Normalize(raw, t0, Config{})
	require.NoError(t, err)
	assert.Equal(t, 0, sig.Confidence)
}

func TestEntryResolution(t *testing.T) {
	t.Run("scalar entry", func(t *testing.T) {
		raw := baseRaw()
		raw["entry"] = 1.1000
		sig, err := Normalize(raw, t0, Config{})
		require.NoError(t, err)
		assert.Equal(t, 1.1000, sig.EntryMid)
		assert.Equal(t, sig.EntryLow, sig.EntryHigh)
	})
	t.Run("reversed zone is reordered", func(t *testing.T) {
		raw := baseRaw()
		raw["entry"] = []any{1.1010, 1.1000}
		sig, err := Normalize(raw, t0, Config{})
		require.NoError(t, err)
		assert.Equal(t, 1.1000, sig.EntryLow)
		assert.InDelta(t, 1.1005, sig.EntryMid, 1e-9)
	})
	t.Run("string price is coerced", func(t *testing.T) {
		raw := baseRaw()
		raw["entry"] = "1.1005"
		sig, err := Normalize(raw, t0, Config{})
		require.NoError(t, err)
		assert.Equal(t, 1.1005, sig.EntryMid)
	})
	t.Run("garbage entry fails", func(t *testing.T) {
		raw := baseRaw()
		raw["entry"] = "not a price"
		_, err := Normalize(raw, t0, Config{})
		var priceErr *InvalidPriceError
		require.ErrorAs(t, err, &priceErr)
		assert.Equal(t, FieldEntry, priceErr.Field)
	})
	t.Run("three element zone fails", func(t *testing.T) {
		raw := baseRaw()
		raw["entry"] = []any{1.0, 1.1, 1.2}
		_, err := Normalize(raw, t0, Config{})
		var priceErr *InvalidPriceError
		require.ErrorAs(t, err, &priceErr)
	})
}

func TestMissingTPAndSLAreFatal(t *testing.T) {
	for _, field := range []string{"tp", "sl"} {
		raw := baseRaw()
		delete(raw, field)
		_, err := Normalize(raw, t0, Config{})
		var priceErr *InvalidPriceError
		require.ErrorAs(t, err, &priceErr, "missing %s must not default to zero", field)
	}
}

func TestMissingRequiredFields(t *testing.T) {
	t.Run("no asset and no default", func(t *testing.T) {
		raw := baseRaw()
		delete(raw, "asset")
		delete(raw, "direction")
		_, err := Normalize(raw, t0, Config{})
		var missing *MissingRequiredFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, FieldAsset, missing.Field)
	})
	t.Run("configured default asset rescues the record", func(t *testing.T) {
		raw := baseRaw()
		delete(raw, "asset")
		sig, err := Normalize(raw, t0, Config{DefaultAsset: "EUR/USD"})
		require.NoError(t, err)
		assert.Equal(t, "EUR/USD", sig.Asset)
	})
	t.Run("direction has no default", func(t *testing.T) {
		raw := baseRaw()
		delete(raw, "direction")
		_, err := Normalize(raw, t0, Config{DefaultAsset: "EUR/USD"})
		var missing *MissingRequiredFieldError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, FieldDirection, missing.Field)
	})
}

func TestSynonymResolutionOrder(t *testing.T) {
	raw := models.RawSignal{
		"symbol":          "GBP/USD",
		"side":            "short",
		"execution_price": 1.2500,
		"signal_price":    1.2600, // outranked by execution_price
		"take_profit":     1.2400,
		"stop_loss":       1.2550,
		"conf":            77,
		"signal_time":     t0.Unix(),
	}
	sig, err := Normalize(raw, t0, Config{})
	require.NoError(t, err)
	assert.Equal(t, "GBP/USD", sig.Asset)
	assert.Equal(t, models.DirectionSell, sig.Direction)
	assert.Equal(t, 1.2500, sig.EntryMid)
	assert.Equal(t, 77, sig.Confidence)
	assert.True(t, sig.GeneratedAt.Equal(t0))
}

func TestTimestampPriorityOrder(t *testing.T) {
	gen := t0.Add(-10 * time.Minute)
	exec := t0.Add(-5 * time.Minute)
	raw := baseRaw()
	raw["generated_at"] = gen.Format(time.RFC3339)
	raw["executed_at"] = exec.Format(time.RFC3339)
	sig, err := Normalize(raw, t0, Config{})
	require.NoError(t, err)
	assert.True(t, sig.GeneratedAt.Equal(gen), "generated_at outranks executed_at")
}

func TestMissingTimestampDegradesToNow(t *testing.T) {
	raw := baseRaw()
	delete(raw, "generated_at")
	sig, err := Normalize(raw, t0, Config{})
	require.NoError(t, err)
	assert.True(t, sig.GeneratedAt.Equal(t0))
	assert.Equal(t, 0.0, sig.AgeMinutes)
}

func TestRiskRewardDegenerate(t *testing.T) {
	raw := baseRaw()
	raw["entry"] = 1.1000
	raw["sl"] = 1.1000 // entry == stop
	sig, err := Normalize(raw, t0, Config{})
	require.NoError(t, err)
	assert.Equal(t, "n/a", sig.RiskReward)
}

func TestPipMultipliers(t *testing.T) {
	t.Run("jpy pair uses 2-decimal pip", func(t *testing.T) {
		raw := models.RawSignal{
			"asset": "USD/JPY", "direction": "SELL",
			"entry": 150.00, "tp": 149.50, "sl": 150.40,
			"generated_at": t0.Format(time.RFC3339),
		}
		sig, err := Normalize(raw, t0, Config{})
		require.NoError(t, err)
		assert.InDelta(t, 50.0, sig.TargetPips, 1e-9)
		assert.InDelta(t, 40.0, sig.StopPips, 1e-9)
	})
	t.Run("explicit override wins", func(t *testing.T) {
		raw := baseRaw()
		cfg := Config{PipMultipliers: map[string]float64{"EUR/USD": 100}}
		sig, err := Normalize(raw, t0.Add(time.Minute), cfg)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, sig.TargetPips, 1e-9)
	})
}

func TestUnfavorableTargetHasNegativePips(t *testing.T) {
	raw := baseRaw()
	raw["tp"] = 1.0990 // below entry on a BUY
	sig, err := Normalize(raw, t0, Config{})
	require.NoError(t, err)
	assert.Less(t, sig.TargetPips, 0.0)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	now := t0.Add(7 * time.Minute)
	a, err := Normalize(baseRaw(), now, Config{})
	require.NoError(t, err)
	b, err := Normalize(baseRaw(), now, Config{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTerminalStatesDoNotUnterminate(t *testing.T) {
	for _, status := range []string{"PROFIT", "LOSS", "CANCELLED", "EXPIRED"} {
		raw := baseRaw()
		raw["status"] = status
		early, err := Normalize(raw, t0.Add(time.Minute), Config{})
		require.NoError(t, err)
		require.True(t, early.State.Terminal())

		late, err := Normalize(raw, t0.Add(48*time.Hour), Config{})
		require.NoError(t, err)
		assert.Equal(t, early.State, late.State, "terminal %s drifted with later now", status)
	}
}

func TestDegradedFieldsStillRender(t *testing.T) {
	raw := models.RawSignal{
		"asset":     "EUR/USD",
		"direction": "BUY",
		"entry":     1.1,
		"tp":        1.2,
		"sl":        1.0,
		"status":    "SOMETHING_NEW_FROM_UPSTREAM",
	}
	sig, err := Normalize(raw, t0, Config{})
	require.NoError(t, err)
	assert.Equal(t, models.StateUnknown, sig.State)
	assert.Equal(t, "unknown", sig.Strategy)
	assert.Equal(t, "M15", sig.Timeframe)
	assert.Equal(t, 90.0, sig.ValidityMinutes)
}

func TestSynonymOverride(t *testing.T) {
	raw := models.RawSignal{
		"ticker":       "EUR/USD",
		"direction":    "BUY",
		"entry":        1.1,
		"tp":           1.2,
		"sl":           1.0,
		"generated_at": t0.Format(time.RFC3339),
	}
	cfg := Config{Synonyms: map[string][]string{FieldAsset: {"ticker"}}}
	sig, err := Normalize(raw, t0, cfg)
	require.NoError(t, err)
	assert.Equal(t, "EUR/USD", sig.Asset)

	_, err = Normalize(raw, t0, Config{})
	assert.True(t, errors.As(err, new(*MissingRequiredFieldError)))
}
