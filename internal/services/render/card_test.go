package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/services/normalize"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func normalized(t *testing.T, mutate func(models.RawSignal), now time.Time) models.NormalizedSignal {
	t.Helper()
	raw := models.RawSignal{
		"asset":        "EUR/USD",
		"direction":    "BUY",
		"entry":        []any{1.1000, 1.1010},
		"tp":           1.1050,
		"sl":           1.0980,
		"confidence":   92,
		"session":      "London-NewYork",
		"status":       "WAITING_FOR_ENTRY",
		"generated_at": t0.Format(time.RFC3339),
	}
	if mutate != nil {
		mutate(raw)
	}
	sig, err := normalize.Normalize(raw, now, normalize.Config{})
	require.NoError(t, err)
	return sig
}

func TestToCardOpenSignal(t *testing.T) {
	sig := normalized(t, nil, t0.Add(5*time.Minute))
	vm := ToCard(sig, Config{})

	assert.Equal(t, "EUR/USD", vm.Asset)
	assert.Equal(t, "🟢 BUY", vm.DirectionText)
	assert.Equal(t, "buy", vm.DirectionClass)
	assert.Equal(t, "1.10000 – 1.10100", vm.EntryZone)
	assert.Equal(t, "1.10500", vm.TP)
	assert.Equal(t, "1.09800", vm.SL)
	assert.Equal(t, "London → New York", vm.Session)
	assert.Equal(t, "HIGH", vm.TierLabel)
	assert.True(t, vm.Live)
	assert.Equal(t, 6, vm.ExpiryPercent)
	assert.Equal(t, 85, vm.MinutesRemaining)
	assert.Empty(t, vm.Advisory, "high confidence open signal carries no advisory")
}

func TestToCardTerminalIsReadOnly(t *testing.T) {
	for _, status := range []string{"PROFIT", "LOSS", "EXPIRED", "CANCELLED"} {
		sig := normalized(t, func(r models.RawSignal) { r["status"] = status }, t0.Add(time.Minute))
		vm := ToCard(sig, Config{})
		assert.False(t, vm.Live, "%s must not render live", status)
		assert.Zero(t, vm.MinutesRemaining, "%s must not show a countdown", status)
		assert.Equal(t, 100, vm.ExpiryPercent)
	}
}

func TestToCardExpiredAdvisory(t *testing.T) {
	sig := normalized(t, nil, t0.Add(95*time.Minute))
	require.Equal(t, models.StateExpired, sig.State)
	vm := ToCard(sig, Config{})
	assert.Contains(t, vm.Advisory, "expired")
}

func TestToCardLowConfidenceAdvisory(t *testing.T) {
	sig := normalized(t, func(r models.RawSignal) { r["confidence"] = 55 }, t0)
	vm := ToCard(sig, Config{})
	assert.Equal(t, "LOW", vm.TierLabel)
	assert.NotEmpty(t, vm.Advisory)
}

func TestToCardIsDeterministic(t *testing.T) {
	sig := normalized(t, nil, t0.Add(9*time.Minute))
	assert.Equal(t, ToCard(sig, Config{}), ToCard(sig, Config{}))
}

func TestJPYPrecision(t *testing.T) {
	sig := normalized(t, func(r models.RawSignal) {
		r["asset"] = "USD/JPY"
		r["entry"] = 150.123
		r["tp"] = 150.623
		r["sl"] = 149.723
	}, t0)
	vm := ToCard(sig, Config{})
	assert.Equal(t, "150.123", vm.EntryZone)
	assert.Equal(t, "150.623", vm.TP)
}

func TestPrecisionOverride(t *testing.T) {
	sig := normalized(t, nil, t0)
	vm := ToCard(sig, Config{PricePrecision: map[string]int{"EUR/USD": 4}})
	assert.Equal(t, "1.1050", vm.TP)
}

func TestPlaceholderCardStable(t *testing.T) {
	a := PlaceholderCard(Config{})
	b := PlaceholderCard(Config{})
	assert.Equal(t, a, b)
	assert.Equal(t, "error", a.StateClass)
	assert.False(t, a.Live)
}
