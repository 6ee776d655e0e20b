package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

func TestToTextMessageOpenSignal(t *testing.T) {
	sig := normalized(t, nil, t0.Add(5*time.Minute))
	msg := ToTextMessage(sig, Config{})

	assert.Contains(t, msg, "EUR/USD | M15")
	assert.Contains(t, msg, "🟢 BUY (expect price to go up)")
	assert.Contains(t, msg, "Entry Zone: 1.10000 – 1.10100")
	assert.Contains(t, msg, "TP: 1.10500")
	assert.Contains(t, msg, "SL: 1.09800")
	assert.Contains(t, msg, "Target: +45.0 pips")
	assert.Contains(t, msg, "Risk–Reward: 1 : 1.80")
	assert.Contains(t, msg, "Confidence: HIGH (92%)")
	assert.Contains(t, msg, "Expires in 85 min (6% elapsed)")
	assert.Contains(t, msg, "Not financial advice")
}

func TestToTextMessageTerminalSignal(t *testing.T) {
	sig := normalized(t, func(r models.RawSignal) { r["status"] = "PROFIT" }, t0.Add(time.Minute))
	msg := ToTextMessage(sig, Config{})
	assert.Contains(t, msg, "🔒 Target hit – historical record")
	assert.NotContains(t, msg, "Expires in")
}

func TestToTextMessageEscapesUpstreamText(t *testing.T) {
	sig := normalized(t, func(r models.RawSignal) {
		r["asset"] = "<b>EUR/USD</b>"
		r["strategy"] = "break & retest"
	}, t0)
	msg := ToTextMessage(sig, Config{})
	assert.NotContains(t, msg, "<b>EUR/USD</b>")
	assert.Contains(t, msg, "&lt;b&gt;EUR/USD&lt;/b&gt;")
	assert.Contains(t, msg, "break &amp; retest")
}

func TestToTextMessageIsDeterministic(t *testing.T) {
	sig := normalized(t, nil, t0.Add(3*time.Minute))
	require.Equal(t, ToTextMessage(sig, Config{}), ToTextMessage(sig, Config{}))
}

func TestToTextMessageSingleBlock(t *testing.T) {
	sig := normalized(t, nil, t0)
	msg := ToTextMessage(sig, Config{})
	assert.False(t, strings.HasSuffix(msg, "\n"), "message should not carry a trailing newline")
}

func TestPlaceholderMessageStable(t *testing.T) {
	assert.Equal(t, PlaceholderMessage(), PlaceholderMessage())
	assert.Contains(t, PlaceholderMessage(), "No valid signal data available")
}

func TestCustomDisclaimer(t *testing.T) {
	sig := normalized(t, nil, t0)
	msg := ToTextMessage(sig, Config{Disclaimer: "Educational purpose only"})
	assert.Contains(t, msg, "Educational purpose only")
}
