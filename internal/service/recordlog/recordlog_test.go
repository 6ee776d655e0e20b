package recordlog

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestParseSkipsMalformedLines(t *testing.T) {
	log := []byte(`{"asset":"EUR/USD","generated_at":"2025-03-10T09:00:00Z"}
not json at all

{"asset":"GBP/USD","generated_at":"2025-03-10T10:00:00Z"}
{"broken":`)
	records, skipped := Parse(bytes.NewReader(log))
	assert.Len(t, records, 2)
	assert.Equal(t, 2, skipped)
}

func TestNewestPicksLatestWithinWindow(t *testing.T) {
	records := []models.RawSignal{
		{"asset": "old", "generated_at": now.Add(-8 * 24 * time.Hour).Format(time.RFC3339)},
		{"asset": "mid", "generated_at": now.Add(-2 * time.Hour).Format(time.RFC3339)},
		{"asset": "new", "generated_at": now.Add(-10 * time.Minute).Format(time.RFC3339)},
	}
	best, err := Newest(records, now)
	require.NoError(t, err)
	assert.Equal(t, "new", best["asset"])
}

func TestNewestRejectsStaleLog(t *testing.T) {
	records := []models.RawSignal{
		{"asset": "stale", "generated_at": now.Add(-30 * 24 * time.Hour).Format(time.RFC3339)},
	}
	_, err := Newest(records, now)
	assert.ErrorIs(t, err, ErrNoRecentRecord)
}

func TestNewestIgnoresRecordsWithoutTimestamp(t *testing.T) {
	records := []models.RawSignal{
		{"asset": "untimed"},
		{"asset": "timed", "executed_at": now.Add(-time.Hour).Format(time.RFC3339)},
	}
	best, err := Newest(records, now)
	require.NoError(t, err)
	assert.Equal(t, "timed", best["asset"])
}

func TestRecordTimeEpochMilliseconds(t *testing.T) {
	records := []models.RawSignal{
		{"asset": "ms", "timestamp": float64(now.Add(-time.Minute).UnixMilli())},
		{"asset": "s", "timestamp": float64(now.Add(-2 * time.Hour).Unix())},
	}
	best, err := Newest(records, now)
	require.NoError(t, err)
	assert.Equal(t, "ms", best["asset"])
}
