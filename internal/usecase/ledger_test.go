package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
)

func entry(asset string, at time.Time, state models.LifecycleState) models.NormalizedSignal {
	return models.NormalizedSignal{Asset: asset, Direction: models.DirectionBuy, GeneratedAt: at, State: state}
}

func TestLedgerNewestFirst(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Record(ctx, entry("EUR/USD", t0.Add(time.Duration(i)*time.Hour), models.StateWaitingForEntry)))
	}

	history, err := l.History(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, t0.Add(2*time.Hour), history[0].GeneratedAt)
	assert.Equal(t, t0, history[2].GeneratedAt)
}

func TestLedgerCollapsesRepeatedPolls(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, entry("EUR/USD", t0, models.StateWaitingForEntry)))
	require.NoError(t, l.Record(ctx, entry("EUR/USD", t0, models.StateEntryHit)))
	require.NoError(t, l.Record(ctx, entry("EUR/USD", t0, models.StateTPHit)))

	history, err := l.History(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1, "same signal observed three times is one ledger entry")
	assert.Equal(t, models.StateTPHit, history[0].State, "entry tracks the latest observed state")
}

func TestLedgerCapacityBound(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		require.NoError(t, l.Record(ctx, entry("EUR/USD", t0.Add(time.Duration(i)*time.Minute), models.StateWaitingForEntry)))
	}

	history, err := l.History(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, defaultLedgerCapacity)
	assert.Equal(t, t0.Add(59*time.Minute), history[0].GeneratedAt, "oldest entries are evicted, not newest")
}

func TestLedgerAssetFilterAndPaging(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		asset := "EUR/USD"
		if i%2 == 1 {
			asset = "GBP/USD"
		}
		require.NoError(t, l.Record(ctx, entry(asset, t0.Add(time.Duration(i)*time.Minute), models.StateWaitingForEntry)))
	}

	page, err := l.History(ctx, "EUR/USD", 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	for _, e := range page {
		assert.Equal(t, "EUR/USD", e.Asset)
	}
}

func TestLedgerDistinctTimestampsKept(t *testing.T) {
	l := NewMemoryLedger(0)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		sig := entry("EUR/USD", t0.Add(time.Duration(i)*time.Second), models.StateWaitingForEntry)
		sig.Strategy = fmt.Sprintf("s%d", i)
		require.NoError(t, l.Record(ctx, sig))
	}
	history, err := l.History(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, 5)
}
