package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/service/upstream"
	"SignalDesk/internal/services/normalize"
	"SignalDesk/internal/services/render"
)

var t0 = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type stubSource struct {
	raw models.RawSignal
	err error
}

func (s *stubSource) Latest(context.Context) (models.RawSignal, error) { return s.raw, s.err }

type stubPrices struct {
	prices map[string]float64
}

func (s *stubPrices) Connect(context.Context) error         { return nil }
func (s *stubPrices) Subscribe(context.Context) error       { return nil }
func (s *stubPrices) Run(context.Context) error             { return nil }
func (s *stubPrices) Reconnect(context.Context) error       { return nil }
func (s *stubPrices) Close() error                          { return nil }
func (s *stubPrices) IsConnected() bool                     { return true }
func (s *stubPrices) LastPrice(sym string) (float64, bool)  { p, ok := s.prices[sym]; return p, ok }

type stubNotifier struct {
	sent []string
}

func (s *stubNotifier) Send(_ context.Context, signalID, _ string) error {
	s.sent = append(s.sent, signalID)
	return nil
}

func goodRaw() models.RawSignal {
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

func newPipeline(deps PipelineDeps) *SignalPipeline {
	if deps.Clock == nil {
		deps.Clock = func() time.Time { return t0.Add(5 * time.Minute) }
	}
	return NewSignalPipeline(deps, normalize.Config{}, render.Config{}, nil)
}

func TestRefreshProducesCoherentSnapshot(t *testing.T) {
	ledger := NewMemoryLedger(0)
	p := newPipeline(PipelineDeps{Source: &stubSource{raw: goodRaw()}, Ledger: ledger})

	snap := p.Refresh(context.Background())
	require.NoError(t, snap.Err)
	require.NotNil(t, snap.Signal)
	assert.Equal(t, "EUR/USD", snap.Signal.Asset)
	assert.Equal(t, "EUR/USD", snap.Card.Asset)
	assert.Contains(t, snap.Text, "EUR/USD")
	assert.True(t, snap.Live())

	history, err := ledger.History(context.Background(), "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRefreshFatalErrorYieldsPlaceholder(t *testing.T) {
	raw := goodRaw()
	delete(raw, "tp")
	p := newPipeline(PipelineDeps{Source: &stubSource{raw: raw}})

	snap := p.Refresh(context.Background())
	require.Error(t, snap.Err)
	var priceErr *normalize.InvalidPriceError
	assert.ErrorAs(t, snap.Err, &priceErr)
	assert.Equal(t, "—", snap.Card.Asset)
	assert.Contains(t, snap.Text, "No valid signal data available")
	assert.False(t, snap.Live())
}

func TestRefreshFallsBackToRecordLog(t *testing.T) {
	p := newPipeline(PipelineDeps{
		Source:   &stubSource{err: errors.New("connection refused")},
		Fallback: &stubSource{raw: goodRaw()},
	})

	snap := p.Refresh(context.Background())
	require.NoError(t, snap.Err)
	assert.Equal(t, "EUR/USD", snap.Signal.Asset)
}

func TestRefreshMarketClosedSkipsFallback(t *testing.T) {
	p := newPipeline(PipelineDeps{
		Source:   &stubSource{err: upstream.ErrMarketClosed},
		Fallback: &stubSource{raw: goodRaw()},
	})

	snap := p.Refresh(context.Background())
	assert.ErrorIs(t, snap.Err, upstream.ErrMarketClosed)
}

func TestRefreshAppliesLivePriceCrossing(t *testing.T) {
	// Price dipped into the zone and through the target.
	prices := &stubPrices{prices: map[string]float64{"EUR/USD": 1.1055}}
	p := newPipeline(PipelineDeps{Source: &stubSource{raw: goodRaw()}, Prices: prices})

	// First the entry fill...
	prices.prices["EUR/USD"] = 1.1002
	snap := p.Refresh(context.Background())
	require.NoError(t, snap.Err)
	assert.Equal(t, models.StateEntryHit, snap.Signal.State)
}

func TestNotifierOnlyForOpenSignals(t *testing.T) {
	n := &stubNotifier{}
	raw := goodRaw()
	raw["status"] = "PROFIT"
	p := newPipeline(PipelineDeps{Source: &stubSource{raw: raw}, Notifier: n})
	p.Refresh(context.Background())
	assert.Empty(t, n.sent, "terminal signals are not announced")

	p = newPipeline(PipelineDeps{Source: &stubSource{raw: goodRaw()}, Notifier: n})
	p.Refresh(context.Background())
	assert.Len(t, n.sent, 1)
}

func TestLatestBeforeFirstRefresh(t *testing.T) {
	p := newPipeline(PipelineDeps{Source: &stubSource{raw: goodRaw()}})
	snap := p.Latest()
	assert.Error(t, snap.Err)
	assert.Equal(t, "—", snap.Card.Asset)
}

func TestSnapshotReplacedAtomically(t *testing.T) {
	src := &stubSource{raw: goodRaw()}
	p := newPipeline(PipelineDeps{Source: src})
	first := p.Refresh(context.Background())

	src.err = errors.New("upstream down")
	src.raw = nil
	second := p.Refresh(context.Background())

	assert.NoError(t, first.Err)
	assert.Error(t, second.Err)
	assert.Error(t, p.Latest().Err, "latest reflects the newest refresh, good or bad")
}
