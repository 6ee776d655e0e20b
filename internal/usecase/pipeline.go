package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"SignalDesk/internal/domain/models"
	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/service/upstream"
	"SignalDesk/internal/services/normalize"
	"SignalDesk/internal/services/render"
	applogger "SignalDesk/pkg/logger"
)

// Snapshot is one atomic refresh result: the normalized signal with both of
// its renderings, or the failure that prevented them. Readers always see a
// signal and its card/text from the same fetch, never a mix of two.
type Snapshot struct {
	Signal    *models.NormalizedSignal
	Card      models.CardViewModel
	Text      string
	Err       error
	FetchedAt time.Time
}

// Live reports whether the snapshot holds a tradeable signal.
func (s Snapshot) Live() bool {
	return s.Err == nil && s.Signal != nil && s.Signal.State.Open()
}

// PipelineDeps wires the signal pipeline. Source is required; everything
// else degrades gracefully when nil.
type PipelineDeps struct {
	Source   drepo.SignalSource
	Fallback drepo.SignalSource
	Prices   drepo.PriceStream
	Ledger   drepo.Ledger
	Events   drepo.Publisher
	Notifier drepo.Notifier
	Metrics  drepo.Metrics
	Clock    drepo.Clock
	Logger   *applogger.Logger
}

// SignalPipeline fetches the latest raw record, normalizes it against the
// live quote, renders both presentations and keeps the result as the current
// snapshot. Side effects (ledger, events, notification) ride on each refresh.
type SignalPipeline struct {
	deps      PipelineDeps
	normCfg   normalize.Config
	renderCfg render.Config

	// FeedSymbols maps an asset to its price feed symbol when they differ
	// (e.g. "EUR/USD" -> "OANDA:EUR_USD").
	feedSymbols map[string]string

	cur atomic.Pointer[Snapshot]
}

func NewSignalPipeline(deps PipelineDeps, normCfg normalize.Config, renderCfg render.Config, feedSymbols map[string]string) *SignalPipeline {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &SignalPipeline{
		deps:        deps,
		normCfg:     normCfg,
		renderCfg:   renderCfg,
		feedSymbols: feedSymbols,
	}
}

// Refresh pulls the latest record and replaces the current snapshot.
// Fetch and normalization failures produce a placeholder snapshot; the
// previous good snapshot is only replaced, never partially updated.
func (p *SignalPipeline) Refresh(ctx context.Context) Snapshot {
	now := p.deps.Clock()

	raw, err := p.fetch(ctx)
	if err != nil {
		return p.fail(now, "fetch", err)
	}
	snap := p.Ingest(ctx, raw)
	if snap.Err == nil && p.deps.Metrics != nil {
		p.deps.Metrics.RecordRefresh("poll", snap.Signal.Asset)
	}
	return snap
}

// Ingest normalizes and renders one raw record, replacing the current
// snapshot. It is the entry point for both polling and bus-driven refreshes.
func (p *SignalPipeline) Ingest(ctx context.Context, raw models.RawSignal) Snapshot {
	now := p.deps.Clock()

	sig, err := normalize.NormalizeAt(raw, now, p.livePrice(raw), p.normCfg)
	if err != nil {
		return p.fail(now, "normalize", err)
	}

	snap := Snapshot{
		Signal:    &sig,
		Card:      render.ToCard(sig, p.renderCfg),
		Text:      render.ToTextMessage(sig, p.renderCfg),
		FetchedAt: now,
	}
	p.cur.Store(&snap)

	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordState(sig.Asset, string(sig.State))
	}
	p.sideEffects(ctx, sig, snap.Text, now)
	return snap
}

// Latest returns the current snapshot, or a placeholder before first refresh.
func (p *SignalPipeline) Latest() Snapshot {
	if snap := p.cur.Load(); snap != nil {
		return *snap
	}
	return Snapshot{
		Card: render.PlaceholderCard(p.renderCfg),
		Text: render.PlaceholderMessage(),
		Err:  upstream.ErrNoSignal,
	}
}

func (p *SignalPipeline) fetch(ctx context.Context) (models.RawSignal, error) {
	raw, err := p.deps.Source.Latest(ctx)
	if err == nil {
		return raw, nil
	}
	// Definitive upstream answers are states, not outages; don't mask them
	// with fallback data.
	if errors.Is(err, upstream.ErrAwaitingExecution) || errors.Is(err, upstream.ErrMarketClosed) {
		return nil, err
	}
	if p.deps.Fallback != nil {
		if raw, ferr := p.deps.Fallback.Latest(ctx); ferr == nil {
			if p.deps.Logger != nil {
				p.deps.Logger.Warn("primary source failed, served from record log", applogger.Error(err))
			}
			return raw, nil
		}
	}
	return nil, err
}

func (p *SignalPipeline) livePrice(raw models.RawSignal) *float64 {
	if p.deps.Prices == nil {
		return nil
	}
	asset, _ := raw["asset"].(string)
	if asset == "" {
		if s, ok := raw["symbol"].(string); ok {
			asset = s
		}
	}
	if asset == "" {
		return nil
	}
	symbol := asset
	if mapped, ok := p.feedSymbols[asset]; ok {
		symbol = mapped
	}
	price, ok := p.deps.Prices.LastPrice(symbol)
	if !ok {
		return nil
	}
	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordLastPrice(symbol, price)
	}
	return &price
}

func (p *SignalPipeline) fail(now time.Time, stage string, err error) Snapshot {
	snap := Snapshot{
		Card:      render.PlaceholderCard(p.renderCfg),
		Text:      render.PlaceholderMessage(),
		Err:       err,
		FetchedAt: now,
	}
	p.cur.Store(&snap)
	if p.deps.Metrics != nil {
		p.deps.Metrics.RecordError(stage)
	}
	if p.deps.Logger != nil {
		p.deps.Logger.Warn("signal refresh failed", applogger.String("stage", stage), applogger.Error(err))
	}
	return snap
}

func (p *SignalPipeline) sideEffects(ctx context.Context, sig models.NormalizedSignal, text string, now time.Time) {
	if p.deps.Ledger != nil {
		if err := p.deps.Ledger.Record(ctx, sig); err != nil && p.deps.Logger != nil {
			p.deps.Logger.Warn("ledger record failed", applogger.Error(err))
		}
	}
	if p.deps.Events != nil {
		ev := models.SignalEvent{
			Asset:      sig.Asset,
			Direction:  sig.Direction,
			EntryMid:   sig.EntryMid,
			TP:         sig.TP,
			SL:         sig.SL,
			Confidence: sig.Confidence,
			State:      sig.State,
			ObservedAt: now,
		}
		if err := p.deps.Events.Publish(ctx, ev); err != nil && p.deps.Logger != nil {
			p.deps.Logger.Warn("event publish failed", applogger.Error(err))
		}
	}
	// Only live signals are worth announcing; terminal ones are history.
	if p.deps.Notifier != nil && sig.State.Open() {
		if err := p.deps.Notifier.Send(ctx, sig.ID(), text); err != nil && p.deps.Logger != nil {
			p.deps.Logger.Warn("notification failed", applogger.Error(err))
		}
	}
}
