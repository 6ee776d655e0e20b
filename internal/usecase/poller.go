package usecase

import (
	"context"
	"time"

	applogger "SignalDesk/pkg/logger"
)

// SignalPoller drives the pipeline on a fixed interval.
type SignalPoller struct {
	pipeline *SignalPipeline
	interval time.Duration
	l        *applogger.Logger
}

func NewSignalPoller(pipeline *SignalPipeline, interval time.Duration, l *applogger.Logger) *SignalPoller {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SignalPoller{pipeline: pipeline, interval: interval, l: l}
}

// Run refreshes immediately, then on every tick until ctx ends. It blocks.
func (p *SignalPoller) Run(ctx context.Context) error {
	p.refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *SignalPoller) refresh(ctx context.Context) {
	start := time.Now()
	snap := p.pipeline.Refresh(ctx)
	if p.l == nil {
		return
	}
	if snap.Err != nil {
		p.l.Debug("poll cycle degraded", applogger.Error(snap.Err), applogger.Duration("took", time.Since(start)))
		return
	}
	p.l.Debug("poll cycle complete",
		applogger.String("asset", snap.Signal.Asset),
		applogger.String("state", string(snap.Signal.State)),
		applogger.Duration("took", time.Since(start)))
}
