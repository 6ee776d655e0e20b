package repository

import (
	"context"
	"time"

	"SignalDesk/internal/domain/models"
)

// PriceStream is a live quote feed (WebSocket or similar). LastPrice returns
// the most recent quote for a symbol, if one has been observed.
type PriceStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Run(ctx context.Context) error
	LastPrice(symbol string) (float64, bool)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// SignalSource produces raw signal records from some transport (HTTP poll,
// execution log, message bus).
type SignalSource interface {
	Latest(ctx context.Context) (models.RawSignal, error)
}

// Ledger persists normalized signals and serves history reads.
type Ledger interface {
	Record(ctx context.Context, sig models.NormalizedSignal) error
	History(ctx context.Context, asset string, limit, offset int) ([]models.NormalizedSignal, error)
	Health(ctx context.Context) error
	Close() error
}

// Publisher fans normalized signal events out to a message bus.
type Publisher interface {
	Publish(ctx context.Context, ev models.SignalEvent) error
	Close() error
}

// Notifier delivers a rendered text message to a messaging channel.
type Notifier interface {
	Send(ctx context.Context, signalID, text string) error
}

// Metrics abstracts operational counters so use cases stay decoupled from
// the metrics backend.
type Metrics interface {
	RecordRefresh(source, asset string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
	RecordState(asset, state string)
}

// Clock returns the current time; injected so normalize/format stay
// reproducible in tests.
type Clock func() time.Time
