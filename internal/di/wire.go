//go:build wireinject
// +build wireinject

package di

import (
	"SignalDesk/pkg/config"
	"SignalDesk/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Domain policy
		ProvideNormalizeConfig,
		ProvideRenderConfig,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideBytesCache,
		ProvideDispatchQueue,

		// Sources and sinks
		ProvideUpstreamClient,
		ProvideFallbackSource,
		ProvidePriceStream,
		ProvideLedger,
		ProvidePublisher,
		ProvideNotifier,

		// Use cases
		ProvidePipeline,
		ProvidePoller,
		ProvideRecordsHandler,

		// HTTP
		ProvideSignalsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
