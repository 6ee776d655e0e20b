package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"SignalDesk/internal/domain/repository"
	"SignalDesk/internal/handler/api"
	icache "SignalDesk/internal/service/cache"
	"SignalDesk/internal/service/pricefeed"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/service/recordlog"
	"SignalDesk/internal/service/telegram"
	"SignalDesk/internal/service/upstream"
	internalrepo "SignalDesk/internal/repository"
	"SignalDesk/internal/services/normalize"
	"SignalDesk/internal/services/render"
	"SignalDesk/internal/usecase"
	pkgcache "SignalDesk/pkg/cache"
	pkgch "SignalDesk/pkg/clickhouse"
	"SignalDesk/pkg/config"
	pkgkafka "SignalDesk/pkg/kafka"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/metrics"
	"SignalDesk/pkg/queue"
	"SignalDesk/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	lc := &applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if lc.Level == "" {
		lc.Level = "info"
	}
	if lc.Format == "" {
		lc.Format = "console"
	}
	if lc.Output == "" {
		lc.Output = "stdout"
	}
	return applogger.New(lc)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideNormalizeConfig maps YAML normalization policy to the service config.
func ProvideNormalizeConfig(cfg *config.Config) normalize.Config {
	return normalize.Config{
		DefaultAsset:       cfg.Normalize.DefaultAsset,
		DefaultTimeframe:   cfg.Normalize.DefaultTimeframe,
		DefaultSession:     cfg.Normalize.DefaultSession,
		DefaultStrategy:    cfg.Normalize.DefaultStrategy,
		DefaultValidityMin: cfg.Normalize.ValidityMinutes,
		Synonyms:           cfg.Normalize.Synonyms,
		PipMultipliers:     cfg.Normalize.PipMultipliers,
	}
}

// ProvideRenderConfig maps YAML presentation policy to the service config.
func ProvideRenderConfig(cfg *config.Config) render.Config {
	rc := render.Config{
		Disclaimer:       cfg.Render.Disclaimer,
		DefaultPrecision: cfg.Render.DefaultPrecision,
		PricePrecision:   cfg.Render.PricePrecision,
	}
	for _, t := range cfg.Render.Tiers {
		rc.Tiers = append(rc.Tiers, render.Tier{
			MinConfidence: t.MinConfidence,
			Label:         t.Label,
			Class:         t.Class,
			Severity:      t.Severity,
			Advisory:      t.Advisory,
		})
	}
	return rc
}

// ProvideUpstreamClient creates the primary signal source.
func ProvideUpstreamClient(cfg *config.Config, l *applogger.Logger) *upstream.Client {
	return upstream.New(cfg.Upstream.Bases, cfg.Upstream.Path, cfg.Upstream.Timeout, l)
}

// ProvideFallbackSource creates the execution-log fallback, or nil when
// disabled.
func ProvideFallbackSource(cfg *config.Config, l *applogger.Logger) repository.SignalSource {
	if !cfg.RecordLog.Enabled || cfg.RecordLog.URL == "" {
		return nil
	}
	return recordlog.NewSource(recordlog.New(cfg.RecordLog.URL, cfg.RecordLog.Timeout, l), nil)
}

// ProvidePriceStream creates the WebSocket quote feed, or nil when disabled.
func ProvidePriceStream(cfg *config.Config, l *applogger.Logger) repository.PriceStream {
	if !cfg.Pricefeed.Enabled {
		return nil
	}
	return pricefeed.New(
		cfg.Pricefeed.APIKey,
		cfg.Pricefeed.WebSocketURL,
		cfg.Pricefeed.Symbols,
		cfg.Pricefeed.ReconnectDelay,
		cfg.Pricefeed.PingInterval,
		l,
	)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideLedger creates the signal ledger: ClickHouse-backed when available,
// otherwise the in-memory ring.
func ProvideLedger(chClient *pkgch.Client, cfg *config.Config) (repository.Ledger, error) {
	if chClient == nil {
		return usecase.NewMemoryLedger(cfg.Ledger.Capacity), nil
	}
	table := cfg.ClickHouse.Table
	if table == "" {
		table = cfg.ClickHouse.Database + ".signals"
	}
	store := internalrepo.NewClickHouseSignalStore(chClient.DB(), table)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	schema := append([]string{"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database},
		store.Schema()...)
	if err := chClient.InitSchema(ctx, schema); err != nil {
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvidePublisher creates the event publisher, or nil when kafka is off.
func ProvidePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	if producer == nil || cfg.Kafka.EventsTopic == "" {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.EventsTopic)
}

// ProvideKafkaConsumer creates a Kafka consumer for the records topic, or
// nil when kafka ingest is disabled.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled || cfg.Kafka.RecordsTopic == "" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRecordsHandler registers the raw-record ingest handler.
func ProvideRecordsHandler(pipeline *usecase.SignalPipeline, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	if cfg.Kafka.RecordsTopic == "" {
		return nil
	}
	return usecase.NewKafkaRecordsHandler(cfg.Kafka.RecordsTopic, pipeline, m)
}

// ProvideBytesCache creates the response cache: Redis when configured,
// in-process TTL map otherwise.
func ProvideBytesCache(cfg *config.Config) icache.BytesCache {
	if cfg.Redis.Enabled {
		return icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	return icache.NewTTLCache()
}

// ProvideDispatchQueue creates the Redis-backed telegram dispatch queue, or
// nil when telegram or redis is off.
func ProvideDispatchQueue(cfg *config.Config, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Telegram.Enabled || !cfg.Redis.Enabled {
		return nil
	}
	rc := icache.NewRedisCache(icache.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	q := queue.NewRedisQueue(l, &queue.QueueConfig{Workers: 1, RetryLimit: 3, RetryDelay: 30 * time.Second},
		rc.Client(), queue.ModeProducerConsumer, queue.WithKeyPrefix("signaldesk:telegram"))
	return q
}

// ProvideNotifier creates the telegram notifier. With a dispatch queue the
// refresh loop only enqueues; deliveries happen on queue workers.
func ProvideNotifier(cfg *config.Config, dispatch *queue.RedisQueue, l *applogger.Logger) repository.Notifier {
	if !cfg.Telegram.Enabled {
		return nil
	}
	var guard telegram.Guard = telegram.NewDispatchGuard(nil)
	if cfg.Redis.Enabled {
		if shared, err := provideGuardCache(cfg); err == nil {
			guard = telegram.NewSharedGuard(shared, nil, l)
		} else if l != nil {
			l.Warn("shared dispatch guard unavailable, using in-process guard", applogger.Error(err))
		}
	}
	sender := telegram.NewSender(cfg.Telegram.Token, cfg.Telegram.ChatID, cfg.Telegram.Timeout, guard, l)
	if dispatch != nil {
		dispatch.RegisterJob(telegram.NewDispatchJob(sender))
		return telegram.NewQueuedNotifier(dispatch)
	}
	return sender
}

func provideGuardCache(cfg *config.Config) (pkgcache.Service, error) {
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvidePipeline assembles the refresh pipeline.
func ProvidePipeline(
	cfg *config.Config,
	client *upstream.Client,
	fallback repository.SignalSource,
	stream repository.PriceStream,
	ledger repository.Ledger,
	publisher repository.Publisher,
	notifier repository.Notifier,
	m repository.Metrics,
	normCfg normalize.Config,
	renderCfg render.Config,
	l *applogger.Logger,
) *usecase.SignalPipeline {
	return usecase.NewSignalPipeline(usecase.PipelineDeps{
		Source:   client,
		Fallback: fallback,
		Prices:   stream,
		Ledger:   ledger,
		Events:   publisher,
		Notifier: notifier,
		Metrics:  m,
		Clock:    time.Now,
		Logger:   l,
	}, normCfg, renderCfg, cfg.Pricefeed.FeedSymbols)
}

// ProvidePoller creates the refresh poller.
func ProvidePoller(pipeline *usecase.SignalPipeline, cfg *config.Config, l *applogger.Logger) *usecase.SignalPoller {
	return usecase.NewSignalPoller(pipeline, cfg.Upstream.PollInterval, l)
}

// ProvideApp assembles the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	poller *usecase.SignalPoller,
	stream repository.PriceStream,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	dispatch *queue.RedisQueue,
	chClient *pkgch.Client,
	publisher repository.Publisher,
	handler *api.SignalsHandler,
) *server.App {
	app := server.New(cfg, l, poller, stream, consumer, kh, dispatch, chClient, publisher)
	app.SetHTTPHandler(handler)
	return app
}

// ProvideSignalsHandler creates the HTTP handler with its cache and limiter.
func ProvideSignalsHandler(
	l *applogger.Logger,
	pipeline *usecase.SignalPipeline,
	ledger repository.Ledger,
	c icache.BytesCache,
	stream repository.PriceStream,
) *api.SignalsHandler {
	return api.NewSignalsHandler(l, pipeline, ledger, c, ratelimit.New(), stream)
}
