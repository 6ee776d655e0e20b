package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	drepo "SignalDesk/internal/domain/repository"
	"SignalDesk/internal/usecase"
	pkgch "SignalDesk/pkg/clickhouse"
	"SignalDesk/pkg/config"
	xhttp "SignalDesk/pkg/http"
	pkgkafka "SignalDesk/pkg/kafka"
	applogger "SignalDesk/pkg/logger"
	"SignalDesk/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg    *config.Config
	logger *applogger.Logger
	poller *usecase.SignalPoller

	stream    drepo.PriceStream   // nil when pricefeed is disabled
	consumer  *pkgkafka.Consumer  // nil when kafka ingest is disabled
	kh        pkgkafka.MessageHandler
	dispatch  *queue.RedisQueue   // nil when telegram is disabled
	chClient  *pkgch.Client       // nil when clickhouse is disabled
	publisher drepo.Publisher     // nil when kafka is disabled

	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	poller *usecase.SignalPoller,
	stream drepo.PriceStream,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	dispatch *queue.RedisQueue,
	chClient *pkgch.Client,
	publisher drepo.Publisher,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		poller:    poller,
		stream:    stream,
		consumer:  consumer,
		kh:        kh,
		dispatch:  dispatch,
		chClient:  chClient,
		publisher: publisher,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.logger

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Price feed first: the sooner a quote is known, the sooner lifecycle
	// classification has something to work with.
	if a.stream != nil {
		go func() {
			if err := a.stream.Connect(ctx); err != nil {
				l.Warn("pricefeed connect error", applogger.Error(err))
			} else if err := a.stream.Subscribe(ctx); err != nil {
				l.Warn("pricefeed subscribe error", applogger.Error(err))
			}
			if err := a.stream.Run(ctx); err != nil && ctx.Err() == nil {
				l.Error("pricefeed stopped", applogger.Error(err))
			}
		}()
		l.Info("pricefeed started", applogger.Strings("symbols", a.cfg.Pricefeed.Symbols))
	}

	go func() {
		if err := a.poller.Run(ctx); err != nil && ctx.Err() == nil {
			l.Error("poller error", applogger.Error(err))
		}
	}()
	l.Info("signal poller started", applogger.Duration("interval", a.cfg.Upstream.PollInterval))

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	if a.dispatch != nil {
		if err := a.dispatch.Start(); err != nil {
			l.Error("dispatch queue start error", applogger.Error(err))
			return err
		}
		l.Info("telegram dispatch queue started")
	}

	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	cancel()
	return a.shutdown(context.Background())
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.logger

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			l.Warn("pricefeed close error", applogger.Error(err))
		}
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.dispatch != nil {
		if err := a.dispatch.Stop(shutdownCtx); err != nil {
			l.Warn("dispatch queue stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
