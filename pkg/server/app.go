package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PolyWatch/internal/usecase"
	pkgcache "PolyWatch/pkg/cache"
	pkgch "PolyWatch/pkg/clickhouse"
	"PolyWatch/pkg/config"
	xhttp "PolyWatch/pkg/http"
	pkgkafka "PolyWatch/pkg/kafka"
	applogger "PolyWatch/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.TradeCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	cacheSvc    pkgcache.Service
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	tradeProc   *usecase.TradeProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.TradeCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	cacheSvc pkgcache.Service,
	httpHandler xhttp.Handler,
) *App {
	app := &App{
		cfg:         cfg,
		logger:      logger,
		collector:   collector,
		consumer:    consumer,
		kh:          kh,
		chClient:    chClient,
		cacheSvc:    cacheSvc,
		httpHandler: httpHandler,
	}
	if collector != nil {
		app.tradeProc = collector.Processor()
	}
	return app
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithAddr("", a.cfg.Server.Port),
		xhttp.WithServerTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.logger.Error("collector start error", applogger.Error(err))
			return err
		}
		a.logger.Info("collector started", applogger.Strings("markets", a.cfg.Stream.Markets))
	}

	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		if err := a.consumer.Start(); err != nil {
			a.logger.Error("kafka consumer start error", applogger.Error(err))
			return err
		}
		a.logger.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- a.httpServer.Start()
	}()
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil {
			a.logger.Error("http server error", applogger.Error(err))
			return err
		}
	case <-sigCh:
		a.logger.Info("shutdown signal received")
	}

	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.logger.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.logger.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	if a.tradeProc != nil {
		a.tradeProc.Close()
	}

	if a.cacheSvc != nil {
		if err := a.cacheSvc.Close(); err != nil {
			a.logger.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
