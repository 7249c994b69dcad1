//go:build wireinject
// +build wireinject

package di

import (
	"PolyWatch/pkg/config"
	"PolyWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideCacheService,

		// Repositories
		ProvideTradeStorage,
		ProvideAlertStorage,
		ProvideAlertPublisher,
		ProvideScoreCache,
		ProvideTradeStream,

		// Ingestion use cases
		ProvideRecentBuffer,
		ProvideTradeProcessor,
		ProvideTradeCollector,
		ProvideKafkaTradesHandler,

		// Detection
		ProvideRegistry,
		ProvideDispatcher,
		ProvidePipeline,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
