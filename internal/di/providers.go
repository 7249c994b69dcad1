package di

import (
	"context"
	"fmt"
	"time"

	"PolyWatch/internal/alerting"
	"PolyWatch/internal/domain/repository"
	"PolyWatch/internal/handler/api"
	mid "PolyWatch/internal/middleware"
	internalrepo "PolyWatch/internal/repository"
	"PolyWatch/internal/service/polymarket"
	"PolyWatch/internal/services/anomaly"
	"PolyWatch/internal/services/ensemble"
	"PolyWatch/internal/services/explain"
	"PolyWatch/internal/services/features"
	"PolyWatch/internal/services/graph"
	"PolyWatch/internal/services/sequence"
	"PolyWatch/internal/services/zoo"
	"PolyWatch/internal/usecase"
	pkgcache "PolyWatch/pkg/cache"
	pkgch "PolyWatch/pkg/clickhouse"
	"PolyWatch/pkg/config"
	xhttp "PolyWatch/pkg/http"
	pkgkafka "PolyWatch/pkg/kafka"
	applogger "PolyWatch/pkg/logger"
	"PolyWatch/pkg/metrics"
	"PolyWatch/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and ensures the schema.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stmts := internalrepo.SchemaStatements(tradeTable(cfg), alertTable(cfg))
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

func tradeTable(cfg *config.Config) string { return cfg.ClickHouse.Database + ".trades" }
func alertTable(cfg *config.Config) string { return cfg.ClickHouse.Database + ".alerts" }

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideCacheService creates the score cache backend: Redis when enabled,
// in-process otherwise.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	svc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		pkgcache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return svc, nil
}

// ProvideScoreCache creates the per-entity score store.
func ProvideScoreCache(svc pkgcache.Service, cfg *config.Config) repository.ScoreCache {
	return internalrepo.NewCachedScoreStore(svc, cfg.Redis.ScoreTTL)
}

// ProvideTradeStorage creates ClickHouse trade storage.
func ProvideTradeStorage(chClient *pkgch.Client, cfg *config.Config) repository.TradeStorage {
	return internalrepo.NewClickHouseTradeStorage(chClient.DB(), tradeTable(cfg))
}

// ProvideAlertStorage creates ClickHouse alert storage.
func ProvideAlertStorage(chClient *pkgch.Client, cfg *config.Config) repository.AlertStorage {
	return internalrepo.NewClickHouseAlertStorage(chClient.DB(), alertTable(cfg))
}

// ProvideAlertPublisher creates the Kafka alert publisher.
func ProvideAlertPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaAlertPublisher(producer, cfg.Kafka.AlertsTopic)
}

// ProvideTradeStream creates the venue WebSocket stream.
func ProvideTradeStream(cfg *config.Config) repository.TradeStream {
	return polymarket.New(
		cfg.Stream.WebSocketURL,
		cfg.Stream.Markets,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
	)
}

// ProvideRecentBuffer creates the in-memory recent trade window.
func ProvideRecentBuffer() *usecase.RecentTradesBuffer {
	return usecase.NewRecentTradesBuffer(10000, 30*time.Minute)
}

// ProvideTradeProcessor creates the trade processor use case.
func ProvideTradeProcessor(
	producer *pkgkafka.Producer,
	store repository.TradeStorage,
	buffer *usecase.RecentTradesBuffer,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.TradeProcessor {
	return usecase.NewTradeProcessor(producer, cfg.Kafka.TradesTopic, store, buffer, m, cfg.Ingest.Backend)
}

// ProvideTradeCollector creates the trade collector with its ingest pipeline.
func ProvideTradeCollector(
	stream repository.TradeStream,
	processor *usecase.TradeProcessor,
	m repository.Metrics,
) *usecase.TradeCollector {
	pipe := mid.NewIngestPipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewTradeCollector(stream, processor, m, pipe)
}

// ProvideKafkaTradesHandler registers the handler for the trades topic.
func ProvideKafkaTradesHandler(store repository.TradeStorage, m repository.Metrics, cfg *config.Config) pkgkafka.MessageHandler {
	return usecase.NewKafkaTradesHandler(cfg.Kafka.TradesTopic, store, m)
}

// ProvideRegistry builds the model zoo: a calibrated logistic model, a
// heuristic baseline, and optionally a remote scorer.
func ProvideRegistry(cfg *config.Config) (*zoo.Registry, error) {
	wrappers := []*zoo.Wrapper{
		{
			Name: "logistic",
			Model: &zoo.LogisticModel{
				ModelName: "logistic",
				Weights: map[string]float64{
					features.FeatAvgTradeSize: 0.002,
					features.FeatProfitProxy:  2.5,
					features.FeatTimeToRes:    -0.00001,
				},
				Bias: -1.0,
			},
			Postprocess: zoo.Clamp01,
		},
		{
			Name:        "heuristic",
			Model:       &zoo.HeuristicModel{ModelName: "heuristic"},
			Postprocess: zoo.Clamp01,
		},
	}
	if cfg.Detection.RemoteModelURL != "" {
		name := cfg.Detection.RemoteModelName
		if name == "" {
			name = "remote"
		}
		remote := zoo.NewRemoteModel(name, cfg.Detection.RemoteModelURL, cfg.Detection.RemoteTimeout)
		wrappers = append(wrappers, &zoo.Wrapper{Name: name, Model: remote, Postprocess: zoo.Clamp01})
	}
	return zoo.NewRegistry(wrappers...)
}

// ProvideDispatcher creates the alert dispatcher with its delivery sinks.
func ProvideDispatcher(pub repository.Publisher, store repository.AlertStorage, cfg *config.Config) *alerting.Dispatcher {
	sinks := []alerting.Sink{
		alerting.NewPublisherSink(pub),
		alerting.NewStorageSink(store),
	}
	return alerting.NewDispatcher(cfg.Detection.CriticalThreshold, cfg.Detection.HighThreshold, sinks...)
}

// ProvidePipeline assembles the detection pipeline from config.
func ProvidePipeline(
	buffer *usecase.RecentTradesBuffer,
	registry *zoo.Registry,
	dispatcher *alerting.Dispatcher,
	m repository.Metrics,
	scores repository.ScoreCache,
	logger *applogger.Logger,
	cfg *config.Config,
) (*usecase.Pipeline, error) {
	opts := []usecase.PipelineOption{
		usecase.WithMarketsOfInterest(cfg.Detection.MarketsOfInterest),
		usecase.WithMetrics(m),
		usecase.WithScoreCache(scores),
		usecase.WithLogger(logger),
	}
	if cfg.Detection.EnableSequence {
		opts = append(opts, usecase.WithSequenceEncoder(sequence.NewEncoder(cfg.Detection.EmbeddingDim)))
	}
	if cfg.Detection.EnableGraph {
		opts = append(opts, usecase.WithGraphBuilder(graph.NewBuilder(
			graph.WithThreshold(cfg.Detection.GraphThreshold),
			graph.WithConcurrency(cfg.Detection.GraphConcurrency),
		)))
	}
	if cfg.Detection.EnableAnomaly {
		opts = append(opts, usecase.WithAnomalyEngine(anomaly.NewEngine(
			&anomaly.SizeSpikeDetector{},
			&anomaly.ProfitOutlierDetector{},
		)))
	}
	if cfg.Detection.EnableExplain {
		opts = append(opts, usecase.WithExplainer(explain.New()))
	}

	return usecase.NewPipeline(
		buffer,
		features.NewStore(),
		registry,
		ensemble.NewCombiner(cfg.Detection.EnsembleWeights),
		dispatcher,
		opts...,
	)
}

// ProvideHTTPHandler creates the detection API handler.
func ProvideHTTPHandler(
	logger *applogger.Logger,
	pipeline *usecase.Pipeline,
	tradeStore repository.TradeStorage,
	alertStore repository.AlertStorage,
	scores repository.ScoreCache,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewDetectionEchoHandler(logger, pipeline, tradeStore, alertStore, scores, cfg.Detection.RunRatePerMinute)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.TradeCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	cacheSvc pkgcache.Service,
	httpHandler xhttp.Handler,
) *server.App {
	return server.New(cfg, logger, collector, consumer, kh, chClient, cacheSvc, httpHandler)
}
