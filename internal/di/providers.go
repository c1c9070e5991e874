package di

import (
	"context"
	"fmt"
	"time"

	domrepo "BizPulse/internal/domain/repository"
	domsvc "BizPulse/internal/domain/service"
	"BizPulse/internal/handler/api"
	"BizPulse/internal/repository"
	"BizPulse/internal/service/ratelimit"
	"BizPulse/internal/services/kpi"
	"BizPulse/internal/usecase"
	"BizPulse/pkg/cache"
	pkgch "BizPulse/pkg/clickhouse"
	"BizPulse/pkg/config"
	"BizPulse/pkg/docstore"
	pkghttp "BizPulse/pkg/http"
	pkgkafka "BizPulse/pkg/kafka"
	applogger "BizPulse/pkg/logger"
	"BizPulse/pkg/metrics"
	"BizPulse/pkg/server"
)

// Engine is the core without any front end, used by the CLI.
type Engine struct {
	Manager   *usecase.RiskManager
	Health    *usecase.DomainHealth
	publisher domrepo.RiskPublisher
}

// Close flushes pending risk events.
func (e *Engine) Close() error {
	return e.publisher.Close()
}

func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

func ProvideMetrics() *metrics.Recorder {
	return metrics.New()
}

// ProvideRecordSource selects the record source from source.type and fronts it
// with a record cache when source.cache.ttl is set.
func ProvideRecordSource(cfg *config.Config, logger *applogger.Logger) (domrepo.RecordSource, func(), error) {
	src, cleanup, err := provideRawSource(cfg, logger)
	if err != nil || cfg.Source.Cache.TTL <= 0 {
		return src, cleanup, err
	}

	l1 := cache.NewTTLCache(cache.WithMaxSize(cfg.Source.Cache.MaxEntries))
	var bc cache.BytesCache = l1
	if cfg.Source.Cache.Redis {
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix + ":cache",
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("record cache: %w", err)
		}
		bc = cache.NewLayeredCache(l1, rc)
	}
	logger.Info("record cache enabled",
		applogger.Duration("ttl", cfg.Source.Cache.TTL),
		applogger.Bool("redis", cfg.Source.Cache.Redis),
	)

	return repository.NewCachedSource(src, bc, cfg.Source.Cache.TTL, logger), func() {
		if err := bc.Close(); err != nil {
			logger.Warn("record cache close failed", applogger.Error(err))
		}
		cleanup()
	}, nil
}

func provideRawSource(cfg *config.Config, logger *applogger.Logger) (domrepo.RecordSource, func(), error) {
	switch cfg.Source.Type {
	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithAddress(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
			pkgch.WithDatabase(cfg.ClickHouse.Database),
			pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
			pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
			pkgch.WithPool(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns, cfg.ClickHouse.ConnMaxLifetime),
			pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
			pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.InitSchema(ctx, repository.ClickHouseSchema(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		logger.Info("record source ready", applogger.String("type", "clickhouse"), applogger.String("database", cfg.ClickHouse.Database))
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn("clickhouse close failed", applogger.Error(err))
			}
		}
		return repository.NewClickHouseSource(client.DB(), cfg.ClickHouse.Database), cleanup, nil

	case "http":
		client := pkghttp.NewClient(
			pkghttp.WithTimeout(cfg.Source.HTTP.Timeout),
			pkghttp.WithRetries(2, 200*time.Millisecond),
		)
		logger.Info("record source ready", applogger.String("type", "http"), applogger.String("base_url", cfg.Source.HTTP.BaseURL))
		return repository.NewHTTPSource(client, cfg.Source.HTTP.BaseURL, cfg.Source.HTTP.APIKey), func() {}, nil

	default:
		logger.Info("record source ready", applogger.String("type", "file"), applogger.String("path", cfg.Source.Path))
		return repository.NewFileSource(cfg.Source.Path), func() {}, nil
	}
}

// ProvideDocumentBackend selects where the risk and memory documents live from store.type.
func ProvideDocumentBackend(cfg *config.Config, logger *applogger.Logger) (docstore.Backend, func(), error) {
	var (
		backend docstore.Backend
		err     error
	)
	switch cfg.Store.Type {
	case "redis":
		backend, err = docstore.NewRedisBackend(
			docstore.WithRedisHost(cfg.Redis.Host),
			docstore.WithRedisPort(cfg.Redis.Port),
			docstore.WithRedisPassword(cfg.Redis.Password),
			docstore.WithRedisDB(cfg.Redis.DB),
			docstore.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.PoolSize/2, 30*time.Second),
			docstore.WithRedisPrefix(cfg.Redis.Prefix),
		)
	case "sqlite":
		backend, err = docstore.NewSQLiteBackend(cfg.Store.SQLitePath)
	case "memory":
		backend = docstore.NewMemoryBackend()
	default:
		backend, err = docstore.NewFileBackend(cfg.Store.Dir)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("document store %s: %w", cfg.Store.Type, err)
	}
	logger.Info("document store ready", applogger.String("type", cfg.Store.Type))

	cleanup := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("document store close failed", applogger.Error(err))
		}
	}
	return backend, cleanup, nil
}

func ProvideRiskStore(backend docstore.Backend, logger *applogger.Logger) domrepo.RiskStore {
	return repository.NewRiskStore(backend.Document("risks"), logger)
}

func ProvideMemoryStore(backend docstore.Backend, logger *applogger.Logger, cfg *config.Config) domrepo.MemoryStore {
	return repository.NewMemoryStore(backend.Document("memory"), logger,
		repository.WithInsightLimit(cfg.Monitoring.InsightLimit))
}

// ProvideRiskPublisher publishes risk events to Kafka when enabled, otherwise drops them.
func ProvideRiskPublisher(cfg *config.Config) (domrepo.RiskPublisher, error) {
	if !cfg.Kafka.Enabled {
		return repository.NoopPublisher{}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return repository.NewKafkaRiskPublisher(producer, cfg.Kafka.EventsTopic), nil
}

func ProvideKPIProvider(source domrepo.RecordSource, logger *applogger.Logger, m domrepo.Metrics, cfg *config.Config) domsvc.KPIProvider {
	return kpi.NewProvider(source, logger, m, kpi.WithConfig(kpi.Config{
		InactiveDays:         cfg.Monitoring.InactiveDays,
		BaselineDays:         cfg.Monitoring.BaselineDays,
		LowStockDisplayLimit: cfg.Monitoring.LowStockDisplayLimit,
	}))
}

func ProvideSnapshotComposer(kpis domsvc.KPIProvider, m domrepo.Metrics) *usecase.SnapshotComposer {
	return usecase.NewSnapshotComposer(kpis, m)
}

func ProvideRiskGenerator(cfg *config.Config) *usecase.RiskGenerator {
	return usecase.NewRiskGenerator(usecase.WithInactiveWindow(cfg.Monitoring.InactiveDays))
}

func ProvideEngine(manager *usecase.RiskManager, health *usecase.DomainHealth, publisher domrepo.RiskPublisher) *Engine {
	return &Engine{Manager: manager, Health: health, publisher: publisher}
}

// ProvideHTTPHandler groups every route handler. POST routes are rate limited when enabled.
func ProvideHTTPHandler(cfg *config.Config, manager *usecase.RiskManager, health *usecase.DomainHealth, logger *applogger.Logger) pkghttp.Handler {
	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
	}
	return pkghttp.Handlers{
		api.NewMonitoringEchoHandler(manager, cfg.Monitoring.StreamInterval, logger),
		api.NewRisksEchoHandler(manager, limiter, logger),
		api.NewInsightsEchoHandler(health, logger),
	}
}

func ProvideHTTPServer(cfg *config.Config, handler pkghttp.Handler, logger *applogger.Logger) *pkghttp.Server {
	return pkghttp.NewServer(handler, logger,
		pkghttp.WithPort(cfg.Server.Port),
		pkghttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		pkghttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	)
}

// ProvideKafkaConsumer returns nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, manager *usecase.RiskManager, m domrepo.Metrics, logger *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(logger,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithConsumerHook(pkgkafka.TraceIDHook())
	consumer.RegisterHandler(usecase.NewRiskCommandsHandler(cfg.Kafka.CommandsTopic, manager, m, logger))
	logger.Info("kafka consumer ready",
		applogger.Strings("brokers", cfg.Kafka.Brokers),
		applogger.String("topic", cfg.Kafka.CommandsTopic),
		applogger.String("group_id", cfg.Kafka.Consumer.GroupID),
	)
	return consumer, nil
}

// ProvideSweeper returns nil when the sweeper is disabled.
func ProvideSweeper(cfg *config.Config, manager *usecase.RiskManager, logger *applogger.Logger) *usecase.Sweeper {
	if !cfg.Sweep.Enabled {
		return nil
	}
	return usecase.NewSweeper(manager, cfg.Sweep.Interval, cfg.Sweep.MaxAgeHours, logger)
}

func ProvideApp(
	logger *applogger.Logger,
	httpServer *pkghttp.Server,
	consumer *pkgkafka.Consumer,
	sweeper *usecase.Sweeper,
	publisher domrepo.RiskPublisher,
) *server.App {
	opts := []server.Option{
		server.WithRunner("http", httpServer),
		server.WithCloser("risk_publisher", publisher),
	}
	// Typed nils must not reach the interface-valued options.
	if consumer != nil {
		opts = append(opts, server.WithRunner("kafka_consumer", consumer))
	}
	if sweeper != nil {
		opts = append(opts, server.WithRunner("sweeper", sweeper))
	}
	return server.New(logger, opts...)
}
