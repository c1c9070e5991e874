//go:build wireinject
// +build wireinject

package di

import (
	domrepo "BizPulse/internal/domain/repository"
	"BizPulse/internal/usecase"
	"BizPulse/pkg/config"
	"BizPulse/pkg/metrics"
	"BizPulse/pkg/server"

	"github.com/google/wire"
)

var coreSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	wire.Bind(new(domrepo.Metrics), new(*metrics.Recorder)),

	ProvideRecordSource,
	ProvideDocumentBackend,
	ProvideRiskStore,
	ProvideMemoryStore,
	ProvideRiskPublisher,

	ProvideKPIProvider,
	ProvideSnapshotComposer,
	ProvideRiskGenerator,
	usecase.NewRiskManager,
	usecase.NewDomainHealth,
)

// InitializeApp wires the HTTP server, the Kafka consumer and the sweeper around the core.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		coreSet,
		ProvideHTTPHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,
		ProvideSweeper,
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeEngine wires the core only.
func InitializeEngine(cfg *config.Config) (*Engine, func(), error) {
	wire.Build(
		coreSet,
		ProvideEngine,
	)
	return nil, nil, nil
}
