package usecase

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	domsvc "BizPulse/internal/domain/service"
	applogger "BizPulse/pkg/logger"
)

const DefaultMaxAgeHours = 48

// RiskManager runs the risk lifecycle: generate and persist, resolve, sweep.
// The store is the source of truth; events are published after a successful write.
type RiskManager struct {
	composer  *SnapshotComposer
	generator *RiskGenerator
	kpis      domsvc.KPIProvider
	store     domrepo.RiskStore
	publisher domrepo.RiskPublisher
	metrics   domrepo.Metrics
	logger    *applogger.Logger
	now       func() time.Time

	seqResumed atomic.Bool
}

func NewRiskManager(
	composer *SnapshotComposer,
	generator *RiskGenerator,
	kpis domsvc.KPIProvider,
	store domrepo.RiskStore,
	publisher domrepo.RiskPublisher,
	metrics domrepo.Metrics,
	logger *applogger.Logger,
) *RiskManager {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &RiskManager{
		composer:  composer,
		generator: generator,
		kpis:      kpis,
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

func (m *RiskManager) Snapshot(ctx context.Context) models.Snapshot {
	return m.composer.Compute(ctx)
}

func (m *RiskManager) Overview(ctx context.Context) models.Overview {
	return models.NewOverview(m.composer.Compute(ctx))
}

func (m *RiskManager) AverageOrderValue(ctx context.Context) float64 {
	return m.kpis.Finance(ctx).AverageOrderValue
}

// GenerateAndStore appends one new risk per raised alert. Repeated calls against
// an unchanged condition append again; there is no dedup.
func (m *RiskManager) GenerateAndStore(ctx context.Context) ([]models.Risk, error) {
	if err := m.resumeSequence(ctx); err != nil {
		m.metrics.RecordError("risk_store_list")
		return nil, err
	}
	risks := m.generator.Generate(m.composer.Compute(ctx))
	if len(risks) == 0 {
		return risks, nil
	}
	if err := m.store.Append(ctx, risks); err != nil {
		m.metrics.RecordError("risk_store_append")
		return nil, err
	}
	for _, r := range risks {
		m.metrics.RecordRisksGenerated(string(r.RiskType), 1)
	}
	m.logger.Info("risks generated", applogger.Int("count", len(risks)))
	m.publish(ctx, models.RiskEventCreated, risks)
	return risks, nil
}

// Resolve marks the risk resolved. Unknown or already resolved ids return an empty slice.
func (m *RiskManager) Resolve(ctx context.Context, riskID, reason string) ([]models.Risk, error) {
	resolved, err := m.store.Resolve(ctx, riskID, reason)
	if err != nil {
		m.metrics.RecordError("risk_store_resolve")
		return nil, err
	}
	if len(resolved) > 0 {
		m.metrics.RecordRisksResolved("manual", len(resolved))
		m.logger.Info("risk resolved", applogger.String("risk_id", riskID))
		m.publish(ctx, models.RiskEventResolved, resolved)
	}
	return resolved, nil
}

// AutoResolveStale evaluates a fresh snapshot and resolves risks whose type is
// no longer flagged and that are older than maxAgeHours.
func (m *RiskManager) AutoResolveStale(ctx context.Context, maxAgeHours int) ([]models.Risk, error) {
	if maxAgeHours < 0 {
		maxAgeHours = DefaultMaxAgeHours
	}
	snapshot := m.composer.Compute(ctx)
	active := snapshot.Status.ActiveRiskTypes()
	resolved, err := m.store.ResolveStale(ctx, active, time.Duration(maxAgeHours)*time.Hour)
	if err != nil {
		m.metrics.RecordError("risk_store_auto_resolve")
		return nil, err
	}
	if len(resolved) > 0 {
		m.metrics.RecordRisksResolved("auto", len(resolved))
		m.logger.Info("stale risks auto-resolved",
			applogger.Int("count", len(resolved)),
			applogger.Int("max_age_hours", maxAgeHours),
		)
		m.publish(ctx, models.RiskEventResolved, resolved)
	}
	return resolved, nil
}

func (m *RiskManager) ActiveRisks(ctx context.Context) ([]models.Risk, error) {
	return m.store.ListActive(ctx)
}

func (m *RiskManager) HistoricalRisks(ctx context.Context) ([]models.Risk, error) {
	return m.store.ListHistorical(ctx)
}

func (m *RiskManager) AllRisks(ctx context.Context) ([]models.Risk, error) {
	return m.store.ListAll(ctx)
}

func (m *RiskManager) publish(ctx context.Context, typ models.RiskEventType, risks []models.Risk) {
	if m.publisher == nil {
		return
	}
	at := m.now().UTC()
	events := make([]models.RiskEvent, len(risks))
	for i, r := range risks {
		events[i] = models.RiskEvent{
			EventID:    uuid.NewString(),
			EventType:  typ,
			OccurredAt: at,
			Risk:       r,
		}
	}
	if err := m.publisher.PublishRiskEvents(ctx, events); err != nil {
		m.metrics.RecordError("risk_event_publish")
		m.logger.Warn("publish risk events failed",
			applogger.String("event_type", string(typ)),
			applogger.Int("count", len(events)),
			applogger.Error(err),
		)
	}
}

// resumeSequence seeds the id counter from the stored risks once per process.
func (m *RiskManager) resumeSequence(ctx context.Context) error {
	if m.seqResumed.Load() {
		return nil
	}
	all, err := m.store.ListAll(ctx)
	if err != nil {
		return err
	}
	ids := make([]string, len(all))
	for i, r := range all {
		ids[i] = r.RiskID
	}
	ResumeSequence(ids)
	m.seqResumed.Store(true)
	return nil
}
