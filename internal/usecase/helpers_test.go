package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"BizPulse/internal/domain/models"
	"BizPulse/internal/repository"
	"BizPulse/pkg/docstore"
	"BizPulse/pkg/metrics"
)

var testNow = time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

type stubKPIs struct {
	rev  models.RevenueReport
	cust models.CustomerReport
	fin  models.FinanceReport
	inv  models.InventoryReport
}

func (s *stubKPIs) Revenue(context.Context) models.RevenueReport { return s.rev }
func (s *stubKPIs) Customers(context.Context) models.CustomerReport { return s.cust }
func (s *stubKPIs) Finance(context.Context) models.FinanceReport { return s.fin }
func (s *stubKPIs) Inventory(context.Context) models.InventoryReport { return s.inv }

// scenarioKPIs is the reference scenario: only revenue is alerting.
func scenarioKPIs() *stubKPIs {
	return &stubKPIs{
		rev: models.RevenueReport{
			KPIs:    models.RevenueKPIs{CurrentRevenue: 90000, PreviousRevenue: 109756.1, RevenueChangePct: -18},
			Anomaly: models.Anomaly{IsAnomaly: true, Severity: models.SeverityHigh},
		},
		cust: models.CustomerReport{
			KPIs:    models.CustomerKPIs{TotalCustomers: 200, InactiveCount: 20, ChurnRatePct: 10, InactiveWindowDays: 30},
			Anomaly: models.Anomaly{Severity: models.SeverityLow},
		},
		fin: models.FinanceReport{
			KPIs:         models.FinanceKPIs{TotalSpend: 10_000_000},
			Anomaly:      models.Anomaly{Severity: models.SeverityLow},
			PaymentCycle: models.PaymentCycle{OverdueInvoices: 4, OverdueAmount: 500_000},
		},
		inv: models.InventoryReport{
			KPIs:     models.InventoryKPIs{DaysInventory: 20},
			Anomaly:  models.Anomaly{Severity: models.SeverityLow},
			LowStock: models.LowStock{Count: 2},
		},
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.RiskEvent
	err    error
}

func (p *recordingPublisher) PublishRiskEvents(_ context.Context, events []models.RiskEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

var errPublish = errors.New("broker unavailable")

type managerFixture struct {
	kpis      *stubKPIs
	store     *repository.DocumentRiskStore
	publisher *recordingPublisher
	manager   *RiskManager
}

func newManagerFixture(kpis *stubKPIs) *managerFixture {
	store := repository.NewRiskStore(docstore.NewMemoryBackend().Document("risks"), nil, repository.WithStoreClock(clock))
	pub := &recordingPublisher{}
	composer := NewSnapshotComposer(kpis, metrics.Nop{}, WithComposerClock(clock))
	gen := NewRiskGenerator(WithGeneratorClock(clock))
	return &managerFixture{
		kpis:      kpis,
		store:     store,
		publisher: pub,
		manager:   NewRiskManager(composer, gen, kpis, store, pub, metrics.Nop{}, nil),
	}
}
