package kpi

import (
	"context"
	"time"

	"BizPulse/internal/domain/models"
	"BizPulse/internal/domain/repository"
	domsvc "BizPulse/internal/domain/service"
	applogger "BizPulse/pkg/logger"
)

// Config tunes the KPI windows.
type Config struct {
	InactiveDays         int
	BaselineDays         int
	LowStockDisplayLimit int
	TopCustomers         int
}

type Option func(*Provider)

func WithConfig(cfg Config) Option {
	return func(p *Provider) {
		if cfg.InactiveDays > 0 {
			p.cfg.InactiveDays = cfg.InactiveDays
		}
		if cfg.BaselineDays > 0 {
			p.cfg.BaselineDays = cfg.BaselineDays
		}
		if cfg.LowStockDisplayLimit > 0 {
			p.cfg.LowStockDisplayLimit = cfg.LowStockDisplayLimit
		}
		if cfg.TopCustomers > 0 {
			p.cfg.TopCustomers = cfg.TopCustomers
		}
	}
}

// WithClock overrides the reference time used for inactivity windows.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// Provider computes domain reports from a RecordSource.
// A failing source is logged and counted, and the affected input is treated as empty.
type Provider struct {
	source  repository.RecordSource
	logger  *applogger.Logger
	metrics repository.Metrics
	cfg     Config
	now     func() time.Time
}

var _ domsvc.KPIProvider = (*Provider)(nil)

func NewProvider(source repository.RecordSource, logger *applogger.Logger, metrics repository.Metrics, opts ...Option) *Provider {
	p := &Provider{
		source:  source,
		logger:  logger,
		metrics: metrics,
		cfg: Config{
			InactiveDays:         DefaultInactiveDays,
			BaselineDays:         DefaultBaselineDays,
			LowStockDisplayLimit: DefaultLowStockDisplayLimit,
			TopCustomers:         defaultTopCustomers,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = applogger.Nop()
	}
	return p
}

func (p *Provider) Revenue(ctx context.Context) models.RevenueReport {
	defer p.observe("kpi_revenue", time.Now())
	invoices := load(ctx, p, models.DomainRevenue, "invoices", p.source.Invoices)
	orders := load(ctx, p, models.DomainRevenue, "orders", p.source.Orders)
	return ComputeRevenue(invoices, orders)
}

func (p *Provider) Customers(ctx context.Context) models.CustomerReport {
	defer p.observe("kpi_customers", time.Now())
	customers := load(ctx, p, models.DomainCustomers, "customers", p.source.Customers)
	return ComputeCustomers(customers, p.now(), p.cfg.InactiveDays, p.cfg.TopCustomers)
}

func (p *Provider) Finance(ctx context.Context) models.FinanceReport {
	defer p.observe("kpi_finance", time.Now())
	invoices := load(ctx, p, models.DomainFinance, "invoices", p.source.Invoices)
	return ComputeFinance(invoices, p.cfg.BaselineDays)
}

func (p *Provider) Inventory(ctx context.Context) models.InventoryReport {
	defer p.observe("kpi_inventory", time.Now())
	orders := load(ctx, p, models.DomainInventory, "orders", p.source.Orders)
	products := load(ctx, p, models.DomainInventory, "products", p.source.Products)
	return ComputeInventory(orders, products, p.cfg.LowStockDisplayLimit)
}

func (p *Provider) observe(op string, start time.Time) {
	p.metrics.RecordLatency(op, time.Since(start).Seconds())
}

func load[T any](ctx context.Context, p *Provider, domain models.Domain, records string, fetch func(context.Context) ([]T, error)) []T {
	rows, err := fetch(ctx)
	if err != nil {
		p.logger.Warn("record source failed, using empty input",
			applogger.String("domain", string(domain)),
			applogger.String("records", records),
			applogger.Error(err),
		)
		p.metrics.RecordError("source_" + string(domain))
		return nil
	}
	return rows
}
