package usecase

import (
	"context"
	"time"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	domsvc "BizPulse/internal/domain/service"
)

// Snapshot-level alert thresholds. These are separate from the per-KPI anomaly rules.
const (
	RevenueAlertPct              = -10.0
	HighChurnPct                 = 50.0
	CashCrunchOverduePct         = 15.0
	CashCrunchOutstanding        = 10_000_000.0
	InventoryCrisisLowStock      = 10
	InventoryCrisisDaysInventory = 45.0
)

// SnapshotComposer builds the dashboard snapshot from the four KPI providers.
// It never caches: each call reflects the current source data.
type SnapshotComposer struct {
	kpis    domsvc.KPIProvider
	metrics domrepo.Metrics
	now     func() time.Time
}

type ComposerOption func(*SnapshotComposer)

func WithComposerClock(now func() time.Time) ComposerOption {
	return func(c *SnapshotComposer) { c.now = now }
}

func NewSnapshotComposer(kpis domsvc.KPIProvider, metrics domrepo.Metrics, opts ...ComposerOption) *SnapshotComposer {
	c := &SnapshotComposer{kpis: kpis, metrics: metrics, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *SnapshotComposer) Compute(ctx context.Context) models.Snapshot {
	start := time.Now()
	s := BuildSnapshot(
		c.now(),
		c.kpis.Revenue(ctx),
		c.kpis.Customers(ctx),
		c.kpis.Finance(ctx),
		c.kpis.Inventory(ctx),
	)
	c.metrics.RecordLatency("snapshot", time.Since(start).Seconds())
	c.metrics.RecordSnapshot(string(s.Status.OverallHealth))
	return s
}

// BuildSnapshot derives the snapshot metrics and status flags from domain reports.
func BuildSnapshot(ts time.Time, rev models.RevenueReport, cust models.CustomerReport, fin models.FinanceReport, inv models.InventoryReport) models.Snapshot {
	// Flags compare unrounded ratios; rounding is for display only.
	overdueAmount := fin.PaymentCycle.OverdueAmount
	overduePct := 0.0
	if fin.KPIs.TotalSpend > 0 {
		overduePct = overdueAmount / fin.KPIs.TotalSpend * 100
	}
	churnPct := 0.0
	if cust.KPIs.TotalCustomers > 0 {
		churnPct = float64(cust.KPIs.InactiveCount) / float64(cust.KPIs.TotalCustomers) * 100
	}

	status := models.SnapshotStatus{
		RevenueAlert:    RevenueAlert(rev.KPIs.RevenueChangePct),
		HighChurn:       HighChurn(churnPct),
		CashCrunch:      CashCrunch(overduePct, overdueAmount),
		InventoryCrisis: InventoryCrisis(inv.LowStock.Count, inv.KPIs.DaysInventory),
	}
	status.OverallHealth = ClassifyHealth(status)

	return models.Snapshot{
		Timestamp: ts.UTC(),
		Metrics: models.SnapshotMetrics{
			Revenue: models.RevenueMetrics{
				CurrentRevenue:   rev.KPIs.CurrentRevenue,
				RevenueChangePct: rev.KPIs.RevenueChangePct,
				Alert:            status.RevenueAlert,
			},
			Customers: models.CustomerMetrics{
				TotalCustomers: cust.KPIs.TotalCustomers,
				InactiveCount:  cust.KPIs.InactiveCount,
				ChurnRatePct:   cust.KPIs.ChurnRatePct,
				Alert:          status.HighChurn,
			},
			Finance: models.FinanceMetrics{
				OutstandingCashAmount: round2(overdueAmount),
				OverdueInvoices:       fin.PaymentCycle.OverdueInvoices,
				OverduePct:            round2(overduePct),
				Alert:                 status.CashCrunch,
			},
			Inventory: models.InventoryMetrics{
				LowStockItemCount: inv.LowStock.Count,
				DaysInventory:     inv.KPIs.DaysInventory,
				Alert:             status.InventoryCrisis,
			},
		},
		Status: status,
	}
}

func RevenueAlert(changePct float64) bool { return changePct < RevenueAlertPct }

func HighChurn(churnPct float64) bool { return churnPct > HighChurnPct }

func CashCrunch(overduePct, outstanding float64) bool {
	return overduePct > CashCrunchOverduePct || outstanding > CashCrunchOutstanding
}

func InventoryCrisis(lowStockCount int, daysInventory float64) bool {
	return lowStockCount > InventoryCrisisLowStock || daysInventory > InventoryCrisisDaysInventory
}

// ClassifyHealth: any of churn, cash or revenue alerts is critical; an inventory crisis alone is a warning.
func ClassifyHealth(s models.SnapshotStatus) models.Health {
	switch {
	case s.HighChurn || s.CashCrunch || s.RevenueAlert:
		return models.HealthCritical
	case s.InventoryCrisis:
		return models.HealthWarning
	default:
		return models.HealthHealthy
	}
}
