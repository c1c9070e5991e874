package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"BizPulse/internal/domain/models"
)

const (
	revenueHighRiskPct     = -15.0
	churnHighRiskPct       = 60.0
	cashFlowHighRiskAmount = 20_000_000.0
	defaultInactiveDays    = 30
)

// riskSeq makes ids unique even when two generations share a timestamp.
var riskSeq atomic.Uint64

// ResumeSequence raises the id counter to the highest sequence suffix in ids,
// so ids minted after a restart never repeat persisted ones.
func ResumeSequence(ids []string) {
	var highest uint64
	for _, id := range ids {
		i := strings.LastIndexByte(id, '_')
		if i < 0 {
			continue
		}
		if n, err := strconv.ParseUint(id[i+1:], 10, 64); err == nil && n > highest {
			highest = n
		}
	}
	for {
		cur := riskSeq.Load()
		if cur >= highest || riskSeq.CompareAndSwap(cur, highest) {
			return
		}
	}
}

// RiskGenerator turns raised snapshot alerts into new ACTIVE risks, at most one per domain.
type RiskGenerator struct {
	now          func() time.Time
	inactiveDays int
}

type GeneratorOption func(*RiskGenerator)

func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *RiskGenerator) { g.now = now }
}

// WithInactiveWindow sets the day count quoted in customer risk descriptions.
func WithInactiveWindow(days int) GeneratorOption {
	return func(g *RiskGenerator) {
		if days > 0 {
			g.inactiveDays = days
		}
	}
}

func NewRiskGenerator(opts ...GeneratorOption) *RiskGenerator {
	g := &RiskGenerator{now: time.Now, inactiveDays: defaultInactiveDays}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate emits risks in the order REVENUE, CUSTOMER, CASH_FLOW, INVENTORY.
// Severity is derived from each domain's own metric, not from the KPI anomaly.
func (g *RiskGenerator) Generate(s models.Snapshot) []models.Risk {
	ts := g.now().UTC()
	m := s.Metrics
	risks := make([]models.Risk, 0, 4)

	if m.Revenue.Alert {
		change := m.Revenue.RevenueChangePct
		severity := models.SeverityMedium
		if change <= revenueHighRiskPct {
			severity = models.SeverityHigh
		}
		risks = append(risks, newRisk(models.RiskTypeRevenue, ts, severity,
			fmt.Sprintf("Revenue declined %s%% compared to previous period. Investigate pricing, customer activity, or market conditions.", formatDecimal(change)),
			map[string]float64{"revenue_change_pct": change},
		))
	}

	if m.Customers.Alert {
		churn := m.Customers.ChurnRatePct
		severity := models.SeverityMedium
		if churn > churnHighRiskPct {
			severity = models.SeverityHigh
		}
		risks = append(risks, newRisk(models.RiskTypeCustomer, ts, severity,
			fmt.Sprintf("%.1f%% of customers are inactive (>%d days). High churn may signal service or engagement issues.", churn, g.inactiveDays),
			map[string]float64{"churn_rate_pct": churn, "inactive_count": float64(m.Customers.InactiveCount)},
		))
	}

	if m.Finance.Alert {
		amount := m.Finance.OutstandingCashAmount
		severity := models.SeverityMedium
		if amount > cashFlowHighRiskAmount {
			severity = models.SeverityHigh
		}
		risks = append(risks, newRisk(models.RiskTypeCashFlow, ts, severity,
			fmt.Sprintf("%d overdue invoices totaling $%s. Immediate collection action required to maintain cash flow.", m.Finance.OverdueInvoices, formatMoney(amount)),
			map[string]float64{"overdue_amount": amount, "overdue_invoices": float64(m.Finance.OverdueInvoices)},
		))
	}

	if m.Inventory.Alert {
		lowStock := m.Inventory.LowStockItemCount
		days := m.Inventory.DaysInventory
		severity := models.SeverityLow
		desc := fmt.Sprintf("Inventory sitting for %.1f days (high holding cost).", days)
		if lowStock > InventoryCrisisLowStock {
			severity = models.SeverityMedium
			desc = fmt.Sprintf("%d SKUs below reorder threshold.", lowStock)
		}
		risks = append(risks, newRisk(models.RiskTypeInventory, ts, severity, desc,
			map[string]float64{"low_stock_count": float64(lowStock), "days_inventory": days},
		))
	}

	return risks
}

func newRisk(typ models.RiskType, ts time.Time, severity models.Severity, desc string, metrics map[string]float64) models.Risk {
	return models.Risk{
		RiskID:      fmt.Sprintf("%s_%s_%d", typ, ts.Format("2006-01-02T15:04:05.000000Z"), riskSeq.Add(1)),
		RiskType:    typ,
		Description: desc,
		Severity:    severity,
		Timestamp:   ts,
		Status:      models.RiskStatusActive,
		Metrics:     metrics,
	}
}
