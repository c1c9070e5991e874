package usecase

import (
	"strings"
	"testing"

	"BizPulse/internal/domain/models"
)

func alertingSnapshot() models.Snapshot {
	return models.Snapshot{
		Timestamp: testNow,
		Metrics: models.SnapshotMetrics{
			Revenue:   models.RevenueMetrics{RevenueChangePct: -12.5, Alert: true},
			Customers: models.CustomerMetrics{ChurnRatePct: 65.25, InactiveCount: 130, Alert: true},
			Finance:   models.FinanceMetrics{OutstandingCashAmount: 12_345_678.9, OverdueInvoices: 42, Alert: true},
			Inventory: models.InventoryMetrics{LowStockItemCount: 14, DaysInventory: 12, Alert: true},
		},
	}
}

func TestGenerateNoAlerts(t *testing.T) {
	g := NewRiskGenerator(WithGeneratorClock(clock))
	if risks := g.Generate(models.Snapshot{}); len(risks) != 0 {
		t.Fatalf("risks = %+v, want none", risks)
	}
}

func TestGenerateRevenueHigh(t *testing.T) {
	g := NewRiskGenerator(WithGeneratorClock(clock))
	s := models.Snapshot{Metrics: models.SnapshotMetrics{
		Revenue: models.RevenueMetrics{RevenueChangePct: -20, Alert: true},
	}}
	risks := g.Generate(s)
	if len(risks) != 1 {
		t.Fatalf("len = %d, want 1", len(risks))
	}
	r := risks[0]
	if r.RiskType != models.RiskTypeRevenue || r.Severity != models.SeverityHigh || r.Status != models.RiskStatusActive {
		t.Fatalf("risk = %+v", r)
	}
	want := "Revenue declined -20.0% compared to previous period. Investigate pricing, customer activity, or market conditions."
	if r.Description != want {
		t.Fatalf("description = %q", r.Description)
	}
	if r.Metrics["revenue_change_pct"] != -20 {
		t.Fatalf("metrics = %v", r.Metrics)
	}
	if !strings.HasPrefix(r.RiskID, "REVENUE_2025-07-01T08:00:00.000000Z_") {
		t.Fatalf("id = %q", r.RiskID)
	}
}

func TestGenerateAllDomains(t *testing.T) {
	g := NewRiskGenerator(WithGeneratorClock(clock), WithInactiveWindow(45))
	risks := g.Generate(alertingSnapshot())
	if len(risks) != 4 {
		t.Fatalf("len = %d, want 4", len(risks))
	}

	wantTypes := []models.RiskType{models.RiskTypeRevenue, models.RiskTypeCustomer, models.RiskTypeCashFlow, models.RiskTypeInventory}
	wantSeverity := []models.Severity{models.SeverityMedium, models.SeverityHigh, models.SeverityMedium, models.SeverityMedium}
	wantDesc := []string{
		"Revenue declined -12.5% compared to previous period. Investigate pricing, customer activity, or market conditions.",
		"65.2% of customers are inactive (>45 days). High churn may signal service or engagement issues.",
		"42 overdue invoices totaling $12,345,678.90. Immediate collection action required to maintain cash flow.",
		"14 SKUs below reorder threshold.",
	}
	for i, r := range risks {
		if r.RiskType != wantTypes[i] || r.Severity != wantSeverity[i] {
			t.Fatalf("risk %d = %s/%s", i, r.RiskType, r.Severity)
		}
		if r.Description != wantDesc[i] {
			t.Fatalf("risk %d description = %q, want %q", i, r.Description, wantDesc[i])
		}
	}
	if risks[2].Metrics["overdue_invoices"] != 42 || risks[1].Metrics["inactive_count"] != 130 {
		t.Fatalf("metrics = %v / %v", risks[2].Metrics, risks[1].Metrics)
	}
}

func TestGenerateInventoryHoldingCost(t *testing.T) {
	g := NewRiskGenerator(WithGeneratorClock(clock))
	s := models.Snapshot{Metrics: models.SnapshotMetrics{
		Inventory: models.InventoryMetrics{LowStockItemCount: 3, DaysInventory: 52.34, Alert: true},
	}}
	risks := g.Generate(s)
	if len(risks) != 1 || risks[0].Severity != models.SeverityLow {
		t.Fatalf("risks = %+v", risks)
	}
	if want := "Inventory sitting for 52.3 days (high holding cost)."; risks[0].Description != want {
		t.Fatalf("description = %q", risks[0].Description)
	}
}

func TestGenerateIDsAreUniqueWithinATimestamp(t *testing.T) {
	g := NewRiskGenerator(WithGeneratorClock(clock))
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		for _, r := range g.Generate(alertingSnapshot()) {
			if seen[r.RiskID] {
				t.Fatalf("duplicate id %s", r.RiskID)
			}
			seen[r.RiskID] = true
		}
	}
}

func TestFormatHelpers(t *testing.T) {
	cases := map[float64]string{-18: "-18.0", -18.25: "-18.25", 0: "0.0", 7.5: "7.5"}
	for in, want := range cases {
		if got := formatDecimal(in); got != want {
			t.Fatalf("formatDecimal(%v) = %q, want %q", in, got, want)
		}
	}
	if got := formatMoney(500000); got != "500,000.00" {
		t.Fatalf("formatMoney = %q", got)
	}
}
