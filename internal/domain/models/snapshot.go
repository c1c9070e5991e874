package models

import "time"

type Health string

const (
	HealthHealthy  Health = "HEALTHY"
	HealthWarning  Health = "WARNING"
	HealthCritical Health = "CRITICAL"
)

// Snapshot is the dashboard contract. It is recomputed on every request.
type Snapshot struct {
	Timestamp time.Time       `json:"timestamp"`
	Metrics   SnapshotMetrics `json:"metrics"`
	Status    SnapshotStatus  `json:"status"`
}

type SnapshotMetrics struct {
	Revenue   RevenueMetrics   `json:"revenue"`
	Customers CustomerMetrics  `json:"customers"`
	Finance   FinanceMetrics   `json:"finance"`
	Inventory InventoryMetrics `json:"inventory"`
}

type RevenueMetrics struct {
	CurrentRevenue   float64 `json:"current_revenue"`
	RevenueChangePct float64 `json:"revenue_change_pct"`
	Alert            bool    `json:"alert"`
}

type CustomerMetrics struct {
	TotalCustomers int     `json:"total_customers"`
	InactiveCount  int     `json:"inactive_count"`
	ChurnRatePct   float64 `json:"churn_rate_pct"`
	Alert          bool    `json:"alert"`
}

type FinanceMetrics struct {
	OutstandingCashAmount float64 `json:"outstanding_cash_amount"`
	OverdueInvoices       int     `json:"overdue_invoices"`
	OverduePct            float64 `json:"overdue_pct"`
	Alert                 bool    `json:"alert"`
}

type InventoryMetrics struct {
	LowStockItemCount int     `json:"low_stock_item_count"`
	DaysInventory     float64 `json:"days_inventory"`
	Alert             bool    `json:"alert"`
}

type SnapshotStatus struct {
	HighChurn       bool   `json:"high_churn"`
	CashCrunch      bool   `json:"cash_crunch"`
	InventoryCrisis bool   `json:"inventory_crisis"`
	RevenueAlert    bool   `json:"revenue_alert"`
	OverallHealth   Health `json:"overall_health"`
}

// ActiveRiskTypes maps the raised status flags to the risk types they produce.
func (s SnapshotStatus) ActiveRiskTypes() map[RiskType]bool {
	active := make(map[RiskType]bool, 4)
	if s.RevenueAlert {
		active[RiskTypeRevenue] = true
	}
	if s.HighChurn {
		active[RiskTypeCustomer] = true
	}
	if s.CashCrunch {
		active[RiskTypeCashFlow] = true
	}
	if s.InventoryCrisis {
		active[RiskTypeInventory] = true
	}
	return active
}

// OverviewSummary is the flattened dashboard payload.
type OverviewSummary struct {
	Timestamp     time.Time        `json:"timestamp"`
	Revenue       RevenueMetrics   `json:"revenue"`
	Customers     CustomerMetrics  `json:"customers"`
	Finance       FinanceMetrics   `json:"finance"`
	Inventory     InventoryMetrics `json:"inventory"`
	OverallHealth Health           `json:"overall_health"`
}

type Overview struct {
	Summary OverviewSummary `json:"summary"`
	Signals SnapshotStatus  `json:"signals"`
}

func NewOverview(s Snapshot) Overview {
	return Overview{
		Summary: OverviewSummary{
			Timestamp:     s.Timestamp,
			Revenue:       s.Metrics.Revenue,
			Customers:     s.Metrics.Customers,
			Finance:       s.Metrics.Finance,
			Inventory:     s.Metrics.Inventory,
			OverallHealth: s.Status.OverallHealth,
		},
		Signals: s.Status,
	}
}
