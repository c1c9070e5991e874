package models

import "errors"

type Severity string

const (
	SeverityLow    Severity = "LOW"
	SeverityMedium Severity = "MEDIUM"
	SeverityHigh   Severity = "HIGH"
)

// Anomaly is the per-domain classification derived from a KPI set.
type Anomaly struct {
	IsAnomaly bool     `json:"is_anomaly"`
	Severity  Severity `json:"severity"`
}

// Domain names the four monitored business areas.
type Domain string

const (
	DomainRevenue   Domain = "revenue"
	DomainCustomers Domain = "customers"
	DomainFinance   Domain = "finance"
	DomainInventory Domain = "inventory"
)

var ErrUnknownDomain = errors.New("unknown domain")

// ParseDomain validates a domain name.
func ParseDomain(s string) (Domain, error) {
	switch d := Domain(s); d {
	case DomainRevenue, DomainCustomers, DomainFinance, DomainInventory:
		return d, nil
	}
	return "", ErrUnknownDomain
}

type RevenueKPIs struct {
	CurrentRevenue   float64 `json:"current_revenue"`
	PreviousRevenue  float64 `json:"previous_revenue"`
	RevenueChangePct float64 `json:"revenue_change_pct"`
}

type RevenueSignals struct {
	OrderChangePct float64 `json:"order_change_pct"`
}

type RevenueReport struct {
	KPIs    RevenueKPIs    `json:"kpis"`
	Anomaly Anomaly        `json:"anomaly"`
	Signals RevenueSignals `json:"signals"`
}

type CustomerKPIs struct {
	TotalCustomers      int            `json:"total_customers"`
	InactiveCount       int            `json:"inactive_count"`
	ChurnRatePct        float64        `json:"churn_rate_pct"`
	InactiveWindowDays  int            `json:"inactive_window_days"`
	SegmentDistribution map[string]int `json:"segment_distribution"`
}

type CustomerSummary struct {
	CustomerID    string  `json:"customer_id"`
	Name          string  `json:"customer_name"`
	Segment       string  `json:"segment"`
	LifetimeValue float64 `json:"lifetime_value"`
}

type CustomerReport struct {
	KPIs         CustomerKPIs      `json:"kpis"`
	Anomaly      Anomaly           `json:"anomaly"`
	TopCustomers []CustomerSummary `json:"top_customers"`
}

type FinanceKPIs struct {
	TotalSpend          float64 `json:"total_spend"`
	AvgSpendPerCustomer float64 `json:"avg_spend_per_customer"`
	RevenueLastWeek     float64 `json:"revenue_last_week"`
	WeeklyCashFlowAvg   float64 `json:"weekly_cash_flow_avg"`
}

type PaymentCycle struct {
	AvgDaysToPayment float64 `json:"avg_days_to_payment"`
	OverdueInvoices  int     `json:"overdue_invoices"`
	OverdueAmount    float64 `json:"overdue_amount"`
}

type FinanceReport struct {
	KPIs              FinanceKPIs  `json:"kpis"`
	Anomaly           Anomaly      `json:"anomaly"`
	PaymentCycle      PaymentCycle `json:"payment_cycle"`
	AverageOrderValue float64      `json:"average_order_value"`
}

type InventoryKPIs struct {
	AvgOrderCount         float64 `json:"avg_order_count"`
	InventoryTurnoverRate float64 `json:"inventory_turnover_rate"`
	DaysInventory         float64 `json:"days_inventory"`
}

type LowStockItem struct {
	SKU          string  `json:"sku"`
	CurrentQty   float64 `json:"current_qty"`
	ReorderPoint float64 `json:"reorder_point"`
}

// LowStock counts every SKU at or below its reorder threshold; Items is capped for display.
type LowStock struct {
	Count int            `json:"count"`
	Items []LowStockItem `json:"items"`
}

type InventoryReport struct {
	KPIs     InventoryKPIs `json:"kpis"`
	Anomaly  Anomaly       `json:"anomaly"`
	LowStock LowStock      `json:"low_stock"`
}
