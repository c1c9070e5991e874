package kpi

import (
	"time"

	"BizPulse/internal/domain/models"
)

const (
	revenueAnomalyPct = -5.0
	revenueHighPct    = -15.0
	revenueMediumPct  = -8.0
)

// ComputeRevenue compares the latest invoiced day against the previous one.
func ComputeRevenue(invoices []models.Invoice, orders []models.Order) models.RevenueReport {
	kpis := RevenueKPIs(invoices)
	return models.RevenueReport{
		KPIs:    kpis,
		Anomaly: DetectRevenueAnomaly(kpis),
		Signals: OrderSignals(orders),
	}
}

func RevenueKPIs(invoices []models.Invoice) models.RevenueKPIs {
	days := daily(invoices,
		func(in models.Invoice) time.Time { return in.InvoiceDate },
		func(in models.Invoice) float64 { return in.Amount },
	)
	cur, prev, ok := lastTwo(days)
	if !ok {
		return models.RevenueKPIs{}
	}
	return models.RevenueKPIs{
		CurrentRevenue:   round2(cur),
		PreviousRevenue:  round2(prev),
		RevenueChangePct: round2(pctChange(cur, prev)),
	}
}

func DetectRevenueAnomaly(k models.RevenueKPIs) models.Anomaly {
	change := k.RevenueChangePct
	severity := models.SeverityLow
	switch {
	case change <= revenueHighPct:
		severity = models.SeverityHigh
	case change <= revenueMediumPct:
		severity = models.SeverityMedium
	}
	return models.Anomaly{IsAnomaly: change < revenueAnomalyPct, Severity: severity}
}

// OrderSignals reports the day-over-day change in order count.
func OrderSignals(orders []models.Order) models.RevenueSignals {
	days := daily(orders, func(o models.Order) time.Time { return o.OrderDate }, one[models.Order])
	cur, prev, ok := lastTwo(days)
	if !ok {
		return models.RevenueSignals{}
	}
	return models.RevenueSignals{OrderChangePct: round2(pctChange(cur, prev))}
}
