package kpi

import (
	"math"
	"strings"
	"time"

	"BizPulse/internal/domain/models"
)

const (
	financeAnomalyRatio = 0.8
	financeHighRatio    = 0.6

	DefaultBaselineDays = 7
	week                = 7 * 24 * time.Hour
)

func ComputeFinance(invoices []models.Invoice, baselineDays int) models.FinanceReport {
	kpis := FinanceKPIs(invoices, baselineDays)
	return models.FinanceReport{
		KPIs:              kpis,
		Anomaly:           DetectFinanceAnomaly(kpis),
		PaymentCycle:      PaymentCycleHealth(invoices),
		AverageOrderValue: AverageOrderValue(invoices),
	}
}

// FinanceKPIs measures the last week of invoicing against a trailing daily average scaled to a week.
func FinanceKPIs(invoices []models.Invoice, baselineDays int) models.FinanceKPIs {
	if len(invoices) == 0 {
		return models.FinanceKPIs{}
	}
	if baselineDays <= 0 {
		baselineDays = DefaultBaselineDays
	}

	var total float64
	perCustomer := make(map[string]float64)
	var latest time.Time
	for _, in := range invoices {
		total += in.Amount
		perCustomer[in.CustomerID] += in.Amount
		if in.InvoiceDate.After(latest) {
			latest = in.InvoiceDate
		}
	}
	spends := make([]float64, 0, len(perCustomer))
	for _, v := range perCustomer {
		spends = append(spends, v)
	}

	weekStart := latest.Add(-week)
	baselineStart := latest.Add(-time.Duration(baselineDays) * 24 * time.Hour)
	var lastWeek float64
	var window []models.Invoice
	for _, in := range invoices {
		if !in.InvoiceDate.Before(weekStart) {
			lastWeek += in.Amount
		}
		if !in.InvoiceDate.Before(baselineStart) {
			window = append(window, in)
		}
	}

	days := daily(window,
		func(in models.Invoice) time.Time { return in.InvoiceDate },
		func(in models.Invoice) float64 { return in.Amount },
	)
	baseline := lastWeek
	if len(days) > 0 {
		sums := make([]float64, len(days))
		for i, d := range days {
			sums[i] = d.value
		}
		baseline = mean(sums) * 7
	}

	return models.FinanceKPIs{
		TotalSpend:          round2(total),
		AvgSpendPerCustomer: round2(mean(spends)),
		RevenueLastWeek:     round2(lastWeek),
		WeeklyCashFlowAvg:   round2(baseline),
	}
}

func DetectFinanceAnomaly(k models.FinanceKPIs) models.Anomaly {
	baseline := k.WeeklyCashFlowAvg
	isAnomaly := baseline > 0 && k.RevenueLastWeek < financeAnomalyRatio*baseline
	severity := models.SeverityLow
	switch {
	case baseline > 0 && k.RevenueLastWeek < financeHighRatio*baseline:
		severity = models.SeverityHigh
	case isAnomaly:
		severity = models.SeverityMedium
	}
	return models.Anomaly{IsAnomaly: isAnomaly, Severity: severity}
}

// PaymentCycleHealth derives payment terms and overdue exposure from invoice status.
func PaymentCycleHealth(invoices []models.Invoice) models.PaymentCycle {
	var terms []float64
	var overdueCount int
	var overdueAmount float64
	for _, in := range invoices {
		if in.DueDate != nil {
			days := math.Floor(in.DueDate.Sub(in.InvoiceDate).Hours() / 24)
			if days >= 0 {
				terms = append(terms, days)
			}
		}
		if strings.Contains(strings.ToLower(in.PaymentStatus), "overdue") {
			overdueCount++
			overdueAmount += in.Amount
		}
	}
	return models.PaymentCycle{
		AvgDaysToPayment: round2(mean(terms)),
		OverdueInvoices:  overdueCount,
		OverdueAmount:    round2(overdueAmount),
	}
}

func AverageOrderValue(invoices []models.Invoice) float64 {
	amounts := make([]float64, len(invoices))
	for i, in := range invoices {
		amounts[i] = in.Amount
	}
	return round2(mean(amounts))
}
