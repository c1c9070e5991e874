package kpi

import (
	"sort"
	"strings"
	"time"

	"BizPulse/internal/domain/models"
)

const (
	churnAnomalyPct = 50.0
	churnHighPct    = 60.0

	DefaultInactiveDays = 30
	defaultTopCustomers = 5
)

// ComputeCustomers treats customers without an order inside the window as inactive.
// Customers with no known last order are neither active nor inactive.
func ComputeCustomers(customers []models.Customer, now time.Time, windowDays, topN int) models.CustomerReport {
	if windowDays <= 0 {
		windowDays = DefaultInactiveDays
	}
	cutoff := now.Add(-time.Duration(windowDays) * 24 * time.Hour)

	segments := make(map[string]int)
	inactive := 0
	for _, c := range customers {
		if c.LastOrderDate == nil || !c.LastOrderDate.Before(cutoff) {
			continue
		}
		inactive++
		seg := strings.TrimSpace(c.Segment)
		if seg == "" {
			seg = "Unknown"
		}
		segments[seg]++
	}

	kpis := models.CustomerKPIs{
		TotalCustomers:      len(customers),
		InactiveCount:       inactive,
		ChurnRatePct:        round2(ratio(float64(inactive), float64(len(customers))) * 100),
		InactiveWindowDays:  windowDays,
		SegmentDistribution: segments,
	}
	return models.CustomerReport{
		KPIs:         kpis,
		Anomaly:      DetectCustomerAnomaly(kpis),
		TopCustomers: TopCustomers(customers, topN),
	}
}

func DetectCustomerAnomaly(k models.CustomerKPIs) models.Anomaly {
	isAnomaly := k.ChurnRatePct > churnAnomalyPct
	severity := models.SeverityLow
	switch {
	case k.ChurnRatePct > churnHighPct:
		severity = models.SeverityHigh
	case isAnomaly:
		severity = models.SeverityMedium
	}
	return models.Anomaly{IsAnomaly: isAnomaly, Severity: severity}
}

// TopCustomers ranks by lifetime value, highest first.
func TopCustomers(customers []models.Customer, n int) []models.CustomerSummary {
	if n <= 0 {
		n = defaultTopCustomers
	}
	ranked := make([]models.Customer, len(customers))
	copy(ranked, customers)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].LifetimeValue > ranked[j].LifetimeValue })
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]models.CustomerSummary, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, models.CustomerSummary{
			CustomerID:    c.CustomerID,
			Name:          c.Name,
			Segment:       c.Segment,
			LifetimeValue: c.LifetimeValue,
		})
	}
	return out
}
