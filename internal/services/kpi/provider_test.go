package kpi

import (
	"context"
	"errors"
	"testing"
	"time"

	"BizPulse/internal/domain/models"
)

type stubSource struct {
	dataset models.Dataset
	err     error
}

func (s stubSource) Customers(context.Context) ([]models.Customer, error) {
	return s.dataset.Customers, s.err
}
func (s stubSource) Orders(context.Context) ([]models.Order, error) { return s.dataset.Orders, s.err }
func (s stubSource) Invoices(context.Context) ([]models.Invoice, error) {
	return s.dataset.Invoices, s.err
}
func (s stubSource) Products(context.Context) ([]models.Product, error) {
	return s.dataset.Products, s.err
}

type countingMetrics struct{ errors map[string]int }

func (m *countingMetrics) RecordError(kind string) { m.errors[kind]++ }
func (m *countingMetrics) RecordLatency(string, float64) {}
func (m *countingMetrics) RecordSnapshot(string) {}
func (m *countingMetrics) RecordRisksGenerated(string, int) {}
func (m *countingMetrics) RecordRisksResolved(string, int) {}

func TestProviderDegradesOnSourceFailure(t *testing.T) {
	m := &countingMetrics{errors: map[string]int{}}
	p := NewProvider(stubSource{err: errors.New("disk gone")}, nil, m)
	ctx := context.Background()

	if r := p.Revenue(ctx); r.KPIs != (models.RevenueKPIs{}) || r.Anomaly.IsAnomaly {
		t.Fatalf("revenue = %+v", r)
	}
	if r := p.Customers(ctx); r.KPIs.TotalCustomers != 0 || r.Anomaly.IsAnomaly {
		t.Fatalf("customers = %+v", r)
	}
	if r := p.Finance(ctx); r.KPIs != (models.FinanceKPIs{}) || r.Anomaly.IsAnomaly {
		t.Fatalf("finance = %+v", r)
	}
	if r := p.Inventory(ctx); r.KPIs != (models.InventoryKPIs{}) || r.Anomaly.IsAnomaly {
		t.Fatalf("inventory = %+v", r)
	}
	if m.errors["source_revenue"] != 2 || m.errors["source_customers"] != 1 {
		t.Fatalf("errors = %v", m.errors)
	}
}

func TestProviderUsesClockAndConfig(t *testing.T) {
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	last := now.Add(-10 * 24 * time.Hour)
	src := stubSource{dataset: models.Dataset{
		Customers: []models.Customer{{CustomerID: "A", LastOrderDate: &last}},
	}}
	p := NewProvider(src, nil, &countingMetrics{errors: map[string]int{}},
		WithClock(func() time.Time { return now }),
		WithConfig(Config{InactiveDays: 7}),
	)
	r := p.Customers(context.Background())
	if r.KPIs.InactiveCount != 1 || r.KPIs.InactiveWindowDays != 7 {
		t.Fatalf("kpis = %+v", r.KPIs)
	}
}
