package repository

import (
	"context"
	"errors"
	"time"

	"BizPulse/internal/domain/models"
)

var ErrDuplicateRiskID = errors.New("duplicate risk id")

// RecordSource loads raw business records. Missing data is returned as an empty slice.
type RecordSource interface {
	Customers(ctx context.Context) ([]models.Customer, error)
	Orders(ctx context.Context) ([]models.Order, error)
	Invoices(ctx context.Context) ([]models.Invoice, error)
	Products(ctx context.Context) ([]models.Product, error)
}

// RiskStore is the append-only persisted risk collection.
type RiskStore interface {
	Append(ctx context.Context, risks []models.Risk) error
	ListActive(ctx context.Context) ([]models.Risk, error)
	ListHistorical(ctx context.Context) ([]models.Risk, error)
	ListAll(ctx context.Context) ([]models.Risk, error)
	// Resolve returns the risks that transitioned; unknown or resolved ids are a no-op.
	Resolve(ctx context.Context, riskID, reason string) ([]models.Risk, error)
	// ResolveStale resolves active risks whose type is not in activeTypes and whose age exceeds maxAge.
	ResolveStale(ctx context.Context, activeTypes map[models.RiskType]bool, maxAge time.Duration) ([]models.Risk, error)
}

// MemoryStore keeps user preferences and a bounded insight log.
type MemoryStore interface {
	Preferences(ctx context.Context) (map[string]interface{}, error)
	SetPreference(ctx context.Context, key string, value interface{}) (map[string]interface{}, error)
	LogInsight(ctx context.Context, domain string, payload interface{}) (models.InsightEntry, error)
	RecentInsights(ctx context.Context, limit int) ([]models.InsightEntry, error)
}

type RiskPublisher interface {
	PublishRiskEvents(ctx context.Context, events []models.RiskEvent) error
	Close() error
}

type Metrics interface {
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordSnapshot(health string)
	RecordRisksGenerated(riskType string, n int)
	RecordRisksResolved(reason string, n int)
}
