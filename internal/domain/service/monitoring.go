package service

import (
	"context"

	"BizPulse/internal/domain/models"
)

// KPIProvider exposes one KPI computation per monitored domain.
// Implementations degrade to zero-valued, non-anomalous reports instead of failing.
type KPIProvider interface {
	Revenue(ctx context.Context) models.RevenueReport
	Customers(ctx context.Context) models.CustomerReport
	Finance(ctx context.Context) models.FinanceReport
	Inventory(ctx context.Context) models.InventoryReport
}
