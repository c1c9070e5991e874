package kpi

import (
	"time"

	"BizPulse/internal/domain/models"
)

const (
	inventoryAnomalyDays = 30.0
	inventoryHighDays    = 45.0

	DefaultLowStockDisplayLimit = 10
)

func ComputeInventory(orders []models.Order, products []models.Product, displayLimit int) models.InventoryReport {
	kpis := InventoryKPIs(orders, products)
	return models.InventoryReport{
		KPIs:     kpis,
		Anomaly:  DetectInventoryAnomaly(kpis),
		LowStock: LowStockAlerts(products, displayLimit),
	}
}

// InventoryKPIs estimates days of cover from average stock and daily order velocity.
func InventoryKPIs(orders []models.Order, products []models.Product) models.InventoryKPIs {
	days := daily(orders, func(o models.Order) time.Time { return o.OrderDate }, one[models.Order])
	if len(days) < 2 || len(products) == 0 {
		return models.InventoryKPIs{}
	}

	counts := make([]float64, len(days))
	for i, d := range days {
		counts[i] = d.value
	}
	stock := make([]float64, len(products))
	for i, p := range products {
		stock[i] = p.StockLevel
	}

	avgOrders := mean(counts)
	avgStock := mean(stock)
	return models.InventoryKPIs{
		AvgOrderCount:         round2(avgOrders),
		InventoryTurnoverRate: round2(ratio(avgOrders*365, avgStock)),
		DaysInventory:         round2(ratio(avgStock, avgOrders)),
	}
}

func DetectInventoryAnomaly(k models.InventoryKPIs) models.Anomaly {
	days := k.DaysInventory
	severity := models.SeverityLow
	switch {
	case days > inventoryHighDays:
		severity = models.SeverityHigh
	case days > inventoryAnomalyDays:
		severity = models.SeverityMedium
	}
	return models.Anomaly{IsAnomaly: days > inventoryAnomalyDays, Severity: severity}
}

// LowStockAlerts counts every product at or below its reorder threshold and lists up to limit of them.
func LowStockAlerts(products []models.Product, limit int) models.LowStock {
	items := make([]models.LowStockItem, 0)
	count := 0
	for _, p := range products {
		if p.StockLevel > p.ReorderThreshold {
			continue
		}
		count++
		if limit > 0 && len(items) >= limit {
			continue
		}
		items = append(items, models.LowStockItem{
			SKU:          p.ProductID,
			CurrentQty:   p.StockLevel,
			ReorderPoint: p.ReorderThreshold,
		})
	}
	return models.LowStock{Count: count, Items: items}
}
