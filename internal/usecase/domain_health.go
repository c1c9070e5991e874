package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"BizPulse/internal/domain/models"
	domrepo "BizPulse/internal/domain/repository"
	domsvc "BizPulse/internal/domain/service"
	"BizPulse/internal/services/causal"
	applogger "BizPulse/pkg/logger"
)

const (
	revenueOrderDropPct  = -5.0
	engageTopCustomers   = 3
	actionPlanDomain     = "actions"
	previousInsightsScan = 100
)

// DomainHealth builds deterministic per-domain insights and records them in memory.
type DomainHealth struct {
	kpis   domsvc.KPIProvider
	memory domrepo.MemoryStore
	logger *applogger.Logger
}

func NewDomainHealth(kpis domsvc.KPIProvider, memory domrepo.MemoryStore, logger *applogger.Logger) *DomainHealth {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &DomainHealth{kpis: kpis, memory: memory, logger: logger}
}

// Insight computes the insight for one domain and appends it to the insight log.
func (h *DomainHealth) Insight(ctx context.Context, domain models.Domain) (models.DomainInsight, error) {
	insight, err := h.build(ctx, domain)
	if err != nil {
		return models.DomainInsight{}, err
	}
	if _, err := h.memory.LogInsight(ctx, string(domain), insight); err != nil {
		return models.DomainInsight{}, fmt.Errorf("log %s insight: %w", domain, err)
	}
	return insight, nil
}

// ActionPlan evaluates every domain, infers causal chains and prioritises the next actions.
func (h *DomainHealth) ActionPlan(ctx context.Context) (models.ActionPlan, error) {
	rev := h.kpis.Revenue(ctx)
	cust := h.kpis.Customers(ctx)

	signals := causal.Signals{
		RevenueChangePct: rev.KPIs.RevenueChangePct,
		OrderChangePct:   rev.Signals.OrderChangePct,
	}
	prevInactive, ok, err := h.previousInactiveCount(ctx)
	if err != nil {
		return models.ActionPlan{}, err
	}
	if ok && prevInactive > 0 {
		change := round2(float64(cust.KPIs.InactiveCount-prevInactive) / float64(prevInactive) * 100)
		signals.InactiveChangePct = &change
	}

	insights := []models.DomainInsight{
		revenueInsight(rev, cust),
		customerInsight(cust),
		financeInsight(h.kpis.Finance(ctx)),
		inventoryInsight(h.kpis.Inventory(ctx)),
	}
	plan := models.ActionPlan{
		CausalChains: causal.InferChains(signals),
		Actions:      causal.RecommendActions(insights),
	}
	if _, err := h.memory.LogInsight(ctx, actionPlanDomain, plan); err != nil {
		return models.ActionPlan{}, fmt.Errorf("log action plan: %w", err)
	}
	return plan, nil
}

func (h *DomainHealth) RecentInsights(ctx context.Context, limit int) ([]models.InsightEntry, error) {
	return h.memory.RecentInsights(ctx, limit)
}

func (h *DomainHealth) Preferences(ctx context.Context) (map[string]interface{}, error) {
	return h.memory.Preferences(ctx)
}

func (h *DomainHealth) SetPreference(ctx context.Context, key string, value interface{}) (map[string]interface{}, error) {
	return h.memory.SetPreference(ctx, key, value)
}

func (h *DomainHealth) build(ctx context.Context, domain models.Domain) (models.DomainInsight, error) {
	switch domain {
	case models.DomainRevenue:
		return revenueInsight(h.kpis.Revenue(ctx), h.kpis.Customers(ctx)), nil
	case models.DomainCustomers:
		return customerInsight(h.kpis.Customers(ctx)), nil
	case models.DomainFinance:
		return financeInsight(h.kpis.Finance(ctx)), nil
	case models.DomainInventory:
		return inventoryInsight(h.kpis.Inventory(ctx)), nil
	}
	return models.DomainInsight{}, fmt.Errorf("%w: %q", models.ErrUnknownDomain, domain)
}

// previousInactiveCount finds the inactive count of the latest logged customers insight.
func (h *DomainHealth) previousInactiveCount(ctx context.Context) (int, bool, error) {
	entries, err := h.memory.RecentInsights(ctx, previousInsightsScan)
	if err != nil {
		return 0, false, err
	}
	for _, e := range entries {
		if e.Domain != string(models.DomainCustomers) {
			continue
		}
		var prev struct {
			KPIs struct {
				InactiveCount int `json:"inactive_count"`
			} `json:"kpis"`
		}
		if err := json.Unmarshal(e.Payload, &prev); err != nil {
			h.logger.Debug("skip unreadable customers insight", applogger.Error(err))
			continue
		}
		return prev.KPIs.InactiveCount, true, nil
	}
	return 0, false, nil
}

func revenueInsight(rev models.RevenueReport, cust models.CustomerReport) models.DomainInsight {
	explanation := "Revenue appears stable."
	var recs []string
	if rev.Anomaly.IsAnomaly {
		parts := []string{fmt.Sprintf("Revenue changed %s%% week-over-week.", formatDecimal(rev.KPIs.RevenueChangePct))}
		if rev.Signals.OrderChangePct < revenueOrderDropPct {
			parts = append(parts, fmt.Sprintf("Orders fell %s%%, likely contributing to revenue drop.", formatDecimal(rev.Signals.OrderChangePct)))
		} else {
			parts = append(parts, "Order volume was stable; investigate pricing or discounts.")
		}
		explanation = strings.Join(parts, " ")

		names := make([]string, 0, engageTopCustomers)
		for i, c := range cust.TopCustomers {
			if i == engageTopCustomers {
				break
			}
			names = append(names, c.Name)
		}
		engage := "Engage top customers to probe deferred orders."
		if len(names) > 0 {
			engage = fmt.Sprintf("Engage top customers (%s) to probe deferred orders.", strings.Join(names, ", "))
		}
		recs = []string{
			engage,
			"Offer targeted promotions to at-risk segments.",
			"Audit recent pricing or invoice terms that may affect conversions.",
		}
	} else {
		recs = []string{"Maintain current campaigns; monitor segments for emerging changes."}
	}
	return models.DomainInsight{
		Domain:          models.DomainRevenue,
		KPIs:            rev.KPIs,
		Anomaly:         rev.Anomaly,
		Details:         rev.Signals,
		Explanation:     explanation,
		Recommendations: recs,
	}
}

func customerInsight(cust models.CustomerReport) models.DomainInsight {
	k := cust.KPIs
	explanation := fmt.Sprintf("%d of %d customers have not ordered in the last %d days (%s%% churn).",
		k.InactiveCount, k.TotalCustomers, k.InactiveWindowDays, formatDecimal(k.ChurnRatePct))
	var recs []string
	if cust.Anomaly.IsAnomaly {
		recs = []string{"Launch a re-engagement campaign for inactive customers."}
		if seg := largestSegment(k.SegmentDistribution); seg != "" {
			recs = append(recs, fmt.Sprintf("Prioritise outreach to the %s segment, which holds the most inactive accounts.", seg))
		}
	} else {
		recs = []string{"Customer activity is within normal range; keep monitoring engagement."}
	}
	return models.DomainInsight{
		Domain:          models.DomainCustomers,
		KPIs:            k,
		Anomaly:         cust.Anomaly,
		Details:         map[string]interface{}{"top_customers": cust.TopCustomers},
		Explanation:     explanation,
		Recommendations: recs,
	}
}

func financeInsight(fin models.FinanceReport) models.DomainInsight {
	var parts []string
	if fin.Anomaly.IsAnomaly {
		parts = append(parts, fmt.Sprintf("Weekly revenue is %s (below target).", formatDecimal(fin.KPIs.RevenueLastWeek)))
	}
	pc := fin.PaymentCycle
	var recs []string
	if pc.OverdueInvoices > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue invoices totaling $%s.", pc.OverdueInvoices, formatMoney(pc.OverdueAmount)))
		recs = []string{
			"Send dunning notices for overdue invoices.",
			"Review payment terms and discount structures.",
		}
	} else {
		recs = []string{"Maintain current payment terms; no immediate action needed."}
	}
	explanation := "Finance metrics appear healthy."
	if len(parts) > 0 {
		explanation = strings.Join(parts, " ")
	}
	return models.DomainInsight{
		Domain:          models.DomainFinance,
		KPIs:            fin.KPIs,
		Anomaly:         fin.Anomaly,
		Details:         map[string]interface{}{"payment_cycle": pc, "average_order_value": fin.AverageOrderValue},
		Explanation:     explanation,
		Recommendations: recs,
	}
}

func inventoryInsight(inv models.InventoryReport) models.DomainInsight {
	parts := []string{fmt.Sprintf("Inventory turnover: %s times/year. Days inventory: %s days.",
		formatDecimal(inv.KPIs.InventoryTurnoverRate), formatDecimal(inv.KPIs.DaysInventory))}
	var recs []string
	if len(inv.LowStock.Items) > 0 {
		skus := make([]string, len(inv.LowStock.Items))
		for i, it := range inv.LowStock.Items {
			skus[i] = it.SKU
		}
		parts = append(parts, "Low stock alerts for: "+strings.Join(skus, ", "))
		recs = []string{
			"Immediately reorder low-stock SKUs to prevent stockouts.",
			"Review demand forecasts to adjust safety stock levels.",
		}
	} else {
		recs = []string{"Inventory levels appear adequate; maintain monitoring."}
	}
	return models.DomainInsight{
		Domain:          models.DomainInventory,
		KPIs:            inv.KPIs,
		Anomaly:         inv.Anomaly,
		Details:         inv.LowStock,
		Explanation:     strings.Join(parts, " "),
		Recommendations: recs,
	}
}

func largestSegment(dist map[string]int) string {
	best, bestN := "", 0
	for seg, n := range dist {
		if n > bestN || (n == bestN && seg < best) {
			best, bestN = seg, n
		}
	}
	return best
}
