package models

import "time"

type RiskType string

const (
	RiskTypeRevenue   RiskType = "REVENUE"
	RiskTypeCustomer  RiskType = "CUSTOMER"
	RiskTypeCashFlow  RiskType = "CASH_FLOW"
	RiskTypeInventory RiskType = "INVENTORY"
)

type RiskStatus string

const (
	RiskStatusActive   RiskStatus = "ACTIVE"
	RiskStatusResolved RiskStatus = "RESOLVED"
)

const (
	ManualResolutionReason = "Resolved manually"
	AutoResolutionReason   = "Auto-resolved: monitoring no longer flags this issue"
)

// Risk is a persisted anomalous condition. Status only moves ACTIVE -> RESOLVED.
type Risk struct {
	RiskID           string             `json:"risk_id"`
	RiskType         RiskType           `json:"risk_type"`
	Description      string             `json:"description"`
	Severity         Severity           `json:"severity"`
	Timestamp        time.Time          `json:"timestamp"`
	Status           RiskStatus         `json:"status"`
	Metrics          map[string]float64 `json:"metrics"`
	ResolvedAt       *time.Time         `json:"resolved_at,omitempty"`
	ResolutionReason string             `json:"resolution_reason,omitempty"`
}

func (r Risk) IsActive() bool { return r.Status == RiskStatusActive }

// Age reports how long ago the risk was raised.
func (r Risk) Age(now time.Time) time.Duration { return now.Sub(r.Timestamp) }

// MarkResolved transitions an active risk. It reports false when the risk was already resolved.
func (r *Risk) MarkResolved(at time.Time, reason string) bool {
	if r.Status == RiskStatusResolved {
		return false
	}
	at = at.UTC()
	r.Status = RiskStatusResolved
	r.ResolvedAt = &at
	r.ResolutionReason = reason
	return true
}
