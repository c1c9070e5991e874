package models

import (
	"encoding/json"
	"time"
)

// DomainInsight is the deterministic health report for one domain.
type DomainInsight struct {
	Domain          Domain      `json:"domain"`
	KPIs            interface{} `json:"kpis"`
	Anomaly         Anomaly     `json:"anomaly"`
	Details         interface{} `json:"details,omitempty"`
	Explanation     string      `json:"explanation"`
	Recommendations []string    `json:"recommendations"`
}

// InsightEntry is one record of the insight log.
type InsightEntry struct {
	Timestamp time.Time       `json:"timestamp"`
	Domain    string          `json:"domain"`
	Payload   json.RawMessage `json:"payload"`
}

type CausalChain struct {
	Cause      string  `json:"cause"`
	Effect     string  `json:"effect"`
	Confidence float64 `json:"confidence"`
}

type ActionPlan struct {
	CausalChains []CausalChain `json:"causal_chains"`
	Actions      []string      `json:"actions"`
}
