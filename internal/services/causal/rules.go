// Package causal holds fixed cause/effect lookup rules and action synthesis.
// The rules are heuristics over period deltas, not statistical inference.
package causal

import (
	"fmt"
	"strings"

	"BizPulse/internal/domain/models"
)

const (
	revenueDeclinePct = -5.0
	orderDeclinePct   = -3.0
	inactivityRisePct = 10.0
	healthyAction     = "All metrics appear healthy. Continue monitoring."
	fallbackAction    = "Monitor metrics closely."
)

// Signals are the period deltas the rules look at.
type Signals struct {
	RevenueChangePct float64
	OrderChangePct   float64
	// InactiveChangePct is nil when there is no earlier customer reading to compare with.
	InactiveChangePct *float64
}

func InferChains(s Signals) []models.CausalChain {
	chains := make([]models.CausalChain, 0, 2)
	if s.RevenueChangePct < revenueDeclinePct {
		if s.OrderChangePct < orderDeclinePct {
			chains = append(chains, models.CausalChain{
				Cause:      "Lower order volume",
				Effect:     "Revenue decline",
				Confidence: 0.85,
			})
		} else {
			chains = append(chains, models.CausalChain{
				Cause:      "Price reduction or margin compression",
				Effect:     "Revenue decline",
				Confidence: 0.70,
			})
		}
	}
	if s.InactiveChangePct != nil && *s.InactiveChangePct > inactivityRisePct {
		chains = append(chains, models.CausalChain{
			Cause:      "Increasing customer inactivity",
			Effect:     "Future revenue risk",
			Confidence: 0.75,
		})
	}
	return chains
}

// RecommendActions lists the first recommendation of every anomalous domain,
// HIGH severity first.
func RecommendActions(insights []models.DomainInsight) []string {
	var urgent, action []string
	anomalous := false
	for _, in := range insights {
		if !in.Anomaly.IsAnomaly {
			continue
		}
		anomalous = true
		if len(in.Recommendations) == 0 {
			continue
		}
		domain := strings.ToUpper(string(in.Domain))
		switch in.Anomaly.Severity {
		case models.SeverityHigh:
			urgent = append(urgent, fmt.Sprintf("[URGENT - %s] %s", domain, in.Recommendations[0]))
		case models.SeverityMedium:
			action = append(action, fmt.Sprintf("[ACTION - %s] %s", domain, in.Recommendations[0]))
		}
	}
	if !anomalous {
		return []string{healthyAction}
	}
	actions := append(urgent, action...)
	if len(actions) == 0 {
		return []string{fallbackAction}
	}
	return actions
}
