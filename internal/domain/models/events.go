package models

import "time"

type RiskEventType string

const (
	RiskEventCreated  RiskEventType = "risk.created"
	RiskEventResolved RiskEventType = "risk.resolved"
)

// RiskEvent is published after a risk lifecycle change has been persisted.
type RiskEvent struct {
	EventID    string        `json:"event_id"`
	EventType  RiskEventType `json:"event_type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Risk       Risk          `json:"risk"`
}

const (
	CommandGenerate    = "generate"
	CommandResolve     = "resolve"
	CommandAutoResolve = "auto_resolve"
)

// RiskCommand is consumed from the commands topic.
type RiskCommand struct {
	Command     string `json:"command" validate:"required,oneof=generate resolve auto_resolve"`
	RiskID      string `json:"risk_id" validate:"required_if=Command resolve"`
	Reason      string `json:"reason" validate:"max=512"`
	MaxAgeHours *int   `json:"max_age_hours" validate:"omitempty,gte=0"`
}
