package models

type ResolveRiskRequest struct {
	RiskID string `param:"risk_id" validate:"required,max=256"`
	Reason string `json:"reason" validate:"max=512"`
}

type AutoResolveRequest struct {
	MaxAgeHours *int `json:"max_age_hours" default:"48" validate:"required,gte=0,lte=8760"`
}

type RecentInsightsRequest struct {
	Limit int `query:"limit" default:"10" validate:"gte=1,lte=100"`
}

type DomainInsightRequest struct {
	Domain string `param:"domain" validate:"required,max=32"`
}

type SetPreferenceRequest struct {
	Key   string      `json:"key" validate:"required,max=128"`
	Value interface{} `json:"value"`
}
