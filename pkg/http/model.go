package http

// APIResponse is the envelope of every JSON response: snapshots, risk lists,
// insights and errors alike. Status mirrors the HTTP status code.
type APIResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ValidationError describes one rejected request field, e.g.
// {code: ERR_MIN, field: max_age_hours, params: {param: "0"}}.
type ValidationError struct {
	Code    string                 `json:"code,omitempty"`
	Field   string                 `json:"field,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
}
