package models

// Requests for detection HTTP endpoints. Defined in domain for consistency and reuse.

type InferenceRequest struct {
	Markets []string `json:"markets"`
}

type BacktestRequest struct {
	Market string `query:"market" json:"market" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"5000" validate:"gte=1,lte=100000"`
}

type EvaluationRequest struct {
	GroundTruth map[string]int `json:"ground_truth" validate:"required,min=1"`
	Threshold   float64        `json:"threshold" default:"0.5" validate:"gte=0,lte=1"`
}
