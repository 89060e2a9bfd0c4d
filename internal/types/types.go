package types

import "github.com/statwatch/survmeter/internal/survival"

// Predictor names accepted by the evaluate endpoint.
const (
	PredictorMatrix      = "matrix"
	PredictorKaplanMeier = "kaplan_meier"
)

// EvaluateRequest is the body of POST /evaluate. Either Probabilities is
// supplied (rows = observations, columns = times, predictor "matrix"), or
// Predictor selects a built-in baseline fit on the observations themselves.
type EvaluateRequest struct {
	Observations  []survival.Observation `json:"observations" binding:"required"`
	Times         []float64              `json:"times" binding:"required"`
	Predictor     string                 `json:"predictor,omitempty"`
	Probabilities [][]float64            `json:"probabilities,omitempty"`
}

// EvaluateResponse is the body returned by POST /evaluate.
type EvaluateResponse struct {
	Metrics         []survival.MetricRow `json:"metrics"`
	IntegratedBrier survival.MetricRow   `json:"integrated_brier"`
	ROC             []survival.ROCPoint  `json:"roc"`
}
