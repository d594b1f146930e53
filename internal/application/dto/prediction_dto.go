package dto

import "github.com/bibbank/fraudml/internal/domain/model"

// PredictRequest carries the decoded /predict body. Records is whatever JSON
// value the client sent; the use case checks its shape.
type PredictRequest struct {
	Records any
}

// PredictionResponse is one element of the /predict response array.
type PredictionResponse struct {
	Prediction  int     `json:"prediction"`
	Probability float64 `json:"probability"`
}

// HealthResponse is the /health body.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// ErrorResponse is the body of every non-2xx inference response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// FromPredictions maps domain predictions to response DTOs.
func FromPredictions(preds []model.Prediction) []PredictionResponse {
	out := make([]PredictionResponse, len(preds))
	for i, p := range preds {
		out[i] = PredictionResponse{Prediction: p.Label, Probability: p.Probability}
	}
	return out
}
