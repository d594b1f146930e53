package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/fraudml/internal/domain/model"
)

// EvaluationRunResponse is the output DTO for one evaluation run.
type EvaluationRunResponse struct {
	EvaluatedAt   time.Time          `json:"evaluated_at"`
	Metrics       map[string]float64 `json:"metrics"`
	ID            uuid.UUID          `json:"id"`
	ModelPath     string             `json:"model_path"`
	GateMetric    string             `json:"gate_metric"`
	GateThreshold float64            `json:"gate_threshold"`
	GateValue     float64            `json:"gate_value"`
	HeldOutRows   int                `json:"held_out_rows"`
	Passed        bool               `json:"passed"`
}

// ListEvaluationRunsRequest is the input DTO for listing evaluation history.
type ListEvaluationRunsRequest struct {
	Limit int
}

// ValidateStagingResponse is the output DTO of the ValidateStaging use case.
type ValidateStagingResponse struct {
	Endpoint  string  `json:"endpoint"`
	Records   int     `json:"records"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
	Threshold float64 `json:"threshold"`
	Approved  bool    `json:"approved"`
}

// FromEvaluationRun maps the aggregate to the response DTO.
func FromEvaluationRun(r *model.EvaluationRun) EvaluationRunResponse {
	return EvaluationRunResponse{
		ID:            r.ID(),
		ModelPath:     r.ModelPath(),
		HeldOutRows:   r.HeldOutRows(),
		Metrics:       r.Metrics().AsMap(),
		GateMetric:    r.Gate().Metric(),
		GateThreshold: r.Gate().Threshold(),
		GateValue:     r.GateValue(),
		Passed:        r.Passed(),
		EvaluatedAt:   r.EvaluatedAt(),
	}
}

// FromEvaluationRuns maps a slice of aggregates to response DTOs.
func FromEvaluationRuns(runs []*model.EvaluationRun) []EvaluationRunResponse {
	out := make([]EvaluationRunResponse, len(runs))
	for i, r := range runs {
		out[i] = FromEvaluationRun(r)
	}
	return out
}
