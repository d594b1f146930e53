package dto

import (
	"time"

	"github.com/google/uuid"
)

// GenerateDatasetRequest is the input DTO for the GenerateDataset use case.
type GenerateDatasetRequest struct {
	Start     time.Time
	Samples   int
	FraudRate float64
	Seed      int64
}

// GenerateDatasetResponse summarises the written transaction table.
type GenerateDatasetResponse struct {
	Rows      int `json:"rows"`
	FraudRows int `json:"fraud_rows"`
}

// BuildFeaturesResponse summarises the written feature table.
type BuildFeaturesResponse struct {
	Rows      int `json:"rows"`
	FraudRows int `json:"fraud_rows"`
	Locations int `json:"locations"`
}

// TrainModelResponse is the output DTO of the TrainModel use case.
type TrainModelResponse struct {
	TrainedAt    time.Time `json:"trained_at"`
	ModelID      uuid.UUID `json:"model_id"`
	ModelPath    string    `json:"model_path"`
	TrainingRows int       `json:"training_rows"`
	HeldOutRows  int       `json:"held_out_rows"`
	Iterations   int       `json:"iterations"`
	Loss         float64   `json:"loss"`
	Converged    bool      `json:"converged"`
}
