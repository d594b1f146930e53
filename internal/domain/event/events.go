package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/fraudml/pkg/events"
)

const (
	// EventTypeModelTrained is emitted when a new model artifact has been written.
	EventTypeModelTrained = "fraudml.model.trained"

	// EventTypeEvaluationCompleted is emitted for every evaluation run, pass or fail.
	EventTypeEvaluationCompleted = "fraudml.evaluation.completed"

	// EventTypeQualityGateFailed is emitted when an evaluation run misses its gate.
	EventTypeQualityGateFailed = "fraudml.quality_gate.failed"

	// EventTypeStagingValidated is emitted after the staging endpoint has been scored.
	EventTypeStagingValidated = "fraudml.staging.validated"
)

const (
	aggregateModel         = "Model"
	aggregateEvaluationRun = "EvaluationRun"
	aggregateValidation    = "StagingValidation"
)

// ModelTrained is published when the trainer persists a fitted model.
type ModelTrained struct {
	events.BaseEvent
	ModelID      uuid.UUID `json:"model_id"`
	ModelPath    string    `json:"model_path"`
	TrainingRows int       `json:"training_rows"`
	HeldOutRows  int       `json:"held_out_rows"`
	FraudRate    float64   `json:"fraud_rate"`
	Iterations   int       `json:"iterations"`
	TrainedAt    time.Time `json:"trained_at"`
}

// NewModelTrained creates a ModelTrained event.
func NewModelTrained(modelID uuid.UUID, modelPath string, trainingRows, heldOutRows int, fraudRate float64, iterations int, trainedAt time.Time) ModelTrained {
	return ModelTrained{
		BaseEvent:    events.NewBaseEvent(EventTypeModelTrained, modelID, aggregateModel, trainedAt),
		ModelID:      modelID,
		ModelPath:    modelPath,
		TrainingRows: trainingRows,
		HeldOutRows:  heldOutRows,
		FraudRate:    fraudRate,
		Iterations:   iterations,
		TrainedAt:    trainedAt,
	}
}

// EvaluationCompleted carries the full metric set of an evaluation run.
type EvaluationCompleted struct {
	events.BaseEvent
	RunID       uuid.UUID          `json:"run_id"`
	ModelPath   string             `json:"model_path"`
	Metrics     map[string]float64 `json:"metrics"`
	Gate        string             `json:"gate"`
	Passed      bool               `json:"passed"`
	EvaluatedAt time.Time          `json:"evaluated_at"`
}

// NewEvaluationCompleted creates an EvaluationCompleted event.
func NewEvaluationCompleted(runID uuid.UUID, modelPath string, metrics map[string]float64, gate string, passed bool, evaluatedAt time.Time) EvaluationCompleted {
	return EvaluationCompleted{
		BaseEvent:   events.NewBaseEvent(EventTypeEvaluationCompleted, runID, aggregateEvaluationRun, evaluatedAt),
		RunID:       runID,
		ModelPath:   modelPath,
		Metrics:     metrics,
		Gate:        gate,
		Passed:      passed,
		EvaluatedAt: evaluatedAt,
	}
}

// QualityGateFailed is published alongside EvaluationCompleted when the gated
// metric falls below its threshold.
type QualityGateFailed struct {
	events.BaseEvent
	RunID     uuid.UUID `json:"run_id"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
}

// NewQualityGateFailed creates a QualityGateFailed event.
func NewQualityGateFailed(runID uuid.UUID, metric string, value, threshold float64, at time.Time) QualityGateFailed {
	return QualityGateFailed{
		BaseEvent: events.NewBaseEvent(EventTypeQualityGateFailed, runID, aggregateEvaluationRun, at),
		RunID:     runID,
		Metric:    metric,
		Value:     value,
		Threshold: threshold,
	}
}

// StagingValidated records the outcome of a staging validation.
type StagingValidated struct {
	events.BaseEvent
	ValidationID uuid.UUID `json:"validation_id"`
	Endpoint     string    `json:"endpoint"`
	Records      int       `json:"records"`
	Accuracy     float64   `json:"accuracy"`
	Threshold    float64   `json:"threshold"`
	Approved     bool      `json:"approved"`
}

// NewStagingValidated creates a StagingValidated event.
func NewStagingValidated(endpoint string, records int, accuracy, threshold float64, approved bool, at time.Time) StagingValidated {
	id := uuid.New()
	return StagingValidated{
		BaseEvent:    events.NewBaseEvent(EventTypeStagingValidated, id, aggregateValidation, at),
		ValidationID: id,
		Endpoint:     endpoint,
		Records:      records,
		Accuracy:     accuracy,
		Threshold:    threshold,
		Approved:     approved,
	}
}
