package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/fraudml/internal/domain/event"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
	"github.com/bibbank/fraudml/pkg/events"
)

// EvaluationRun is the aggregate root recording one scoring of a model
// against the held-out partition and its quality gate verdict.
type EvaluationRun struct {
	events.EventCollector

	evaluatedAt time.Time
	modelPath   string
	gate        valueobject.QualityGate
	metrics     Metrics
	heldOutRows int
	passed      bool
	id          uuid.UUID
}

// NewEvaluationRun applies gate to metrics and records the resulting events.
func NewEvaluationRun(modelPath string, heldOutRows int, metrics Metrics, gate valueobject.QualityGate, evaluatedAt time.Time) (*EvaluationRun, error) {
	if modelPath == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if heldOutRows <= 0 {
		return nil, fmt.Errorf("held-out row count must be positive, got %d", heldOutRows)
	}
	value, ok := metrics.Value(gate.Metric())
	if !ok {
		return nil, fmt.Errorf("quality gate references unknown metric %q", gate.Metric())
	}

	run := &EvaluationRun{
		id:          uuid.New(),
		modelPath:   modelPath,
		heldOutRows: heldOutRows,
		metrics:     metrics,
		gate:        gate,
		passed:      gate.Passes(value),
		evaluatedAt: evaluatedAt.UTC(),
	}

	run.Record(event.NewEvaluationCompleted(
		run.id, run.modelPath, metrics.AsMap(), gate.String(), run.passed, run.evaluatedAt,
	))
	if !run.passed {
		run.Record(event.NewQualityGateFailed(run.id, gate.Metric(), value, gate.Threshold(), run.evaluatedAt))
	}

	return run, nil
}

// ReconstructEvaluationRun rebuilds a run from persisted data (no validation, no events).
func ReconstructEvaluationRun(
	id uuid.UUID,
	modelPath string,
	heldOutRows int,
	metrics Metrics,
	gate valueobject.QualityGate,
	passed bool,
	evaluatedAt time.Time,
) *EvaluationRun {
	return &EvaluationRun{
		id:          id,
		modelPath:   modelPath,
		heldOutRows: heldOutRows,
		metrics:     metrics,
		gate:        gate,
		passed:      passed,
		evaluatedAt: evaluatedAt,
	}
}

func (r *EvaluationRun) ID() uuid.UUID                 { return r.id }
func (r *EvaluationRun) ModelPath() string             { return r.modelPath }
func (r *EvaluationRun) HeldOutRows() int              { return r.heldOutRows }
func (r *EvaluationRun) Metrics() Metrics              { return r.metrics }
func (r *EvaluationRun) Gate() valueobject.QualityGate { return r.gate }
func (r *EvaluationRun) Passed() bool                  { return r.passed }
func (r *EvaluationRun) EvaluatedAt() time.Time        { return r.evaluatedAt }

// GateValue returns the value of the gated metric.
func (r *EvaluationRun) GateValue() float64 {
	v, _ := r.metrics.Value(r.gate.Metric())
	return v
}
