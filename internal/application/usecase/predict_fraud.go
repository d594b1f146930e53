package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
)

// PredictFraud scores feature records with the model loaded at startup.
// The model is never reloaded; once READY it is shared read-only.
type PredictFraud struct {
	store  port.ModelStore
	logger *slog.Logger

	mu    sync.RWMutex
	state valueobject.ModelState
	model *model.LogisticModel
}

// NewPredictFraud creates a new PredictFraud use case in the UNINITIALIZED state.
func NewPredictFraud(store port.ModelStore, logger *slog.Logger) *PredictFraud {
	return &PredictFraud{
		store:  store,
		logger: logger,
		state:  valueobject.ModelStateUninitialized,
	}
}

// Load reads the model artifact once. On failure the use case moves to FAILED
// and keeps serving health checks that report the model as unavailable.
func (uc *PredictFraud) Load(ctx context.Context) error {
	if err := uc.transition(valueobject.ModelStateLoading); err != nil {
		return err
	}

	m, err := uc.store.LoadModel(ctx)
	if err != nil {
		_ = uc.transition(valueobject.ModelStateFailed)
		uc.logger.Error("failed to load model", "path", uc.store.Location(), "error", err)
		return fmt.Errorf("failed to load model from %s: %w", uc.store.Location(), err)
	}

	uc.mu.Lock()
	uc.model = m
	uc.mu.Unlock()
	if err := uc.transition(valueobject.ModelStateReady); err != nil {
		return err
	}

	uc.logger.Info("model loaded", "path", uc.store.Location(), "model_id", m.ID())
	return nil
}

// State returns the current model state.
func (uc *PredictFraud) State() valueobject.ModelState {
	uc.mu.RLock()
	defer uc.mu.RUnlock()
	return uc.state
}

// Execute validates the request records and returns one prediction per record.
func (uc *PredictFraud) Execute(_ context.Context, req dto.PredictRequest) ([]dto.PredictionResponse, error) {
	uc.mu.RLock()
	m, state := uc.model, uc.state
	uc.mu.RUnlock()
	if !state.IsReady() {
		return nil, ErrModelNotLoaded
	}

	vectors, err := parseRecords(req.Records)
	if err != nil {
		return nil, err
	}

	// Extreme finite inputs can overflow the log-odds to NaN.
	predictions := m.PredictBatch(vectors)
	for i, p := range predictions {
		if math.IsNaN(p.Probability) || p.Probability < 0 || p.Probability > 1 {
			return nil, &PredictionError{Err: fmt.Errorf("record %d: fraud probability is not a finite value in [0, 1]", i)}
		}
	}

	return dto.FromPredictions(predictions), nil
}

func (uc *PredictFraud) transition(next valueobject.ModelState) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if !uc.state.CanTransitionTo(next) {
		return fmt.Errorf("invalid model state transition from %s to %s", uc.state, next)
	}
	uc.state = next
	return nil
}

// parseRecords checks every record for missing keys before any value is
// converted, so a missing key is always reported as such.
func parseRecords(raw any) ([]model.FeatureVector, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, &PredictionError{Err: fmt.Errorf("expected a JSON array of records, got %s", jsonKind(raw))}
	}
	if len(items) == 0 {
		return nil, &PredictionError{Err: fmt.Errorf("no records to score")}
	}

	records := make([]map[string]any, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, &PredictionError{Err: fmt.Errorf("record %d: expected a JSON object, got %s", i, jsonKind(item))}
		}
		records[i] = record
	}

	for i, record := range records {
		for _, name := range model.FeatureNames {
			if _, ok := record[name]; !ok {
				return nil, &MissingFeatureError{Feature: name, Record: i}
			}
		}
	}

	vectors := make([]model.FeatureVector, len(records))
	for i, record := range records {
		values := make([]float64, len(model.FeatureNames))
		for j, name := range model.FeatureNames {
			f, ok := record[name].(float64)
			if !ok {
				return nil, &PredictionError{Err: fmt.Errorf("record %d: feature '%s' must be a number, got %s", i, name, jsonKind(record[name]))}
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, &PredictionError{Err: fmt.Errorf("record %d: feature '%s' is not finite", i, name)}
			}
			values[j] = f
		}
		v, err := model.FeatureVectorFromValues(values)
		if err != nil {
			return nil, &PredictionError{Err: err}
		}
		vectors[i] = v
	}

	return vectors, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
