package usecase

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bibbank/fraudml/internal/domain/model"
)

var (
	// ErrQualityGateFailed is returned when an evaluation run misses its gate.
	ErrQualityGateFailed = errors.New("quality gate failed")

	// ErrStagingRejected is returned when staging accuracy is below threshold.
	ErrStagingRejected = errors.New("staging validation rejected")

	// ErrModelNotLoaded is returned by PredictFraud until a model is ready.
	ErrModelNotLoaded = errors.New("model not loaded")
)

// MissingFeatureError reports a /predict record without one of the required keys.
type MissingFeatureError struct {
	Feature string
	Record  int
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("Missing expected feature: '%s'. Required features: %s",
		e.Feature, strings.Join(model.FeatureNames, ", "))
}

// PredictionError wraps any other failure while scoring a /predict request.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return "Prediction failed: " + e.Err.Error()
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}
