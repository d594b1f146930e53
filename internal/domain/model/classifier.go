package model

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
)

// DefaultThreshold is the probability above which a vector is labelled fraud.
const DefaultThreshold = 0.5

// LogisticParams are the fitted parameters of a LogisticModel. Coefficients
// apply to standardised inputs: (x - Mean) / Scale.
type LogisticParams struct {
	ID           uuid.UUID
	Features     []string
	Coefficients []float64
	Intercept    float64
	Mean         []float64
	Scale        []float64
	Threshold    float64
	TrainingRows int
	TrainedAt    time.Time
}

// LogisticModel is a fitted binary logistic regression classifier. It is
// immutable once built and safe for concurrent use.
type LogisticModel struct {
	params LogisticParams
}

// NewLogisticModel validates params and builds the model.
func NewLogisticModel(params LogisticParams) (*LogisticModel, error) {
	if !slices.Equal(params.Features, FeatureNames) {
		return nil, fmt.Errorf("model features %v do not match expected %v", params.Features, FeatureNames)
	}
	n := len(FeatureNames)
	if len(params.Coefficients) != n || len(params.Mean) != n || len(params.Scale) != n {
		return nil, fmt.Errorf("model parameter vectors must have length %d", n)
	}
	for i := 0; i < n; i++ {
		if !finite(params.Coefficients[i]) || !finite(params.Mean[i]) || !finite(params.Scale[i]) {
			return nil, fmt.Errorf("model parameter for %s is not finite", FeatureNames[i])
		}
		if params.Scale[i] <= 0 {
			return nil, fmt.Errorf("model scale for %s must be positive, got %v", FeatureNames[i], params.Scale[i])
		}
	}
	if !finite(params.Intercept) {
		return nil, fmt.Errorf("model intercept is not finite")
	}
	if params.Threshold == 0 {
		params.Threshold = DefaultThreshold
	}
	if params.Threshold <= 0 || params.Threshold >= 1 {
		return nil, fmt.Errorf("model threshold must be within (0, 1), got %v", params.Threshold)
	}

	params.Features = slices.Clone(params.Features)
	params.Coefficients = slices.Clone(params.Coefficients)
	params.Mean = slices.Clone(params.Mean)
	params.Scale = slices.Clone(params.Scale)
	return &LogisticModel{params: params}, nil
}

// Params returns a copy of the model parameters.
func (m *LogisticModel) Params() LogisticParams {
	p := m.params
	p.Features = slices.Clone(p.Features)
	p.Coefficients = slices.Clone(p.Coefficients)
	p.Mean = slices.Clone(p.Mean)
	p.Scale = slices.Clone(p.Scale)
	return p
}

// ID returns the identifier assigned at training time.
func (m *LogisticModel) ID() uuid.UUID { return m.params.ID }

// DecisionFunction returns the log-odds of fraud for v.
func (m *LogisticModel) DecisionFunction(v FeatureVector) float64 {
	x := v.Values()
	for i := range x {
		x[i] = (x[i] - m.params.Mean[i]) / m.params.Scale[i]
	}
	return floats.Dot(m.params.Coefficients, x) + m.params.Intercept
}

// Probability returns P(fraud | v).
func (m *LogisticModel) Probability(v FeatureVector) float64 {
	return Sigmoid(m.DecisionFunction(v))
}

// Predict labels v and reports its fraud probability.
func (m *LogisticModel) Predict(v FeatureVector) Prediction {
	p := m.Probability(v)
	label := 0
	if p > m.params.Threshold {
		label = 1
	}
	return Prediction{Label: label, Probability: p}
}

// PredictBatch predicts every vector, preserving order.
func (m *LogisticModel) PredictBatch(vectors []FeatureVector) []Prediction {
	out := make([]Prediction, len(vectors))
	for i, v := range vectors {
		out[i] = m.Predict(v)
	}
	return out
}

// Sigmoid is the numerically stable logistic function.
func Sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
