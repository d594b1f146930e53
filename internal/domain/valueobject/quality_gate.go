package valueobject

import "fmt"

// QualityGate is a named lower bound a metric must reach for a model to pass.
type QualityGate struct {
	metric    string
	threshold float64
}

// NewQualityGate validates that threshold lies in [0, 1].
func NewQualityGate(metric string, threshold float64) (QualityGate, error) {
	if metric == "" {
		return QualityGate{}, fmt.Errorf("quality gate metric is required")
	}
	if threshold < 0 || threshold > 1 {
		return QualityGate{}, fmt.Errorf("quality gate threshold must be within [0, 1], got %v", threshold)
	}
	return QualityGate{metric: metric, threshold: threshold}, nil
}

// Metric returns the name of the gated metric.
func (g QualityGate) Metric() string {
	return g.metric
}

// Threshold returns the minimum passing value.
func (g QualityGate) Threshold() float64 {
	return g.threshold
}

// Passes reports whether value meets the threshold. Equality passes.
func (g QualityGate) Passes(value float64) bool {
	return value >= g.threshold
}

// String returns e.g. "f1_score >= 0.7".
func (g QualityGate) String() string {
	return fmt.Sprintf("%s >= %g", g.metric, g.threshold)
}
