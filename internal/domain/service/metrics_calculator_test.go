package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/service"
)

func predictions(scores ...float64) []model.Prediction {
	out := make([]model.Prediction, len(scores))
	for i, s := range scores {
		label := 0
		if s > 0.5 {
			label = 1
		}
		out[i] = model.Prediction{Label: label, Probability: s}
	}
	return out
}

func TestComputeMetrics(t *testing.T) {
	labels := []int{0, 0, 1, 1}
	metrics, err := service.ComputeMetrics(labels, predictions(0.1, 0.4, 0.35, 0.8))
	require.NoError(t, err)

	assert.InDelta(t, 0.75, metrics.Accuracy, 1e-12)
	assert.InDelta(t, 1.0, metrics.Precision, 1e-12)
	assert.InDelta(t, 0.5, metrics.Recall, 1e-12)
	assert.InDelta(t, 2.0/3, metrics.F1Score, 1e-12)
	assert.InDelta(t, 0.75, metrics.ROCAUC, 1e-12)
}

func TestComputeMetrics_PerfectRanking(t *testing.T) {
	metrics, err := service.ComputeMetrics([]int{0, 1, 0, 1}, predictions(0.2, 0.9, 0.1, 0.7))
	require.NoError(t, err)
	assert.Equal(t, model.Metrics{Accuracy: 1, Precision: 1, Recall: 1, F1Score: 1, ROCAUC: 1}, metrics)
}

func TestComputeMetrics_ZeroDivisionYieldsZero(t *testing.T) {
	metrics, err := service.ComputeMetrics([]int{0, 0, 1}, predictions(0.1, 0.2, 0.3))
	require.NoError(t, err)

	assert.InDelta(t, 2.0/3, metrics.Accuracy, 1e-12)
	assert.Zero(t, metrics.Precision)
	assert.Zero(t, metrics.Recall)
	assert.Zero(t, metrics.F1Score)
	assert.InDelta(t, 1.0, metrics.ROCAUC, 1e-12)
}

func TestComputeMetrics_Errors(t *testing.T) {
	_, err := service.ComputeMetrics([]int{0, 0}, predictions(0.1, 0.9))
	assert.True(t, errors.Is(err, service.ErrUndefinedROCAUC))

	_, err = service.ComputeMetrics([]int{0, 1}, predictions(0.1))
	assert.Error(t, err)

	_, err = service.ComputeMetrics(nil, nil)
	assert.Error(t, err)

	_, err = service.ComputeMetrics([]int{0, 2}, predictions(0.1, 0.2))
	assert.Error(t, err)
}

func TestROCAUC_MismatchedLengths(t *testing.T) {
	_, err := service.ROCAUC([]int{0, 1}, []float64{0.5})
	assert.Error(t, err)
}

func TestConfusionMatrix(t *testing.T) {
	cm, err := service.NewConfusionMatrix([]int{1, 1, 0, 0, 1}, []int{1, 0, 1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, service.ConfusionMatrix{TruePositives: 2, FalsePositives: 1, TrueNegatives: 1, FalseNegatives: 1}, cm)
	assert.Equal(t, 5, cm.Total())
	assert.InDelta(t, 0.6, cm.Accuracy(), 1e-12)
}
