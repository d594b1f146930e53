package service_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/service"
	"github.com/bibbank/fraudml/pkg/observability"
)

func syntheticFeatures(t *testing.T) []model.FeatureRecord {
	t.Helper()
	synth, err := service.NewSynthesizer(service.DefaultSynthesizerConfig())
	require.NoError(t, err)
	txs, err := synth.Generate()
	require.NoError(t, err)
	records, err := service.NewFeatureBuilder().Build(txs)
	require.NoError(t, err)
	return records
}

func TestLogisticRegressionTrainer_Fit(t *testing.T) {
	records := syntheticFeatures(t)
	splitter, err := service.NewStratifiedSplitter(0.3, 42)
	require.NoError(t, err)
	train, test, err := splitter.Split(records)
	require.NoError(t, err)

	trainer, err := service.NewLogisticRegressionTrainer(service.DefaultTrainerConfig(), observability.NopLogger())
	require.NoError(t, err)

	m, report, err := trainer.Fit(train)
	require.NoError(t, err)
	assert.Positive(t, report.Iterations)

	params := m.Params()
	assert.Equal(t, model.FeatureNames, params.Features)
	assert.Equal(t, len(train), params.TrainingRows)
	assert.Positive(t, params.Coefficients[0], "larger amounts should raise the fraud score")
	assert.False(t, params.TrainedAt.IsZero())

	metrics, err := service.ComputeMetrics(model.Labels(test), m.PredictBatch(model.Vectors(test)))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, metrics.Accuracy, 0.95)
	assert.GreaterOrEqual(t, metrics.F1Score, 0.7)
	assert.GreaterOrEqual(t, metrics.ROCAUC, 0.95)
}

func TestLogisticRegressionTrainer_FitErrors(t *testing.T) {
	trainer, err := service.NewLogisticRegressionTrainer(service.DefaultTrainerConfig(), observability.NopLogger())
	require.NoError(t, err)

	_, _, err = trainer.Fit(nil)
	assert.Error(t, err)

	oneClass := []model.FeatureRecord{
		{Features: model.FeatureVector{Amount: 1}},
		{Features: model.FeatureVector{Amount: 2}},
	}
	_, _, err = trainer.Fit(oneClass)
	assert.True(t, errors.Is(err, service.ErrSingleClass))

	badLabel := []model.FeatureRecord{
		{Features: model.FeatureVector{Amount: 1}, IsFraud: 3},
		{Features: model.FeatureVector{Amount: 2}},
	}
	_, _, err = trainer.Fit(badLabel)
	assert.Error(t, err)
}

func TestNewLogisticRegressionTrainer_InvalidC(t *testing.T) {
	cfg := service.DefaultTrainerConfig()
	cfg.C = 0
	_, err := service.NewLogisticRegressionTrainer(cfg, observability.NopLogger())
	assert.Error(t, err)
}
