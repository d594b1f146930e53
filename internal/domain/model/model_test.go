package model_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudml/internal/domain/event"
	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
)

func validParams() model.LogisticParams {
	return model.LogisticParams{
		ID:           uuid.New(),
		Features:     model.FeatureNames,
		Coefficients: []float64{2, 0, 0, 0},
		Intercept:    0,
		Mean:         []float64{100, 1, 5, 0},
		Scale:        []float64{50, 1, 1, 1},
	}
}

func TestTransactionValidate(t *testing.T) {
	valid := model.Transaction{
		ID:         uuid.New(),
		Timestamp:  time.Now(),
		Amount:     decimal.RequireFromString("12.34"),
		Location:   3,
		CardType:   valueobject.CardTypeVisa,
		MerchantID: "M0001",
	}
	require.NoError(t, valid.Validate())
	assert.Equal(t, 0, valid.FraudLabel())

	t.Run("missing id", func(t *testing.T) {
		tx := valid
		tx.ID = uuid.Nil
		assert.Error(t, tx.Validate())
	})
	t.Run("negative amount", func(t *testing.T) {
		tx := valid
		tx.Amount = decimal.NewFromInt(-1)
		assert.Error(t, tx.Validate())
	})
	t.Run("zero location", func(t *testing.T) {
		tx := valid
		tx.Location = 0
		assert.Error(t, tx.Validate())
	})
	t.Run("missing card type", func(t *testing.T) {
		tx := valid
		tx.CardType = valueobject.CardType{}
		assert.Error(t, tx.Validate())
	})
}

func TestFeatureVectorValuesOrder(t *testing.T) {
	v := model.FeatureVector{Amount: 1, AmountPerLocation: 2, Location: 3, IsAmex: 4}
	assert.Equal(t, []float64{1, 2, 3, 4}, v.Values())

	back, err := model.FeatureVectorFromValues(v.Values())
	require.NoError(t, err)
	assert.Equal(t, v, back)

	_, err = model.FeatureVectorFromValues([]float64{1, 2})
	assert.Error(t, err)
}

func TestValidateLabels(t *testing.T) {
	assert.NoError(t, model.ValidateLabels([]int{0, 1, 1, 0}))
	assert.Error(t, model.ValidateLabels([]int{0, 2}))
}

func TestNewLogisticModelValidation(t *testing.T) {
	_, err := model.NewLogisticModel(validParams())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(p *model.LogisticParams)
	}{
		{"wrong features", func(p *model.LogisticParams) { p.Features = []string{"amount"} }},
		{"short coefficients", func(p *model.LogisticParams) { p.Coefficients = []float64{1} }},
		{"zero scale", func(p *model.LogisticParams) { p.Scale = []float64{0, 1, 1, 1} }},
		{"nan coefficient", func(p *model.LogisticParams) { p.Coefficients = []float64{math.NaN(), 0, 0, 0} }},
		{"infinite intercept", func(p *model.LogisticParams) { p.Intercept = math.Inf(1) }},
		{"threshold out of range", func(p *model.LogisticParams) { p.Threshold = 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validParams()
			tt.mutate(&p)
			_, err := model.NewLogisticModel(p)
			assert.Error(t, err)
		})
	}
}

func TestLogisticModelPredict(t *testing.T) {
	m, err := model.NewLogisticModel(validParams())
	require.NoError(t, err)

	// amount at the mean: z = 0, p = 0.5, not above threshold.
	atMean := m.Predict(model.FeatureVector{Amount: 100, AmountPerLocation: 1, Location: 5})
	assert.Equal(t, 0, atMean.Label)
	assert.InDelta(t, 0.5, atMean.Probability, 1e-12)

	high := m.Predict(model.FeatureVector{Amount: 300, AmountPerLocation: 1, Location: 5})
	assert.Equal(t, 1, high.Label)
	assert.InDelta(t, model.Sigmoid(8), high.Probability, 1e-12)

	low := m.Predict(model.FeatureVector{Amount: 0, AmountPerLocation: 1, Location: 5})
	assert.Equal(t, 0, low.Label)
	assert.Less(t, low.Probability, 0.5)

	batch := m.PredictBatch([]model.FeatureVector{{Amount: 300}, {Amount: 0}})
	require.Len(t, batch, 2)
	assert.Equal(t, 1, batch[0].Label)
	assert.Equal(t, 0, batch[1].Label)
}

func TestLogisticModelParamsAreCopied(t *testing.T) {
	p := validParams()
	m, err := model.NewLogisticModel(p)
	require.NoError(t, err)

	p.Coefficients[0] = 99
	got := m.Params()
	assert.Equal(t, 2.0, got.Coefficients[0])
	assert.Equal(t, model.DefaultThreshold, got.Threshold)

	got.Mean[0] = -1
	assert.Equal(t, 100.0, m.Params().Mean[0])
}

func TestSigmoidIsStable(t *testing.T) {
	assert.InDelta(t, 1.0, model.Sigmoid(1000), 1e-12)
	assert.InDelta(t, 0.0, model.Sigmoid(-1000), 1e-12)
	assert.False(t, math.IsNaN(model.Sigmoid(-1000)))
}

func TestMetricsLookup(t *testing.T) {
	m := model.Metrics{Accuracy: 0.9, Precision: 0.8, Recall: 0.7, F1Score: 0.75, ROCAUC: 0.95}

	v, ok := m.Value(model.MetricF1Score)
	require.True(t, ok)
	assert.Equal(t, 0.75, v)

	_, ok = m.Value("log_loss")
	assert.False(t, ok)

	assert.Equal(t, map[string]float64{
		"accuracy": 0.9, "precision": 0.8, "recall": 0.7, "f1_score": 0.75, "roc_auc": 0.95,
	}, m.AsMap())
}

func TestNewEvaluationRun(t *testing.T) {
	gate, err := valueobject.NewQualityGate(model.MetricF1Score, 0.7)
	require.NoError(t, err)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("passing run records one event", func(t *testing.T) {
		run, err := model.NewEvaluationRun("model/fraud_model.json", 600, model.Metrics{F1Score: 0.8}, gate, at)
		require.NoError(t, err)

		assert.True(t, run.Passed())
		assert.Equal(t, 0.8, run.GateValue())
		require.Len(t, run.Events(), 1)
		assert.Equal(t, event.EventTypeEvaluationCompleted, run.Events()[0].EventType())
		assert.Equal(t, run.ID(), run.Events()[0].AggregateID())
	})

	t.Run("failing run records gate failure", func(t *testing.T) {
		run, err := model.NewEvaluationRun("model/fraud_model.json", 600, model.Metrics{F1Score: 0.5}, gate, at)
		require.NoError(t, err)

		assert.False(t, run.Passed())
		evts := run.ClearEvents()
		require.Len(t, evts, 2)
		failed, ok := evts[1].(event.QualityGateFailed)
		require.True(t, ok)
		assert.Equal(t, 0.5, failed.Value)
		assert.Equal(t, 0.7, failed.Threshold)
		assert.Empty(t, run.Events())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := model.NewEvaluationRun("", 600, model.Metrics{}, gate, at)
		assert.Error(t, err)
		_, err = model.NewEvaluationRun("m.json", 0, model.Metrics{}, gate, at)
		assert.Error(t, err)

		unknown, err := valueobject.NewQualityGate("log_loss", 0.5)
		require.NoError(t, err)
		_, err = model.NewEvaluationRun("m.json", 10, model.Metrics{}, unknown, at)
		assert.Error(t, err)
	})

	t.Run("reconstruct carries no events", func(t *testing.T) {
		run := model.ReconstructEvaluationRun(uuid.New(), "m.json", 10, model.Metrics{F1Score: 0.9}, gate, true, at)
		assert.Empty(t, run.Events())
		assert.True(t, run.Passed())
	})
}
