package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/application/usecase"
	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
	"github.com/bibbank/fraudml/pkg/observability"
)

func decode(t *testing.T, body string) dto.PredictRequest {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	return dto.PredictRequest{Records: v}
}

func loadedPredictor(t *testing.T) *usecase.PredictFraud {
	t.Helper()
	uc := usecase.NewPredictFraud(&mockModelStore{model: amountModel()}, observability.NopLogger())
	require.NoError(t, uc.Load(context.Background()))
	return uc
}

func TestPredictFraud_Load(t *testing.T) {
	uc := usecase.NewPredictFraud(&mockModelStore{model: amountModel()}, observability.NopLogger())
	assert.Equal(t, valueobject.ModelStateUninitialized, uc.State())

	require.NoError(t, uc.Load(context.Background()))
	assert.True(t, uc.State().IsReady())

	err := uc.Load(context.Background())
	require.Error(t, err, "a loaded model is never reloaded")
	assert.True(t, uc.State().IsReady())
}

func TestPredictFraud_LoadFailure(t *testing.T) {
	store := &mockModelStore{}
	uc := usecase.NewPredictFraud(store, observability.NopLogger())

	err := uc.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model/fraud_model.json")
	assert.Equal(t, valueobject.ModelStateFailed, uc.State())

	_, err = uc.Execute(context.Background(), decode(t, `[{"amount":1,"amount_per_location":1,"location":1,"is_amex":0}]`))
	assert.ErrorIs(t, err, usecase.ErrModelNotLoaded)
}

func TestPredictFraud_ExecuteBeforeLoad(t *testing.T) {
	uc := usecase.NewPredictFraud(&mockModelStore{model: amountModel()}, observability.NopLogger())

	_, err := uc.Execute(context.Background(), decode(t, `[]`))
	assert.ErrorIs(t, err, usecase.ErrModelNotLoaded)
}

func TestPredictFraud_Execute(t *testing.T) {
	uc := loadedPredictor(t)

	resp, err := uc.Execute(context.Background(), decode(t, `[
		{"amount": 120.5, "amount_per_location": 0.48, "location": 4, "is_amex": 0},
		{"amount": 3200, "amount_per_location": 1.1, "location": 13, "is_amex": 1, "merchant_id": "M0001"}
	]`))
	require.NoError(t, err)
	require.Len(t, resp, 2)

	assert.Equal(t, 0, resp[0].Prediction)
	assert.Less(t, resp[0].Probability, 0.01)
	assert.Equal(t, 1, resp[1].Prediction)
	assert.Greater(t, resp[1].Probability, 0.99)
}

func TestPredictFraud_MissingFeature(t *testing.T) {
	uc := loadedPredictor(t)

	_, err := uc.Execute(context.Background(), decode(t, `[
		{"amount": 1, "amount_per_location": 1, "location": 1, "is_amex": 0},
		{"amount": 1, "is_amex": "yes"}
	]`))

	var missing *usecase.MissingFeatureError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, model.FeatureAmountPerLocation, missing.Feature)
	assert.Equal(t, 1, missing.Record)
	assert.Equal(t,
		"Missing expected feature: 'amount_per_location'. Required features: amount, amount_per_location, location, is_amex",
		err.Error())
}

func TestPredictFraud_PredictionErrors(t *testing.T) {
	uc := loadedPredictor(t)

	tests := []struct {
		name     string
		body     string
		wantErr  string
		overflow bool
	}{
		{name: "object body", body: `{"amount": 1}`, wantErr: "expected a JSON array of records, got object"},
		{name: "empty array", body: `[]`, wantErr: "no records to score"},
		{name: "array of numbers", body: `[1, 2]`, wantErr: "record 0: expected a JSON object, got number"},
		{name: "null value", body: `[{"amount": null, "amount_per_location": 1, "location": 1, "is_amex": 0}]`, wantErr: "feature 'amount' must be a number, got null"},
		{name: "string value", body: `[{"amount": 1, "amount_per_location": 1, "location": "north", "is_amex": 0}]`, wantErr: "feature 'location' must be a number, got string"},
		{
			name:     "finite inputs overflowing the log-odds",
			overflow: true,
			body:     `[{"amount": 1.7e308, "amount_per_location": -1.7e308, "location": 1, "is_amex": 0}]`,
			wantErr:  "record 0: fraud probability is not a finite value in [0, 1]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := uc
			if tt.overflow {
				uc = usecase.NewPredictFraud(&mockModelStore{model: overflowModel()}, observability.NopLogger())
				require.NoError(t, uc.Load(context.Background()))
			}
			_, err := uc.Execute(context.Background(), decode(t, tt.body))

			var predErr *usecase.PredictionError
			require.True(t, errors.As(err, &predErr), "expected PredictionError, got %v", err)
			assert.Contains(t, err.Error(), "Prediction failed: ")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
