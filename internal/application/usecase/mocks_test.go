package usecase_test

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/pkg/events"
	"github.com/bibbank/fraudml/pkg/testutil"
)

// --- Mock implementations ---

type mockTransactionStore struct {
	txs      []model.Transaction
	saveFunc func(ctx context.Context, txs []model.Transaction) error
	loadFunc func(ctx context.Context) ([]model.Transaction, error)
}

func (m *mockTransactionStore) SaveTransactions(ctx context.Context, txs []model.Transaction) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, txs)
	}
	m.txs = txs
	return nil
}

func (m *mockTransactionStore) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return m.txs, nil
}

type mockFeatureStore struct {
	records  []model.FeatureRecord
	loadFunc func(ctx context.Context) ([]model.FeatureRecord, error)
}

func (m *mockFeatureStore) SaveFeatures(_ context.Context, records []model.FeatureRecord) error {
	m.records = records
	return nil
}

func (m *mockFeatureStore) LoadFeatures(ctx context.Context) ([]model.FeatureRecord, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	return m.records, nil
}

type mockHeldOutStore struct {
	records  []model.FeatureRecord
	loadFunc func(ctx context.Context) ([]model.FeatureRecord, error)
}

func (m *mockHeldOutStore) SaveHeldOut(_ context.Context, records []model.FeatureRecord) error {
	m.records = records
	return nil
}

func (m *mockHeldOutStore) LoadHeldOut(ctx context.Context) ([]model.FeatureRecord, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	if m.records == nil {
		return nil, errors.New("held-out data not found")
	}
	return m.records, nil
}

type mockModelStore struct {
	model    *model.LogisticModel
	saveFunc func(ctx context.Context, m *model.LogisticModel) error
	loadFunc func(ctx context.Context) (*model.LogisticModel, error)
}

func (m *mockModelStore) SaveModel(ctx context.Context, lm *model.LogisticModel) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, lm)
	}
	m.model = lm
	return nil
}

func (m *mockModelStore) LoadModel(ctx context.Context) (*model.LogisticModel, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx)
	}
	if m.model == nil {
		return nil, errors.New("model artifact not found")
	}
	return m.model, nil
}

func (m *mockModelStore) Location() string {
	return "model/fraud_model.json"
}

type mockMetricsWriter struct {
	written   *model.Metrics
	writeFunc func(ctx context.Context, metrics model.Metrics) error
}

func (m *mockMetricsWriter) WriteMetrics(ctx context.Context, metrics model.Metrics) error {
	if m.writeFunc != nil {
		return m.writeFunc(ctx, metrics)
	}
	m.written = &metrics
	return nil
}

type mockEvaluationRunRepository struct {
	saved    []*model.EvaluationRun
	saveFunc func(ctx context.Context, run *model.EvaluationRun) error
	listFunc func(ctx context.Context, limit int) ([]*model.EvaluationRun, error)
}

func (m *mockEvaluationRunRepository) Save(ctx context.Context, run *model.EvaluationRun) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, run)
	}
	m.saved = append(m.saved, run)
	return nil
}

func (m *mockEvaluationRunRepository) ListRecent(ctx context.Context, limit int) ([]*model.EvaluationRun, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit)
	}
	return m.saved, nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) eventTypes() []string {
	out := make([]string, len(m.publishedEvents))
	for i, e := range m.publishedEvents {
		out[i] = e.EventType()
	}
	return out
}

type mockInferenceClient struct {
	predictFunc func(ctx context.Context, vectors []model.FeatureVector) ([]model.Prediction, error)
}

func (m *mockInferenceClient) Predict(ctx context.Context, vectors []model.FeatureVector) ([]model.Prediction, error) {
	return m.predictFunc(ctx, vectors)
}

func (m *mockInferenceClient) Endpoint() string {
	return "http://localhost:5001/predict"
}

// --- Fixtures ---

// amountModel flags any amount well above 1000 as fraud.
func amountModel() *model.LogisticModel {
	m, err := model.NewLogisticModel(model.LogisticParams{
		ID:           testutil.TestModelID,
		Features:     model.FeatureNames,
		Coefficients: []float64{1, 0, 0, 0},
		Mean:         []float64{1000, 0, 0, 0},
		Scale:        []float64{100, 1, 1, 1},
		TrainedAt:    testutil.TestTime,
	})
	if err != nil {
		panic(err)
	}
	return m
}

// overflowModel standardises huge inputs of opposite sign to +Inf and -Inf,
// whose weighted sum is NaN.
func overflowModel() *model.LogisticModel {
	m, err := model.NewLogisticModel(model.LogisticParams{
		ID:           testutil.TestModelID,
		Features:     model.FeatureNames,
		Coefficients: []float64{1, 1, 0, 0},
		Mean:         []float64{0, 0, 0, 0},
		Scale:        []float64{0.01, 0.01, 1, 1},
		TrainedAt:    testutil.TestTime,
	})
	if err != nil {
		panic(err)
	}
	return m
}

func record(amount float64, fraud int) model.FeatureRecord {
	return model.FeatureRecord{
		TransactionID: uuid.New(),
		Features:      model.FeatureVector{Amount: amount, AmountPerLocation: 1, Location: 3},
		IsFraud:       fraud,
	}
}
