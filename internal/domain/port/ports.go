package port

import (
	"context"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/pkg/events"
)

// TransactionStore persists the raw synthetic transaction table.
type TransactionStore interface {
	SaveTransactions(ctx context.Context, txs []model.Transaction) error
	LoadTransactions(ctx context.Context) ([]model.Transaction, error)
}

// FeatureStore persists the full labelled feature table.
type FeatureStore interface {
	SaveFeatures(ctx context.Context, records []model.FeatureRecord) error
	LoadFeatures(ctx context.Context) ([]model.FeatureRecord, error)
}

// HeldOutStore persists the held-out partition as two aligned files: the
// feature vectors and the labels, both keyed by transaction ID.
type HeldOutStore interface {
	SaveHeldOut(ctx context.Context, records []model.FeatureRecord) error
	LoadHeldOut(ctx context.Context) ([]model.FeatureRecord, error)
}

// ModelStore persists the fitted model artifact.
type ModelStore interface {
	SaveModel(ctx context.Context, m *model.LogisticModel) error
	LoadModel(ctx context.Context) (*model.LogisticModel, error)
	Location() string
}

// MetricsWriter writes the evaluation metrics report.
type MetricsWriter interface {
	WriteMetrics(ctx context.Context, metrics model.Metrics) error
}

// EvaluationRunRepository is the persistence port for evaluation history.
type EvaluationRunRepository interface {
	Save(ctx context.Context, run *model.EvaluationRun) error
	ListRecent(ctx context.Context, limit int) ([]*model.EvaluationRun, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// InferenceClient sends feature vectors to a running inference service.
type InferenceClient interface {
	Predict(ctx context.Context, vectors []model.FeatureVector) ([]model.Prediction, error)
	Endpoint() string
}
