package cli

import (
	"context"
	"fmt"

	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/infrastructure/filestore"
	"github.com/bibbank/fraudml/internal/infrastructure/kafka"
	"github.com/bibbank/fraudml/internal/infrastructure/messaging"
	"github.com/bibbank/fraudml/internal/infrastructure/ml"
	"github.com/bibbank/fraudml/internal/infrastructure/postgres"
	pkgkafka "github.com/bibbank/fraudml/pkg/kafka"
	pkgpostgres "github.com/bibbank/fraudml/pkg/postgres"
)

func (a *app) transactionStore() *filestore.TransactionCSV {
	return filestore.NewTransactionCSV(a.cfg.TransactionsPath())
}

func (a *app) featureStore() *filestore.FeatureCSV {
	return filestore.NewFeatureCSV(a.cfg.FeaturesPath())
}

func (a *app) heldOutStore() *filestore.HeldOutCSV {
	return filestore.NewHeldOutCSV(a.cfg.TestFeaturesPath(), a.cfg.TestLabelsPath())
}

func (a *app) modelStore() *ml.ArtifactStore {
	return ml.NewArtifactStore(a.cfg.ModelPath)
}

// publisher returns the Kafka publisher when brokers are configured and the
// logging publisher otherwise. The returned func releases the producer.
func (a *app) publisher() (port.EventPublisher, func(), error) {
	if len(a.cfg.KafkaBrokers) == 0 {
		return messaging.NewLogPublisher(a.logger), func() {}, nil
	}

	producer, err := pkgkafka.NewProducer(a.cfg.Kafka())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	closeFn := func() {
		if err := producer.Close(); err != nil {
			a.logger.Error("failed to close kafka producer", "error", err)
		}
	}
	return kafka.NewPublisher(producer, a.cfg.KafkaTopic, a.logger), closeFn, nil
}

// evaluationRuns returns nil when no database is configured.
func (a *app) evaluationRuns(ctx context.Context) (port.EvaluationRunRepository, func(), error) {
	if a.cfg.DatabaseURL == "" {
		return nil, func() {}, nil
	}

	pool, err := pkgpostgres.NewPool(ctx, pkgpostgres.Config{URL: a.cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return postgres.NewEvaluationRunRepository(pool), pool.Close, nil
}
