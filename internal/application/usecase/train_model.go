package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/domain/event"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/domain/service"
)

// TrainModel is the use case for fitting the classifier and persisting both
// the artifact and the held-out partition.
type TrainModel struct {
	features  port.FeatureStore
	heldOut   port.HeldOutStore
	models    port.ModelStore
	publisher port.EventPublisher
	splitter  *service.StratifiedSplitter
	trainer   *service.LogisticRegressionTrainer
	logger    *slog.Logger
}

// NewTrainModel creates a new TrainModel use case.
func NewTrainModel(
	features port.FeatureStore,
	heldOut port.HeldOutStore,
	models port.ModelStore,
	publisher port.EventPublisher,
	splitter *service.StratifiedSplitter,
	trainer *service.LogisticRegressionTrainer,
	logger *slog.Logger,
) *TrainModel {
	return &TrainModel{
		features:  features,
		heldOut:   heldOut,
		models:    models,
		publisher: publisher,
		splitter:  splitter,
		trainer:   trainer,
		logger:    logger,
	}
}

// Execute splits the feature table, fits on the training partition, saves the
// artifact and held-out files, and publishes ModelTrained.
func (uc *TrainModel) Execute(ctx context.Context) (dto.TrainModelResponse, error) {
	// 1. Load the full feature table.
	records, err := uc.features.LoadFeatures(ctx)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to load features: %w", err)
	}

	// 2. Stratified split.
	train, test, err := uc.splitter.Split(records)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to split features: %w", err)
	}

	// 3. Fit.
	m, report, err := uc.trainer.Fit(train)
	if err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to train model: %w", err)
	}

	// 4. Persist the artifact and the held-out partition.
	if err := uc.models.SaveModel(ctx, m); err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to save model: %w", err)
	}
	if err := uc.heldOut.SaveHeldOut(ctx, test); err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to save held-out data: %w", err)
	}

	params := m.Params()
	fraud := 0
	for _, r := range records {
		fraud += r.IsFraud
	}
	fraudRate := float64(fraud) / float64(len(records))

	// 5. Publish.
	trained := event.NewModelTrained(
		m.ID(), uc.models.Location(), len(train), len(test), fraudRate, report.Iterations, params.TrainedAt,
	)
	if err := uc.publisher.Publish(ctx, trained); err != nil {
		return dto.TrainModelResponse{}, fmt.Errorf("failed to publish events: %w", err)
	}

	uc.logger.InfoContext(ctx, "model trained",
		"model_id", m.ID(),
		"path", uc.models.Location(),
		"training_rows", len(train),
		"held_out_rows", len(test),
		"iterations", report.Iterations,
		"loss", report.Loss,
		"converged", report.Converged,
	)

	return dto.TrainModelResponse{
		ModelID:      m.ID(),
		ModelPath:    uc.models.Location(),
		TrainingRows: len(train),
		HeldOutRows:  len(test),
		Iterations:   report.Iterations,
		Loss:         report.Loss,
		Converged:    report.Converged,
		TrainedAt:    params.TrainedAt,
	}, nil
}
