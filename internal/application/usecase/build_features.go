package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/domain/service"
)

// BuildFeatures is the use case for deriving the feature table from the
// transaction table.
type BuildFeatures struct {
	transactions port.TransactionStore
	features     port.FeatureStore
	builder      *service.FeatureBuilder
	logger       *slog.Logger
}

// NewBuildFeatures creates a new BuildFeatures use case.
func NewBuildFeatures(
	transactions port.TransactionStore,
	features port.FeatureStore,
	builder *service.FeatureBuilder,
	logger *slog.Logger,
) *BuildFeatures {
	return &BuildFeatures{
		transactions: transactions,
		features:     features,
		builder:      builder,
		logger:       logger,
	}
}

// Execute loads every transaction, builds the features and persists them.
func (uc *BuildFeatures) Execute(ctx context.Context) (dto.BuildFeaturesResponse, error) {
	txs, err := uc.transactions.LoadTransactions(ctx)
	if err != nil {
		return dto.BuildFeaturesResponse{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	records, err := uc.builder.Build(txs)
	if err != nil {
		return dto.BuildFeaturesResponse{}, fmt.Errorf("failed to build features: %w", err)
	}

	if err := uc.features.SaveFeatures(ctx, records); err != nil {
		return dto.BuildFeaturesResponse{}, fmt.Errorf("failed to save features: %w", err)
	}

	locations := make(map[int]struct{})
	for _, tx := range txs {
		locations[tx.Location] = struct{}{}
	}
	resp := dto.BuildFeaturesResponse{Rows: len(records), Locations: len(locations)}
	for _, r := range records {
		resp.FraudRows += r.IsFraud
	}

	uc.logger.InfoContext(ctx, "features built",
		"rows", resp.Rows,
		"fraud_rows", resp.FraudRows,
		"locations", resp.Locations,
	)
	return resp, nil
}
