package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/domain/service"
)

// GenerateDataset is the use case for writing the synthetic transaction table.
type GenerateDataset struct {
	store  port.TransactionStore
	logger *slog.Logger
}

// NewGenerateDataset creates a new GenerateDataset use case.
func NewGenerateDataset(store port.TransactionStore, logger *slog.Logger) *GenerateDataset {
	return &GenerateDataset{store: store, logger: logger}
}

// Execute draws the dataset and persists it.
func (uc *GenerateDataset) Execute(ctx context.Context, req dto.GenerateDatasetRequest) (dto.GenerateDatasetResponse, error) {
	cfg := service.DefaultSynthesizerConfig()
	cfg.Samples = req.Samples
	cfg.FraudRate = req.FraudRate
	cfg.Seed = req.Seed
	if !req.Start.IsZero() {
		cfg.Start = req.Start
	}

	synth, err := service.NewSynthesizer(cfg)
	if err != nil {
		return dto.GenerateDatasetResponse{}, fmt.Errorf("invalid synthesizer config: %w", err)
	}

	txs, err := synth.Generate()
	if err != nil {
		return dto.GenerateDatasetResponse{}, fmt.Errorf("failed to generate transactions: %w", err)
	}

	if err := uc.store.SaveTransactions(ctx, txs); err != nil {
		return dto.GenerateDatasetResponse{}, fmt.Errorf("failed to save transactions: %w", err)
	}

	resp := dto.GenerateDatasetResponse{Rows: len(txs)}
	for _, tx := range txs {
		resp.FraudRows += tx.FraudLabel()
	}

	uc.logger.InfoContext(ctx, "synthetic dataset generated",
		"rows", resp.Rows,
		"fraud_rows", resp.FraudRows,
		"seed", cfg.Seed,
	)
	return resp, nil
}
