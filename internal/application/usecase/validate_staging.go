package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/domain/event"
	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
)

// ValidateStaging is the use case for scoring a deployed inference service
// against the local held-out labels.
type ValidateStaging struct {
	heldOut   port.HeldOutStore
	client    port.InferenceClient
	publisher port.EventPublisher
	threshold float64
	logger    *slog.Logger
}

// NewValidateStaging creates a new ValidateStaging use case.
func NewValidateStaging(
	heldOut port.HeldOutStore,
	client port.InferenceClient,
	publisher port.EventPublisher,
	threshold float64,
	logger *slog.Logger,
) *ValidateStaging {
	return &ValidateStaging{
		heldOut:   heldOut,
		client:    client,
		publisher: publisher,
		threshold: threshold,
		logger:    logger,
	}
}

// Execute posts every held-out vector in one request and approves the
// deployment when accuracy reaches the threshold. Below threshold it returns
// the result together with an error wrapping ErrStagingRejected.
func (uc *ValidateStaging) Execute(ctx context.Context) (dto.ValidateStagingResponse, error) {
	records, err := uc.heldOut.LoadHeldOut(ctx)
	if err != nil {
		return dto.ValidateStagingResponse{}, fmt.Errorf("failed to load held-out data: %w", err)
	}

	uc.logger.InfoContext(ctx, "validating staging endpoint",
		"endpoint", uc.client.Endpoint(),
		"records", len(records),
	)

	predictions, err := uc.client.Predict(ctx, model.Vectors(records))
	if err != nil {
		return dto.ValidateStagingResponse{}, fmt.Errorf("failed to get predictions from %s: %w", uc.client.Endpoint(), err)
	}
	if len(predictions) != len(records) {
		return dto.ValidateStagingResponse{}, fmt.Errorf("got %d predictions for %d labels", len(predictions), len(records))
	}

	correct := 0
	for i, p := range predictions {
		if p.Label == records[i].IsFraud {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(records))
	approved := accuracy >= uc.threshold

	resp := dto.ValidateStagingResponse{
		Endpoint:  uc.client.Endpoint(),
		Records:   len(records),
		Correct:   correct,
		Accuracy:  accuracy,
		Threshold: uc.threshold,
		Approved:  approved,
	}

	validated := event.NewStagingValidated(resp.Endpoint, resp.Records, accuracy, uc.threshold, approved, time.Now())
	if err := uc.publisher.Publish(ctx, validated); err != nil {
		return dto.ValidateStagingResponse{}, fmt.Errorf("failed to publish events: %w", err)
	}

	if !approved {
		uc.logger.ErrorContext(ctx, "staging validation REJECTED",
			"accuracy", accuracy,
			"threshold", uc.threshold,
		)
		return resp, fmt.Errorf("%w: accuracy %.4f is below %.2f", ErrStagingRejected, accuracy, uc.threshold)
	}

	uc.logger.InfoContext(ctx, "staging validation APPROVED",
		"accuracy", accuracy,
		"threshold", uc.threshold,
	)
	return resp, nil
}
