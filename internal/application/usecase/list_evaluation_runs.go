package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/domain/port"
)

const defaultHistoryLimit = 10

// ListEvaluationRuns is the use case for reading evaluation history.
type ListEvaluationRuns struct {
	repo port.EvaluationRunRepository
}

// NewListEvaluationRuns creates a new ListEvaluationRuns use case.
func NewListEvaluationRuns(repo port.EvaluationRunRepository) *ListEvaluationRuns {
	return &ListEvaluationRuns{repo: repo}
}

// Execute returns the most recent runs, newest first.
func (uc *ListEvaluationRuns) Execute(ctx context.Context, req dto.ListEvaluationRunsRequest) ([]dto.EvaluationRunResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	runs, err := uc.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluation runs: %w", err)
	}

	return dto.FromEvaluationRuns(runs), nil
}
