package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/domain/service"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
)

// EvaluateModel is the use case for scoring the artifact on the held-out
// partition and applying the quality gate.
type EvaluateModel struct {
	models    port.ModelStore
	heldOut   port.HeldOutStore
	writer    port.MetricsWriter
	repo      port.EvaluationRunRepository
	publisher port.EventPublisher
	gate      valueobject.QualityGate
	logger    *slog.Logger
}

// NewEvaluateModel creates a new EvaluateModel use case. repo may be nil when
// no database is configured.
func NewEvaluateModel(
	models port.ModelStore,
	heldOut port.HeldOutStore,
	writer port.MetricsWriter,
	repo port.EvaluationRunRepository,
	publisher port.EventPublisher,
	gate valueobject.QualityGate,
	logger *slog.Logger,
) *EvaluateModel {
	return &EvaluateModel{
		models:    models,
		heldOut:   heldOut,
		writer:    writer,
		repo:      repo,
		publisher: publisher,
		gate:      gate,
		logger:    logger,
	}
}

// Execute computes the metrics, always writes them, then applies the gate.
// A failed gate returns the run alongside an error wrapping ErrQualityGateFailed.
func (uc *EvaluateModel) Execute(ctx context.Context) (dto.EvaluationRunResponse, error) {
	// 1. Load artifact and held-out data.
	m, err := uc.models.LoadModel(ctx)
	if err != nil {
		return dto.EvaluationRunResponse{}, fmt.Errorf("failed to load model: %w", err)
	}
	records, err := uc.heldOut.LoadHeldOut(ctx)
	if err != nil {
		return dto.EvaluationRunResponse{}, fmt.Errorf("failed to load held-out data: %w", err)
	}

	// 2. Score and compute metrics.
	predictions := m.PredictBatch(model.Vectors(records))
	metrics, err := service.ComputeMetrics(model.Labels(records), predictions)
	if err != nil {
		return dto.EvaluationRunResponse{}, fmt.Errorf("failed to compute metrics: %w", err)
	}

	// 3. The metrics file is written whether or not the gate passes.
	if err := uc.writer.WriteMetrics(ctx, metrics); err != nil {
		return dto.EvaluationRunResponse{}, fmt.Errorf("failed to write metrics: %w", err)
	}
	uc.logSummary(ctx, metrics)

	// 4. Apply the gate.
	run, err := model.NewEvaluationRun(uc.models.Location(), len(records), metrics, uc.gate, time.Now())
	if err != nil {
		return dto.EvaluationRunResponse{}, fmt.Errorf("failed to create evaluation run: %w", err)
	}

	// 5. Persist history when configured.
	if uc.repo != nil {
		if err := uc.repo.Save(ctx, run); err != nil {
			return dto.EvaluationRunResponse{}, fmt.Errorf("failed to save evaluation run: %w", err)
		}
	}

	// 6. Publish domain events.
	if evts := run.ClearEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			return dto.EvaluationRunResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	resp := dto.FromEvaluationRun(run)
	if !run.Passed() {
		uc.logger.ErrorContext(ctx, "quality gate failed",
			"gate", uc.gate.String(),
			"value", run.GateValue(),
		)
		return resp, fmt.Errorf("%w: %s is %.4f, required %s", ErrQualityGateFailed,
			uc.gate.Metric(), run.GateValue(), uc.gate.String())
	}

	uc.logger.InfoContext(ctx, "quality gate passed", "gate", uc.gate.String(), "value", run.GateValue())
	return resp, nil
}

func (uc *EvaluateModel) logSummary(ctx context.Context, metrics model.Metrics) {
	for _, name := range model.MetricNames {
		v, _ := metrics.Value(name)
		uc.logger.InfoContext(ctx, fmt.Sprintf("%s: %.4f", metricLabel(name), v))
	}
}

// metricLabel turns "f1_score" into "F1 score".
func metricLabel(name string) string {
	label := strings.ReplaceAll(name, "_", " ")
	return strings.ToUpper(label[:1]) + label[1:]
}
