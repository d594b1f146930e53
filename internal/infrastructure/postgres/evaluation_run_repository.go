package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
	pgpkg "github.com/bibbank/fraudml/pkg/postgres"
)

var _ port.EvaluationRunRepository = (*EvaluationRunRepository)(nil)

// EvaluationRunRepository implements port.EvaluationRunRepository using PostgreSQL.
type EvaluationRunRepository struct {
	pool *pgxpool.Pool
}

// NewEvaluationRunRepository creates a new PostgreSQL-backed repository.
func NewEvaluationRunRepository(pool *pgxpool.Pool) *EvaluationRunRepository {
	return &EvaluationRunRepository{pool: pool}
}

// Save inserts the run. Runs are immutable, so saving an existing ID is a no-op.
func (r *EvaluationRunRepository) Save(ctx context.Context, run *model.EvaluationRun) error {
	return pgpkg.WithTransaction(ctx, r.pool, func(q pgpkg.Querier) error {
		return insertRun(ctx, q, run)
	})
}

func insertRun(ctx context.Context, q pgpkg.Querier, run *model.EvaluationRun) error {
	query := `
		INSERT INTO evaluation_runs (
			id, model_path, held_out_rows,
			accuracy, precision_score, recall, f1_score, roc_auc,
			gate_metric, gate_threshold, passed, evaluated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING
	`

	m := run.Metrics()
	_, err := q.Exec(ctx, query,
		run.ID(),
		run.ModelPath(),
		run.HeldOutRows(),
		m.Accuracy,
		m.Precision,
		m.Recall,
		m.F1Score,
		m.ROCAUC,
		run.Gate().Metric(),
		run.Gate().Threshold(),
		run.Passed(),
		run.EvaluatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save evaluation run: %w", err)
	}
	return nil
}

// ListRecent returns up to limit runs, newest first.
func (r *EvaluationRunRepository) ListRecent(ctx context.Context, limit int) ([]*model.EvaluationRun, error) {
	query := `
		SELECT id, model_path, held_out_rows,
			accuracy, precision_score, recall, f1_score, roc_auc,
			gate_metric, gate_threshold, passed, evaluated_at
		FROM evaluation_runs
		ORDER BY evaluated_at DESC, created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query evaluation runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.EvaluationRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate evaluation runs: %w", err)
	}
	return runs, nil
}

func scanRun(row pgx.Row) (*model.EvaluationRun, error) {
	var (
		id            uuid.UUID
		modelPath     string
		heldOutRows   int
		m             model.Metrics
		gateMetric    string
		gateThreshold float64
		passed        bool
		evaluatedAt   time.Time
	)
	err := row.Scan(
		&id, &modelPath, &heldOutRows,
		&m.Accuracy, &m.Precision, &m.Recall, &m.F1Score, &m.ROCAUC,
		&gateMetric, &gateThreshold, &passed, &evaluatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan evaluation run: %w", err)
	}

	gate, err := valueobject.NewQualityGate(gateMetric, gateThreshold)
	if err != nil {
		return nil, fmt.Errorf("invalid stored quality gate for run %s: %w", id, err)
	}
	return model.ReconstructEvaluationRun(id, modelPath, heldOutRows, m, gate, passed, evaluatedAt.UTC()), nil
}
