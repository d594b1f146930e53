//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
	"github.com/bibbank/fraudml/internal/infrastructure/postgres"
	"github.com/bibbank/fraudml/pkg/testutil"
)

func TestEvaluationRunRepository_Integration(t *testing.T) {
	ctx := context.Background()

	pg := testutil.NewPostgresContainer(ctx, t)
	pg.Migrate(t, postgres.Migrations, postgres.MigrationsDir)

	repo := postgres.NewEvaluationRunRepository(pg.Pool)
	gate, err := valueobject.NewQualityGate(model.MetricF1Score, 0.7)
	require.NoError(t, err)

	older, err := model.NewEvaluationRun("model/fraud_model.json", 600,
		model.Metrics{Accuracy: 0.98, Precision: 0.6, Recall: 0.9, F1Score: 0.72, ROCAUC: 0.99},
		gate, time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	newer, err := model.NewEvaluationRun("model/fraud_model.json", 600,
		model.Metrics{Accuracy: 0.95, Precision: 0.4, Recall: 0.8, F1Score: 0.53, ROCAUC: 0.97},
		gate, time.Date(2024, 2, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))
	// Saving the same run twice is a no-op.
	require.NoError(t, repo.Save(ctx, newer))

	runs, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, newer.ID(), runs[0].ID())
	assert.False(t, runs[0].Passed())
	assert.Equal(t, newer.Metrics(), runs[0].Metrics())
	assert.Equal(t, "f1_score >= 0.7", runs[0].Gate().String())
	assert.True(t, runs[0].EvaluatedAt().Equal(newer.EvaluatedAt()))
	assert.Empty(t, runs[0].Events())

	assert.Equal(t, older.ID(), runs[1].ID())
	assert.True(t, runs[1].Passed())

	limited, err := repo.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
