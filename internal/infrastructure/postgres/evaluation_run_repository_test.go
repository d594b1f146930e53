package postgres

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluationRunRepository(t *testing.T) {
	repo := NewEvaluationRunRepository(nil)
	assert.NotNil(t, repo)
	assert.Nil(t, repo.pool)
}

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := fs.ReadDir(Migrations, MigrationsDir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_evaluation_runs.up.sql")
	assert.Contains(t, names, "000001_create_evaluation_runs.down.sql")
}
