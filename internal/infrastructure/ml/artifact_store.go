package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/infrastructure/filestore"
)

var _ port.ModelStore = (*ArtifactStore)(nil)

const (
	artifactFormatVersion = 1
	artifactModelType     = "logistic_regression"
)

// artifact is the on-disk JSON form of a model.LogisticModel.
type artifact struct {
	FormatVersion int       `json:"format_version"`
	ModelType     string    `json:"model_type"`
	ModelID       uuid.UUID `json:"model_id"`
	Features      []string  `json:"features"`
	Coefficients  []float64 `json:"coefficients"`
	Intercept     float64   `json:"intercept"`
	Scaler        scaler    `json:"scaler"`
	Threshold     float64   `json:"threshold"`
	TrainingRows  int       `json:"training_rows"`
	TrainedAt     time.Time `json:"trained_at"`
}

type scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ArtifactStore saves and loads the model artifact as a JSON file.
type ArtifactStore struct {
	path string
}

// NewArtifactStore creates a store for the artifact at path.
func NewArtifactStore(path string) *ArtifactStore {
	return &ArtifactStore{path: path}
}

// Location returns the artifact path.
func (s *ArtifactStore) Location() string {
	return s.path
}

// SaveModel writes m, replacing any previous artifact.
func (s *ArtifactStore) SaveModel(ctx context.Context, m *model.LogisticModel) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p := m.Params()
	a := artifact{
		FormatVersion: artifactFormatVersion,
		ModelType:     artifactModelType,
		ModelID:       p.ID,
		Features:      p.Features,
		Coefficients:  p.Coefficients,
		Intercept:     p.Intercept,
		Scaler:        scaler{Mean: p.Mean, Scale: p.Scale},
		Threshold:     p.Threshold,
		TrainingRows:  p.TrainingRows,
		TrainedAt:     p.TrainedAt,
	}
	return filestore.WriteAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	})
}

// LoadModel reads and validates the artifact.
func (s *ArtifactStore) LoadModel(ctx context.Context) (*model.LogisticModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer f.Close()

	var a artifact
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", s.path, err)
	}
	if a.FormatVersion != artifactFormatVersion {
		return nil, fmt.Errorf("unsupported model artifact version %d", a.FormatVersion)
	}
	if a.ModelType != artifactModelType {
		return nil, fmt.Errorf("unsupported model type %q", a.ModelType)
	}

	m, err := model.NewLogisticModel(model.LogisticParams{
		ID:           a.ModelID,
		Features:     a.Features,
		Coefficients: a.Coefficients,
		Intercept:    a.Intercept,
		Mean:         a.Scaler.Mean,
		Scale:        a.Scaler.Scale,
		Threshold:    a.Threshold,
		TrainingRows: a.TrainingRows,
		TrainedAt:    a.TrainedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", s.path, err)
	}
	return m, nil
}
