package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
)

var _ port.MetricsWriter = (*MetricsJSON)(nil)

// MetricsJSON writes the evaluation report as an indented JSON object.
type MetricsJSON struct {
	path string
}

// NewMetricsJSON creates a writer for path.
func NewMetricsJSON(path string) *MetricsJSON {
	return &MetricsJSON{path: path}
}

// WriteMetrics replaces the report with metrics.
func (s *MetricsJSON) WriteMetrics(ctx context.Context, metrics model.Metrics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return WriteAtomic(s.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(metrics)
	})
}

// ReadMetrics loads a report written by WriteMetrics.
func (s *MetricsJSON) ReadMetrics() (model.Metrics, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return model.Metrics{}, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	var m model.Metrics
	if err := json.Unmarshal(b, &m); err != nil {
		return model.Metrics{}, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}
	return m, nil
}
