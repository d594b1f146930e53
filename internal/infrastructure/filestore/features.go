package filestore

import (
	"context"

	"github.com/google/uuid"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
)

var _ port.FeatureStore = (*FeatureCSV)(nil)

var featureHeader = append(append([]string{"transaction_id"}, model.FeatureNames...), "is_fraud")

// FeatureCSV stores the labelled feature table as CSV.
type FeatureCSV struct {
	path string
}

// NewFeatureCSV creates a store backed by path.
func NewFeatureCSV(path string) *FeatureCSV {
	return &FeatureCSV{path: path}
}

// SaveFeatures writes records, replacing any existing file.
func (s *FeatureCSV) SaveFeatures(ctx context.Context, records []model.FeatureRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = append(featureRow(r), formatLabel(r.IsFraud))
	}
	return writeTable(s.path, featureHeader, rows)
}

// LoadFeatures reads every labelled row.
func (s *FeatureCSV) LoadFeatures(ctx context.Context) ([]model.FeatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := readTable(s.path, featureHeader)
	if err != nil {
		return nil, err
	}

	records := make([]model.FeatureRecord, len(t.rows))
	for i := range t.rows {
		r, err := parseFeatureRow(t, i)
		if err != nil {
			return nil, err
		}
		if r.IsFraud, err = t.label(i, "is_fraud"); err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

func featureRow(r model.FeatureRecord) []string {
	row := []string{r.TransactionID.String()}
	for _, v := range r.Features.Values() {
		row = append(row, formatFloat(v))
	}
	return row
}

func parseFeatureRow(t *table, i int) (model.FeatureRecord, error) {
	id, err := uuid.Parse(t.value(i, "transaction_id"))
	if err != nil {
		return model.FeatureRecord{}, t.rowError(i, "transaction_id", t.value(i, "transaction_id"))
	}
	values := make([]float64, len(model.FeatureNames))
	for j, name := range model.FeatureNames {
		if values[j], err = t.float(i, name); err != nil {
			return model.FeatureRecord{}, err
		}
	}
	vector, err := model.FeatureVectorFromValues(values)
	if err != nil {
		return model.FeatureRecord{}, err
	}
	return model.FeatureRecord{TransactionID: id, Features: vector}, nil
}
