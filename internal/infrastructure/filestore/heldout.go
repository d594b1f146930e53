package filestore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
)

var _ port.HeldOutStore = (*HeldOutCSV)(nil)

var (
	heldOutFeatureHeader = append([]string{"transaction_id"}, model.FeatureNames...)
	heldOutLabelHeader   = []string{"transaction_id", "is_fraud"}
)

// HeldOutCSV stores the held-out partition as a feature file and a label
// file. Rows are joined on transaction_id.
type HeldOutCSV struct {
	featuresPath string
	labelsPath   string
}

// NewHeldOutCSV creates a store backed by the two paths.
func NewHeldOutCSV(featuresPath, labelsPath string) *HeldOutCSV {
	return &HeldOutCSV{featuresPath: featuresPath, labelsPath: labelsPath}
}

// SaveHeldOut writes both files, replacing existing ones.
func (s *HeldOutCSV) SaveHeldOut(ctx context.Context, records []model.FeatureRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	features := make([][]string, len(records))
	labels := make([][]string, len(records))
	for i, r := range records {
		features[i] = featureRow(r)
		labels[i] = []string{r.TransactionID.String(), formatLabel(r.IsFraud)}
	}
	if err := writeTable(s.featuresPath, heldOutFeatureHeader, features); err != nil {
		return err
	}
	return writeTable(s.labelsPath, heldOutLabelHeader, labels)
}

// LoadHeldOut reads both files and fails unless they hold the same
// transactions in the same order.
func (s *HeldOutCSV) LoadHeldOut(ctx context.Context) ([]model.FeatureRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ft, err := readTable(s.featuresPath, heldOutFeatureHeader)
	if err != nil {
		return nil, err
	}
	lt, err := readTable(s.labelsPath, heldOutLabelHeader)
	if err != nil {
		return nil, err
	}
	if len(ft.rows) != len(lt.rows) {
		return nil, fmt.Errorf("held-out files are misaligned: %s has %d rows, %s has %d",
			s.featuresPath, len(ft.rows), s.labelsPath, len(lt.rows))
	}
	if len(ft.rows) == 0 {
		return nil, fmt.Errorf("held-out partition %s has no rows", s.featuresPath)
	}

	records := make([]model.FeatureRecord, len(ft.rows))
	for i := range ft.rows {
		r, err := parseFeatureRow(ft, i)
		if err != nil {
			return nil, err
		}
		labelID, err := uuid.Parse(lt.value(i, "transaction_id"))
		if err != nil {
			return nil, lt.rowError(i, "transaction_id", lt.value(i, "transaction_id"))
		}
		if labelID != r.TransactionID {
			return nil, fmt.Errorf("held-out files are misaligned at line %d: feature id %s, label id %s",
				i+2, r.TransactionID, labelID)
		}
		if r.IsFraud, err = lt.label(i, "is_fraud"); err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}
