package model

import (
	"fmt"

	"github.com/google/uuid"
)

// Canonical feature names, in model input order.
const (
	FeatureAmount            = "amount"
	FeatureAmountPerLocation = "amount_per_location"
	FeatureLocation          = "location"
	FeatureIsAmex            = "is_amex"
)

// FeatureNames is the ordered model input schema.
var FeatureNames = []string{FeatureAmount, FeatureAmountPerLocation, FeatureLocation, FeatureIsAmex}

// FeatureVector holds exactly the four model inputs.
type FeatureVector struct {
	Amount            float64
	AmountPerLocation float64
	Location          float64
	IsAmex            float64
}

// Values returns the vector in FeatureNames order.
func (v FeatureVector) Values() []float64 {
	return []float64{v.Amount, v.AmountPerLocation, v.Location, v.IsAmex}
}

// FeatureVectorFromValues is the inverse of Values.
func FeatureVectorFromValues(values []float64) (FeatureVector, error) {
	if len(values) != len(FeatureNames) {
		return FeatureVector{}, fmt.Errorf("expected %d feature values, got %d", len(FeatureNames), len(values))
	}
	return FeatureVector{
		Amount:            values[0],
		AmountPerLocation: values[1],
		Location:          values[2],
		IsAmex:            values[3],
	}, nil
}

// FeatureRecord is a labelled feature vector keyed by its source transaction.
type FeatureRecord struct {
	TransactionID uuid.UUID
	Features      FeatureVector
	IsFraud       int
}

// Vectors extracts the feature vectors of records, preserving order.
func Vectors(records []FeatureRecord) []FeatureVector {
	out := make([]FeatureVector, len(records))
	for i, r := range records {
		out[i] = r.Features
	}
	return out
}

// Labels extracts the fraud labels of records, preserving order.
func Labels(records []FeatureRecord) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.IsFraud
	}
	return out
}

// ValidateLabels checks every label is 0 or 1.
func ValidateLabels(labels []int) error {
	for i, l := range labels {
		if l != 0 && l != 1 {
			return fmt.Errorf("row %d: label must be 0 or 1, got %d", i, l)
		}
	}
	return nil
}
