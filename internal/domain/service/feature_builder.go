package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/fraudml/internal/domain/model"
)

// FeatureBuilder derives model features from raw transactions.
type FeatureBuilder struct{}

// NewFeatureBuilder creates a new FeatureBuilder.
func NewFeatureBuilder() *FeatureBuilder {
	return &FeatureBuilder{}
}

// Build maps each transaction to a FeatureRecord in input order.
// amount_per_location divides the amount by the mean amount of its location
// over the whole table, so the result depends on the full input set.
func (b *FeatureBuilder) Build(txs []model.Transaction) ([]model.FeatureRecord, error) {
	if len(txs) == 0 {
		return nil, fmt.Errorf("no transactions to build features from")
	}

	means, err := locationMeans(txs)
	if err != nil {
		return nil, err
	}

	records := make([]model.FeatureRecord, len(txs))
	for i, tx := range txs {
		isAmex := 0.0
		if tx.CardType.IsAmex() {
			isAmex = 1
		}
		records[i] = model.FeatureRecord{
			TransactionID: tx.ID,
			Features: model.FeatureVector{
				Amount:            tx.Amount.InexactFloat64(),
				AmountPerLocation: tx.Amount.Div(means[tx.Location]).InexactFloat64(),
				Location:          float64(tx.Location),
				IsAmex:            isAmex,
			},
			IsFraud: tx.FraudLabel(),
		}
	}
	return records, nil
}

func locationMeans(txs []model.Transaction) (map[int]decimal.Decimal, error) {
	sums := make(map[int]decimal.Decimal)
	counts := make(map[int]int64)
	for _, tx := range txs {
		sums[tx.Location] = sums[tx.Location].Add(tx.Amount)
		counts[tx.Location]++
	}

	means := make(map[int]decimal.Decimal, len(sums))
	for loc, sum := range sums {
		mean := sum.Div(decimal.NewFromInt(counts[loc]))
		if mean.IsZero() {
			return nil, fmt.Errorf("location %d has a mean amount of zero, amount_per_location is undefined", loc)
		}
		means[loc] = mean
	}
	return means, nil
}
