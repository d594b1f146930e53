package filestore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
)

var _ port.TransactionStore = (*TransactionCSV)(nil)

var transactionHeader = []string{"transaction_id", "timestamp", "amount", "location", "card_type", "merchant_id", "is_fraud"}

// TransactionCSV stores the raw transaction table as CSV.
type TransactionCSV struct {
	path string
}

// NewTransactionCSV creates a store backed by path.
func NewTransactionCSV(path string) *TransactionCSV {
	return &TransactionCSV{path: path}
}

// SaveTransactions writes txs, replacing any existing file.
func (s *TransactionCSV) SaveTransactions(ctx context.Context, txs []model.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := make([][]string, len(txs))
	for i, tx := range txs {
		rows[i] = []string{
			tx.ID.String(),
			tx.Timestamp.UTC().Format(time.RFC3339),
			tx.Amount.StringFixed(2),
			strconv.Itoa(tx.Location),
			tx.CardType.String(),
			tx.MerchantID,
			formatLabel(tx.FraudLabel()),
		}
	}
	return writeTable(s.path, transactionHeader, rows)
}

// LoadTransactions reads and validates every row.
func (s *TransactionCSV) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t, err := readTable(s.path, transactionHeader)
	if err != nil {
		return nil, err
	}

	txs := make([]model.Transaction, len(t.rows))
	for i := range t.rows {
		id, err := uuid.Parse(t.value(i, "transaction_id"))
		if err != nil {
			return nil, t.rowError(i, "transaction_id", t.value(i, "transaction_id"))
		}
		ts, err := time.Parse(time.RFC3339, t.value(i, "timestamp"))
		if err != nil {
			return nil, t.rowError(i, "timestamp", t.value(i, "timestamp"))
		}
		amount, err := decimal.NewFromString(t.value(i, "amount"))
		if err != nil {
			return nil, t.rowError(i, "amount", t.value(i, "amount"))
		}
		location, err := strconv.Atoi(t.value(i, "location"))
		if err != nil {
			return nil, t.rowError(i, "location", t.value(i, "location"))
		}
		cardType, err := valueobject.CardTypeFromString(t.value(i, "card_type"))
		if err != nil {
			return nil, t.rowError(i, "card_type", t.value(i, "card_type"))
		}
		label, err := t.label(i, "is_fraud")
		if err != nil {
			return nil, err
		}

		tx := model.Transaction{
			ID:         id,
			Timestamp:  ts,
			Amount:     amount,
			Location:   location,
			CardType:   cardType,
			MerchantID: t.value(i, "merchant_id"),
			IsFraud:    label == 1,
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.path, i+2, err)
		}
		txs[i] = tx
	}
	return txs, nil
}
