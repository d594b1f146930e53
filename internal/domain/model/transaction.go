package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/fraudml/internal/domain/valueobject"
)

// Transaction is one row of the raw synthetic dataset.
type Transaction struct {
	ID         uuid.UUID
	Timestamp  time.Time
	Amount     decimal.Decimal
	Location   int
	CardType   valueobject.CardType
	MerchantID string
	IsFraud    bool
}

// Validate checks the invariants every stored transaction satisfies.
func (t Transaction) Validate() error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("transaction ID is required")
	}
	if t.Amount.IsNegative() {
		return fmt.Errorf("transaction %s: amount must not be negative", t.ID)
	}
	if t.Location < 1 {
		return fmt.Errorf("transaction %s: location must be positive, got %d", t.ID, t.Location)
	}
	if t.CardType.IsZero() {
		return fmt.Errorf("transaction %s: card type is required", t.ID)
	}
	return nil
}

// FraudLabel returns the label as the 0/1 integer used by the model.
func (t Transaction) FraudLabel() int {
	if t.IsFraud {
		return 1
	}
	return 0
}
