package service

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
)

// Ranges of the synthetic distributions. Fraudulent rows draw from shifted,
// disjoint ranges so the classes are learnable.
const (
	legitAmountMin = 10.0
	legitAmountMax = 500.0
	fraudAmountMin = 1000.0
	fraudAmountMax = 5000.0

	legitLocationMin = 1
	legitLocationMax = 10
	fraudLocationMin = 11
	fraudLocationMax = 15
)

// SynthesizerConfig controls dataset generation.
type SynthesizerConfig struct {
	Start     time.Time
	Samples   int
	Merchants int
	FraudRate float64
	Seed      int64
}

// DefaultSynthesizerConfig returns the pipeline defaults.
func DefaultSynthesizerConfig() SynthesizerConfig {
	return SynthesizerConfig{
		Start:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Samples:   2000,
		Merchants: 50,
		FraudRate: 0.02,
		Seed:      42,
	}
}

// Synthesizer produces a reproducible table of labelled transactions.
type Synthesizer struct {
	cfg SynthesizerConfig
}

// NewSynthesizer validates cfg and creates a Synthesizer.
func NewSynthesizer(cfg SynthesizerConfig) (*Synthesizer, error) {
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("samples must be positive, got %d", cfg.Samples)
	}
	if cfg.FraudRate < 0 || cfg.FraudRate > 1 {
		return nil, fmt.Errorf("fraud rate must be within [0, 1], got %v", cfg.FraudRate)
	}
	if cfg.Merchants <= 0 {
		cfg.Merchants = DefaultSynthesizerConfig().Merchants
	}
	if cfg.Start.IsZero() {
		cfg.Start = DefaultSynthesizerConfig().Start
	}
	return &Synthesizer{cfg: cfg}, nil
}

// Generate draws cfg.Samples transactions. The same seed always yields the
// same table, transaction IDs included.
func (s *Synthesizer) Generate() ([]model.Transaction, error) {
	rng := rand.New(rand.NewSource(s.cfg.Seed)) //nolint:gosec // reproducible synthetic data

	txs := make([]model.Transaction, 0, s.cfg.Samples)
	for i := 0; i < s.cfg.Samples; i++ {
		isFraud := rng.Float64() < s.cfg.FraudRate

		amount := uniform(rng, legitAmountMin, legitAmountMax)
		location := legitLocationMin + rng.Intn(legitLocationMax-legitLocationMin+1)
		if isFraud {
			amount = uniform(rng, fraudAmountMin, fraudAmountMax)
			location = fraudLocationMin + rng.Intn(fraudLocationMax-fraudLocationMin+1)
		}

		cardType := valueobject.CardTypes[rng.Intn(len(valueobject.CardTypes))]
		merchant := fmt.Sprintf("M%04d", 1+rng.Intn(s.cfg.Merchants))
		ts := s.cfg.Start.Add(time.Duration(i)*time.Minute + time.Duration(rng.Intn(60))*time.Second)

		id, err := uuid.NewRandomFromReader(rng)
		if err != nil {
			return nil, fmt.Errorf("failed to draw transaction id: %w", err)
		}

		txs = append(txs, model.Transaction{
			ID:         id,
			Timestamp:  ts.UTC(),
			Amount:     decimal.NewFromFloat(amount).Round(2),
			Location:   location,
			CardType:   cardType,
			MerchantID: merchant,
			IsFraud:    isFraud,
		})
	}

	return txs, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
