package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/valueobject"
	"github.com/bibbank/fraudml/internal/infrastructure/filestore"
	"github.com/bibbank/fraudml/pkg/testutil"
)

func sampleRecords() []model.FeatureRecord {
	return []model.FeatureRecord{
		{
			TransactionID: uuid.MustParse("6f1c2b7e-0c1a-4d5e-9f00-000000000001"),
			Features:      model.FeatureVector{Amount: 120.5, AmountPerLocation: 0.4821, Location: 3, IsAmex: 1},
			IsFraud:       0,
		},
		{
			TransactionID: uuid.MustParse("6f1c2b7e-0c1a-4d5e-9f00-000000000002"),
			Features:      model.FeatureVector{Amount: 4200, AmountPerLocation: 1.0000000001, Location: 12, IsAmex: 0},
			IsFraud:       1,
		},
	}
}

func TestTransactionCSV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "transactions.csv")
	store := filestore.NewTransactionCSV(path)

	txs := []model.Transaction{
		{
			ID:         testutil.TestTransactionID,
			Timestamp:  testutil.TestTime,
			Amount:     decimal.RequireFromString("42.10"),
			Location:   7,
			CardType:   valueobject.CardTypeAmex,
			MerchantID: "M0007",
			IsFraud:    true,
		},
	}
	require.NoError(t, store.SaveTransactions(ctx, txs))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "transaction_id,timestamp,amount,location,card_type,merchant_id,is_fraud", lines[0])
	assert.Equal(t, testutil.TestTransactionID.String()+",2024-01-15T09:30:00Z,42.10,7,AMEX,M0007,1", lines[1])

	loaded, err := store.LoadTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, txs[0].ID, loaded[0].ID)
	assert.True(t, txs[0].Timestamp.Equal(loaded[0].Timestamp))
	assert.True(t, txs[0].Amount.Equal(loaded[0].Amount))
	assert.Equal(t, valueobject.CardTypeAmex, loaded[0].CardType)
	assert.True(t, loaded[0].IsFraud)
}

func TestTransactionCSV_LoadErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := filestore.NewTransactionCSV(filepath.Join(dir, "absent.csv")).LoadTransactions(ctx)
		assert.Error(t, err)
	})

	t.Run("missing column", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "no_card.csv", "transaction_id,timestamp,amount,location,merchant_id,is_fraud\n")
		_, err := filestore.NewTransactionCSV(path).LoadTransactions(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "card_type")
	})

	t.Run("bad card type reports the line", func(t *testing.T) {
		path := testutil.WriteFile(t, dir, "bad_card.csv",
			"transaction_id,timestamp,amount,location,card_type,merchant_id,is_fraud\n"+
				uuid.NewString()+",2024-01-01T00:00:00Z,10.00,1,DINERS,M0001,0\n")
		_, err := filestore.NewTransactionCSV(path).LoadTransactions(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
		assert.Contains(t, err.Error(), "DINERS")
	})
}

func TestFeatureCSV_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := filestore.NewFeatureCSV(filepath.Join(t.TempDir(), "features.csv"))

	records := sampleRecords()
	require.NoError(t, store.SaveFeatures(ctx, records))

	loaded, err := store.LoadFeatures(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}

func TestFeatureCSV_ColumnOrderAndExtrasIgnored(t *testing.T) {
	id := uuid.New()
	path := testutil.WriteFile(t, t.TempDir(), "features.csv",
		"is_fraud,note,is_amex,location,amount_per_location,amount,transaction_id\n"+
			"1,x,0,11,2.5,1500,"+id.String()+"\n")

	loaded, err := filestore.NewFeatureCSV(path).LoadFeatures(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, model.FeatureRecord{
		TransactionID: id,
		Features:      model.FeatureVector{Amount: 1500, AmountPerLocation: 2.5, Location: 11},
		IsFraud:       1,
	}, loaded[0])
}

func TestFeatureCSV_MalformedValue(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "features.csv",
		"transaction_id,amount,amount_per_location,location,is_amex,is_fraud\n"+
			uuid.NewString()+",abc,1,1,0,0\n")

	_, err := filestore.NewFeatureCSV(path).LoadFeatures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount")
}

func TestHeldOutCSV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	featuresPath := filepath.Join(dir, "test_features.csv")
	labelsPath := filepath.Join(dir, "test_labels.csv")
	store := filestore.NewHeldOutCSV(featuresPath, labelsPath)

	records := sampleRecords()
	require.NoError(t, store.SaveHeldOut(ctx, records))

	header, err := os.ReadFile(featuresPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(header), "transaction_id,amount,amount_per_location,location,is_amex\n"))

	loaded, err := store.LoadHeldOut(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	t.Run("row count mismatch", func(t *testing.T) {
		testutil.WriteFile(t, dir, "test_labels.csv", "transaction_id,is_fraud\n"+records[0].TransactionID.String()+",0\n")
		_, err := store.LoadHeldOut(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "misaligned")
	})

	t.Run("id mismatch", func(t *testing.T) {
		testutil.WriteFile(t, dir, "test_labels.csv", "transaction_id,is_fraud\n"+
			records[1].TransactionID.String()+",1\n"+
			records[0].TransactionID.String()+",0\n")
		_, err := store.LoadHeldOut(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
	})
}

func TestMetricsJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics", "evaluation_metrics.json")
	writer := filestore.NewMetricsJSON(path)

	metrics := model.Metrics{Accuracy: 0.99, Precision: 0.75, Recall: 1, F1Score: 0.857, ROCAUC: 0.998}
	require.NoError(t, writer.WriteMetrics(context.Background(), metrics))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{
    "accuracy": 0.99,
    "precision": 0.75,
    "recall": 1,
    "f1_score": 0.857,
    "roc_auc": 0.998
}
`, string(raw))

	read, err := writer.ReadMetrics()
	require.NoError(t, err)
	assert.Equal(t, metrics, read)
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	err := filestore.NewFeatureCSV(filepath.Join(t.TempDir(), "f.csv")).SaveFeatures(ctx, sampleRecords())
	assert.Error(t, err)
}
