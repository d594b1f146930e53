//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inferenceURL string

func TestMain(m *testing.M) {
	inferenceURL = os.Getenv("INFERENCE_BASE_URL")
	if inferenceURL == "" {
		inferenceURL = "http://localhost:5000"
	}

	// Wait for the inference service to load its model.
	for i := 0; i < 30; i++ {
		resp, err := http.Get(inferenceURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}

	os.Exit(m.Run())
}

func TestHealthCheck(t *testing.T) {
	resp, err := http.Get(inferenceURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, true, body["model_loaded"])
}

func TestPredictFlow(t *testing.T) {
	records := []map[string]any{
		{"amount": 85.40, "amount_per_location": 0.33, "location": 3, "is_amex": 0},
		{"amount": 3870.00, "amount_per_location": 1.29, "location": 14, "is_amex": 1},
	}
	resp := postJSON(t, "/predict", records)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preds []struct {
		Prediction  int     `json:"prediction"`
		Probability float64 `json:"probability"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&preds))
	require.Len(t, preds, 2)
	assert.Equal(t, 0, preds[0].Prediction)
	assert.Equal(t, 1, preds[1].Prediction)
	for _, p := range preds {
		assert.GreaterOrEqual(t, p.Probability, 0.0)
		assert.LessOrEqual(t, p.Probability, 1.0)
	}
}

func TestPredictMissingFeature(t *testing.T) {
	resp := postJSON(t, "/predict", []map[string]any{{"amount": 12.5, "location": 2, "is_amex": 0}})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t,
		"Missing expected feature: 'amount_per_location'. Required features: amount, amount_per_location, location, is_amex",
		body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	resp, err := http.Get(inferenceURL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "fraudml_http_requests")
}

func postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(inferenceURL+path, "application/json", bytes.NewBuffer(jsonBody))
	require.NoError(t, err)
	return resp
}
