package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bibbank/fraudml/internal/domain/model"
	"github.com/bibbank/fraudml/internal/domain/port"
)

// Compile-time interface check.
var _ port.InferenceClient = (*HTTPClient)(nil)

// HTTPClient implements port.InferenceClient against the /predict endpoint
// of a running inference service.
type HTTPClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTPClient creates a client for endpoint. A zero timeout means requests
// are bounded only by the caller's context.
func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the URL predictions are posted to.
func (c *HTTPClient) Endpoint() string {
	return c.endpoint
}

type featurePayload struct {
	Amount            float64 `json:"amount"`
	AmountPerLocation float64 `json:"amount_per_location"`
	Location          float64 `json:"location"`
	IsAmex            float64 `json:"is_amex"`
}

// predictionPayload uses pointers so absent keys can be told apart from zero.
type predictionPayload struct {
	Prediction  *int     `json:"prediction"`
	Probability *float64 `json:"probability"`
}

// Predict posts all vectors in a single request and returns one prediction
// per vector, in order.
func (c *HTTPClient) Predict(ctx context.Context, vectors []model.FeatureVector) ([]model.Prediction, error) {
	payload := make([]featurePayload, len(vectors))
	for i, v := range vectors {
		payload[i] = featurePayload{
			Amount:            v.Amount,
			AmountPerLocation: v.AmountPerLocation,
			Location:          v.Location,
			IsAmex:            v.IsAmex,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("inference service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result []predictionPayload
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result) != len(vectors) {
		return nil, fmt.Errorf("inference service returned %d predictions for %d records", len(result), len(vectors))
	}

	predictions := make([]model.Prediction, len(result))
	for i, p := range result {
		if p.Prediction == nil || p.Probability == nil {
			return nil, fmt.Errorf("prediction %d: missing prediction or probability", i)
		}
		predictions[i] = model.Prediction{Label: *p.Prediction, Probability: *p.Probability}
	}

	return predictions, nil
}
