package rest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/fraudml/internal/application/dto"
)

// Metrics holds the inference service instruments.
type Metrics struct {
	requests    metric.Int64Counter
	predictions metric.Int64Counter
	duration    metric.Float64Histogram
}

// NewMetrics creates the inference instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requests, err := meter.Int64Counter("fraudml_http_requests",
		metric.WithDescription("HTTP requests served, by route and status code."))
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	predictions, err := meter.Int64Counter("fraudml_predictions",
		metric.WithDescription("Records scored, by predicted label."))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction counter: %w", err)
	}
	duration, err := meter.Float64Histogram("fraudml_http_request_duration",
		metric.WithDescription("HTTP request latency."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create latency histogram: %w", err)
	}
	return &Metrics{requests: requests, predictions: predictions, duration: duration}, nil
}

func (m *Metrics) recordRequest(ctx context.Context, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("code", strconv.Itoa(status)),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}

func (m *Metrics) recordPredictions(ctx context.Context, preds []dto.PredictionResponse) {
	if m == nil {
		return
	}
	var fraud int64
	for _, p := range preds {
		fraud += int64(p.Prediction)
	}
	legit := int64(len(preds)) - fraud
	if fraud > 0 {
		m.predictions.Add(ctx, fraud, metric.WithAttributes(attribute.String("label", "fraud")))
	}
	if legit > 0 {
		m.predictions.Add(ctx, legit, metric.WithAttributes(attribute.String("label", "legit")))
	}
}
