package messaging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/fraudml/internal/domain/event"
	"github.com/bibbank/fraudml/internal/infrastructure/messaging"
)

func TestLogPublisher_Publish(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	publisher := messaging.NewLogPublisher(logger)

	evt := event.NewStagingValidated("http://localhost:5001/predict", 600, 0.97, 0.9, true, time.Now())
	require.NoError(t, publisher.Publish(context.Background(), evt))

	out := buf.String()
	assert.Contains(t, out, `"event_type":"fraudml.staging.validated"`)
	assert.Contains(t, out, evt.AggregateID().String())
	assert.Contains(t, out, `\"approved\":true`)
}
