package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/fraudml/internal/application/dto"
	"github.com/bibbank/fraudml/internal/application/usecase"
)

var tracer = otel.Tracer("github.com/bibbank/fraudml/internal/presentation/rest")

// InferenceHandler serves the /predict and /health endpoints.
type InferenceHandler struct {
	predict *usecase.PredictFraud
	metrics *Metrics
	logger  *slog.Logger
}

// NewInferenceHandler creates a new inference handler. metrics may be nil.
func NewInferenceHandler(predict *usecase.PredictFraud, metrics *Metrics, logger *slog.Logger) *InferenceHandler {
	return &InferenceHandler{
		predict: predict,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterRoutes registers the inference endpoints on the provided ServeMux.
func (h *InferenceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", h.Predict)
	mux.HandleFunc("GET /health", h.Health)
}

// Predict scores a JSON array of feature records.
func (h *InferenceHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if !h.predict.State().IsReady() {
		writeError(w, http.StatusInternalServerError, "Model not loaded")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}
	var records any
	if err := json.Unmarshal(body, &records); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return
	}

	ctx, span := tracer.Start(r.Context(), "PredictFraud")
	defer span.End()

	resp, err := h.predict.Execute(ctx, dto.PredictRequest{Records: records})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "prediction failed")
		h.handleError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("fraudml.records", len(resp)))

	h.metrics.recordPredictions(r.Context(), resp)
	writeJSON(w, http.StatusOK, resp)
}

// Health reports whether the model is loaded.
func (h *InferenceHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if h.predict.State().IsReady() {
		writeJSON(w, http.StatusOK, dto.HealthResponse{Status: "ok", ModelLoaded: true})
		return
	}
	writeJSON(w, http.StatusInternalServerError, dto.HealthResponse{Status: "error", ModelLoaded: false})
}

func (h *InferenceHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *usecase.MissingFeatureError
	var predErr *usecase.PredictionError

	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, missing.Error())
	case errors.Is(err, usecase.ErrModelNotLoaded):
		writeError(w, http.StatusInternalServerError, "Model not loaded")
	case errors.As(err, &predErr):
		h.logger.WarnContext(r.Context(), "prediction failed", "error", predErr.Err)
		writeError(w, http.StatusInternalServerError, predErr.Error())
	default:
		h.logger.ErrorContext(r.Context(), "unexpected prediction error", "error", err)
		writeError(w, http.StatusInternalServerError, (&usecase.PredictionError{Err: err}).Error())
	}
}

// writeJSON marshals the value as JSON and writes it to the response. The
// value is encoded before the status line is sent, so an unencodable value
// becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(dto.ErrorResponse{Error: fmt.Sprintf("failed to encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, msg string) {
	writeJSON(w, statusCode, dto.ErrorResponse{Error: msg})
}
