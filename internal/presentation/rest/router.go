package rest

import (
	"log/slog"
	"net/http"
)

// NewRouter assembles the inference HTTP surface. metricsHandler and metrics
// may be nil, in which case /metrics is not served.
func NewRouter(handler *InferenceHandler, metricsHandler http.Handler, metrics *Metrics, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	var h http.Handler = mux
	if metrics != nil {
		h = MetricsMiddleware(metrics)(h)
	}
	return LoggingMiddleware(logger)(h)
}
