package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bibbank/fraudml/internal/application/usecase"
	"github.com/bibbank/fraudml/internal/infrastructure/config"
	"github.com/bibbank/fraudml/internal/infrastructure/ml"
	grpcpresentation "github.com/bibbank/fraudml/internal/presentation/grpc"
	"github.com/bibbank/fraudml/internal/presentation/rest"
	"github.com/bibbank/fraudml/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	// Load configuration.
	cfg, err := config.LoadFile(os.Getenv("FRAUDML_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
	if envErr != nil {
		logger.Debug("no .env file loaded", "error", envErr)
	}

	logger.Info("starting fraudml inference service",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_path", cfg.ModelPath,
	)

	// Metrics.
	metrics, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: "fraudml-inference"})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := metrics.Provider.Shutdown(context.Background()); err != nil {
			logger.Error("metrics shutdown error", "error", err)
		}
	}()
	// Tracing.
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: "fraudml-inference",
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    true,
		})
		if err != nil {
			logger.Error("failed to initialize tracer", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				logger.Error("tracer shutdown error", "error", err)
			}
		}()
	}

	httpMetrics, err := rest.NewMetrics(metrics.Meter())
	if err != nil {
		logger.Error("failed to create HTTP metrics", "error", err)
		os.Exit(1)
	}

	// Load the model once. A failed load keeps the service up so /health can
	// report it.
	predict := usecase.NewPredictFraud(ml.NewArtifactStore(cfg.ModelPath), logger)
	if err := predict.Load(ctx); err != nil {
		logger.Error("serving without a model", "error", err)
	}

	// HTTP server.
	handler := rest.NewInferenceHandler(predict, httpMetrics, logger)
	httpServer := newHTTPServer(cfg.HTTPAddress(), rest.NewRouter(handler, metrics.Handler, httpMetrics, logger))

	// Start servers.
	errCh := make(chan error, 2)

	var grpcServer *grpcpresentation.Server
	if addr := cfg.GRPCAddress(); addr != "" {
		grpcServer = grpcpresentation.NewServer(predict, grpcpresentation.ServerConfig{
			Address:     addr,
			TLSCertFile: cfg.GRPCTLSCertFile,
			TLSKeyFile:  cfg.GRPCTLSKeyFile,
			Reflection:  cfg.GRPCReflection,
		}, logger)

		go func() {
			if err := grpcServer.Start(); err != nil {
				errCh <- fmt.Errorf("gRPC server error: %w", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("fraudml inference service started",
		"http_address", cfg.HTTPAddress(),
		"grpc_address", cfg.GRPCAddress(),
		"model_state", predict.State().String(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down fraudml inference service")

	if grpcServer != nil {
		grpcServer.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("fraudml inference service stopped")
}

// newHTTPServer bounds only header reads and idle keep-alives. Requests run
// to completion once their headers have arrived.
func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
