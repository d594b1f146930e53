package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bibbank/fraudml/internal/domain/valueobject"
	"github.com/bibbank/fraudml/pkg/tlsutil"
)

// ServiceName is the health service name reported for the inference model.
const ServiceName = "fraudml.inference"

// ModelStateSource reports the inference model state.
type ModelStateSource interface {
	State() valueobject.ModelState
}

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Server exposes the standard gRPC health service for the inference model.
type Server struct {
	address      string
	grpcServer   *grpc.Server
	healthServer *health.Server
	models       ModelStateSource
	logger       *slog.Logger
}

// NewServer creates a new gRPC health server.
func NewServer(models ModelStateSource, cfg ServerConfig, logger *slog.Logger) *Server {
	var serverOpts []grpc.ServerOption

	// Optional TLS: both cert and key must be set.
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerCredentials(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			logger.Error("failed to load TLS credentials, starting without TLS", "error", err)
		} else {
			serverOpts = append(serverOpts, grpc.Creds(creds))
			logger.Info("gRPC TLS enabled", "cert", cfg.TLSCertFile, "key", cfg.TLSKeyFile)
		}
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	s := &Server{
		address:      cfg.Address,
		grpcServer:   grpcServer,
		healthServer: healthServer,
		models:       models,
		logger:       logger,
	}
	s.SyncHealth()
	return s
}

// SyncHealth mirrors the model state onto the health service. The overall
// server status and the named service both follow it.
func (s *Server) SyncHealth() {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if s.models.State().IsReady() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.healthServer.SetServingStatus("", status)
	s.healthServer.SetServingStatus(ServiceName, status)
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting",
		slog.String("address", listener.Addr().String()),
	)
	return s.grpcServer.Serve(listener)
}

// Stop gracefully stops the gRPC server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.healthServer.Shutdown()
	s.grpcServer.GracefulStop()
}
