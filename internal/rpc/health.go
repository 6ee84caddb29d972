// Package rpc serves the gRPC health protocol next to the HTTP API.
package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported for the analyzer.
const ServiceName = "biaslens.Analyzer"

// Pinger is a dependency whose reachability drives the serving status.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server is a gRPC server exposing grpc.health.v1.Health.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	deps     []Pinger
	interval time.Duration
	logger   *slog.Logger
}

// NewServer creates a health server. When deps are given, the analyzer
// service reports NOT_SERVING while any of them fails its ping.
func NewServer(logger *slog.Logger, interval time.Duration, deps ...Pinger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}

	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	return &Server{grpc: gs, health: hs, deps: deps, interval: interval, logger: logger}
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	go s.watch(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("gRPC server listening", "addr", lis.Addr().String())
		errCh <- s.grpc.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpc.GracefulStop()
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	}
}

// Check probes every dependency once and updates the serving status.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, dep := range s.deps {
		if err := dep.Ping(ctx); err != nil {
			s.logger.Warn("dependency check failed", "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			break
		}
	}
	s.health.SetServingStatus(ServiceName, status)
	return status
}

func (s *Server) watch(ctx context.Context) {
	if len(s.deps) == 0 {
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			s.Check(checkCtx)
			cancel()
		}
	}
}
