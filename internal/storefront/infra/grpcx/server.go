// Package grpcx exposes the standard gRPC health service for the storefront
// so orchestrators can probe it next to the HTTP API.
package grpcx

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/jcmexdev/storefront/internal/pkg/interceptors"
)

// ServiceName is the health service entry that tracks the database.
const ServiceName = "storefront.v1.Storefront"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	*grpc.Server
	health *health.Server
	db     Pinger
}

func NewServer(db Pinger) *Server {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.UnaryServerInterceptor(),
			interceptors.LoggingServerInterceptor(),
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	reflection.Register(srv)

	s := &Server{Server: srv, health: hs, db: db}
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Probe pings the database once and records the result.
func (s *Server) Probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "database ping failed", slog.Any("error", err))
		s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
		return
	}
	s.setStatus(healthpb.HealthCheckResponse_SERVING)
}

// Watch probes every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	s.Probe(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Probe(ctx)
		}
	}
}

// Shutdown flips every service to NOT_SERVING before draining.
func (s *Server) Shutdown() {
	s.health.Shutdown()
	s.GracefulStop()
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
