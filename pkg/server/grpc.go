package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"

	"github.com/dasmlab/myanlang/pkg/service"
)

// GRPCServer serves the LanguageService and the standard health service.
// Health reports SERVING once the classification model is loaded.
type GRPCServer struct {
	svc    *service.LanguageService
	logger *logrus.Logger
	port   int
	server *grpc.Server
	health *health.Server
}

// NewGRPCServer creates a gRPC server and registers all services on it.
func NewGRPCServer(svc *service.LanguageService, logger *logrus.Logger, port int) *GRPCServer {
	if logger == nil {
		logger = logrus.New()
	}

	s := grpc.NewServer(
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             15 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			MaxConnectionIdle:     5 * time.Minute,
			MaxConnectionAge:      30 * time.Minute,
			MaxConnectionAgeGrace: 5 * time.Second,
			Time:                  30 * time.Second,
			Timeout:               10 * time.Second,
		}),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(s, healthServer)
	service.RegisterLanguageServiceServer(s, service.NewGRPCServer(svc, logger))
	reflection.Register(s)

	g := &GRPCServer{
		svc:    svc,
		logger: logger,
		port:   port,
		server: s,
		health: healthServer,
	}
	g.UpdateHealth()
	return g
}

// UpdateHealth publishes the current model readiness to the health service.
func (g *GRPCServer) UpdateHealth() {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if g.svc.Ready() {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	g.health.SetServingStatus("", status)
	g.health.SetServingStatus(service.LanguageServiceName, status)
}

// WatchHealth refreshes the health status every interval until ctx is done.
func (g *GRPCServer) WatchHealth(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			g.UpdateHealth()
		case <-ctx.Done():
			return
		}
	}
}

// Serve listens on the configured port and blocks until the server stops.
func (g *GRPCServer) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", g.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", g.port, err)
	}
	return g.ServeListener(lis)
}

// ServeListener serves on an existing listener.
func (g *GRPCServer) ServeListener(lis net.Listener) error {
	g.logger.WithFields(logrus.Fields{
		"addr": lis.Addr().String(),
	}).Info("gRPC server listening")

	if err := g.server.Serve(lis); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Shutdown marks the server NOT_SERVING and stops it gracefully, forcing a
// stop if ctx expires first.
func (g *GRPCServer) Shutdown(ctx context.Context) {
	g.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		g.server.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		g.logger.Info("gRPC server stopped gracefully")
	case <-ctx.Done():
		g.logger.Warn("Graceful shutdown timeout, forcing stop...")
		g.server.Stop()
	}
}
