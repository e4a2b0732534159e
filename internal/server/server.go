package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/ultraschall/enginehub/internal/driverconf"
	"github.com/ultraschall/enginehub/internal/registry"
)

// Options configures a Server.
type Options struct {
	Registry *registry.Registry
	Logger   *slog.Logger

	// PresetDir holds the presets addressable by name over RPC.
	PresetDir string

	// WatchDriverConfig reloads the registry whenever the canonical driver
	// document changes on disk.
	WatchDriverConfig bool
	WatchDebounce     time.Duration
}

// Server serves the engine registry and the standard health service.
type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	registry *registry.Registry
	logger   *slog.Logger
	opts     Options
}

// New creates a new Server instance.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "grpc")

	s := &Server{
		grpc:     grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(logger))),
		health:   health.NewServer(),
		registry: opts.Registry,
		logger:   logger,
		opts:     opts,
	}

	RegisterEngineRegistryServer(s.grpc, NewEngineService(opts.Registry, opts.PresetDir))
	healthpb.RegisterHealthServer(s.grpc, s.health)

	return s
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.opts.WatchDriverConfig {
		if err := s.watch(ctx); err != nil {
			return err
		}
	}

	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	s.logger.Info("gRPC server listening", "address", lis.Addr().String())
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("server: failed to serve: %w", err)
	}

	s.logger.Info("gRPC server stopped")
	return nil
}

// ListenAndServe listens on the TCP address and serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, address string) error {
	var lc net.ListenConfig
	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("server: failed to listen on %s: %w", address, err)
	}

	return s.Serve(ctx, lis)
}

func (s *Server) watch(ctx context.Context) error {
	w, err := driverconf.NewWatcher(s.registry.DriverConfigPath(), s.opts.WatchDebounce, func(path string) {
		if err := s.registry.LoadDriverConfiguration(); err != nil {
			s.logger.Error("Failed to reload driver configuration", "path", path, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	go w.Run(ctx)
	return nil
}

func loggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		attrs := []any{
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration", time.Since(start),
		}
		if err != nil {
			logger.Warn("gRPC call failed", append(attrs, "error", err)...)
		} else {
			logger.Debug("gRPC call", attrs...)
		}

		return resp, err
	}
}
