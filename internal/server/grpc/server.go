// Package grpc exposes the settings, sync and source operations over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/graviox/roundcube-carddav/internal/logging"
	"github.com/graviox/roundcube-carddav/internal/rpc"
	"github.com/graviox/roundcube-carddav/internal/server/models"
	"github.com/graviox/roundcube-carddav/internal/server/services"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Registry is the read side of the server registry used by the handlers.
type Registry interface {
	List(ctx context.Context, ownerID string) ([]models.ServerConfig, error)
	Available(ctx context.Context, ownerID string) (bool, error)
}

// Settings runs the user-triggered operations.
type Settings interface {
	RegisterServer(ctx context.Context, ownerID string, in services.ServerInput) (*services.RegisterResult, error)
	DeleteServer(ctx context.Context, ownerID, serverID string) ([]models.ServerConfig, error)
	Sync(ctx context.Context, ownerID, serverID string) (*services.SyncReport, error)
}

// Sources answers the host's directory-listing questions.
type Sources interface {
	ListSources(ctx context.Context, ownerID string) ([]models.DirectorySource, error)
	ResolveSource(ctx context.Context, ownerID, sourceID string) (*models.ServerConfig, error)
	EnsureRegistered(ctx context.Context, ownerID string, current []string) ([]string, error)
}

type GRPCServer struct {
	address   string
	registry  Registry
	settings  Settings
	sources   Sources
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, registry Registry, settings Settings, sources Sources, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		registry:  registry,
		settings:  settings,
		sources:   sources,
		jwtSecret: []byte(secretKey),
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {
	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	rpc.RegisterDirectorySyncServer(srv, s)

	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		hs.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
