package client

import (
	"context"
	"fmt"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// directorySyncAPI is the subset of *rpc.DirectorySyncClient used here.
type directorySyncAPI interface {
	RegisterServer(ctx context.Context, in *rpc.RegisterServerRequest, opts ...grpc.CallOption) (*rpc.RegisterServerResponse, error)
	DeleteServer(ctx context.Context, in *rpc.DeleteServerRequest, opts ...grpc.CallOption) (*rpc.DeleteServerResponse, error)
	ListServers(ctx context.Context, in *rpc.ListServersRequest, opts ...grpc.CallOption) (*rpc.ListServersResponse, error)
	Sync(ctx context.Context, in *rpc.SyncRequest, opts ...grpc.CallOption) (*rpc.SyncResponse, error)
	ListSources(ctx context.Context, in *rpc.ListSourcesRequest, opts ...grpc.CallOption) (*rpc.ListSourcesResponse, error)
	Available(ctx context.Context, in *rpc.AvailableRequest, opts ...grpc.CallOption) (*rpc.AvailableResponse, error)
}

type GRPCClient struct {
	conn        *grpc.ClientConn
	client      directorySyncAPI
	health      healthpb.HealthClient
	accessToken string
	language    string
}

func withMetadata(ctx context.Context, token, language string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	if language != "" {
		md.Set(common.AcceptLanguageHeaderName, language)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) metadataInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	return invoker(withMetadata(ctx, s.accessToken, s.language), method, req, reply, cc, opts...)
}

// NewGRPCClient connects lazily to endpoint. token may be empty for calls
// that need no identity (health).
func NewGRPCClient(endpoint, token, language string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{accessToken: token, language: language}

	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.metadataInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = rpc.NewDirectorySyncClient(conn)
	c.health = healthpb.NewHealthClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) RegisterServer(ctx context.Context, label, url, username, password string) (*rpc.RegisterServerResponse, error) {
	resp, err := s.client.RegisterServer(ctx, &rpc.RegisterServerRequest{
		Label:    label,
		URL:      url,
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) DeleteServer(ctx context.Context, serverID string) (*rpc.DeleteServerResponse, error) {
	resp, err := s.client.DeleteServer(ctx, &rpc.DeleteServerRequest{ServerID: serverID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ListServers(ctx context.Context) ([]rpc.ServerInfo, error) {
	resp, err := s.client.ListServers(ctx, &rpc.ListServersRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Servers, nil
}

// Sync synchronizes one server, or all of them when serverID is empty.
func (s *GRPCClient) Sync(ctx context.Context, serverID string) (*rpc.SyncResponse, error) {
	resp, err := s.client.Sync(ctx, &rpc.SyncRequest{ServerID: serverID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) ListSources(ctx context.Context) ([]rpc.Source, error) {
	resp, err := s.client.ListSources(ctx, &rpc.ListSourcesRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Sources, nil
}

func (s *GRPCClient) Available(ctx context.Context) (bool, error) {
	resp, err := s.client.Available(ctx, &rpc.AvailableRequest{})
	if err != nil {
		return false, s.mapError(err)
	}
	return resp.Available, nil
}

// Ping asks the standard health service whether DirectorySync is serving.
func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.health.Check(ctx, &healthpb.HealthCheckRequest{Service: rpc.ServiceName})
	if err != nil {
		return s.mapError(err)
	}
	if resp.Status != healthpb.HealthCheckResponse_SERVING {
		return ErrUnavailable
	}
	return nil
}

// mapError keeps the server's (localized) message and attaches a sentinel
// callers can match with errors.Is.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, st.Message())
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
