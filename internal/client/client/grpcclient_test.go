package client

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/graviox/roundcube-carddav/internal/common"
	"github.com/graviox/roundcube-carddav/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

/*************
 * Fake API for unit tests
 *************/

type fakeAPI struct {
	directorySyncAPI

	lastRegister *rpc.RegisterServerRequest
	lastSync     *rpc.SyncRequest
	lastDelete   *rpc.DeleteServerRequest

	registerResp *rpc.RegisterServerResponse
	syncResp     *rpc.SyncResponse
	deleteResp   *rpc.DeleteServerResponse
	servers      []rpc.ServerInfo
	err          error
}

func (f *fakeAPI) RegisterServer(_ context.Context, in *rpc.RegisterServerRequest, _ ...grpc.CallOption) (*rpc.RegisterServerResponse, error) {
	f.lastRegister = in
	return f.registerResp, f.err
}

func (f *fakeAPI) Sync(_ context.Context, in *rpc.SyncRequest, _ ...grpc.CallOption) (*rpc.SyncResponse, error) {
	f.lastSync = in
	return f.syncResp, f.err
}

func (f *fakeAPI) DeleteServer(_ context.Context, in *rpc.DeleteServerRequest, _ ...grpc.CallOption) (*rpc.DeleteServerResponse, error) {
	f.lastDelete = in
	return f.deleteResp, f.err
}

func (f *fakeAPI) ListServers(context.Context, *rpc.ListServersRequest, ...grpc.CallOption) (*rpc.ListServersResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &rpc.ListServersResponse{Servers: f.servers}, nil
}

func TestGRPCClient_PassesRequests(t *testing.T) {
	api := &fakeAPI{
		registerResp: &rpc.RegisterServerResponse{Message: "saved"},
		syncResp:     &rpc.SyncResponse{AllSucceeded: true},
		deleteResp:   &rpc.DeleteServerResponse{},
		servers:      []rpc.ServerInfo{{ID: "s-1"}},
	}
	c := &GRPCClient{client: api}
	ctx := context.Background()

	resp, err := c.RegisterServer(ctx, "Work", "https://dav.example.com", "u", "p")
	require.NoError(t, err)
	assert.Equal(t, "saved", resp.Message)
	assert.Equal(t, &rpc.RegisterServerRequest{Label: "Work", URL: "https://dav.example.com", Username: "u", Password: "p"}, api.lastRegister)

	_, err = c.Sync(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "", api.lastSync.ServerID)

	_, err = c.DeleteServer(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", api.lastDelete.ServerID)

	servers, err := c.ListServers(ctx)
	require.NoError(t, err)
	assert.Len(t, servers, 1)
}

func TestGRPCClient_MapError(t *testing.T) {
	c := &GRPCClient{}

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"unauthenticated", status.Error(codes.Unauthenticated, "token expired"), ErrUnauthorized},
		{"permission", status.Error(codes.PermissionDenied, "no"), ErrUnauthorized},
		{"unavailable", status.Error(codes.Unavailable, "down"), ErrUnavailable},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), ErrUnavailable},
		{"not found", status.Error(codes.NotFound, "gone"), ErrNotFound},
		{"invalid", status.Error(codes.InvalidArgument, "bad url"), ErrRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.mapError(tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), status.Convert(tt.in).Message())
		})
	}

	assert.NoError(t, c.mapError(nil))

	internal := c.mapError(status.Error(codes.Internal, "boom"))
	assert.Contains(t, internal.Error(), "rpc error")

	plain := errors.New("plain")
	assert.ErrorIs(t, c.mapError(plain), plain)
}

func TestGRPCClient_ErrorsAreMapped(t *testing.T) {
	c := &GRPCClient{client: &fakeAPI{err: status.Error(codes.NotFound, "The CardDAV server could not be deleted.")}}

	_, err := c.DeleteServer(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.ListServers(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestWithMetadata_ReplacesExisting(t *testing.T) {
	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "old", "x-other", "keep")
	ctx = withMetadata(ctx, "new", "de")

	md, ok := metadata.FromOutgoingContext(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"new"}, md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"de"}, md.Get(common.AcceptLanguageHeaderName))
	assert.Equal(t, []string{"keep"}, md.Get("x-other"))
}

/*************
 * End-to-end over bufconn
 *************/

type recordingServer struct {
	rpc.DirectorySyncServer
	md metadata.MD
}

func (r *recordingServer) Available(ctx context.Context, _ *rpc.AvailableRequest) (*rpc.AvailableResponse, error) {
	r.md, _ = metadata.FromIncomingContext(ctx)
	return &rpc.AvailableResponse{Available: true}, nil
}

func (r *recordingServer) ListSources(context.Context, *rpc.ListSourcesRequest) (*rpc.ListSourcesResponse, error) {
	return &rpc.ListSourcesResponse{Sources: []rpc.Source{{SourceID: "carddav_addressbook1", DisplayName: "Work", ReadOnly: true}}}, nil
}

func TestGRPCClient_OverBufconn(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	rec := &recordingServer{}
	rpc.RegisterDirectorySyncServer(srv, rec)
	hs := health.NewServer()
	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := NewGRPCClient("passthrough:///bufnet", "tok", "de",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ok, err := c.Available(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"tok"}, rec.md.Get(common.AccessTokenHeaderName))
	assert.Equal(t, []string{"de"}, rec.md.Get(common.AcceptLanguageHeaderName))

	sources, err := c.ListSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Work", sources[0].DisplayName)

	require.NoError(t, c.Ping(ctx))

	hs.SetServingStatus(rpc.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	assert.ErrorIs(t, c.Ping(ctx), ErrUnavailable)
}
