package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// DirectorySyncClient is the client stub of the DirectorySync service.
type DirectorySyncClient struct {
	cc grpc.ClientConnInterface
}

func NewDirectorySyncClient(cc grpc.ClientConnInterface) *DirectorySyncClient {
	return &DirectorySyncClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DirectorySyncClient) RegisterServer(ctx context.Context, in *RegisterServerRequest, opts ...grpc.CallOption) (*RegisterServerResponse, error) {
	return invoke[RegisterServerResponse](ctx, c.cc, RegisterServerMethod, in, opts)
}

func (c *DirectorySyncClient) DeleteServer(ctx context.Context, in *DeleteServerRequest, opts ...grpc.CallOption) (*DeleteServerResponse, error) {
	return invoke[DeleteServerResponse](ctx, c.cc, DeleteServerMethod, in, opts)
}

func (c *DirectorySyncClient) ListServers(ctx context.Context, in *ListServersRequest, opts ...grpc.CallOption) (*ListServersResponse, error) {
	return invoke[ListServersResponse](ctx, c.cc, ListServersMethod, in, opts)
}

func (c *DirectorySyncClient) Sync(ctx context.Context, in *SyncRequest, opts ...grpc.CallOption) (*SyncResponse, error) {
	return invoke[SyncResponse](ctx, c.cc, SyncMethod, in, opts)
}

func (c *DirectorySyncClient) ListSources(ctx context.Context, in *ListSourcesRequest, opts ...grpc.CallOption) (*ListSourcesResponse, error) {
	return invoke[ListSourcesResponse](ctx, c.cc, ListSourcesMethod, in, opts)
}

func (c *DirectorySyncClient) ResolveSource(ctx context.Context, in *ResolveSourceRequest, opts ...grpc.CallOption) (*ResolveSourceResponse, error) {
	return invoke[ResolveSourceResponse](ctx, c.cc, ResolveSourceMethod, in, opts)
}

func (c *DirectorySyncClient) Available(ctx context.Context, in *AvailableRequest, opts ...grpc.CallOption) (*AvailableResponse, error) {
	return invoke[AvailableResponse](ctx, c.cc, AvailableMethod, in, opts)
}

func (c *DirectorySyncClient) EnsureRegistered(ctx context.Context, in *EnsureRegisteredRequest, opts ...grpc.CallOption) (*EnsureRegisteredResponse, error) {
	return invoke[EnsureRegisteredResponse](ctx, c.cc, EnsureRegisteredMethod, in, opts)
}
