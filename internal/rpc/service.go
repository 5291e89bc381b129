package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "carddav.DirectorySync"

// Full method names, as seen by interceptors.
const (
	RegisterServerMethod   = "/" + ServiceName + "/RegisterServer"
	DeleteServerMethod     = "/" + ServiceName + "/DeleteServer"
	ListServersMethod      = "/" + ServiceName + "/ListServers"
	SyncMethod             = "/" + ServiceName + "/Sync"
	ListSourcesMethod      = "/" + ServiceName + "/ListSources"
	ResolveSourceMethod    = "/" + ServiceName + "/ResolveSource"
	AvailableMethod        = "/" + ServiceName + "/Available"
	EnsureRegisteredMethod = "/" + ServiceName + "/EnsureRegistered"
)

// DirectorySyncServer is implemented by the gRPC server.
type DirectorySyncServer interface {
	RegisterServer(context.Context, *RegisterServerRequest) (*RegisterServerResponse, error)
	DeleteServer(context.Context, *DeleteServerRequest) (*DeleteServerResponse, error)
	ListServers(context.Context, *ListServersRequest) (*ListServersResponse, error)
	Sync(context.Context, *SyncRequest) (*SyncResponse, error)
	ListSources(context.Context, *ListSourcesRequest) (*ListSourcesResponse, error)
	ResolveSource(context.Context, *ResolveSourceRequest) (*ResolveSourceResponse, error)
	Available(context.Context, *AvailableRequest) (*AvailableResponse, error)
	EnsureRegistered(context.Context, *EnsureRegisteredRequest) (*EnsureRegisteredResponse, error)
}

// RegisterDirectorySyncServer registers srv with s.
func RegisterDirectorySyncServer(s grpc.ServiceRegistrar, srv DirectorySyncServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds a MethodDesc handler that decodes Req and dispatches to call
// through the interceptor chain.
func unary[Req any, Resp any](method string, call func(DirectorySyncServer, context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(DirectorySyncServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(DirectorySyncServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DirectorySyncServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RegisterServer", Handler: unary(RegisterServerMethod, DirectorySyncServer.RegisterServer)},
		{MethodName: "DeleteServer", Handler: unary(DeleteServerMethod, DirectorySyncServer.DeleteServer)},
		{MethodName: "ListServers", Handler: unary(ListServersMethod, DirectorySyncServer.ListServers)},
		{MethodName: "Sync", Handler: unary(SyncMethod, DirectorySyncServer.Sync)},
		{MethodName: "ListSources", Handler: unary(ListSourcesMethod, DirectorySyncServer.ListSources)},
		{MethodName: "ResolveSource", Handler: unary(ResolveSourceMethod, DirectorySyncServer.ResolveSource)},
		{MethodName: "Available", Handler: unary(AvailableMethod, DirectorySyncServer.Available)},
		{MethodName: "EnsureRegistered", Handler: unary(EnsureRegisteredMethod, DirectorySyncServer.EnsureRegistered)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: protoFile,
}
