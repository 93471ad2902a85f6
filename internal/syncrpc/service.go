package syncrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ServiceName = "lifesync.v1.SyncService"

const (
	PingMethod   = "/" + ServiceName + "/Ping"
	SelectMethod = "/" + ServiceName + "/Select"
	UpsertMethod = "/" + ServiceName + "/Upsert"
	DeleteMethod = "/" + ServiceName + "/Delete"
)

// SyncServiceClient is the client API of the sync service.
type SyncServiceClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	Select(ctx context.Context, in *SelectRequest, opts ...grpc.CallOption) (*SelectResponse, error)
	Upsert(ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption) (*UpsertResponse, error)
	Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error)
}

type syncServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncServiceClient(cc grpc.ClientConnInterface) SyncServiceClient {
	return &syncServiceClient{cc: cc}
}

func (c *syncServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

func (c *syncServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	out := new(PingResponse)
	if err := c.invoke(ctx, PingMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) Select(ctx context.Context, in *SelectRequest, opts ...grpc.CallOption) (*SelectResponse, error) {
	out := new(SelectResponse)
	if err := c.invoke(ctx, SelectMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) Upsert(ctx context.Context, in *UpsertRequest, opts ...grpc.CallOption) (*UpsertResponse, error) {
	out := new(UpsertResponse)
	if err := c.invoke(ctx, UpsertMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) Delete(ctx context.Context, in *DeleteRequest, opts ...grpc.CallOption) (*DeleteResponse, error) {
	out := new(DeleteResponse)
	if err := c.invoke(ctx, DeleteMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// SyncServiceServer is the server API of the sync service.
type SyncServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Select(context.Context, *SelectRequest) (*SelectResponse, error)
	Upsert(context.Context, *UpsertRequest) (*UpsertResponse, error)
	Delete(context.Context, *DeleteRequest) (*DeleteResponse, error)
}

// UnimplementedSyncServiceServer can be embedded to satisfy
// SyncServiceServer partially.
type UnimplementedSyncServiceServer struct{}

func (UnimplementedSyncServiceServer) Ping(context.Context, *PingRequest) (*PingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Ping not implemented")
}

func (UnimplementedSyncServiceServer) Select(context.Context, *SelectRequest) (*SelectResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Select not implemented")
}

func (UnimplementedSyncServiceServer) Upsert(context.Context, *UpsertRequest) (*UpsertResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Upsert not implemented")
}

func (UnimplementedSyncServiceServer) Delete(context.Context, *DeleteRequest) (*DeleteResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Delete not implemented")
}

func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&SyncService_ServiceDesc, srv)
}

func unaryHandler[Req any](method string, call func(SyncServiceServer, context.Context, *Req) (any, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SyncServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SyncServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// SyncService_ServiceDesc is the grpc.ServiceDesc for the sync service.
var SyncService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler: unaryHandler(PingMethod, func(s SyncServiceServer, ctx context.Context, in *PingRequest) (any, error) {
				return s.Ping(ctx, in)
			}),
		},
		{
			MethodName: "Select",
			Handler: unaryHandler(SelectMethod, func(s SyncServiceServer, ctx context.Context, in *SelectRequest) (any, error) {
				return s.Select(ctx, in)
			}),
		},
		{
			MethodName: "Upsert",
			Handler: unaryHandler(UpsertMethod, func(s SyncServiceServer, ctx context.Context, in *UpsertRequest) (any, error) {
				return s.Upsert(ctx, in)
			}),
		},
		{
			MethodName: "Delete",
			Handler: unaryHandler(DeleteMethod, func(s SyncServiceServer, ctx context.Context, in *DeleteRequest) (any, error) {
				return s.Delete(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lifesync/v1/sync.json",
}
