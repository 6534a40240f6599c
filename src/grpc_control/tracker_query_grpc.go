package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Service and method names of gputracker.TrackerQuery (see proto/tracker_query.proto).
const (
	TrackerQueryServiceName    = "gputracker.TrackerQuery"
	TrackerQueryListSeriesPath = "/gputracker.TrackerQuery/ListSeries"
	TrackerQueryGetLatestPath  = "/gputracker.TrackerQuery/GetLatest"
	TrackerQueryGetTrendPath   = "/gputracker.TrackerQuery/GetTrend"
)

// TrackerQueryServer is the server API for the TrackerQuery service.
type TrackerQueryServer interface {
	ListSeries(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetLatest(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetTrend(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterTrackerQueryServer(s grpc.ServiceRegistrar, srv TrackerQueryServer) {
	s.RegisterService(&TrackerQuery_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

func _TrackerQuery_ListSeries_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackerQueryServer).ListSeries(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TrackerQueryListSeriesPath}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TrackerQueryServer).ListSeries(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _TrackerQuery_GetLatest_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackerQueryServer).GetLatest(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TrackerQueryGetLatestPath}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TrackerQueryServer).GetLatest(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _TrackerQuery_GetTrend_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TrackerQueryServer).GetTrend(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: TrackerQueryGetTrendPath}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(TrackerQueryServer).GetTrend(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// TrackerQuery_ServiceDesc is the grpc.ServiceDesc for the TrackerQuery service.
var TrackerQuery_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TrackerQueryServiceName,
	HandlerType: (*TrackerQueryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListSeries", Handler: _TrackerQuery_ListSeries_Handler},
		{MethodName: "GetLatest", Handler: _TrackerQuery_GetLatest_Handler},
		{MethodName: "GetTrend", Handler: _TrackerQuery_GetTrend_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tracker_query.proto",
}

// -----------------------------------------------------------------------------

// TrackerQueryClient is the client API for the TrackerQuery service.
type TrackerQueryClient struct {
	cc grpc.ClientConnInterface
}

func NewTrackerQueryClient(cc grpc.ClientConnInterface) *TrackerQueryClient {
	return &TrackerQueryClient{cc: cc}
}

func (c *TrackerQueryClient) ListSeries(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TrackerQueryListSeriesPath, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackerQueryClient) GetLatest(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TrackerQueryGetLatestPath, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TrackerQueryClient) GetTrend(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TrackerQueryGetTrendPath, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
