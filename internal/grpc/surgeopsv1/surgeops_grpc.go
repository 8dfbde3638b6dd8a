// Package surgeopsv1 declares the surgeops.v1.SurgeOps gRPC service. Payloads
// are protobuf well-known types so no generated message code is required:
// requests and responses are JSON-shaped structpb.Struct values.
package surgeopsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "surgeops.v1.SurgeOps"

const (
	SurgeOps_GetSnapshot_FullMethodName       = "/surgeops.v1.SurgeOps/GetSnapshot"
	SurgeOps_GetSurgeState_FullMethodName     = "/surgeops.v1.SurgeOps/GetSurgeState"
	SurgeOps_Simulate_FullMethodName          = "/surgeops.v1.SurgeOps/Simulate"
	SurgeOps_Reset_FullMethodName             = "/surgeops.v1.SurgeOps/Reset"
	SurgeOps_MoveContainers_FullMethodName    = "/surgeops.v1.SurgeOps/MoveContainers"
	SurgeOps_OpenActionPlan_FullMethodName    = "/surgeops.v1.SurgeOps/OpenActionPlan"
	SurgeOps_ResolveActionPlan_FullMethodName = "/surgeops.v1.SurgeOps/ResolveActionPlan"
	SurgeOps_ListTransitions_FullMethodName   = "/surgeops.v1.SurgeOps/ListTransitions"
	SurgeOps_WatchSnapshots_FullMethodName    = "/surgeops.v1.SurgeOps/WatchSnapshots"
)

// SurgeOpsClient is the client API for the SurgeOps service.
type SurgeOpsClient interface {
	GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetSurgeState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Simulate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Reset(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	MoveContainers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	OpenActionPlan(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ResolveActionPlan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListTransitions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchSnapshots(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (SurgeOps_WatchSnapshotsClient, error)
}

type surgeOpsClient struct {
	cc grpc.ClientConnInterface
}

// NewSurgeOpsClient wraps a client connection.
func NewSurgeOpsClient(cc grpc.ClientConnInterface) SurgeOpsClient {
	return &surgeOpsClient{cc}
}

func (c *surgeOpsClient) GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_GetSnapshot_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) GetSurgeState(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_GetSurgeState_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) Simulate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_Simulate_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) Reset(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_Reset_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) MoveContainers(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_MoveContainers_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) OpenActionPlan(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_OpenActionPlan_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) ResolveActionPlan(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_ResolveActionPlan_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) ListTransitions(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, SurgeOps_ListTransitions_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *surgeOpsClient) WatchSnapshots(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (SurgeOps_WatchSnapshotsClient, error) {
	stream, err := c.cc.NewStream(ctx, &SurgeOps_ServiceDesc.Streams[0], SurgeOps_WatchSnapshots_FullMethodName, opts...)
	if err != nil {
		return nil, err
	}
	x := &surgeOpsWatchSnapshotsClient{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// SurgeOps_WatchSnapshotsClient receives streamed snapshots.
type SurgeOps_WatchSnapshotsClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type surgeOpsWatchSnapshotsClient struct {
	grpc.ClientStream
}

func (x *surgeOpsWatchSnapshotsClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// SurgeOpsServer is the server API for the SurgeOps service.
type SurgeOpsServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetSurgeState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reset(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	MoveContainers(context.Context, *structpb.Struct) (*structpb.Struct, error)
	OpenActionPlan(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ResolveActionPlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTransitions(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchSnapshots(*emptypb.Empty, SurgeOps_WatchSnapshotsServer) error
}

// UnimplementedSurgeOpsServer can be embedded for forward compatibility.
type UnimplementedSurgeOpsServer struct{}

func (UnimplementedSurgeOpsServer) GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSnapshot not implemented")
}
func (UnimplementedSurgeOpsServer) GetSurgeState(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetSurgeState not implemented")
}
func (UnimplementedSurgeOpsServer) Simulate(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Simulate not implemented")
}
func (UnimplementedSurgeOpsServer) Reset(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Reset not implemented")
}
func (UnimplementedSurgeOpsServer) MoveContainers(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method MoveContainers not implemented")
}
func (UnimplementedSurgeOpsServer) OpenActionPlan(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method OpenActionPlan not implemented")
}
func (UnimplementedSurgeOpsServer) ResolveActionPlan(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ResolveActionPlan not implemented")
}
func (UnimplementedSurgeOpsServer) ListTransitions(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ListTransitions not implemented")
}
func (UnimplementedSurgeOpsServer) WatchSnapshots(*emptypb.Empty, SurgeOps_WatchSnapshotsServer) error {
	return status.Errorf(codes.Unimplemented, "method WatchSnapshots not implemented")
}

// RegisterSurgeOpsServer registers srv on s.
func RegisterSurgeOpsServer(s grpc.ServiceRegistrar, srv SurgeOpsServer) {
	s.RegisterService(&SurgeOps_ServiceDesc, srv)
}

// SurgeOps_WatchSnapshotsServer sends streamed snapshots.
type SurgeOps_WatchSnapshotsServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type surgeOpsWatchSnapshotsServer struct {
	grpc.ServerStream
}

func (x *surgeOpsWatchSnapshotsServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func _SurgeOps_GetSnapshot_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_GetSnapshot_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_GetSurgeState_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).GetSurgeState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_GetSurgeState_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).GetSurgeState(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_Simulate_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).Simulate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_Simulate_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).Simulate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_Reset_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).Reset(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_Reset_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).Reset(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_MoveContainers_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).MoveContainers(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_MoveContainers_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).MoveContainers(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_OpenActionPlan_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).OpenActionPlan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_OpenActionPlan_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).OpenActionPlan(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_ResolveActionPlan_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).ResolveActionPlan(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_ResolveActionPlan_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).ResolveActionPlan(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_ListTransitions_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SurgeOpsServer).ListTransitions(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SurgeOps_ListTransitions_FullMethodName}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SurgeOpsServer).ListTransitions(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _SurgeOps_WatchSnapshots_Handler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(SurgeOpsServer).WatchSnapshots(m, &surgeOpsWatchSnapshotsServer{stream})
}

// SurgeOps_ServiceDesc is the grpc.ServiceDesc for the SurgeOps service.
var SurgeOps_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SurgeOpsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: _SurgeOps_GetSnapshot_Handler},
		{MethodName: "GetSurgeState", Handler: _SurgeOps_GetSurgeState_Handler},
		{MethodName: "Simulate", Handler: _SurgeOps_Simulate_Handler},
		{MethodName: "Reset", Handler: _SurgeOps_Reset_Handler},
		{MethodName: "MoveContainers", Handler: _SurgeOps_MoveContainers_Handler},
		{MethodName: "OpenActionPlan", Handler: _SurgeOps_OpenActionPlan_Handler},
		{MethodName: "ResolveActionPlan", Handler: _SurgeOps_ResolveActionPlan_Handler},
		{MethodName: "ListTransitions", Handler: _SurgeOps_ListTransitions_Handler},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchSnapshots",
			Handler:       _SurgeOps_WatchSnapshots_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "surgeops/v1/surgeops.proto",
}
