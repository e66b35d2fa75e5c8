// Package uploadpb binds the upload protocol to gRPC using only protobuf
// well-known types, so no generated message code is needed.
package uploadpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "contentrepo.v1.UploadService"

const (
	UploadService_InitializeUpload_FullMethodName = "/" + ServiceName + "/InitializeUpload"
	UploadService_UploadSegment_FullMethodName    = "/" + ServiceName + "/UploadSegment"
	UploadService_ImportUpload_FullMethodName     = "/" + ServiceName + "/ImportUpload"
	UploadService_DeleteUpload_FullMethodName     = "/" + ServiceName + "/DeleteUpload"
)

// Metadata keys carried by UploadSegment next to the raw bytes.
const (
	UploadIDKey = "x-upload-id"
	OffsetKey   = "x-upload-offset"
)

// Struct field names shared by client and server.
const (
	FieldUploadID       = "upload_id"
	FieldLocation       = "location"
	FieldRepoID         = "repo_id"
	FieldUnitTypeID     = "unit_type_id"
	FieldUnitKey        = "unit_key"
	FieldUnitMetadata   = "unit_metadata"
	FieldOverrideConfig = "override_config"
	FieldSpawnedTasks   = "spawned_tasks"
	FieldResult         = "result"
)

type UploadServiceClient interface {
	InitializeUpload(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	UploadSegment(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ImportUpload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteUpload(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type uploadServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewUploadServiceClient(cc grpc.ClientConnInterface) UploadServiceClient {
	return &uploadServiceClient{cc: cc}
}

func (c *uploadServiceClient) InitializeUpload(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UploadService_InitializeUpload_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *uploadServiceClient) UploadSegment(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, UploadService_UploadSegment_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *uploadServiceClient) ImportUpload(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, UploadService_ImportUpload_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *uploadServiceClient) DeleteUpload(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, UploadService_DeleteUpload_FullMethodName, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

type UploadServiceServer interface {
	InitializeUpload(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	UploadSegment(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	ImportUpload(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteUpload(context.Context, *wrapperspb.StringValue) (*emptypb.Empty, error)
}

func RegisterUploadServiceServer(s grpc.ServiceRegistrar, srv UploadServiceServer) {
	s.RegisterService(&UploadService_ServiceDesc, srv)
}

func _UploadService_InitializeUpload_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UploadServiceServer).InitializeUpload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UploadService_InitializeUpload_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UploadServiceServer).InitializeUpload(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _UploadService_UploadSegment_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UploadServiceServer).UploadSegment(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UploadService_UploadSegment_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UploadServiceServer).UploadSegment(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _UploadService_ImportUpload_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UploadServiceServer).ImportUpload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UploadService_ImportUpload_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UploadServiceServer).ImportUpload(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func _UploadService_DeleteUpload_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(UploadServiceServer).DeleteUpload(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: UploadService_DeleteUpload_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(UploadServiceServer).DeleteUpload(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

var UploadService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*UploadServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "InitializeUpload", Handler: _UploadService_InitializeUpload_Handler},
		{MethodName: "UploadSegment", Handler: _UploadService_UploadSegment_Handler},
		{MethodName: "ImportUpload", Handler: _UploadService_ImportUpload_Handler},
		{MethodName: "DeleteUpload", Handler: _UploadService_DeleteUpload_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "contentrepo/v1/upload.proto",
}
