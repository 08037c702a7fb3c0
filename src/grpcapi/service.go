package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "finnie.v1.Assistant"

// -----------------------------------------------------------------------------
// AssistantServer is the server API for the finnie.v1.Assistant service.
// Every message is a google.protobuf.Struct so the payloads mirror the HTTP
// JSON bodies field for field.
// -----------------------------------------------------------------------------

type AssistantServer interface {
	RunTurn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListTools(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CallTool(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Health(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAssistantServer attaches srv to a grpc.Server.
func RegisterAssistantServer(s grpc.ServiceRegistrar, srv AssistantServer) {
	s.RegisterService(&Assistant_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

// unary adapts one AssistantServer method to a grpc.MethodHandler.
func unary(name string, call func(AssistantServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AssistantServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AssistantServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Assistant_ServiceDesc is the grpc.ServiceDesc for finnie.v1.Assistant.
var Assistant_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AssistantServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RunTurn", Handler: unary("RunTurn", AssistantServer.RunTurn)},
		{MethodName: "ListTools", Handler: unary("ListTools", AssistantServer.ListTools)},
		{MethodName: "CallTool", Handler: unary("CallTool", AssistantServer.CallTool)},
		{MethodName: "Health", Handler: unary("Health", AssistantServer.Health)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "finnie/v1/assistant.proto",
}

// -----------------------------------------------------------------------------
// AssistantClient is the client API for the finnie.v1.Assistant service.
// -----------------------------------------------------------------------------

type AssistantClient struct {
	cc grpc.ClientConnInterface
}

func NewAssistantClient(cc grpc.ClientConnInterface) *AssistantClient {
	return &AssistantClient{cc: cc}
}

func (c *AssistantClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AssistantClient) RunTurn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "RunTurn", in, opts...)
}

func (c *AssistantClient) ListTools(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "ListTools", in, opts...)
}

func (c *AssistantClient) CallTool(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "CallTool", in, opts...)
}

func (c *AssistantClient) Health(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, "Health", in, opts...)
}
