// Package grpc is the host channel: a single unary gRPC method that carries a
// command name and a JSON-shaped payload as google.protobuf.Struct messages.
//
// Request:  {"command": "<name>", "payload": {...}}
// Response: {"ok": true, "result": <any>} or {"ok": false, "error": "<msg>"}
//
// Command failures travel in-band; gRPC status errors are reserved for
// transport, authentication and malformed requests.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName  = "jasmify.v1.Commands"
	InvokeMethod = "/" + ServiceName + "/Invoke"
)

// CommandsServer is the server API of the Commands service.
type CommandsServer interface {
	Invoke(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func invokeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommandsServer).Invoke(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: InvokeMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(CommandsServer).Invoke(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// CommandsServiceDesc describes the Commands service for grpc.Server.RegisterService.
var CommandsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommandsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Invoke",
			Handler:    invokeHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "jasmify/v1/commands.proto",
}

// RegisterCommandsServer registers srv on s.
func RegisterCommandsServer(s grpc.ServiceRegistrar, srv CommandsServer) {
	s.RegisterService(&CommandsServiceDesc, srv)
}
