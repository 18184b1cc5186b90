package api

import (
	"context"

	"github.com/solatis/costrules/internal/macro"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// The service uses well-known Struct messages, so its descriptor is declared
// here instead of being generated from a .proto file:
//
//	service RuleGenerator {
//	  rpc Generate(google.protobuf.Struct) returns (google.protobuf.Struct);
//	}
const (
	ServiceName    = "costrules.v1.RuleGenerator"
	GenerateMethod = "/costrules.v1.RuleGenerator/Generate"
)

// RuleGeneratorServer is the server API for the RuleGenerator service.
type RuleGeneratorServer interface {
	Generate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterRuleGeneratorServer registers srv with a gRPC server.
func RegisterRuleGeneratorServer(s grpc.ServiceRegistrar, srv RuleGeneratorServer) {
	s.RegisterService(&RuleGeneratorServiceDesc, srv)
}

// RuleGeneratorServiceDesc is the grpc.ServiceDesc for the RuleGenerator service.
var RuleGeneratorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RuleGeneratorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Generate",
			Handler:    generateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "costrules/v1/rule_generator.proto",
}

func generateHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(RuleGeneratorServer).Generate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GenerateMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(RuleGeneratorServer).Generate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// RuleGeneratorClient is the client API for the RuleGenerator service.
type RuleGeneratorClient struct {
	cc grpc.ClientConnInterface
}

// NewRuleGeneratorClient wraps a client connection.
func NewRuleGeneratorClient(cc grpc.ClientConnInterface) *RuleGeneratorClient {
	return &RuleGeneratorClient{cc: cc}
}

// Generate sends one envelope and returns the reply envelope.
func (c *RuleGeneratorClient) Generate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GenerateMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateRequest sends a macro request and decodes the reply.
func (c *RuleGeneratorClient) GenerateRequest(ctx context.Context, req macro.Request, opts ...grpc.CallOption) (macro.Response, error) {
	in, err := RequestToStruct(req)
	if err != nil {
		return macro.Response{}, err
	}
	out, err := c.Generate(ctx, in, opts...)
	if err != nil {
		return macro.Response{}, err
	}
	return ResponseFromStruct(out)
}
