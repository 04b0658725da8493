package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages on this service are google.protobuf.Struct values so that the Python
// capture loop can call it with the stock protobuf runtime and no generated stubs.
//
// Evaluate request:  {"landmarks": {"left_hip": {"x": .., "y": .., "visibility": ..}, ...} | null}
// Evaluate response: {"pose_detected": bool, "lines": [string], "findings": [{"joint", "kind", "message"}],
//                     "thresholds": {"knee_min": n, "knee_max": n}}

// #region service-desc
const (
	ServiceName        = "squatcoach.FeedbackService"
	EvaluateFullMethod = "/" + ServiceName + "/Evaluate"
)

// FeedbackServiceServer is the server API for the feedback service.
type FeedbackServiceServer interface {
	Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FeedbackServiceServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: EvaluateFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FeedbackServiceServer).Evaluate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// FeedbackServiceDesc describes the service for grpc.Server.RegisterService.
var FeedbackServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FeedbackServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Evaluate",
			Handler:    evaluateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "squatcoach/feedback",
}

// Register attaches srv to a gRPC server.
func Register(s grpc.ServiceRegistrar, srv FeedbackServiceServer) {
	s.RegisterService(&FeedbackServiceDesc, srv)
}

// #endregion service-desc
