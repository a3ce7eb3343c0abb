// Package grpcapi implements the Calculator gRPC service. Messages are
// protobuf well-known types, so clients need no generated code beyond
// what google.golang.org/protobuf ships.
package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/lemonberrylabs/arith/pkg/expr"
	"github.com/lemonberrylabs/arith/pkg/store"
	"github.com/lemonberrylabs/arith/pkg/types"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "arith.v1.Calculator"

// ErrorDomain is the ErrorInfo domain attached to evaluation failures.
const ErrorDomain = "arith.lemonberrylabs.com"

const (
	evaluateMethod        = "/" + ServiceName + "/Evaluate"
	listEvaluationsMethod = "/" + ServiceName + "/ListEvaluations"
)

// CalculatorServer is the server API for the Calculator service.
type CalculatorServer interface {
	// Evaluate evaluates the expression in the request.
	Evaluate(context.Context, *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error)
	// ListEvaluations returns up to limit recent evaluations, newest first.
	ListEvaluations(context.Context, *wrapperspb.Int32Value) (*structpb.ListValue, error)
}

var calculatorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CalculatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Evaluate", Handler: evaluateHandler},
		{MethodName: "ListEvaluations", Handler: listEvaluationsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "arith/v1/calculator.proto",
}

func evaluateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).Evaluate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: evaluateMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).Evaluate(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listEvaluationsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.Int32Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CalculatorServer).ListEvaluations(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listEvaluationsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CalculatorServer).ListEvaluations(ctx, req.(*wrapperspb.Int32Value))
	}
	return interceptor(ctx, in, info, handler)
}

// Server implements the Calculator gRPC service and the standard health
// service.
type Server struct {
	store  *store.Store
	logger zerolog.Logger
	maxLen int
	health *health.Server
	grpc   *grpc.Server
}

// New creates a new gRPC server wrapping the given store. Expressions
// longer than maxLen bytes are rejected; a non-positive maxLen means
// expr.DefaultMaxExpressionLength.
func New(s *store.Store, logger zerolog.Logger, maxLen int) *Server {
	if maxLen <= 0 {
		maxLen = expr.DefaultMaxExpressionLength
	}
	srv := &Server{
		store:  s,
		logger: logger,
		maxLen: maxLen,
		health: health.NewServer(),
	}

	gs := grpc.NewServer(grpc.UnaryInterceptor(srv.logCalls))
	gs.RegisterService(&calculatorServiceDesc, srv)
	healthpb.RegisterHealthServer(gs, srv.health)
	srv.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	srv.grpc = gs

	return srv
}

// Serve starts listening on the given address and serves gRPC requests.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	return s.grpc.Serve(lis)
}

// GracefulStop marks the service as not serving and gracefully stops the
// gRPC server.
func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) logCalls(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.logger.Debug().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Dur("latency", time.Since(start)).
		Msg("rpc")
	return resp, err
}

// --- Calculator Service ---

func (s *Server) Evaluate(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.DoubleValue, error) {
	input := req.GetValue()
	if input == "" {
		return nil, status.Error(codes.InvalidArgument, "expression is required")
	}
	if len(input) > s.maxLen {
		return nil, status.Errorf(codes.InvalidArgument, "expression exceeds maximum length of %d characters", s.maxLen)
	}

	value, err := expr.Evaluate(input)
	ev := s.store.Record("grpc", input, value, err)
	if err != nil {
		return nil, evaluationStatus(ev.ID, err)
	}
	return wrapperspb.Double(value), nil
}

func (s *Server) ListEvaluations(ctx context.Context, req *wrapperspb.Int32Value) (*structpb.ListValue, error) {
	if req.GetValue() < 0 {
		return nil, status.Error(codes.InvalidArgument, "limit must not be negative")
	}

	evaluations := s.store.List(int(req.GetValue()))
	items := make([]*structpb.Value, len(evaluations))
	for i, ev := range evaluations {
		items[i] = structpb.NewStructValue(storeEvaluationToProto(ev))
	}
	return &structpb.ListValue{Values: items}, nil
}

// evaluationStatus converts an evaluation failure to an InvalidArgument
// status carrying an ErrorInfo detail with the failure kind and position.
func evaluationStatus(id string, err error) error {
	st := status.New(codes.InvalidArgument, err.Error())

	info := &errdetails.ErrorInfo{
		Domain:   ErrorDomain,
		Metadata: map[string]string{"id": id},
	}
	var ee *types.EvaluationError
	if errors.As(err, &ee) {
		info.Reason = ee.Kind()
		if pos := ee.Position(); pos != types.NoPosition {
			info.Metadata["position"] = strconv.Itoa(pos)
		}
	}

	if withDetails, derr := st.WithDetails(info); derr == nil {
		st = withDetails
	}
	return st.Err()
}

func storeEvaluationToProto(ev *store.Evaluation) *structpb.Struct {
	fields := map[string]*structpb.Value{
		"id":         structpb.NewStringValue(ev.ID),
		"expression": structpb.NewStringValue(ev.Expression),
		"source":     structpb.NewStringValue(ev.Source),
		"state":      structpb.NewStringValue(string(ev.State)),
		"createTime": structpb.NewStringValue(ev.CreateTime.Format(time.RFC3339)),
	}
	if ev.Error != nil {
		fields["error"] = structpb.NewStringValue(ev.Error.Message)
		fields["kind"] = structpb.NewStringValue(ev.Error.Kind)
	} else {
		fields["result"] = structpb.NewNumberValue(ev.Result)
	}
	return &structpb.Struct{Fields: fields}
}
