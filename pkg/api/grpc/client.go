package grpcapi

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// CalculatorClient is a client for the Calculator service.
type CalculatorClient struct {
	cc grpc.ClientConnInterface
}

// NewCalculatorClient creates a client using the given connection.
func NewCalculatorClient(cc grpc.ClientConnInterface) *CalculatorClient {
	return &CalculatorClient{cc: cc}
}

// Evaluate evaluates expression on the server.
func (c *CalculatorClient) Evaluate(ctx context.Context, expression string, opts ...grpc.CallOption) (float64, error) {
	out := new(wrapperspb.DoubleValue)
	if err := c.cc.Invoke(ctx, evaluateMethod, wrapperspb.String(expression), out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// ListEvaluations returns up to limit recent evaluations, newest first,
// as plain maps.
func (c *CalculatorClient) ListEvaluations(ctx context.Context, limit int32, opts ...grpc.CallOption) ([]map[string]interface{}, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, listEvaluationsMethod, wrapperspb.Int32(limit), out, opts...); err != nil {
		return nil, err
	}
	items := make([]map[string]interface{}, 0, len(out.GetValues()))
	for _, v := range out.GetValues() {
		items = append(items, v.GetStructValue().AsMap())
	}
	return items, nil
}
