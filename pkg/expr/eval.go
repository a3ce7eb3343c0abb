package expr

import (
	"fmt"
	"math"

	"github.com/lemonberrylabs/arith/pkg/types"
)

// DefaultMaxExpressionLength is the longest expression, in bytes, the
// servers accept unless configured otherwise.
const DefaultMaxExpressionLength = 4096

// Evaluate parses and evaluates input. Every failure is returned as a
// *types.EvaluationError wrapping the lex, parse, or evaluation error.
func Evaluate(input string) (float64, error) {
	node, err := Parse(input)
	if err != nil {
		return 0, &types.EvaluationError{Input: input, Cause: err}
	}
	v, err := EvaluateNode(node)
	if err != nil {
		return 0, &types.EvaluationError{Input: input, Cause: err}
	}
	return v, nil
}

// EvaluateNode folds an expression tree into a single value. Children are
// always evaluated before their parent operator is applied.
func EvaluateNode(node Node) (float64, error) {
	switch n := node.(type) {
	case *NumberNode:
		return n.Value, nil
	case *BinaryNode:
		return evalBinary(n)
	default:
		return 0, fmt.Errorf("unsupported expression node type: %T", node)
	}
}

func evalBinary(n *BinaryNode) (float64, error) {
	left, err := EvaluateNode(n.Left)
	if err != nil {
		return 0, err
	}
	right, err := EvaluateNode(n.Right)
	if err != nil {
		return 0, err
	}

	switch n.Op {
	case OpAdd:
		return left + right, nil
	case OpSub:
		return left - right, nil
	case OpMul:
		return left * right, nil
	case OpDiv:
		if right == 0 {
			return 0, types.NewZeroDivisionError(n.Pos)
		}
		return left / right, nil
	case OpPow:
		return math.Pow(left, right), nil
	default:
		return 0, fmt.Errorf("unsupported binary operator: %s", n.Op)
	}
}
