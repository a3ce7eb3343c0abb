package expr

import (
	"strconv"
	"strings"
)

// Node is the interface for expression tree nodes. The only
// implementations are *NumberNode and *BinaryNode.
type Node interface {
	String() string
	node()
}

// Op is a binary operator.
type Op int

const (
	OpAdd Op = iota // +
	OpSub           // -
	OpMul           // *
	OpDiv           // /
	OpPow           // ^
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpPow:
		return "^"
	default:
		return "?"
	}
}

// binaryOps maps operator tokens to the operators they build.
var binaryOps = map[TokenType]Op{
	TokenPlus:  OpAdd,
	TokenMinus: OpSub,
	TokenStar:  OpMul,
	TokenSlash: OpDiv,
	TokenCaret: OpPow,
}

// NumberNode is a leaf holding a numeric literal.
type NumberNode struct {
	Value float64
}

func (n *NumberNode) node() {}

// String formats the literal in its shortest round-trip form.
func (n *NumberNode) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// BinaryNode applies Op to its two operands. Left and Right are never nil.
type BinaryNode struct {
	Op    Op
	Left  Node
	Right Node
	Pos   int // offset of the operator token
}

func (n *BinaryNode) node() {}

// String renders the subtree fully parenthesised, e.g. "(2 + (3 * 4))".
func (n *BinaryNode) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(n.Left.String())
	sb.WriteByte(' ')
	sb.WriteString(n.Op.String())
	sb.WriteByte(' ')
	sb.WriteString(n.Right.String())
	sb.WriteByte(')')
	return sb.String()
}
