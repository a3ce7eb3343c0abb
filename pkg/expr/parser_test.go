package expr

import (
	"strings"
	"testing"

	"github.com/lemonberrylabs/arith/pkg/types"
)

func TestParseTreeShape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1", "1"},
		{"2.50", "2.5"},
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"10 - 2 - 3", "((10 - 2) - 3)"},
		{"100 / 5 / 2", "((100 / 5) / 2)"},
		{"2 ^ 3 ^ 2", "(2 ^ (3 ^ 2))"},
		{"2 * 3 ^ 2 * 4", "((2 * (3 ^ 2)) * 4)"},
		{"1 - 2 + 3 * 4 / 5", "((1 - 2) + ((3 * 4) / 5))"},
		{"(((1)))", "1"},
		{"2 ^ (1 + 1) ^ 3", "(2 ^ ((1 + 1) ^ 3))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("parse error: %v", err)
			}
			if got := node.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseOperatorNodes(t *testing.T) {
	node, err := Parse("8 / 4")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bin, ok := node.(*BinaryNode)
	if !ok {
		t.Fatalf("expected BinaryNode, got %T", node)
	}
	if bin.Op != OpDiv || bin.Pos != 2 {
		t.Errorf("got op %s at %d, want / at 2", bin.Op, bin.Pos)
	}
	if l, ok := bin.Left.(*NumberNode); !ok || l.Value != 8 {
		t.Errorf("unexpected left operand %v", bin.Left)
	}
	if r, ok := bin.Right.(*NumberNode); !ok || r.Value != 4 {
		t.Errorf("unexpected right operand %v", bin.Right)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"(1 + 2", "expected ')' at position 6"},
		{"((1)", "expected ')' at position 4"},
		{"* 3", "expected number or '(' at position 0"},
		{"1 * * 2", "expected number or '(' at position 4"},
		{"2 ^", "expected number or '(' at position 3"},
		{"1 2", "unexpected token NUMBER at position 2"},
		{"(1) (2)", "unexpected token LPAREN at position 4"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if err == nil {
				t.Fatal("expected ParseError")
			}
			ce, ok := err.(*types.CalcError)
			if !ok {
				t.Fatalf("expected CalcError, got %T", err)
			}
			if !ce.HasTag(types.TagParseError) {
				t.Errorf("expected ParseError tag, got %v", ce.Tags)
			}
			if ce.Error() != tt.want {
				t.Errorf("got %q, want %q", ce.Error(), tt.want)
			}
		})
	}
}

func TestParseNestingLimit(t *testing.T) {
	nested := func(n int) string {
		return strings.Repeat("(", n) + "1" + strings.Repeat(")", n)
	}
	powers := func(n int) string {
		return "1" + strings.Repeat(" ^ 1", n)
	}

	for _, input := range []string{nested(MaxDepth), powers(MaxDepth)} {
		if _, err := Parse(input); err != nil {
			t.Errorf("Parse at depth %d: %v", MaxDepth, err)
		}
	}

	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"parentheses", nested(MaxDepth + 1), MaxDepth},
		{"powers", powers(MaxDepth + 1), 2 + 4*MaxDepth},
		{"unterminated", strings.Repeat("(", 4<<20), MaxDepth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			ce, ok := err.(*types.CalcError)
			if !ok {
				t.Fatalf("expected CalcError, got %T (%v)", err, err)
			}
			if !ce.HasTag(types.TagParseError) || ce.Pos != tt.pos {
				t.Errorf("got %v (tags %v), want ParseError at %d", ce, ce.Tags, tt.pos)
			}
			if !strings.Contains(ce.Message, "nested deeper") {
				t.Errorf("unexpected message %q", ce.Message)
			}
		})
	}
}
