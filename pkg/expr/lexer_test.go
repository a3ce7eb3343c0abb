package expr

import (
	"testing"

	"github.com/lemonberrylabs/arith/pkg/types"
)

func TestTokenize(t *testing.T) {
	lex, err := NewLexer(" 12.5*(3 -.25)^2/1 + 4. ")
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	tokens, err := lex.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}

	want := []struct {
		typ TokenType
		pos int
		num float64
	}{
		{TokenNumber, 1, 12.5},
		{TokenStar, 5, 0},
		{TokenLParen, 6, 0},
		{TokenNumber, 7, 3},
		{TokenMinus, 9, 0},
		{TokenNumber, 10, 0.25},
		{TokenRParen, 13, 0},
		{TokenCaret, 14, 0},
		{TokenNumber, 15, 2},
		{TokenSlash, 16, 0},
		{TokenNumber, 17, 1},
		{TokenPlus, 19, 0},
		{TokenNumber, 21, 4},
		{TokenEOF, 24, 0},
	}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Type != w.typ || tok.Pos != w.pos || tok.Num != w.num {
			t.Errorf("token %d = %s@%d (%v), want %s@%d (%v)", i, tok.Type, tok.Pos, tok.Num, w.typ, w.pos, w.num)
		}
	}
}

func TestLexerEOFIsIdempotent(t *testing.T) {
	lex, err := NewLexer("7")
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	for i := 0; i < 4; i++ {
		if err := lex.Advance(); err != nil {
			t.Fatalf("Advance %d: %v", i, err)
		}
		if lex.Current().Type != TokenEOF {
			t.Fatalf("Advance %d: got %s, want EOF", i, lex.Current().Type)
		}
	}
}

func TestLexerSecondDecimalPointStartsNewNumber(t *testing.T) {
	lex, err := NewLexer("1.2.3")
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	tokens, err := lex.Tokenize()
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(tokens) != 3 || tokens[0].Value != "1.2" || tokens[1].Value != ".3" {
		t.Errorf("unexpected tokens: %v", tokens)
	}
}

func TestLexerIsLazy(t *testing.T) {
	// The bad character is never reached because nothing asks for it.
	lex, err := NewLexer("1 $")
	if err != nil {
		t.Fatalf("NewLexer: %v", err)
	}
	if lex.Current().Type != TokenNumber {
		t.Fatalf("got %s, want NUMBER", lex.Current().Type)
	}
	err = lex.Advance()
	if !types.HasTag(err, types.TagLexError) {
		t.Fatalf("expected LexError, got %v", err)
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		input string
		pos   int
	}{
		{"&", 0},
		{"1 % 2", 2},
		{"x", 0},
		{".", 0},
		{"..", 0},
		{"1e5", 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			lex, err := NewLexer(tt.input)
			if err == nil {
				_, err = lex.Tokenize()
			}
			if err == nil {
				t.Fatal("expected LexError")
			}
			ce, ok := err.(*types.CalcError)
			if !ok {
				t.Fatalf("expected CalcError, got %T", err)
			}
			if !ce.HasTag(types.TagLexError) {
				t.Errorf("expected LexError tag, got %v", ce.Tags)
			}
			if ce.Pos != tt.pos {
				t.Errorf("position = %d, want %d", ce.Pos, tt.pos)
			}
		})
	}
}
