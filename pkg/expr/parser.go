package expr

import (
	"fmt"

	"github.com/lemonberrylabs/arith/pkg/types"
)

// MaxDepth is the deepest nesting of parentheses and '^' operands the
// parser accepts.
const MaxDepth = 1000

// Parser is a recursive descent parser for arithmetic expressions.
type Parser struct {
	lex   *Lexer
	depth int
}

// Parse parses a complete expression string. The whole input must form a
// single expression; leftover tokens are a parse error.
func Parse(input string) (Node, error) {
	lex, err := NewLexer(input)
	if err != nil {
		return nil, err
	}

	p := &Parser{lex: lex}
	node, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if tok := p.current(); tok.Type != TokenEOF {
		return nil, types.NewParseError(fmt.Sprintf("unexpected token %s", tok.Type), tok.Pos)
	}

	return node, nil
}

// current returns the lookahead token.
func (p *Parser) current() Token {
	return p.lex.Current()
}

// advance consumes the current token and returns it.
func (p *Parser) advance() (Token, error) {
	tok := p.lex.Current()
	return tok, p.lex.Advance()
}

// parseExpression is the entry point: handles the lowest precedence operators.
// Precedence (low to high):
//
//	+, -    left-associative
//	*, /    left-associative
//	^       right-associative
//	number, parenthesised expression
func (p *Parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenPlus || p.current().Type == TokenMinus {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: binaryOps[op.Type], Left: left, Right: right, Pos: op.Pos}
	}
	return left, nil
}

func (p *Parser) parseTerm() (Node, error) {
	left, err := p.parseExponent()
	if err != nil {
		return nil, err
	}

	for p.current().Type == TokenStar || p.current().Type == TokenSlash {
		op, err := p.advance()
		if err != nil {
			return nil, err
		}
		right, err := p.parseExponent()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{Op: binaryOps[op.Type], Left: left, Right: right, Pos: op.Pos}
	}
	return left, nil
}

// parseExponent recurses into itself for the right operand, so 2^3^2 is
// 2^(3^2).
func (p *Parser) parseExponent() (Node, error) {
	base, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	if p.current().Type != TokenCaret {
		return base, nil
	}
	op, err := p.advance()
	if err != nil {
		return nil, err
	}
	if err := p.enter(op.Pos); err != nil {
		return nil, err
	}
	exp, err := p.parseExponent()
	p.depth--
	if err != nil {
		return nil, err
	}
	return &BinaryNode{Op: OpPow, Left: base, Right: exp, Pos: op.Pos}, nil
}

func (p *Parser) parseFactor() (Node, error) {
	tok := p.current()

	switch tok.Type {
	case TokenNumber:
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return &NumberNode{Value: tok.Num}, nil
	case TokenLParen:
		if err := p.enter(tok.Pos); err != nil {
			return nil, err
		}
		defer func() { p.depth-- }()
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current().Type != TokenRParen {
			return nil, types.NewParseError("expected ')'", p.current().Pos)
		}
		if _, err := p.advance(); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, types.NewParseError("expected number or '('", tok.Pos)
	}
}

// enter descends one nesting level, failing once MaxDepth is exceeded.
func (p *Parser) enter(pos int) error {
	if p.depth >= MaxDepth {
		return types.NewParseError(fmt.Sprintf("expression nested deeper than %d levels", MaxDepth), pos)
	}
	p.depth++
	return nil
}
