// Package expr implements the arithmetic expression tokenizer, the
// recursive-descent parser that builds an expression tree, and the tree
// evaluator. It handles numbers, + - * / ^ and parentheses.
package expr

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenNumber TokenType = iota // integer or decimal literal

	// Arithmetic
	TokenPlus  // +
	TokenMinus // -
	TokenStar  // *
	TokenSlash // /
	TokenCaret // ^

	// Grouping
	TokenLParen // (
	TokenRParen // )

	// Special
	TokenEOF // end of expression
)

// Token represents a single lexical token.
type Token struct {
	Type  TokenType
	Value string  // raw source text
	Num   float64 // parsed value (for TokenNumber)
	Pos   int     // byte offset in source
}

// String returns a debug-friendly representation of the token type.
func (t TokenType) String() string {
	switch t {
	case TokenNumber:
		return "NUMBER"
	case TokenPlus:
		return "PLUS"
	case TokenMinus:
		return "MINUS"
	case TokenStar:
		return "STAR"
	case TokenSlash:
		return "SLASH"
	case TokenCaret:
		return "CARET"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenEOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// singleCharTokens maps operator and bracket bytes to their token types.
var singleCharTokens = map[byte]TokenType{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'^': TokenCaret,
	'(': TokenLParen,
	')': TokenRParen,
}
