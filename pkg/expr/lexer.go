package expr

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/lemonberrylabs/arith/pkg/types"
)

// Lexer tokenizes an arithmetic expression on demand, keeping exactly one
// token of lookahead.
type Lexer struct {
	input string
	pos   int
	cur   Token
}

// NewLexer creates a lexer for the given input and scans its first token.
func NewLexer(input string) (*Lexer, error) {
	l := &Lexer{input: input}
	if err := l.Advance(); err != nil {
		return nil, err
	}
	return l, nil
}

// Current returns the lookahead token without consuming it.
func (l *Lexer) Current() Token {
	return l.cur
}

// Advance consumes the current token and scans the next one. Once the end
// of input is reached, every further call yields TokenEOF again.
func (l *Lexer) Advance() error {
	tok, err := l.next()
	if err != nil {
		return err
	}
	l.cur = tok
	return nil
}

// Tokenize scans the remaining input and returns all tokens, starting with
// the current one and ending with TokenEOF.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok := l.Current()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF {
			return tokens, nil
		}
		if err := l.Advance(); err != nil {
			return nil, err
		}
	}
}

// next returns the next token from the input.
func (l *Lexer) next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}, nil
	}

	ch := l.input[l.pos]

	if isDigit(ch) || ch == '.' {
		return l.readNumber()
	}

	if tt, ok := singleCharTokens[ch]; ok {
		l.pos++
		return Token{Type: tt, Value: string(ch), Pos: l.pos - 1}, nil
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return Token{}, types.NewLexError(r, l.pos)
}

// readNumber reads a maximal run of digits containing at most one decimal
// point. The run must contain at least one digit.
func (l *Lexer) readNumber() (Token, error) {
	start := l.pos
	sawDigit := false
	sawDot := false

	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isDigit(ch) {
			sawDigit = true
			l.pos++
		} else if ch == '.' && !sawDot {
			sawDot = true
			l.pos++
		} else {
			break
		}
	}

	raw := l.input[start:l.pos]
	if !sawDigit {
		return Token{}, types.NewMalformedNumberError(raw, start)
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Token{}, types.NewMalformedNumberError(raw, start)
	}
	return Token{Type: TokenNumber, Value: raw, Num: f, Pos: start}, nil
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
