// Package types defines the error taxonomy shared by the evaluator and the
// servers built on top of it.
package types

import (
	"errors"
	"fmt"
)

// Error tag constants.
const (
	TagLexError          = "LexError"
	TagParseError        = "ParseError"
	TagEvalError         = "EvalError"
	TagZeroDivisionError = "ZeroDivisionError"
)

// NoPosition marks errors that are not tied to a source offset.
const NoPosition = -1

// CalcError is a single tokenizer, parser, or evaluator failure.
type CalcError struct {
	Message string
	Pos     int // byte offset in the input, or NoPosition
	Tags    []string
}

// Error implements the error interface.
func (e *CalcError) Error() string {
	if e.Pos == NoPosition {
		return e.Message
	}
	return fmt.Sprintf("%s at position %d", e.Message, e.Pos)
}

// HasTag returns true if the error has the specified tag.
func (e *CalcError) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Kind returns the primary tag of the error.
func (e *CalcError) Kind() string {
	if len(e.Tags) == 0 {
		return ""
	}
	return e.Tags[0]
}

// Common error constructors.

// NewLexError creates a LexError for an unrecognized character.
func NewLexError(ch rune, pos int) *CalcError {
	return &CalcError{
		Message: fmt.Sprintf("unexpected character '%c'", ch),
		Pos:     pos,
		Tags:    []string{TagLexError},
	}
}

// NewMalformedNumberError creates a LexError for a numeric lexeme that
// could not be converted.
func NewMalformedNumberError(text string, pos int) *CalcError {
	return &CalcError{
		Message: fmt.Sprintf("malformed number %q", text),
		Pos:     pos,
		Tags:    []string{TagLexError},
	}
}

// NewParseError creates a ParseError.
func NewParseError(msg string, pos int) *CalcError {
	return &CalcError{Message: msg, Pos: pos, Tags: []string{TagParseError}}
}

// NewZeroDivisionError creates a ZeroDivisionError. pos is the offset of
// the '/' operator.
func NewZeroDivisionError(pos int) *CalcError {
	return &CalcError{
		Message: "division by zero",
		Pos:     pos,
		Tags:    []string{TagEvalError, TagZeroDivisionError},
	}
}

// EvaluationError is the uniform error returned by expr.Evaluate. It wraps
// the underlying lex, parse, or evaluation failure.
type EvaluationError struct {
	Input string
	Cause error
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	return fmt.Sprintf("invalid expression (%v)", e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EvaluationError) Unwrap() error {
	return e.Cause
}

// Kind returns the tag of the underlying failure, e.g. "ParseError".
func (e *EvaluationError) Kind() string {
	var ce *CalcError
	if errors.As(e.Cause, &ce) {
		return ce.Kind()
	}
	return ""
}

// Position returns the source offset of the underlying failure, or
// NoPosition.
func (e *EvaluationError) Position() int {
	var ce *CalcError
	if errors.As(e.Cause, &ce) {
		return ce.Pos
	}
	return NoPosition
}

// ToMap converts the error into the map structure served by the HTTP API.
func (e *EvaluationError) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"message": e.Error(),
		"kind":    e.Kind(),
	}
	if pos := e.Position(); pos != NoPosition {
		m["position"] = pos
	}
	var ce *CalcError
	if errors.As(e.Cause, &ce) && len(ce.Tags) > 0 {
		m["tags"] = ce.Tags
	}
	return m
}

// HasTag reports whether err wraps a CalcError carrying tag.
func HasTag(err error, tag string) bool {
	var ce *CalcError
	if errors.As(err, &ce) {
		return ce.HasTag(tag)
	}
	return false
}
