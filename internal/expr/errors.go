package expr

import (
	"errors"
	"fmt"
)

// ParseError reports malformed equation text.
type ParseError struct {
	// Text is the full equation being parsed.
	Text string

	// Pos is the byte offset the parser stopped at.
	Pos int

	// Message describes what was expected.
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at offset %d: %s", e.Text, e.Pos, e.Message)
}

// UnknownVariableError reports a symbol that has no entry in the
// binding map. This is a recoverable failure category: callers that
// hand-author equations get it back as an error, they do not crash.
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Name)
}

// IsUnknownVariable returns true if err is an UnknownVariableError.
// Uses errors.As to handle wrapped errors.
func IsUnknownVariable(err error) bool {
	var uv *UnknownVariableError
	return errors.As(err, &uv)
}

// IsParseError returns true if err is a ParseError.
// Uses errors.As to handle wrapped errors.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
