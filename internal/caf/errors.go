package caf

import (
	"fmt"

	"github.com/mcncl/cafkit/internal/models"
)

// ParseError reports malformed CAF text at a line and column (both 1-based).
type ParseError struct {
	Line    int
	Column  int
	Message string
}

func newParseError(line, col int, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Column: col, Message: fmt.Sprintf(format, args...)}
}

// Error implements error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// ShapeError reports a JSON value whose shape does not match the schema kind
// it is being converted into.
type ShapeError struct {
	TypePath string
	JSON     models.JSONValue
	Expected string
}

// Error implements error interface
func (e *ShapeError) Error() string {
	return fmt.Sprintf("failed converting %s from json %s; expected %s",
		e.TypePath, models.Describe(e.JSON), e.Expected)
}

func shapeErr(typePath string, val models.JSONValue, expected string) *ShapeError {
	return &ShapeError{TypePath: typePath, JSON: val, Expected: expected}
}

// UnknownTypeError reports a command whose type name is not in the registry.
type UnknownTypeError struct {
	Name string
}

// Error implements error interface
func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("type %q is not registered", e.Name)
}

// UnexpectedTypeError is returned when a Number is asked to deserialize as a
// type its natural kind cannot satisfy, e.g. a float requested as an integer
// or any number requested as a bool.
type UnexpectedTypeError struct {
	Kind     NumberKind
	Text     string
	Expected string
}

// Error implements error interface
func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("invalid type: %s `%s`, expected %s", e.Kind.unexpectedName(), e.Text, e.Expected)
}

// InvalidValueError is returned when an integer does not fit the requested
// width.
type InvalidValueError struct {
	Kind     NumberKind
	Text     string
	Expected string
}

// Error implements error interface
func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid value: %s `%s`, expected %s", e.Kind.unexpectedName(), e.Text, e.Expected)
}
