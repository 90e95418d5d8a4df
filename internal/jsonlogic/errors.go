package jsonlogic

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes decoding failures.
type ErrorCode string

const (
	// ErrCodeNameMismatch indicates a {"var": ...} operand named a column
	// other than the one the field is bound to.
	ErrCodeNameMismatch ErrorCode = "NAME_MISMATCH"

	// ErrCodeShapeMismatch indicates malformed JSON structure or an operand
	// that does not decode as the column's value type.
	ErrCodeShapeMismatch ErrorCode = "SHAPE_MISMATCH"

	// ErrCodeUnknownOperator indicates an operator outside {==, <, >, in}.
	ErrCodeUnknownOperator ErrorCode = "UNKNOWN_OPERATOR"
)

// DecodeError reports why a condition or query input failed to decode.
type DecodeError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field is the query-input key the failing condition was read from,
	// when known.
	Field string

	// Operator is the condition's operator key, when known.
	Operator string

	// Expected and Got describe the mismatch (a column name, a JSON kind
	// or a Go value type).
	Expected string
	Got      string

	// Err is the underlying encoding/json error, if any.
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var ctx []string
	if e.Field != "" {
		ctx = append(ctx, "field="+e.Field)
	}
	if e.Operator != "" {
		ctx = append(ctx, "op="+e.Operator)
	}
	if len(ctx) == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, strings.Join(ctx, ", "))
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsNameMismatch reports whether err is a name mismatch.
// Uses errors.As to handle wrapped errors.
func IsNameMismatch(err error) bool {
	return hasCode(err, ErrCodeNameMismatch)
}

// IsShapeMismatch reports whether err is a shape mismatch.
func IsShapeMismatch(err error) bool {
	return hasCode(err, ErrCodeShapeMismatch)
}

// IsUnknownOperator reports whether err is an unknown operator error.
func IsUnknownOperator(err error) bool {
	return hasCode(err, ErrCodeUnknownOperator)
}

func hasCode(err error, code ErrorCode) bool {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// WithField records the query-input key on a decoding error. Errors that
// are not a *DecodeError are wrapped as shape mismatches first.
func WithField(err error, field string) error {
	if err == nil {
		return nil
	}
	de := asDecodeError(err)
	if de.Field == "" {
		de.Field = field
	}
	return de
}

func newNameMismatch(want, got string) *DecodeError {
	return &DecodeError{
		Code:     ErrCodeNameMismatch,
		Message:  fmt.Sprintf("var can only receive %q, but instead received %q", want, got),
		Expected: want,
		Got:      got,
	}
}

func newShapeError(msg, expected, got string) *DecodeError {
	return &DecodeError{
		Code:     ErrCodeShapeMismatch,
		Message:  msg,
		Expected: expected,
		Got:      got,
	}
}

func newUnknownOperator(op string) *DecodeError {
	return &DecodeError{
		Code:     ErrCodeUnknownOperator,
		Message:  fmt.Sprintf("unknown operator %q: must be one of %v", op, Ops),
		Operator: op,
		Expected: fmt.Sprint(Ops),
		Got:      op,
	}
}

// asDecodeError returns err as a *DecodeError, wrapping foreign errors as
// shape mismatches.
func asDecodeError(err error) *DecodeError {
	var de *DecodeError
	if errors.As(err, &de) {
		return de
	}
	return &DecodeError{
		Code:    ErrCodeShapeMismatch,
		Message: err.Error(),
		Err:     err,
	}
}

func withOperator(err error, op Op) error {
	de := asDecodeError(err)
	if de.Operator == "" {
		de.Operator = string(op)
	}
	return de
}
