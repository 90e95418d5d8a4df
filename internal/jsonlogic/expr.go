package jsonlogic

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Op is a condition operator.
type Op string

const (
	OpEqual   Op = "=="
	OpLess    Op = "<"
	OpGreater Op = ">"
	OpIn      Op = "in"
)

// Ops lists the supported operators.
var Ops = []Op{OpEqual, OpLess, OpGreater, OpIn}

// ParseOp validates an operator key.
func ParseOp(s string) (Op, error) {
	for _, op := range Ops {
		if string(op) == s {
			return op, nil
		}
	}
	return "", newUnknownOperator(s)
}

// Expr is one flat condition on the column resolved by its binding.
//
// Exactly one variant is populated, selected by Op:
//
//	OpEqual    Value (nil means "is null")
//	OpLess     Value
//	OpGreater  Value
//	OpIn       Values (may be empty)
type Expr[B Binding[T], T any] struct {
	Op      Op
	Binding B
	Value   *T
	Values  []T
}

// Equal returns the condition "b == v".
func Equal[B Binding[T], T any](b B, v T) *Expr[B, T] {
	return &Expr[B, T]{Op: OpEqual, Binding: b, Value: &v}
}

// IsNull returns the condition "b == null".
func IsNull[B Binding[T], T any](b B) *Expr[B, T] {
	return &Expr[B, T]{Op: OpEqual, Binding: b}
}

// Less returns the condition "b < v".
func Less[B Binding[T], T any](b B, v T) *Expr[B, T] {
	return &Expr[B, T]{Op: OpLess, Binding: b, Value: &v}
}

// Greater returns the condition "b > v".
func Greater[B Binding[T], T any](b B, v T) *Expr[B, T] {
	return &Expr[B, T]{Op: OpGreater, Binding: b, Value: &v}
}

// In returns the condition "b in values".
func In[B Binding[T], T any](b B, values ...T) *Expr[B, T] {
	return &Expr[B, T]{Op: OpIn, Binding: b, Values: append([]T{}, values...)}
}

// UnmarshalJSON implements json.Unmarshaler.
//
// The binding operand is decoded into a copy of e.Binding, so a runtime
// Bound binding set before decoding keeps its expected name. On error e is
// left unchanged.
func (e *Expr[B, T]) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return newShapeError("logic expression must be an object with one operator key", "object", describeJSON(data))
	}
	keys, err := objectKeys(data)
	if err != nil {
		return err
	}
	if len(keys) != 1 {
		return newShapeError(
			fmt.Sprintf("logic expression must have exactly one operator key, got %d", len(keys)),
			"1 key", strings.Join(keys, ","))
	}

	var key string
	var raw json.RawMessage
	for k, v := range obj {
		key, raw = k, v
	}
	op, err := ParseOp(key)
	if err != nil {
		return err
	}

	var operands []json.RawMessage
	if err := json.Unmarshal(raw, &operands); err != nil || operands == nil {
		return withOperator(newShapeError("operands must be an array of two elements", "array", describeJSON(raw)), op)
	}
	if len(operands) != 2 {
		return withOperator(newShapeError(
			fmt.Sprintf("operator takes exactly 2 operands, got %d", len(operands)),
			"2", strconv.Itoa(len(operands))), op)
	}

	binding := e.Binding
	if err := json.Unmarshal(operands[0], &binding); err != nil {
		return withOperator(err, op)
	}

	next := Expr[B, T]{Op: op, Binding: binding}
	switch op {
	case OpEqual:
		if !isNull(operands[1]) {
			v, err := decodeOperand[T](operands[1])
			if err != nil {
				return withOperator(err, op)
			}
			next.Value = &v
		}
	case OpLess, OpGreater:
		if !ordered[T]() {
			return withOperator(newShapeError("operator is not defined for "+typeName[T](), "ordered type", typeName[T]()), op)
		}
		if isNull(operands[1]) {
			return withOperator(newShapeError("operator requires a non-null operand", typeName[T](), "null"), op)
		}
		v, err := decodeOperand[T](operands[1])
		if err != nil {
			return withOperator(err, op)
		}
		next.Value = &v
	case OpIn:
		var elems []json.RawMessage
		if err := json.Unmarshal(operands[1], &elems); err != nil || elems == nil {
			return withOperator(newShapeError("operator requires an array of values", "[]"+typeName[T](), describeJSON(operands[1])), op)
		}
		next.Values = make([]T, 0, len(elems))
		for i, elem := range elems {
			if isNull(elem) {
				return withOperator(newShapeError(fmt.Sprintf("element %d is null", i), typeName[T](), "null"), op)
			}
			v, err := decodeOperand[T](elem)
			if err != nil {
				return withOperator(err, op)
			}
			next.Values = append(next.Values, v)
		}
	}

	*e = next
	return nil
}

// MarshalJSON implements json.Marshaler using the same wire form
// UnmarshalJSON accepts.
func (e Expr[B, T]) MarshalJSON() ([]byte, error) {
	var operand any
	switch e.Op {
	case OpEqual:
		if e.Value != nil {
			operand = *e.Value
		}
	case OpLess, OpGreater:
		if e.Value == nil {
			return nil, fmt.Errorf("jsonlogic: %q expression has no operand", e.Op)
		}
		operand = *e.Value
	case OpIn:
		if e.Values == nil {
			operand = []T{}
		} else {
			operand = e.Values
		}
	default:
		return nil, fmt.Errorf("jsonlogic: cannot marshal expression with operator %q", e.Op)
	}
	return json.Marshal(map[string][2]any{string(e.Op): {e.Binding, operand}})
}

// decodeOperand decodes one comparison value as T.
func decodeOperand[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		got := describeJSON(raw)
		return v, &DecodeError{
			Code:     ErrCodeShapeMismatch,
			Message:  fmt.Sprintf("operand %s does not decode as %s", got, typeName[T]()),
			Expected: typeName[T](),
			Got:      got,
			Err:      err,
		}
	}
	return v, nil
}

// ordered reports whether < and > are meaningful for T.
func ordered[T any]() bool {
	return reflect.TypeFor[T]().Kind() != reflect.Bool
}

func typeName[T any]() string {
	return reflect.TypeFor[T]().String()
}
