package jsonlogic

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"

	"github.com/roach88/jsonlogic/internal/query"
)

// Named is implemented by column descriptors.
type Named interface {
	Name() string
}

// Column describes one queryable column: its logical wire name and its
// typed storage column. Implementations are zero-size types whose methods
// return constants, so the mapping is fixed before any request is decoded.
type Column[T any] interface {
	Named
	Column() query.Column[T]
}

// Binding is the first operand of a condition. Resolve returns the storage
// column the condition applies to.
type Binding[T any] interface {
	Named
	Resolve() query.Column[T]
}

// Name is a string that decodes only from the exact logical name of C
// (case-sensitive, no trimming).
type Name[C Named] struct {
	value string
}

// String returns the decoded name, or C's name for the zero value.
func (n Name[C]) String() string {
	if n.value == "" {
		var c C
		return c.Name()
	}
	return n.value
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Name[C]) UnmarshalJSON(data []byte) error {
	got, err := decodeName(data)
	if err != nil {
		return err
	}
	var c C
	if err := checkName(c.Name(), got); err != nil {
		return err
	}
	n.value = got
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Name[C]) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

// Var is the {"var": "<name>"} operand bound at compile time to column C.
// The zero value is ready to use.
type Var[C Column[T], T any] struct {
	name Name[C]
}

// Name returns the column's logical name.
func (v Var[C, T]) Name() string {
	return v.name.String()
}

// Resolve returns C's storage column. It never reads wire data.
func (v Var[C, T]) Resolve() query.Column[T] {
	var c C
	return c.Column()
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Var[C, T]) UnmarshalJSON(data []byte) error {
	raw, err := decodeVar(data)
	if err != nil {
		return err
	}
	return v.name.UnmarshalJSON(raw)
}

// MarshalJSON implements json.Marshaler.
func (v Var[C, T]) MarshalJSON() ([]byte, error) {
	return marshalVar(v.Name())
}

// Equal returns the condition "column == value".
func (v Var[C, T]) Equal(value T) *Expr[Var[C, T], T] {
	return Equal(v, value)
}

// IsNull returns the condition "column == null".
func (v Var[C, T]) IsNull() *Expr[Var[C, T], T] {
	return IsNull[Var[C, T], T](v)
}

// Less returns the condition "column < value".
func (v Var[C, T]) Less(value T) *Expr[Var[C, T], T] {
	return Less(v, value)
}

// Greater returns the condition "column > value".
func (v Var[C, T]) Greater(value T) *Expr[Var[C, T], T] {
	return Greater(v, value)
}

// In returns the condition "column in values".
func (v Var[C, T]) In(values ...T) *Expr[Var[C, T], T] {
	return In(v, values...)
}

// Bound is a Binding whose column is chosen at run time. It is used for
// manifests that are loaded rather than compiled into Go; decoding checks
// the wire name against the name it was created with.
type Bound[T any] struct {
	name   string
	column query.Column[T]
}

// Bind returns a runtime binding of name to column.
func Bind[T any](name string, column query.Column[T]) Bound[T] {
	return Bound[T]{name: name, column: column}
}

// Name returns the expected logical name.
func (b Bound[T]) Name() string {
	return b.name
}

// Resolve returns the bound storage column.
func (b Bound[T]) Resolve() query.Column[T] {
	return b.column
}

// UnmarshalJSON implements json.Unmarshaler. The receiver must already
// carry its expected name.
func (b *Bound[T]) UnmarshalJSON(data []byte) error {
	raw, err := decodeVar(data)
	if err != nil {
		return err
	}
	got, err := decodeName(raw)
	if err != nil {
		return err
	}
	if b.name == "" {
		return newShapeError("binding has no expected column name", "bound column", got)
	}
	return checkName(b.name, got)
}

// MarshalJSON implements json.Marshaler.
func (b Bound[T]) MarshalJSON() ([]byte, error) {
	return marshalVar(b.name)
}

// decodeVar validates the {"var": ...} object and returns the raw name.
func decodeVar(data []byte) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, newShapeError(`binding must be an object of the form {"var": "<name>"}`, "object", describeJSON(data))
	}
	raw, ok := obj["var"]
	if !ok {
		return nil, newShapeError(`binding is missing the "var" key`, "var", strings.Join(sortedKeys(obj), ","))
	}
	keys, err := objectKeys(data)
	if err != nil {
		return nil, err
	}
	if len(keys) != 1 {
		return nil, newShapeError(`binding must contain only the "var" key`, "var", strings.Join(keys, ","))
	}
	return raw, nil
}

// decodeName decodes a JSON string, rejecting every other kind.
func decodeName(data []byte) (string, error) {
	kind := describeJSON(data)
	if kind != "string" {
		return "", newShapeError("column name must be a string", "string", kind)
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", asDecodeError(err)
	}
	return s, nil
}

func checkName(want, got string) error {
	if got != want {
		return newNameMismatch(want, got)
	}
	return nil
}

func marshalVar(name string) ([]byte, error) {
	return json.Marshal(map[string]string{"var": name})
}

// describeJSON names the kind of a raw JSON value for error messages.
func describeJSON(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "empty"
	}
	switch c := data[0]; {
	case c == 'n':
		return "null"
	case c == 't' || c == 'f':
		return "boolean"
	case c == '"':
		return "string"
	case c == '[':
		return "array"
	case c == '{':
		return "object"
	case c == '-' || (c >= '0' && c <= '9'):
		return "number"
	default:
		return "invalid"
	}
}

func isNull(data []byte) bool {
	return describeJSON(data) == "null"
}

// objectKeys lists the member names of a JSON object in document order,
// repeats included. map decoding keeps only the last of a repeated key.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, newShapeError("expected a JSON object", "object", describeJSON(data))
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, asDecodeError(err)
		}
		key, _ := tok.(string)
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, asDecodeError(err)
		}
	}
	return keys, nil
}

// duplicateKey returns the first key that appears twice in keys.
func duplicateKey(keys []string) (string, bool) {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return k, true
		}
		seen[k] = true
	}
	return "", false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
