package jsonlogic

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Unmarshal decodes a query-input aggregate from a JSON object into the
// struct pointed to by v.
//
// Each exported field is read from the key named by its json tag (or its
// Go name), matched case-sensitively. Keys that match no field are
// ignored. A key whose value is null is treated as absent. Decoding is
// all-or-nothing: on any error *v is left unchanged. Decoding failures are
// reported as *DecodeError with Field set to the offending key.
func Unmarshal(data []byte, v any) error {
	return unmarshal(data, v, false)
}

// UnmarshalStrict is Unmarshal but rejects keys that match no field.
func UnmarshalStrict(data []byte, v any) error {
	return unmarshal(data, v, true)
}

func unmarshal(data []byte, v any, strict bool) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("jsonlogic: unmarshal target must be a non-nil pointer to a struct, got %T", v)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return newShapeError("query input must be a JSON object", "object", describeJSON(data))
	}

	if err := CheckUniqueKeys(data); err != nil {
		return err
	}

	fields := inputFields(rv.Elem().Type())
	if strict {
		known := make(map[string]bool, len(fields))
		for _, f := range fields {
			known[f.key] = true
		}
		for _, k := range sortedKeys(obj) {
			if !known[k] {
				return &DecodeError{
					Code:    ErrCodeShapeMismatch,
					Message: fmt.Sprintf("unknown field %q", k),
					Field:   k,
					Got:     k,
				}
			}
		}
	}

	next := reflect.New(rv.Elem().Type()).Elem()
	for _, f := range fields {
		raw, ok := obj[f.key]
		if !ok || isNull(raw) {
			continue
		}
		if err := json.Unmarshal(raw, next.Field(f.index).Addr().Interface()); err != nil {
			return WithField(err, f.key)
		}
	}
	rv.Elem().Set(next)
	return nil
}

// CheckUniqueKeys reports a repeated member of the JSON object in data as
// a *DecodeError whose Field names it.
func CheckUniqueKeys(data []byte) error {
	keys, err := objectKeys(data)
	if err != nil {
		return err
	}
	if dup, ok := duplicateKey(keys); ok {
		return &DecodeError{
			Code:    ErrCodeShapeMismatch,
			Message: fmt.Sprintf("duplicate field %q", dup),
			Field:   dup,
			Got:     dup,
		}
	}
	return nil
}

type inputField struct {
	key   string
	index int
}

// inputFields lists the exported fields of t with their wire keys, in
// declaration order.
func inputFields(t reflect.Type) []inputField {
	var fields []inputField
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		key, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if key == "-" {
			continue
		}
		if key == "" {
			key = sf.Name
		}
		fields = append(fields, inputField{key: key, index: i})
	}
	return fields
}
