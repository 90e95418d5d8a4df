package jsonlogic

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Param describes one aggregate field as an optional query parameter,
// shaped like an OpenAPI parameter object. Schema is the operand type;
// the parameter value itself is a condition object.
type Param struct {
	Name        string      `json:"name"`
	In          string      `json:"in"`
	Required    bool        `json:"required"`
	Description string      `json:"description,omitempty"`
	Schema      ParamSchema `json:"schema"`
	Operators   []Op        `json:"x-operators"`
}

// ParamSchema is the OpenAPI type and format of an operand.
type ParamSchema struct {
	Type   string `json:"type"`
	Format string `json:"format,omitempty"`
}

// ParamFor describes the field name whose operands decode into T. ref is
// the storage column, used in the description.
func ParamFor[T any](name, ref string) Param {
	ops := []Op{OpEqual, OpIn}
	if ordered[T]() {
		ops = []Op{OpEqual, OpLess, OpGreater, OpIn}
	}
	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = string(op)
	}
	return Param{
		Name:        name,
		In:          "query",
		Description: fmt.Sprintf("JSON Logic condition on %s (%s)", ref, strings.Join(names, ", ")),
		Schema:      schemaFor(reflect.TypeFor[T]()),
		Operators:   ops,
	}
}

var timeType = reflect.TypeFor[time.Time]()

func schemaFor(t reflect.Type) ParamSchema {
	if t == timeType {
		return ParamSchema{Type: "string", Format: "date-time"}
	}
	switch t.Kind() {
	case reflect.Bool:
		return ParamSchema{Type: "boolean"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return ParamSchema{Type: "integer", Format: "int32"}
	case reflect.Int64:
		return ParamSchema{Type: "integer", Format: "int64"}
	case reflect.Float32:
		return ParamSchema{Type: "number", Format: "float"}
	case reflect.Float64:
		return ParamSchema{Type: "number", Format: "double"}
	case reflect.String:
		return ParamSchema{Type: "string"}
	default:
		return ParamSchema{Type: "object"}
	}
}
