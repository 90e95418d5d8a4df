// Package schema decodes and applies query inputs for aggregates that are
// loaded from a manifest at run time rather than generated into Go.
//
// A Schema is built once from a validated ir.QuerySpec and is safe for
// concurrent use. Each column gets a typed decoder fixed at construction
// (int64, string, bool, float64 or time.Time per its declared type), so a
// decoded condition can only bind to the storage column its key declares.
// Wire rules are those of package jsonlogic.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/jsonlogic/internal/compiler"
	"github.com/roach88/jsonlogic/internal/ir"
	"github.com/roach88/jsonlogic/internal/jsonlogic"
	"github.com/roach88/jsonlogic/internal/query"
	"github.com/roach88/jsonlogic/internal/querysql"
)

// Option configures a Schema.
type Option func(*Schema)

// WithStrict rejects input keys that name no declared column.
// By default they are ignored.
func WithStrict() Option {
	return func(s *Schema) {
		s.strict = true
	}
}

// Schema is the runtime form of one query-input aggregate.
type Schema struct {
	spec    ir.QuerySpec
	columns []column
	strict  bool
}

type column struct {
	spec   ir.ColumnSpec
	param  jsonlogic.Param
	decode func(raw json.RawMessage) (Condition, error)
}

// New validates spec and builds its decoders.
func New(spec ir.QuerySpec, opts ...Option) (*Schema, error) {
	if errs := compiler.Validate(spec); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid query %q: %w", spec.Name, errors.Join(joined...))
	}

	s := &Schema{spec: spec}
	for _, c := range spec.Columns {
		col, err := columnFor(c)
		if err != nil {
			return nil, err
		}
		s.columns = append(s.columns, col)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Spec returns the aggregate's IR.
func (s *Schema) Spec() ir.QuerySpec {
	return s.spec
}

// Name returns the aggregate name.
func (s *Schema) Name() string {
	return s.spec.Name
}

// Fields returns the logical column names in declaration order.
func (s *Schema) Fields() []string {
	return s.spec.ColumnNames()
}

// Params describes each column as an optional query parameter, in
// declaration order.
func (s *Schema) Params() []jsonlogic.Param {
	params := make([]jsonlogic.Param, len(s.columns))
	for i, c := range s.columns {
		params[i] = c.param
	}
	return params
}

// NewSelect returns the aggregate's base statement (from table and joins).
func (s *Schema) NewSelect() querysql.Select {
	return querysql.FromSpec(s.spec)
}

// Decode parses one query input. Decoding is all-or-nothing; a malformed
// condition on any key fails the whole input with a *jsonlogic.DecodeError
// whose Field names the key.
func (s *Schema) Decode(data []byte) (*Input, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return nil, &jsonlogic.DecodeError{
			Code:     jsonlogic.ErrCodeShapeMismatch,
			Message:  "query input must be a JSON object",
			Expected: "object",
			Err:      err,
		}
	}

	if err := jsonlogic.CheckUniqueKeys(data); err != nil {
		return nil, err
	}
	if s.strict {
		if err := s.checkKeys(obj); err != nil {
			return nil, err
		}
	}

	in := &Input{schema: s}
	for _, c := range s.columns {
		raw, ok := obj[c.spec.Name]
		if !ok || string(raw) == "null" {
			continue
		}
		cond, err := c.decode(raw)
		if err != nil {
			return nil, jsonlogic.WithField(err, c.spec.Name)
		}
		in.conditions = append(in.conditions, cond)
	}

	slog.Debug("query input decoded",
		"query", s.spec.Name,
		"keys", len(obj),
		"conditions", len(in.conditions),
	)
	return in, nil
}

// checkKeys rejects undeclared keys, reporting them in sorted order.
func (s *Schema) checkKeys(obj map[string]json.RawMessage) error {
	declared := make(map[string]bool, len(s.columns))
	for _, c := range s.columns {
		declared[c.spec.Name] = true
	}
	for _, k := range sortedKeys(obj) {
		if !declared[k] {
			return &jsonlogic.DecodeError{
				Code:    jsonlogic.ErrCodeShapeMismatch,
				Message: fmt.Sprintf("unknown field %q", k),
				Field:   k,
				Got:     k,
			}
		}
	}
	return nil
}

// columnFor binds a column to the Go type of its declared value type.
func columnFor(c ir.ColumnSpec) (column, error) {
	switch c.Type {
	case ir.TypeInt:
		return typedColumn[int64](c), nil
	case ir.TypeString:
		return typedColumn[string](c), nil
	case ir.TypeBool:
		return typedColumn[bool](c), nil
	case ir.TypeFloat:
		return typedColumn[float64](c), nil
	case ir.TypeTimestamp:
		return typedColumn[time.Time](c), nil
	default:
		return column{}, fmt.Errorf("column %q: unsupported type %q", c.Name, c.Type)
	}
}

func typedColumn[T any](c ir.ColumnSpec) column {
	binding := jsonlogic.Bind(c.Name, query.NewColumn[T](c.Table, c.Column))
	decode := func(raw json.RawMessage) (Condition, error) {
		e := jsonlogic.Expr[jsonlogic.Bound[T], T]{Binding: binding}
		if err := json.Unmarshal(raw, &e); err != nil {
			return Condition{}, err
		}
		return Condition{
			Field:     c.Name,
			Op:        e.Op,
			Predicate: e.Predicate(),
		}, nil
	}
	return column{spec: c, param: jsonlogic.ParamFor[T](c.Name, c.Ref()), decode: decode}
}
