package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/jsonlogic/internal/ir"
)

// CompileQuery parses a CUE value into a QuerySpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the aggregate struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`query: TwoTablesQuery: { ... }`)
//	spec, err := CompileQuery(v.LookupPath(cue.ParsePath("query.TwoTablesQuery")))
//
// Columns keep their CUE declaration order. Unqualified column references
// are qualified with from. The result is not validated; call Validate.
func CompileQuery(v cue.Value) (*ir.QuerySpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.QuerySpec{}

	// Aggregate name from struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	var err error
	if spec.Package, err = optionalString(v, "package"); err != nil {
		return nil, err
	}
	if spec.From, err = optionalString(v, "from"); err != nil {
		return nil, err
	}

	// Parse joins (optional)
	joinsVal := v.LookupPath(cue.ParsePath("joins"))
	if joinsVal.Exists() {
		iter, err := joinsVal.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			join, err := iter.Value().String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			spec.Joins = append(spec.Joins, join)
		}
	}

	// Parse columns (required)
	spec.Columns, err = parseColumns(v, spec.From)
	if err != nil {
		return nil, err
	}
	if len(spec.Columns) == 0 {
		return nil, &CompileError{
			Field:   "columns",
			Message: "at least one column is required",
			Pos:     v.Pos(),
		}
	}

	return spec, nil
}

// CompileManifest compiles every aggregate declared under the top-level
// "query" struct, in declaration order. Returns on the first error.
func CompileManifest(v cue.Value) ([]ir.QuerySpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	queryVal := v.LookupPath(cue.ParsePath("query"))
	if !queryVal.Exists() {
		return nil, &CompileError{
			Field:   "query",
			Message: "no query aggregates declared",
			Pos:     v.Pos(),
		}
	}

	iter, err := queryVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []ir.QuerySpec
	for iter.Next() {
		spec, err := CompileQuery(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("query.%s: %w", iter.Label(), err)
		}
		specs = append(specs, *spec)
	}
	return specs, nil
}

// parseColumns extracts column descriptors in declaration order.
func parseColumns(v cue.Value, from string) ([]ir.ColumnSpec, error) {
	var columns []ir.ColumnSpec

	columnsVal := v.LookupPath(cue.ParsePath("columns"))
	if !columnsVal.Exists() {
		return columns, nil
	}

	iter, err := columnsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		colVal := iter.Value()

		refVal := colVal.LookupPath(cue.ParsePath("column"))
		if !refVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("columns.%s.column", name),
				Message: "column reference is required",
				Pos:     colVal.Pos(),
			}
		}
		ref, err := refVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		typeVal := colVal.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("columns.%s.type", name),
				Message: "column type is required",
				Pos:     colVal.Pos(),
			}
		}
		valueType, err := extractValueType(typeVal)
		if err != nil {
			return nil, err
		}

		columns = append(columns, makeColumn(name, ref, valueType, from))
	}

	return columns, nil
}

// makeColumn builds a column descriptor, qualifying a bare reference with
// the base table.
func makeColumn(name, ref string, t ir.ValueType, from string) ir.ColumnSpec {
	table, column := ir.SplitRef(ref)
	if table == "" {
		table = from
	}
	return ir.ColumnSpec{
		Name:   name,
		Table:  table,
		Column: column,
		Type:   t,
	}
}

// extractValueType reads a column type. A concrete string names the type
// directly ("int", "timestamp", ...); a bare CUE type (int, string, bool,
// float) is mapped from its kind.
func extractValueType(v cue.Value) (ir.ValueType, error) {
	if s, err := v.String(); err == nil {
		return ir.ValueType(s), nil
	}

	switch v.IncompleteKind() {
	case cue.StringKind:
		return ir.TypeString, nil
	case cue.IntKind:
		return ir.TypeInt, nil
	case cue.BoolKind:
		return ir.TypeBool, nil
	case cue.FloatKind, cue.NumberKind:
		return ir.TypeFloat, nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// optionalString reads an optional string field.
func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
