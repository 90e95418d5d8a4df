// Package query defines the contract between decoded JSON Logic conditions
// and the query builder they refine.
//
// Column[T] ties a storage column to the Go type of the values it may be
// compared against, so a condition decoded for an int column cannot be
// applied with a string operand. Builder is the erased ("boxed") query type:
// every filter operation returns a refined Builder that can be threaded
// through further calls.
package query

import "github.com/roach88/jsonlogic/internal/queryir"

// Column is a typed reference to a storage column.
type Column[T any] struct {
	ref queryir.ColumnRef
}

// NewColumn returns a typed reference to table.name. table may be empty.
func NewColumn[T any](table, name string) Column[T] {
	return Column[T]{ref: queryir.ColumnRef{Table: table, Name: name}}
}

// Ref returns the untyped column reference.
func (c Column[T]) Ref() queryir.ColumnRef {
	return c.ref
}

// String returns the qualified column name.
func (c Column[T]) String() string {
	return c.ref.String()
}

// Builder accumulates filters. Each call refines the prior result; all
// accumulated filters are combined with AND.
//
// Implementations must not mutate the receiver in a way visible through
// previously returned Builders.
type Builder interface {
	Filter(p queryir.Predicate) Builder
}

// Equal applies "column = v".
func Equal[T any](b Builder, c Column[T], v T) Builder {
	return b.Filter(queryir.Equals{Column: c.ref, Value: v})
}

// IsNull applies "column IS NULL".
func IsNull[T any](b Builder, c Column[T]) Builder {
	return b.Filter(queryir.IsNull{Column: c.ref})
}

// LessThan applies "column < v".
func LessThan[T any](b Builder, c Column[T], v T) Builder {
	return b.Filter(queryir.LessThan{Column: c.ref, Value: v})
}

// GreaterThan applies "column > v".
func GreaterThan[T any](b Builder, c Column[T], v T) Builder {
	return b.Filter(queryir.GreaterThan{Column: c.ref, Value: v})
}

// OneOf applies "column IN (values...)". An empty values slice is passed
// through unchanged; the builder decides how to render it.
func OneOf[T any](b Builder, c Column[T], values []T) Builder {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return b.Filter(queryir.In{Column: c.ref, Values: vs})
}
