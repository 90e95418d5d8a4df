// Package jsonlogic decodes flat JSON Logic conditions into typed,
// column-bound expressions and folds them into a query.Builder.
//
// A condition on the wire is an object with one operator key mapped to a
// two-element operand array:
//
//	{"==": [{"var": "ts"}, null]}
//	{"<":  [{"var": "best"}, 1]}
//	{">":  [{"var": "best"}, 1]}
//	{"in": [{"var": "notes"}, ["a", "b"]]}
//
// Column identity is carried in the type system. A column descriptor is a
// zero-size type implementing Column[T]; Name[C] only decodes from the
// descriptor's exact logical name; Var[C, T] is the {"var": ...} operand and
// resolves to the descriptor's storage column; Expr[B, T] is the condition
// itself. A query-input aggregate is a plain struct with one optional
// *Expr field per column, usually produced by the codegen package, and
// its Apply method calls Apply once per field in declaration order.
//
// Boolean composition (nested and/or) is not supported. Every present
// field contributes one filter and all filters are combined with AND.
//
// Every decoding failure is reported as a *DecodeError.
package jsonlogic
