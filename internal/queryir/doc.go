// Package queryir provides the predicate intermediate representation that
// query builders accumulate.
//
// A JSON Logic payload never reaches a backend directly. It is decoded,
// validated, and folded into a sequence of predicates from this package;
// backends (see querysql) only ever see these types:
//
//	[JSON Logic] → [jsonlogic.Expr] → [queryir.Predicate] → [SQL backend]
//
// PREDICATES:
//
//   - Equals(column, value)       column = value
//   - IsNull(column)              column IS NULL
//   - LessThan(column, value)     column < value
//   - GreaterThan(column, value)  column > value
//   - In(column, values)          column IN (values...)
//   - And(predicates...)          conjunction, used by backends to combine
//     accumulated filters
//
// There is no Or and no Not: conditions are flat and ANDed by presence.
//
// SEALED INTERFACE:
//
// Predicate is sealed using the marker method pattern. Only types in this
// package implement it, which keeps type switches in backends exhaustive:
//
//	switch p := pred.(type) {
//	case Equals:
//	case IsNull:
//	...
//	}
//
// Values are carried as `any` and are always bound as query parameters by
// backends, never interpolated.
package queryir
