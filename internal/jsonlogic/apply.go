package jsonlogic

import (
	"github.com/roach88/jsonlogic/internal/query"
	"github.com/roach88/jsonlogic/internal/queryir"
)

// Input is a decoded query-input aggregate. Apply folds every present
// condition into b, one filter per field in the order Fields reports.
type Input interface {
	Apply(b query.Builder) query.Builder
	Fields() []string
}

// Apply folds one optional condition into b. A nil condition leaves b
// unchanged.
//
//	==  with a value  column = v
//	==  with null     column IS NULL
//	<                 column < v
//	>                 column > v
//	in                column IN (values), an empty set is passed through
//
// Apply has no failure path: conditions are validated when decoded. An
// expression built by hand with OpLess or OpGreater must carry a Value.
func Apply[B Binding[T], T any](e *Expr[B, T], b query.Builder) query.Builder {
	if e == nil {
		return b
	}
	col := e.Binding.Resolve()
	switch e.Op {
	case OpEqual:
		if e.Value == nil {
			return query.IsNull(b, col)
		}
		return query.Equal(b, col, *e.Value)
	case OpLess:
		return query.LessThan(b, col, *e.Value)
	case OpGreater:
		return query.GreaterThan(b, col, *e.Value)
	case OpIn:
		return query.OneOf(b, col, e.Values)
	default:
		return b
	}
}

// Predicate returns the filter e would apply, or nil for a nil or zero
// expression.
func (e *Expr[B, T]) Predicate() queryir.Predicate {
	filters := query.Filters(Apply(e, query.Recorder{}))
	if len(filters) == 0 {
		return nil
	}
	return filters[0]
}
