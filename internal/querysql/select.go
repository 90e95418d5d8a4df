package querysql

import (
	"github.com/roach88/jsonlogic/internal/ir"
	"github.com/roach88/jsonlogic/internal/query"
	"github.com/roach88/jsonlogic/internal/queryir"
)

// Select is an erased ("boxed") SELECT statement that accumulates filters.
//
// Select is immutable: Filter and the other refinement methods return a new
// Select and never modify the receiver, so one base statement can be refined
// independently by concurrent requests.
//
// Semantics:
//
//	SELECT <columns> FROM <from> <joins...>
//	WHERE <filter1> AND <filter2> ...
//	ORDER BY <order...> LIMIT <limit>
type Select struct {
	from    string
	joins   []string
	columns []string
	orderBy []string
	limit   int
	filters []queryir.Predicate
}

var _ query.Builder = Select{}

// NewSelect starts a statement over the given table.
func NewSelect(from string) Select {
	return Select{from: from}
}

// FromSpec starts a statement over an aggregate's base table and joins.
func FromSpec(spec ir.QuerySpec) Select {
	s := NewSelect(spec.From)
	for _, j := range spec.Joins {
		s = s.Join(j)
	}
	return s
}

// Filter implements query.Builder. A nil predicate is ignored.
func (s Select) Filter(p queryir.Predicate) query.Builder {
	if p == nil {
		return s
	}
	next := s.clone()
	next.filters = append(next.filters, p)
	return next
}

// Join appends a raw join clause, e.g. "INNER JOIN t2 ON t1.id = t2.id".
func (s Select) Join(clause string) Select {
	next := s.clone()
	next.joins = append(next.joins, clause)
	return next
}

// Columns sets the projection. An empty projection selects *.
// Each column may be qualified ("table.column").
func (s Select) Columns(columns ...string) Select {
	next := s.clone()
	next.columns = append([]string(nil), columns...)
	return next
}

// OrderBy appends ORDER BY terms. Terms are emitted verbatim.
func (s Select) OrderBy(terms ...string) Select {
	next := s.clone()
	next.orderBy = append(next.orderBy, terms...)
	return next
}

// Limit sets the LIMIT clause. Zero means no limit.
func (s Select) Limit(n int) Select {
	next := s.clone()
	next.limit = n
	return next
}

// From returns the base table.
func (s Select) From() string {
	return s.from
}

// Filters returns the accumulated filters in application order.
func (s Select) Filters() []queryir.Predicate {
	return s.filters
}

// Predicate returns the accumulated filters as one conjunction.
func (s Select) Predicate() queryir.Predicate {
	return queryir.And{Predicates: s.filters}
}

// clone copies every slice so appends on the copy never alias the receiver.
func (s Select) clone() Select {
	return Select{
		from:    s.from,
		joins:   append([]string(nil), s.joins...),
		columns: append([]string(nil), s.columns...),
		orderBy: append([]string(nil), s.orderBy...),
		limit:   s.limit,
		filters: append([]queryir.Predicate(nil), s.filters...),
	}
}

// AsSelect recovers the Select behind a query.Builder.
func AsSelect(b query.Builder) (Select, bool) {
	switch s := b.(type) {
	case Select:
		return s, true
	case *Select:
		if s == nil {
			return Select{}, false
		}
		return *s, true
	default:
		return Select{}, false
	}
}
