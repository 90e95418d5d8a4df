package query

import "github.com/roach88/jsonlogic/internal/queryir"

// Recorder is a Builder that records the filters applied to it, in order.
// It executes nothing; it is used to inspect what a condition set would do.
type Recorder struct {
	filters []queryir.Predicate
}

// Filter returns a new Recorder with p appended.
func (r Recorder) Filter(p queryir.Predicate) Builder {
	next := make([]queryir.Predicate, len(r.filters), len(r.filters)+1)
	copy(next, r.filters)
	return Recorder{filters: append(next, p)}
}

// Filters returns the recorded filters in application order.
func (r Recorder) Filters() []queryir.Predicate {
	return r.filters
}

// Predicate returns the recorded filters as a single conjunction.
func (r Recorder) Predicate() queryir.Predicate {
	return queryir.And{Predicates: r.filters}
}

// Filters extracts the recorded filters from b if it is a Recorder.
func Filters(b Builder) []queryir.Predicate {
	if r, ok := b.(Recorder); ok {
		return r.Filters()
	}
	return nil
}
