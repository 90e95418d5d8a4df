package schema

import (
	"slices"

	"github.com/roach88/jsonlogic/internal/jsonlogic"
	"github.com/roach88/jsonlogic/internal/query"
	"github.com/roach88/jsonlogic/internal/queryir"
)

// Condition is one decoded condition.
type Condition struct {
	Field     string            `json:"field"`
	Op        jsonlogic.Op      `json:"op"`
	Predicate queryir.Predicate `json:"-"`
}

// Input is a decoded query input. It is not modified after Decode.
type Input struct {
	schema     *Schema
	conditions []Condition
}

var _ jsonlogic.Input = (*Input)(nil)

// Apply folds every present condition into b in declaration order.
func (in *Input) Apply(b query.Builder) query.Builder {
	for _, c := range in.conditions {
		b = b.Filter(c.Predicate)
	}
	return b
}

// Fields returns the aggregate's declared column names in order.
func (in *Input) Fields() []string {
	return in.schema.Fields()
}

// Conditions returns the present conditions in declaration order.
func (in *Input) Conditions() []Condition {
	return in.conditions
}

// Empty reports whether no condition is present.
func (in *Input) Empty() bool {
	return len(in.conditions) == 0
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
