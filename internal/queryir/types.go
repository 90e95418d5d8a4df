package queryir

// ColumnRef identifies a storage column.
type ColumnRef struct {
	Table string // may be empty for unqualified columns
	Name  string
}

// String returns the qualified reference ("table.name").
func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Name
	}
	return c.Table + "." + c.Name
}

// Predicate represents a filter condition.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode()
	// Ref returns the column the predicate constrains. And returns the zero
	// ColumnRef.
	Ref() ColumnRef
}

// Equals represents a column-equals-value predicate.
//
// Semantics:
//
//	<column> = <value>
//
// A nil Value never matches in SQL; use IsNull for IS NULL semantics.
type Equals struct {
	Column ColumnRef
	Value  any
}

func (Equals) predicateNode()   {}
func (p Equals) Ref() ColumnRef { return p.Column }

// IsNull represents a column-is-null predicate.
//
// Semantics:
//
//	<column> IS NULL
type IsNull struct {
	Column ColumnRef
}

func (IsNull) predicateNode()   {}
func (p IsNull) Ref() ColumnRef { return p.Column }

// LessThan represents a column-less-than-value predicate.
//
// Semantics:
//
//	<column> < <value>
type LessThan struct {
	Column ColumnRef
	Value  any
}

func (LessThan) predicateNode()   {}
func (p LessThan) Ref() ColumnRef { return p.Column }

// GreaterThan represents a column-greater-than-value predicate.
//
// Semantics:
//
//	<column> > <value>
type GreaterThan struct {
	Column ColumnRef
	Value  any
}

func (GreaterThan) predicateNode()   {}
func (p GreaterThan) Ref() ColumnRef { return p.Column }

// In represents a set-membership predicate.
//
// Semantics:
//
//	<column> IN (<values...>)
//
// An empty Values slice matches nothing. Backends render it natively; it is
// not special-cased when the predicate is built.
type In struct {
	Column ColumnRef
	Values []any
}

func (In) predicateNode()   {}
func (p In) Ref() ColumnRef { return p.Column }

// And represents a conjunction of predicates (all must be true).
//
// Semantics:
//
//	<predicate1> AND <predicate2> AND ... AND <predicateN>
//
// Empty Predicates means "always true".
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
func (And) Ref() ColumnRef { return ColumnRef{} }
