package ir

import "strings"

// ValueType is the declared operand type of a queryable column.
type ValueType string

const (
	TypeInt       ValueType = "int"
	TypeString    ValueType = "string"
	TypeBool      ValueType = "bool"
	TypeFloat     ValueType = "float"
	TypeTimestamp ValueType = "timestamp"
)

// ValidValueTypes defines the supported value types.
var ValidValueTypes = map[ValueType]bool{
	TypeInt:       true,
	TypeString:    true,
	TypeBool:      true,
	TypeFloat:     true,
	TypeTimestamp: true,
}

// GoType returns the Go type operands of this value type decode into.
// Returns "" for unsupported types.
func (t ValueType) GoType() string {
	switch t {
	case TypeInt:
		return "int64"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeFloat:
		return "float64"
	case TypeTimestamp:
		return "time.Time"
	default:
		return ""
	}
}

// Ordered reports whether < and > are meaningful for the type.
func (t ValueType) Ordered() bool {
	return t != TypeBool
}

// ColumnSpec is one column descriptor: a logical name exposed on the wire,
// the storage column it resolves to, and its value type.
type ColumnSpec struct {
	Name   string    `json:"name"`   // logical name, e.g. "tbl_id"
	Table  string    `json:"table"`  // storage table, e.g. "tbl_one"
	Column string    `json:"column"` // storage column, e.g. "id"
	Type   ValueType `json:"type"`
}

// Ref returns the qualified storage reference ("table.column").
func (c ColumnSpec) Ref() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// QuerySpec is a compiled query aggregate.
type QuerySpec struct {
	Name    string       `json:"name"`              // aggregate type name, e.g. "TwoTablesQuery"
	Package string       `json:"package,omitempty"` // Go package for generated code
	From    string       `json:"from"`              // base table
	Joins   []string     `json:"joins,omitempty"`   // raw join clauses, in order
	Columns []ColumnSpec `json:"columns"`           // declaration order is significant
}

// Column returns the column with the given logical name.
func (q QuerySpec) Column(name string) (ColumnSpec, bool) {
	for _, c := range q.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnSpec{}, false
}

// ColumnNames returns logical names in declaration order.
func (q QuerySpec) ColumnNames() []string {
	names := make([]string, len(q.Columns))
	for i, c := range q.Columns {
		names[i] = c.Name
	}
	return names
}

// SplitRef splits "table.column" into its parts. An unqualified reference
// returns an empty table.
func SplitRef(ref string) (table, column string) {
	if i := strings.LastIndex(ref, "."); i >= 0 {
		return ref[:i], ref[i+1:]
	}
	return "", ref
}
