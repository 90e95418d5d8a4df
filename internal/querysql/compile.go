package querysql

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/jsonlogic/internal/queryir"
)

// Dialect selects placeholder syntax.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"   // ? placeholders
	DialectPostgres Dialect = "postgres" // $1, $2, ... placeholders
)

// ParamLabel names the n-th (1-based) bound parameter in the dialect's
// numbered form: ?n for SQLite, $n for Postgres.
func (d Dialect) ParamLabel(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?" + strconv.Itoa(n)
}

// ValidDialects lists the supported dialects.
var ValidDialects = []Dialect{DialectSQLite, DialectPostgres}

// ParseDialect validates a dialect name.
func ParseDialect(name string) (Dialect, error) {
	for _, d := range ValidDialects {
		if string(d) == name {
			return d, nil
		}
	}
	return "", fmt.Errorf("unsupported dialect %q: must be one of %v", name, ValidDialects)
}

// SQLCompiler compiles a Select to parameterized SQL.
//
// CRITICAL: All values are parameterized, never interpolated.
// Filters are rendered in application order and joined with AND.
type SQLCompiler struct {
	Dialect Dialect

	params []any
}

// NewSQLCompiler creates a compiler for the given dialect.
func NewSQLCompiler(d Dialect) *SQLCompiler {
	if d == "" {
		d = DialectSQLite
	}
	return &SQLCompiler{Dialect: d}
}

// Compile converts a Select to parameterized SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(s Select) (string, []any, error) {
	if s.from == "" {
		return "", nil, fmt.Errorf("cannot compile select without FROM table")
	}
	c.params = nil

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(c.compileColumns(s.columns))
	sb.WriteString(" FROM ")
	sb.WriteString(c.quoteRef(s.from))

	for _, j := range s.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}

	if len(s.filters) > 0 {
		where, err := c.compileAnd(queryir.And{Predicates: s.filters}, false)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}

	if len(s.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(s.orderBy, ", "))
	}

	if s.limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", s.limit)
	}

	return sb.String(), c.params, nil
}

// CompilePredicate compiles a single predicate to a WHERE fragment.
func (c *SQLCompiler) CompilePredicate(p queryir.Predicate) (string, []any, error) {
	c.params = nil
	sql, err := c.compilePredicate(p)
	if err != nil {
		return "", nil, err
	}
	return sql, c.params, nil
}

// compileColumns renders the projection list.
func (c *SQLCompiler) compileColumns(columns []string) string {
	if len(columns) == 0 {
		return "*"
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = c.quoteRef(col)
	}
	return strings.Join(parts, ", ")
}

// compilePredicate compiles a predicate to a SQL fragment, appending params.
// CRITICAL: Values NEVER interpolated - always placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, error) {
	if p == nil {
		return "1 = 1", nil
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileBinary(pred.Column, "=", pred.Value), nil
	case queryir.LessThan:
		return c.compileBinary(pred.Column, "<", pred.Value), nil
	case queryir.GreaterThan:
		return c.compileBinary(pred.Column, ">", pred.Value), nil
	case queryir.IsNull:
		return c.column(pred.Column) + " IS NULL", nil
	case queryir.In:
		return c.compileIn(pred), nil
	case queryir.And:
		return c.compileAnd(pred, true)
	default:
		return "", fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileBinary compiles "column <op> ?".
func (c *SQLCompiler) compileBinary(col queryir.ColumnRef, op string, value any) string {
	return fmt.Sprintf("%s %s %s", c.column(col), op, c.bind(value))
}

// compileIn compiles "column IN (?, ?, ...)".
// An empty set matches nothing and renders as a constant false, since
// "IN ()" is not valid in every dialect.
func (c *SQLCompiler) compileIn(in queryir.In) string {
	if len(in.Values) == 0 {
		return "1 = 0"
	}
	placeholders := make([]string, len(in.Values))
	for i, v := range in.Values {
		placeholders[i] = c.bind(v)
	}
	return fmt.Sprintf("%s IN (%s)", c.column(in.Column), strings.Join(placeholders, ", "))
}

// compileAnd compiles a conjunction. Nested conjunctions with more than one
// term are parenthesized.
func (c *SQLCompiler) compileAnd(and queryir.And, nested bool) (string, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil // vacuous truth
	}

	parts := make([]string, 0, len(and.Predicates))
	for _, pred := range and.Predicates {
		sql, err := c.compilePredicate(pred)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}

	sql := strings.Join(parts, " AND ")
	if nested && len(parts) > 1 {
		sql = "(" + sql + ")"
	}
	return sql, nil
}

// column renders a quoted column reference.
func (c *SQLCompiler) column(ref queryir.ColumnRef) string {
	if ref.Table == "" {
		return c.quoteIdent(ref.Name)
	}
	return c.quoteIdent(ref.Table) + "." + c.quoteIdent(ref.Name)
}

// bind records a parameter and returns its placeholder.
func (c *SQLCompiler) bind(v any) string {
	c.params = append(c.params, v)
	if c.Dialect == DialectPostgres {
		return fmt.Sprintf("$%d", len(c.params))
	}
	return "?"
}

// Compile compiles s with a fresh compiler for the dialect.
func Compile(s Select, d Dialect) (string, []any, error) {
	return NewSQLCompiler(d).Compile(s)
}

// Debug renders s as "<sql> -- binds: [<params>]" for logs and golden files.
func Debug(s Select, d Dialect) (string, error) {
	sql, params, err := Compile(s, d)
	if err != nil {
		return "", err
	}
	binds := make([]string, len(params))
	for i, p := range params {
		binds[i] = FormatBind(p)
	}
	return fmt.Sprintf("%s -- binds: [%s]", sql, strings.Join(binds, ", ")), nil
}

// FormatBind renders a parameter value for display.
func FormatBind(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("%q", val)
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", val)
	}
}
