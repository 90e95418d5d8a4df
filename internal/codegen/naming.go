package codegen

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/jsonlogic/internal/ir"
)

// CamelCase converts a snake_case logical name to an exported Go
// identifier: "tbl_two_created_at" becomes "TblTwoCreatedAt".
func CamelCase(name string) string {
	var sb strings.Builder
	for _, part := range strings.Split(name, "_") {
		if part == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(part)
		sb.WriteRune(unicode.ToUpper(r))
		sb.WriteString(part[size:])
	}
	return sb.String()
}

// SnakeCase converts an aggregate name to a file stem:
// "TwoTablesQuery" becomes "two_tables_query".
func SnakeCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FileName returns the generated file name for an aggregate.
func FileName(spec ir.QuerySpec) string {
	return SnakeCase(spec.Name) + "_gen.go"
}

// methodNames are the aggregate's generated methods; no field may share
// their names.
var methodNames = map[string]bool{
	"Apply":     true,
	"Fields":    true,
	"NewSelect": true,
}

// identifiers lists every top-level identifier generated for spec.
func identifiers(spec ir.QuerySpec) ([]string, error) {
	ids := []string{spec.Name, "Decode" + spec.Name}
	fields := make(map[string]string, len(spec.Columns))
	for _, c := range spec.Columns {
		field := CamelCase(c.Name)
		if field == "" {
			return nil, fmt.Errorf("column %q: no Go identifier can be derived", c.Name)
		}
		if methodNames[field] {
			return nil, fmt.Errorf("column %q: field %s would shadow a generated method", c.Name, field)
		}
		if prev, ok := fields[field]; ok {
			return nil, fmt.Errorf("columns %q and %q both generate %s", prev, c.Name, field)
		}
		fields[field] = c.Name
		ids = append(ids, field+"Column", field+"Var")
	}
	return ids, nil
}

// checkCollisions reports identifiers generated more than once across
// aggregates sharing one Go package.
func checkCollisions(specs []ir.QuerySpec) error {
	owner := make(map[string]string)
	for _, spec := range specs {
		ids, err := identifiers(spec)
		if err != nil {
			return fmt.Errorf("query %s: %w", spec.Name, err)
		}
		for _, id := range ids {
			if prev, ok := owner[id]; ok {
				return fmt.Errorf("identifier %s is generated by both %s and %s", id, prev, spec.Name)
			}
			owner[id] = spec.Name
		}
	}
	return nil
}
