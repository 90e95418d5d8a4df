package compiler

import (
	"fmt"
	"go/token"
	"regexp"
	"strings"

	"github.com/roach88/jsonlogic/internal/ir"
)

// Validation error codes (E200-E299)
const (
	// General validation errors (E200)
	ErrUnsupportedIRType = "E200" // unsupported IR type for validation

	// QuerySpec errors (E201-E210)
	ErrQueryNameInvalid    = "E201" // aggregate name empty or not an exported identifier
	ErrQueryNoColumns      = "E202" // at least one column required
	ErrInvalidColumnName   = "E203" // logical name is not an identifier
	ErrDuplicateColumnName = "E204" // duplicate logical name
	ErrUnsupportedType     = "E205" // unknown value type
	ErrInvalidColumnRef    = "E206" // malformed storage column reference
	ErrDuplicateQuery      = "E207" // duplicate aggregate name
	ErrUnqualifiedColumn   = "E208" // bare column reference and no "from" table
	ErrInvalidPackage      = "E209" // package is not a valid Go package name
	ErrInvalidJoin         = "E210" // empty join clause
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports QuerySpec and []QuerySpec; a slice is also checked for
// duplicate aggregate names.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.QuerySpec:
		return validateQuerySpec(spec, "")
	case ir.QuerySpec:
		return validateQuerySpec(&spec, "")
	case []ir.QuerySpec:
		return validateQuerySpecs(spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

// validateQuerySpecs validates each aggregate and checks names are unique.
func validateQuerySpecs(specs []ir.QuerySpec) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i := range specs {
		prefix := fmt.Sprintf("query.%s.", specs[i].Name)

		// E207: duplicate aggregate
		if seen[specs[i].Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("query[%d].name", i),
				Message: fmt.Sprintf("duplicate aggregate name: %q", specs[i].Name),
				Code:    ErrDuplicateQuery,
			})
		}
		seen[specs[i].Name] = true

		errs = append(errs, validateQuerySpec(&specs[i], prefix)...)
	}

	return errs
}

// validateQuerySpec validates one aggregate. prefix is prepended to field
// paths.
func validateQuerySpec(spec *ir.QuerySpec, prefix string) []ValidationError {
	var errs []ValidationError

	// E201: aggregate name becomes an exported Go type
	if !isExportedIdentifier(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   prefix + "name",
			Message: fmt.Sprintf("aggregate name %q must be an exported Go identifier", spec.Name),
			Code:    ErrQueryNameInvalid,
		})
	}

	// E209: package name
	if spec.Package != "" && (!identPattern.MatchString(spec.Package) || token.IsKeyword(spec.Package)) {
		errs = append(errs, ValidationError{
			Field:   prefix + "package",
			Message: fmt.Sprintf("invalid Go package name %q", spec.Package),
			Code:    ErrInvalidPackage,
		})
	}

	// E210: joins are emitted verbatim and must not be blank
	for i, join := range spec.Joins {
		if strings.TrimSpace(join) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%sjoins[%d]", prefix, i),
				Message: "join clause must be non-empty",
				Code:    ErrInvalidJoin,
			})
		}
	}

	// E202: at least one column required
	if len(spec.Columns) == 0 {
		errs = append(errs, ValidationError{
			Field:   prefix + "columns",
			Message: "at least one column is required",
			Code:    ErrQueryNoColumns,
		})
	}

	names := make(map[string]bool)
	for i, col := range spec.Columns {
		field := fmt.Sprintf("%scolumns[%d]", prefix, i)

		// E203: logical name must be an identifier
		if !identPattern.MatchString(col.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("invalid column name %q: must match %s", col.Name, identPattern),
				Code:    ErrInvalidColumnName,
			})
		}

		// E204: duplicate logical name
		if names[col.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate column name: %q", col.Name),
				Code:    ErrDuplicateColumnName,
			})
		}
		names[col.Name] = true

		// E205: value type
		if !ir.ValidValueTypes[col.Type] {
			errs = append(errs, ValidationError{
				Field:   field + ".type",
				Message: fmt.Sprintf("unsupported type %q for column %q", col.Type, col.Name),
				Code:    ErrUnsupportedType,
			})
		}

		// E206: storage reference
		if !isValidRefPart(col.Column) || (col.Table != "" && !isValidTableRef(col.Table)) {
			errs = append(errs, ValidationError{
				Field:   field + ".column",
				Message: fmt.Sprintf("malformed column reference %q for column %q", col.Ref(), col.Name),
				Code:    ErrInvalidColumnRef,
			})
		}

		// E208: unqualified reference needs a base table
		if col.Table == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".column",
				Message: fmt.Sprintf("column %q has an unqualified reference %q and the aggregate declares no \"from\" table", col.Name, col.Column),
				Code:    ErrUnqualifiedColumn,
			})
		}
	}

	return errs
}

// identPattern matches logical column names and package names.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// isExportedIdentifier checks the name can be used as an exported Go type.
func isExportedIdentifier(name string) bool {
	return identPattern.MatchString(name) && name[0] >= 'A' && name[0] <= 'Z'
}

// isValidRefPart checks one segment of a storage reference.
func isValidRefPart(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\r\n\"")
}

// isValidTableRef checks a possibly schema-qualified table ("schema.table").
func isValidTableRef(table string) bool {
	for _, part := range strings.Split(table, ".") {
		if !isValidRefPart(part) {
			return false
		}
	}
	return true
}
