package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonlogic/internal/ir"
)

func validSpec() ir.QuerySpec {
	return ir.QuerySpec{
		Name:    "TwoTablesQuery",
		Package: "demo",
		From:    "tbl_one",
		Joins:   []string{"INNER JOIN tbl_two ON tbl_one.id = tbl_two.id"},
		Columns: []ir.ColumnSpec{
			{Name: "tbl_id", Table: "tbl_one", Column: "id", Type: ir.TypeInt},
			{Name: "tbl_two_created_at", Table: "tbl_two", Column: "created_at", Type: ir.TypeTimestamp},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateQuerySpecValid(t *testing.T) {
	spec := validSpec()

	assert.Empty(t, Validate(spec), "valid spec should have no errors")
	assert.Empty(t, Validate(&spec), "pointer form should validate the same")
}

func TestValidateQuerySpecCompiled(t *testing.T) {
	specs := compileCUE(t, twoTablesCUE)
	assert.Empty(t, Validate(specs))
}

func TestValidateQuerySpecErrors(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(*ir.QuerySpec)
		wantCode  string
		wantField string
	}{
		{
			name:      "empty aggregate name",
			mutate:    func(s *ir.QuerySpec) { s.Name = "" },
			wantCode:  ErrQueryNameInvalid,
			wantField: "name",
		},
		{
			name:      "unexported aggregate name",
			mutate:    func(s *ir.QuerySpec) { s.Name = "twoTables" },
			wantCode:  ErrQueryNameInvalid,
			wantField: "name",
		},
		{
			name:      "no columns",
			mutate:    func(s *ir.QuerySpec) { s.Columns = nil },
			wantCode:  ErrQueryNoColumns,
			wantField: "columns",
		},
		{
			name:      "invalid column name",
			mutate:    func(s *ir.QuerySpec) { s.Columns[0].Name = "tbl-id" },
			wantCode:  ErrInvalidColumnName,
			wantField: "columns[0].name",
		},
		{
			name:      "duplicate column name",
			mutate:    func(s *ir.QuerySpec) { s.Columns[1].Name = "tbl_id" },
			wantCode:  ErrDuplicateColumnName,
			wantField: "columns[1].name",
		},
		{
			name:      "unsupported type",
			mutate:    func(s *ir.QuerySpec) { s.Columns[0].Type = "decimal" },
			wantCode:  ErrUnsupportedType,
			wantField: "columns[0].type",
		},
		{
			name:      "empty storage column",
			mutate:    func(s *ir.QuerySpec) { s.Columns[0].Column = "" },
			wantCode:  ErrInvalidColumnRef,
			wantField: "columns[0].column",
		},
		{
			name:      "whitespace in table",
			mutate:    func(s *ir.QuerySpec) { s.Columns[0].Table = "tbl one" },
			wantCode:  ErrInvalidColumnRef,
			wantField: "columns[0].column",
		},
		{
			name:      "unqualified column",
			mutate:    func(s *ir.QuerySpec) { s.Columns[0].Table = "" },
			wantCode:  ErrUnqualifiedColumn,
			wantField: "columns[0].column",
		},
		{
			name:      "invalid package",
			mutate:    func(s *ir.QuerySpec) { s.Package = "func" },
			wantCode:  ErrInvalidPackage,
			wantField: "package",
		},
		{
			name:      "blank join",
			mutate:    func(s *ir.QuerySpec) { s.Joins = append(s.Joins, "  ") },
			wantCode:  ErrInvalidJoin,
			wantField: "joins[1]",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			spec := validSpec()
			tc.mutate(&spec)

			errs := Validate(&spec)
			require.Len(t, errs, 1, "got %v", errs)
			assert.Equal(t, tc.wantCode, errs[0].Code)
			assert.Equal(t, tc.wantField, errs[0].Field)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	spec := ir.QuerySpec{
		Name: "",
		Columns: []ir.ColumnSpec{
			{Name: "a", Column: "a", Type: "decimal"},
			{Name: "a", Table: "t", Column: "a", Type: ir.TypeInt},
		},
	}

	errs := Validate(spec)
	assert.ElementsMatch(t,
		[]string{ErrQueryNameInvalid, ErrUnsupportedType, ErrUnqualifiedColumn, ErrDuplicateColumnName},
		codes(errs))
}

func TestValidateDuplicateAggregates(t *testing.T) {
	specs := []ir.QuerySpec{validSpec(), validSpec()}

	errs := Validate(specs)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateQuery, errs[0].Code)
	assert.Equal(t, "query[1].name", errs[0].Field)
}

func TestValidateSlicePrefixesFields(t *testing.T) {
	spec := validSpec()
	spec.Columns[0].Type = "decimal"

	errs := Validate([]ir.QuerySpec{spec})
	require.Len(t, errs, 1)
	assert.Equal(t, "query.TwoTablesQuery.columns[0].type", errs[0].Field)
}

func TestValidateUnsupportedType(t *testing.T) {
	errs := Validate("not a spec")
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnsupportedIRType, errs[0].Code)
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "columns[0].type", Message: "bad", Code: ErrUnsupportedType}
	assert.Equal(t, "[E205] columns[0].type: bad", err.Error())

	err.Line = 4
	assert.Equal(t, "[E205] line 4: columns[0].type: bad", err.Error())
}
