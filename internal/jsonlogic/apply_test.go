package jsonlogic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonlogic/internal/query"
	"github.com/roach88/jsonlogic/internal/queryir"
	"github.com/roach88/jsonlogic/internal/querysql"
)

var (
	bestRef  = queryir.ColumnRef{Table: "my_tbl", Name: "best_column"}
	tsRef    = queryir.ColumnRef{Table: "my_tbl", Name: "ts_column"}
	notesRef = queryir.ColumnRef{Table: "my_tbl", Name: "notes_column"}
)

func decodeQuery(t *testing.T, input string) *testQuery {
	t.Helper()
	var q testQuery
	require.NoError(t, Unmarshal([]byte(input), &q))
	return &q
}

func compileSQL(t *testing.T, b query.Builder) (string, []any) {
	t.Helper()
	sel, ok := querysql.AsSelect(b)
	require.True(t, ok)
	sql, params, err := querysql.Compile(sel, querysql.DialectSQLite)
	require.NoError(t, err)
	return sql, params
}

func TestApply_Scenarios(t *testing.T) {
	testCases := []struct {
		name       string
		input      string
		wantSQL    string
		wantParams []any
	}{
		{
			name:       "less than",
			input:      `{"best": {"<": [{"var": "best"}, 1]}}`,
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.best_column < ?",
			wantParams: []any{int64(1)},
		},
		{
			name:    "equals null is IS NULL",
			input:   `{"ts": {"==": [{"var": "ts"}, null]}}`,
			wantSQL: "SELECT * FROM my_tbl WHERE my_tbl.ts_column IS NULL",
		},
		{
			name:       "in",
			input:      `{"notes": {"in": [{"var": "notes"}, ["a", "b"]]}}`,
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.notes_column IN (?, ?)",
			wantParams: []any{"a", "b"},
		},
		{
			name:    "in empty set matches nothing",
			input:   `{"notes": {"in": [{"var": "notes"}, []]}}`,
			wantSQL: "SELECT * FROM my_tbl WHERE 1 = 0",
		},
		{
			name:       "two fields combined with AND",
			input:      `{"best": {">": [{"var": "best"}, 3]}, "notes": {"==": [{"var": "notes"}, "x"]}}`,
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.best_column > ? AND my_tbl.notes_column = ?",
			wantParams: []any{int64(3), "x"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := decodeQuery(t, tc.input)

			sql, params := compileSQL(t, q.Apply(querysql.NewSelect("my_tbl")))
			assert.Equal(t, tc.wantSQL, sql)
			assert.Equal(t, tc.wantParams, params)
		})
	}
}

func TestApply_DeclarationOrder(t *testing.T) {
	// JSON keys deliberately reversed relative to field declaration
	q := decodeQuery(t, `{
		"notes": {"in": [{"var": "notes"}, ["a"]]},
		"ts": {"==": [{"var": "ts"}, null]},
		"best": {"<": [{"var": "best"}, 1]}
	}`)

	filters := query.Filters(q.Apply(query.Recorder{}))

	require.Len(t, filters, 3)
	assert.Equal(t, queryir.LessThan{Column: bestRef, Value: int64(1)}, filters[0])
	assert.Equal(t, queryir.IsNull{Column: tsRef}, filters[1])
	assert.Equal(t, queryir.In{Column: notesRef, Values: []any{"a"}}, filters[2])
}

func TestApply_AbsentFieldsContributeNothing(t *testing.T) {
	q := decodeQuery(t, `{}`)

	base := querysql.NewSelect("my_tbl").Limit(5)
	got := q.Apply(base)

	assert.Equal(t, base, got)
}

func TestApply_Idempotent(t *testing.T) {
	q := decodeQuery(t, `{"best": {">": [{"var": "best"}, 3]}, "ts": {"==": [{"var": "ts"}, null]}}`)

	first := query.Filters(q.Apply(query.Recorder{}))
	second := query.Filters(q.Apply(query.Recorder{}))

	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestApply_SingleExpression(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		pred queryir.Predicate
		want queryir.Predicate
	}{
		{name: "equal", pred: bestVar{}.Equal(2).Predicate(), want: queryir.Equals{Column: bestRef, Value: int64(2)}},
		{name: "is null", pred: tsVar{}.IsNull().Predicate(), want: queryir.IsNull{Column: tsRef}},
		{name: "less", pred: bestVar{}.Less(2).Predicate(), want: queryir.LessThan{Column: bestRef, Value: int64(2)}},
		{name: "greater", pred: tsVar{}.Greater(when).Predicate(), want: queryir.GreaterThan{Column: tsRef, Value: when}},
		{name: "in", pred: notesVar{}.In("a").Predicate(), want: queryir.In{Column: notesRef, Values: []any{"a"}}},
		{name: "in none", pred: notesVar{}.In().Predicate(), want: queryir.In{Column: notesRef, Values: []any{}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.pred)
		})
	}
}

func TestApply_NilExpression(t *testing.T) {
	var e *Expr[bestVar, int64]
	b := query.Recorder{}

	assert.Equal(t, b, Apply(e, b))
	assert.Nil(t, e.Predicate())
}
