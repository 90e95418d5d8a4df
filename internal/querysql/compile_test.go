package querysql

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/jsonlogic/internal/ir"
	"github.com/roach88/jsonlogic/internal/query"
	"github.com/roach88/jsonlogic/internal/queryir"
)

var (
	bestColumn  = queryir.ColumnRef{Table: "my_tbl", Name: "best_column"}
	notesColumn = queryir.ColumnRef{Table: "my_tbl", Name: "notes"}
	tsColumn    = queryir.ColumnRef{Table: "my_tbl", Name: "ts"}
)

func filtered(preds ...queryir.Predicate) Select {
	var b query.Builder = NewSelect("my_tbl")
	for _, p := range preds {
		b = b.Filter(p)
	}
	s, _ := AsSelect(b)
	return s
}

func TestCompile_SinglePredicates(t *testing.T) {
	testCases := []struct {
		name       string
		pred       queryir.Predicate
		wantSQL    string
		wantParams []any
	}{
		{
			name:       "equals",
			pred:       queryir.Equals{Column: bestColumn, Value: int64(1)},
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.best_column = ?",
			wantParams: []any{int64(1)},
		},
		{
			name:       "is null",
			pred:       queryir.IsNull{Column: tsColumn},
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.ts IS NULL",
			wantParams: nil,
		},
		{
			name:       "less than",
			pred:       queryir.LessThan{Column: bestColumn, Value: int64(1)},
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.best_column < ?",
			wantParams: []any{int64(1)},
		},
		{
			name:       "greater than",
			pred:       queryir.GreaterThan{Column: bestColumn, Value: int64(7)},
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.best_column > ?",
			wantParams: []any{int64(7)},
		},
		{
			name:       "in",
			pred:       queryir.In{Column: notesColumn, Values: []any{"a", "b"}},
			wantSQL:    "SELECT * FROM my_tbl WHERE my_tbl.notes IN (?, ?)",
			wantParams: []any{"a", "b"},
		},
		{
			name:       "empty in matches nothing",
			pred:       queryir.In{Column: notesColumn},
			wantSQL:    "SELECT * FROM my_tbl WHERE 1 = 0",
			wantParams: nil,
		},
		{
			name:       "empty and",
			pred:       queryir.And{},
			wantSQL:    "SELECT * FROM my_tbl WHERE 1 = 1",
			wantParams: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, params, err := Compile(filtered(tc.pred), DialectSQLite)
			require.NoError(t, err)

			assert.Equal(t, tc.wantSQL, sql, "SQL mismatch")
			assert.Equal(t, tc.wantParams, params, "Parameters mismatch")
		})
	}
}

func TestCompile_FiltersJoinedWithAndInOrder(t *testing.T) {
	s := filtered(
		queryir.LessThan{Column: bestColumn, Value: int64(1)},
		queryir.In{Column: notesColumn, Values: []any{"a"}},
		queryir.IsNull{Column: tsColumn},
	)

	sql, params, err := Compile(s, DialectSQLite)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM my_tbl WHERE my_tbl.best_column < ? AND my_tbl.notes IN (?) AND my_tbl.ts IS NULL", sql)
	assert.Equal(t, []any{int64(1), "a"}, params)
}

func TestCompile_PostgresPlaceholders(t *testing.T) {
	s := filtered(
		queryir.GreaterThan{Column: bestColumn, Value: int64(1)},
		queryir.In{Column: notesColumn, Values: []any{"a", "b"}},
		queryir.Equals{Column: bestColumn, Value: int64(3)},
	)

	sql, params, err := Compile(s, DialectPostgres)
	require.NoError(t, err)

	assert.Equal(t, "SELECT * FROM my_tbl WHERE my_tbl.best_column > $1 AND my_tbl.notes IN ($2, $3) AND my_tbl.best_column = $4", sql)
	assert.Len(t, params, 4)
}

func TestCompile_NestedAndParenthesized(t *testing.T) {
	s := filtered(
		queryir.Equals{Column: bestColumn, Value: int64(1)},
		queryir.And{Predicates: []queryir.Predicate{
			queryir.LessThan{Column: bestColumn, Value: int64(5)},
			queryir.GreaterThan{Column: bestColumn, Value: int64(0)},
		}},
	)

	sql, _, err := Compile(s, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM my_tbl WHERE my_tbl.best_column = ? AND (my_tbl.best_column < ? AND my_tbl.best_column > ?)", sql)
}

func TestCompile_NoStringInterpolation(t *testing.T) {
	dangerousValue := "'; DROP TABLE my_tbl; --"

	sql, params, err := Compile(filtered(queryir.Equals{Column: notesColumn, Value: dangerousValue}), DialectSQLite)
	require.NoError(t, err)

	assert.NotContains(t, sql, dangerousValue, "Value MUST NOT be interpolated into SQL")
	assert.Contains(t, params, dangerousValue)
	assert.Contains(t, sql, "my_tbl.notes = ?")
}

func TestCompile_QuotesIdentifiers(t *testing.T) {
	s := NewSelect("user").Columns("user.id", "order").
		Filter(queryir.Equals{Column: queryir.ColumnRef{Table: "user", Name: "first name"}, Value: "x"})

	sql, _, err := Compile(s.(Select), DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "user".id, "order" FROM "user" WHERE "user"."first name" = ?`, sql)
}

func TestQuoteIdent_PerDialect(t *testing.T) {
	tests := []struct {
		name     string
		sqlite   string
		postgres string
	}{
		{"tbl_one", "tbl_one", "tbl_one"},
		{"order", `"order"`, `"order"`},
		{"createdAt", "createdAt", `"createdAt"`},
		{"glob", `"glob"`, "glob"},
		{"window", "window", `"window"`},
		{"offset", `"offset"`, `"offset"`},
		{"2fa", `"2fa"`, `"2fa"`},
		{`say "hi"`, `"say ""hi"""`, `"say ""hi"""`},
		{"", `""`, `""`},
	}

	sqlite := NewSQLCompiler(DialectSQLite)
	postgres := NewSQLCompiler(DialectPostgres)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sqlite, sqlite.quoteIdent(tt.name))
			assert.Equal(t, tt.postgres, postgres.quoteIdent(tt.name))
		})
	}

	assert.Equal(t, `"order".*`, sqlite.quoteRef("order.*"))
	assert.Equal(t, "*", postgres.quoteRef("*"))
}

func TestCompile_Clauses(t *testing.T) {
	s := NewSelect("tbl_one").
		Join("INNER JOIN tbl_two ON tbl_one.id = tbl_two.id").
		Columns("tbl_one.id", "tbl_two.*").
		OrderBy("tbl_one.id ASC").
		Limit(10)

	sql, params, err := Compile(s, DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT tbl_one.id, tbl_two.* FROM tbl_one INNER JOIN tbl_two ON tbl_one.id = tbl_two.id ORDER BY tbl_one.id ASC LIMIT 10", sql)
	assert.Nil(t, params)
}

func TestFromSpec(t *testing.T) {
	spec := ir.QuerySpec{
		Name:  "TwoTablesQuery",
		From:  "tbl_one",
		Joins: []string{"INNER JOIN tbl_two ON tbl_one.id = tbl_two.id"},
	}

	sql, _, err := Compile(FromSpec(spec), DialectSQLite)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM tbl_one INNER JOIN tbl_two ON tbl_one.id = tbl_two.id", sql)
}

func TestCompile_Errors(t *testing.T) {
	_, _, err := Compile(Select{}, DialectSQLite)
	assert.ErrorContains(t, err, "FROM")

	type bogus struct{ queryir.Predicate }
	_, _, err = NewSQLCompiler(DialectSQLite).CompilePredicate(bogus{})
	assert.ErrorContains(t, err, "unsupported predicate type")
}

func TestCompilePredicate(t *testing.T) {
	c := NewSQLCompiler(DialectPostgres)

	sql, params, err := c.CompilePredicate(queryir.In{Column: notesColumn, Values: []any{"a"}})
	require.NoError(t, err)
	assert.Equal(t, "my_tbl.notes IN ($1)", sql)
	assert.Equal(t, []any{"a"}, params)

	// Placeholder numbering restarts per call
	sql, _, err = c.CompilePredicate(queryir.LessThan{Column: bestColumn, Value: int64(1)})
	require.NoError(t, err)
	assert.Equal(t, "my_tbl.best_column < $1", sql)
}

func TestSelectIsImmutable(t *testing.T) {
	base := NewSelect("my_tbl")
	a := base.Filter(queryir.IsNull{Column: tsColumn})
	b := base.Filter(queryir.LessThan{Column: bestColumn, Value: int64(1)})

	assert.Empty(t, base.Filters())
	as, _ := AsSelect(a)
	bs, _ := AsSelect(b)
	require.Len(t, as.Filters(), 1)
	require.Len(t, bs.Filters(), 1)
	assert.IsType(t, queryir.IsNull{}, as.Filters()[0])
	assert.IsType(t, queryir.LessThan{}, bs.Filters()[0])

	// Nil predicates are ignored
	same := base.Filter(nil)
	ss, _ := AsSelect(same)
	assert.Empty(t, ss.Filters())
}

func TestAsSelect(t *testing.T) {
	s := NewSelect("my_tbl")

	got, ok := AsSelect(&s)
	require.True(t, ok)
	assert.Equal(t, "my_tbl", got.From())

	var nilSel *Select
	_, ok = AsSelect(nilSel)
	assert.False(t, ok)

	_, ok = AsSelect(query.Recorder{})
	assert.False(t, ok)
}

func TestDialectParamLabel(t *testing.T) {
	assert.Equal(t, "?1", DialectSQLite.ParamLabel(1))
	assert.Equal(t, "?12", DialectSQLite.ParamLabel(12))
	assert.Equal(t, "$3", DialectPostgres.ParamLabel(3))
}

func TestFormatBind(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	assert.Equal(t, "NULL", FormatBind(nil))
	assert.Equal(t, `"a b"`, FormatBind("a b"))
	assert.Equal(t, "2024-05-01T10:00:00Z", FormatBind(ts))
	assert.Equal(t, "true", FormatBind(true))
	assert.Equal(t, "1.5", FormatBind(1.5))
	assert.Equal(t, "42", FormatBind(int64(42)))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)

	_, err = ParseDialect("oracle")
	assert.ErrorContains(t, err, "unsupported dialect")
}

func TestDebug_Golden(t *testing.T) {
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	twoTables := NewSelect("tbl_one").Join("INNER JOIN tbl_two ON tbl_one.id = tbl_two.id")

	testCases := []struct {
		name    string
		sel     query.Builder
		dialect Dialect
	}{
		{
			name:    "two_tables_lt",
			sel:     twoTables.Filter(queryir.LessThan{Column: queryir.ColumnRef{Table: "tbl_one", Name: "id"}, Value: int64(1)}),
			dialect: DialectPostgres,
		},
		{
			name: "two_tables_all_operators",
			sel: twoTables.
				Filter(queryir.GreaterThan{Column: queryir.ColumnRef{Table: "tbl_one", Name: "id"}, Value: int64(3)}).
				Filter(queryir.GreaterThan{Column: queryir.ColumnRef{Table: "tbl_two", Name: "created_at"}, Value: when}).
				Filter(queryir.In{Column: queryir.ColumnRef{Table: "tbl_two", Name: "other_notes"}, Values: []any{"a", "b"}}),
			dialect: DialectSQLite,
		},
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, ok := AsSelect(tc.sel)
			require.True(t, ok)

			out, err := Debug(s, tc.dialect)
			require.NoError(t, err)
			g.Assert(t, tc.name, []byte(out+"\n"))
		})
	}
}
