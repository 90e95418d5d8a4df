package jsonlogic

import (
	"time"

	"github.com/roach88/jsonlogic/internal/query"
)

type bestColumn struct{}

func (bestColumn) Name() string { return "best" }
func (bestColumn) Column() query.Column[int64] {
	return query.NewColumn[int64]("my_tbl", "best_column")
}

type tsColumn struct{}

func (tsColumn) Name() string { return "ts" }
func (tsColumn) Column() query.Column[time.Time] {
	return query.NewColumn[time.Time]("my_tbl", "ts_column")
}

type notesColumn struct{}

func (notesColumn) Name() string { return "notes" }
func (notesColumn) Column() query.Column[string] {
	return query.NewColumn[string]("my_tbl", "notes_column")
}

type boolColumn struct{}

func (boolColumn) Name() string               { return "flag" }
func (boolColumn) Column() query.Column[bool] { return query.NewColumn[bool]("my_tbl", "flag") }

type (
	bestVar  = Var[bestColumn, int64]
	tsVar    = Var[tsColumn, time.Time]
	notesVar = Var[notesColumn, string]
)

// testQuery is laid out the way generated aggregates are.
type testQuery struct {
	Best  *Expr[bestVar, int64]   `json:"best,omitempty"`
	Ts    *Expr[tsVar, time.Time] `json:"ts,omitempty"`
	Notes *Expr[notesVar, string] `json:"notes,omitempty"`
}

var _ Input = (*testQuery)(nil)

func (q *testQuery) Apply(b query.Builder) query.Builder {
	b = Apply(q.Best, b)
	b = Apply(q.Ts, b)
	b = Apply(q.Notes, b)
	return b
}

func (q *testQuery) Fields() []string {
	return []string{"best", "ts", "notes"}
}
