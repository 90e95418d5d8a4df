package codegen

import (
	"strings"
	"text/template"
)

var fileTemplate = template.Must(template.New("file").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`{{.Header}}
{{- if .Source}}
// source: {{.Source}}
{{- end}}
// spec-hash: {{.Hash}}

package {{.Package}}

import (
{{- if .NeedsTime}}
	"time"
{{end}}
	"github.com/roach88/jsonlogic/internal/jsonlogic"
	"github.com/roach88/jsonlogic/internal/query"
	"github.com/roach88/jsonlogic/internal/querysql"
)
{{range .Columns}}
// {{.Ident}}Column describes the {{.Quoted}} column ({{.Ref}}, {{.WireType}}).
type {{.Ident}}Column struct{}

// Name returns the logical name {{.Quoted}}.
func ({{.Ident}}Column) Name() string { return {{.Quoted}} }

// Column returns the storage column {{.Ref}}.
func ({{.Ident}}Column) Column() query.Column[{{.GoType}}] {
	return query.NewColumn[{{.GoType}}]({{.Table}}, {{.Column}})
}

// {{.Ident}}Var only decodes from {"var": {{.Quoted}}}.
type {{.Ident}}Var = jsonlogic.Var[{{.Ident}}Column, {{.GoType}}]
{{end}}
// {{.Name}} holds one optional condition per column. A nil field means no
// condition. Decode it with jsonlogic.Unmarshal or Decode{{.Name}}.
type {{.Name}} struct {
{{- range .Columns}}
	{{.Ident}} *jsonlogic.Expr[{{.Ident}}Var, {{.GoType}}] {{.JSONTag}}
{{- end}}
}

var _ jsonlogic.Input = (*{{.Name}})(nil)

// Decode{{.Name}} decodes a query input. Unknown keys are ignored.
func Decode{{.Name}}(data []byte) (*{{.Name}}, error) {
	var q {{.Name}}
	if err := jsonlogic.Unmarshal(data, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// UnmarshalJSON decodes with jsonlogic.Unmarshal, so the aggregate keeps
// its exact-key, all-or-nothing decoding when nested in another document.
func (q *{{.Name}}) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	return jsonlogic.Unmarshal(data, q)
}

// Apply folds every present condition into b and returns the refined
// builder. Conditions are applied in field declaration order
// ({{join .FieldNames ", "}}), each as a separate filter, so all of them
// are combined with AND:
//
//	==  with a value  column = value
//	==  with null     column IS NULL
//	<                 column < value
//	>                 column > value
//	in                column IN (values)
func (q *{{.Name}}) Apply(b query.Builder) query.Builder {
{{- range .Columns}}
	b = jsonlogic.Apply(q.{{.Ident}}, b)
{{- end}}
	return b
}

// Fields returns the wire keys in declaration order.
func (q *{{.Name}}) Fields() []string {
	return []string{ {{- join .FieldNames ", " -}} }
}

// Params describes each field as an optional query parameter, in
// declaration order.
func (q *{{.Name}}) Params() []jsonlogic.Param {
	return []jsonlogic.Param{
{{- range .Columns}}
		jsonlogic.ParamFor[{{.GoType}}]({{.Quoted}}, {{.RefQ}}),
{{- end}}
	}
}

// NewSelect returns the base statement the conditions refine.
func (q *{{.Name}}) NewSelect() querysql.Select {
	return querysql.NewSelect({{.From}}){{range .Joins}}.
		Join({{.}}){{end}}
}
`))
