package compiler

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jsonlogic/internal/ir"
)

// yamlManifest mirrors the CUE manifest layout. The query mapping is kept
// as a node so aggregates compile in document order.
type yamlManifest struct {
	Query yaml.Node `yaml:"query"`
}

type yamlQuery struct {
	Package string       `yaml:"package,omitempty"`
	From    string       `yaml:"from,omitempty"`
	Joins   []string     `yaml:"joins,omitempty"`
	Columns []yamlColumn `yaml:"columns"`
}

// yamlColumn is one column. YAML mappings are unordered in most tooling,
// so columns are a list.
type yamlColumn struct {
	Name   string `yaml:"name"`
	Column string `yaml:"column"`
	Type   string `yaml:"type"`
}

// CompileYAML compiles a YAML manifest:
//
//	query:
//	  TwoTablesQuery:
//	    from: tbl_one
//	    columns:
//	      - {name: tbl_id, column: tbl_one.id, type: int}
//
// Unknown fields are rejected (catches typos like "colums:"). The result
// is not validated; call Validate.
func CompileYAML(data []byte) ([]ir.QuerySpec, error) {
	var manifest yamlManifest
	if err := decodeStrict(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if manifest.Query.Kind != yaml.MappingNode || len(manifest.Query.Content) == 0 {
		return nil, &CompileError{
			Field:   "query",
			Message: "no query aggregates declared",
		}
	}

	var specs []ir.QuerySpec
	content := manifest.Query.Content
	for i := 0; i+1 < len(content); i += 2 {
		name := content[i].Value

		// Re-encode the node so the strict decoder sees it
		raw, err := yaml.Marshal(content[i+1])
		if err != nil {
			return nil, fmt.Errorf("query.%s: %w", name, err)
		}
		var q yamlQuery
		if err := decodeStrict(raw, &q); err != nil {
			return nil, fmt.Errorf("query.%s (line %d): %w", name, content[i].Line, err)
		}

		spec := ir.QuerySpec{
			Name:    name,
			Package: q.Package,
			From:    q.From,
			Joins:   q.Joins,
		}
		for _, c := range q.Columns {
			spec.Columns = append(spec.Columns, makeColumn(c.Name, c.Column, ir.ValueType(c.Type), q.From))
		}
		if len(spec.Columns) == 0 {
			return nil, &CompileError{
				Field:   fmt.Sprintf("query.%s.columns", name),
				Message: "at least one column is required",
			}
		}
		specs = append(specs, spec)
	}

	return specs, nil
}

// decodeStrict decodes YAML, rejecting unknown fields.
func decodeStrict(data []byte, v any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(v)
}
