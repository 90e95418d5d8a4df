package schema

import (
	"fmt"

	"github.com/roach88/jsonlogic/internal/compiler"
	"github.com/roach88/jsonlogic/internal/ir"
)

// Registry holds the schemas of one manifest, keyed by aggregate name.
type Registry struct {
	names   []string
	schemas map[string]*Schema
}

// NewRegistry builds a schema for every spec. Aggregate names must be
// unique.
func NewRegistry(specs []ir.QuerySpec, opts ...Option) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(specs))}
	for _, spec := range specs {
		if _, dup := r.schemas[spec.Name]; dup {
			return nil, fmt.Errorf("[%s] duplicate aggregate name: %q", compiler.ErrDuplicateQuery, spec.Name)
		}
		s, err := New(spec, opts...)
		if err != nil {
			return nil, err
		}
		r.names = append(r.names, spec.Name)
		r.schemas[spec.Name] = s
	}
	return r, nil
}

// Lookup returns the schema for an aggregate name.
func (r *Registry) Lookup(name string) (*Schema, bool) {
	s, ok := r.schemas[name]
	return s, ok
}

// Names returns aggregate names in manifest order.
func (r *Registry) Names() []string {
	return r.names
}
