// Package codegen generates the Go form of a query-input aggregate: one
// descriptor type and one binding alias per column, the aggregate struct,
// and its Apply fold.
//
// Generated code depends only on packages jsonlogic, query and querysql.
// Since those live under internal/, generated files must be placed inside
// this module.
package codegen

import (
	"bufio"
	"bytes"
	"fmt"
	"go/format"
	"strconv"
	"strings"

	"github.com/roach88/jsonlogic/internal/compiler"
	"github.com/roach88/jsonlogic/internal/ir"
)

// Header is the first line of every generated file.
const Header = "// Code generated by jsonlogic generate. DO NOT EDIT."

// hashPrefix marks the spec-hash line of the header.
const hashPrefix = "// spec-hash: "

// DefaultPackage is used when neither the manifest nor Options name one.
const DefaultPackage = "queries"

// Options configures generation.
type Options struct {
	// Package overrides the manifest's package.
	Package string

	// Source is recorded in the header (e.g. the manifest path).
	Source string
}

// Generate renders the Go source for one aggregate.
// The aggregate is validated first; output is gofmt'd.
func Generate(spec ir.QuerySpec, opts Options) ([]byte, error) {
	if errs := compiler.Validate(spec); len(errs) > 0 {
		return nil, fmt.Errorf("invalid query %s: %w", spec.Name, errs[0])
	}
	if err := checkCollisions([]ir.QuerySpec{spec}); err != nil {
		return nil, err
	}

	hash, err := ir.SpecHash(spec)
	if err != nil {
		return nil, err
	}

	data := fileData{
		Header:  Header,
		Hash:    hash,
		Source:  opts.Source,
		Package: packageName(spec, opts),
		Name:    spec.Name,
		From:    strconv.Quote(spec.From),
	}
	for _, j := range spec.Joins {
		data.Joins = append(data.Joins, strconv.Quote(j))
	}
	for _, c := range spec.Columns {
		goType := c.Type.GoType()
		if c.Type == ir.TypeTimestamp {
			data.NeedsTime = true
		}
		data.Columns = append(data.Columns, columnData{
			Name:     c.Name,
			Quoted:   strconv.Quote(c.Name),
			Ident:    CamelCase(c.Name),
			GoType:   goType,
			Table:    strconv.Quote(c.Table),
			Column:   strconv.Quote(c.Column),
			Ref:      c.Ref(),
			RefQ:     strconv.Quote(c.Ref()),
			JSONTag:  "`json:\"" + c.Name + ",omitempty\"`",
			WireType: string(c.Type),
		})
		data.FieldNames = append(data.FieldNames, strconv.Quote(c.Name))
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("formatting generated source: %w", err)
	}
	return src, nil
}

// GenerateAll renders every aggregate, keyed by file name. Aggregates that
// share a package must not generate the same identifier.
func GenerateAll(specs []ir.QuerySpec, opts Options) (map[string][]byte, error) {
	if errs := compiler.Validate(specs); len(errs) > 0 {
		return nil, errs[0]
	}

	byPackage := make(map[string][]ir.QuerySpec)
	for _, spec := range specs {
		pkg := packageName(spec, opts)
		byPackage[pkg] = append(byPackage[pkg], spec)
	}
	for _, group := range byPackage {
		if err := checkCollisions(group); err != nil {
			return nil, err
		}
	}

	files := make(map[string][]byte, len(specs))
	for _, spec := range specs {
		src, err := Generate(spec, opts)
		if err != nil {
			return nil, err
		}
		files[FileName(spec)] = src
	}
	return files, nil
}

// ReadSpecHash extracts the spec hash from a generated file's header.
func ReadSpecHash(src []byte) (string, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(src))
	if !scanner.Scan() || scanner.Text() != Header {
		return "", false
	}
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "//") {
			break
		}
		if hash, ok := strings.CutPrefix(line, hashPrefix); ok {
			return hash, true
		}
	}
	return "", false
}

// IsStale reports whether src was generated from a different spec.
func IsStale(spec ir.QuerySpec, src []byte) (bool, error) {
	want, err := ir.SpecHash(spec)
	if err != nil {
		return false, err
	}
	got, ok := ReadSpecHash(src)
	return !ok || got != want, nil
}

func packageName(spec ir.QuerySpec, opts Options) string {
	switch {
	case opts.Package != "":
		return opts.Package
	case spec.Package != "":
		return spec.Package
	default:
		return DefaultPackage
	}
}

type fileData struct {
	Header     string
	Hash       string
	Source     string
	Package    string
	Name       string
	From       string
	Joins      []string
	Columns    []columnData
	FieldNames []string
	NeedsTime  bool
}

type columnData struct {
	Name     string
	Quoted   string
	Ident    string
	GoType   string
	Table    string
	Column   string
	Ref      string
	RefQ     string
	JSONTag  string
	WireType string
}
