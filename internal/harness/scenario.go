package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/jsonlogic/internal/querysql"
)

// Scenario defines a conformance test scenario: query inputs decoded
// against one aggregate, with the expected outcome of each.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists manifest files (.cue, .yaml) to compile.
	// Relative paths are resolved against the scenario file's directory.
	Specs []string `yaml:"specs"`

	// Query names the aggregate the inputs are decoded against.
	Query string `yaml:"query"`

	// Dialect selects placeholder syntax for the compiled SQL.
	// Defaults to sqlite.
	Dialect string `yaml:"dialect,omitempty"`

	// Strict rejects undeclared input keys.
	Strict bool `yaml:"strict,omitempty"`

	// Fixtures is a SQL script run against a fresh in-memory database.
	// When set, every successfully decoded case is also executed.
	Fixtures string `yaml:"fixtures,omitempty"`

	// Columns and OrderBy shape the executed statement. They do not affect
	// the SQL checked by expect.sql.
	Columns []string `yaml:"columns,omitempty"`
	OrderBy []string `yaml:"order_by,omitempty"`

	// Cases are decoded in order.
	Cases []Case `yaml:"cases"`

	// Assertions validate case results after all cases ran.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Case is one query input.
type Case struct {
	// Name identifies the case within the scenario.
	Name string `yaml:"name"`

	// Input is the query input. A mapping is encoded as JSON; a string is
	// used verbatim.
	Input any `yaml:"input"`

	// Expect specifies the expected outcome.
	// If nil, the case only has to decode.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected outcome of a case. Unset fields are
// not checked.
type ExpectClause struct {
	// SQL is the exact compiled statement.
	SQL string `yaml:"sql,omitempty"`

	// Params are the bind parameters, compared by text form.
	Params []any `yaml:"params,omitempty"`

	// Error is the expected decode error code (e.g. NAME_MISMATCH).
	Error string `yaml:"error,omitempty"`

	// Rows are the expected result rows, compared by text form.
	Rows [][]any `yaml:"rows,omitempty"`
}

// Assertion validates case results.
type Assertion struct {
	// Type specifies the assertion type:
	// - "condition_order": Check fields appear in order
	// - "condition_count": Check the number of decoded conditions
	// - "sql_contains": Check the compiled SQL contains Text
	// - "row_count": Check the number of returned rows
	Type string `yaml:"type"`

	// Case names the case the assertion applies to.
	Case string `yaml:"case"`

	// Fields is the expected field order (used by condition_order).
	Fields []string `yaml:"fields,omitempty"`

	// Count is the expected number (used by condition_count, row_count).
	Count *int `yaml:"count,omitempty"`

	// Text is the expected SQL fragment (used by sql_contains).
	Text string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertConditionOrder = "condition_order"
	AssertConditionCount = "condition_count"
	AssertSQLContains    = "sql_contains"
	AssertRowCount       = "row_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like "case:" vs "cases:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve spec paths relative to the scenario BEFORE validation
	baseDir := filepath.Dir(path)
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) {
			scenario.Specs[i] = filepath.Join(baseDir, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// inputJSON returns the case input as JSON.
func (c Case) inputJSON() ([]byte, error) {
	if s, ok := c.Input.(string); ok {
		return []byte(s), nil
	}
	return json.Marshal(c.Input)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if s.Query == "" {
		return fmt.Errorf("query is required")
	}

	if s.Dialect != "" {
		if _, err := querysql.ParseDialect(s.Dialect); err != nil {
			return err
		}
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	// Validate spec paths exist
	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	names := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if names[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate case name %q", i, c.Name)
		}
		names[c.Name] = true

		if c.Input == nil {
			return fmt.Errorf("cases[%d]: input is required (use {} for no conditions)", i)
		}
		if _, err := c.inputJSON(); err != nil {
			return fmt.Errorf("cases[%d]: input cannot be encoded as JSON: %w", i, err)
		}
		if c.Expect != nil && c.Expect.Rows != nil && s.Fixtures == "" {
			return fmt.Errorf("cases[%d].expect: rows require fixtures", i)
		}
		if c.Expect != nil && c.Expect.Error != "" && (c.Expect.SQL != "" || c.Expect.Params != nil || c.Expect.Rows != nil) {
			return fmt.Errorf("cases[%d].expect: error cannot be combined with sql, params or rows", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, names, s.Fixtures != ""); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, cases map[string]bool, hasFixtures bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}
	if !cases[a.Case] {
		return fmt.Errorf("assertions[%d]: unknown case %q", index, a.Case)
	}

	switch a.Type {
	case AssertConditionOrder:
		if len(a.Fields) == 0 {
			return fmt.Errorf("assertions[%d]: fields list is required for condition_order", index)
		}
	case AssertConditionCount, AssertRowCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
		if a.Type == AssertRowCount && !hasFixtures {
			return fmt.Errorf("assertions[%d]: row_count requires fixtures", index)
		}
	case AssertSQLContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for sql_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
