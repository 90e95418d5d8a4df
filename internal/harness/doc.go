// Package harness runs query-input scenarios as executable contract tests.
//
// A scenario names one aggregate from one or more manifests, a list of
// query inputs, and what each input must produce: the decoded conditions,
// the compiled SQL and its parameters, a decode error code, or the rows an
// in-memory SQLite database returns for it.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	specs:
//	  - ../../internal/demo/manifest.cue
//	query: TwoTablesQuery
//	dialect: sqlite            # optional, sqlite or postgres
//	strict: false              # optional, reject undeclared keys
//	fixtures: |                # optional, enables row checks
//	  CREATE TABLE tbl_one (id INTEGER PRIMARY KEY);
//	columns: [tbl_one.id]      # optional projection for row checks
//	order_by: [tbl_one.id]     # optional, keeps row checks deterministic
//	cases:
//	  - name: less_than
//	    input: {tbl_id: {"<": [{var: tbl_id}, 3]}}
//	    expect:
//	      sql: "SELECT * FROM ... WHERE tbl_one.id < ?"
//	      params: [3]
//	      rows: [[1], [2]]
//	  - name: wrong_column
//	    input: '{"tbl_id": {"<": [{"var": "other"}, 3]}}'
//	    expect:
//	      error: NAME_MISMATCH
//	assertions:
//	  - type: condition_order
//	    case: less_than
//	    fields: [tbl_id]
//
// Spec paths are resolved relative to the scenario file. An input given as
// a YAML string is used verbatim as JSON, so malformed inputs can be tested.
//
// # Assertion Types
//
//   - condition_order: Fields appear in the case's decoded conditions in order
//   - condition_count: The case decoded exactly N conditions
//   - sql_contains: The case's compiled SQL contains a fragment
//   - row_count: The case returned exactly N rows (requires fixtures)
//
// # Comparing Values
//
// Parameters and row values are compared by their text form: timestamps
// render as RFC 3339 in UTC, NULL as "NULL", everything else with fmt. This
// lets YAML integers match int64 parameters and YAML strings match
// timestamps.
//
// # Golden Files
//
// RunWithGolden snapshots every case result as canonical JSON under
// testdata/golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
