package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/jsonlogic/internal/compiler"
	"github.com/roach88/jsonlogic/internal/ir"
	"github.com/roach88/jsonlogic/internal/jsonlogic"
	"github.com/roach88/jsonlogic/internal/querysql"
	"github.com/roach88/jsonlogic/internal/schema"
	"github.com/roach88/jsonlogic/internal/store"
)

// Harness is the test execution engine for one scenario.
type Harness struct {
	scenario *Scenario
	schema   *schema.Schema
	dialect  querysql.Dialect
	store    *store.Store // nil without fixtures
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario with fixtures runs in a fresh in-memory database for
// isolation.
//
// Execution flow:
// 1. Compile the manifests and look up the aggregate
// 2. Load fixtures, if any
// 3. Decode, apply and compile every case, checking its expect clause
// 4. Evaluate assertions
//
// A returned error means the scenario could not run; failed expectations
// are reported in the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with progress logged to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	sch, err := loadSchema(scenario)
	if err != nil {
		return nil, err
	}

	dialect := querysql.DialectSQLite
	if scenario.Dialect != "" {
		if dialect, err = querysql.ParseDialect(scenario.Dialect); err != nil {
			return nil, err
		}
	}

	h := &Harness{
		scenario: scenario,
		schema:   sch,
		dialect:  dialect,
		logger:   logger,
	}

	ctx := context.Background()

	if scenario.Fixtures != "" {
		st, err := store.Open(store.MemoryPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory store: %w", err)
		}
		defer st.Close()

		if err := st.Exec(ctx, scenario.Fixtures); err != nil {
			return nil, fmt.Errorf("failed to load fixtures: %w", err)
		}
		h.store = st
	}

	result := NewResult()
	for i, c := range scenario.Cases {
		cr, err := h.runCase(ctx, c)
		if err != nil {
			return nil, fmt.Errorf("case %d (%s): %w", i, c.Name, err)
		}
		result.AddCase(cr)
		for _, msg := range checkExpect(cr, c.Expect) {
			result.AddError(fmt.Sprintf("case %s: %s", c.Name, msg))
		}
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Info("scenario completed",
		"scenario", scenario.Name,
		"cases", len(result.Cases),
		"pass", result.Pass,
	)
	return result, nil
}

// loadSchema compiles every manifest and returns the scenario's aggregate.
func loadSchema(scenario *Scenario) (*schema.Schema, error) {
	var specs []ir.QuerySpec
	for _, path := range scenario.Specs {
		compiled, err := compiler.CompileFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s: %w", path, err)
		}
		specs = append(specs, compiled...)
	}

	var opts []schema.Option
	if scenario.Strict {
		opts = append(opts, schema.WithStrict())
	}
	registry, err := schema.NewRegistry(specs, opts...)
	if err != nil {
		return nil, err
	}

	sch, ok := registry.Lookup(scenario.Query)
	if !ok {
		return nil, fmt.Errorf("query %q not found in specs (have %v)", scenario.Query, registry.Names())
	}
	return sch, nil
}

// runCase decodes one input and compiles (and optionally executes) it.
// Decode errors are part of the result, not returned.
func (h *Harness) runCase(ctx context.Context, c Case) (CaseResult, error) {
	cr := CaseResult{Name: c.Name, Conditions: []string{}}

	data, err := c.inputJSON()
	if err != nil {
		return cr, err
	}

	in, err := h.schema.Decode(data)
	if err != nil {
		var de *jsonlogic.DecodeError
		if !errors.As(err, &de) {
			return cr, err
		}
		cr.ErrorCode = string(de.Code)
		cr.Error = err.Error()
		h.logger.Info("case rejected", "case", c.Name, "code", cr.ErrorCode)
		return cr, nil
	}

	for _, cond := range in.Conditions() {
		cr.Conditions = append(cr.Conditions, cond.Field+" "+string(cond.Op))
	}

	sel, ok := querysql.AsSelect(in.Apply(h.schema.NewSelect()))
	if !ok {
		return cr, fmt.Errorf("builder is not a querysql.Select")
	}

	sql, params, err := querysql.Compile(sel, h.dialect)
	if err != nil {
		return cr, err
	}
	cr.SQL = sql
	cr.Params = textValues(params)

	if h.store != nil {
		exec := sel
		if len(h.scenario.Columns) > 0 {
			exec = exec.Columns(h.scenario.Columns...)
		}
		if len(h.scenario.OrderBy) > 0 {
			exec = exec.OrderBy(h.scenario.OrderBy...)
		}
		res, err := h.store.Select(ctx, exec)
		if err != nil {
			return cr, err
		}
		cr.Rows = make([][]string, len(res.Rows))
		for i, row := range res.Rows {
			cr.Rows[i] = textValues(row)
		}
	}

	h.logger.Info("case completed",
		"case", c.Name,
		"conditions", len(cr.Conditions),
		"sql", cr.SQL,
	)
	return cr, nil
}

// checkExpect compares a case result to its expect clause.
func checkExpect(cr CaseResult, expect *ExpectClause) []string {
	if expect == nil {
		if cr.ErrorCode != "" {
			return []string{"unexpected decode error: " + cr.Error}
		}
		return nil
	}

	if expect.Error != "" {
		if cr.ErrorCode != expect.Error {
			return []string{fmt.Sprintf("expected error %s, got %s", expect.Error, describeOutcome(cr))}
		}
		return nil
	}
	if cr.ErrorCode != "" {
		return []string{"unexpected decode error: " + cr.Error}
	}

	var errs []string
	if expect.SQL != "" && expect.SQL != cr.SQL {
		errs = append(errs, fmt.Sprintf("sql mismatch:\n  expected: %s\n  actual:   %s", expect.SQL, cr.SQL))
	}
	if expect.Params != nil {
		if want := textValues(expect.Params); !slices.Equal(want, cr.Params) {
			errs = append(errs, fmt.Sprintf("params mismatch: expected %v, actual %v", want, cr.Params))
		}
	}
	if expect.Rows != nil {
		want := make([][]string, len(expect.Rows))
		for i, row := range expect.Rows {
			want[i] = textValues(row)
		}
		if !slices.EqualFunc(want, cr.Rows, slices.Equal[[]string]) {
			errs = append(errs, fmt.Sprintf("rows mismatch: expected %v, actual %v", want, cr.Rows))
		}
	}
	return errs
}

func describeOutcome(cr CaseResult) string {
	if cr.ErrorCode != "" {
		return cr.ErrorCode
	}
	return "success"
}

// textValue renders a parameter or row value for comparison.
func textValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case []byte:
		return string(val)
	default:
		return fmt.Sprint(val)
	}
}

// textValues renders a slice of values. Never returns nil.
func textValues(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = textValue(v)
	}
	return out
}
