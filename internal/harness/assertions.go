package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion type for categorization
	Case     string      // Case the assertion applied to
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Result   *CaseResult // Case result for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s (case %s)\n", e.Type, e.Case)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Result != nil {
		fmt.Fprintf(&buf, "\nCase result:\n")
		if e.Result.ErrorCode != "" {
			fmt.Fprintf(&buf, "  error: %s\n", e.Result.Error)
		}
		for i, c := range e.Result.Conditions {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, c)
		}
		if e.Result.SQL != "" {
			fmt.Fprintf(&buf, "  sql: %s %v\n", e.Result.SQL, e.Result.Params)
		}
	}

	return buf.String()
}

// conditionFields returns the field of every decoded condition.
func conditionFields(cr *CaseResult) []string {
	fields := make([]string, len(cr.Conditions))
	for i, c := range cr.Conditions {
		field, _, _ := strings.Cut(c, " ")
		fields[i] = field
	}
	return fields
}

// assertConditionOrder checks that the fields appear in the specified order.
// Fields don't need to be consecutive (intervening conditions are allowed).
func assertConditionOrder(cr *CaseResult, assertion Assertion) error {
	// Step 1: Find position of each expected field
	positions := make(map[string]int)
	for i, field := range conditionFields(cr) {
		if positions[field] == 0 {
			positions[field] = i + 1 // 1-indexed for readability
		}
	}

	// Step 2: Verify all fields found
	for _, field := range assertion.Fields {
		if positions[field] == 0 {
			return &AssertionError{
				Type:     AssertConditionOrder,
				Case:     assertion.Case,
				Expected: fmt.Sprintf("all fields present: %v", assertion.Fields),
				Actual:   fmt.Sprintf("missing field: %s", field),
				Result:   cr,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(assertion.Fields); i++ {
		prev := assertion.Fields[i-1]
		curr := assertion.Fields[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertConditionOrder,
				Case:     assertion.Case,
				Expected: fmt.Sprintf("fields in order: %v", assertion.Fields),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Result: cr,
			}
		}
	}

	return nil
}

// assertConditionCount checks the number of decoded conditions.
func assertConditionCount(cr *CaseResult, assertion Assertion) error {
	if assertion.Count == nil {
		return fmt.Errorf("%s requires count", AssertConditionCount)
	}
	if len(cr.Conditions) != *assertion.Count {
		return &AssertionError{
			Type:     AssertConditionCount,
			Case:     assertion.Case,
			Expected: fmt.Sprintf("%d conditions", *assertion.Count),
			Actual:   fmt.Sprintf("%d conditions", len(cr.Conditions)),
			Result:   cr,
		}
	}
	return nil
}

// assertSQLContains checks the compiled SQL for a fragment.
func assertSQLContains(cr *CaseResult, assertion Assertion) error {
	if !strings.Contains(cr.SQL, assertion.Text) {
		return &AssertionError{
			Type:     AssertSQLContains,
			Case:     assertion.Case,
			Expected: fmt.Sprintf("sql containing %q", assertion.Text),
			Actual:   fmt.Sprintf("%q", cr.SQL),
			Result:   cr,
		}
	}
	return nil
}

// assertRowCount checks the number of returned rows.
func assertRowCount(cr *CaseResult, assertion Assertion) error {
	if assertion.Count == nil {
		return fmt.Errorf("%s requires count", AssertRowCount)
	}
	if len(cr.Rows) != *assertion.Count {
		return &AssertionError{
			Type:     AssertRowCount,
			Case:     assertion.Case,
			Expected: fmt.Sprintf("%d rows", *assertion.Count),
			Actual:   fmt.Sprintf("%d rows", len(cr.Rows)),
			Result:   cr,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		cr, ok := result.Case(assertion.Case)
		if !ok {
			errors = append(errors, fmt.Sprintf("assertion %d: unknown case %q", i, assertion.Case))
			continue
		}

		var err error
		switch assertion.Type {
		case AssertConditionOrder:
			err = assertConditionOrder(cr, assertion)
		case AssertConditionCount:
			err = assertConditionCount(cr, assertion)
		case AssertSQLContains:
			err = assertSQLContains(cr, assertion)
		case AssertRowCount:
			err = assertRowCount(cr, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}

	return errors
}
