package queryir

import "fmt"

// ValidationResult contains portability analysis of a predicate.
//
// A portable predicate renders to the same meaning on every supported SQL
// dialect. Non-portable predicates still compile; warnings explain what a
// backend will do with them.
type ValidationResult struct {
	// IsPortable indicates no warnings were raised.
	IsPortable bool

	// Warnings lists non-portable constructs, in traversal order.
	Warnings []string
}

// Validate checks a predicate tree for constructs whose meaning depends on
// the backend.
//
// Rules:
//  1. Equals with a nil value never matches; IsNull was probably intended
//  2. In with no values matches nothing and is rendered as a constant false
//  3. Every column reference must name a column
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{
		warnings: []string{},
	}
	v.validatePredicate(p)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Equals:
		v.validateColumn(pred.Column)
		if pred.Value == nil {
			v.addWarning("column '%s' compared to NULL with = - never matches, use IsNull", pred.Column)
		}
	case IsNull:
		v.validateColumn(pred.Column)
	case LessThan:
		v.validateColumn(pred.Column)
	case GreaterThan:
		v.validateColumn(pred.Column)
	case In:
		v.validateColumn(pred.Column)
		if len(pred.Values) == 0 {
			v.addWarning("column '%s' IN empty set - matches nothing", pred.Column)
		}
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addWarning("unknown predicate type: %T - portability cannot be verified", p)
	}
}

func (v *validator) validateColumn(c ColumnRef) {
	if c.Name == "" {
		v.addWarning("predicate references an empty column name")
	}
}
