package harness

// CaseResult is the outcome of one scenario case.
type CaseResult struct {
	Name string `json:"name"`

	// Conditions lists the decoded conditions as "field op" in
	// application order.
	Conditions []string `json:"conditions"`

	// SQL and Params are the compiled statement. Empty on decode error.
	SQL    string   `json:"sql,omitempty"`
	Params []string `json:"params,omitempty"`

	// ErrorCode is the decode error code, if decoding failed.
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`

	// Rows holds the text form of every returned row. Nil unless the
	// scenario has fixtures.
	Rows [][]string `json:"rows,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion holds.
	Pass bool `json:"pass"`

	// Cases holds one result per scenario case, in scenario order.
	Cases []CaseResult `json:"cases"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddCase records a case result.
func (r *Result) AddCase(c CaseResult) {
	r.Cases = append(r.Cases, c)
}

// Case returns the result of the named case.
func (r *Result) Case(name string) (*CaseResult, bool) {
	for i := range r.Cases {
		if r.Cases[i].Name == name {
			return &r.Cases[i], true
		}
	}
	return nil, false
}
