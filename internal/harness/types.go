package harness

// TraceEvent is the recorded outcome of one flow step. Outcome values are
// restricted to strings, bools, ints and lists of those so traces can be
// compared as canonical JSON.
type TraceEvent struct {
	Step    int            `json:"step"`
	Do      string         `json:"do"`
	Outcome map[string]any `json:"outcome"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	Trace  []TraceEvent `json:"trace"`
	Errors []string     `json:"errors,omitempty"`

	// Catalog is the catalog re-rendered after the last step.
	Catalog string `json:"catalog"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends the outcome of step i.
func (r *Result) AddTrace(i int, do string, outcome map[string]any) {
	r.Trace = append(r.Trace, TraceEvent{Step: i, Do: do, Outcome: outcome})
}
