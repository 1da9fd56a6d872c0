package harness

// TraceEvent records what the resolver returned for one case.
// Either Shape or Error is set.
type TraceEvent struct {
	Seq    int64    `json:"seq"`
	Case   string   `json:"case"`
	Op     string   `json:"op"`
	Shapes []string `json:"shapes"`
	Shape  string   `json:"shape,omitempty"`
	Error  string   `json:"error,omitempty"`
	Reason string   `json:"reason,omitempty"`
	Index  int      `json:"index,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every case matched its expectation.
	Pass bool `json:"pass"`

	// Trace holds one event per case, in case order.
	Trace []TraceEvent `json:"trace"`

	// Errors describes each mismatch. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(msg string) {
	r.Pass = false
	r.Errors = append(r.Errors, msg)
}
