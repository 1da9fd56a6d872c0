package checker

import (
	"github.com/roach88/dimcheck/internal/ir"
	"github.com/roach88/dimcheck/internal/shape"
)

// ExprResult is the outcome of one expression.
//
// Exactly one of these holds:
//   - Err == nil and Skipped == "": Shape is the inferred shape
//   - Err != nil: the operands in Operands are incompatible
//   - Skipped != "": the named operand failed, nothing was inferred
type ExprResult struct {
	Seq      int64                         `json:"seq"`
	Name     string                        `json:"name"`
	Op       shape.Op                      `json:"op"`
	Operands []shape.Shape                 `json:"operands"`
	Shape    shape.Shape                   `json:"shape,omitempty"`
	Err      *shape.IncompatibleShapeError `json:"-"`
	Skipped  string                        `json:"skipped,omitempty"`
}

// OK reports whether a shape was inferred.
func (r ExprResult) OK() bool {
	return r.Err == nil && r.Skipped == ""
}

// Report is the outcome of checking one model.
type Report struct {
	Model     *ir.Model    `json:"-"`
	ModelHash string       `json:"model_hash"`
	Seq       int64        `json:"seq"`
	Results   []ExprResult `json:"results"`
	Valid     bool         `json:"valid"`
}

// Failures returns the results that were rejected with an incompatibility.
// Skipped results are not failures of their own.
func (r *Report) Failures() []ExprResult {
	failures := []ExprResult{}
	for _, res := range r.Results {
		if res.Err != nil {
			failures = append(failures, res)
		}
	}
	return failures
}

// Skipped returns the results that were not evaluated.
func (r *Report) Skipped() []ExprResult {
	skipped := []ExprResult{}
	for _, res := range r.Results {
		if res.Skipped != "" {
			skipped = append(skipped, res)
		}
	}
	return skipped
}

// Result returns the result for the named expression.
func (r *Report) Result(name string) (ExprResult, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return ExprResult{}, false
}
