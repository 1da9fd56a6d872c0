package store

import "github.com/roach88/dimcheck/internal/shape"

// Run is one recorded check of one model.
type Run struct {
	ID             string `json:"id"`
	Seq            int64  `json:"seq"`
	ModelName      string `json:"model_name"`
	ModelHash      string `json:"model_hash"`
	Valid          bool   `json:"valid"`
	ResultCount    int    `json:"result_count"`
	FailureCount   int    `json:"failure_count"`
	CheckerVersion string `json:"checker_version"`
	IRVersion      string `json:"ir_version"`
}

// ResultRecord is the stored form of one expression result.
// Shape is nil when nothing was inferred.
type ResultRecord struct {
	ID       string        `json:"id"`
	RunID    string        `json:"run_id"`
	Seq      int64         `json:"seq"`
	Name     string        `json:"name"`
	Op       shape.Op      `json:"op"`
	Operands []shape.Shape `json:"operands"`
	Shape    shape.Shape   `json:"shape,omitempty"`
	Reason   shape.Reason  `json:"reason,omitempty"`
	Message  string        `json:"message,omitempty"`
	Skipped  string        `json:"skipped,omitempty"`
}
