package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCvxpySuite(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/cvxpy_shape.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Trace, len(s.Cases))

	for i, event := range result.Trace {
		assert.Equal(t, int64(i+1), event.Seq)
		assert.Equal(t, s.Cases[i].Name, event.Case)
	}
}

func TestRunReportsMismatches(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: mismatches
description: every expectation is wrong
cases:
  - name: wrong shape
    op: add
    shapes: ["(3, 4)", "(1, 1)"]
    expect:
      shape: "(4, 3)"
  - name: unexpected success
    op: matmul
    shapes: ["(5, 9)", "(9, 2)"]
    expect:
      fails: true
  - name: unexpected failure
    op: add
    shapes: ["(4, 2)", "(4, 1)"]
    expect:
      shape: "(4, 2)"
  - name: wrong message
    op: matmul
    shapes: ["(5, 3)", "(9, 2)"]
    expect:
      error: "Incompatible dimensions (5, 3) (9, 3)"
  - name: wrong reason
    op: matmul
    shapes: ["(2, 5, 3)", "(4, 3, 2)"]
    expect:
      fails: true
      reason: INNER
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, []string{
		"wrong shape: expected shape (4, 3), got (3, 4)",
		"unexpected success: expected failure, got shape (5, 2)",
		`unexpected failure: expected shape (4, 2), got error "Cannot broadcast dimensions (4, 2) (4, 1)"`,
		`wrong message: expected error "Incompatible dimensions (5, 3) (9, 3)", got "Incompatible dimensions (5, 3) (9, 2)"`,
		"wrong reason: expected reason INNER, got BATCH",
	}, result.Errors)
}

func TestRunTraceRecordsOutcome(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: outcome
description: trace fields
cases:
  - name: fold
    op: add
    shapes: ["()", "(1, 4)", "(4, 2)"]
    expect:
      error: "Cannot broadcast dimensions (1, 4) (4, 2)"
      reason: BROADCAST
  - name: ok
    op: add
    shapes: ["4", "()"]
    expect:
      shape: "(4,)"
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	fold := result.Trace[0]
	assert.Equal(t, []string{"()", "(1, 4)", "(4, 2)"}, fold.Shapes)
	assert.Equal(t, "BROADCAST", fold.Reason)
	assert.Equal(t, 2, fold.Index)
	assert.Empty(t, fold.Shape)

	ok := result.Trace[1]
	assert.Equal(t, []string{"(4,)", "()"}, ok.Shapes)
	assert.Equal(t, "(4,)", ok.Shape)
	assert.Empty(t, ok.Error)
}

func TestSnapshot(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace,
		TraceEvent{Seq: 1, Case: "a", Op: "add", Shapes: []string{"()"}, Shape: "()"},
		TraceEvent{Seq: 2, Case: "b", Op: "matmul", Shapes: []string{"(5, 3)", "(9, 2)"},
			Error: "Incompatible dimensions (5, 3) (9, 2)", Reason: "INNER", Index: 1},
	)

	data, err := Snapshot("snap", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"snap","trace":[`+
			`{"case":"a","op":"add","seq":1,"shape":"()","shapes":["()"]},`+
			`{"case":"b","error":"Incompatible dimensions (5, 3) (9, 2)","index":1,"op":"matmul","reason":"INNER","seq":2,"shapes":["(5, 3)","(9, 2)"]}]}`,
		string(data))
}

func TestRunWithGolden(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/cvxpy_shape.yaml")
	require.NoError(t, err)

	result, err := RunWithGolden(t, s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestResultAddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)

	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
