// Package harness runs YAML shape scenarios against the shape resolvers.
//
// A scenario is a list of cases. Each case names an operator, lists operand
// shapes in tuple text ("(3, 4)", "()", "(4,)") and states the expected
// outcome: a result shape, an exact error message, or just that the
// combination fails.
//
// Run evaluates every case and records a trace event per case, stamped with
// a deterministic sequence number. Snapshot renders that trace as canonical
// JSON for golden file comparison (goldie).
package harness
