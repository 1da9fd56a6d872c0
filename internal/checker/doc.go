// Package checker infers the shape of every expression in a compiled model.
//
// A Checker validates the model, orders its expressions so operands resolve
// before the expressions that read them, and feeds each expression's operand
// shapes to shape.Infer. Incompatibilities are recorded per expression in a
// Report rather than returned as errors; an expression whose operand failed
// is skipped, not evaluated.
//
// Evaluation order is a depth-first walk over the dependency graph starting
// from each expression in declaration order, so the same model always
// produces the same Report.
//
// Thread-safety: a Checker holds no per-check state and is safe for
// concurrent use. CheckAll checks models in parallel.
package checker
