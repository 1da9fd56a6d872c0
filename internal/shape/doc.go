// Package shape implements dimcheck's shape arithmetic: it decides whether an
// elementwise addition or a matrix multiplication of tensor-like operands is
// well-formed and, if so, computes the resulting shape.
//
// The package is the dimensional type-checker for symbolic expressions. It is
// handed already-extracted shapes and returns either a shape or an
// *IncompatibleShapeError. It performs no numeric computation.
//
// BROADCASTING POLICY:
//
// Addition broadcasts only when one operand is a scalar shape (every
// dimension 1, including the empty shape). Two non-scalar shapes must be
// structurally equal. This is stricter than NumPy broadcasting:
//
//	(3, 4) + (1, 1) -> (3, 4)   scalar absorbed
//	(1, 1) + (4,)   -> (1, 4)   rank extension, leading 1s
//	(4, 2) + (4, 1) -> error    partial broadcast between non-scalars
//
// MATRIX MULTIPLICATION:
//
// Both operands must have rank >= 2. The last two dimensions form the
// matrix, everything before them is the batch prefix. Batch prefixes must be
// equal (never broadcast) and inner dimensions must agree:
//
//	(3, 5, 9) @ (3, 9, 2) -> (3, 5, 2)
//	(5, 3)    @ (9, 2)    -> Incompatible dimensions (5, 3) (9, 2)
//
// CONCURRENCY:
//
// All functions are pure. They never mutate their inputs and share no state,
// so they may be called from any number of goroutines without coordination.
package shape
