package shape

import (
	"errors"
	"strings"
)

// Sentinel errors. Every *IncompatibleShapeError matches ErrIncompatibleShape
// under errors.Is; the remaining sentinels describe malformed calls rather
// than incompatible operands.
var (
	// ErrIncompatibleShape is the class of every shape incompatibility.
	ErrIncompatibleShape = errors.New("shape: incompatible dimensions")

	// ErrNoShapes is returned by SumShapes when called with no operands.
	ErrNoShapes = errors.New("shape: at least one shape is required")

	// ErrArity is returned by Infer when an operator receives the wrong
	// number of operands.
	ErrArity = errors.New("shape: wrong number of operands")

	// ErrUnknownOp is returned by Infer for an operator it does not know.
	ErrUnknownOp = errors.New("shape: unknown operator")

	// ErrNegativeDimension marks a dimension below zero.
	ErrNegativeDimension = errors.New("shape: negative dimension")

	// ErrMalformedShape marks shape text that cannot be parsed.
	ErrMalformedShape = errors.New("shape: malformed shape text")
)

// Reason categorizes an incompatibility.
type Reason string

const (
	// ReasonBroadcast: two non-scalar shapes summed without being equal.
	ReasonBroadcast Reason = "BROADCAST"

	// ReasonRank: a matmul operand has fewer than two axes.
	ReasonRank Reason = "RANK"

	// ReasonBatch: matmul batch prefixes differ.
	ReasonBatch Reason = "BATCH"

	// ReasonInner: matmul inner dimensions differ.
	ReasonInner Reason = "INNER"
)

// IncompatibleShapeError reports an invalid combination of shapes.
//
// Shapes holds the two operands of the failing combination exactly as they
// were combined, so callers can render them back to the user. For a sum,
// Shapes[0] is the shape accumulated so far and Shapes[1] the operand at
// Index in the input sequence.
type IncompatibleShapeError struct {
	// Op is the operator that rejected the operands.
	Op Op

	// Reason says which rule was violated.
	Reason Reason

	// Shapes are the two offending operands.
	Shapes []Shape

	// Index is the input position of the right-hand operand.
	Index int
}

// Error implements the error interface.
//
//	matmul: "Incompatible dimensions (5, 3) (9, 2)"
//	add:    "Cannot broadcast dimensions (4, 2) (4, 1)"
func (e *IncompatibleShapeError) Error() string {
	var b strings.Builder
	if e.Op == OpAdd {
		b.WriteString("Cannot broadcast dimensions")
	} else {
		b.WriteString("Incompatible dimensions")
	}
	for _, s := range e.Shapes {
		b.WriteByte(' ')
		b.WriteString(s.String())
	}
	return b.String()
}

// Is makes errors.Is(err, ErrIncompatibleShape) true.
func (e *IncompatibleShapeError) Is(target error) bool {
	return target == ErrIncompatibleShape
}

// IsIncompatible unwraps err to an *IncompatibleShapeError.
// Uses errors.As to handle wrapped errors.
func IsIncompatible(err error) (*IncompatibleShapeError, bool) {
	var ie *IncompatibleShapeError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

func incompatible(op Op, reason Reason, index int, a, b Shape) *IncompatibleShapeError {
	return &IncompatibleShapeError{
		Op:     op,
		Reason: reason,
		Shapes: []Shape{a.Clone(), b.Clone()},
		Index:  index,
	}
}
