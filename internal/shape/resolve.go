package shape

import "fmt"

// Op names a shape-producing operator.
type Op string

const (
	// OpAdd is elementwise addition over one or more operands.
	OpAdd Op = "add"

	// OpMatMul is (batched) matrix multiplication of exactly two operands.
	OpMatMul Op = "matmul"
)

// ValidOps lists the operators Infer accepts.
var ValidOps = map[Op]bool{
	OpAdd:    true,
	OpMatMul: true,
}

// SumShapes folds shapes left to right under the addition policy and
// returns the combined shape.
//
// The first failing pair stops the fold; its error carries the shape
// accumulated so far and the offending operand.
func SumShapes(shapes ...Shape) (Shape, error) {
	if len(shapes) == 0 {
		return nil, ErrNoShapes
	}

	acc := shapes[0].Clone()
	for i := 1; i < len(shapes); i++ {
		next, err := combine(acc, shapes[i], i)
		if err != nil {
			return nil, err
		}
		acc = next
	}
	return acc, nil
}

// combine merges two addends. Equal shapes pass through; otherwise one side
// must be scalar. The result spans max(len(a), len(b)) right-aligned axes,
// missing leading axes read as 1, and at each axis the dimension that is not
// 1 wins. Taking the non-1 side rather than the numeric maximum keeps a
// zero-sized axis at 0.
func combine(a, b Shape, index int) (Shape, error) {
	if a.Equal(b) {
		return a.Clone(), nil
	}
	if !a.IsScalar() && !b.IsScalar() {
		return nil, incompatible(OpAdd, ReasonBroadcast, index, a, b)
	}

	n := max(len(a), len(b))
	out := make(Shape, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if j := i - (n - len(a)); j >= 0 {
			da = a[j]
		}
		if j := i - (n - len(b)); j >= 0 {
			db = b[j]
		}
		if da == 1 {
			da = db
		}
		out[i] = da
	}
	return out, nil
}

// MulShapes returns the shape of a @ b.
//
// Both operands need rank >= 2. They split into (batch..., m, k1) and
// (batch..., k2, n); batches must be equal and k1 == k2. The result is
// (batch..., m, n).
func MulShapes(a, b Shape) (Shape, error) {
	if len(a) < 2 || len(b) < 2 {
		return nil, incompatible(OpMatMul, ReasonRank, 1, a, b)
	}

	batchA, batchB := a[:len(a)-2], b[:len(b)-2]
	if !batchA.Equal(batchB) {
		return nil, incompatible(OpMatMul, ReasonBatch, 1, a, b)
	}

	m, k1 := a[len(a)-2], a[len(a)-1]
	k2, n := b[len(b)-2], b[len(b)-1]
	if k1 != k2 {
		return nil, incompatible(OpMatMul, ReasonInner, 1, a, b)
	}

	out := make(Shape, 0, len(a))
	out = append(out, batchA...)
	return append(out, m, n), nil
}

// Infer dispatches to the resolver for op.
func Infer(op Op, shapes ...Shape) (Shape, error) {
	switch op {
	case OpAdd:
		return SumShapes(shapes...)
	case OpMatMul:
		if len(shapes) != 2 {
			return nil, fmt.Errorf("%s takes 2 operands, got %d: %w", op, len(shapes), ErrArity)
		}
		return MulShapes(shapes[0], shapes[1])
	default:
		return nil, fmt.Errorf("%q: %w", op, ErrUnknownOp)
	}
}
