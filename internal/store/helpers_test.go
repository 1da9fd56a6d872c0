package store

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/roach88/dimcheck/internal/checker"
	"github.com/roach88/dimcheck/internal/ir"
	"github.com/roach88/dimcheck/internal/shape"
	"github.com/roach88/dimcheck/internal/testutil"
)

// createTestStore creates a new store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// checkModel runs the checker over a small model with one failure and one
// skipped expression.
func checkModel(t *testing.T, clock checker.Sequencer, name string) *checker.Report {
	t.Helper()
	m := &ir.Model{
		Name: name,
		Variables: []ir.Variable{
			{Name: "A", Kind: ir.KindParameter, Shape: shape.Of(5, 3)},
			{Name: "B", Kind: ir.KindVariable, Shape: shape.Of(9, 2)},
			{Name: "x", Kind: ir.KindVariable, Shape: shape.Of(3, 2)},
			{Name: "s", Kind: ir.KindConstant, Shape: shape.Shape{}},
		},
		Expressions: []ir.Expression{
			{Name: "ok", Op: shape.OpMatMul, Args: []string{"A", "x"}},
			{Name: "bad", Op: shape.OpMatMul, Args: []string{"A", "B"}},
			{Name: "after", Op: shape.OpAdd, Args: []string{"bad", "s"}},
			{Name: "scalar", Op: shape.OpAdd, Args: []string{"s", "s"}},
		},
	}

	c := checker.New(
		checker.WithClock(clock),
		checker.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))),
	)
	report, err := c.Check(context.Background(), m)
	if err != nil {
		t.Fatalf("Check() failed: %v", err)
	}
	return report
}

func newClock() checker.Sequencer {
	return testutil.NewDeterministicClock()
}
