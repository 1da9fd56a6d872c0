package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/dimcheck/internal/compiler"
	"github.com/roach88/dimcheck/internal/ir"
	"github.com/roach88/dimcheck/internal/shape"
)

// Checker infers expression shapes for compiled models.
type Checker struct {
	clock  Sequencer
	logger *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithClock sets the sequencer used to stamp reports.
// Default: a fresh Clock starting at 0.
func WithClock(clock Sequencer) Option {
	return func(c *Checker) {
		c.clock = clock
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check validates m and infers the shape of each of its expressions.
//
// Incompatible operands do not make Check fail; they are recorded in the
// report and Report.Valid is false. Check returns an error only when the
// model itself is malformed (*InvalidModelError) or ctx is done.
func (c *Checker) Check(ctx context.Context, m *ir.Model) (*Report, error) {
	return c.check(ctx, m, c.clock.Next())
}

func (c *Checker) check(ctx context.Context, m *ir.Model, seq int64) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateModel(m); err != nil {
		return nil, err
	}

	hash, err := ir.ModelHash(m)
	if err != nil {
		return nil, fmt.Errorf("hash model %q: %w", m.Name, err)
	}

	report := &Report{
		Model:     m,
		ModelHash: hash,
		Seq:       seq,
		Results:   make([]ExprResult, 0, len(m.Expressions)),
		Valid:     true,
	}

	// Shapes of every operand resolved so far; failed names map to false.
	resolved := make(map[string]shape.Shape, len(m.Variables)+len(m.Expressions))
	ok := make(map[string]bool, len(m.Variables)+len(m.Expressions))
	for _, v := range m.Variables {
		resolved[v.Name] = v.Shape
		ok[v.Name] = true
	}

	for i, e := range evaluationOrder(m) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res := ExprResult{
			Seq:  int64(i + 1),
			Name: e.Name,
			Op:   e.Op,
		}

		for _, arg := range e.Args {
			if !ok[arg] {
				res.Skipped = arg
				break
			}
		}

		if res.Skipped != "" {
			c.logger.Debug("expression skipped",
				"model", m.Name,
				"expression", e.Name,
				"failed_operand", res.Skipped,
			)
		} else {
			res.Operands = make([]shape.Shape, len(e.Args))
			for j, arg := range e.Args {
				res.Operands[j] = resolved[arg]
			}

			out, err := shape.Infer(e.Op, res.Operands...)
			if ie, isShapeErr := shape.IsIncompatible(err); isShapeErr {
				res.Err = ie
				c.logger.Debug("expression rejected",
					"model", m.Name,
					"expression", e.Name,
					"reason", ie.Reason,
					"error", ie.Error(),
				)
			} else if err != nil {
				return nil, fmt.Errorf("expression %q: %w", e.Name, err)
			} else {
				res.Shape = out
				resolved[e.Name] = out
				ok[e.Name] = true
				c.logger.Debug("expression resolved",
					"model", m.Name,
					"expression", e.Name,
					"shape", out.String(),
				)
			}
		}

		if !res.OK() {
			report.Valid = false
		}
		report.Results = append(report.Results, res)
	}

	c.logger.Info("model checked",
		"model", m.Name,
		"expressions", len(report.Results),
		"failures", len(report.Failures()),
		"valid", report.Valid,
	)

	return report, nil
}

// CheckAll checks models concurrently, one goroutine per model.
//
// Report sequence numbers are taken in input order before any check starts,
// and reports are returned in input order. A model that cannot be checked
// leaves a nil report; the returned error joins every per-model error.
func (c *Checker) CheckAll(ctx context.Context, models []*ir.Model) ([]*Report, error) {
	seqs := make([]int64, len(models))
	for i := range models {
		seqs[i] = c.clock.Next()
	}

	reports := make([]*Report, len(models))
	errs := make([]error, len(models))

	var wg sync.WaitGroup
	for i, m := range models {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reports[i], errs[i] = c.check(ctx, m, seqs[i])
		}()
	}
	wg.Wait()

	return reports, errors.Join(errs...)
}

// validateModel runs schema validation and cycle analysis.
func validateModel(m *ir.Model) error {
	var problems []error
	for _, ve := range compiler.Validate(m) {
		// An empty model is checkable; it just has nothing to report.
		if ve.Code == compiler.ErrModelNoExpressions {
			continue
		}
		problems = append(problems, ve)
	}
	for _, ce := range compiler.AnalyzeCycles(m) {
		problems = append(problems, ce)
	}

	if len(problems) > 0 {
		return &InvalidModelError{Model: m.Name, Problems: problems}
	}
	return nil
}

// evaluationOrder returns expressions so that every expression comes after
// the expressions it reads. Requires an acyclic model.
func evaluationOrder(m *ir.Model) []ir.Expression {
	byName := make(map[string]ir.Expression, len(m.Expressions))
	for _, e := range m.Expressions {
		byName[e.Name] = e
	}

	order := make([]ir.Expression, 0, len(m.Expressions))
	visited := make(map[string]bool, len(m.Expressions))

	var visit func(e ir.Expression)
	visit = func(e ir.Expression) {
		if visited[e.Name] {
			return
		}
		visited[e.Name] = true
		for _, arg := range e.Args {
			if dep, isExpr := byName[arg]; isExpr {
				visit(dep)
			}
		}
		order = append(order, e)
	}

	for _, e := range m.Expressions {
		visit(e)
	}
	return order
}
