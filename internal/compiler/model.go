package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/dimcheck/internal/ir"
	"github.com/roach88/dimcheck/internal/shape"
)

// CompileModel parses a CUE value into a Model.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the model struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: portfolio: { ... }`)
//	m, err := CompileModel(v.LookupPath(cue.ParsePath("model.portfolio")))
//
// Shape semantics are not checked here; Validate and the checker do that.
func CompileModel(v cue.Value) (*ir.Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	m := &ir.Model{
		Variables:   []ir.Variable{},
		Expressions: []ir.Expression{},
	}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		m.Name = labels[len(labels)-1].String()
	}

	if purposeVal := v.LookupPath(cue.ParsePath("purpose")); purposeVal.Exists() {
		purpose, err := purposeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		m.Purpose = purpose
	}

	var err error
	m.Variables, err = parseVariables(v)
	if err != nil {
		return nil, err
	}

	m.Expressions, err = parseExpressions(v)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// CompileModels compiles every model under the top-level "model" field of
// root, in declaration order.
func CompileModels(root cue.Value) ([]*ir.Model, error) {
	modelsVal := root.LookupPath(cue.ParsePath("model"))
	if !modelsVal.Exists() {
		return []*ir.Model{}, nil
	}

	iter, err := modelsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var models []*ir.Model
	for iter.Next() {
		m, err := CompileModel(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", iter.Selector(), err)
		}
		models = append(models, m)
	}
	return models, nil
}

// parseVariables extracts leaf declarations in declaration order.
func parseVariables(v cue.Value) ([]ir.Variable, error) {
	vars := []ir.Variable{}

	varsVal := v.LookupPath(cue.ParsePath("variable"))
	if !varsVal.Exists() {
		return vars, nil
	}

	iter, err := varsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Selector().String()
		val := iter.Value()

		variable := ir.Variable{Name: name, Kind: ir.KindVariable}

		shapeVal := val.LookupPath(cue.ParsePath("shape"))
		if !shapeVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("variable.%s.shape", name),
				Message: "shape is required",
				Pos:     val.Pos(),
			}
		}
		variable.Shape, err = parseShape(shapeVal, fmt.Sprintf("variable.%s.shape", name))
		if err != nil {
			return nil, err
		}

		if kindVal := val.LookupPath(cue.ParsePath("kind")); kindVal.Exists() {
			kind, err := kindVal.String()
			if err != nil {
				return nil, formatCUEError(err)
			}
			variable.Kind = kind
		}

		vars = append(vars, variable)
	}

	return vars, nil
}

// parseShape reads a list of integer dimensions. An empty list is a scalar.
func parseShape(v cue.Value, field string) (shape.Shape, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: "shape must be a list of integers",
			Pos:     v.Pos(),
		}
	}

	dims := shape.Shape{}
	for i := 0; iter.Next(); i++ {
		elem := iter.Value()
		if elem.IncompleteKind() != cue.IntKind {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("dimension must be an integer, got %s", elem.IncompleteKind()),
				Pos:     elem.Pos(),
			}
		}
		d, err := elem.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		dims = append(dims, int(d))
	}
	return dims, nil
}

// parseExpressions extracts named expressions in declaration order.
func parseExpressions(v cue.Value) ([]ir.Expression, error) {
	exprs := []ir.Expression{}

	exprsVal := v.LookupPath(cue.ParsePath("expression"))
	if !exprsVal.Exists() {
		return exprs, nil
	}

	iter, err := exprsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Selector().String()
		val := iter.Value()

		opVal := val.LookupPath(cue.ParsePath("op"))
		if !opVal.Exists() {
			return nil, &CompileError{
				Field:   fmt.Sprintf("expression.%s.op", name),
				Message: "op is required",
				Pos:     val.Pos(),
			}
		}
		op, err := opVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}

		args := []string{}
		if argsVal := val.LookupPath(cue.ParsePath("args")); argsVal.Exists() {
			argIter, err := argsVal.List()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for argIter.Next() {
				arg, err := argIter.Value().String()
				if err != nil {
					return nil, &CompileError{
						Field:   fmt.Sprintf("expression.%s.args", name),
						Message: "args must be operand names",
						Pos:     argIter.Value().Pos(),
					}
				}
				args = append(args, arg)
			}
		}

		exprs = append(exprs, ir.Expression{
			Name: name,
			Op:   shape.Op(op),
			Args: args,
		})
	}

	return exprs, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
