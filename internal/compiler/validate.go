package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/dimcheck/internal/ir"
	"github.com/roach88/dimcheck/internal/shape"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// Model errors (E101-E109)
	ErrModelNoExpressions = "E101" // at least one expression required
	ErrDuplicateName      = "E102" // duplicate variable/expression name
	ErrUnknownOp          = "E103" // op is not add or matmul
	ErrOperandArity       = "E104" // wrong number of args for op
	ErrUndefinedOperand   = "E105" // arg names nothing declared
	ErrNegativeDimension  = "E106" // dimension below zero
	ErrInvalidKind        = "E107" // kind not variable/parameter/constant
	ErrExpressionCycle    = "E108" // expression depends on itself
	ErrInvalidName        = "E109" // name is not an identifier
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled model against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch m := v.(type) {
	case *ir.Model:
		return validateModel(m)
	case ir.Model:
		return validateModel(&m)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateModel(m *ir.Model) []ValidationError {
	var errs []ValidationError

	// E101: at least one expression required
	if len(m.Expressions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "expressions",
			Message: "at least one expression is required",
			Code:    ErrModelNoExpressions,
		})
	}

	// Variables and expressions share one namespace.
	names := make(map[string]bool)
	checkName := func(field, name string) {
		if !isValidName(name) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("invalid name %q, expected an identifier", name),
				Code:    ErrInvalidName,
			})
		}
		if names[name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate name: %q", name),
				Code:    ErrDuplicateName,
			})
		}
		names[name] = true
	}

	for i, v := range m.Variables {
		checkName(fmt.Sprintf("variables[%d].name", i), v.Name)

		if !ir.ValidKinds[v.Kind] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("variables[%d].kind", i),
				Message: fmt.Sprintf("invalid kind %q for %q, must be \"variable\", \"parameter\", or \"constant\"", v.Kind, v.Name),
				Code:    ErrInvalidKind,
			})
		}

		for axis, d := range v.Shape {
			if d < 0 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("variables[%d].shape[%d]", i, axis),
					Message: fmt.Sprintf("negative dimension %d for %q", d, v.Name),
					Code:    ErrNegativeDimension,
				})
			}
		}
	}

	for i, e := range m.Expressions {
		checkName(fmt.Sprintf("expressions[%d].name", i), e.Name)
	}

	for i, e := range m.Expressions {
		if !shape.ValidOps[e.Op] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("expressions[%d].op", i),
				Message: fmt.Sprintf("unknown op %q for %q, must be \"add\" or \"matmul\"", e.Op, e.Name),
				Code:    ErrUnknownOp,
			})
		} else if msg := arityProblem(e); msg != "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("expressions[%d].args", i),
				Message: msg,
				Code:    ErrOperandArity,
			})
		}

		for j, arg := range e.Args {
			if !names[arg] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("expressions[%d].args[%d]", i, j),
					Message: fmt.Sprintf("undefined operand %q in %q", arg, e.Name),
					Code:    ErrUndefinedOperand,
				})
			}
		}
	}

	return errs
}

// arityProblem describes an arg count the op cannot take, or returns "".
func arityProblem(e ir.Expression) string {
	switch e.Op {
	case shape.OpAdd:
		if len(e.Args) == 0 {
			return fmt.Sprintf("add %q needs at least one operand", e.Name)
		}
	case shape.OpMatMul:
		if len(e.Args) != 2 {
			return fmt.Sprintf("matmul %q takes exactly 2 operands, got %d", e.Name, len(e.Args))
		}
	}
	return ""
}

// namePattern matches identifiers usable as CUE labels without quoting.
var namePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isValidName(name string) bool {
	return namePattern.MatchString(name)
}
