package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dimcheck/internal/shape"
)

// ResolveResult is the JSON payload of sum and mul.
type ResolveResult struct {
	Op       shape.Op     `json:"op"`
	Operands []string     `json:"operands"`
	Shape    string       `json:"shape,omitempty"`
	Reason   shape.Reason `json:"reason,omitempty"`
	Index    int          `json:"index,omitempty"`
}

// NewSumCommand creates the sum command.
func NewSumCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sum <shape>...",
		Short: "Resolve the shape of a sum",
		Long: `Resolve the shape of adding operands of the given shapes.

Shapes are written as tuples or with x separators: "(3, 4)", "3x4",
"(4,)", "()". A scalar operand (no axes, or all axes of size 1)
broadcasts against anything; two non-scalar operands must match.

Examples:
  dimcheck sum 3x4 3x4
  dimcheck sum "()" "(3, 4)"
  dimcheck sum 4x2 4x1 --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, shape.OpAdd, args, cmd)
		},
	}
}

// NewMulCommand creates the mul command.
func NewMulCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mul <lhs> <rhs>",
		Short: "Resolve the shape of a matrix product",
		Long: `Resolve the shape of multiplying two operands.

Both operands need at least two axes. Leading batch axes must be equal
and the last axis of lhs must equal the second to last axis of rhs.

Examples:
  dimcheck mul 5x9 9x1
  dimcheck mul 2x5x3 2x3x4`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, shape.OpMatMul, args, cmd)
		},
	}
}

func runResolve(opts *RootOptions, op shape.Op, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	shapes := make([]shape.Shape, len(args))
	result := ResolveResult{Op: op, Operands: make([]string, len(args))}
	for i, arg := range args {
		s, err := shape.Parse(arg)
		if err != nil {
			return commandError(formatter, ErrCodeBadArgument, fmt.Sprintf("operand %d: %v", i, err))
		}
		shapes[i] = s
		result.Operands[i] = s.String()
	}

	out, err := shape.Infer(op, shapes...)
	if ie, ok := shape.IsIncompatible(err); ok {
		opts.logger().Debug("operands rejected", "op", op, "reason", ie.Reason, "index", ie.Index)
		result.Reason = ie.Reason
		result.Index = ie.Index
		if formatter.JSON() {
			if err := formatter.Failure(ErrCodeIncompatible, ie.Error(), result); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(formatter.Writer, "✗ %s\n", ie.Error())
		}
		return WrapExitError(ExitFailure, "incompatible shapes", ie)
	}
	if err != nil {
		return commandError(formatter, ErrCodeBadArgument, err.Error())
	}

	result.Shape = out.String()
	opts.logger().Debug("operands resolved", "op", op, "shape", result.Shape)
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, result.Shape)
	return nil
}
