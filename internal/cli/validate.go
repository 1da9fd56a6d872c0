package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dimcheck/internal/compiler"
	"github.com/roach88/dimcheck/internal/ir"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Models int                        `json:"models"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <models-dir>",
		Short: "Validate models without inferring shapes",
		Long: `Validate the CUE models in a directory.

Compiles every model, then checks names, kinds, operators, operand
counts, undefined operands and dependency cycles. Shapes are not
combined; use check for that.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, modelsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loadResult, loadErrors := LoadModels(modelsDir, LoadModeCollectAll)
	if loadResult == nil {
		code, msg := firstLoadError(loadErrors)
		return commandError(formatter, code, msg)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, modelsDir)

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		ve := compiler.ValidationError{Field: "load", Message: err.Error(), Code: ErrCodeCompileFailed}
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			ve.Message = loadErr.Message
			ve.Code = loadErr.Code
			ve.Line = loadErr.Line()
		}
		validationErrors = append(validationErrors, ve)
	}

	for _, m := range loadResult.Models {
		formatter.VerboseLog("Validating model: %s", m.Name)
		validationErrors = append(validationErrors, validateModel(m)...)
	}

	if len(loadResult.Models) == 0 && len(validationErrors) == 0 {
		validationErrors = append(validationErrors, compiler.ValidationError{
			Field:   "model",
			Message: "no models found",
			Code:    ErrCodeGeneric,
		})
	}

	result := ValidationResult{
		Valid:  len(validationErrors) == 0,
		Models: len(loadResult.Models),
		Errors: validationErrors,
	}
	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ All models valid (%d model(s))\n", result.Models)
	return nil
}

// validateModel runs schema validation and cycle analysis on one model.
// Fields are prefixed with the model so errors from several models stay apart.
func validateModel(m *ir.Model) []compiler.ValidationError {
	prefix := "model." + m.Name + "."

	var errs []compiler.ValidationError
	for _, ve := range compiler.Validate(m) {
		ve.Field = prefix + ve.Field
		errs = append(errs, ve)
	}
	for _, ce := range compiler.AnalyzeCycles(m) {
		errs = append(errs, compiler.ValidationError{
			Field:   prefix + "expressions." + ce.Path[0],
			Message: ce.Message,
			Code:    ce.Code,
		})
	}
	return errs
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	failure := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.JSON() {
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return failure
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return failure
}
