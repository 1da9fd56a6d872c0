package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/dimcheck/internal/checker"
	"github.com/roach88/dimcheck/internal/shape"
	"github.com/roach88/dimcheck/internal/store"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Database string

	// IDGenerator overrides run id generation (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// ExprView is the printable form of one expression result.
type ExprView struct {
	Name     string       `json:"name"`
	Op       shape.Op     `json:"op"`
	Operands []string     `json:"operands,omitempty"`
	Shape    string       `json:"shape,omitempty"`
	Error    string       `json:"error,omitempty"`
	Reason   shape.Reason `json:"reason,omitempty"`
	Skipped  string       `json:"skipped,omitempty"`
}

// ModelResult is the outcome of checking one model.
type ModelResult struct {
	Name      string     `json:"name"`
	ModelHash string     `json:"model_hash,omitempty"`
	Seq       int64      `json:"seq,omitempty"`
	RunID     string     `json:"run_id,omitempty"`
	Valid     bool       `json:"valid"`
	Results   []ExprView `json:"results,omitempty"`
	Error     string     `json:"error,omitempty"` // set when the model could not be checked
}

// CheckResult holds the check output for every model.
type CheckResult struct {
	Models []ModelResult `json:"models"`
	Valid  bool          `json:"valid"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <models-dir>",
		Short: "Infer the shape of every expression",
		Long: `Compile the CUE models in a directory and infer the shape of every
expression. Models are checked concurrently.

An expression whose operands are incompatible fails; expressions that
read a failed expression are skipped. With --db each model's run is
recorded in a SQLite store (created if missing).

Exit codes:
  0 - All models valid
  1 - Incompatible shapes or invalid models
  2 - Command error (missing paths, compile errors, store errors)

Examples:
  dimcheck check ./models
  dimcheck check ./models --db ./dimcheck.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record runs in this SQLite database")

	return cmd
}

func runCheck(opts *CheckOptions, modelsDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	logger := opts.logger()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loadResult, loadErrors := LoadModels(modelsDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		code, msg := firstLoadError(loadErrors)
		return commandError(formatter, code, msg)
	}
	if len(loadResult.Models) == 0 {
		return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("no models found in %s", modelsDir))
	}
	formatter.VerboseLog("Loaded %d model(s) from %d CUE file(s)", len(loadResult.Models), loadResult.FileCount)

	var st *store.Store
	clock := checker.NewClock()
	if opts.Database != "" {
		var err error
		st, err = store.Open(opts.Database)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		defer st.Close()

		maxSeq, err := st.MaxSeq(ctx)
		if err != nil {
			return commandError(formatter, ErrCodeStore, err.Error())
		}
		clock = checker.NewClockAt(maxSeq)
	}

	chk := checker.New(checker.WithClock(clock), checker.WithLogger(logger))
	reports, checkErr := chk.CheckAll(ctx, loadResult.Models)
	if checkErr != nil && !errors.Is(checkErr, checker.ErrInvalidModel) {
		return WrapExitError(ExitCommandError, "check failed", checkErr)
	}

	result := CheckResult{Valid: true, Models: make([]ModelResult, len(reports))}
	for i, report := range reports {
		m := loadResult.Models[i]
		if report == nil {
			result.Models[i] = ModelResult{Name: m.Name, Error: invalidModelMessage(checkErr, m.Name)}
			result.Valid = false
			continue
		}

		mr := modelResult(report)
		if st != nil {
			runID, err := recordRun(ctx, st, opts.idGenerator(), report)
			if err != nil {
				return commandError(formatter, ErrCodeStore, err.Error())
			}
			logger.Info("run recorded", "model", m.Name, "run_id", runID, "seq", report.Seq)
			mr.RunID = runID
		}
		result.Models[i] = mr
		if !mr.Valid {
			result.Valid = false
		}
	}

	return outputCheck(formatter, result)
}

func (o *CheckOptions) idGenerator() store.IDGenerator {
	if o.IDGenerator == nil {
		return store.UUIDv7Generator{}
	}
	return o.IDGenerator
}

// recordRun writes one report to the store and returns its run id.
func recordRun(ctx context.Context, st *store.Store, ids store.IDGenerator, report *checker.Report) (string, error) {
	runID := ids.Generate()
	run, records, err := store.RecordFromReport(runID, report)
	if err != nil {
		return "", err
	}
	if err := st.WriteRun(ctx, run, records); err != nil {
		return "", err
	}
	return runID, nil
}

// invalidModelMessage finds the InvalidModelError for model in a joined error.
func invalidModelMessage(err error, model string) string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			var invalid *checker.InvalidModelError
			if errors.As(e, &invalid) && invalid.Model == model {
				return invalid.Error()
			}
		}
	}
	return err.Error()
}

func modelResult(report *checker.Report) ModelResult {
	mr := ModelResult{
		Name:      report.Model.Name,
		ModelHash: report.ModelHash,
		Seq:       report.Seq,
		Valid:     report.Valid,
		Results:   make([]ExprView, len(report.Results)),
	}
	for i, res := range report.Results {
		mr.Results[i] = exprView(res)
	}
	return mr
}

func exprView(res checker.ExprResult) ExprView {
	view := ExprView{
		Name:     res.Name,
		Op:       res.Op,
		Operands: shapeStrings(res.Operands),
		Skipped:  res.Skipped,
	}
	switch {
	case res.Err != nil:
		view.Error = res.Err.Error()
		view.Reason = res.Err.Reason
	case res.Skipped == "":
		view.Shape = res.Shape.String()
	}
	return view
}

func shapeStrings(shapes []shape.Shape) []string {
	if len(shapes) == 0 {
		return nil
	}
	out := make([]string, len(shapes))
	for i, s := range shapes {
		out[i] = s.String()
	}
	return out
}

// outputCheck prints the check result; invalid models exit with code 1.
func outputCheck(formatter *OutputFormatter, result CheckResult) error {
	failed := 0
	code := ErrCodeIncompatible
	for _, m := range result.Models {
		if !m.Valid {
			failed++
		}
		if m.Error != "" {
			code = ErrCodeInvalidModel
		}
	}
	var failure error
	if failed > 0 {
		failure = NewExitError(ExitFailure, fmt.Sprintf("%d model(s) failed", failed))
	}

	if formatter.JSON() {
		if failure == nil {
			return formatter.Success(result)
		}
		if err := formatter.Failure(code, failure.Error(), result); err != nil {
			return err
		}
		return failure
	}

	w := formatter.Writer
	for _, m := range result.Models {
		if m.Error != "" {
			fmt.Fprintf(w, "✗ %s\n  %s\n", m.Name, m.Error)
			continue
		}
		mark := "✓"
		if !m.Valid {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%d expression(s))\n", mark, m.Name, len(m.Results))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, r := range m.Results {
			switch {
			case r.Skipped != "":
				fmt.Fprintf(tw, "  %s\t%s\tskipped: operand %s failed\n", r.Name, r.Op, r.Skipped)
			case r.Error != "":
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Name, r.Op, r.Error)
			default:
				fmt.Fprintf(tw, "  %s\t%s\t%s\n", r.Name, r.Op, r.Shape)
			}
		}
		tw.Flush()
	}

	if failure != nil {
		fmt.Fprintf(w, "\n%d of %d model(s) failed\n", failed, len(result.Models))
		return failure
	}
	return nil
}
