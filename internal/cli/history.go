package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/dimcheck/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Model    string
	Run      string
}

// RunDetail is a recorded run with its results.
type RunDetail struct {
	Run     store.Run            `json:"run"`
	Results []store.ResultRecord `json:"results"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded check runs",
		Long: `List the runs recorded by "check --db", oldest first.

With --model only runs of that model are listed. With --run the
results of a single run are shown.

Examples:
  dimcheck history --db ./dimcheck.db
  dimcheck history --db ./dimcheck.db --model portfolio
  dimcheck history --db ./dimcheck.db --run 0192...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Model, "model", "", "only list runs of this model")
	cmd.Flags().StringVar(&opts.Run, "run", "", "show the results of one run")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.Database == "" {
		return commandError(formatter, ErrCodeBadArgument, "--db is required")
	}
	// Reading history never creates a database.
	if _, err := os.Stat(opts.Database); os.IsNotExist(err) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	defer st.Close()

	if opts.Run != "" {
		return showRun(ctx, formatter, st, opts.Run)
	}

	runs, err := st.ListRuns(ctx, opts.Model)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}
	formatter.VerboseLog("Found %d run(s)", len(runs))

	if formatter.JSON() {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tMODEL\tVALID\tFAILURES\tEXPRESSIONS")
	for _, r := range runs {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\t%d\t%d\n", r.Seq, r.ID, r.ModelName, r.Valid, r.FailureCount, r.ResultCount)
	}
	return tw.Flush()
}

func showRun(ctx context.Context, formatter *OutputFormatter, st *store.Store, runID string) error {
	run, err := st.ReadRun(ctx, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return commandError(formatter, ErrCodeNotFound, fmt.Sprintf("run not found: %s", runID))
	}
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	results, err := st.ReadResults(ctx, runID)
	if err != nil {
		return commandError(formatter, ErrCodeStore, err.Error())
	}

	if formatter.JSON() {
		return formatter.Success(RunDetail{Run: run, Results: results})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Run %s (seq %d)\n", run.ID, run.Seq)
	fmt.Fprintf(w, "Model %s %s\n", run.ModelName, run.ModelHash)
	fmt.Fprintf(w, "Checker %s, IR %s\n\n", run.CheckerVersion, run.IRVersion)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range results {
		switch {
		case r.Skipped != "":
			fmt.Fprintf(tw, "  %d\t%s\t%s\tskipped: operand %s failed\n", r.Seq, r.Name, r.Op, r.Skipped)
		case r.Message != "":
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", r.Seq, r.Name, r.Op, r.Message)
		default:
			fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\n", r.Seq, r.Name, r.Op, r.Shape.String())
		}
	}
	return tw.Flush()
}
