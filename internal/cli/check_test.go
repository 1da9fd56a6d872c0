package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dimcheck/internal/store"
	"github.com/roach88/dimcheck/internal/testutil"
)

// runCheckWith runs the check command body with injected options.
func runCheckWith(t *testing.T, opts *CheckOptions, dir string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	err := runCheck(opts, dir, cmd)
	return buf.String(), err
}

func TestCheckValidModel(t *testing.T) {
	dir := modelsDir(t, map[string]string{"portfolio.cue": portfolioModel})

	out, err := execute(t, NewCheckCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ portfolio (2 expression(s))")
	assert.Regexp(t, `ret\s+matmul\s+\(5, 1\)`, out)
	assert.Regexp(t, `shifted\s+add\s+\(5, 1\)`, out)
}

func TestCheckIncompatibleModel(t *testing.T) {
	dir := modelsDir(t, map[string]string{"broken.cue": brokenModel})

	out, err := execute(t, NewCheckCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken (2 expression(s))")
	assert.Contains(t, out, "Cannot broadcast dimensions (4, 2) (4, 1)")
	assert.Contains(t, out, "skipped: operand y failed")
	assert.Contains(t, out, "1 of 1 model(s) failed")
}

func TestCheckJSON(t *testing.T) {
	dir := modelsDir(t, map[string]string{
		"portfolio.cue": portfolioModel,
		"broken.cue":    brokenModel,
	})

	out, err := execute(t, NewCheckCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
		Error  *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeIncompatible, resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Models, 2)

	byName := make(map[string]ModelResult)
	for _, m := range resp.Data.Models {
		byName[m.Name] = m
	}

	portfolio := byName["portfolio"]
	assert.True(t, portfolio.Valid)
	assert.Len(t, portfolio.ModelHash, 64)
	require.Len(t, portfolio.Results, 2)
	assert.Equal(t, ExprView{Name: "ret", Op: "matmul", Operands: []string{"(5, 9)", "(9, 1)"}, Shape: "(5, 1)"}, portfolio.Results[0])
	assert.Equal(t, ExprView{Name: "shifted", Op: "add", Operands: []string{"(5, 1)", "()"}, Shape: "(5, 1)"}, portfolio.Results[1])

	broken := byName["broken"]
	assert.False(t, broken.Valid)
	require.Len(t, broken.Results, 2)
	assert.Equal(t, "BROADCAST", string(broken.Results[0].Reason))
	assert.Equal(t, "y", broken.Results[1].Skipped)
	assert.Empty(t, broken.Results[1].Operands)
}

func TestCheckInvalidModel(t *testing.T) {
	dir := modelsDir(t, map[string]string{
		"portfolio.cue": portfolioModel,
		"loop.cue":      cyclicModel,
	})

	out, err := execute(t, NewCheckCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Data  CheckResult `json:"data"`
		Error *CLIError   `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, ErrCodeInvalidModel, resp.Error.Code)

	for _, m := range resp.Data.Models {
		switch m.Name {
		case "loop":
			assert.Contains(t, m.Error, "dependency cycle")
			assert.Empty(t, m.Results)
		case "portfolio":
			assert.True(t, m.Valid)
		default:
			t.Fatalf("unexpected model %q", m.Name)
		}
	}
}

func TestCheckCompileError(t *testing.T) {
	dir := modelsDir(t, map[string]string{"bad.cue": `model: m: {variable: x: {shape: ["a"]}}`})

	out, err := execute(t, NewCheckCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCompileFailed)
	assert.Contains(t, out, "variable.x.shape[0]")
}

func TestCheckNoModels(t *testing.T) {
	dir := modelsDir(t, map[string]string{"other.cue": `x: 1`})

	out, err := execute(t, NewCheckCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "no models found")
}

func TestCheckRecordsRuns(t *testing.T) {
	dir := modelsDir(t, map[string]string{
		"portfolio.cue": portfolioModel,
		"broken.cue":    brokenModel,
	})
	dbPath := filepath.Join(t.TempDir(), "dimcheck.db")

	opts := &CheckOptions{
		RootOptions: &RootOptions{Format: "json"},
		Database:    dbPath,
		IDGenerator: testutil.NewSequentialIDGenerator("run"),
	}

	_, err := runCheckWith(t, opts, dir)
	require.Error(t, err, "broken model fails")
	_, err = runCheckWith(t, opts, dir)
	require.Error(t, err)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, runs, 4)

	// Second invocation continues numbering after the first.
	for i, r := range runs {
		assert.Equal(t, int64(i+1), r.Seq)
	}
	assert.Equal(t, runs[0].ModelHash, runs[2].ModelHash)

	portfolio, err := st.ListRuns(context.Background(), "portfolio")
	require.NoError(t, err)
	require.Len(t, portfolio, 2)
	assert.True(t, portfolio[0].Valid)
	assert.Equal(t, 2, portfolio[0].ResultCount)

	broken, err := st.ListRuns(context.Background(), "broken")
	require.NoError(t, err)
	require.Len(t, broken, 2)
	assert.False(t, broken[0].Valid)
	assert.Equal(t, 1, broken[0].FailureCount)

	results, err := st.ReadResults(context.Background(), broken[0].ID)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Cannot broadcast dimensions (4, 2) (4, 1)", results[0].Message)
	assert.Equal(t, "y", results[1].Skipped)
}

func TestCheckRunIDsInOutput(t *testing.T) {
	dir := modelsDir(t, map[string]string{"portfolio.cue": portfolioModel})

	opts := &CheckOptions{
		RootOptions: &RootOptions{Format: "json"},
		Database:    filepath.Join(t.TempDir(), "dimcheck.db"),
		IDGenerator: testutil.NewSequentialIDGenerator("run"),
	}

	out, err := runCheckWith(t, opts, dir)
	require.NoError(t, err)

	var resp struct {
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Models, 1)
	assert.Equal(t, "run-0001", resp.Data.Models[0].RunID)
	assert.Equal(t, int64(1), resp.Data.Models[0].Seq)
}
