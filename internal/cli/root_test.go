package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "dimcheck", cmd.Use)
	assert.Contains(t, cmd.Long, "broadcasts only scalar operands")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"sum", "mul", "validate", "check", "history", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestCheckCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	checkCmd, _, err := cmd.Find([]string{"check"})
	require.NoError(t, err)

	dbFlag := checkCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	for _, name := range []string{"db", "model", "run"} {
		assert.NotNil(t, historyCmd.Flags().Lookup(name), "flag %s", name)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	assert.NotNil(t, testCmd.Flags().Lookup("update"))
	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "--format", "xml", "sum", "3x4")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("DIMCHECK_FORMAT", "json")

	out, err := execute(t, NewRootCommand(), "sum", "3x4", "()")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "(3, 4)", data["shape"])
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("DIMCHECK_FORMAT", "json")

	out, err := execute(t, NewRootCommand(), "--format", "text", "sum", "3x4")
	require.NoError(t, err)
	assert.Equal(t, "(3, 4)\n", out)
}

func TestFormatFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dimcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0o644))

	out, err := execute(t, NewRootCommand(), "--config", path, "mul", "5x9", "9x1")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "(5, 1)", data["shape"])
}

func TestEnvironmentOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dimcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: json\n"), 0o644))
	t.Setenv("DIMCHECK_FORMAT", "text")

	out, err := execute(t, NewRootCommand(), "--config", path, "mul", "5x9", "9x1")
	require.NoError(t, err)
	assert.Equal(t, "(5, 1)\n", out)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "--config", "/nonexistent/dimcheck.yaml", "sum", "3")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "reading config")
}
