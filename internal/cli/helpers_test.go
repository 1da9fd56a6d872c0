package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/roach88/dimcheck/internal/testutil"
)

const portfolioModel = `
model: portfolio: {
	purpose: "expected return"
	variable: {
		R: {shape: [5, 9], kind: "parameter"}
		w: {shape: [9, 1]}
		b: {shape: []}
	}
	expression: {
		ret: {op: "matmul", args: ["R", "w"]}
		shifted: {op: "add", args: ["ret", "b"]}
	}
}
`

const brokenModel = `
model: broken: {
	variable: {
		A: {shape: [4, 2]}
		B: {shape: [4, 1]}
		C: {shape: [2, 3]}
	}
	expression: {
		y: {op: "add", args: ["A", "B"]}
		z: {op: "matmul", args: ["y", "C"]}
	}
}
`

const cyclicModel = `
model: loop: {
	variable: x: {shape: [2, 2]}
	expression: {
		a: {op: "add", args: ["b", "x"]}
		b: {op: "add", args: ["a"]}
	}
}
`

// modelsDir writes CUE sources into a fresh directory.
func modelsDir(t *testing.T, files map[string]string) string {
	t.Helper()
	return testutil.WriteFiles(t, files)
}

// execute runs cmd with args and returns stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}
