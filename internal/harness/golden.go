package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/dimcheck/internal/ir"
)

// Snapshot renders a scenario trace as canonical JSON.
// This is the byte form stored in golden files.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	return ir.MarshalCanonical(toCanonicalMap(scenarioName, result.Trace))
}

// toCanonicalMap converts a trace to plain values for ir.MarshalCanonical.
// Empty optional fields are omitted.
func toCanonicalMap(scenarioName string, trace []TraceEvent) map[string]any {
	traceList := make([]any, len(trace))
	for i, event := range trace {
		shapes := make([]any, len(event.Shapes))
		for j, s := range event.Shapes {
			shapes[j] = s
		}

		eventMap := map[string]any{
			"seq":    event.Seq,
			"case":   event.Case,
			"op":     event.Op,
			"shapes": shapes,
		}
		if event.Shape != "" {
			eventMap["shape"] = event.Shape
		}
		if event.Error != "" {
			eventMap["error"] = event.Error
			eventMap["reason"] = event.Reason
			eventMap["index"] = event.Index
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": scenarioName,
		"trace":         traceList,
	}
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the trace doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(scenario.Name, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}
