package harness

import (
	"fmt"

	"github.com/roach88/dimcheck/internal/shape"
	"github.com/roach88/dimcheck/internal/testutil"
)

// Run evaluates every case of a scenario and returns the result.
//
// Sequence numbers come from a fresh deterministic clock, so the same
// scenario always produces the same trace.
//
// Mismatches are reported in Result.Errors. Run returns an error only for
// resolver failures that are not incompatibilities, which a validated
// scenario cannot produce.
func Run(scenario *Scenario) (*Result, error) {
	clock := testutil.NewDeterministicClock()
	result := NewResult()

	for _, c := range scenario.Cases {
		shapes := make([]shape.Shape, len(c.Shapes))
		texts := make([]string, len(c.Shapes))
		for i, text := range c.Shapes {
			s, err := shape.Parse(text)
			if err != nil {
				return nil, fmt.Errorf("case %q: %w", c.Name, err)
			}
			shapes[i] = s
			texts[i] = s.String()
		}

		event := TraceEvent{
			Seq:    clock.Next(),
			Case:   c.Name,
			Op:     string(c.Op),
			Shapes: texts,
		}

		out, err := shape.Infer(c.Op, shapes...)
		ie, incompatible := shape.IsIncompatible(err)
		if err != nil && !incompatible {
			return nil, fmt.Errorf("case %q: %w", c.Name, err)
		}

		if incompatible {
			event.Error = ie.Error()
			event.Reason = string(ie.Reason)
			event.Index = ie.Index
		} else {
			event.Shape = out.String()
		}
		result.Trace = append(result.Trace, event)

		if msg := checkExpect(c, out, ie); msg != "" {
			result.AddError(fmt.Sprintf("%s: %s", c.Name, msg))
		}
	}

	return result, nil
}

// checkExpect compares one outcome against its expectation and describes
// the mismatch, or returns "".
func checkExpect(c Case, out shape.Shape, ie *shape.IncompatibleShapeError) string {
	exp := c.Expect

	if exp.Shape != nil {
		want := shape.MustParse(*exp.Shape)
		if ie != nil {
			return fmt.Sprintf("expected shape %s, got error %q", want, ie.Error())
		}
		if !out.Equal(want) {
			return fmt.Sprintf("expected shape %s, got %s", want, out)
		}
		return ""
	}

	if ie == nil {
		return fmt.Sprintf("expected failure, got shape %s", out)
	}
	if exp.Error != "" && ie.Error() != exp.Error {
		return fmt.Sprintf("expected error %q, got %q", exp.Error, ie.Error())
	}
	if exp.Reason != "" && ie.Reason != exp.Reason {
		return fmt.Sprintf("expected reason %s, got %s", exp.Reason, ie.Reason)
	}
	return ""
}
