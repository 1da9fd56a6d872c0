package store

import (
	"fmt"

	"github.com/roach88/dimcheck/internal/checker"
	"github.com/roach88/dimcheck/internal/ir"
)

// RecordFromReport converts a checker report into a run and its results.
// Result ids are content addressed so the same result hashes the same in
// every run.
func RecordFromReport(runID string, report *checker.Report) (Run, []ResultRecord, error) {
	run := Run{
		ID:             runID,
		Seq:            report.Seq,
		ModelName:      report.Model.Name,
		ModelHash:      report.ModelHash,
		Valid:          report.Valid,
		ResultCount:    len(report.Results),
		FailureCount:   len(report.Failures()),
		CheckerVersion: ir.CheckerVersion,
		IRVersion:      ir.IRVersion,
	}

	records := make([]ResultRecord, 0, len(report.Results))
	for _, res := range report.Results {
		rec := ResultRecord{
			RunID:    runID,
			Seq:      res.Seq,
			Name:     res.Name,
			Op:       res.Op,
			Operands: res.Operands,
			Shape:    res.Shape,
			Skipped:  res.Skipped,
		}
		if res.Err != nil {
			rec.Reason = res.Err.Reason
			rec.Message = res.Err.Error()
		}

		id, err := ir.ResultHash(report.ModelHash, res.Name, res.Op, res.Operands, res.Shape, string(rec.Reason)+res.Skipped)
		if err != nil {
			return Run{}, nil, fmt.Errorf("record %q: %w", res.Name, err)
		}
		rec.ID = id

		records = append(records, rec)
	}

	return run, records, nil
}
