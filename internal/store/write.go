package store

import (
	"context"
	"fmt"
)

// WriteRun inserts a run and its results in one transaction.
// Uses ON CONFLICT DO NOTHING for idempotency - writing the same run twice is
// a no-op. Other constraint violations still return errors.
func (s *Store) WriteRun(ctx context.Context, run Run, results []ResultRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, model_name, model_hash, valid, result_count, failure_count, checker_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.ModelName,
		run.ModelHash,
		run.Valid,
		run.ResultCount,
		run.FailureCount,
		run.CheckerVersion,
		run.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write run: insert run: %w", err)
	}

	for _, rec := range results {
		if rec.RunID != run.ID {
			return fmt.Errorf("write run: result %q belongs to run %q, not %q", rec.Name, rec.RunID, run.ID)
		}

		operands, err := marshalShapes(rec.Operands)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
		out, err := marshalShape(rec.Shape)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO results
			(run_id, id, seq, name, op, operands, shape, reason, message, skipped)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, id) DO NOTHING
		`,
			rec.RunID,
			rec.ID,
			rec.Seq,
			rec.Name,
			string(rec.Op),
			operands,
			out,
			string(rec.Reason),
			rec.Message,
			rec.Skipped,
		)
		if err != nil {
			return fmt.Errorf("write run: insert result %q: %w", rec.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}
