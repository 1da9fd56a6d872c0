package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/dimcheck/internal/shape"
)

const runColumns = `id, seq, model_name, model_hash, valid, result_count, failure_count, checker_version, ir_version`

// ReadRun retrieves a single run by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

// ListRuns returns recorded runs, optionally filtered by model name.
// An empty modelName lists every run.
// Results are ordered ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, modelName string) ([]Run, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if modelName == "" {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+runColumns+`
			FROM runs
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT `+runColumns+`
			FROM runs
			WHERE model_name = ?
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`, modelName)
	}
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

// ReadResults returns the results of a run in evaluation order.
// Returns an empty slice (not nil) if the run has no results.
func (s *Store) ReadResults(ctx context.Context, runID string) ([]ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, id, seq, name, op, operands, shape, reason, message, skipped
		FROM results
		WHERE run_id = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	records := []ResultRecord{}
	for rows.Next() {
		var (
			rec      ResultRecord
			op       string
			operands string
			out      sql.NullString
			reason   string
		)
		if err := rows.Scan(&rec.RunID, &rec.ID, &rec.Seq, &rec.Name, &op, &operands, &out, &reason, &rec.Message, &rec.Skipped); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		rec.Op = shape.Op(op)
		rec.Reason = shape.Reason(reason)

		if rec.Operands, err = unmarshalShapes(operands); err != nil {
			return nil, err
		}
		if rec.Shape, err = unmarshalShape(out); err != nil {
			return nil, err
		}

		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}

	return records, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.ModelName,
		&run.ModelHash,
		&run.Valid,
		&run.ResultCount,
		&run.FailureCount,
		&run.CheckerVersion,
		&run.IRVersion,
	)
	if err == sql.ErrNoRows {
		return Run{}, err
	}
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	return run, nil
}
