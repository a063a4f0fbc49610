package store

import (
	"context"
	"database/sql"
	"fmt"
)

// execer is the subset of *sql.DB and *sql.Tx used by the insert helpers.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertRun inserts a scan run summary. Duplicate IDs are silently
// ignored, so the first write of a run wins.
func insertRun(ctx context.Context, db execer, run ScanRun) error {
	patterns, err := marshalStrings(run.Patterns)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO scan_runs
		(id, patterns, method_count, match_count, first_seq, last_seq)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, patterns, run.MethodCount, run.MatchCount, run.FirstSeq, run.LastSeq)
	return err
}

// insertMatch inserts one match. The run referenced by RunID must exist
// (foreign key). Duplicate (run_id, seq) pairs are silently ignored.
func insertMatch(ctx context.Context, db execer, m MatchRecord) error {
	insns, err := marshalStrings(m.Insns)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO scan_matches
		(run_id, seq, pattern, method, start_index, insns)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`, m.RunID, m.Seq, m.Pattern, m.Method, m.Start, insns)
	return err
}

// WriteScan writes a run and all of its matches in one transaction.
// Either every row lands or none does.
func (s *Store) WriteScan(ctx context.Context, run ScanRun, matches []MatchRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write scan: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertRun(ctx, tx, run); err != nil {
		return fmt.Errorf("write scan: run %s: %w", run.ID, err)
	}
	for _, m := range matches {
		if err := insertMatch(ctx, tx, m); err != nil {
			return fmt.Errorf("write scan: match %d: %w", m.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write scan: commit: %w", err)
	}
	return nil
}

// WriteProfiles upserts method profiles in one transaction. A profile
// already stored for the same method is replaced.
func (s *Store) WriteProfiles(ctx context.Context, profiles []ProfileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write profiles: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO method_profiles
		(method, appear_pct, call_count, order_pct, min_api_level)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(method) DO UPDATE SET
			appear_pct = excluded.appear_pct,
			call_count = excluded.call_count,
			order_pct = excluded.order_pct,
			min_api_level = excluded.min_api_level
	`)
	if err != nil {
		return fmt.Errorf("write profiles: prepare: %w", err)
	}
	defer stmt.Close()

	for _, p := range profiles {
		if _, err := stmt.ExecContext(ctx, p.Method, p.AppearPercent, p.CallCount, p.OrderPercent, p.MinAPILevel); err != nil {
			return fmt.Errorf("write profiles: %s: %w", p.Method, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write profiles: commit: %w", err)
	}
	return nil
}
