package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ReadScanRun returns the run with the given ID.
func (s *Store) ReadScanRun(ctx context.Context, id string) (ScanRun, error) {
	var run ScanRun
	var patterns string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, patterns, method_count, match_count, first_seq, last_seq
		FROM scan_runs
		WHERE id = ?
	`, id).Scan(&run.ID, &patterns, &run.MethodCount, &run.MatchCount, &run.FirstSeq, &run.LastSeq)
	if errors.Is(err, sql.ErrNoRows) {
		return ScanRun{}, fmt.Errorf("scan run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return ScanRun{}, fmt.Errorf("read scan run: %w", err)
	}
	if run.Patterns, err = unmarshalStrings(patterns); err != nil {
		return ScanRun{}, fmt.Errorf("read scan run: %w", err)
	}
	return run, nil
}

// ReadMatches returns all matches of a run in seq order.
//
// Returns an empty slice (not nil) if the run has no matches.
func (s *Store) ReadMatches(ctx context.Context, runID string) ([]MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, pattern, method, start_index, insns
		FROM scan_matches
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer rows.Close()

	matches := []MatchRecord{}
	for rows.Next() {
		var m MatchRecord
		var insns string
		if err := rows.Scan(&m.RunID, &m.Seq, &m.Pattern, &m.Method, &m.Start, &insns); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		if m.Insns, err = unmarshalStrings(insns); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

// CountMatches returns the number of matches per pattern in a run.
// Patterns with no matches are absent from the map.
func (s *Store) CountMatches(ctx context.Context, runID string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pattern, COUNT(*)
		FROM scan_matches
		WHERE run_id = ?
		GROUP BY pattern
		ORDER BY pattern COLLATE BINARY ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var pattern string
		var n int
		if err := rows.Scan(&pattern, &n); err != nil {
			return nil, fmt.Errorf("count matches: %w", err)
		}
		counts[pattern] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count matches: %w", err)
	}
	return counts, nil
}

// LastSeq returns the highest seq recorded by any run, or 0 for an
// empty store. An engine resumes its clock from here so seqs stay unique
// across runs.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(last_seq) FROM scan_runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq.Int64, nil
}

// ReadProfiles returns all stored profiles ordered by method name.
func (s *Store) ReadProfiles(ctx context.Context) ([]ProfileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT method, appear_pct, call_count, order_pct, min_api_level
		FROM method_profiles
		ORDER BY method COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	profiles := []ProfileRecord{}
	for rows.Next() {
		var p ProfileRecord
		if err := rows.Scan(&p.Method, &p.AppearPercent, &p.CallCount, &p.OrderPercent, &p.MinAPILevel); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return profiles, nil
}
