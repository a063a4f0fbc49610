package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer caps the number of matches a single scan may report.
//
// A permissive pattern such as a lone "any" step matches every
// instruction in the program; the quota stops such a scan before it
// floods the report and the store.
type QuotaEnforcer struct {
	maxMatches int
	current    int
}

// NewQuotaEnforcer creates a quota allowing maxMatches matches.
// A limit of zero or less disables the quota.
func NewQuotaEnforcer(maxMatches int) *QuotaEnforcer {
	return &QuotaEnforcer{maxMatches: maxMatches}
}

// Check counts one more match and fails once the limit is passed.
func (q *QuotaEnforcer) Check(runID string) error {
	q.current++
	if q.maxMatches > 0 && q.current > q.maxMatches {
		return &MatchesExceededError{
			RunID:   runID,
			Matches: q.current,
			Limit:   q.maxMatches,
		}
	}
	return nil
}

// Current returns the number of matches counted so far.
func (q *QuotaEnforcer) Current() int {
	return q.current
}

// MaxMatches returns the limit.
func (q *QuotaEnforcer) MaxMatches() int {
	return q.maxMatches
}

// MatchesExceededError is returned when a scan passes its match quota.
type MatchesExceededError struct {
	RunID   string
	Matches int
	Limit   int
}

// Error implements the error interface.
func (e *MatchesExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded match quota: %d matches > %d limit",
		e.RunID, e.Matches, e.Limit)
}

// IsMatchesExceededError returns true if the error is a MatchesExceededError.
// Uses errors.As to handle wrapped errors.
func IsMatchesExceededError(err error) bool {
	var me *MatchesExceededError
	return errors.As(err, &me)
}
