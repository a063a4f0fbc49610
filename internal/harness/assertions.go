package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/dexmatch/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	if len(e.Trace) == 0 {
		fmt.Fprintf(&buf, "  (no matches)\n")
	}
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %s@%d\n", event.Seq, event.Pattern, event.Method, event.Start)
	}

	return buf.String()
}

// assertMatchCount checks the pattern matched exactly Count windows.
func assertMatchCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Pattern == assertion.Pattern {
			count++
		}
	}
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertMatchCount,
			Expected: fmt.Sprintf("pattern %s matched %d times", assertion.Pattern, assertion.Count),
			Actual:   fmt.Sprintf("matched %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertMatchAt checks the pattern matched Method at index Start.
func assertMatchAt(trace []TraceEvent, assertion Assertion) error {
	var starts []int
	for _, event := range trace {
		if event.Pattern != assertion.Pattern || event.Method != assertion.Method {
			continue
		}
		if event.Start == assertion.Start {
			return nil
		}
		starts = append(starts, event.Start)
	}

	actual := "no match in method"
	if len(starts) > 0 {
		actual = fmt.Sprintf("matched at %v", starts)
	}
	return &AssertionError{
		Type:     AssertMatchAt,
		Expected: fmt.Sprintf("pattern %s matches %s at %d", assertion.Pattern, assertion.Method, assertion.Start),
		Actual:   actual,
		Trace:    trace,
	}
}

// assertNoMatch checks the pattern never matched, or never matched
// Method when one is given.
func assertNoMatch(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Pattern != assertion.Pattern {
			continue
		}
		if assertion.Method != "" && event.Method != assertion.Method {
			continue
		}
		expected := fmt.Sprintf("pattern %s never matches", assertion.Pattern)
		if assertion.Method != "" {
			expected = fmt.Sprintf("pattern %s never matches %s", assertion.Pattern, assertion.Method)
		}
		return &AssertionError{
			Type:     AssertNoMatch,
			Expected: expected,
			Actual:   fmt.Sprintf("matched %s at %d (seq %d)", event.Method, event.Start, event.Seq),
			Trace:    trace,
		}
	}
	return nil
}

// assertStoredCount checks the store holds Count matches of the pattern
// for the run.
func assertStoredCount(ctx context.Context, st *store.Store, runID string, trace []TraceEvent, assertion Assertion) error {
	counts, err := st.CountMatches(ctx, runID)
	if err != nil {
		return fmt.Errorf("stored_count: failed to count matches: %w", err)
	}
	if got := counts[assertion.Pattern]; got != assertion.Count {
		return &AssertionError{
			Type:     AssertStoredCount,
			Expected: fmt.Sprintf("%d stored matches of %s in run %s", assertion.Count, assertion.Pattern, runID),
			Actual:   fmt.Sprintf("%d stored", got),
			Trace:    trace,
		}
	}
	return nil
}

// AssertionContext provides store access for stored_count assertions.
type AssertionContext struct {
	Store *store.Store
	Ctx   context.Context
	RunID string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
// The actx parameter provides database access for stored_count assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertMatchCount:
			err = assertMatchCount(result.Trace, assertion)
		case AssertMatchAt:
			err = assertMatchAt(result.Trace, assertion)
		case AssertNoMatch:
			err = assertNoMatch(result.Trace, assertion)
		case AssertStoredCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: stored_count requires database context", i)
			} else {
				err = assertStoredCount(actx.Ctx, actx.Store, actx.RunID, result.Trace, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
