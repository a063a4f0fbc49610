package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dexmatch/internal/store"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Seq: 1, Pattern: "alloc", Method: "La;.make:()La;", Start: 0},
		{Seq: 2, Pattern: "alloc", Method: "La;.make:()La;", Start: 4},
		{Seq: 3, Pattern: "str", Method: "La;.run:()V", Start: 2},
	}
}

func TestAssertMatchCount(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertMatchCount(trace, Assertion{Pattern: "alloc", Count: 2}))
	assert.NoError(t, assertMatchCount(trace, Assertion{Pattern: "none", Count: 0}))

	err := assertMatchCount(trace, Assertion{Pattern: "str", Count: 2})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertMatchCount, ae.Type)
	assert.Equal(t, "matched 1 times", ae.Actual)
}

func TestAssertMatchAt(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertMatchAt(trace, Assertion{Pattern: "alloc", Method: "La;.make:()La;", Start: 4}))

	err := assertMatchAt(trace, Assertion{Pattern: "alloc", Method: "La;.make:()La;", Start: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched at [0 4]")

	err = assertMatchAt(trace, Assertion{Pattern: "alloc", Method: "La;.run:()V", Start: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no match in method")
}

func TestAssertNoMatch(t *testing.T) {
	trace := sampleTrace()
	assert.NoError(t, assertNoMatch(trace, Assertion{Pattern: "missing"}))
	assert.NoError(t, assertNoMatch(trace, Assertion{Pattern: "str", Method: "La;.make:()La;"}))

	err := assertNoMatch(trace, Assertion{Pattern: "str"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matched La;.run:()V at 2 (seq 3)")

	err = assertNoMatch(trace, Assertion{Pattern: "alloc", Method: "La;.make:()La;"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "never matches La;.make:()La;")
}

func TestAssertionError_Format(t *testing.T) {
	err := &AssertionError{Type: AssertNoMatch, Expected: "e", Actual: "a", Trace: sampleTrace()[:1]}
	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: no_match")
	assert.Contains(t, msg, "  Expected: e\n")
	assert.Contains(t, msg, "[1] alloc La;.make:()La;@0")

	empty := &AssertionError{Type: AssertMatchCount}
	assert.Contains(t, empty.Error(), "(no matches)")
}

func TestEvaluateAssertions_StoredCount(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.WriteScan(ctx,
		store.ScanRun{ID: "run-1", Patterns: []string{"alloc"}, MethodCount: 1, MatchCount: 1, FirstSeq: 1, LastSeq: 1},
		[]store.MatchRecord{{RunID: "run-1", Seq: 1, Pattern: "alloc", Method: "La;.make:()La;", Start: 0, Insns: []string{"nop"}}},
	))

	result := NewResult()
	actx := &AssertionContext{Store: st, Ctx: ctx, RunID: "run-1"}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertStoredCount, Pattern: "alloc", Count: 1},
		{Type: AssertStoredCount, Pattern: "other", Count: 0},
	}, actx)
	assert.Empty(t, errs)

	errs = EvaluateAssertions(result, []Assertion{{Type: AssertStoredCount, Pattern: "alloc", Count: 3}}, actx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "1 stored")
}

func TestEvaluateAssertions_Errors(t *testing.T) {
	result := NewResult()
	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertStoredCount, Pattern: "p"},
		{Type: "final_state", Pattern: "p"},
	}, nil)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "requires database context")
	assert.Contains(t, errs[1], `unknown assertion type "final_state"`)
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
