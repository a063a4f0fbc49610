package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuotaEnforcer_WithinLimit(t *testing.T) {
	q := NewQuotaEnforcer(3)
	for i := 0; i < 3; i++ {
		assert.NoError(t, q.Check("run-1"), "match %d should be allowed", i+1)
	}
	assert.Equal(t, 3, q.Current())
	assert.Equal(t, 3, q.MaxMatches())
}

func TestQuotaEnforcer_ExceedsLimit(t *testing.T) {
	q := NewQuotaEnforcer(1)
	require.NoError(t, q.Check("run-1"))

	err := q.Check("run-1")
	require.Error(t, err)
	assert.True(t, IsMatchesExceededError(err))
	assert.True(t, IsMatchesExceededError(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, "run run-1 exceeded match quota: 2 matches > 1 limit", err.Error())
}

func TestQuotaEnforcer_Unlimited(t *testing.T) {
	q := NewQuotaEnforcer(0)
	for i := 0; i < 1000; i++ {
		require.NoError(t, q.Check("run-1"))
	}
	assert.False(t, IsMatchesExceededError(nil))
}
