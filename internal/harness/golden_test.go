package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSpecFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.cue")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"alloc_and_strings", "throws_only"} {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, loadTestScenario(t, name)))
		})
	}
}

func TestAssertGolden_ExistingResult(t *testing.T) {
	result, err := Run(loadTestScenario(t, "throws_only"))
	require.NoError(t, err)
	require.NoError(t, AssertGolden(t, "throws_only", result))
}

func TestMarshalSnapshot(t *testing.T) {
	data, err := MarshalSnapshot(TraceSnapshot{ScenarioName: "empty", RunID: "r"})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"scenario_name\": \"empty\",\n  \"run_id\": \"r\",\n  \"methods\": 0,\n  \"trace\": []\n}\n", string(data))

	data, err = MarshalSnapshot(TraceSnapshot{Trace: []TraceEvent{{Seq: 1, Method: "La;.<init>:()V", Insns: []string{}}}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"La;.<init>:()V"`)
}

func TestWriteAndCompareGolden(t *testing.T) {
	result, err := Run(loadTestScenario(t, "throws_only"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "golden", "throws_only.golden")
	require.NoError(t, WriteGolden(path, "throws_only", result))

	want, err := os.ReadFile("testdata/golden/throws_only.golden")
	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	match, err := CompareGolden(path, "throws_only", result)
	require.NoError(t, err)
	assert.True(t, match)

	match, err = CompareGolden(path, "renamed", result)
	require.NoError(t, err)
	assert.False(t, match)

	_, err = CompareGolden(filepath.Join(t.TempDir(), "none.golden"), "x", result)
	assert.Error(t, err)
}
