package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dexmatch/internal/config"
	"github.com/roach88/dexmatch/internal/store"
)

func TestMatchAllPatterns(t *testing.T) {
	out, err := runCommand(t, NewMatchCommand, "text", testSpecsDir, "--workers", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Scanned 3 method(s) with 3 pattern(s): 4 match(es)")
	assert.Contains(t, out, "  alloc: 1\n")
	assert.Contains(t, out, "  strings: 2\n")
	assert.Contains(t, out, "[1] alloc Lcom/Foo;.make:()Lcom/Foo;@0")
	assert.Contains(t, out, "[4] throws Lcom/Foo;.run:()V@1")
	assert.NotContains(t, out, "new-instance", "instructions are printed only with --verbose")
}

func TestMatchPatternSubsetJSON(t *testing.T) {
	out, err := runCommand(t, NewMatchCommand, "json", testSpecsDir, "--pattern", "throws", "-p", "alloc")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   MatchResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, []string{"throws", "alloc"}, resp.Data.Patterns)
	assert.Equal(t, map[string]int{"throws": 1, "alloc": 1}, resp.Data.Counts)
	require.Len(t, resp.Data.Matches, 2)
	// make is visited before run, so the alloc match comes first
	assert.Equal(t, "alloc", resp.Data.Matches[0].Pattern)
	assert.Equal(t, []string{
		"new-instance Lcom/Foo;",
		"move-result-pseudo-object v0",
		"invoke-direct v0 Lcom/Foo;.<init>:()V",
	}, resp.Data.Matches[0].Insns)
	assert.NotEmpty(t, resp.Data.RunID)
}

func TestMatchVerbosePrintsInstructions(t *testing.T) {
	buf, errBuf := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewMatchCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{testSpecsDir, "-p", "throws"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "      throw v0")
	assert.Contains(t, errBuf.String(), "Scanning with 1 pattern(s)")
}

func TestMatchPersistsAndResumes(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scans.db")

	_, err := runCommand(t, NewMatchCommand, "text", testSpecsDir, "--db", db)
	require.NoError(t, err)
	out, err := runCommand(t, NewMatchCommand, "text", testSpecsDir, "--db", db, "-p", "throws")
	require.NoError(t, err)
	assert.Contains(t, out, "[5] throws Lcom/Foo;.run:()V@1")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	last, err := st.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), last)
}

func TestMatchDatabaseFromConfig(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cfg.db")
	cfg := config.Default()
	cfg.Database = db
	opts := &RootOptions{Format: "text", Config: cfg}

	cmd := NewMatchCommand(opts)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{testSpecsDir, "-p", "alloc"})
	require.NoError(t, cmd.Execute())

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	last, err := st.LastSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), last)
}

func TestMatchQuotaExceeded(t *testing.T) {
	out, err := runCommand(t, NewMatchCommand, "text", testSpecsDir, "--max-matches", "2")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [QUOTA_EXCEEDED]")
}

func TestMatchUnknownPattern(t *testing.T) {
	out, err := runCommand(t, NewMatchCommand, "json", testSpecsDir, "-p", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_PATTERN", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, `unknown pattern "nope"`)
}

func TestMatchInvalidPattern(t *testing.T) {
	out, err := runCommand(t, NewMatchCommand, "text", "testdata/lintspecs")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [INVALID_PATTERN]")
}

func TestMatchBadDatabase(t *testing.T) {
	out, err := runCommand(t, NewMatchCommand, "text", testSpecsDir, "--db", "/nonexistent/dir/x.db")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "opening database")
}
