package profiles

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/dexmatch/internal/ir"
	"github.com/roach88/dexmatch/internal/store"
	"github.com/roach88/dexmatch/internal/testutil"
)

const header = "index,name,appear100,appear#,avg_call,avg_order,avg_rank100,min_api_level\n"

func program(t *testing.T) *testutil.Program {
	t.Helper()
	p := testutil.NewProgram(t)
	p.Class("Lcom/Foo;", ir.AccPublic)
	p.Method("Lcom/Foo;.run:()V", ir.AccPublic)
	p.Method("Lcom/Foo;.stop:(I)Z", ir.AccPublic)
	return p
}

func TestParse(t *testing.T) {
	p := program(t)
	core, logs := observer.New(zap.DebugLevel)
	mp := New(p.Reg, WithLogger(zap.New(core)))

	err := mp.Parse(strings.NewReader(header +
		"0,Lcom/Foo;.run:()V,90.5,181,2.25,17,12.5,21\n" +
		"1,Lcom/Gone;.x:()V,1,2,3,4,5,6\n" +
		"2,Lcom/Foo;.stop:(I)Z,0.125,1,1,99,100,0\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, mp.Len())
	run, ok := mp.Get(p.MethodRef("Lcom/Foo;.run:()V"))
	require.True(t, ok)
	assert.Equal(t, Stats{AppearPercent: 90.5, CallCount: 2.25, OrderPercent: 12.5, MinAPILevel: 21}, run)

	_, ok = mp.Get(p.MethodRef("Ljava/lang/Object;.<init>:()V"))
	assert.False(t, ok)

	entries := mp.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Lcom/Foo;.run:()V", entries[0].Method.FullName())
	assert.Equal(t, "Lcom/Foo;.stop:(I)Z", entries[1].Method.FullName())

	unresolved := logs.FilterMessage("failed to resolve profiled method").All()
	require.Len(t, unresolved, 1)
	assert.Equal(t, "Lcom/Gone;.x:()V", unresolved[0].ContextMap()["name"])
	parsed := logs.FilterMessage("method profiles parsed").All()
	require.Len(t, parsed, 1)
	assert.Equal(t, int64(3), parsed[0].ContextMap()["rows"])
	assert.Equal(t, int64(1), parsed[0].ContextMap()["skipped"])
}

func TestParse_TrailingHeaderColumn(t *testing.T) {
	mp := New(program(t).Reg)
	err := mp.Parse(strings.NewReader(strings.TrimSuffix(header, "\n") + ",\n" +
		"0,Lcom/Foo;.run:()V,1,1,1,1,1,1\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, mp.Len())
}

func TestParse_LeadingSpaceInNumbers(t *testing.T) {
	p := program(t)
	mp := New(p.Reg)
	err := mp.Parse(strings.NewReader(header +
		"0,Lcom/Foo;.run:()V, 90.5,1,\t2.25,1, 12.5, 21\n"))
	require.NoError(t, err)

	run, ok := mp.Get(p.MethodRef("Lcom/Foo;.run:()V"))
	require.True(t, ok)
	assert.Equal(t, Stats{AppearPercent: 90.5, CallCount: 2.25, OrderPercent: 12.5, MinAPILevel: 21}, run)
}

func TestParse_HeaderOnly(t *testing.T) {
	mp := New(program(t).Reg)
	require.NoError(t, mp.Parse(strings.NewReader(header)))
	assert.Zero(t, mp.Len())
	assert.Empty(t, mp.Entries())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ParseError
	}{
		{
			name: "wrong header cell",
			in:   "index,method,appear100,appear#,avg_call,avg_order,avg_rank100,min_api_level\n",
			want: ParseError{Line: 1, Column: 2, Message: `unexpected header "method", want "name"`},
		},
		{
			name: "short header",
			in:   "index,name,appear100\n",
			want: ParseError{Line: 1, Column: 4, Message: `missing header "appear#"`},
		},
		{
			name: "non-empty trailing header",
			in:   strings.TrimSuffix(header, "\n") + ",extra\n",
			want: ParseError{Line: 1, Column: 9, Message: `unexpected header "extra", want ""`},
		},
		{
			name: "two trailing header cells",
			in:   strings.TrimSuffix(header, "\n") + ",,\n",
			want: ParseError{Line: 1, Column: 10, Message: "too many header columns"},
		},
		{
			name: "too many columns",
			in:   header + "0,Lcom/Foo;.run:()V,1,1,1,1,1,1,1\n",
			want: ParseError{Line: 2, Message: "expected 8 columns, got 9"},
		},
		{
			name: "bad double",
			in:   header + "0,Lcom/Foo;.run:()V,1,1,1.5x,1,1,1\n",
			want: ParseError{Line: 2, Column: 5, Message: `can't parse "1.5x" into a double`},
		},
		{
			name: "trailing space after double",
			in:   header + "0,Lcom/Foo;.run:()V,1,1,1.5 ,1,1,1\n",
			want: ParseError{Line: 2, Column: 5, Message: `can't parse "1.5 " into a double`},
		},
		{
			name: "api level overflows a byte",
			in:   header + "0,Lcom/Foo;.run:()V,1,1,1,1,1,256\n",
			want: ParseError{Line: 2, Column: 8, Message: `can't parse "256" into a uint8`},
		},
		{
			name: "negative api level",
			in:   header + "0,Lcom/Foo;.run:()V,1,1,1,1,1,-1\n",
			want: ParseError{Line: 2, Column: 8, Message: `can't parse "-1" into a uint8`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(program(t).Reg).Parse(strings.NewReader(tt.in))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tt.want, *pe)
		})
	}
}

func TestParse_KeepsRowsBeforeError(t *testing.T) {
	mp := New(program(t).Reg)
	err := mp.Parse(strings.NewReader(header +
		"0,Lcom/Foo;.run:()V,1,1,1,1,1,1\n" +
		"1,Lcom/Foo;.stop:(I)Z,1,1,1,1,1,x\n"))
	require.Error(t, err)
	assert.Equal(t, "line 3, column 8: can't parse \"x\" into a uint8", err.Error())
	assert.Equal(t, 1, mp.Len())
}

func TestParseStatsFile(t *testing.T) {
	p := program(t)
	mp := New(p.Reg)

	assert.ErrorContains(t, mp.ParseStatsFile(""), "no stats file given")
	assert.Error(t, mp.ParseStatsFile(filepath.Join(t.TempDir(), "missing.csv")))

	path := filepath.Join(t.TempDir(), "stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+"0,Lcom/Foo;.run:()V,50,1,1,1,1,19\n"), 0644))
	require.NoError(t, mp.ParseStatsFile(path))
	assert.Equal(t, 1, mp.Len())

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("nope\n"), 0644))
	err := mp.ParseStatsFile(bad)
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Contains(t, err.Error(), bad)
}

func TestSaveLoad(t *testing.T) {
	s, err := store.Open(store.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	p := program(t)
	mp := New(p.Reg)
	require.NoError(t, mp.Parse(strings.NewReader(header+
		"0,Lcom/Foo;.run:()V,90.5,181,2.25,17,12.5,21\n"+
		"2,Lcom/Foo;.stop:(I)Z,0.125,1,1,99,100,0\n")))
	require.NoError(t, mp.Save(ctx, s))

	// A program without stop:(I)Z drops that profile on load.
	other := testutil.NewProgram(t)
	other.Class("Lcom/Foo;", ir.AccPublic)
	other.Method("Lcom/Foo;.run:()V", ir.AccPublic)
	loaded := New(other.Reg)
	require.NoError(t, loaded.Load(ctx, s))

	assert.Equal(t, 1, loaded.Len())
	got, ok := loaded.Get(other.MethodRef("Lcom/Foo;.run:()V"))
	require.True(t, ok)
	assert.Equal(t, Stats{AppearPercent: 90.5, CallCount: 2.25, OrderPercent: 12.5, MinAPILevel: 21}, got)
}
