package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dexmatch/internal/ir"
)

func ops(codes ...ir.Opcode) []*ir.Instruction {
	out := make([]*ir.Instruction, len(codes))
	for i, c := range codes {
		out[i] = ir.NewInstruction(c)
	}
	return out
}

func TestFindMatchesConstructorSequence(t *testing.T) {
	p := newProgram(t)
	insns := []*ir.Instruction{
		ir.NewInstruction(ir.OpNewInstance).WithType(p.foo.AsType()),
		ir.NewInstruction(ir.OpInvokeDirect, 0).WithMethod(p.fooInit.Ref()),
		ir.NewInstruction(ir.OpMoveResultPseudoObject).WithDest(0),
	}
	pattern := Pattern[*ir.Instruction]{NewInstance(), InvokeDirect(), MoveResultPseudo()}

	got := FindMatches(nil, insns, pattern)
	require.Len(t, got, 1)
	require.Len(t, got[0], 3)
	for k := range insns {
		assert.Same(t, insns[k], got[0][k])
	}
	assert.Equal(t, []int{0}, MatchIndices(insns, pattern))
}

func TestFindMatchesAlternating(t *testing.T) {
	a, b := ir.OpConst, ir.OpReturn
	insns := ops(a, b, a, b)
	got := FindMatches(nil, insns, Pattern[*ir.Instruction]{IsOpcode(a), IsOpcode(b)})
	require.Len(t, got, 2)
	assert.Same(t, insns[0], got[0][0])
	assert.Same(t, insns[2], got[1][0])
	assert.Equal(t, []int{0, 2}, MatchIndices(insns, Pattern[*ir.Instruction]{IsOpcode(a), IsOpcode(b)}))
}

func TestFindMatchesOverlapping(t *testing.T) {
	a := ir.OpConst
	insns := ops(a, a, a)
	pattern := Pattern[*ir.Instruction]{IsOpcode(a), IsOpcode(a)}
	got := FindMatches(nil, insns, pattern)
	require.Len(t, got, 2)
	assert.Same(t, insns[0], got[0][0])
	assert.Same(t, insns[1], got[1][0])
	assert.Same(t, insns[2], got[1][1])
}

func TestFindMatchesWindowIsCapped(t *testing.T) {
	insns := ops(ir.OpConst, ir.OpConst, ir.OpReturn)
	got := FindMatches(nil, insns, Pattern[*ir.Instruction]{IsOpcode(ir.OpConst)})
	require.Len(t, got, 2)
	w := append(got[0], ir.NewInstruction(ir.OpThrow))
	assert.Equal(t, ir.OpThrow, w[1].Opcode())
	assert.Equal(t, ir.OpConst, insns[1].Opcode(), "appending to a window must not write into the source")
}

func TestPatternWindow(t *testing.T) {
	insns := ops(ir.OpConst, ir.OpReturn, ir.OpThrow)
	pattern := Pattern[*ir.Instruction]{IsOpcode(ir.OpReturn), IsOpcode(ir.OpThrow)}
	w := pattern.Window(insns, 1)
	require.Len(t, w, 2)
	assert.Equal(t, 2, cap(w))
	assert.Same(t, insns[1], w[0])
	assert.Same(t, insns[2], w[1])
}

func TestFindInsnIndices(t *testing.T) {
	insns := ops(ir.OpConst, ir.OpReturn, ir.OpConst, ir.OpThrow)
	assert.Equal(t, []int{0, 2}, FindInsnIndices(insns, IsOpcode(ir.OpConst)))
	assert.Empty(t, FindInsnIndices(insns, IsOpcode(ir.OpNop)))
}

func TestFindMatchesPatternLongerThanInput(t *testing.T) {
	insns := ops(ir.OpConst)
	got := FindMatches(nil, insns, Pattern[*ir.Instruction]{Any[*ir.Instruction](), Any[*ir.Instruction]()})
	assert.Empty(t, got)
	assert.Empty(t, FindMatches(nil, nil, Pattern[*ir.Instruction]{Any[*ir.Instruction]()}))
}

func TestFindMatchesEmptyPattern(t *testing.T) {
	insns := ops(ir.OpConst, ir.OpReturn)
	assert.Empty(t, FindMatches(nil, insns, nil))
	assert.Empty(t, MatchIndices(insns, Pattern[*ir.Instruction]{}))
}

func TestFindMatchesAppends(t *testing.T) {
	insns := ops(ir.OpConst, ir.OpReturn)
	prior := [][]*ir.Instruction{insns[:1]}
	got := FindMatches(prior, insns, Pattern[*ir.Instruction]{IsOpcode(ir.OpReturn)})
	require.Len(t, got, 2)
	assert.Same(t, insns[1], got[1][0])
}

func TestFindInsnMatch(t *testing.T) {
	x, y, z := ir.OpConst, ir.OpReturn, ir.OpThrow
	insns := ops(x, y, x, z)
	got := FindInsnMatch(nil, insns, IsOpcode(x))
	require.Len(t, got, 2)
	assert.Same(t, insns[0], got[0])
	assert.Same(t, insns[2], got[1])
	assert.Empty(t, FindInsnMatch(nil, insns, IsOpcode(ir.OpNop)))
}

func TestFindMatchesGenericKinds(t *testing.T) {
	even := New(func(n int) bool { return n%2 == 0 })
	odd := Not(even)
	got := FindMatches(nil, []int{2, 3, 4, 5, 7}, Pattern[int]{even, odd})
	assert.Equal(t, [][]int{{2, 3}, {4, 5}}, got)
}
