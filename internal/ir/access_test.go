package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessFlagsString(t *testing.T) {
	assert.Equal(t, "public final", (AccPublic | AccFinal).String())
	assert.Equal(t, "", AccessFlags(0).String())
	assert.Equal(t, "static 0x20000", (AccStatic | 0x20000).String())
}

func TestParseAccessFlags(t *testing.T) {
	flags, err := ParseAccessFlags([]string{"public", "Static", " abstract "})
	require.NoError(t, err)
	assert.True(t, flags.Has(AccPublic|AccStatic|AccAbstract))
	assert.False(t, flags.Has(AccFinal))

	bridge, err := ParseAccessFlag("bridge")
	require.NoError(t, err)
	assert.Equal(t, AccVolatile, bridge)

	_, err = ParseAccessFlags([]string{"public", "sealed"})
	assert.ErrorContains(t, err, "sealed")
}

func TestOpcodeRoundTrip(t *testing.T) {
	for op := Opcode(0); op < opcodeCount; op++ {
		parsed, err := ParseOpcode(op.String())
		require.NoError(t, err, op.String())
		assert.Equal(t, op, parsed)
	}
	_, err := ParseOpcode("invoke-polymorphic")
	assert.Error(t, err)
	assert.Equal(t, "opcode(9999)", Opcode(9999).String())
	assert.False(t, Opcode(9999).Valid())
}

func TestOpcodeFamilies(t *testing.T) {
	tests := []struct {
		op      Opcode
		invoke  bool
		iget    bool
		iput    bool
		pseudo  bool
		operand OperandKind
	}{
		{OpInvokeVirtual, true, false, false, false, OperandMethod},
		{OpInvokeInterface, true, false, false, false, OperandMethod},
		{OpIGetObject, false, true, false, false, OperandField},
		{OpIPutShort, false, false, true, false, OperandField},
		{OpSGet, false, false, false, false, OperandField},
		{OpMoveResultPseudoObject, false, false, false, true, OperandNone},
		{OpNewInstance, false, false, false, false, OperandType},
		{OpConstString, false, false, false, false, OperandString},
		{OpReturnVoid, false, false, false, false, OperandNone},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.invoke, tt.op.IsInvoke())
			assert.Equal(t, tt.iget, tt.op.IsIGet())
			assert.Equal(t, tt.iput, tt.op.IsIPut())
			assert.Equal(t, tt.pseudo, tt.op.IsMoveResultPseudo())
			assert.Equal(t, tt.operand, tt.op.Operand())
		})
	}
	assert.True(t, OpSPutWide.IsSPut())
	assert.True(t, OpSGetChar.IsSGet())
	assert.True(t, OpLoadParamWide.IsLoadParam())
	assert.True(t, OpReturnObject.IsReturn())
}
