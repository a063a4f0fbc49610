package ir

import "fmt"

// Opcode identifies an IR instruction.
type Opcode uint16

// Opcodes understood by the IR. The load-param and move-result-pseudo
// families are IR-only pseudo instructions; the rest mirror Dex opcodes.
const (
	OpNop Opcode = iota
	OpLoadParam
	OpLoadParamObject
	OpLoadParamWide
	OpMove
	OpMoveObject
	OpMoveWide
	OpMoveResult
	OpMoveResultObject
	OpMoveResultWide
	OpMoveResultPseudo
	OpMoveResultPseudoObject
	OpMoveResultPseudoWide
	OpMoveException
	OpReturnVoid
	OpReturn
	OpReturnObject
	OpReturnWide
	OpConst
	OpConstWide
	OpConstString
	OpConstClass
	OpCheckCast
	OpInstanceOf
	OpNewInstance
	OpNewArray
	OpArrayLength
	OpThrow
	OpGoto
	OpIfEqz
	OpIfNez
	OpIfEq
	OpIfNe
	OpIGet
	OpIGetWide
	OpIGetObject
	OpIGetBoolean
	OpIGetByte
	OpIGetChar
	OpIGetShort
	OpIPut
	OpIPutWide
	OpIPutObject
	OpIPutBoolean
	OpIPutByte
	OpIPutChar
	OpIPutShort
	OpSGet
	OpSGetWide
	OpSGetObject
	OpSGetBoolean
	OpSGetByte
	OpSGetChar
	OpSGetShort
	OpSPut
	OpSPutWide
	OpSPutObject
	OpSPutBoolean
	OpSPutByte
	OpSPutChar
	OpSPutShort
	OpInvokeVirtual
	OpInvokeSuper
	OpInvokeDirect
	OpInvokeStatic
	OpInvokeInterface
	OpMonitorEnter
	OpMonitorExit
	OpAddInt

	opcodeCount
)

// OperandKind is the kind of reference operand an opcode carries.
type OperandKind uint8

const (
	OperandNone OperandKind = iota
	OperandType
	OperandMethod
	OperandField
	OperandString
)

func (k OperandKind) String() string {
	switch k {
	case OperandType:
		return "type"
	case OperandMethod:
		return "method"
	case OperandField:
		return "field"
	case OperandString:
		return "string"
	default:
		return "none"
	}
}

type opcodeInfo struct {
	name    string
	operand OperandKind
}

var opcodeTable = [opcodeCount]opcodeInfo{
	OpNop:                    {"nop", OperandNone},
	OpLoadParam:              {"load-param", OperandNone},
	OpLoadParamObject:        {"load-param-object", OperandNone},
	OpLoadParamWide:          {"load-param-wide", OperandNone},
	OpMove:                   {"move", OperandNone},
	OpMoveObject:             {"move-object", OperandNone},
	OpMoveWide:               {"move-wide", OperandNone},
	OpMoveResult:             {"move-result", OperandNone},
	OpMoveResultObject:       {"move-result-object", OperandNone},
	OpMoveResultWide:         {"move-result-wide", OperandNone},
	OpMoveResultPseudo:       {"move-result-pseudo", OperandNone},
	OpMoveResultPseudoObject: {"move-result-pseudo-object", OperandNone},
	OpMoveResultPseudoWide:   {"move-result-pseudo-wide", OperandNone},
	OpMoveException:          {"move-exception", OperandNone},
	OpReturnVoid:             {"return-void", OperandNone},
	OpReturn:                 {"return", OperandNone},
	OpReturnObject:           {"return-object", OperandNone},
	OpReturnWide:             {"return-wide", OperandNone},
	OpConst:                  {"const", OperandNone},
	OpConstWide:              {"const-wide", OperandNone},
	OpConstString:            {"const-string", OperandString},
	OpConstClass:             {"const-class", OperandType},
	OpCheckCast:              {"check-cast", OperandType},
	OpInstanceOf:             {"instance-of", OperandType},
	OpNewInstance:            {"new-instance", OperandType},
	OpNewArray:               {"new-array", OperandType},
	OpArrayLength:            {"array-length", OperandNone},
	OpThrow:                  {"throw", OperandNone},
	OpGoto:                   {"goto", OperandNone},
	OpIfEqz:                  {"if-eqz", OperandNone},
	OpIfNez:                  {"if-nez", OperandNone},
	OpIfEq:                   {"if-eq", OperandNone},
	OpIfNe:                   {"if-ne", OperandNone},
	OpIGet:                   {"iget", OperandField},
	OpIGetWide:               {"iget-wide", OperandField},
	OpIGetObject:             {"iget-object", OperandField},
	OpIGetBoolean:            {"iget-boolean", OperandField},
	OpIGetByte:               {"iget-byte", OperandField},
	OpIGetChar:               {"iget-char", OperandField},
	OpIGetShort:              {"iget-short", OperandField},
	OpIPut:                   {"iput", OperandField},
	OpIPutWide:               {"iput-wide", OperandField},
	OpIPutObject:             {"iput-object", OperandField},
	OpIPutBoolean:            {"iput-boolean", OperandField},
	OpIPutByte:               {"iput-byte", OperandField},
	OpIPutChar:               {"iput-char", OperandField},
	OpIPutShort:              {"iput-short", OperandField},
	OpSGet:                   {"sget", OperandField},
	OpSGetWide:               {"sget-wide", OperandField},
	OpSGetObject:             {"sget-object", OperandField},
	OpSGetBoolean:            {"sget-boolean", OperandField},
	OpSGetByte:               {"sget-byte", OperandField},
	OpSGetChar:               {"sget-char", OperandField},
	OpSGetShort:              {"sget-short", OperandField},
	OpSPut:                   {"sput", OperandField},
	OpSPutWide:               {"sput-wide", OperandField},
	OpSPutObject:             {"sput-object", OperandField},
	OpSPutBoolean:            {"sput-boolean", OperandField},
	OpSPutByte:               {"sput-byte", OperandField},
	OpSPutChar:               {"sput-char", OperandField},
	OpSPutShort:              {"sput-short", OperandField},
	OpInvokeVirtual:          {"invoke-virtual", OperandMethod},
	OpInvokeSuper:            {"invoke-super", OperandMethod},
	OpInvokeDirect:           {"invoke-direct", OperandMethod},
	OpInvokeStatic:           {"invoke-static", OperandMethod},
	OpInvokeInterface:        {"invoke-interface", OperandMethod},
	OpMonitorEnter:           {"monitor-enter", OperandNone},
	OpMonitorExit:            {"monitor-exit", OperandNone},
	OpAddInt:                 {"add-int", OperandNone},
}

var opcodesByName = func() map[string]Opcode {
	m := make(map[string]Opcode, opcodeCount)
	for op := Opcode(0); op < opcodeCount; op++ {
		m[opcodeTable[op].name] = op
	}
	return m
}()

// ParseOpcode returns the opcode with the given mnemonic, e.g. "invoke-direct".
func ParseOpcode(name string) (Opcode, error) {
	op, ok := opcodesByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown opcode %q", name)
	}
	return op, nil
}

// Valid reports whether op is a known opcode.
func (op Opcode) Valid() bool {
	return op < opcodeCount
}

func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("opcode(%d)", uint16(op))
	}
	return opcodeTable[op].name
}

// Operand returns the kind of reference operand op carries.
func (op Opcode) Operand() OperandKind {
	if !op.Valid() {
		return OperandNone
	}
	return opcodeTable[op].operand
}

// HasTypeOperand reports whether op references a type.
func (op Opcode) HasTypeOperand() bool { return op.Operand() == OperandType }

// HasMethodOperand reports whether op references a method.
func (op Opcode) HasMethodOperand() bool { return op.Operand() == OperandMethod }

// HasFieldOperand reports whether op references a field.
func (op Opcode) HasFieldOperand() bool { return op.Operand() == OperandField }

// HasStringOperand reports whether op references a string.
func (op Opcode) HasStringOperand() bool { return op.Operand() == OperandString }

// IsInvoke reports whether op is any invoke-* opcode.
func (op Opcode) IsInvoke() bool {
	return op >= OpInvokeVirtual && op <= OpInvokeInterface
}

// IsIGet reports whether op is any iget-* opcode.
func (op Opcode) IsIGet() bool {
	return op >= OpIGet && op <= OpIGetShort
}

// IsIPut reports whether op is any iput-* opcode.
func (op Opcode) IsIPut() bool {
	return op >= OpIPut && op <= OpIPutShort
}

// IsSGet reports whether op is any sget-* opcode.
func (op Opcode) IsSGet() bool {
	return op >= OpSGet && op <= OpSGetShort
}

// IsSPut reports whether op is any sput-* opcode.
func (op Opcode) IsSPut() bool {
	return op >= OpSPut && op <= OpSPutShort
}

// IsMoveResultPseudo reports whether op is any move-result-pseudo* opcode.
func (op Opcode) IsMoveResultPseudo() bool {
	return op >= OpMoveResultPseudo && op <= OpMoveResultPseudoWide
}

// IsLoadParam reports whether op is any load-param* opcode.
func (op Opcode) IsLoadParam() bool {
	return op >= OpLoadParam && op <= OpLoadParamWide
}

// IsReturn reports whether op is any return* opcode.
func (op Opcode) IsReturn() bool {
	return op >= OpReturnVoid && op <= OpReturnWide
}
