package match

import "github.com/roach88/dexmatch/internal/ir"

// Instruction predicates take optional operand matchers. With none the
// operand is unconstrained; with several, all must match.

func opcodeIs(test func(ir.Opcode) bool) Matcher[*ir.Instruction] {
	return Func[*ir.Instruction](func(i *ir.Instruction) bool { return test(i.Opcode()) })
}

func exactly(op ir.Opcode) func(ir.Opcode) bool {
	return func(o ir.Opcode) bool { return o == op }
}

func invokeWith(test func(ir.Opcode) bool, p []Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return And(opcodeIs(test), OpcodeMethod(All(p...)))
}

// NewInstance matches new-instance of a type accepted by p.
func NewInstance(p ...Matcher[*ir.Type]) Matcher[*ir.Instruction] {
	return And(opcodeIs(exactly(ir.OpNewInstance)), OpcodeType(All(p...)))
}

// InvokeDirect matches invoke-direct of a method accepted by p.
func InvokeDirect(p ...Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return invokeWith(exactly(ir.OpInvokeDirect), p)
}

// InvokeStatic matches invoke-static of a method accepted by p.
func InvokeStatic(p ...Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return invokeWith(exactly(ir.OpInvokeStatic), p)
}

// InvokeVirtual matches invoke-virtual of a method accepted by p.
func InvokeVirtual(p ...Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return invokeWith(exactly(ir.OpInvokeVirtual), p)
}

// InvokeInterface matches invoke-interface of a method accepted by p.
func InvokeInterface(p ...Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return invokeWith(exactly(ir.OpInvokeInterface), p)
}

// InvokeSuper matches invoke-super of a method accepted by p.
func InvokeSuper(p ...Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return invokeWith(exactly(ir.OpInvokeSuper), p)
}

// Invoke matches any invoke of a method accepted by p.
func Invoke(p ...Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return invokeWith(ir.Opcode.IsInvoke, p)
}

// IGet matches any iget-* of a field accepted by p.
func IGet(p ...Matcher[*ir.FieldRef]) Matcher[*ir.Instruction] {
	return And(opcodeIs(ir.Opcode.IsIGet), OpcodeField(All(p...)))
}

// IPut matches any iput-* of a field accepted by p.
func IPut(p ...Matcher[*ir.FieldRef]) Matcher[*ir.Instruction] {
	return And(opcodeIs(ir.Opcode.IsIPut), OpcodeField(All(p...)))
}

// SGet matches any sget-* of a field accepted by p.
func SGet(p ...Matcher[*ir.FieldRef]) Matcher[*ir.Instruction] {
	return And(opcodeIs(ir.Opcode.IsSGet), OpcodeField(All(p...)))
}

// SPut matches any sput-* of a field accepted by p.
func SPut(p ...Matcher[*ir.FieldRef]) Matcher[*ir.Instruction] {
	return And(opcodeIs(ir.Opcode.IsSPut), OpcodeField(All(p...)))
}

// HasType matches instructions that carry a type operand.
func HasType() Matcher[*ir.Instruction] {
	return Func[*ir.Instruction](func(i *ir.Instruction) bool { return i.HasType() })
}

// ConstString matches const-string.
func ConstString() Matcher[*ir.Instruction] {
	return opcodeIs(exactly(ir.OpConstString))
}

// MoveResultPseudo matches any move-result-pseudo*.
func MoveResultPseudo() Matcher[*ir.Instruction] {
	return opcodeIs(ir.Opcode.IsMoveResultPseudo)
}

// Throw matches throw.
func Throw() Matcher[*ir.Instruction] {
	return opcodeIs(exactly(ir.OpThrow))
}

// ReturnVoid matches return-void.
func ReturnVoid() Matcher[*ir.Instruction] {
	return opcodeIs(exactly(ir.OpReturnVoid))
}

// HasNArgs matches instructions with exactly n source registers.
func HasNArgs(n int) Matcher[*ir.Instruction] {
	return Func[*ir.Instruction](func(i *ir.Instruction) bool { return i.NumSrcs() == n })
}

// IsOpcode matches instructions with opcode op.
func IsOpcode(op ir.Opcode) Matcher[*ir.Instruction] {
	return opcodeIs(exactly(op))
}
