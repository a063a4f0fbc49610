package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Reg is a virtual register number.
type Reg uint32

// Instruction is a single IR instruction. It carries at most one
// reference operand whose kind is fixed by the opcode.
type Instruction struct {
	op      Opcode
	srcs    []Reg
	dest    Reg
	hasDest bool
	literal int64

	typ    *Type
	method *MethodRef
	field  *FieldRef
	str    *String
}

// NewInstruction creates an instruction with the given source registers.
func NewInstruction(op Opcode, srcs ...Reg) *Instruction {
	return &Instruction{op: op, srcs: srcs}
}

// WithDest sets the destination register.
func (i *Instruction) WithDest(r Reg) *Instruction {
	i.dest = r
	i.hasDest = true
	return i
}

// WithLiteral sets the literal payload (const, if-* offsets).
func (i *Instruction) WithLiteral(v int64) *Instruction {
	i.literal = v
	return i
}

// WithType sets the type operand. It panics if the opcode does not take one.
func (i *Instruction) WithType(t *Type) *Instruction {
	i.mustOperand(OperandType)
	i.typ = t
	return i
}

// WithMethod sets the method operand. It panics if the opcode does not take one.
func (i *Instruction) WithMethod(m *MethodRef) *Instruction {
	i.mustOperand(OperandMethod)
	i.method = m
	return i
}

// WithField sets the field operand. It panics if the opcode does not take one.
func (i *Instruction) WithField(f *FieldRef) *Instruction {
	i.mustOperand(OperandField)
	i.field = f
	return i
}

// WithString sets the string operand. It panics if the opcode does not take one.
func (i *Instruction) WithString(s *String) *Instruction {
	i.mustOperand(OperandString)
	i.str = s
	return i
}

func (i *Instruction) mustOperand(k OperandKind) {
	if got := i.op.Operand(); got != k {
		panic(fmt.Sprintf("ir: %s takes a %s operand, not %s", i.op, got, k))
	}
}

// Opcode returns the instruction opcode.
func (i *Instruction) Opcode() Opcode { return i.op }

// Srcs returns the source registers.
func (i *Instruction) Srcs() []Reg { return i.srcs }

// NumSrcs returns the number of source registers.
func (i *Instruction) NumSrcs() int { return len(i.srcs) }

// Dest returns the destination register and whether one is set.
func (i *Instruction) Dest() (Reg, bool) { return i.dest, i.hasDest }

// Literal returns the literal payload.
func (i *Instruction) Literal() int64 { return i.literal }

// HasType reports whether the instruction carries a type operand.
func (i *Instruction) HasType() bool { return i.typ != nil }

// Type returns the type operand, or nil.
func (i *Instruction) Type() *Type { return i.typ }

// HasMethod reports whether the instruction carries a method operand.
func (i *Instruction) HasMethod() bool { return i.method != nil }

// Method returns the method operand, or nil.
func (i *Instruction) Method() *MethodRef { return i.method }

// HasField reports whether the instruction carries a field operand.
func (i *Instruction) HasField() bool { return i.field != nil }

// Field returns the field operand, or nil.
func (i *Instruction) Field() *FieldRef { return i.field }

// HasString reports whether the instruction carries a string operand.
func (i *Instruction) HasString() bool { return i.str != nil }

// Str returns the string operand, or nil.
func (i *Instruction) Str() *String { return i.str }

func (i *Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.op.String())
	if i.hasDest {
		fmt.Fprintf(&b, " v%d", i.dest)
	}
	for _, r := range i.srcs {
		fmt.Fprintf(&b, " v%d", r)
	}
	switch {
	case i.typ != nil:
		b.WriteString(" " + i.typ.descriptor)
	case i.method != nil:
		b.WriteString(" " + i.method.FullName())
	case i.field != nil:
		b.WriteString(" " + i.field.FullName())
	case i.str != nil:
		b.WriteString(" " + strconv.Quote(i.str.value))
	}
	if i.literal != 0 {
		fmt.Fprintf(&b, " #%d", i.literal)
	}
	return b.String()
}
