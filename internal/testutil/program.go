// Package testutil provides helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dexmatch/internal/ir"
)

// Program builds a small IR program for tests. Every step fails the test
// on error, so callers can chain definitions without checks.
type Program struct {
	t   testing.TB
	Reg *ir.Registry
}

// NewProgram starts an empty program with java.lang.Object defined as an
// external class.
func NewProgram(t testing.TB) *Program {
	t.Helper()
	p := &Program{t: t, Reg: ir.NewRegistry()}
	p.External(ir.ObjectDescriptor, ir.AccPublic)
	p.Method(ir.ObjectDescriptor+".<init>:()V", ir.AccPublic)
	return p
}

// Class defines a program class extending java.lang.Object.
func (p *Program) Class(desc string, flags ir.AccessFlags) *ir.Class {
	p.t.Helper()
	c := p.define(desc, flags)
	c.Super = p.Type(ir.ObjectDescriptor)
	c.ClassData = true
	return c
}

// External defines a class that lives outside the program.
func (p *Program) External(desc string, flags ir.AccessFlags) *ir.Class {
	p.t.Helper()
	c := p.define(desc, flags)
	c.External = true
	return c
}

func (p *Program) define(desc string, flags ir.AccessFlags) *ir.Class {
	p.t.Helper()
	c, err := p.Reg.DefineClass(p.Type(desc))
	require.NoError(p.t, err)
	c.Flags = flags
	return c
}

// Method defines a method such as "Lcom/Foo;.run:()V". A method given
// instructions gets a body; one given none stays bodiless.
func (p *Program) Method(full string, flags ir.AccessFlags, insns ...*ir.Instruction) *ir.Method {
	p.t.Helper()
	ref := p.MethodRef(full)
	if ir.IsConstructorName(ref.Name()) {
		flags |= ir.AccConstructor
	}
	m, err := p.Reg.DefineMethod(ref, flags)
	require.NoError(p.t, err)
	if len(insns) > 0 {
		m.Code = &ir.Code{Insns: insns}
	}
	return m
}

// Field defines a field such as "Lcom/Foo;.count:I".
func (p *Program) Field(full string, flags ir.AccessFlags) *ir.Field {
	p.t.Helper()
	f, err := p.Reg.DefineField(p.FieldRef(full), flags)
	require.NoError(p.t, err)
	return f
}

// Type interns a type descriptor.
func (p *Program) Type(desc string) *ir.Type {
	p.t.Helper()
	t, err := p.Reg.MakeType(desc)
	require.NoError(p.t, err)
	return t
}

// MethodRef interns a method reference.
func (p *Program) MethodRef(full string) *ir.MethodRef {
	p.t.Helper()
	ref, err := p.Reg.MakeMethodRef(full)
	require.NoError(p.t, err)
	return ref
}

// FieldRef interns a field reference.
func (p *Program) FieldRef(full string) *ir.FieldRef {
	p.t.Helper()
	ref, err := p.Reg.MakeFieldRef(full)
	require.NoError(p.t, err)
	return ref
}

// String interns a string constant.
func (p *Program) String(s string) *ir.String {
	return p.Reg.MakeString(s)
}

// Insn is shorthand for ir.NewInstruction.
func Insn(op ir.Opcode, srcs ...ir.Reg) *ir.Instruction {
	return ir.NewInstruction(op, srcs...)
}
