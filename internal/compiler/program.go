package compiler

import (
	"errors"
	"fmt"
	"math"

	"cuelang.org/go/cue"

	"github.com/roach88/dexmatch/internal/ir"
)

// CompileProgram reads the "class" struct of v into reg.
//
// The CUE layout is:
//
//	class: "Lcom/Foo;": {
//		super:       "Ljava/lang/Object;"
//		interfaces:  ["Ljava/lang/Runnable;"]
//		access:      ["public", "final"]
//		external:    false
//		class_data:  true
//		annotations: ["Lcom/Keep;"]
//		keep:        {keep: true, allow_shrinking: false, allow_obfuscation: false}
//		fields: [{name: "count", type: "I", access: ["private"]}]
//		methods: [{
//			name:   "run"
//			proto:  "()V"
//			access: ["public"]
//			code: [
//				{op: "invoke-static", method: "Lcom/Util;.log:()V"},
//				{op: "return-void"},
//			]
//		}]
//	}
//
// Classes are declared first so that superclasses, member references and
// code may refer to any class regardless of file order. Code is compiled
// in a second pass after every member is defined.
func CompileProgram(v cue.Value, reg *ir.Registry) error {
	if err := v.Err(); err != nil {
		return formatCUEError(err)
	}
	classesVal := lookup(v, "class")
	if !classesVal.Exists() {
		return nil
	}
	iter, err := classesVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}

	type pending struct {
		cls *ir.Class
		val cue.Value
	}
	var decls []pending
	for iter.Next() {
		desc := labelOf(iter.Selector())
		cls, err := declareClass(reg, desc, iter.Value())
		if err != nil {
			return err
		}
		decls = append(decls, pending{cls: cls, val: iter.Value()})
	}

	var bodies []methodBody
	for _, d := range decls {
		b, err := compileMembers(reg, d.cls, d.val)
		if err != nil {
			return err
		}
		bodies = append(bodies, b...)
	}

	for _, b := range bodies {
		insns, err := compileCode(reg, b.method, b.code)
		if err != nil {
			return err
		}
		b.method.Code = &ir.Code{Insns: insns}
	}
	return nil
}

func declareClass(reg *ir.Registry, desc string, v cue.Value) (*ir.Class, error) {
	field := "class." + desc
	t, err := reg.MakeType(desc)
	if err != nil {
		return nil, newError(ErrCodeInvalidClass, field, v.Pos(), "%v", err)
	}
	cls, err := reg.DefineClass(t)
	if err != nil {
		code := ErrCodeInvalidClass
		if errors.Is(err, ir.ErrDuplicate) {
			code = ErrCodeDuplicate
		}
		return nil, newError(code, field, v.Pos(), "%v", err)
	}

	if super, ok, err := optString(v, "super"); err != nil {
		return nil, err
	} else if ok {
		st, err := reg.MakeType(super)
		if err != nil {
			return nil, newError(ErrCodeInvalidClass, field+".super", v.Pos(), "%v", err)
		}
		cls.Super = st
	}

	ifaces, err := stringList(v, "interfaces")
	if err != nil {
		return nil, err
	}
	for _, i := range ifaces {
		it, err := reg.MakeType(i)
		if err != nil {
			return nil, newError(ErrCodeInvalidClass, field+".interfaces", v.Pos(), "%v", err)
		}
		cls.Interfaces = append(cls.Interfaces, it)
	}

	if cls.Flags, err = accessOf(v, field); err != nil {
		return nil, err
	}
	if cls.External, err = optBool(v, "external", false); err != nil {
		return nil, err
	}
	if cls.ClassData, err = optBool(v, "class_data", !cls.External); err != nil {
		return nil, err
	}
	if cls.Annotations, err = annotationsOf(reg, v, field); err != nil {
		return nil, err
	}
	if cls.RState, err = keepOf(v); err != nil {
		return nil, err
	}
	return cls, nil
}

type methodBody struct {
	method *ir.Method
	code   cue.Value
}

func compileMembers(reg *ir.Registry, cls *ir.Class, v cue.Value) ([]methodBody, error) {
	desc := cls.Name()

	if fields := lookup(v, "fields"); fields.Exists() {
		iter, err := fields.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			if err := compileField(reg, desc, iter.Value()); err != nil {
				return nil, err
			}
		}
	}

	var bodies []methodBody
	if methods := lookup(v, "methods"); methods.Exists() {
		iter, err := methods.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for iter.Next() {
			m, code, err := compileMethod(reg, desc, iter.Value())
			if err != nil {
				return nil, err
			}
			if code.Exists() {
				bodies = append(bodies, methodBody{method: m, code: code})
			}
		}
	}
	return bodies, nil
}

func requiredString(v cue.Value, name, field string) (string, error) {
	s, ok, err := optString(v, name)
	if err != nil {
		return "", err
	}
	if !ok || s == "" {
		return "", newError(ErrCodeInvalidMember, field+"."+name, v.Pos(), "%s is required", name)
	}
	return s, nil
}

func compileField(reg *ir.Registry, class string, v cue.Value) error {
	field := "class." + class + ".fields"
	name, err := requiredString(v, "name", field)
	if err != nil {
		return err
	}
	typ, err := requiredString(v, "type", field)
	if err != nil {
		return err
	}
	field += "." + name
	ref, err := reg.MakeFieldRef(ir.FieldName(class, name, typ))
	if err != nil {
		return newError(ErrCodeInvalidMember, field, v.Pos(), "%v", err)
	}
	flags, err := accessOf(v, field)
	if err != nil {
		return err
	}
	f, err := reg.DefineField(ref, flags)
	if err != nil {
		return memberError(field, v, err)
	}
	if f.Annotations, err = annotationsOf(reg, v, field); err != nil {
		return err
	}
	f.RState, err = keepOf(v)
	return err
}

func compileMethod(reg *ir.Registry, class string, v cue.Value) (*ir.Method, cue.Value, error) {
	field := "class." + class + ".methods"
	name, err := requiredString(v, "name", field)
	if err != nil {
		return nil, cue.Value{}, err
	}
	proto, err := requiredString(v, "proto", field)
	if err != nil {
		return nil, cue.Value{}, err
	}
	field += "." + name
	ref, err := reg.MakeMethodRef(ir.MethodName(class, name, proto))
	if err != nil {
		return nil, cue.Value{}, newError(ErrCodeInvalidMember, field, v.Pos(), "%v", err)
	}
	flags, err := accessOf(v, field)
	if err != nil {
		return nil, cue.Value{}, err
	}
	if ir.IsConstructorName(name) {
		flags |= ir.AccConstructor
	}
	m, err := reg.DefineMethod(ref, flags)
	if err != nil {
		return nil, cue.Value{}, memberError(field, v, err)
	}
	if m.Annotations, err = annotationsOf(reg, v, field); err != nil {
		return nil, cue.Value{}, err
	}
	if m.RState, err = keepOf(v); err != nil {
		return nil, cue.Value{}, err
	}
	return m, lookup(v, "code"), nil
}

func memberError(field string, v cue.Value, err error) error {
	code := ErrCodeInvalidMember
	if errors.Is(err, ir.ErrDuplicate) {
		code = ErrCodeDuplicate
	}
	return newError(code, field, v.Pos(), "%v", err)
}

func accessOf(v cue.Value, field string) (ir.AccessFlags, error) {
	names, err := stringList(v, "access")
	if err != nil {
		return 0, err
	}
	flags, err := ir.ParseAccessFlags(names)
	if err != nil {
		return 0, newError(ErrCodeInvalidAccess, field+".access", v.Pos(), "%v", err)
	}
	return flags, nil
}

func annotationsOf(reg *ir.Registry, v cue.Value, field string) (*ir.AnnotationSet, error) {
	descs, err := stringList(v, "annotations")
	if err != nil || descs == nil {
		return nil, err
	}
	set := &ir.AnnotationSet{}
	for _, d := range descs {
		t, err := reg.MakeType(d)
		if err != nil {
			return nil, newError(ErrCodeInvalidMember, field+".annotations", v.Pos(), "%v", err)
		}
		set.Annotations = append(set.Annotations, ir.NewAnnotation(t, ir.VisibilityBuild))
	}
	return set, nil
}

func keepOf(v cue.Value) (ir.ReferenceState, error) {
	var rs ir.ReferenceState
	k := lookup(v, "keep")
	if !k.Exists() {
		return rs, nil
	}
	var err error
	if rs.Keep, err = optBool(k, "keep", true); err != nil {
		return rs, err
	}
	if rs.AllowShrinking, err = optBool(k, "allow_shrinking", false); err != nil {
		return rs, err
	}
	rs.AllowObfuscation, err = optBool(k, "allow_obfuscation", false)
	return rs, err
}

func compileCode(reg *ir.Registry, m *ir.Method, code cue.Value) ([]*ir.Instruction, error) {
	iter, err := code.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var insns []*ir.Instruction
	for idx := 0; iter.Next(); idx++ {
		field := fmt.Sprintf("%s.code[%d]", m.FullName(), idx)
		insn, err := compileInstruction(reg, iter.Value(), field)
		if err != nil {
			return nil, err
		}
		insns = append(insns, insn)
	}
	return insns, nil
}

// operandKey is the CUE field holding an operand of kind k. String operands
// use "str" so the label does not shadow CUE's predeclared string type.
func operandKey(k ir.OperandKind) string {
	if k == ir.OperandString {
		return "str"
	}
	return k.String()
}

// compileReg reads a register number, rejecting values that do not fit
// in an ir.Reg.
func compileReg(v cue.Value, field string) (ir.Reg, error) {
	r, err := v.Uint64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	if r > math.MaxUint32 {
		return 0, newError(ErrCodeInvalidInstruction, field, v.Pos(), "register %d out of range", r)
	}
	return ir.Reg(r), nil
}

func compileInstruction(reg *ir.Registry, v cue.Value, field string) (*ir.Instruction, error) {
	opName, err := requiredString(v, "op", field)
	if err != nil {
		return nil, err
	}
	op, err := ir.ParseOpcode(opName)
	if err != nil {
		return nil, newError(ErrCodeInvalidInstruction, field+".op", v.Pos(), "%v", err)
	}

	var srcs []ir.Reg
	if s := lookup(v, "srcs"); s.Exists() {
		iter, err := s.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			r, err := compileReg(iter.Value(), fmt.Sprintf("%s.srcs[%d]", field, i))
			if err != nil {
				return nil, err
			}
			srcs = append(srcs, r)
		}
	}
	insn := ir.NewInstruction(op, srcs...)

	if d := lookup(v, "dest"); d.Exists() {
		r, err := compileReg(d, field+".dest")
		if err != nil {
			return nil, err
		}
		insn.WithDest(r)
	}
	if l := lookup(v, "literal"); l.Exists() {
		n, err := l.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		insn.WithLiteral(n)
	}

	operand := op.Operand()
	given := ir.OperandNone
	for _, k := range []ir.OperandKind{ir.OperandType, ir.OperandMethod, ir.OperandField, ir.OperandString} {
		if !lookup(v, operandKey(k)).Exists() {
			continue
		}
		if given != ir.OperandNone {
			return nil, newError(ErrCodeInvalidInstruction, field, v.Pos(), "instruction has both %s and %s operands", given, k)
		}
		given = k
	}
	if given != operand {
		return nil, newError(ErrCodeInvalidInstruction, field, v.Pos(), "%s takes a %s operand, got %s", op, operand, given)
	}

	if operand == ir.OperandNone {
		return insn, nil
	}
	s, _, err := optString(v, operandKey(operand))
	if err != nil {
		return nil, err
	}
	switch operand {
	case ir.OperandType:
		t, err := reg.MakeType(s)
		if err != nil {
			return nil, newError(ErrCodeInvalidInstruction, field+".type", v.Pos(), "%v", err)
		}
		insn.WithType(t)
	case ir.OperandMethod:
		ref, err := reg.MakeMethodRef(s)
		if err != nil {
			return nil, newError(ErrCodeInvalidInstruction, field+".method", v.Pos(), "%v", err)
		}
		insn.WithMethod(ref)
	case ir.OperandField:
		ref, err := reg.MakeFieldRef(s)
		if err != nil {
			return nil, newError(ErrCodeInvalidInstruction, field+".field", v.Pos(), "%v", err)
		}
		insn.WithField(ref)
	case ir.OperandString:
		insn.WithString(reg.MakeString(s))
	}
	return insn, nil
}
