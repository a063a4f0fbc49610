package queryir

import (
	"fmt"

	"github.com/roach88/dexmatch/internal/ir"
)

// ValidationResult reports problems found in a pattern.
type ValidationResult struct {
	// IsValid is true when the pattern can be lowered and can match.
	IsValid bool

	// Warnings lists every problem, in step order.
	Warnings []string
}

// Validate checks a pattern without compiling it.
//
// A pattern is invalid if it has no steps, a nil step, an unknown opcode,
// invoke or field-access kind, a malformed descriptor, a negative argument
// count, or a constructor filter on a field. Empty And/Or nodes are legal
// but almost always a mistake and are reported too.
//
// Validate is a pure function with no side effects.
func Validate(p Pattern) ValidationResult {
	v := &validator{warnings: []string{}}
	if len(p.Steps) == 0 {
		v.addWarning("pattern %q has no steps and can never match", p.Name)
	}
	for i, step := range p.Steps {
		v.step = i
		v.validatePredicate(step)
	}
	return ValidationResult{
		IsValid:  len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

type validator struct {
	step     int
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) stepWarning(format string, args ...any) {
	v.addWarning("step %d: %s", v.step, fmt.Sprintf(format, args...))
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		v.stepWarning("nil predicate")
	case *AnyInsn, *MoveResultPseudo, *Throw, *ReturnVoid, *ConstString:
	case *Opcode:
		if _, err := ir.ParseOpcode(pred.Name); err != nil {
			v.stepWarning("%v", err)
		}
	case *NewInstance:
		v.validateType(pred.Type)
	case *HasType:
		v.validateType(pred.Type)
	case *Invoke:
		switch pred.Kind {
		case InvokeAny, InvokeDirect, InvokeStatic, InvokeVirtual, InvokeInterface, InvokeSuper:
		default:
			v.stepWarning("unknown invoke kind %q", pred.Kind)
		}
		v.validateMember(pred.Method, true)
	case *FieldAccess:
		switch pred.Kind {
		case FieldIGet, FieldIPut, FieldSGet, FieldSPut:
		default:
			v.stepWarning("unknown field access kind %q", pred.Kind)
		}
		v.validateMember(pred.Field, false)
	case *ArgCount:
		if pred.N < 0 {
			v.stepWarning("negative argument count %d", pred.N)
		}
	case *Not:
		v.validatePredicate(pred.Predicate)
	case *And:
		if len(pred.Predicates) == 0 {
			v.stepWarning("empty and matches every instruction")
		}
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *Or:
		if len(pred.Predicates) == 0 {
			v.stepWarning("empty or matches no instruction")
		}
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *Xor:
		v.validatePredicate(pred.Left)
		v.validatePredicate(pred.Right)
	default:
		v.stepWarning("unknown predicate type %T", p)
	}
}

func (v *validator) validateType(f *TypeFilter) {
	if f == nil {
		return
	}
	for _, d := range []string{f.Descriptor, f.AssignableTo} {
		if d == "" {
			continue
		}
		if err := ir.ValidateDescriptor(d); err != nil {
			v.stepWarning("%v", err)
		}
	}
}

func (v *validator) validateMember(f *MemberFilter, method bool) {
	if f == nil {
		return
	}
	if f.Class != "" {
		if err := ir.ValidateDescriptor(f.Class); err != nil {
			v.stepWarning("%v", err)
		}
	}
	if !method && (f.Constructor || f.DefaultConstructor) {
		v.stepWarning("constructor filter on a field reference")
	}
}
