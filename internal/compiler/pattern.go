package compiler

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/roach88/dexmatch/internal/queryir"
)

// Step kinds accepted in pattern steps.
const (
	StepAny              = "any"
	StepOpcode           = "opcode"
	StepNewInstance      = "new_instance"
	StepHasType          = "has_type"
	StepInvoke           = "invoke"
	StepIGet             = "iget"
	StepIPut             = "iput"
	StepSGet             = "sget"
	StepSPut             = "sput"
	StepConstString      = "const_string"
	StepMoveResultPseudo = "move_result_pseudo"
	StepThrow            = "throw"
	StepReturnVoid       = "return_void"
	StepArgs             = "args"
	StepNot              = "not"
	StepAnd              = "and"
	StepOr               = "or"
	StepXor              = "xor"
)

// CompilePattern parses a CUE value into a Pattern.
//
// The CUE value should be the pattern struct itself, e.g.:
//
//	pattern: alloc: {
//		description: "allocation followed by its constructor"
//		steps: [
//			{kind: "new_instance", type: "Lcom/Foo;"},
//			{kind: "move_result_pseudo"},
//			{kind: "invoke", invoke: "direct", method: {name: "<init>", default_constructor: true}},
//		]
//	}
//
// Step-level structure is checked here; opcode names, kinds and
// descriptors are checked by queryir.Validate.
func CompilePattern(v cue.Value) (*queryir.Pattern, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p := &queryir.Pattern{}
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		p.Name = labelOf(labels[len(labels)-1])
	}

	desc, _, err := optString(v, "description")
	if err != nil {
		return nil, err
	}
	p.Description = desc

	stepsVal := lookup(v, "steps")
	if !stepsVal.Exists() {
		return nil, newError(ErrCodeInvalidPattern, "steps", v.Pos(), "steps are required")
	}
	p.Steps, err = parseSteps(stepsVal, "pattern."+p.Name+".steps")
	if err != nil {
		return nil, err
	}
	if len(p.Steps) == 0 {
		return nil, newError(ErrCodeInvalidPattern, "steps", v.Pos(), "at least one step is required")
	}
	return p, nil
}

func parseSteps(v cue.Value, field string) ([]queryir.Predicate, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var steps []queryir.Predicate
	for i := 0; iter.Next(); i++ {
		step, err := parseStep(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(v cue.Value, field string) (queryir.Predicate, error) {
	kind, ok, err := optString(v, "kind")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(ErrCodeInvalidStep, field+".kind", v.Pos(), "kind is required")
	}

	switch kind {
	case StepAny:
		return &queryir.AnyInsn{}, nil
	case StepOpcode:
		op, err := requiredStepString(v, "op", field)
		if err != nil {
			return nil, err
		}
		return &queryir.Opcode{Name: op}, nil
	case StepNewInstance:
		tf, err := parseTypeFilter(v)
		return &queryir.NewInstance{Type: tf}, err
	case StepHasType:
		tf, err := parseTypeFilter(v)
		return &queryir.HasType{Type: tf}, err
	case StepInvoke:
		invokeKind, _, err := optString(v, "invoke")
		if err != nil {
			return nil, err
		}
		mf, err := parseMemberFilter(v, "method")
		return &queryir.Invoke{Kind: invokeKind, Method: mf}, err
	case StepIGet, StepIPut, StepSGet, StepSPut:
		mf, err := parseMemberFilter(v, "field")
		return &queryir.FieldAccess{Kind: kind, Field: mf}, err
	case StepConstString:
		s, ok, err := optString(v, "value")
		if err != nil {
			return nil, err
		}
		if !ok {
			return &queryir.ConstString{}, nil
		}
		return &queryir.ConstString{Value: &s}, nil
	case StepMoveResultPseudo:
		return &queryir.MoveResultPseudo{}, nil
	case StepThrow:
		return &queryir.Throw{}, nil
	case StepReturnVoid:
		return &queryir.ReturnVoid{}, nil
	case StepArgs:
		nv := lookup(v, "n")
		if !nv.Exists() {
			return nil, newError(ErrCodeInvalidStep, field+".n", v.Pos(), "n is required")
		}
		n, err := nv.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return &queryir.ArgCount{N: int(n)}, nil
	case StepNot:
		inner := lookup(v, "step")
		if !inner.Exists() {
			return nil, newError(ErrCodeInvalidStep, field+".step", v.Pos(), "not requires a step")
		}
		p, err := parseStep(inner, field+".step")
		if err != nil {
			return nil, err
		}
		return &queryir.Not{Predicate: p}, nil
	case StepAnd, StepOr:
		inner := lookup(v, "steps")
		if !inner.Exists() {
			return nil, newError(ErrCodeInvalidStep, field+".steps", v.Pos(), "%s requires steps", kind)
		}
		ps, err := parseSteps(inner, field+".steps")
		if err != nil {
			return nil, err
		}
		if kind == StepAnd {
			return &queryir.And{Predicates: ps}, nil
		}
		return &queryir.Or{Predicates: ps}, nil
	case StepXor:
		left, right := lookup(v, "left"), lookup(v, "right")
		if !left.Exists() || !right.Exists() {
			return nil, newError(ErrCodeInvalidStep, field, v.Pos(), "xor requires left and right")
		}
		l, err := parseStep(left, field+".left")
		if err != nil {
			return nil, err
		}
		r, err := parseStep(right, field+".right")
		if err != nil {
			return nil, err
		}
		return &queryir.Xor{Left: l, Right: r}, nil
	default:
		return nil, newError(ErrCodeInvalidStep, field+".kind", v.Pos(), "unknown step kind %q", kind)
	}
}

func requiredStepString(v cue.Value, name, field string) (string, error) {
	s, ok, err := optString(v, name)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", newError(ErrCodeInvalidStep, field+"."+name, v.Pos(), "%s is required", name)
	}
	return s, nil
}

func parseTypeFilter(v cue.Value) (*queryir.TypeFilter, error) {
	desc, hasDesc, err := optString(v, "type")
	if err != nil {
		return nil, err
	}
	parent, hasParent, err := optString(v, "assignable_to")
	if err != nil {
		return nil, err
	}
	if !hasDesc && !hasParent {
		return nil, nil
	}
	return &queryir.TypeFilter{Descriptor: desc, AssignableTo: parent}, nil
}

func parseMemberFilter(v cue.Value, name string) (*queryir.MemberFilter, error) {
	f := lookup(v, name)
	if !f.Exists() {
		return nil, nil
	}
	mf := &queryir.MemberFilter{}
	var err error
	if mf.Name, _, err = optString(f, "name"); err != nil {
		return nil, err
	}
	if mf.Class, _, err = optString(f, "class"); err != nil {
		return nil, err
	}
	if mf.Constructor, err = optBool(f, "constructor", false); err != nil {
		return nil, err
	}
	if mf.DefaultConstructor, err = optBool(f, "default_constructor", false); err != nil {
		return nil, err
	}
	if mf.External, err = optBool(f, "external", false); err != nil {
		return nil, err
	}
	return mf, nil
}
