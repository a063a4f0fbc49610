package querymatch

import (
	"fmt"

	"github.com/roach88/dexmatch/internal/ir"
	"github.com/roach88/dexmatch/internal/match"
	"github.com/roach88/dexmatch/internal/queryir"
)

// CompileError reports a pattern node that cannot be lowered.
type CompileError struct {
	Pattern string
	Step    int
	Message string
}

func (e *CompileError) Error() string {
	if e.Step < 0 {
		return fmt.Sprintf("pattern %q: %s", e.Pattern, e.Message)
	}
	return fmt.Sprintf("pattern %q step %d: %s", e.Pattern, e.Step, e.Message)
}

// Compiler lowers queryir patterns against a registry.
type Compiler struct {
	reg *ir.Registry
}

// NewCompiler creates a compiler bound to reg.
func NewCompiler(reg *ir.Registry) *Compiler {
	return &Compiler{reg: reg}
}

type insnMatcher = match.Matcher[*ir.Instruction]

// Compile lowers every step of p.
func (c *Compiler) Compile(p queryir.Pattern) (match.Pattern[*ir.Instruction], error) {
	if len(p.Steps) == 0 {
		return nil, &CompileError{Pattern: p.Name, Step: -1, Message: "pattern has no steps"}
	}
	out := make(match.Pattern[*ir.Instruction], 0, len(p.Steps))
	for i, step := range p.Steps {
		m, err := c.CompilePredicate(step)
		if err != nil {
			return nil, &CompileError{Pattern: p.Name, Step: i, Message: err.Error()}
		}
		out = append(out, m)
	}
	return out, nil
}

// CompilePredicate lowers a single predicate.
func (c *Compiler) CompilePredicate(p queryir.Predicate) (insnMatcher, error) {
	switch pred := p.(type) {
	case nil:
		return nil, fmt.Errorf("nil predicate")
	case *queryir.AnyInsn:
		return match.Any[*ir.Instruction](), nil
	case *queryir.Opcode:
		op, err := ir.ParseOpcode(pred.Name)
		if err != nil {
			return nil, err
		}
		return match.IsOpcode(op), nil
	case *queryir.NewInstance:
		return match.NewInstance(c.typeFilter(pred.Type)...), nil
	case *queryir.HasType:
		return match.And(match.HasType(), match.OpcodeType(match.All(c.typeFilter(pred.Type)...))), nil
	case *queryir.Invoke:
		return c.compileInvoke(pred)
	case *queryir.FieldAccess:
		return c.compileFieldAccess(pred)
	case *queryir.ConstString:
		if pred.Value == nil {
			return match.ConstString(), nil
		}
		return match.And(match.ConstString(), match.OpcodeString(match.Named[*ir.String](*pred.Value))), nil
	case *queryir.MoveResultPseudo:
		return match.MoveResultPseudo(), nil
	case *queryir.Throw:
		return match.Throw(), nil
	case *queryir.ReturnVoid:
		return match.ReturnVoid(), nil
	case *queryir.ArgCount:
		if pred.N < 0 {
			return nil, fmt.Errorf("negative argument count %d", pred.N)
		}
		return match.HasNArgs(pred.N), nil
	case *queryir.Not:
		inner, err := c.CompilePredicate(pred.Predicate)
		if err != nil {
			return nil, fmt.Errorf("not: %w", err)
		}
		return match.Not(inner), nil
	case *queryir.And:
		subs, err := c.compileAll("and", pred.Predicates)
		if err != nil {
			return nil, err
		}
		return match.All(subs...), nil
	case *queryir.Or:
		subs, err := c.compileAll("or", pred.Predicates)
		if err != nil {
			return nil, err
		}
		return match.OneOf(subs...), nil
	case *queryir.Xor:
		left, err := c.CompilePredicate(pred.Left)
		if err != nil {
			return nil, fmt.Errorf("xor left: %w", err)
		}
		right, err := c.CompilePredicate(pred.Right)
		if err != nil {
			return nil, fmt.Errorf("xor right: %w", err)
		}
		return match.Xor(left, right), nil
	default:
		return nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileAll(op string, preds []queryir.Predicate) ([]insnMatcher, error) {
	out := make([]insnMatcher, 0, len(preds))
	for i, p := range preds {
		m, err := c.CompilePredicate(p)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", op, i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Compiler) compileInvoke(p *queryir.Invoke) (insnMatcher, error) {
	var build func(...match.Matcher[*ir.MethodRef]) insnMatcher
	switch p.Kind {
	case queryir.InvokeAny:
		build = match.Invoke
	case queryir.InvokeDirect:
		build = match.InvokeDirect
	case queryir.InvokeStatic:
		build = match.InvokeStatic
	case queryir.InvokeVirtual:
		build = match.InvokeVirtual
	case queryir.InvokeInterface:
		build = match.InvokeInterface
	case queryir.InvokeSuper:
		build = match.InvokeSuper
	default:
		return nil, fmt.Errorf("unknown invoke kind %q", p.Kind)
	}
	filters := memberFilter[*ir.MethodRef](c, p.Method)
	if p.Method != nil {
		if p.Method.Constructor {
			filters = append(filters, match.CanBeConstructor())
		}
		if p.Method.DefaultConstructor {
			filters = append(filters, match.CanBeDefaultConstructor())
		}
	}
	return build(filters...), nil
}

func (c *Compiler) compileFieldAccess(p *queryir.FieldAccess) (insnMatcher, error) {
	var build func(...match.Matcher[*ir.FieldRef]) insnMatcher
	switch p.Kind {
	case queryir.FieldIGet:
		build = match.IGet
	case queryir.FieldIPut:
		build = match.IPut
	case queryir.FieldSGet:
		build = match.SGet
	case queryir.FieldSPut:
		build = match.SPut
	default:
		return nil, fmt.Errorf("unknown field access kind %q", p.Kind)
	}
	if p.Field != nil && (p.Field.Constructor || p.Field.DefaultConstructor) {
		return nil, fmt.Errorf("constructor filter on a field reference")
	}
	return build(memberFilter[*ir.FieldRef](c, p.Field)...), nil
}

// never fails closed for descriptors the registry does not know.
func never[T any]() match.Matcher[T] {
	return match.Not(match.Any[T]())
}

func (c *Compiler) typeFilter(f *queryir.TypeFilter) []match.Matcher[*ir.Type] {
	if f == nil {
		return nil
	}
	var out []match.Matcher[*ir.Type]
	if f.Descriptor != "" {
		if t := c.reg.GetType(f.Descriptor); t != nil {
			out = append(out, match.PtrEq(t))
		} else {
			out = append(out, never[*ir.Type]())
		}
	}
	if f.AssignableTo != "" {
		if t := c.reg.GetType(f.AssignableTo); t != nil {
			out = append(out, match.IsAssignableTo(c.reg, t))
		} else {
			out = append(out, never[*ir.Type]())
		}
	}
	return out
}

type memberRef interface {
	Name() string
	DeclaringClass() *ir.Type
	IsExternal() bool
}

func memberFilter[T memberRef](c *Compiler, f *queryir.MemberFilter) []match.Matcher[T] {
	if f == nil {
		return nil
	}
	var out []match.Matcher[T]
	if f.Name != "" {
		out = append(out, match.Named[T](f.Name))
	}
	if f.Class != "" {
		if t := c.reg.GetType(f.Class); t != nil {
			out = append(out, match.MemberOf[T](match.PtrEq(t)))
		} else {
			out = append(out, never[T]())
		}
	}
	if f.External {
		out = append(out, match.IsExternal[T]())
	}
	return out
}
