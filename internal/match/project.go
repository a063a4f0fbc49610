package match

import "github.com/roach88/dexmatch/internal/ir"

// MemberOf tests p against the declaring class of a member.
func MemberOf[T interface{ DeclaringClass() *ir.Type }](p Matcher[*ir.Type]) Matcher[T] {
	return Func[T](func(e T) bool {
		t := e.DeclaringClass()
		return t != nil && p.Matches(t)
	})
}

// AsType tests p against the entity's own type.
func AsType[T interface{ AsType() *ir.Type }](p Matcher[*ir.Type]) Matcher[T] {
	return Func[T](func(e T) bool {
		t := e.AsType()
		return t != nil && p.Matches(t)
	})
}

// AsClass resolves a type through r and tests p against the class.
// Types without a class definition do not match.
func AsClass(r ir.ClassResolver, p Matcher[*ir.Class]) Matcher[*ir.Type] {
	return Func[*ir.Type](func(t *ir.Type) bool {
		c := r.TypeClass(t)
		return c != nil && p.Matches(c)
	})
}

// OpcodeType tests p against an instruction's type operand.
func OpcodeType(p Matcher[*ir.Type]) Matcher[*ir.Instruction] {
	return Func[*ir.Instruction](func(i *ir.Instruction) bool {
		return i.HasType() && p.Matches(i.Type())
	})
}

// OpcodeMethod tests p against an instruction's method operand.
func OpcodeMethod(p Matcher[*ir.MethodRef]) Matcher[*ir.Instruction] {
	return Func[*ir.Instruction](func(i *ir.Instruction) bool {
		return i.HasMethod() && p.Matches(i.Method())
	})
}

// OpcodeField tests p against an instruction's field operand.
func OpcodeField(p Matcher[*ir.FieldRef]) Matcher[*ir.Instruction] {
	return Func[*ir.Instruction](func(i *ir.Instruction) bool {
		return i.HasField() && p.Matches(i.Field())
	})
}

// OpcodeString tests p against an instruction's string operand.
func OpcodeString(p Matcher[*ir.String]) Matcher[*ir.Instruction] {
	return Func[*ir.Instruction](func(i *ir.Instruction) bool {
		return i.HasString() && p.Matches(i.Str())
	})
}

// IsAssignableTo matches types assignable to parent according to h.
func IsAssignableTo(h ir.Hierarchy, parent *ir.Type) Matcher[*ir.Type] {
	return Func[*ir.Type](func(t *ir.Type) bool {
		return h.IsAssignableTo(t, parent)
	})
}

// Container reports membership. The container is owned by the caller and
// must not change while a query runs.
type Container[T any] interface {
	Contains(T) bool
}

// Set is an identity set usable with In.
type Set[T comparable] map[T]struct{}

// NewSet builds a set holding items.
func NewSet[T comparable](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, it := range items {
		s[it] = struct{}{}
	}
	return s
}

// Contains implements Container.
func (s Set[T]) Contains(e T) bool {
	_, ok := s[e]
	return ok
}

// In matches entities held by c.
func In[T any](c Container[T]) Matcher[T] {
	return Func[T](func(e T) bool { return c.Contains(e) })
}

type annotated interface {
	IsDef() bool
	AnnotationSet() *ir.AnnotationSet
}

// AnyAnnos matches definitions with at least one annotation matching p.
// References and definitions without annotations do not match.
func AnyAnnos[T annotated](p Matcher[*ir.Annotation]) Matcher[T] {
	return Func[T](func(e T) bool {
		if !e.IsDef() {
			return false
		}
		set := e.AnnotationSet()
		if set == nil {
			return false
		}
		for _, a := range set.Annotations {
			if p.Matches(a) {
				return true
			}
		}
		return false
	})
}
