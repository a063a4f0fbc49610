package match

import "github.com/roach88/dexmatch/internal/ir"

// Named matches entities whose name equals name exactly.
func Named[T interface{ Name() string }](name string) Matcher[T] {
	return Func[T](func(e T) bool { return e.Name() == name })
}

// IsExternal matches entities defined outside the program.
func IsExternal[T interface{ IsExternal() bool }]() Matcher[T] {
	return Func[T](func(e T) bool { return e.IsExternal() })
}

type flagged interface {
	AccessFlags() ir.AccessFlags
}

func hasFlag[T flagged](flag ir.AccessFlags) Matcher[T] {
	return Func[T](func(e T) bool { return e.AccessFlags()&flag != 0 })
}

// IsFinal matches final entities.
func IsFinal[T flagged]() Matcher[T] { return hasFlag[T](ir.AccFinal) }

// IsStatic matches static entities.
func IsStatic[T flagged]() Matcher[T] { return hasFlag[T](ir.AccStatic) }

// IsAbstract matches abstract entities.
func IsAbstract[T flagged]() Matcher[T] { return hasFlag[T](ir.AccAbstract) }

// IsEnum matches enum classes.
func IsEnum() Matcher[*ir.Class] { return hasFlag[*ir.Class](ir.AccEnum) }

// IsInterface matches interfaces.
func IsInterface() Matcher[*ir.Class] { return hasFlag[*ir.Class](ir.AccInterface) }

// HasClassData matches classes with a body definition.
func HasClassData() Matcher[*ir.Class] {
	return Func[*ir.Class](func(c *ir.Class) bool { return c.HasClassData() })
}

// IsConstructor matches instance and static initializers.
func IsConstructor() Matcher[*ir.Method] {
	return Func[*ir.Method](ir.IsConstructor)
}

// IsDefaultConstructor matches trivial no-argument constructors.
func IsDefaultConstructor() Matcher[*ir.Method] {
	return Func[*ir.Method](ir.IsDefaultConstructor)
}

// CanBeConstructor resolves a method reference and matches if the
// definition is a constructor. Unresolved references do not match.
func CanBeConstructor() Matcher[*ir.MethodRef] {
	return Func[*ir.MethodRef](func(r *ir.MethodRef) bool {
		m := r.AsDef()
		return m != nil && ir.IsConstructor(m)
	})
}

// CanBeDefaultConstructor resolves a method reference and matches if the
// definition is a default constructor.
func CanBeDefaultConstructor() Matcher[*ir.MethodRef] {
	return Func[*ir.MethodRef](func(r *ir.MethodRef) bool {
		m := r.AsDef()
		return m != nil && ir.IsDefaultConstructor(m)
	})
}
