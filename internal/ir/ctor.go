package ir

const (
	InitName   = "<init>"
	ClinitName = "<clinit>"
)

// IsConstructorName reports whether name is an instance or static
// initializer name.
func IsConstructorName(name string) bool {
	return name == InitName || name == ClinitName
}

// IsConstructor reports whether m is an instance or static initializer.
func IsConstructor(m *Method) bool {
	return IsConstructorName(m.Name())
}

// IsStaticConstructor reports whether m is a class initializer.
func IsStaticConstructor(m *Method) bool {
	return m.Name() == ClinitName
}

// IsDefaultConstructor reports whether m is a no-argument instance
// initializer that only chains to a no-argument super (or this) <init>.
//
// The body must be exactly: load-param-object for this, invoke-direct of a
// no-argument <init> on this, return-void.
func IsDefaultConstructor(m *Method) bool {
	if m == nil || m.Name() != InitName || m.Flags.Has(AccStatic) {
		return false
	}
	if len(m.Proto().Args) != 0 {
		return false
	}
	insns := m.Instructions()
	if len(insns) != 3 {
		return false
	}
	if insns[0].Opcode() != OpLoadParamObject {
		return false
	}
	this, ok := insns[0].Dest()
	if !ok {
		return false
	}
	call := insns[1]
	if call.Opcode() != OpInvokeDirect || call.Method() == nil {
		return false
	}
	callee := call.Method()
	if callee.Name() != InitName || len(callee.Proto().Args) != 0 {
		return false
	}
	if call.NumSrcs() != 1 || call.Srcs()[0] != this {
		return false
	}
	return insns[2].Opcode() == OpReturnVoid
}
