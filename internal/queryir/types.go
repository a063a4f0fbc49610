package queryir

// Pattern is a named sequence of instruction step predicates.
type Pattern struct {
	Name        string
	Description string
	Steps       []Predicate
}

// Predicate is a test over one instruction.
//
// This is a sealed interface. The marker method keeps implementations in
// this package.
type Predicate interface {
	predicateNode()
}

// TypeFilter constrains a type operand.
type TypeFilter struct {
	// Descriptor requires the exact type, e.g. "Lcom/Foo;".
	Descriptor string
	// AssignableTo requires the operand to be assignable to this type.
	AssignableTo string
}

// MemberFilter constrains a method or field operand.
type MemberFilter struct {
	// Name requires the simple member name.
	Name string
	// Class requires the declaring class descriptor.
	Class string
	// Constructor requires the reference to resolve to a constructor.
	// Methods only.
	Constructor bool
	// DefaultConstructor requires the reference to resolve to a default
	// constructor. Methods only.
	DefaultConstructor bool
	// External requires the reference to be unresolved or external.
	External bool
}

// Invoke kinds. The empty kind matches any invoke.
const (
	InvokeAny       = ""
	InvokeDirect    = "direct"
	InvokeStatic    = "static"
	InvokeVirtual   = "virtual"
	InvokeInterface = "interface"
	InvokeSuper     = "super"
)

// Field access kinds.
const (
	FieldIGet = "iget"
	FieldIPut = "iput"
	FieldSGet = "sget"
	FieldSPut = "sput"
)

// AnyInsn matches every instruction.
type AnyInsn struct{}

// Opcode matches one exact opcode by mnemonic, e.g. "const-string".
type Opcode struct {
	Name string
}

// NewInstance matches new-instance, optionally constrained by type.
type NewInstance struct {
	Type *TypeFilter
}

// HasType matches any instruction with a type operand, optionally
// constrained.
type HasType struct {
	Type *TypeFilter
}

// Invoke matches an invoke of the given kind.
type Invoke struct {
	Kind   string
	Method *MemberFilter
}

// FieldAccess matches a field get or put family.
type FieldAccess struct {
	Kind  string
	Field *MemberFilter
}

// ConstString matches const-string, optionally with an exact value.
type ConstString struct {
	Value *string
}

// MoveResultPseudo matches any move-result-pseudo variant.
type MoveResultPseudo struct{}

// Throw matches throw.
type Throw struct{}

// ReturnVoid matches return-void.
type ReturnVoid struct{}

// ArgCount matches instructions with exactly N source registers.
type ArgCount struct {
	N int
}

// Not negates a predicate.
type Not struct {
	Predicate Predicate
}

// And requires every predicate. Empty And matches everything.
type And struct {
	Predicates []Predicate
}

// Or requires at least one predicate. Empty Or matches nothing.
type Or struct {
	Predicates []Predicate
}

// Xor requires exactly one of Left and Right.
type Xor struct {
	Left, Right Predicate
}

func (*AnyInsn) predicateNode()          {}
func (*Opcode) predicateNode()           {}
func (*NewInstance) predicateNode()      {}
func (*HasType) predicateNode()          {}
func (*Invoke) predicateNode()           {}
func (*FieldAccess) predicateNode()      {}
func (*ConstString) predicateNode()      {}
func (*MoveResultPseudo) predicateNode() {}
func (*Throw) predicateNode()            {}
func (*ReturnVoid) predicateNode()       {}
func (*ArgCount) predicateNode()         {}
func (*Not) predicateNode()              {}
func (*And) predicateNode()              {}
func (*Or) predicateNode()               {}
func (*Xor) predicateNode()              {}
