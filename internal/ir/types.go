package ir

import "strings"

// Well-known type descriptors.
const (
	ObjectDescriptor       = "Ljava/lang/Object;"
	CloneableDescriptor    = "Ljava/lang/Cloneable;"
	SerializableDescriptor = "Ljava/io/Serializable;"
	VoidDescriptor         = "V"
)

// Type is a nominal type reference, e.g. "Lcom/foo/Bar;" or "[I".
// Types are interned by a Registry; compare them by pointer.
type Type struct {
	descriptor string
}

// Name returns the type descriptor.
func (t *Type) Name() string { return t.descriptor }

// Descriptor returns the type descriptor.
func (t *Type) Descriptor() string { return t.descriptor }

// AsType returns t itself.
func (t *Type) AsType() *Type { return t }

func (t *Type) String() string { return t.descriptor }

// IsPrimitive reports whether t is a primitive (or void) type.
func (t *Type) IsPrimitive() bool {
	return len(t.descriptor) == 1 && strings.ContainsRune("ZBSCIJFDV", rune(t.descriptor[0]))
}

// IsArray reports whether t is an array type.
func (t *Type) IsArray() bool {
	return strings.HasPrefix(t.descriptor, "[")
}

// IsReference reports whether t is a class or array type.
func (t *Type) IsReference() bool {
	return t.IsArray() || strings.HasPrefix(t.descriptor, "L")
}

// Proto is a method prototype: return type and argument types.
type Proto struct {
	Return *Type
	Args   []*Type
}

// Descriptor renders the proto in Dex form, e.g. "(ILjava/lang/String;)V".
func (p *Proto) Descriptor() string {
	var b strings.Builder
	b.WriteByte('(')
	for _, a := range p.Args {
		b.WriteString(a.descriptor)
	}
	b.WriteByte(')')
	if p.Return != nil {
		b.WriteString(p.Return.descriptor)
	} else {
		b.WriteString(VoidDescriptor)
	}
	return b.String()
}

func (p *Proto) String() string { return p.Descriptor() }

// String is an interned string constant referenced by const-string.
type String struct {
	value string
}

// Value returns the string contents.
func (s *String) Value() string { return s.value }

// Name returns the string contents so string operands work with name matchers.
func (s *String) Name() string { return s.value }

func (s *String) String() string { return s.value }

// AnnotationVisibility mirrors the Dex annotation visibility byte.
type AnnotationVisibility uint8

const (
	VisibilityBuild AnnotationVisibility = iota
	VisibilityRuntime
	VisibilitySystem
)

// Annotation is a single annotation instance on a definition.
type Annotation struct {
	typ        *Type
	Visibility AnnotationVisibility
	Elements   map[string]string
}

// NewAnnotation creates an annotation of the given type.
func NewAnnotation(t *Type, vis AnnotationVisibility) *Annotation {
	return &Annotation{typ: t, Visibility: vis}
}

// AsType returns the annotation's type.
func (a *Annotation) AsType() *Type { return a.typ }

// Name returns the annotation type descriptor.
func (a *Annotation) Name() string { return a.typ.descriptor }

// AnnotationSet is the set of annotations attached to a definition.
type AnnotationSet struct {
	Annotations []*Annotation
}

// NewAnnotationSet builds a set from annotations.
func NewAnnotationSet(annos ...*Annotation) *AnnotationSet {
	return &AnnotationSet{Annotations: annos}
}

// Code is a method body.
type Code struct {
	Insns []*Instruction
}

// Class is a class definition.
type Class struct {
	typ *Type

	Super       *Type
	Interfaces  []*Type
	Flags       AccessFlags
	External    bool
	ClassData   bool
	Annotations *AnnotationSet
	RState      ReferenceState

	VMethods []*Method
	DMethods []*Method
	IFields  []*Field
	SFields  []*Field
}

// AsType returns the type this class defines.
func (c *Class) AsType() *Type { return c.typ }

// Name returns the class descriptor.
func (c *Class) Name() string { return c.typ.descriptor }

// AccessFlags returns the class access flags.
func (c *Class) AccessFlags() AccessFlags { return c.Flags }

// IsExternal reports whether the class is defined outside the program.
func (c *Class) IsExternal() bool { return c.External }

// HasClassData reports whether the class has a body definition.
func (c *Class) HasClassData() bool { return c.ClassData }

// IsDef is always true for classes.
func (c *Class) IsDef() bool { return true }

// AnnotationSet returns the class annotations, or nil.
func (c *Class) AnnotationSet() *AnnotationSet { return c.Annotations }

// ReferenceState returns the keep-rule state of the class.
func (c *Class) ReferenceState() ReferenceState { return c.RState }

func (c *Class) String() string { return c.typ.descriptor }

// MethodRef is a symbolic method reference. It may resolve to a Method.
type MethodRef struct {
	class *Type
	name  string
	proto *Proto
	def   *Method
}

// Name returns the simple method name, e.g. "<init>".
func (r *MethodRef) Name() string { return r.name }

// DeclaringClass returns the type the reference is declared on.
func (r *MethodRef) DeclaringClass() *Type { return r.class }

// Proto returns the method prototype.
func (r *MethodRef) Proto() *Proto { return r.proto }

// AsDef resolves the reference, returning nil when no definition exists.
func (r *MethodRef) AsDef() *Method { return r.def }

// IsDef is always false for references.
func (r *MethodRef) IsDef() bool { return false }

// AnnotationSet is always nil for references.
func (r *MethodRef) AnnotationSet() *AnnotationSet { return nil }

// IsExternal reports whether the reference has no definition in the
// program, or resolves to an external definition.
func (r *MethodRef) IsExternal() bool {
	return r.def == nil || r.def.External
}

// FullName returns "Lcls;.name:(args)ret".
func (r *MethodRef) FullName() string {
	return MethodName(r.class.descriptor, r.name, r.proto.Descriptor())
}

func (r *MethodRef) String() string { return r.FullName() }

// Method is a method definition.
type Method struct {
	ref *MethodRef

	Flags       AccessFlags
	External    bool
	Code        *Code
	Annotations *AnnotationSet
	RState      ReferenceState
}

// Ref returns the reference this method defines.
func (m *Method) Ref() *MethodRef { return m.ref }

// Name returns the simple method name.
func (m *Method) Name() string { return m.ref.name }

// DeclaringClass returns the declaring class type.
func (m *Method) DeclaringClass() *Type { return m.ref.class }

// Proto returns the method prototype.
func (m *Method) Proto() *Proto { return m.ref.proto }

// AccessFlags returns the method access flags.
func (m *Method) AccessFlags() AccessFlags { return m.Flags }

// IsExternal reports whether the method is defined outside the program.
func (m *Method) IsExternal() bool { return m.External }

// IsDef is always true for definitions.
func (m *Method) IsDef() bool { return true }

// AnnotationSet returns the method annotations, or nil.
func (m *Method) AnnotationSet() *AnnotationSet { return m.Annotations }

// ReferenceState returns the keep-rule state of the method.
func (m *Method) ReferenceState() ReferenceState { return m.RState }

// Instructions returns the method body, or nil when there is no code.
func (m *Method) Instructions() []*Instruction {
	if m.Code == nil {
		return nil
	}
	return m.Code.Insns
}

// FullName returns "Lcls;.name:(args)ret".
func (m *Method) FullName() string { return m.ref.FullName() }

func (m *Method) String() string { return m.ref.FullName() }

// FieldRef is a symbolic field reference. It may resolve to a Field.
type FieldRef struct {
	class *Type
	name  string
	typ   *Type
	def   *Field
}

// Name returns the simple field name.
func (r *FieldRef) Name() string { return r.name }

// DeclaringClass returns the type the reference is declared on.
func (r *FieldRef) DeclaringClass() *Type { return r.class }

// Type returns the field's value type.
func (r *FieldRef) Type() *Type { return r.typ }

// AsDef resolves the reference, returning nil when no definition exists.
func (r *FieldRef) AsDef() *Field { return r.def }

// IsDef is always false for references.
func (r *FieldRef) IsDef() bool { return false }

// AnnotationSet is always nil for references.
func (r *FieldRef) AnnotationSet() *AnnotationSet { return nil }

// IsExternal reports whether the reference has no definition in the
// program, or resolves to an external definition.
func (r *FieldRef) IsExternal() bool {
	return r.def == nil || r.def.External
}

// FullName returns "Lcls;.name:Ltype;".
func (r *FieldRef) FullName() string {
	return FieldName(r.class.descriptor, r.name, r.typ.descriptor)
}

func (r *FieldRef) String() string { return r.FullName() }

// Field is a field definition.
type Field struct {
	ref *FieldRef

	Flags       AccessFlags
	External    bool
	Annotations *AnnotationSet
	RState      ReferenceState
}

// Ref returns the reference this field defines.
func (f *Field) Ref() *FieldRef { return f.ref }

// Name returns the simple field name.
func (f *Field) Name() string { return f.ref.name }

// DeclaringClass returns the declaring class type.
func (f *Field) DeclaringClass() *Type { return f.ref.class }

// Type returns the field's value type.
func (f *Field) Type() *Type { return f.ref.typ }

// AccessFlags returns the field access flags.
func (f *Field) AccessFlags() AccessFlags { return f.Flags }

// IsExternal reports whether the field is defined outside the program.
func (f *Field) IsExternal() bool { return f.External }

// IsDef is always true for definitions.
func (f *Field) IsDef() bool { return true }

// AnnotationSet returns the field annotations, or nil.
func (f *Field) AnnotationSet() *AnnotationSet { return f.Annotations }

// ReferenceState returns the keep-rule state of the field.
func (f *Field) ReferenceState() ReferenceState { return f.RState }

func (f *Field) String() string { return f.ref.FullName() }
