package ir

import (
	"errors"
	"fmt"
)

// ErrDuplicate is returned when a definition already exists.
var ErrDuplicate = errors.New("duplicate definition")

// ClassResolver resolves a type to its class definition.
type ClassResolver interface {
	// TypeClass returns the class defined for t, or nil.
	TypeClass(t *Type) *Class
}

// Hierarchy answers subtype queries.
type Hierarchy interface {
	// IsAssignableTo reports whether a value of type child may be stored
	// in a location of type parent.
	IsAssignableTo(child, parent *Type) bool
}

// Registry owns every interned entity of one program.
//
// Interning makes pointer equality meaningful: two calls to MakeType with
// the same descriptor return the same *Type.
type Registry struct {
	types   map[string]*Type
	strings map[string]*String
	methods map[string]*MethodRef
	fields  map[string]*FieldRef
	protos  map[string]*Proto

	classes    map[*Type]*Class
	classOrder []*Class
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[string]*Type),
		strings: make(map[string]*String),
		methods: make(map[string]*MethodRef),
		fields:  make(map[string]*FieldRef),
		protos:  make(map[string]*Proto),
		classes: make(map[*Type]*Class),
	}
}

// MakeType interns a type descriptor. It returns an error for a malformed
// descriptor. Array component types are interned as well.
func (r *Registry) MakeType(descriptor string) (*Type, error) {
	if t, ok := r.types[descriptor]; ok {
		return t, nil
	}
	if err := ValidateDescriptor(descriptor); err != nil {
		return nil, err
	}
	if len(descriptor) > 1 && descriptor[0] == '[' {
		if _, err := r.MakeType(descriptor[1:]); err != nil {
			return nil, err
		}
	}
	t := &Type{descriptor: descriptor}
	r.types[descriptor] = t
	return t, nil
}

// MustType is MakeType for descriptors known to be valid.
func (r *Registry) MustType(descriptor string) *Type {
	t, err := r.MakeType(descriptor)
	if err != nil {
		panic(err)
	}
	return t
}

// GetType returns the interned type, or nil if it was never made.
func (r *Registry) GetType(descriptor string) *Type {
	return r.types[descriptor]
}

// ComponentType returns the element type of an array, or nil.
func (r *Registry) ComponentType(t *Type) *Type {
	if t == nil || !t.IsArray() {
		return nil
	}
	return r.types[t.descriptor[1:]]
}

// MakeString interns a string constant.
func (r *Registry) MakeString(value string) *String {
	if s, ok := r.strings[value]; ok {
		return s
	}
	s := &String{value: value}
	r.strings[value] = s
	return s
}

// ParseProto interns the types of a "(args)ret" proto.
func (r *Registry) ParseProto(proto string) (*Proto, error) {
	if p, ok := r.protos[proto]; ok {
		return p, nil
	}
	args, ret, err := splitProto(proto)
	if err != nil {
		return nil, err
	}
	p := &Proto{Return: r.MustType(ret)}
	for _, a := range args {
		p.Args = append(p.Args, r.MustType(a))
	}
	r.protos[proto] = p
	return p, nil
}

// MakeMethodRef interns a method reference from its "Lcls;.name:proto" form.
func (r *Registry) MakeMethodRef(full string) (*MethodRef, error) {
	if m, ok := r.methods[full]; ok {
		return m, nil
	}
	mn, err := ParseMethodName(full)
	if err != nil {
		return nil, err
	}
	proto, err := r.ParseProto(mn.Signature)
	if err != nil {
		return nil, err
	}
	m := &MethodRef{class: r.MustType(mn.Class), name: mn.Name, proto: proto}
	r.methods[full] = m
	return m, nil
}

// MustMethodRef is MakeMethodRef for names known to be valid.
func (r *Registry) MustMethodRef(full string) *MethodRef {
	m, err := r.MakeMethodRef(full)
	if err != nil {
		panic(err)
	}
	return m
}

// GetMethod returns an existing method reference, or nil.
func (r *Registry) GetMethod(full string) *MethodRef {
	return r.methods[full]
}

// MakeFieldRef interns a field reference from its "Lcls;.name:type" form.
func (r *Registry) MakeFieldRef(full string) (*FieldRef, error) {
	if f, ok := r.fields[full]; ok {
		return f, nil
	}
	fn, err := ParseFieldName(full)
	if err != nil {
		return nil, err
	}
	f := &FieldRef{class: r.MustType(fn.Class), name: fn.Name, typ: r.MustType(fn.Signature)}
	r.fields[full] = f
	return f, nil
}

// MustFieldRef is MakeFieldRef for names known to be valid.
func (r *Registry) MustFieldRef(full string) *FieldRef {
	f, err := r.MakeFieldRef(full)
	if err != nil {
		panic(err)
	}
	return f
}

// GetField returns an existing field reference, or nil.
func (r *Registry) GetField(full string) *FieldRef {
	return r.fields[full]
}

// DefineClass creates the class definition for t.
func (r *Registry) DefineClass(t *Type) (*Class, error) {
	if t == nil || !t.IsReference() || t.IsArray() {
		return nil, fmt.Errorf("cannot define class for %v", t)
	}
	if _, ok := r.classes[t]; ok {
		return nil, fmt.Errorf("class %s: %w", t, ErrDuplicate)
	}
	c := &Class{typ: t}
	r.classes[t] = c
	r.classOrder = append(r.classOrder, c)
	return c, nil
}

// DefineMethod attaches a definition to ref and adds it to its declaring
// class. Static, private and constructor methods are direct; the rest are
// virtual.
func (r *Registry) DefineMethod(ref *MethodRef, flags AccessFlags) (*Method, error) {
	if ref.def != nil {
		return nil, fmt.Errorf("method %s: %w", ref.FullName(), ErrDuplicate)
	}
	cls := r.classes[ref.class]
	if cls == nil {
		return nil, fmt.Errorf("method %s: class %s is not defined", ref.FullName(), ref.class)
	}
	m := &Method{ref: ref, Flags: flags, External: cls.External}
	ref.def = m
	if flags.Has(AccStatic) || flags.Has(AccPrivate) || flags.Has(AccConstructor) || IsConstructorName(ref.name) {
		cls.DMethods = append(cls.DMethods, m)
	} else {
		cls.VMethods = append(cls.VMethods, m)
	}
	return m, nil
}

// DefineField attaches a definition to ref and adds it to its declaring class.
func (r *Registry) DefineField(ref *FieldRef, flags AccessFlags) (*Field, error) {
	if ref.def != nil {
		return nil, fmt.Errorf("field %s: %w", ref.FullName(), ErrDuplicate)
	}
	cls := r.classes[ref.class]
	if cls == nil {
		return nil, fmt.Errorf("field %s: class %s is not defined", ref.FullName(), ref.class)
	}
	f := &Field{ref: ref, Flags: flags, External: cls.External}
	ref.def = f
	if flags.Has(AccStatic) {
		cls.SFields = append(cls.SFields, f)
	} else {
		cls.IFields = append(cls.IFields, f)
	}
	return f, nil
}

// TypeClass implements ClassResolver.
func (r *Registry) TypeClass(t *Type) *Class {
	if t == nil {
		return nil
	}
	return r.classes[t]
}

// Classes returns all classes in definition order.
func (r *Registry) Classes() []*Class {
	return r.classOrder
}

// Methods returns every method definition, class by class, direct methods
// before virtual ones.
func (r *Registry) Methods() []*Method {
	var out []*Method
	for _, c := range r.classOrder {
		out = append(out, c.DMethods...)
		out = append(out, c.VMethods...)
	}
	return out
}
