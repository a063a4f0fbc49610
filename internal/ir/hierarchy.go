package ir

// IsAssignableTo implements Hierarchy over the registry's class graph.
//
// Primitives are only assignable to themselves. Every reference type is
// assignable to java.lang.Object; arrays are also assignable to Cloneable
// and Serializable and otherwise follow their component types. Class types
// walk superclasses and implemented interfaces. An unresolved class on the
// path ends that branch of the search.
func (r *Registry) IsAssignableTo(child, parent *Type) bool {
	if child == nil || parent == nil {
		return false
	}
	if child == parent {
		return true
	}
	if child.IsPrimitive() || parent.IsPrimitive() {
		return false
	}
	if parent.descriptor == ObjectDescriptor {
		return true
	}
	if child.IsArray() {
		switch parent.descriptor {
		case CloneableDescriptor, SerializableDescriptor:
			return true
		}
		if !parent.IsArray() {
			return false
		}
		cc, pc := r.ComponentType(child), r.ComponentType(parent)
		if cc == nil || pc == nil || cc.IsPrimitive() || pc.IsPrimitive() {
			return cc == pc
		}
		return r.IsAssignableTo(cc, pc)
	}
	if parent.IsArray() {
		return false
	}
	return r.classAssignable(child, parent, make(map[*Type]bool))
}

func (r *Registry) classAssignable(child, parent *Type, seen map[*Type]bool) bool {
	for t := child; t != nil; {
		if t == parent {
			return true
		}
		if seen[t] {
			return false
		}
		seen[t] = true
		cls := r.classes[t]
		if cls == nil {
			return false
		}
		for _, iface := range cls.Interfaces {
			if r.classAssignable(iface, parent, seen) {
				return true
			}
		}
		t = cls.Super
	}
	return false
}
