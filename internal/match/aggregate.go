package match

import "github.com/roach88/dexmatch/internal/ir"

func anyOf[E any](items []E, p Matcher[E]) bool {
	for _, it := range items {
		if p.Matches(it) {
			return true
		}
	}
	return false
}

// AnyVMethods matches classes with a virtual method accepted by p.
func AnyVMethods(p Matcher[*ir.Method]) Matcher[*ir.Class] {
	return Func[*ir.Class](func(c *ir.Class) bool { return anyOf(c.VMethods, p) })
}

// AnyDMethods matches classes with a direct method accepted by p.
func AnyDMethods(p Matcher[*ir.Method]) Matcher[*ir.Class] {
	return Func[*ir.Class](func(c *ir.Class) bool { return anyOf(c.DMethods, p) })
}

// AnyIFields matches classes with an instance field accepted by p.
func AnyIFields(p Matcher[*ir.Field]) Matcher[*ir.Class] {
	return Func[*ir.Class](func(c *ir.Class) bool { return anyOf(c.IFields, p) })
}

// AnySFields matches classes with a static field accepted by p.
func AnySFields(p Matcher[*ir.Field]) Matcher[*ir.Class] {
	return Func[*ir.Class](func(c *ir.Class) bool { return anyOf(c.SFields, p) })
}
