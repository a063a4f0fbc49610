package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hierarchyFixture builds:
//
//	Object <- Base <- Derived (implements Runnable)
//	Runnable <- Task (interface extends interface)
//	Other (unrelated)
func hierarchyFixture(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	def := func(desc, super string, ifaces ...string) {
		c, err := r.DefineClass(r.MustType(desc))
		require.NoError(t, err)
		if super != "" {
			c.Super = r.MustType(super)
		}
		for _, i := range ifaces {
			c.Interfaces = append(c.Interfaces, r.MustType(i))
		}
	}
	def(ObjectDescriptor, "")
	def("Ljava/lang/Runnable;", "")
	def("Lcom/Task;", ObjectDescriptor, "Ljava/lang/Runnable;")
	def("Lcom/Base;", ObjectDescriptor)
	def("Lcom/Derived;", "Lcom/Base;", "Lcom/Task;")
	def("Lcom/Other;", ObjectDescriptor)
	return r
}

func TestIsAssignableTo(t *testing.T) {
	r := hierarchyFixture(t)
	ty := r.MustType
	tests := []struct {
		child, parent string
		want          bool
	}{
		{"Lcom/Derived;", "Lcom/Derived;", true},
		{"Lcom/Derived;", "Lcom/Base;", true},
		{"Lcom/Derived;", ObjectDescriptor, true},
		{"Lcom/Derived;", "Lcom/Task;", true},
		{"Lcom/Derived;", "Ljava/lang/Runnable;", true},
		{"Lcom/Base;", "Lcom/Derived;", false},
		{"Lcom/Other;", "Lcom/Base;", false},
		{"Lcom/Unresolved;", "Lcom/Base;", false},
		{"Lcom/Unresolved;", ObjectDescriptor, true},
		{"I", "I", true},
		{"I", "J", false},
		{"I", ObjectDescriptor, false},
		{"[I", ObjectDescriptor, true},
		{"[I", CloneableDescriptor, true},
		{"[I", "[J", false},
		{"[Lcom/Derived;", "[Lcom/Base;", true},
		{"[Lcom/Base;", "[Lcom/Derived;", false},
		{"[[I", "[Ljava/lang/Object;", true},
		{"[I", "[Ljava/lang/Object;", false},
		{"Lcom/Base;", "[Lcom/Base;", false},
	}
	for _, tt := range tests {
		t.Run(tt.child+"->"+tt.parent, func(t *testing.T) {
			assert.Equal(t, tt.want, r.IsAssignableTo(ty(tt.child), ty(tt.parent)))
		})
	}
	assert.False(t, r.IsAssignableTo(nil, ty(ObjectDescriptor)))
}

func TestIsAssignableToCycle(t *testing.T) {
	r := NewRegistry()
	a, err := r.DefineClass(r.MustType("La;"))
	require.NoError(t, err)
	b, err := r.DefineClass(r.MustType("Lb;"))
	require.NoError(t, err)
	a.Super = b.AsType()
	b.Super = a.AsType()
	assert.False(t, r.IsAssignableTo(a.AsType(), r.MustType("Lc;")))
	assert.True(t, r.IsAssignableTo(a.AsType(), b.AsType()))
}
