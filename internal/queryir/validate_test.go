package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidPattern(t *testing.T) {
	p := Pattern{
		Name: "ctor_then_pseudo",
		Steps: []Predicate{
			&NewInstance{Type: &TypeFilter{Descriptor: "Lcom/Foo;"}},
			&Invoke{Kind: InvokeDirect, Method: &MemberFilter{Constructor: true}},
			&MoveResultPseudo{},
		},
	}

	result := Validate(p)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Warnings)
}

func TestValidate_EmptyPattern(t *testing.T) {
	result := Validate(Pattern{Name: "empty"})

	assert.False(t, result.IsValid)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no steps")
}

func TestValidate_Problems(t *testing.T) {
	tests := []struct {
		name    string
		step    Predicate
		warning string
	}{
		{"nil_step", nil, "nil predicate"},
		{"unknown_opcode", &Opcode{Name: "invoke-polymorphic"}, "unknown opcode"},
		{"bad_invoke_kind", &Invoke{Kind: "custom"}, "unknown invoke kind"},
		{"bad_field_kind", &FieldAccess{Kind: "aget"}, "unknown field access kind"},
		{"negative_args", &ArgCount{N: -1}, "negative argument count"},
		{"bad_descriptor", &NewInstance{Type: &TypeFilter{Descriptor: "com.Foo"}}, "descriptor"},
		{"bad_assignable", &HasType{Type: &TypeFilter{AssignableTo: "Lcom/Foo"}}, "descriptor"},
		{"bad_class", &Invoke{Method: &MemberFilter{Class: "Foo"}}, "descriptor"},
		{"field_ctor", &FieldAccess{Kind: FieldIGet, Field: &MemberFilter{Constructor: true}}, "constructor filter"},
		{"empty_and", &And{}, "empty and"},
		{"empty_or", &Or{}, "empty or"},
		{"nested_not", &Not{Predicate: &Opcode{Name: "nope"}}, "unknown opcode"},
		{"nested_xor", &Xor{Left: &Throw{}, Right: nil}, "nil predicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(Pattern{Name: tt.name, Steps: []Predicate{&AnyInsn{}, tt.step}})
			assert.False(t, result.IsValid)
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], tt.warning)
			assert.Contains(t, result.Warnings[0], "step 1")
		})
	}
}

func TestValidate_CollectsAllWarnings(t *testing.T) {
	p := Pattern{Steps: []Predicate{
		&Opcode{Name: "bogus"},
		&Or{Predicates: []Predicate{&ArgCount{N: -2}, &Invoke{Kind: "x"}}},
	}}

	result := Validate(p)

	assert.False(t, result.IsValid)
	assert.Len(t, result.Warnings, 3)
}

func TestPredicate_Sealed(t *testing.T) {
	var p Predicate = &Opcode{Name: "throw"}
	switch p.(type) {
	case *Opcode:
	default:
		t.Fatalf("unexpected type %T", p)
	}
}
