package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dexmatch/internal/queryir"
)

func compilePatternSource(t *testing.T, src, name string) (*queryir.Pattern, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompilePattern(v.LookupPath(cue.MakePath(cue.Str("pattern"), cue.Str(name))))
}

func TestCompilePatternAllKinds(t *testing.T) {
	p, err := compilePatternSource(t, `
		pattern: everything: {
			description: "one of each"
			steps: [
				{kind: "any"},
				{kind: "opcode", op: "const"},
				{kind: "new_instance", type: "Lcom/Foo;"},
				{kind: "has_type", assignable_to: "Ljava/lang/Object;"},
				{kind: "invoke", invoke: "direct", method: {name: "<init>", class: "Lcom/Foo;", default_constructor: true}},
				{kind: "iget", field: {name: "count"}},
				{kind: "sput"},
				{kind: "const_string", value: "hi"},
				{kind: "move_result_pseudo"},
				{kind: "throw"},
				{kind: "return_void"},
				{kind: "args", n: 2},
				{kind: "not", step: {kind: "throw"}},
				{kind: "and", steps: [{kind: "any"}, {kind: "args", n: 0}]},
				{kind: "or", steps: [{kind: "throw"}, {kind: "return_void"}]},
				{kind: "xor", left: {kind: "throw"}, right: {kind: "args", n: 1}},
			]
		}
	`, "everything")
	require.NoError(t, err)

	assert.Equal(t, "everything", p.Name)
	assert.Equal(t, "one of each", p.Description)
	require.Len(t, p.Steps, 16)

	hi := "hi"
	want := []queryir.Predicate{
		&queryir.AnyInsn{},
		&queryir.Opcode{Name: "const"},
		&queryir.NewInstance{Type: &queryir.TypeFilter{Descriptor: "Lcom/Foo;"}},
		&queryir.HasType{Type: &queryir.TypeFilter{AssignableTo: "Ljava/lang/Object;"}},
		&queryir.Invoke{Kind: "direct", Method: &queryir.MemberFilter{Name: "<init>", Class: "Lcom/Foo;", DefaultConstructor: true}},
		&queryir.FieldAccess{Kind: "iget", Field: &queryir.MemberFilter{Name: "count"}},
		&queryir.FieldAccess{Kind: "sput"},
		&queryir.ConstString{Value: &hi},
		&queryir.MoveResultPseudo{},
		&queryir.Throw{},
		&queryir.ReturnVoid{},
		&queryir.ArgCount{N: 2},
		&queryir.Not{Predicate: &queryir.Throw{}},
		&queryir.And{Predicates: []queryir.Predicate{&queryir.AnyInsn{}, &queryir.ArgCount{N: 0}}},
		&queryir.Or{Predicates: []queryir.Predicate{&queryir.Throw{}, &queryir.ReturnVoid{}}},
		&queryir.Xor{Left: &queryir.Throw{}, Right: &queryir.ArgCount{N: 1}},
	}
	assert.Equal(t, want, p.Steps)
	assert.True(t, queryir.Validate(*p).IsValid)
}

func TestCompilePatternErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
		msg  string
	}{
		{"no_steps", `{}`, ErrCodeInvalidPattern, "steps are required"},
		{"empty_steps", `{steps: []}`, ErrCodeInvalidPattern, "at least one step"},
		{"no_kind", `{steps: [{op: "const"}]}`, ErrCodeInvalidStep, "kind is required"},
		{"bad_kind", `{steps: [{kind: "loop"}]}`, ErrCodeInvalidStep, "unknown step kind"},
		{"opcode_no_op", `{steps: [{kind: "opcode"}]}`, ErrCodeInvalidStep, "op is required"},
		{"args_no_n", `{steps: [{kind: "args"}]}`, ErrCodeInvalidStep, "n is required"},
		{"not_no_step", `{steps: [{kind: "not"}]}`, ErrCodeInvalidStep, "not requires a step"},
		{"and_no_steps", `{steps: [{kind: "and"}]}`, ErrCodeInvalidStep, "and requires steps"},
		{"xor_one_side", `{steps: [{kind: "xor", left: {kind: "any"}}]}`, ErrCodeInvalidStep, "left and right"},
		{"nested_bad", `{steps: [{kind: "not", step: {kind: "wat"}}]}`, ErrCodeInvalidStep, "steps[0].step.kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compilePatternSource(t, "pattern: p: "+tt.body, "p")
			require.Error(t, err)
			var ce *CompileError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.code, ce.Code)
			assert.Contains(t, ce.Error(), tt.msg)
		})
	}
}

func TestCompilePatternQuotedName(t *testing.T) {
	p, err := compilePatternSource(t, `pattern: "ctor-chain": {steps: [{kind: "any"}]}`, "ctor-chain")
	require.NoError(t, err)
	assert.Equal(t, "ctor-chain", p.Name)
}
