package match

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/dexmatch/internal/ir"
)

// program is a small hand-built IR used across the package tests.
//
//	Ljava/lang/Object;            external
//	Lcom/Base;       extends Object
//	Lcom/Foo;        extends Base, final, has <init>()V (default), run()V, count:I, INSTANCE:Lcom/Foo;
//	Lcom/Empty;      no members, enum, no class data
type program struct {
	reg   *ir.Registry
	obj   *ir.Class
	base  *ir.Class
	foo   *ir.Class
	empty *ir.Class

	fooInit *ir.Method
	run     *ir.Method
	count   *ir.Field
	inst    *ir.Field
}

func newProgram(t *testing.T) *program {
	t.Helper()
	r := ir.NewRegistry()
	p := &program{reg: r}

	var err error
	p.obj, err = r.DefineClass(r.MustType(ir.ObjectDescriptor))
	require.NoError(t, err)
	p.obj.External = true
	_, err = r.DefineMethod(r.MustMethodRef("Ljava/lang/Object;.<init>:()V"), ir.AccPublic|ir.AccConstructor)
	require.NoError(t, err)

	p.base, err = r.DefineClass(r.MustType("Lcom/Base;"))
	require.NoError(t, err)
	p.base.Super = p.obj.AsType()
	p.base.ClassData = true
	p.base.Flags = ir.AccPublic | ir.AccAbstract

	p.foo, err = r.DefineClass(r.MustType("Lcom/Foo;"))
	require.NoError(t, err)
	p.foo.Super = p.base.AsType()
	p.foo.ClassData = true
	p.foo.Flags = ir.AccPublic | ir.AccFinal
	p.foo.Annotations = ir.NewAnnotationSet(
		ir.NewAnnotation(r.MustType("Lcom/Keep;"), ir.VisibilityBuild),
	)

	p.fooInit, err = r.DefineMethod(r.MustMethodRef("Lcom/Foo;.<init>:()V"), ir.AccPublic|ir.AccConstructor)
	require.NoError(t, err)
	p.fooInit.Code = &ir.Code{Insns: []*ir.Instruction{
		ir.NewInstruction(ir.OpLoadParamObject).WithDest(0),
		ir.NewInstruction(ir.OpInvokeDirect, 0).WithMethod(r.MustMethodRef("Lcom/Base;.<init>:()V")),
		ir.NewInstruction(ir.OpReturnVoid),
	}}

	p.run, err = r.DefineMethod(r.MustMethodRef("Lcom/Foo;.run:()V"), ir.AccPublic)
	require.NoError(t, err)
	p.run.Annotations = ir.NewAnnotationSet(
		ir.NewAnnotation(r.MustType("Ljava/lang/Override;"), ir.VisibilityRuntime),
	)

	p.count, err = r.DefineField(r.MustFieldRef("Lcom/Foo;.count:I"), ir.AccPrivate)
	require.NoError(t, err)
	p.inst, err = r.DefineField(r.MustFieldRef("Lcom/Foo;.INSTANCE:Lcom/Foo;"), ir.AccStatic|ir.AccFinal)
	require.NoError(t, err)

	p.empty, err = r.DefineClass(r.MustType("Lcom/Empty;"))
	require.NoError(t, err)
	p.empty.Flags = ir.AccEnum
	return p
}
