package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind Kind
		want string
	}{
		{KindProject, "project"},
		{KindEnumMember, "enumMember"},
		{KindTypeAlias, "typeAlias"},
		{KindObjectLiteral, "objectLiteral"},
		{KindTypeParameter, "typeParameter"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestKindString_PanicsOnMask(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { _ = (KindClass | KindInterface).String() })
	assert.Panics(t, func() { _ = Kind(0).String() })
	assert.Panics(t, func() { _ = Kind(1 << 30).String() })
}

func TestFlags(t *testing.T) {
	t.Parallel()

	f := FlagExported | FlagStatic | FlagReadonly
	assert.True(t, f.Has(FlagExported|FlagStatic))
	assert.False(t, f.Has(FlagExported|FlagPrivate))
	assert.True(t, f.HasAny(FlagPrivate|FlagStatic))
	assert.False(t, f.HasAny(FlagPrivate|FlagProtected))

	without := f.Without(FlagStatic | FlagPrivate)
	assert.Equal(t, FlagExported|FlagReadonly, without)
	assert.Equal(t, []string{"exported", "readonly"}, without.Names())

	got, ok := FlagByName("abstract")
	require.True(t, ok)
	assert.Equal(t, FlagAbstract, got)
	_, ok = FlagByName("bogus")
	assert.False(t, ok)
}

func TestAddChild_SetsParentAndOrder(t *testing.T) {
	t.Parallel()

	project := NewProject("Documentation")
	a := NewModule("a")
	b := NewModule("b")
	project.AddChild(a)
	project.AddChild(b)

	fn := NewFunction("run")
	a.AddChild(fn)

	require.Len(t, project.Children(), 2)
	assert.Same(t, a, project.Children()[0])
	assert.Same(t, b, project.Children()[1])
	assert.Equal(t, project, a.Parent())
	assert.Equal(t, a, fn.Parent())
	assert.Nil(t, project.Parent())
	assert.Equal(t, []*ModuleReflection{a, b}, project.Modules())
	assert.Equal(t, "a.run", FullName(fn))
}

func TestAddChild_PanicsOnSecondParent(t *testing.T) {
	t.Parallel()

	a := NewModule("a")
	b := NewModule("b")
	cls := NewClass("Widget")
	a.AddChild(cls)
	assert.PanicsWithValue(t, `model: class "Widget" is already attached to "a"`, func() {
		b.AddChild(cls)
	})
	assert.Empty(t, b.Children())
}

func TestSignatures_AreAdopted(t *testing.T) {
	t.Parallel()

	fn := NewFunction("parse")
	sig := NewSignature("parse")
	p := NewParameter("input")
	sig.AddParameter(p)
	fn.AddSignature(sig)

	require.Len(t, fn.Signatures(), 1)
	assert.Equal(t, fn, sig.Parent())
	assert.Equal(t, sig, p.Parent())

	acc := NewAccessor("value")
	get := NewSignature("value")
	acc.SetGetter(get)
	assert.Equal(t, acc, get.Parent())
	assert.Panics(t, func() { acc.SetSetter(get) })
}

func TestWalkAndChildrenOfKind(t *testing.T) {
	t.Parallel()

	m := NewModule("index")
	ns := NewNamespace("util")
	m.AddChild(ns)
	ns.AddChild(NewFunction("helper"))
	m.AddChild(NewVariable("version"))

	var names []string
	Walk(m, func(r Reflection) bool {
		names = append(names, r.Name())
		return true
	})
	assert.Equal(t, []string{"index", "util", "helper", "version"}, names)

	names = nil
	Walk(m, func(r Reflection) bool {
		names = append(names, r.Name())
		return r.Kind() != KindNamespace
	})
	assert.Equal(t, []string{"index", "util", "version"}, names)

	vars := ChildrenOfKind(m, KindVariable|KindFunction)
	require.Len(t, vars, 1)
	assert.Equal(t, "version", vars[0].Name())
}

func TestDecorationIsMutable(t *testing.T) {
	t.Parallel()

	p := NewProperty("size")
	p.SetFlag(FlagReadonly)
	p.SetFlag(FlagOptional)
	p.AddSource(SourceReference{FileName: "src/a.ts", Line: 3, Column: 2})
	p.SetComment(&Comment{Summary: "Size in bytes."})

	assert.True(t, p.Flags().Has(FlagReadonly|FlagOptional))
	assert.Equal(t, []SourceReference{{FileName: "src/a.ts", Line: 3, Column: 2}}, p.Sources())
	assert.Equal(t, "Size in bytes.", p.Comment().Summary)
	assert.Equal(t, "size", p.Name())
	assert.Equal(t, KindProperty, p.Kind())
}

func TestTypeStrings(t *testing.T) {
	t.Parallel()

	str := &IntrinsicType{Name: "string"}
	num := &IntrinsicType{Name: "number"}

	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"intrinsic", str, "string"},
		{"reference", &ReferenceType{Name: "Map", TypeArguments: []Type{str, num}}, "Map<string, number>"},
		{"array", &ArrayType{Element: str}, "string[]"},
		{"array of union", &ArrayType{Element: &UnionType{Types: []Type{str, num}}}, "(string | number)[]"},
		{"intersection", &IntersectionType{Types: []Type{&ReferenceType{Name: "A"}, &ReferenceType{Name: "B"}}}, "A & B"},
		{"literal", &LiteralType{Value: QuoteString("on")}, `"on"`},
		{"tuple", &TupleType{Elements: []Type{str, num}}, "[string, number]"},
		{"object", &ObjectLiteralType{Members: []Member{{Name: "a", Type: str}, {Name: "b", Optional: true, Type: num}}}, "{ a: string; b?: number }"},
		{"empty object", &ObjectLiteralType{}, "{}"},
		{"function", &FunctionType{Parameters: []Member{{Name: "xs", Rest: true, Type: &ArrayType{Element: num}}}, Return: &IntrinsicType{Name: "void"}}, "(...xs: number[]) => void"},
		{"operator", &OperatorType{Operator: "keyof", Target: &ReferenceType{Name: "T"}}, "keyof T"},
		{"unknown", &UnknownType{Name: "typeof x"}, "typeof x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
	assert.Equal(t, "any", Any().String())
	assert.Equal(t, "intrinsic", Any().TypeName())
}

func TestCommentHelpers(t *testing.T) {
	t.Parallel()

	c := &Comment{
		Summary:      "Adds numbers.",
		BlockTags:    []Tag{{Name: "@param", Param: "a", Text: "first"}, {Name: "@returns", Text: "the sum"}},
		ModifierTags: []string{"@deprecated"},
	}
	assert.True(t, c.HasModifier("deprecated"))
	assert.True(t, c.HasModifier("@deprecated"))
	assert.False(t, c.HasModifier("internal"))

	tag, ok := c.Tag("returns")
	require.True(t, ok)
	assert.Equal(t, "the sum", tag.Text)

	param, ok := c.ParamTag("a")
	require.True(t, ok)
	assert.Equal(t, "first", param.Text)

	clone := c.Clone()
	clone.BlockTags[0].Text = "changed"
	assert.Equal(t, "first", c.BlockTags[0].Text)

	var nilComment *Comment
	assert.True(t, nilComment.IsEmpty())
	assert.False(t, nilComment.HasModifier("x"))
	assert.True(t, (&Comment{}).IsEmpty())
}
