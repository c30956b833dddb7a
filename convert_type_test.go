package docmodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docmodel/internal/model"
	"github.com/jward/docmodel/internal/semantic"
)

// duringPass runs fn inside a conversion pass over an empty program.
func duringPass(t *testing.T, conv *Converter, p *fakeProgram, fn func()) {
	t.Helper()
	ran := false
	conv.OnBegin(func(context.Context, BeginEvent) error {
		fn()
		ran = true
		return nil
	})
	_, err := conv.Convert(context.Background(), p, nil)
	require.NoError(t, err)
	require.True(t, ran)
}

func TestConvertType_FallbackChain(t *testing.T) {
	t.Parallel()

	p := newFakeProgram()
	p.opts.RootDir = "/proj"
	conv := newTestConverter()

	unionNode := &Node{Kind: semantic.UnionType, Children: []*Node{keyword(semantic.StringKeyword), keyword(semantic.NumberKeyword)}}
	oddNode := &Node{Kind: semantic.KindUnknown, Text: "typeof foo"}
	resolvedOdd := &Node{Kind: semantic.KindUnknown, Text: "import('x')"}
	p.types[resolvedOdd] = &SemanticType{Flags: semantic.TypeNumber, Name: "number"}

	duringPass(t, conv, p, func() {
		// Neither node nor type.
		assert.Equal(t, "any", conv.ConvertType(nil, nil).String())

		// Node dispatch by kind.
		got := conv.ConvertType(unionNode, nil)
		assert.IsType(t, &model.UnionType{}, got)
		assert.Equal(t, "string | number", got.String())

		// Type with a synthesizable annotation goes through the node path.
		withOrigin := &SemanticType{Flags: semantic.TypeUnion, Origin: unionNode}
		assert.Equal(t, "string | number", conv.ConvertType(nil, withOrigin).String())

		// Unknown node kind with no resolution keeps the source text.
		assert.Equal(t, &model.UnknownType{Name: "typeof foo"}, conv.ConvertType(oddNode, nil))

		// Unknown node kind with a resolved type falls to the type converters.
		assert.Equal(t, &model.IntrinsicType{Name: "number"}, conv.ConvertType(resolvedOdd, nil))

		// Type converters in priority order.
		assert.Equal(t, &model.LiteralType{Value: "42"},
			conv.ConvertType(nil, &SemanticType{Flags: semantic.TypeNumberLiteral, Name: "42"}))
		assert.Equal(t, &model.LiteralType{Value: `"on"`},
			conv.ConvertType(nil, &SemanticType{Flags: semantic.TypeStringLiteral, Name: `"on"`}))
		assert.Equal(t, &model.LiteralType{Value: "true"},
			conv.ConvertType(nil, &SemanticType{Flags: semantic.TypeBooleanLiteral, Name: "true"}))
		arr := &SemanticType{Flags: semantic.TypeArray | semantic.TypeObject, Name: "Array",
			Symbol: &Symbol{ID: 9, Name: "Array"}, TypeArguments: []*SemanticType{{Flags: semantic.TypeString, Name: "string"}}}
		assert.Equal(t, "string[]", conv.ConvertType(nil, arr).String())
		obj := &SemanticType{Flags: semantic.TypeObject, Name: "Widget", Symbol: &Symbol{ID: 3, Name: "Widget"}}
		assert.Equal(t, &model.ReferenceType{Name: "Widget", SymbolID: 3}, conv.ConvertType(nil, obj))
		union := &SemanticType{Flags: semantic.TypeUnion, Types: []*SemanticType{
			{Flags: semantic.TypeStringLiteral, Name: `"a"`},
			{Flags: semantic.TypeUndefined, Name: "undefined"},
		}}
		assert.Equal(t, `"a" | undefined`, conv.ConvertType(nil, union).String())

		// Nothing matches: the provider's rendering.
		assert.Equal(t, &model.UnknownType{Name: "Mystery"}, conv.ConvertType(nil, &SemanticType{Name: "Mystery"}))
		assert.Equal(t, &model.UnknownType{Name: "<anonymous>"}, conv.ConvertType(nil, &SemanticType{}))
	})
}

func TestConvertType_CustomPriorityWins(t *testing.T) {
	t.Parallel()

	p := newFakeProgram()
	p.opts.RootDir = "/proj"
	conv := newTestConverter()
	conv.RegisterTypeConverter(PriorityIntrinsic-1,
		func(t *SemanticType, _ Program) bool { return t.Name == "string" },
		func(*Converter, *SemanticType) Type { return &model.IntrinsicType{Name: "String!"} })

	duringPass(t, conv, p, func() {
		assert.Equal(t, "String!", conv.ConvertType(nil, &SemanticType{Flags: semantic.TypeString, Name: "string"}).String())
		assert.Equal(t, "number", conv.ConvertType(nil, &SemanticType{Flags: semantic.TypeNumber, Name: "number"}).String())
	})
}

func TestConvertType_TypeNodes(t *testing.T) {
	t.Parallel()

	p := newFakeProgram()
	p.opts.RootDir = "/proj"
	conv := newTestConverter()

	str := keyword(semantic.StringKeyword)
	tests := []struct {
		name string
		node *Node
		want string
	}{
		{"reference with args", ref("Map", str, keyword(semantic.NumberKeyword)), "Map<string, number>"},
		{"array", &Node{Kind: semantic.ArrayType, Children: []*Node{str}}, "string[]"},
		{"tuple", &Node{Kind: semantic.TupleType, Children: []*Node{str, keyword(semantic.BooleanKeyword)}}, "[string, boolean]"},
		{"intersection", &Node{Kind: semantic.IntersectionType, Children: []*Node{ref("A"), ref("B")}}, "A & B"},
		{"literal", &Node{Kind: semantic.LiteralType, Text: `"on"`}, `"on"`},
		{"parenthesized", &Node{Kind: semantic.ParenthesizedType, Children: []*Node{ref("T")}}, "T"},
		{"operator", &Node{Kind: semantic.TypeOperator, Name: "keyof", Children: []*Node{ref("T")}}, "keyof T"},
		{"function", &Node{Kind: semantic.FunctionType,
			Parameters: []*Node{{Kind: semantic.Parameter, Name: "x", Type: str}},
			ReturnType: keyword(semantic.VoidKeyword)}, "(x: string) => void"},
		{"type literal", &Node{Kind: semantic.TypeLiteral, Children: []*Node{
			{Kind: semantic.PropertySignature, Name: "a", Type: str},
			{Kind: semantic.MethodSignature, Name: "f", ReturnType: keyword(semantic.NeverKeyword)},
		}}, "{ a: string; f: () => never }"},
	}

	duringPass(t, conv, p, func() {
		for _, tt := range tests {
			assert.Equal(t, tt.want, conv.ConvertType(tt.node, nil).String(), tt.name)
		}
	})
}

func TestConvertTypeOrObject(t *testing.T) {
	t.Parallel()

	p := newFakeProgram()
	p.opts.RootDir = "/proj"
	conv := newTestConverter()

	lit := &Node{Kind: semantic.TypeLiteral, Children: []*Node{
		{Kind: semantic.PropertySignature, Name: "host", Type: keyword(semantic.StringKeyword)},
		{Kind: semantic.PropertySignature, Name: "tls", Type: &Node{Kind: semantic.TypeLiteral, Children: []*Node{
			{Kind: semantic.PropertySignature, Name: "cert", Type: keyword(semantic.StringKeyword)},
		}}},
		{Kind: semantic.MethodSignature, Name: "close", ReturnType: keyword(semantic.VoidKeyword)},
	}}

	duringPass(t, conv, p, func() {
		res := conv.ConvertTypeOrObject(lit, nil)
		assert.Nil(t, res.Type)
		require.NotNil(t, res.Object)
		assert.Equal(t, []string{"host", "tls", "close"}, childNames(res.Object))

		tls := res.Object.Children()[1].(*model.PropertyReflection)
		require.NotNil(t, tls.Object)
		assert.Equal(t, []string{"cert"}, childNames(tls.Object))

		closeMethod := res.Object.Children()[2].(*model.MethodReflection)
		require.Len(t, closeMethod.Signatures(), 1)
		assert.Equal(t, "void", closeMethod.Signatures()[0].Return.String())

		plain := conv.ConvertTypeOrObject(keyword(semantic.BigIntKeyword), nil)
		assert.Nil(t, plain.Object)
		assert.Equal(t, "bigint", plain.Type.String())
	})
}
