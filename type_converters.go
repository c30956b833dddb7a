package docmodel

import (
	"github.com/jward/docmodel/internal/model"
	"github.com/jward/docmodel/internal/semantic"
)

// Type converter priorities. Lower runs first; arrays and tuples are
// objects too, so they must precede the reference converter.
const (
	PriorityLiteral      = 100
	PriorityIntrinsic    = 200
	PriorityComposite    = 300
	PriorityArray        = 400
	PriorityReference    = 500
	PriorityObjectSymbol = 600
)

func addTypeConverters(c *Converter) {
	c.RegisterTypeConverter(PriorityLiteral,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeLiteralFlags) },
		func(_ *Converter, t *SemanticType) Type { return &model.LiteralType{Value: t.Name} })

	c.RegisterTypeConverter(PriorityIntrinsic,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeIntrinsic) },
		func(_ *Converter, t *SemanticType) Type { return &model.IntrinsicType{Name: t.Name} })

	c.RegisterTypeConverter(PriorityComposite,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeUnion) },
		func(c *Converter, t *SemanticType) Type { return &model.UnionType{Types: c.convertResolved(t.Types)} })

	c.RegisterTypeConverter(PriorityComposite,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeIntersection) },
		func(c *Converter, t *SemanticType) Type {
			return &model.IntersectionType{Types: c.convertResolved(t.Types)}
		})

	c.RegisterTypeConverter(PriorityArray,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeArray) },
		func(c *Converter, t *SemanticType) Type {
			if len(t.TypeArguments) == 0 {
				return &model.ArrayType{Element: model.Any()}
			}
			return &model.ArrayType{Element: c.ConvertType(nil, t.TypeArguments[0])}
		})

	c.RegisterTypeConverter(PriorityArray,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeTuple) },
		func(c *Converter, t *SemanticType) Type { return &model.TupleType{Elements: c.convertResolved(t.Types)} })

	c.RegisterTypeConverter(PriorityReference,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeObject) && t.Symbol != nil },
		func(c *Converter, t *SemanticType) Type {
			ref := &model.ReferenceType{Name: t.Symbol.Name, SymbolID: t.Symbol.ID}
			if len(t.TypeArguments) > 0 {
				ref.TypeArguments = c.convertResolved(t.TypeArguments)
			}
			return ref
		})

	c.RegisterTypeConverter(PriorityObjectSymbol,
		func(t *SemanticType, _ Program) bool { return t.Flags.Has(semantic.TypeObject) && t.Name != "" },
		func(_ *Converter, t *SemanticType) Type { return &model.ReferenceType{Name: t.Name} })
}

func (c *Converter) convertResolved(types []*SemanticType) []Type {
	out := make([]Type, len(types))
	for i, t := range types {
		out[i] = c.ConvertType(nil, t)
	}
	return out
}
