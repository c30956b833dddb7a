package docmodel

import (
	"github.com/jward/docmodel/internal/model"
	"github.com/jward/docmodel/internal/semantic"
)

func addTypeNodeConverters(c *Converter) {
	var keywords []SyntaxKind
	for k := semantic.AnyKeyword; k <= semantic.NeverKeyword; k++ {
		keywords = append(keywords, k)
	}
	c.RegisterTypeNodeConverter(convertKeywordNode, keywords...)
	c.RegisterTypeNodeConverter(convertReferenceNode, semantic.TypeReference)
	c.RegisterTypeNodeConverter(convertArrayNode, semantic.ArrayType)
	c.RegisterTypeNodeConverter(convertTupleNode, semantic.TupleType)
	c.RegisterTypeNodeConverter(convertUnionNode, semantic.UnionType)
	c.RegisterTypeNodeConverter(convertIntersectionNode, semantic.IntersectionType)
	c.RegisterTypeNodeConverter(convertLiteralNode, semantic.LiteralType)
	c.RegisterTypeNodeConverter(convertTypeLiteralNode, semantic.TypeLiteral)
	c.RegisterTypeNodeConverter(convertFunctionTypeNode, semantic.FunctionType)
	c.RegisterTypeNodeConverter(convertParenthesizedNode, semantic.ParenthesizedType)
	c.RegisterTypeNodeConverter(convertOperatorNode, semantic.TypeOperator)
}

func (c *Converter) convertChildren(nodes []*Node) []Type {
	out := make([]Type, len(nodes))
	for i, n := range nodes {
		out[i] = c.ConvertType(n, nil)
	}
	return out
}

func convertKeywordNode(_ *Converter, node *Node, _ *SemanticType) Type {
	return &model.IntrinsicType{Name: node.Kind.Keyword()}
}

func convertReferenceNode(c *Converter, node *Node, t *SemanticType) Type {
	ref := &model.ReferenceType{Name: node.Name, TypeArguments: c.convertChildren(node.Children)}
	if t != nil && t.Symbol != nil {
		ref.SymbolID = t.Symbol.ID
	}
	if len(ref.TypeArguments) == 0 {
		ref.TypeArguments = nil
	}
	return ref
}

func convertArrayNode(c *Converter, node *Node, _ *SemanticType) Type {
	if len(node.Children) == 0 {
		return &model.ArrayType{Element: model.Any()}
	}
	return &model.ArrayType{Element: c.ConvertType(node.Children[0], nil)}
}

func convertTupleNode(c *Converter, node *Node, _ *SemanticType) Type {
	return &model.TupleType{Elements: c.convertChildren(node.Children)}
}

func convertUnionNode(c *Converter, node *Node, _ *SemanticType) Type {
	return &model.UnionType{Types: c.convertChildren(node.Children)}
}

func convertIntersectionNode(c *Converter, node *Node, _ *SemanticType) Type {
	return &model.IntersectionType{Types: c.convertChildren(node.Children)}
}

func convertLiteralNode(_ *Converter, node *Node, _ *SemanticType) Type {
	return &model.LiteralType{Value: node.Text}
}

func convertTypeLiteralNode(c *Converter, node *Node, _ *SemanticType) Type {
	lit := &model.ObjectLiteralType{}
	for _, m := range node.Children {
		member := model.Member{Name: m.Name, Optional: m.HasModifier("optional")}
		switch m.Kind {
		case semantic.MethodSignature:
			member.Type = c.functionType(m)
		default:
			member.Type = c.ConvertType(m.Type, nil)
		}
		lit.Members = append(lit.Members, member)
	}
	return lit
}

func (c *Converter) functionType(node *Node) *model.FunctionType {
	fn := &model.FunctionType{}
	for _, p := range node.Parameters {
		fn.Parameters = append(fn.Parameters, model.Member{
			Name:     p.Name,
			Optional: p.HasModifier("optional"),
			Rest:     p.HasModifier("rest"),
			Type:     c.ConvertType(p.Type, nil),
		})
	}
	fn.Return = c.ConvertType(node.ReturnType, nil)
	return fn
}

func convertFunctionTypeNode(c *Converter, node *Node, _ *SemanticType) Type {
	return c.functionType(node)
}

func convertParenthesizedNode(c *Converter, node *Node, t *SemanticType) Type {
	if len(node.Children) == 0 {
		return model.Any()
	}
	return c.ConvertType(node.Children[0], t)
}

func convertOperatorNode(c *Converter, node *Node, _ *SemanticType) Type {
	target := Type(model.Any())
	if len(node.Children) > 0 {
		target = c.ConvertType(node.Children[0], nil)
	}
	return &model.OperatorType{Operator: node.Name, Target: target}
}
