package docmodel

import (
	"github.com/jward/docmodel/internal/model"
	"github.com/jward/docmodel/internal/semantic"
)

// TypeOrObject is the result of ConvertTypeOrObject: exactly one field is
// set.
type TypeOrObject struct {
	Type   Type
	Object *ObjectReflection
}

// ConvertType converts a type annotation, a resolved type, or both. The
// annotation's kind picks a type-node converter first; otherwise the
// ordered type converters are tried; otherwise the provider's rendering is
// kept as an unknown type. It panics when no conversion is in progress.
func (c *Converter) ConvertType(node *Node, t *SemanticType) Type {
	c.mu.RLock()
	active, program := c.active, c.program
	c.mu.RUnlock()
	if !active {
		panic("docmodel: ConvertType may only be called while conversion is in progress")
	}

	if node == nil && t == nil {
		return model.Any()
	}
	if node == nil {
		if synth, ok := program.SynthesizeAnnotation(t); ok {
			node = synth
		}
	}

	if node != nil {
		if t == nil {
			t = program.ResolveType(node)
		}
		if conv, ok := c.registry.typeNode(node.Kind); ok {
			return conv(c, node, t)
		}
		c.logger.Debug("missing type node converter", "kind", node.Kind.String())
	}

	if t == nil {
		// Only an unconvertible annotation with no resolution reaches here.
		return &model.UnknownType{Name: node.Text}
	}
	for _, tc := range c.registry.typeConverters() {
		if tc.supports(t, program) {
			return tc.convert(c, t)
		}
	}

	name := program.TypeToString(t)
	c.logger.Debug("missing type converter", "type", name)
	return &model.UnknownType{Name: name}
}

// ConvertTypeOrObject is ConvertType, except that an inline type literal
// annotation becomes an ObjectReflection whose children document its
// members.
func (c *Converter) ConvertTypeOrObject(node *Node, t *SemanticType) TypeOrObject {
	if node != nil && node.Kind == semantic.TypeLiteral {
		return TypeOrObject{Object: c.objectFromLiteral(node)}
	}
	return TypeOrObject{Type: c.ConvertType(node, t)}
}

func (c *Converter) objectFromLiteral(node *Node) *ObjectReflection {
	obj := model.NewObject("__type")
	for _, member := range node.Children {
		switch member.Kind {
		case semantic.PropertySignature:
			prop := model.NewProperty(member.Name)
			prop.SetFlag(flagsFromModifiers(member))
			res := c.ConvertTypeOrObject(member.Type, nil)
			if res.Object != nil {
				prop.SetObject(res.Object)
			} else {
				prop.Type = res.Type
			}
			c.decorate(prop, []*Node{member})
			obj.AddChild(prop)
		case semantic.MethodSignature:
			method := model.NewMethod(member.Name)
			method.SetFlag(flagsFromModifiers(member))
			method.AddSignature(c.signature(member.Name, member))
			c.decorate(method, []*Node{member})
			obj.AddChild(method)
		}
	}
	return obj
}
