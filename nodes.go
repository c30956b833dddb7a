package docmodel

import (
	"context"

	"github.com/jward/docmodel/internal/model"
	"github.com/jward/docmodel/internal/semantic"
)

func addDeclarationConverters(c *Converter) {
	c.RegisterDeclarationConverter(convertClass, semantic.ClassDeclaration)
	c.RegisterDeclarationConverter(convertInterface, semantic.InterfaceDeclaration)
	c.RegisterDeclarationConverter(convertFunction, semantic.FunctionDeclaration)
	c.RegisterDeclarationConverter(convertVariable, semantic.VariableDeclaration)
	c.RegisterDeclarationConverter(convertEnum, semantic.EnumDeclaration)
	c.RegisterDeclarationConverter(convertEnumMember, semantic.EnumMember)
	c.RegisterDeclarationConverter(convertTypeAlias, semantic.TypeAliasDeclaration)
	c.RegisterDeclarationConverter(convertNamespace, semantic.ModuleDeclaration)
	c.RegisterDeclarationConverter(convertProperty, semantic.PropertyDeclaration, semantic.PropertySignature)
	c.RegisterDeclarationConverter(convertMethod, semantic.MethodDeclaration, semantic.MethodSignature)
	c.RegisterDeclarationConverter(convertConstructor, semantic.Constructor)
	c.RegisterDeclarationConverter(convertAccessor, semantic.GetAccessor, semantic.SetAccessor)
}

// flagsFromModifiers maps source modifiers onto reflection flags.
func flagsFromModifiers(n *Node) ReflectionFlags {
	var flags ReflectionFlags
	for _, m := range n.Modifiers {
		if m == "export" {
			flags |= model.FlagExported
			continue
		}
		if f, ok := model.FlagByName(m); ok {
			flags |= f
		}
	}
	return flags
}

func flagsFromNodes(nodes []*Node) ReflectionFlags {
	var flags ReflectionFlags
	for _, n := range nodes {
		flags |= flagsFromModifiers(n)
	}
	return flags
}

// typeOf converts the declared type of a declaration node, falling back to
// the provider's inferred type.
func (c *Converter) typeOf(n *Node) Type {
	if n.Type != nil {
		return c.ConvertType(n.Type, nil)
	}
	return c.ConvertType(nil, c.Program().ResolveType(n))
}

func (c *Converter) typeOrObjectOf(n *Node) TypeOrObject {
	if n.Type != nil {
		return c.ConvertTypeOrObject(n.Type, nil)
	}
	return TypeOrObject{Type: c.typeOf(n)}
}

func (c *Converter) typeParameters(nodes []*Node) []*model.TypeParameterReflection {
	var out []*model.TypeParameterReflection
	for _, n := range nodes {
		tp := model.NewTypeParameter(n.Name)
		if n.Type != nil {
			tp.Constraint = c.ConvertType(n.Type, nil)
		}
		if len(n.Children) > 0 {
			tp.Default = c.ConvertType(n.Children[0], nil)
		}
		out = append(out, tp)
	}
	return out
}

// firstTypeParameters returns the type parameters of the first node that
// declares any. Merged declarations must agree on them.
func firstTypeParameters(nodes []*Node) []*Node {
	for _, n := range nodes {
		if len(n.TypeParameters) > 0 {
			return n.TypeParameters
		}
	}
	return nil
}

// signature builds a call signature from a function-like node.
func (c *Converter) signature(name string, n *Node) *model.SignatureReflection {
	sig := model.NewSignature(name)
	if cm := c.comments([]string{n.Doc}); cm != nil {
		sig.SetComment(cm)
	}
	for _, tp := range c.typeParameters(n.TypeParameters) {
		sig.AddTypeParameter(tp)
	}
	for _, p := range n.Parameters {
		param := model.NewParameter(p.Name)
		param.SetFlag(flagsFromModifiers(p))
		param.Type = c.typeOf(p)
		param.DefaultValue = p.Text
		sig.AddParameter(param)
	}
	switch {
	case n.ReturnType != nil:
		sig.Return = c.ConvertType(n.ReturnType, nil)
	case n.Kind == semantic.SetAccessor:
		sig.Return = &model.IntrinsicType{Name: "void"}
	default:
		sig.Return = c.ConvertType(nil, nil)
	}
	return sig
}

// callSignatures picks the nodes that become signatures. When overloads
// are declared, the implementation is not part of the API.
func callSignatures(nodes []*Node) []*Node {
	var overloads []*Node
	for _, n := range nodes {
		if !n.HasBody {
			overloads = append(overloads, n)
		}
	}
	if len(overloads) > 0 {
		return overloads
	}
	return nodes
}

func convertClass(ctx context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	cls := model.NewClass(symbol.Name)
	cls.SetFlag(flagsFromNodes(nodes))
	cls.TypeParameters = model.AdoptTypeParameters(cls, c.typeParameters(firstTypeParameters(nodes)))

	for _, n := range nodes {
		switch n.Kind {
		case semantic.ClassDeclaration:
			if clause := n.Clause("extends"); clause != nil {
				for _, t := range clause.Children {
					cls.Extends = append(cls.Extends, c.ConvertType(t, nil))
				}
			}
			if clause := n.Clause("implements"); clause != nil {
				for _, t := range clause.Children {
					cls.Implements = append(cls.Implements, c.ConvertType(t, nil))
				}
			}
		case semantic.InterfaceDeclaration:
			// A merged interface's supertypes become implemented types.
			if clause := n.Clause("extends"); clause != nil {
				for _, t := range clause.Children {
					cls.Implements = append(cls.Implements, c.ConvertType(t, nil))
				}
			}
		}
	}

	if err := cc.WithContainer(cls).ConvertMembers(ctx, symbol); err != nil {
		return nil, err
	}
	return cls, nil
}

func convertInterface(ctx context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	iface := model.NewInterface(symbol.Name)
	iface.SetFlag(flagsFromNodes(nodes))
	iface.TypeParameters = model.AdoptTypeParameters(iface, c.typeParameters(firstTypeParameters(nodes)))
	for _, n := range nodes {
		if clause := n.Clause("extends"); clause != nil {
			for _, t := range clause.Children {
				iface.Extends = append(iface.Extends, c.ConvertType(t, nil))
			}
		}
	}
	if err := cc.WithContainer(iface).ConvertMembers(ctx, symbol); err != nil {
		return nil, err
	}
	return iface, nil
}

func convertFunction(_ context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	fn := model.NewFunction(symbol.Name)
	fn.SetFlag(flagsFromNodes(nodes))
	for _, n := range callSignatures(nodes) {
		fn.AddSignature(c.signature(symbol.Name, n))
	}
	return fn, nil
}

func convertMethod(_ context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	m := model.NewMethod(symbol.Name)
	m.SetFlag(flagsFromNodes(nodes))
	for _, n := range callSignatures(nodes) {
		m.AddSignature(c.signature(symbol.Name, n))
	}
	return m, nil
}

func convertConstructor(_ context.Context, cc Context, _ *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	ctor := model.NewConstructor()
	ctor.SetFlag(flagsFromNodes(nodes))
	owner := cc.Container().Name()
	for _, n := range callSignatures(nodes) {
		sig := c.signature("new "+owner, n)
		sig.Return = &model.ReferenceType{Name: owner}
		ctor.AddSignature(sig)
	}
	return ctor, nil
}

// convertAccessor handles both accessor kinds. When a getter exists the
// setter kind is merged away, so the setter nodes are looked up from the
// symbol's full declaration list.
func convertAccessor(_ context.Context, cc Context, symbol *Symbol, _ []*Node) (Reflection, error) {
	c := cc.Converter()
	all := cc.Program().Declarations(symbol)
	acc := model.NewAccessor(symbol.Name)
	for _, n := range all {
		switch n.Kind {
		case semantic.GetAccessor:
			if acc.GetSignature == nil {
				acc.SetFlag(flagsFromModifiers(n))
				acc.SetGetter(c.signature(symbol.Name, n))
			}
		case semantic.SetAccessor:
			if acc.SetSignature == nil {
				acc.SetFlag(flagsFromModifiers(n))
				acc.SetSetter(c.signature(symbol.Name, n))
			}
		}
	}
	return acc, nil
}

func convertProperty(_ context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	prop := model.NewProperty(symbol.Name)
	prop.SetFlag(flagsFromNodes(nodes))
	n := nodes[0]
	res := c.typeOrObjectOf(n)
	if res.Object != nil {
		prop.SetObject(res.Object)
	} else {
		prop.Type = res.Type
	}
	prop.DefaultValue = n.Text
	return prop, nil
}

func convertVariable(_ context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	v := model.NewVariable(symbol.Name)
	v.SetFlag(flagsFromNodes(nodes))
	n := nodes[0]
	res := c.typeOrObjectOf(n)
	if res.Object != nil {
		v.SetObject(res.Object)
	} else {
		v.Type = res.Type
	}
	v.DefaultValue = n.Text
	return v, nil
}

func convertTypeAlias(_ context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	c := cc.Converter()
	alias := model.NewTypeAlias(symbol.Name)
	alias.SetFlag(flagsFromNodes(nodes))
	n := nodes[0]
	alias.TypeParameters = model.AdoptTypeParameters(alias, c.typeParameters(n.TypeParameters))
	alias.Type = c.ConvertType(n.Type, nil)
	return alias, nil
}

func convertEnum(ctx context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	enum := model.NewEnum(symbol.Name)
	enum.SetFlag(flagsFromNodes(nodes))
	if err := cc.WithContainer(enum).ConvertMembers(ctx, symbol); err != nil {
		return nil, err
	}
	return enum, nil
}

func convertEnumMember(_ context.Context, _ Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	return model.NewEnumMember(symbol.Name, nodes[0].Text), nil
}

func convertNamespace(ctx context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error) {
	ns := model.NewNamespace(symbol.Name)
	ns.SetFlag(flagsFromNodes(nodes))
	if err := cc.WithContainer(ns).ConvertMembers(ctx, symbol); err != nil {
		return nil, err
	}
	return ns, nil
}
