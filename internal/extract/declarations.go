package extract

import (
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docmodel/internal/semantic"
	"github.com/jward/docmodel/internal/store"
)

func (x *extractor) function(sc *scope, n *sitter.Node, mods []string, name string) {
	if name == "" {
		return
	}
	sym := x.declaration(sc, name, mods)
	node := x.declNode(sym, semantic.FunctionDeclaration, n, name, x.modifiers(n, mods))
	node.HasBody = n.ChildByFieldName("body") != nil
	id := x.insertNode(node)
	x.signatureParts(id, n)
}

func (x *extractor) class(sc *scope, n *sitter.Node, mods []string, name string) {
	if name == "" {
		return
	}
	sym := x.declaration(sc, name, mods)
	node := x.declNode(sym, semantic.ClassDeclaration, n, name, x.modifiers(n, mods))
	node.HasBody = true
	id := x.insertNode(node)
	x.typeParameters(id, n.ChildByFieldName("type_parameters"))

	ord := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		h := n.NamedChild(i)
		if h.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(h.NamedChildCount()); j++ {
			c := h.NamedChild(j)
			switch c.Type() {
			case "extends_clause":
				x.heritage(id, ord, "extends", c)
			case "implements_clause":
				x.heritage(id, ord, "implements", c)
			default:
				// JavaScript: `extends <expression>`.
				clause := x.childNode(id, store.RoleHeritage, ord, semantic.HeritageClause, h)
				clause.Name, clause.Text = "extends", x.text(h)
				cid := x.insertNode(clause)
				x.expressionRef(cid, store.RoleChild, 0, c, nil)
			}
			ord++
		}
	}

	if body := n.ChildByFieldName("body"); body != nil {
		x.classMembers(x.childScope(sym, false), body)
	}
}

func (x *extractor) iface(sc *scope, n *sitter.Node, mods []string) {
	name := x.fieldText(n, "name")
	if name == "" {
		return
	}
	sym := x.declaration(sc, name, mods)
	id := x.insertNode(x.declNode(sym, semantic.InterfaceDeclaration, n, name, x.modifiers(n, mods)))
	x.typeParameters(id, n.ChildByFieldName("type_parameters"))
	ord := 0
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "extends_type_clause" || c.Type() == "extends_clause" {
			x.heritage(id, ord, "extends", c)
			ord++
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		x.typeMembers(x.childScope(sym, false), body)
	}
}

func (x *extractor) typeAlias(sc *scope, n *sitter.Node, mods []string) {
	name := x.fieldText(n, "name")
	if name == "" {
		return
	}
	sym := x.declaration(sc, name, mods)
	id := x.insertNode(x.declNode(sym, semantic.TypeAliasDeclaration, n, name, x.modifiers(n, mods)))
	x.typeParameters(id, n.ChildByFieldName("type_parameters"))
	x.typeNode(id, store.RoleType, 0, n.ChildByFieldName("value"))
}

// enum records an enum and its members. Members without an initializer
// continue numbering from the previous numeric value.
func (x *extractor) enum(sc *scope, n *sitter.Node, mods []string) {
	name := x.fieldText(n, "name")
	if name == "" {
		return
	}
	sym := x.declaration(sc, name, mods)
	x.insertNode(x.declNode(sym, semantic.EnumDeclaration, n, name, x.modifiers(n, mods)))

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	members := x.childScope(sym, false)
	var next int64
	auto := true
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		var member, value string
		switch c.Type() {
		case "property_identifier", "string", "number":
			member = unquote(x.text(c))
		case "enum_assignment":
			member = unquote(x.fieldText(c, "name"))
			value = x.fieldText(c, "value")
		default:
			continue
		}
		switch {
		case value == "" && auto:
			value = strconv.FormatInt(next, 10)
			next++
		case value != "":
			if v, err := strconv.ParseInt(value, 0, 64); err == nil {
				next, auto = v+1, true
			} else {
				auto = false
			}
		}
		msym := x.declare(members, member, member, store.SymbolMember, false)
		node := x.declNode(msym, semantic.EnumMember, c, member, nil)
		node.Text = value
		x.insertNode(node)
	}
}

func (x *extractor) variables(sc *scope, n *sitter.Node, mods []string) {
	var kind string
	for i := 0; i < int(n.ChildCount()); i++ {
		switch t := n.Child(i).Type(); t {
		case "const", "let", "var":
			kind = t
		}
	}
	if kind != "" && kind != "var" {
		mods = appendMod(mods, kind)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue
		}
		x.valueDeclaration(sc, d, x.text(nameNode), d.ChildByFieldName("type"), d.ChildByFieldName("value"), mods)
	}
}

// valueDeclaration records a named value. Unannotated function and class
// expressions become functions and classes; everything else is a variable.
func (x *extractor) valueDeclaration(sc *scope, at *sitter.Node, name string, typ, value *sitter.Node, mods []string) {
	if typ == nil && value != nil {
		switch value.Type() {
		case "arrow_function", "function", "function_expression", "generator_function":
			sym := x.declaration(sc, name, mods)
			node := x.declNode(sym, semantic.FunctionDeclaration, at, name, functionMods(x.modifiers(value, mods)))
			node.HasBody = true
			id := x.insertNode(node)
			x.signatureParts(id, value)
			return
		case "class":
			x.class(sc, value, functionMods(mods), name)
			return
		}
	}

	sym := x.declaration(sc, name, mods)
	node := x.declNode(sym, semantic.VariableDeclaration, at, name, mods)
	if value != nil {
		node.Text = x.text(value)
		if typ == nil {
			node.Inferred = x.infer(value, slices.Contains(mods, "const"))
		}
	}
	id := x.insertNode(node)
	switch {
	case typ != nil:
		x.typeAnnotation(id, store.RoleType, typ)
	case value != nil && value.Type() == "object":
		x.objectLiteralType(id, store.RoleType, value)
	}
}

// functionMods drops variable keywords from a function declared through a
// variable.
func functionMods(mods []string) []string {
	out := mods[:0:0]
	for _, m := range mods {
		if m != "const" && m != "let" {
			out = append(out, m)
		}
	}
	return out
}

// namespace records `namespace A.B { ... }`. Ambient external modules
// (`declare module "x"`) are skipped.
func (x *extractor) namespace(sc *scope, n *sitter.Node, mods []string) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() == "string" {
		return
	}
	body := n.ChildByFieldName("body")
	ambient := sc.ambient || slices.Contains(mods, "declare")
	parts := strings.Split(x.text(nameNode), ".")
	inner := sc
	for i, part := range parts {
		part = strings.TrimSpace(part)
		partMods := mods
		if i > 0 {
			partMods = appendMod(nil, "export")
		}
		sym := x.declaration(inner, part, partMods)
		x.insertNode(x.declNode(sym, semantic.ModuleDeclaration, n, part, partMods))
		inner = x.childScope(sym, ambient)
	}
	if body != nil {
		x.statements(inner, body, false)
	}
}

// memberKey separates static from instance members of the same name.
func memberKey(name string, static bool) string {
	if static {
		return "static " + name
	}
	return name
}

func (x *extractor) memberName(m *sitter.Node) string {
	n := m.ChildByFieldName("name")
	if n == nil {
		n = m.ChildByFieldName("property")
	}
	if n == nil || n.Type() == "computed_property_name" {
		return ""
	}
	return unquote(x.text(n))
}

func (x *extractor) classMembers(ms *scope, body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		name := x.memberName(m)
		if name == "" {
			continue
		}
		static := hasToken(m, "static")
		mods := x.modifiers(m, nil)
		if strings.HasPrefix(name, "#") {
			mods = appendMod(mods, "private")
		}

		switch m.Type() {
		case "method_definition", "method_signature", "abstract_method_signature":
			kind := semantic.MethodDeclaration
			switch {
			case name == "constructor":
				kind = semantic.Constructor
			case hasToken(m, "get"):
				kind = semantic.GetAccessor
			case hasToken(m, "set"):
				kind = semantic.SetAccessor
			}
			sym := x.declare(ms, memberKey(name, static), name, store.SymbolMember, false)
			node := x.declNode(sym, kind, m, name, mods)
			node.HasBody = m.ChildByFieldName("body") != nil
			id := x.insertNode(node)
			x.signatureParts(id, m)
			if kind == semantic.Constructor {
				x.parameterProperties(ms, m.ChildByFieldName("parameters"))
			}
		case "public_field_definition", "field_definition":
			sym := x.declare(ms, memberKey(name, static), name, store.SymbolMember, false)
			node := x.declNode(sym, semantic.PropertyDeclaration, m, name, mods)
			typ, value := m.ChildByFieldName("type"), m.ChildByFieldName("value")
			if value != nil {
				node.Text = x.text(value)
				if typ == nil {
					node.Inferred = x.infer(value, slices.Contains(mods, "readonly"))
				}
			}
			id := x.insertNode(node)
			if typ != nil {
				x.typeAnnotation(id, store.RoleType, typ)
			} else if value != nil && value.Type() == "object" {
				x.objectLiteralType(id, store.RoleType, value)
			}
		}
	}
}

// parameterProperties records constructor parameters declared with an
// accessibility or readonly modifier as properties.
func (x *extractor) parameterProperties(ms *scope, params *sitter.Node) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "required_parameter" && p.Type() != "optional_parameter" {
			continue
		}
		mods := x.modifiers(p, nil)
		if !slices.Contains(mods, "public") && !slices.Contains(mods, "private") && !slices.Contains(mods, "protected") && !slices.Contains(mods, "readonly") {
			continue
		}
		pattern := p.ChildByFieldName("pattern")
		if pattern == nil || pattern.Type() != "identifier" {
			continue
		}
		name := x.text(pattern)
		sym := x.declare(ms, name, name, store.SymbolMember, false)
		id := x.insertNode(x.declNode(sym, semantic.PropertyDeclaration, p, name, mods))
		x.typeAnnotation(id, store.RoleType, p.ChildByFieldName("type"))
	}
}

// typeMembers records the property and method signatures of an interface
// body.
func (x *extractor) typeMembers(ms *scope, body *sitter.Node) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)
		name := x.memberName(m)
		if name == "" {
			continue
		}
		mods := x.modifiers(m, nil)
		switch m.Type() {
		case "property_signature":
			sym := x.declare(ms, name, name, store.SymbolMember, false)
			id := x.insertNode(x.declNode(sym, semantic.PropertySignature, m, name, mods))
			x.typeAnnotation(id, store.RoleType, m.ChildByFieldName("type"))
		case "method_signature":
			sym := x.declare(ms, name, name, store.SymbolMember, false)
			id := x.insertNode(x.declNode(sym, semantic.MethodSignature, m, name, mods))
			x.signatureParts(id, m)
		}
	}
}
