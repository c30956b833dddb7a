package extract

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docmodel/internal/semantic"
	"github.com/jward/docmodel/internal/store"
)

// signatureParts records the type parameters, parameters and return type
// of a function-like node.
func (x *extractor) signatureParts(id int64, n *sitter.Node) {
	x.typeParameters(id, n.ChildByFieldName("type_parameters"))
	if p := n.ChildByFieldName("parameter"); p != nil {
		// Arrow function with a single bare parameter.
		node := x.childNode(id, store.RoleParam, 0, semantic.Parameter, p)
		node.Name = x.text(p)
		x.insertNode(node)
	} else {
		x.parameters(id, n.ChildByFieldName("parameters"))
	}
	x.typeAnnotation(id, store.RoleReturn, n.ChildByFieldName("return_type"))
}

func (x *extractor) typeParameters(parent int64, list *sitter.Node) {
	if list == nil {
		return
	}
	ord := 0
	for i := 0; i < int(list.NamedChildCount()); i++ {
		tp := list.NamedChild(i)
		if tp.Type() != "type_parameter" {
			continue
		}
		node := x.childNode(parent, store.RoleTypeParam, ord, semantic.TypeParameter, tp)
		node.Name = x.fieldText(tp, "name")
		id := x.insertNode(node)
		if c := tp.ChildByFieldName("constraint"); c != nil {
			x.typeNode(id, store.RoleType, 0, c.NamedChild(0))
		}
		if d := tp.ChildByFieldName("value"); d != nil {
			x.typeNode(id, store.RoleChild, 0, d.NamedChild(0))
		}
		ord++
	}
}

func (x *extractor) parameters(parent int64, list *sitter.Node) {
	if list == nil {
		return
	}
	ord := 0
	for i := 0; i < int(list.NamedChildCount()); i++ {
		p := list.NamedChild(i)
		var pattern, typ, value *sitter.Node
		var mods []string
		switch p.Type() {
		case "required_parameter", "optional_parameter":
			pattern, typ, value = p.ChildByFieldName("pattern"), p.ChildByFieldName("type"), p.ChildByFieldName("value")
			mods = x.modifiers(p, nil)
			if p.Type() == "optional_parameter" {
				mods = appendMod(mods, "optional")
			}
		case "assignment_pattern":
			pattern, value = p.ChildByFieldName("left"), p.ChildByFieldName("right")
		case "identifier", "rest_pattern", "object_pattern", "array_pattern":
			pattern = p
		default:
			continue
		}
		name := x.patternName(pattern, &mods)
		if name == "this" {
			continue
		}
		node := x.childNode(parent, store.RoleParam, ord, semantic.Parameter, p)
		node.Name = name
		if value != nil {
			mods = appendMod(mods, "optional")
			node.Text = x.text(value)
			if typ == nil {
				node.Inferred = x.infer(value, false)
			}
		}
		node.Modifiers = mods
		id := x.insertNode(node)
		x.typeAnnotation(id, store.RoleType, typ)
		ord++
	}
}

// patternName names a parameter binding. Destructured parameters get the
// synthetic name __namedParameters.
func (x *extractor) patternName(p *sitter.Node, mods *[]string) string {
	if p == nil {
		return ""
	}
	switch p.Type() {
	case "identifier", "this":
		return x.text(p)
	case "rest_pattern":
		*mods = appendMod(*mods, "rest")
		if p.NamedChildCount() > 0 {
			return x.patternName(p.NamedChild(0), mods)
		}
	}
	return "__namedParameters"
}

// typeAnnotation records an annotation (": T") or a bare type in role.
func (x *extractor) typeAnnotation(parent int64, role string, ann *sitter.Node) {
	if ann == nil {
		return
	}
	if ann.Type() == "type_annotation" {
		ann = ann.NamedChild(0)
	}
	x.typeNode(parent, role, 0, ann)
}

func (x *extractor) typeNode(parent int64, role string, ord int, t *sitter.Node) {
	if t == nil {
		return
	}
	kind, name := x.typeKind(t)
	node := x.childNode(parent, role, ord, kind, t)
	node.Name = name
	node.Text = x.text(t)
	id := x.insertNode(node)

	switch t.Type() {
	case "generic_type":
		if args := t.ChildByFieldName("type_arguments"); args != nil {
			x.typeList(id, args)
		}
	case "array_type", "parenthesized_type", "index_type_query", "readonly_type":
		x.typeNode(id, store.RoleChild, 0, t.NamedChild(0))
	case "union_type", "intersection_type":
		for i, c := range flatten(t, t.Type()) {
			x.typeNode(id, store.RoleChild, i, c)
		}
	case "tuple_type":
		for i := 0; i < int(t.NamedChildCount()); i++ {
			x.typeNode(id, store.RoleChild, i, tupleElement(t.NamedChild(i)))
		}
	case "object_type":
		x.typeLiteralMembers(id, t)
	case "function_type", "constructor_type":
		x.signatureParts(id, t)
	}
}

func (x *extractor) typeList(parent int64, list *sitter.Node) {
	for i := 0; i < int(list.NamedChildCount()); i++ {
		x.typeNode(parent, store.RoleChild, i, list.NamedChild(i))
	}
}

// flatten collects the operands of a left-nested union or intersection.
func flatten(t *sitter.Node, typ string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(t.NamedChildCount()); i++ {
		c := t.NamedChild(i)
		if c.Type() == typ {
			out = append(out, flatten(c, typ)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// tupleElement unwraps labeled, optional and rest tuple members to their
// type.
func tupleElement(n *sitter.Node) *sitter.Node {
	if t := n.ChildByFieldName("type"); t != nil {
		return t
	}
	switch n.Type() {
	case "optional_type", "rest_type":
		if n.NamedChildCount() > 0 {
			return n.NamedChild(0)
		}
	}
	return n
}

func (x *extractor) typeKind(t *sitter.Node) (semantic.SyntaxKind, string) {
	text := x.text(t)
	if k, ok := semantic.KeywordKind(text); ok {
		return k, ""
	}
	switch t.Type() {
	case "type_identifier", "nested_type_identifier", "this_type", "identifier":
		return semantic.TypeReference, text
	case "generic_type":
		return semantic.TypeReference, x.fieldText(t, "name")
	case "array_type":
		return semantic.ArrayType, ""
	case "tuple_type":
		return semantic.TupleType, ""
	case "union_type":
		return semantic.UnionType, ""
	case "intersection_type":
		return semantic.IntersectionType, ""
	case "literal_type":
		return semantic.LiteralType, ""
	case "object_type":
		return semantic.TypeLiteral, ""
	case "function_type":
		return semantic.FunctionType, ""
	case "parenthesized_type":
		return semantic.ParenthesizedType, ""
	case "index_type_query":
		return semantic.TypeOperator, "keyof"
	case "readonly_type":
		return semantic.TypeOperator, "readonly"
	}
	return semantic.KindUnknown, ""
}

// typeLiteralMembers records the members of an inline object type.
func (x *extractor) typeLiteralMembers(parent int64, obj *sitter.Node) {
	ord := 0
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		m := obj.NamedChild(i)
		name := x.memberName(m)
		if name == "" {
			continue
		}
		switch m.Type() {
		case "property_signature":
			node := x.childNode(parent, store.RoleChild, ord, semantic.PropertySignature, m)
			node.Name, node.Doc, node.Modifiers = name, x.doc(m), x.modifiers(m, nil)
			id := x.insertNode(node)
			x.typeAnnotation(id, store.RoleType, m.ChildByFieldName("type"))
		case "method_signature":
			node := x.childNode(parent, store.RoleChild, ord, semantic.MethodSignature, m)
			node.Name, node.Doc, node.Modifiers = name, x.doc(m), x.modifiers(m, nil)
			id := x.insertNode(node)
			x.signatureParts(id, m)
		default:
			continue
		}
		ord++
	}
}

// objectLiteralType records the shape of an object literal initializer as
// an inline object type.
func (x *extractor) objectLiteralType(parent int64, role string, obj *sitter.Node) {
	node := x.childNode(parent, role, 0, semantic.TypeLiteral, obj)
	node.Text = x.text(obj)
	id := x.insertNode(node)

	ord := 0
	for i := 0; i < int(obj.NamedChildCount()); i++ {
		m := obj.NamedChild(i)
		switch m.Type() {
		case "pair":
			key := m.ChildByFieldName("key")
			value := m.ChildByFieldName("value")
			if key == nil || value == nil || key.Type() == "computed_property_name" {
				continue
			}
			name := unquote(x.text(key))
			switch value.Type() {
			case "arrow_function", "function", "function_expression":
				member := x.childNode(id, store.RoleChild, ord, semantic.MethodSignature, m)
				member.Name, member.Doc = name, x.doc(m)
				mid := x.insertNode(member)
				x.signatureParts(mid, value)
			default:
				member := x.childNode(id, store.RoleChild, ord, semantic.PropertySignature, m)
				member.Name, member.Doc, member.Text = name, x.doc(m), x.text(value)
				mid := x.insertNode(member)
				x.inferredType(mid, value)
			}
		case "method_definition":
			member := x.childNode(id, store.RoleChild, ord, semantic.MethodSignature, m)
			member.Name, member.Doc = x.memberName(m), x.doc(m)
			mid := x.insertNode(member)
			x.signatureParts(mid, m)
		case "shorthand_property_identifier":
			member := x.childNode(id, store.RoleChild, ord, semantic.PropertySignature, m)
			member.Name = x.text(m)
			x.insertNode(member)
		default:
			continue
		}
		ord++
	}
}

// inferredType records the widened type of a value as a type node.
func (x *extractor) inferredType(parent int64, value *sitter.Node) {
	if value.Type() == "object" {
		x.objectLiteralType(parent, store.RoleType, value)
		return
	}
	inferred := x.infer(value, false)
	if inferred == "" {
		return
	}
	kind := semantic.TypeReference
	name := inferred
	if k, ok := semantic.KeywordKind(inferred); ok {
		kind, name = k, ""
	}
	node := x.childNode(parent, store.RoleType, 0, kind, value)
	node.Name, node.Text = name, inferred
	x.insertNode(node)
}

// heritage records an extends or implements clause and the types it names.
func (x *extractor) heritage(parent int64, ord int, name string, clause *sitter.Node) {
	node := x.childNode(parent, store.RoleHeritage, ord, semantic.HeritageClause, clause)
	node.Name, node.Text = name, x.text(clause)
	id := x.insertNode(node)

	i := 0
	var last *sitter.Node
	flush := func(args *sitter.Node) {
		if last == nil {
			return
		}
		x.expressionRef(id, store.RoleChild, i, last, args)
		last = nil
		i++
	}
	for j := 0; j < int(clause.NamedChildCount()); j++ {
		c := clause.NamedChild(j)
		switch {
		case c.Type() == "type_arguments":
			flush(c)
		case isTypeNode(c):
			flush(nil)
			x.typeNode(id, store.RoleChild, i, c)
			i++
		default:
			flush(nil)
			last = c
		}
	}
	flush(nil)
}

func isTypeNode(n *sitter.Node) bool {
	switch n.Type() {
	case "type_identifier", "nested_type_identifier", "generic_type", "object_type":
		return true
	}
	return false
}

// expressionRef records a heritage expression such as `Base` or `ns.Base`
// as a type reference.
func (x *extractor) expressionRef(parent int64, role string, ord int, expr, args *sitter.Node) {
	node := x.childNode(parent, role, ord, semantic.TypeReference, expr)
	node.Name = x.text(expr)
	node.Text = node.Name
	if args != nil {
		node.Text += x.text(args)
	}
	id := x.insertNode(node)
	if args != nil {
		x.typeList(id, args)
	}
}

// infer renders the type of an initializer. Const bindings keep literal
// types; other bindings widen them. Unknown shapes infer nothing.
func (x *extractor) infer(value *sitter.Node, literal bool) string {
	text := x.text(value)
	switch value.Type() {
	case "string":
		if literal {
			return text
		}
		return "string"
	case "template_string":
		if literal && !strings.Contains(text, "${") {
			return text
		}
		return "string"
	case "number":
		if literal {
			return text
		}
		return "number"
	case "true", "false":
		if literal {
			return text
		}
		return "boolean"
	case "unary_expression":
		arg := value.ChildByFieldName("argument")
		if arg != nil && arg.Type() == "number" {
			if literal && strings.HasPrefix(text, "-") {
				return text
			}
			return "number"
		}
		if strings.HasPrefix(text, "!") {
			return "boolean"
		}
	case "null":
		return "null"
	case "undefined":
		return "undefined"
	case "new_expression":
		return x.fieldText(value, "constructor")
	case "parenthesized_expression":
		if value.NamedChildCount() > 0 {
			return x.infer(value.NamedChild(0), literal)
		}
	}
	return ""
}
