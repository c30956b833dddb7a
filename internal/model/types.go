package model

import (
	"strconv"
	"strings"
)

// Type is an immutable type value attached to reflections.
type Type interface {
	// TypeName discriminates the variant ("intrinsic", "reference", ...).
	TypeName() string
	String() string
}

// IntrinsicType is a keyword type such as string or void.
type IntrinsicType struct {
	Name string
}

func (t *IntrinsicType) TypeName() string { return "intrinsic" }
func (t *IntrinsicType) String() string   { return t.Name }

// Any is the type used when nothing is known.
func Any() *IntrinsicType { return &IntrinsicType{Name: "any"} }

// ReferenceType names a declared type. SymbolID is zero when the target
// could not be resolved.
type ReferenceType struct {
	Name          string
	SymbolID      int64
	TypeArguments []Type
}

func (t *ReferenceType) TypeName() string { return "reference" }

func (t *ReferenceType) String() string {
	if len(t.TypeArguments) == 0 {
		return t.Name
	}
	return t.Name + "<" + join(t.TypeArguments, ", ") + ">"
}

type ArrayType struct {
	Element Type
}

func (t *ArrayType) TypeName() string { return "array" }

func (t *ArrayType) String() string {
	switch t.Element.(type) {
	case *UnionType, *IntersectionType, *FunctionType:
		return "(" + t.Element.String() + ")[]"
	}
	return t.Element.String() + "[]"
}

type UnionType struct {
	Types []Type
}

func (t *UnionType) TypeName() string { return "union" }
func (t *UnionType) String() string   { return join(t.Types, " | ") }

type IntersectionType struct {
	Types []Type
}

func (t *IntersectionType) TypeName() string { return "intersection" }
func (t *IntersectionType) String() string   { return join(t.Types, " & ") }

// LiteralType is a literal value type. Value holds the source spelling,
// quotes included for strings.
type LiteralType struct {
	Value string
}

func (t *LiteralType) TypeName() string { return "literal" }
func (t *LiteralType) String() string   { return t.Value }

type TupleType struct {
	Elements []Type
}

func (t *TupleType) TypeName() string { return "tuple" }
func (t *TupleType) String() string   { return "[" + join(t.Elements, ", ") + "]" }

// Member is a named slot of an object literal or function type.
type Member struct {
	Name     string
	Optional bool
	Rest     bool
	Type     Type
}

func (m Member) String() string {
	var b strings.Builder
	if m.Rest {
		b.WriteString("...")
	}
	b.WriteString(m.Name)
	if m.Optional {
		b.WriteByte('?')
	}
	b.WriteString(": ")
	b.WriteString(m.Type.String())
	return b.String()
}

// ObjectLiteralType is an inline object type rendered structurally.
type ObjectLiteralType struct {
	Members []Member
}

func (t *ObjectLiteralType) TypeName() string { return "objectLiteral" }

func (t *ObjectLiteralType) String() string {
	if len(t.Members) == 0 {
		return "{}"
	}
	parts := make([]string, len(t.Members))
	for i, m := range t.Members {
		parts[i] = m.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// FunctionType is an inline call signature type.
type FunctionType struct {
	Parameters []Member
	Return     Type
}

func (t *FunctionType) TypeName() string { return "function" }

func (t *FunctionType) String() string {
	parts := make([]string, len(t.Parameters))
	for i, p := range t.Parameters {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ", ") + ") => " + t.Return.String()
}

// OperatorType applies keyof, unique, or readonly to a target.
type OperatorType struct {
	Operator string
	Target   Type
}

func (t *OperatorType) TypeName() string { return "typeOperator" }
func (t *OperatorType) String() string   { return t.Operator + " " + t.Target.String() }

// UnknownType carries the provider's rendering of a type no converter
// recognized.
type UnknownType struct {
	Name string
}

func (t *UnknownType) TypeName() string { return "unknown" }
func (t *UnknownType) String() string   { return t.Name }

// QuoteString renders s as a string literal value.
func QuoteString(s string) string {
	return strconv.Quote(s)
}

func join(types []Type, sep string) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = t.String()
	}
	return strings.Join(parts, sep)
}
