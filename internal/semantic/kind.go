package semantic

import "fmt"

// SyntaxKind tags a declaration or type-annotation node. The set is closed;
// converters are registered against these values.
type SyntaxKind int

const (
	KindUnknown SyntaxKind = iota

	// Files and declarations.
	SourceFileKind
	ClassDeclaration
	InterfaceDeclaration
	FunctionDeclaration
	VariableDeclaration
	EnumDeclaration
	EnumMember
	TypeAliasDeclaration
	ModuleDeclaration
	PropertyDeclaration
	PropertySignature
	MethodDeclaration
	MethodSignature
	Constructor
	GetAccessor
	SetAccessor
	Parameter
	TypeParameter
	HeritageClause

	// Type annotations.
	AnyKeyword
	UnknownKeyword
	StringKeyword
	NumberKeyword
	BooleanKeyword
	BigIntKeyword
	SymbolKeyword
	ObjectKeyword
	VoidKeyword
	UndefinedKeyword
	NullKeyword
	NeverKeyword
	TypeReference
	ArrayType
	TupleType
	UnionType
	IntersectionType
	LiteralType
	TypeLiteral
	FunctionType
	ParenthesizedType
	TypeOperator

	kindCount
)

var kindNames = [kindCount]string{
	KindUnknown:          "Unknown",
	SourceFileKind:       "SourceFile",
	ClassDeclaration:     "ClassDeclaration",
	InterfaceDeclaration: "InterfaceDeclaration",
	FunctionDeclaration:  "FunctionDeclaration",
	VariableDeclaration:  "VariableDeclaration",
	EnumDeclaration:      "EnumDeclaration",
	EnumMember:           "EnumMember",
	TypeAliasDeclaration: "TypeAliasDeclaration",
	ModuleDeclaration:    "ModuleDeclaration",
	PropertyDeclaration:  "PropertyDeclaration",
	PropertySignature:    "PropertySignature",
	MethodDeclaration:    "MethodDeclaration",
	MethodSignature:      "MethodSignature",
	Constructor:          "Constructor",
	GetAccessor:          "GetAccessor",
	SetAccessor:          "SetAccessor",
	Parameter:            "Parameter",
	TypeParameter:        "TypeParameter",
	HeritageClause:       "HeritageClause",
	AnyKeyword:           "AnyKeyword",
	UnknownKeyword:       "UnknownKeyword",
	StringKeyword:        "StringKeyword",
	NumberKeyword:        "NumberKeyword",
	BooleanKeyword:       "BooleanKeyword",
	BigIntKeyword:        "BigIntKeyword",
	SymbolKeyword:        "SymbolKeyword",
	ObjectKeyword:        "ObjectKeyword",
	VoidKeyword:          "VoidKeyword",
	UndefinedKeyword:     "UndefinedKeyword",
	NullKeyword:          "NullKeyword",
	NeverKeyword:         "NeverKeyword",
	TypeReference:        "TypeReference",
	ArrayType:            "ArrayType",
	TupleType:            "TupleType",
	UnionType:            "UnionType",
	IntersectionType:     "IntersectionType",
	LiteralType:          "LiteralType",
	TypeLiteral:          "TypeLiteral",
	FunctionType:         "FunctionType",
	ParenthesizedType:    "ParenthesizedType",
	TypeOperator:         "TypeOperator",
}

var kindsByName = func() map[string]SyntaxKind {
	m := make(map[string]SyntaxKind, kindCount)
	for k, name := range kindNames {
		m[name] = SyntaxKind(k)
	}
	return m
}()

func (k SyntaxKind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("SyntaxKind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseSyntaxKind is the inverse of String. Unrecognized names map to
// KindUnknown with ok=false.
func ParseSyntaxKind(name string) (SyntaxKind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// IsTypeNode reports whether k tags a type annotation rather than a
// declaration.
func (k SyntaxKind) IsTypeNode() bool {
	return k >= AnyKeyword && k < kindCount
}

// IsKeyword reports whether k is one of the intrinsic keyword type kinds.
func (k SyntaxKind) IsKeyword() bool {
	return k >= AnyKeyword && k <= NeverKeyword
}

// Keyword returns the source spelling of a keyword kind ("string",
// "number", ...). Empty for non-keyword kinds.
func (k SyntaxKind) Keyword() string {
	switch k {
	case AnyKeyword:
		return "any"
	case UnknownKeyword:
		return "unknown"
	case StringKeyword:
		return "string"
	case NumberKeyword:
		return "number"
	case BooleanKeyword:
		return "boolean"
	case BigIntKeyword:
		return "bigint"
	case SymbolKeyword:
		return "symbol"
	case ObjectKeyword:
		return "object"
	case VoidKeyword:
		return "void"
	case UndefinedKeyword:
		return "undefined"
	case NullKeyword:
		return "null"
	case NeverKeyword:
		return "never"
	}
	return ""
}

// KeywordKind maps a keyword spelling back to its kind.
func KeywordKind(word string) (SyntaxKind, bool) {
	for k := AnyKeyword; k <= NeverKeyword; k++ {
		if k.Keyword() == word {
			return k, true
		}
	}
	return KindUnknown, false
}
