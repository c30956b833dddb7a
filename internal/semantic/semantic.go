// Package semantic defines the contract between the conversion engine and
// the upstream semantic-model provider: symbols, their declaration nodes,
// resolved types, and the Program service that answers questions about them.
package semantic

import "slices"

// Position locates a node in its source file. Line and Column are 1-based.
type Position struct {
	File   string
	Line   int
	Column int
}

// Node is one syntactic occurrence: a declaration of a symbol, a parameter,
// or a type annotation. Providers build these; the engine only reads them.
type Node struct {
	ID   int64
	Kind SyntaxKind
	Name string

	// Text is the source text of type annotations and literal initializers.
	Text string

	// Doc is the raw leading documentation comment, including delimiters.
	Doc string

	Pos       Position
	Modifiers []string

	// HasBody is false for overload signatures and ambient declarations.
	HasBody bool

	// Type is the explicit type annotation, nil when absent.
	Type *Node

	// ReturnType is the annotated return type of function-like nodes.
	ReturnType *Node

	Parameters     []*Node
	TypeParameters []*Node

	// Heritage holds extends / implements clauses; each clause's Children
	// are the referenced types and its Name is "extends" or "implements".
	Heritage []*Node

	// Children are operands of type nodes (array element, union members,
	// tuple elements, type arguments, type literal members). For a type
	// parameter, the single child is its default; Type is its constraint.
	Children []*Node

	// Inferred is the provider's rendering of the initializer type for
	// declarations without an annotation.
	Inferred string
}

// HasModifier reports whether the node carries modifier m ("export",
// "static", "readonly", ...).
func (n *Node) HasModifier(m string) bool {
	if n == nil {
		return false
	}
	return slices.Contains(n.Modifiers, m)
}

// Clause returns the heritage clause with the given name, or nil.
func (n *Node) Clause(name string) *Node {
	if n == nil {
		return nil
	}
	for _, h := range n.Heritage {
		if h.Name == name {
			return h
		}
	}
	return nil
}

// Symbol is an opaque provider-assigned identity for a named entity.
type Symbol struct {
	ID   int64
	Name string
}

// SourceFile is a provider file handle.
type SourceFile struct {
	ID       int64
	FileName string
	Language string
	Doc      string

	// IsScript is set for JavaScript files that use no ES module syntax.
	IsScript bool
}

// TypeFlags classify resolved types.
type TypeFlags uint32

const (
	TypeAny TypeFlags = 1 << iota
	TypeUnknown
	TypeString
	TypeNumber
	TypeBoolean
	TypeBigInt
	TypeESSymbol
	TypeVoid
	TypeUndefined
	TypeNull
	TypeNever
	TypeStringLiteral
	TypeNumberLiteral
	TypeBooleanLiteral
	TypeObject
	TypeArray
	TypeTuple
	TypeUnion
	TypeIntersection
	TypeNonPrimitive

	TypeIntrinsic = TypeAny | TypeUnknown | TypeString | TypeNumber | TypeBoolean |
		TypeBigInt | TypeESSymbol | TypeVoid | TypeUndefined | TypeNull | TypeNever | TypeNonPrimitive
	TypeLiteralFlags = TypeStringLiteral | TypeNumberLiteral | TypeBooleanLiteral
)

// Has reports whether any bit of mask is set.
func (f TypeFlags) Has(mask TypeFlags) bool {
	return f&mask != 0
}

// Type is a resolved type as reported by the provider.
type Type struct {
	Flags TypeFlags

	// Name is the intrinsic name, literal value, or referenced type name.
	Name string

	// Symbol is the declaration symbol for object/reference types.
	Symbol *Symbol

	// TypeArguments are generic arguments; for arrays, the element type.
	TypeArguments []*Type

	// Types are the constituents of union, intersection, and tuple types.
	Types []*Type

	// Origin is the annotation node this type was resolved from, if any.
	Origin *Node
}

// ProgramOptions are the compiler options the engine consults when
// computing the documentation root.
type ProgramOptions struct {
	RootDir string
	BaseURL string
}

// Program is the semantic-model service bound to one conversion pass.
type Program interface {
	Options() ProgramOptions
	RootFileNames() []string
	SourceFile(fileName string) (*SourceFile, bool)

	// ModuleSymbol returns the symbol whose exports make up an ES module.
	// Files without module syntax have none.
	ModuleSymbol(file *SourceFile) (*Symbol, bool)

	// LegacyExportsTable returns the CommonJS export table of a script
	// file (exports.x = ..., module.exports.x = ...).
	LegacyExportsTable(file *SourceFile) (*Symbol, bool)

	// ExportsOfModule lists exported symbols in declaration order.
	ExportsOfModule(module *Symbol) []*Symbol

	Declarations(symbol *Symbol) []*Node
	Members(symbol *Symbol) []*Symbol

	ResolveType(node *Node) *Type
	SynthesizeAnnotation(t *Type) (*Node, bool)
	TypeToString(t *Type) string
}

// ExportedSymbols lists the exports of file: the module symbol's exports,
// the legacy export table for script files, or nothing for global files.
func ExportedSymbols(p Program, file *SourceFile) []*Symbol {
	sym, ok := p.ModuleSymbol(file)
	if !ok && file.IsScript {
		sym, ok = p.LegacyExportsTable(file)
	}
	if !ok {
		return nil
	}
	return p.ExportsOfModule(sym)
}

// Kinds returns the distinct kinds of nodes in first-seen order.
func Kinds(nodes []*Node) []SyntaxKind {
	var kinds []SyntaxKind
	for _, n := range nodes {
		if !slices.Contains(kinds, n.Kind) {
			kinds = append(kinds, n.Kind)
		}
	}
	return kinds
}
