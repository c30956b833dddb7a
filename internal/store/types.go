package store

import "time"

// Symbol kinds.
const (
	SymbolModule      = "module"      // an ES module file
	SymbolExports     = "exports"     // the CommonJS export table of a script
	SymbolDeclaration = "declaration" // a top-level or namespace declaration
	SymbolMember      = "member"      // a class, interface or enum member
	SymbolAlias       = "alias"       // an export under another name
)

// Node roles relative to their parent node.
const (
	RoleDecl      = "decl"
	RoleType      = "type"
	RoleReturn    = "return"
	RoleParam     = "param"
	RoleTypeParam = "typeparam"
	RoleHeritage  = "heritage"
	RoleChild     = "child"
)

type File struct {
	ID          int64
	Path        string
	Language    string
	Hash        string
	Doc         string
	IsScript    bool
	Size        int64
	LastIndexed time.Time
}

type Symbol struct {
	ID       int64
	FileID   int64
	Name     string
	Kind     string
	Exported bool
	Ordinal  int

	// ParentSymbolID is the module, export table, namespace, class or enum
	// owning this symbol.
	ParentSymbolID *int64

	// TargetSymbolID is set for aliases.
	TargetSymbolID *int64
}

// Node is one stored syntactic node. Declaration nodes carry SymbolID;
// their annotations, parameters and operands hang off ParentNodeID.
type Node struct {
	ID           int64
	FileID       int64
	SymbolID     *int64
	ParentNodeID *int64
	Role         string
	Ordinal      int
	Kind         string
	Name         string
	Text         string
	Doc          string
	Modifiers    []string
	HasBody      bool
	Inferred     string
	Line         int
	Col          int
}
