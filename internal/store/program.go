package store

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jward/docmodel/internal/semantic"
)

// maxAliasDepth bounds alias chains so that export cycles terminate.
const maxAliasDepth = 16

// ExportStar is the name of the alias symbol recorded for
// `export * from "./mod"`.
const ExportStar = "*"

// moduleExtensions are tried, in order, when resolving a relative module
// specifier to an indexed file.
var moduleExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs", ".mts", ".cts"}

var numericLiteral = regexp.MustCompile(`^-?(\d[\d_]*(\.\d+)?([eE][+-]?\d+)?|0[xX][0-9a-fA-F]+|0[bB][01]+|0[oO][0-7]+)n?$`)

// Program answers semantic-model questions from an indexed database. Node
// trees are loaded lazily, one file at a time, and cached for the life of
// the Program. It is safe for concurrent use.
type Program struct {
	store  *Store
	opts   semantic.ProgramOptions
	logger *slog.Logger

	files map[string]*File
	byID  map[int64]*File
	roots []string

	mu      sync.Mutex
	trees   map[int64]*fileTree
	symbols map[int64]*Symbol
	lookups map[lookupKey]*semantic.Symbol
}

type fileTree struct {
	bySymbol map[int64][]*semantic.Node
}

type lookupKey struct {
	fileID int64
	name   string
}

// ProgramOption configures a Program.
type ProgramOption func(*Program)

// WithProgramLogger sets the logger used for lookup failures. The default
// discards.
func WithProgramLogger(l *slog.Logger) ProgramOption {
	return func(p *Program) {
		p.logger = l
	}
}

// WithRootFiles restricts RootFileNames to the given paths. By default
// every indexed file is a root.
func WithRootFiles(paths ...string) ProgramOption {
	return func(p *Program) {
		p.roots = make([]string, len(paths))
		for i, path := range paths {
			p.roots[i] = filepath.Clean(path)
		}
	}
}

// NewProgram snapshots the file table of s. Files indexed afterwards are
// not visible to the Program.
func NewProgram(s *Store, opts semantic.ProgramOptions, options ...ProgramOption) (*Program, error) {
	files, err := s.Files()
	if err != nil {
		return nil, fmt.Errorf("new program: %w", err)
	}
	p := &Program{
		store:   s,
		opts:    opts,
		logger:  slog.New(slog.DiscardHandler),
		files:   make(map[string]*File, len(files)),
		byID:    make(map[int64]*File, len(files)),
		trees:   make(map[int64]*fileTree),
		symbols: make(map[int64]*Symbol),
		lookups: make(map[lookupKey]*semantic.Symbol),
	}
	for _, f := range files {
		p.files[f.Path] = f
		p.byID[f.ID] = f
		p.roots = append(p.roots, f.Path)
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

// Compile-time check: *Program satisfies semantic.Program.
var _ semantic.Program = (*Program)(nil)

func (p *Program) Options() semantic.ProgramOptions { return p.opts }
func (p *Program) RootFileNames() []string          { return append([]string(nil), p.roots...) }

func (p *Program) SourceFile(fileName string) (*semantic.SourceFile, bool) {
	f, ok := p.files[filepath.Clean(fileName)]
	if !ok {
		return nil, false
	}
	return &semantic.SourceFile{
		ID:       f.ID,
		FileName: f.Path,
		Language: f.Language,
		Doc:      f.Doc,
		IsScript: f.IsScript,
	}, true
}

func (p *Program) ModuleSymbol(file *semantic.SourceFile) (*semantic.Symbol, bool) {
	if file.IsScript {
		return nil, false
	}
	return p.fileSymbol(file.ID, SymbolModule)
}

func (p *Program) LegacyExportsTable(file *semantic.SourceFile) (*semantic.Symbol, bool) {
	if !file.IsScript {
		return nil, false
	}
	return p.fileSymbol(file.ID, SymbolExports)
}

func (p *Program) fileSymbol(fileID int64, kind string) (*semantic.Symbol, bool) {
	sym, err := p.store.FileSymbol(fileID, kind)
	if err != nil {
		p.logger.Warn("file symbol lookup failed", "file_id", fileID, "kind", kind, "err", err)
		return nil, false
	}
	if sym == nil {
		return nil, false
	}
	p.remember(sym)
	return toSemantic(sym), true
}

// ExportsOfModule lists the exported children of a module or export table.
// Star re-exports are expanded in place, skipping default exports and
// names the module already exports.
func (p *Program) ExportsOfModule(module *semantic.Symbol) []*semantic.Symbol {
	return p.exports(module.ID, map[int64]bool{})
}

func (p *Program) exports(moduleID int64, visited map[int64]bool) []*semantic.Symbol {
	if visited[moduleID] {
		return nil
	}
	visited[moduleID] = true
	children := p.children(moduleID)

	own := make(map[string]bool, len(children))
	for _, c := range children {
		if c.Exported && c.Name != ExportStar {
			own[c.Name] = true
		}
	}

	var out []*semantic.Symbol
	for _, c := range children {
		if !c.Exported {
			continue
		}
		if c.Kind == SymbolAlias && c.Name == ExportStar {
			target, ok := p.starTarget(c)
			if !ok {
				continue
			}
			for _, s := range p.exports(target.ID, visited) {
				if s.Name == "default" || own[s.Name] {
					continue
				}
				own[s.Name] = true
				out = append(out, s)
			}
			continue
		}
		out = append(out, toSemantic(c))
	}
	return out
}

// Members lists class, interface and enum members, and the exported
// declarations of a namespace, in declaration order.
func (p *Program) Members(symbol *semantic.Symbol) []*semantic.Symbol {
	sym, ok := p.resolveAlias(symbol.ID)
	if !ok {
		return nil
	}
	var out []*semantic.Symbol
	for _, c := range p.children(sym.ID) {
		switch {
		case c.Kind == SymbolMember:
			out = append(out, toSemantic(c))
		case c.Kind == SymbolDeclaration && c.Exported:
			out = append(out, toSemantic(c))
		case c.Kind == SymbolAlias && c.Exported && c.Name != ExportStar:
			out = append(out, toSemantic(c))
		}
	}
	return out
}

// Declarations returns the declaration nodes of symbol, following aliases
// to their target.
func (p *Program) Declarations(symbol *semantic.Symbol) []*semantic.Node {
	sym, ok := p.resolveAlias(symbol.ID)
	if !ok {
		return nil
	}
	tree, err := p.tree(sym.FileID)
	if err != nil {
		p.logger.Warn("load declarations failed", "symbol", symbol.Name, "err", err)
		return nil
	}
	return append([]*semantic.Node(nil), tree.bySymbol[sym.ID]...)
}

// ResolveType resolves a type annotation structurally, or the inferred
// initializer type of a declaration without one.
func (p *Program) ResolveType(node *semantic.Node) *semantic.Type {
	if node == nil {
		return nil
	}
	if node.Kind.IsTypeNode() {
		return p.resolveTypeNode(node)
	}
	if node.Inferred != "" {
		return p.resolveInferred(node.Inferred, node.Pos.File)
	}
	return nil
}

func (p *Program) resolveTypeNode(n *semantic.Node) *semantic.Type {
	t := &semantic.Type{Name: n.Text, Origin: n}
	switch {
	case n.Kind.IsKeyword():
		t.Flags = keywordFlags(n.Kind)
		t.Name = n.Kind.Keyword()
	case n.Kind == semantic.ParenthesizedType && len(n.Children) > 0:
		return p.resolveTypeNode(n.Children[0])
	case n.Kind == semantic.TypeReference:
		if n.Name == "Array" && len(n.Children) == 1 {
			t.Flags = semantic.TypeArray
			t.TypeArguments = []*semantic.Type{p.resolveTypeNode(n.Children[0])}
			break
		}
		t.Flags = semantic.TypeObject
		t.Name = n.Name
		t.Symbol = p.lookup(n.Name, n.Pos.File)
		t.TypeArguments = p.resolveAll(n.Children)
	case n.Kind == semantic.ArrayType:
		t.Flags = semantic.TypeArray
		t.TypeArguments = p.resolveAll(n.Children)
	case n.Kind == semantic.TupleType:
		t.Flags = semantic.TypeTuple
		t.Types = p.resolveAll(n.Children)
	case n.Kind == semantic.UnionType:
		t.Flags = semantic.TypeUnion
		t.Types = p.resolveAll(n.Children)
	case n.Kind == semantic.IntersectionType:
		t.Flags = semantic.TypeIntersection
		t.Types = p.resolveAll(n.Children)
	case n.Kind == semantic.LiteralType:
		t.Flags = literalFlags(n.Text)
	default:
		t.Flags = semantic.TypeObject
	}
	return t
}

func (p *Program) resolveAll(nodes []*semantic.Node) []*semantic.Type {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]*semantic.Type, len(nodes))
	for i, n := range nodes {
		out[i] = p.resolveTypeNode(n)
	}
	return out
}

func (p *Program) resolveInferred(text, fileName string) *semantic.Type {
	if k, ok := semantic.KeywordKind(text); ok {
		return &semantic.Type{Flags: keywordFlags(k), Name: text}
	}
	if flags := literalFlags(text); flags != semantic.TypeObject {
		return &semantic.Type{Flags: flags, Name: text}
	}
	return &semantic.Type{Flags: semantic.TypeObject, Name: text, Symbol: p.lookup(text, fileName)}
}

// SynthesizeAnnotation returns the annotation a type was resolved from.
// Inferred types have none.
func (p *Program) SynthesizeAnnotation(t *semantic.Type) (*semantic.Node, bool) {
	if t == nil || t.Origin == nil {
		return nil, false
	}
	return t.Origin, true
}

func (p *Program) TypeToString(t *semantic.Type) string {
	if t == nil {
		return ""
	}
	if t.Origin != nil && t.Origin.Text != "" {
		return t.Origin.Text
	}
	return t.Name
}

// lookup finds the declaration symbol a type name refers to: a declaration
// in the same file first, then any exported declaration in the index.
// Qualified names resolve by their last segment.
func (p *Program) lookup(name, fileName string) *semantic.Symbol {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return nil
	}
	var fileID int64
	if f, ok := p.files[fileName]; ok {
		fileID = f.ID
	}
	key := lookupKey{fileID: fileID, name: name}

	p.mu.Lock()
	cached, seen := p.lookups[key]
	p.mu.Unlock()
	if seen {
		return cached
	}

	syms, err := p.store.SymbolsByName(name)
	if err != nil {
		p.logger.Warn("symbol lookup failed", "name", name, "err", err)
		return nil
	}
	var best *Symbol
	for _, s := range syms {
		if s.Kind != SymbolDeclaration {
			continue
		}
		if s.FileID == fileID {
			best = s
			break
		}
		if best == nil && s.Exported {
			best = s
		}
	}
	var found *semantic.Symbol
	if best != nil {
		p.remember(best)
		found = toSemantic(best)
	}

	p.mu.Lock()
	p.lookups[key] = found
	p.mu.Unlock()
	return found
}

// resolveAlias follows alias symbols to the declaration they name.
func (p *Program) resolveAlias(id int64) (*Symbol, bool) {
	sym, ok := p.symbol(id)
	for depth := 0; ok && sym.Kind == SymbolAlias; depth++ {
		if depth == maxAliasDepth {
			p.logger.Warn("alias chain too deep", "symbol", sym.Name)
			return nil, false
		}
		sym, ok = p.aliasTarget(sym)
	}
	return sym, ok
}

func (p *Program) aliasTarget(alias *Symbol) (*Symbol, bool) {
	if alias.TargetSymbolID != nil {
		return p.symbol(*alias.TargetSymbolID)
	}
	spec, ok := p.aliasSpec(alias)
	if !ok {
		return nil, false
	}
	module, ok := p.moduleOf(alias.FileID, spec.Text)
	if !ok {
		return nil, false
	}
	for _, c := range p.children(module.ID) {
		if c.Exported && c.Name == spec.Name {
			return c, true
		}
	}
	p.logger.Debug("re-exported name not found", "name", spec.Name, "module", spec.Text)
	return nil, false
}

func (p *Program) starTarget(alias *Symbol) (*Symbol, bool) {
	spec, ok := p.aliasSpec(alias)
	if !ok {
		return nil, false
	}
	return p.moduleOf(alias.FileID, spec.Text)
}

// aliasSpec returns the export specifier node of an alias: Name is the
// exported name in the source module and Text its module specifier.
func (p *Program) aliasSpec(alias *Symbol) (*semantic.Node, bool) {
	tree, err := p.tree(alias.FileID)
	if err != nil {
		p.logger.Warn("load alias failed", "symbol", alias.Name, "err", err)
		return nil, false
	}
	nodes := tree.bySymbol[alias.ID]
	if len(nodes) == 0 || nodes[0].Text == "" {
		return nil, false
	}
	return nodes[0], true
}

// moduleOf resolves a relative module specifier against the directory of
// fromFileID and returns the module or export table symbol of the target.
func (p *Program) moduleOf(fromFileID int64, specifier string) (*Symbol, bool) {
	from, ok := p.byID[fromFileID]
	if !ok || !strings.HasPrefix(specifier, ".") {
		return nil, false
	}
	f, ok := p.resolveModuleFile(filepath.Join(filepath.Dir(from.Path), specifier))
	if !ok {
		p.logger.Debug("module not indexed", "specifier", specifier, "from", from.Path)
		return nil, false
	}
	kind := SymbolModule
	if f.IsScript {
		kind = SymbolExports
	}
	sym, err := p.store.FileSymbol(f.ID, kind)
	if err != nil || sym == nil {
		return nil, false
	}
	p.remember(sym)
	return sym, true
}

func (p *Program) resolveModuleFile(base string) (*File, bool) {
	if f, ok := p.files[base]; ok {
		return f, true
	}
	// ESM-style "./x.js" imports of TypeScript sources.
	if ext := filepath.Ext(base); ext == ".js" || ext == ".mjs" || ext == ".cjs" || ext == ".jsx" {
		base = strings.TrimSuffix(base, ext)
	}
	for _, ext := range moduleExtensions {
		if f, ok := p.files[base+ext]; ok {
			return f, true
		}
	}
	for _, ext := range moduleExtensions {
		if f, ok := p.files[filepath.Join(base, "index"+ext)]; ok {
			return f, true
		}
	}
	return nil, false
}

func (p *Program) symbol(id int64) (*Symbol, bool) {
	p.mu.Lock()
	sym, ok := p.symbols[id]
	p.mu.Unlock()
	if ok {
		return sym, true
	}
	sym, err := p.store.SymbolByID(id)
	if err != nil {
		p.logger.Warn("symbol load failed", "id", id, "err", err)
		return nil, false
	}
	if sym == nil {
		return nil, false
	}
	p.remember(sym)
	return sym, true
}

func (p *Program) children(id int64) []*Symbol {
	children, err := p.store.ChildSymbols(id)
	if err != nil {
		p.logger.Warn("child symbols failed", "id", id, "err", err)
		return nil
	}
	for _, c := range children {
		p.remember(c)
	}
	return children
}

func (p *Program) remember(sym *Symbol) {
	p.mu.Lock()
	p.symbols[sym.ID] = sym
	p.mu.Unlock()
}

// tree loads and links every node of a file.
func (p *Program) tree(fileID int64) (*fileTree, error) {
	p.mu.Lock()
	t, ok := p.trees[fileID]
	p.mu.Unlock()
	if ok {
		return t, nil
	}

	f, ok := p.byID[fileID]
	if !ok {
		return nil, fmt.Errorf("file %d not in program", fileID)
	}
	rows, err := p.store.NodesByFile(fileID)
	if err != nil {
		return nil, err
	}
	t = buildTree(f.Path, rows)

	p.mu.Lock()
	defer p.mu.Unlock()
	if existing, ok := p.trees[fileID]; ok {
		return existing, nil
	}
	p.trees[fileID] = t
	return t, nil
}

func buildTree(path string, rows []*Node) *fileTree {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	t := &fileTree{bySymbol: make(map[int64][]*semantic.Node)}
	nodes := make(map[int64]*semantic.Node, len(rows))
	for _, r := range rows {
		kind, _ := semantic.ParseSyntaxKind(r.Kind)
		n := &semantic.Node{
			ID:        r.ID,
			Kind:      kind,
			Name:      r.Name,
			Text:      r.Text,
			Doc:       r.Doc,
			Pos:       semantic.Position{File: path, Line: r.Line, Column: r.Col},
			Modifiers: r.Modifiers,
			HasBody:   r.HasBody,
			Inferred:  r.Inferred,
		}
		nodes[r.ID] = n
		if r.Role == RoleDecl && r.SymbolID != nil {
			t.bySymbol[*r.SymbolID] = append(t.bySymbol[*r.SymbolID], n)
		}
		if r.ParentNodeID == nil {
			continue
		}
		parent, ok := nodes[*r.ParentNodeID]
		if !ok {
			continue
		}
		switch r.Role {
		case RoleType:
			parent.Type = n
		case RoleReturn:
			parent.ReturnType = n
		case RoleParam:
			parent.Parameters = append(parent.Parameters, n)
		case RoleTypeParam:
			parent.TypeParameters = append(parent.TypeParameters, n)
		case RoleHeritage:
			parent.Heritage = append(parent.Heritage, n)
		case RoleChild:
			parent.Children = append(parent.Children, n)
		}
	}
	return t
}

func toSemantic(sym *Symbol) *semantic.Symbol {
	return &semantic.Symbol{ID: sym.ID, Name: sym.Name}
}

func keywordFlags(k semantic.SyntaxKind) semantic.TypeFlags {
	switch k {
	case semantic.AnyKeyword:
		return semantic.TypeAny
	case semantic.UnknownKeyword:
		return semantic.TypeUnknown
	case semantic.StringKeyword:
		return semantic.TypeString
	case semantic.NumberKeyword:
		return semantic.TypeNumber
	case semantic.BooleanKeyword:
		return semantic.TypeBoolean
	case semantic.BigIntKeyword:
		return semantic.TypeBigInt
	case semantic.SymbolKeyword:
		return semantic.TypeESSymbol
	case semantic.ObjectKeyword:
		return semantic.TypeNonPrimitive
	case semantic.VoidKeyword:
		return semantic.TypeVoid
	case semantic.UndefinedKeyword:
		return semantic.TypeUndefined
	case semantic.NullKeyword:
		return semantic.TypeNull
	case semantic.NeverKeyword:
		return semantic.TypeNever
	}
	return semantic.TypeAny
}

// literalFlags classifies literal source text. Anything that is not a
// string, number or boolean literal is treated as an object.
func literalFlags(text string) semantic.TypeFlags {
	switch {
	case len(text) >= 2 && (text[0] == '"' || text[0] == '\'' || text[0] == '`') && text[len(text)-1] == text[0]:
		return semantic.TypeStringLiteral
	case text == "true" || text == "false":
		return semantic.TypeBooleanLiteral
	case numericLiteral.MatchString(text):
		return semantic.TypeNumberLiteral
	}
	return semantic.TypeObject
}
