// Package extract walks TypeScript and JavaScript syntax trees and records
// the declarations they contain as symbols and nodes in a store.DataStore.
package extract

import (
	"context"
	"fmt"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/jward/docmodel/internal/semantic"
	"github.com/jward/docmodel/internal/store"
)

// Result describes a file after extraction.
type Result struct {
	// Doc is the file-level documentation comment, if any.
	Doc string

	// IsScript is set for JavaScript files without ES module syntax.
	IsScript bool

	// Module is set when the file has import or export statements.
	Module bool
}

type extractor struct {
	ds     store.DataStore
	fileID int64
	src    []byte
	err    error

	fileDoc *sitter.Node
	imports map[string]importBinding
	scopes  map[int64]*scope
}

type importBinding struct {
	source   string
	imported string
}

// scope collects the declarations owned by one symbol. Declarations with the
// same key merge into one symbol.
type scope struct {
	parent  *int64
	ambient bool
	symbols map[string]int64
	aliases []alias
	ordinal int
}

type alias struct {
	exported string
	local    string
	source   string
	imported string
	ordinal  int
}

func (sc *scope) next() int {
	n := sc.ordinal
	sc.ordinal++
	return n
}

// Extract parses src as file.Language and records the file's declarations
// in ds. Inserts are issued parents first, so ds may be a BatchedStore.
func Extract(ctx context.Context, ds store.DataStore, file *store.File, src []byte) (*Result, error) {
	lang, ok := GrammarForLanguage(file.Language)
	if !ok {
		return nil, fmt.Errorf("extract %s: unsupported language %q", file.Path, file.Language)
	}
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("extract %s: parse: %w", file.Path, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	x := &extractor{
		ds:      ds,
		fileID:  file.ID,
		src:     src,
		imports: make(map[string]importBinding),
		scopes:  make(map[int64]*scope),
	}
	res := &Result{Module: x.isModule(root)}
	res.IsScript = file.Language == LangJavaScript && !res.Module
	if x.fileDoc = x.fileComment(root); x.fileDoc != nil {
		res.Doc = x.text(x.fileDoc)
	}

	top := &scope{symbols: make(map[string]int64)}
	switch {
	case res.Module:
		id := x.insertSymbol(&store.Symbol{FileID: file.ID, Name: file.Path, Kind: store.SymbolModule})
		top.parent = &id
	case res.IsScript && x.hasCommonJSExports(root):
		id := x.insertSymbol(&store.Symbol{FileID: file.ID, Name: file.Path, Kind: store.SymbolExports})
		top.parent = &id
	}
	x.statements(top, root, res.IsScript && top.parent != nil)

	if x.err != nil {
		return nil, fmt.Errorf("extract %s: %w", file.Path, x.err)
	}
	return res, nil
}

func (x *extractor) isModule(root *sitter.Node) bool {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		switch root.NamedChild(i).Type() {
		case "import_statement", "export_statement":
			return true
		}
	}
	return false
}

func (x *extractor) hasCommonJSExports(root *sitter.Node) bool {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		if _, ok := x.commonJSAssignment(root.NamedChild(i)); ok {
			return true
		}
	}
	return false
}

// fileComment returns the leading doc comment when it documents the file
// rather than the first declaration: it carries @packageDocumentation or
// @module, or is followed by another comment or a blank line.
func (x *extractor) fileComment(root *sitter.Node) *sitter.Node {
	var first *sitter.Node
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		if c.Type() == "hash_bang_line" {
			continue
		}
		first = c
		break
	}
	if first == nil || first.Type() != "comment" || !isDocComment(x.text(first)) {
		return nil
	}
	text := x.text(first)
	if strings.Contains(text, "@packageDocumentation") || strings.Contains(text, "@module") {
		return first
	}
	next := first.NextSibling()
	if next == nil || next.Type() == "comment" || next.StartPoint().Row > first.EndPoint().Row+1 {
		return first
	}
	return nil
}

func (x *extractor) statements(sc *scope, body *sitter.Node, commonJS bool) {
	for i := 0; i < int(body.NamedChildCount()); i++ {
		n := body.NamedChild(i)
		if commonJS {
			if asg, ok := x.commonJSAssignment(n); ok {
				x.commonJSExport(sc, asg)
				continue
			}
		}
		x.statement(sc, n, nil)
	}
	x.flushAliases(sc)
}

func (x *extractor) statement(sc *scope, n *sitter.Node, mods []string) {
	switch n.Type() {
	case "export_statement":
		x.exportStatement(sc, n)
	case "import_statement":
		x.importStatement(n)
	case "ambient_declaration":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			x.statement(sc, n.NamedChild(i), appendMod(mods, "declare"))
		}
	case "expression_statement":
		if c := n.NamedChild(0); c != nil && isNamespace(c) {
			x.namespace(sc, c, mods)
		}
	case "function_declaration", "generator_function_declaration", "function_signature":
		x.function(sc, n, mods, x.fieldText(n, "name"))
	case "class_declaration", "abstract_class_declaration":
		x.class(sc, n, mods, x.fieldText(n, "name"))
	case "interface_declaration":
		x.iface(sc, n, mods)
	case "type_alias_declaration":
		x.typeAlias(sc, n, mods)
	case "enum_declaration":
		x.enum(sc, n, mods)
	case "lexical_declaration", "variable_declaration":
		x.variables(sc, n, mods)
	case "internal_module", "module":
		x.namespace(sc, n, mods)
	}
}

func isNamespace(n *sitter.Node) bool {
	return n.Type() == "internal_module" || n.Type() == "module"
}

// declName returns the declared name of a declaration statement, or "" for
// anonymous declarations.
func (x *extractor) declName(n *sitter.Node) string {
	if n.Type() == "lexical_declaration" || n.Type() == "variable_declaration" {
		return ""
	}
	return x.fieldText(n, "name")
}

func (x *extractor) exportStatement(sc *scope, n *sitter.Node) {
	isDefault := hasToken(n, "default")
	var source string
	if s := n.ChildByFieldName("source"); s != nil {
		source = unquote(x.text(s))
	}

	if decl := n.ChildByFieldName("declaration"); decl != nil {
		if !isDefault {
			x.statement(sc, decl, []string{"export"})
			return
		}
		if name := x.declName(decl); name != "" {
			x.statement(sc, decl, nil)
			sc.aliases = append(sc.aliases, alias{exported: "default", local: name, ordinal: sc.next()})
			return
		}
		x.defaultValue(sc, decl)
		return
	}
	if isDefault {
		if v := n.ChildByFieldName("value"); v != nil {
			x.defaultValue(sc, v)
		}
		return
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "export_clause":
			for j := 0; j < int(c.NamedChildCount()); j++ {
				spec := c.NamedChild(j)
				if spec.Type() != "export_specifier" {
					continue
				}
				name := unquote(x.fieldText(spec, "name"))
				exported := name
				if a := spec.ChildByFieldName("alias"); a != nil {
					exported = unquote(x.text(a))
				}
				a := alias{exported: exported, ordinal: sc.next()}
				if source != "" {
					a.source, a.imported = source, name
				} else {
					a.local = name
				}
				sc.aliases = append(sc.aliases, a)
			}
		case "*":
			if source != "" {
				sc.aliases = append(sc.aliases, alias{
					exported: store.ExportStar, source: source, imported: store.ExportStar, ordinal: sc.next(),
				})
			}
		}
	}
}

// defaultValue records `export default <expression>`.
func (x *extractor) defaultValue(sc *scope, v *sitter.Node) {
	if v.Type() == "identifier" {
		sc.aliases = append(sc.aliases, alias{exported: "default", local: x.text(v), ordinal: sc.next()})
		return
	}
	x.valueDeclaration(sc, v, "default", nil, v, []string{"export", "default"})
}

func (x *extractor) importStatement(n *sitter.Node) {
	s := n.ChildByFieldName("source")
	if s == nil {
		return
	}
	source := unquote(x.text(s))
	for i := 0; i < int(n.NamedChildCount()); i++ {
		clause := n.NamedChild(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.NamedChildCount()); j++ {
			c := clause.NamedChild(j)
			switch c.Type() {
			case "identifier":
				x.imports[x.text(c)] = importBinding{source: source, imported: "default"}
			case "named_imports":
				for k := 0; k < int(c.NamedChildCount()); k++ {
					spec := c.NamedChild(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					name := unquote(x.fieldText(spec, "name"))
					local := name
					if a := spec.ChildByFieldName("alias"); a != nil {
						local = x.text(a)
					}
					x.imports[local] = importBinding{source: source, imported: name}
				}
			}
		}
	}
}

// commonJSAssignment matches `exports.name = value` and
// `module.exports.name = value`, returning the assignment expression.
func (x *extractor) commonJSAssignment(n *sitter.Node) (*sitter.Node, bool) {
	if n.Type() != "expression_statement" {
		return nil, false
	}
	asg := n.NamedChild(0)
	if asg == nil || asg.Type() != "assignment_expression" {
		return nil, false
	}
	left, right := asg.ChildByFieldName("left"), asg.ChildByFieldName("right")
	if left == nil || right == nil || left.Type() != "member_expression" {
		return nil, false
	}
	obj := x.fieldText(left, "object")
	if obj != "exports" && obj != "module.exports" {
		return nil, false
	}
	return asg, true
}

func (x *extractor) commonJSExport(sc *scope, asg *sitter.Node) {
	name := x.fieldText(asg.ChildByFieldName("left"), "property")
	value := asg.ChildByFieldName("right")
	if name == "" {
		return
	}
	if value.Type() == "identifier" {
		sc.aliases = append(sc.aliases, alias{exported: name, local: x.text(value), ordinal: sc.next()})
		return
	}
	x.valueDeclaration(sc, asg, name, nil, value, []string{"export"})
}

// flushAliases records the pending export aliases of a scope. Local aliases
// target a declaration of the scope, or become re-exports of an import.
func (x *extractor) flushAliases(sc *scope) {
	for _, a := range sc.aliases {
		sym := &store.Symbol{
			FileID: x.fileID, Name: a.exported, Kind: store.SymbolAlias, Exported: true,
			Ordinal: a.ordinal, ParentSymbolID: sc.parent,
		}
		source, imported := a.source, a.imported
		if a.local != "" {
			if id, ok := sc.symbols[a.local]; ok {
				sym.TargetSymbolID = &id
			} else if b, ok := x.imports[a.local]; ok {
				source, imported = b.source, b.imported
			} else {
				continue
			}
		}
		id := x.insertSymbol(sym)
		if source != "" {
			x.insertNode(&store.Node{
				FileID: x.fileID, SymbolID: &id, Role: store.RoleDecl, Kind: "ExportSpecifier",
				Name: imported, Text: source,
			})
		}
	}
	sc.aliases = nil
}

// declare returns the symbol for key in sc, creating it on first use.
func (x *extractor) declare(sc *scope, key, name, kind string, exported bool) int64 {
	if id, ok := sc.symbols[key]; ok {
		return id
	}
	id := x.insertSymbol(&store.Symbol{
		FileID: x.fileID, Name: name, Kind: kind, Exported: exported,
		Ordinal: sc.next(), ParentSymbolID: sc.parent,
	})
	sc.symbols[key] = id
	return id
}

func (x *extractor) declaration(sc *scope, name string, mods []string) int64 {
	exported := sc.ambient || slices.Contains(mods, "export")
	return x.declare(sc, name, name, store.SymbolDeclaration, exported)
}

// childScope returns the scope owned by symbol id, shared by every
// declaration that merges into it.
func (x *extractor) childScope(id int64, ambient bool) *scope {
	if sc, ok := x.scopes[id]; ok {
		return sc
	}
	sc := &scope{parent: &id, ambient: ambient, symbols: make(map[string]int64)}
	x.scopes[id] = sc
	return sc
}

func (x *extractor) insertSymbol(sym *store.Symbol) int64 {
	if x.err != nil {
		return 0
	}
	id, err := x.ds.InsertSymbol(sym)
	if err != nil {
		x.err = err
	}
	return id
}

func (x *extractor) insertNode(n *store.Node) int64 {
	if x.err != nil {
		return 0
	}
	id, err := x.ds.InsertNode(n)
	if err != nil {
		x.err = err
	}
	return id
}

// declNode starts the declaration node of a symbol at n.
func (x *extractor) declNode(sym int64, kind semantic.SyntaxKind, n *sitter.Node, name string, mods []string) *store.Node {
	p := n.StartPoint()
	return &store.Node{
		FileID:    x.fileID,
		SymbolID:  &sym,
		Role:      store.RoleDecl,
		Kind:      kind.String(),
		Name:      name,
		Doc:       x.doc(n),
		Modifiers: mods,
		Line:      int(p.Row) + 1,
		Col:       int(p.Column) + 1,
	}
}

// childNode starts a node hanging off parent in the given role.
func (x *extractor) childNode(parent int64, role string, ord int, kind semantic.SyntaxKind, n *sitter.Node) *store.Node {
	p := n.StartPoint()
	return &store.Node{
		FileID:       x.fileID,
		ParentNodeID: &parent,
		Role:         role,
		Ordinal:      ord,
		Kind:         kind.String(),
		Line:         int(p.Row) + 1,
		Col:          int(p.Column) + 1,
	}
}

func (x *extractor) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(x.src)
}

func (x *extractor) fieldText(n *sitter.Node, field string) string {
	return x.text(n.ChildByFieldName(field))
}

// docWrappers are statements whose leading comment documents the
// declaration they contain.
var docWrappers = map[string]bool{
	"export_statement":     true,
	"ambient_declaration":  true,
	"lexical_declaration":  true,
	"variable_declaration": true,
	"expression_statement": true,
}

// doc returns the `/** */` comment immediately preceding n or the
// statement wrapping it.
func (x *extractor) doc(n *sitter.Node) string {
	target := n
	for p := target.Parent(); p != nil && docWrappers[p.Type()]; p = p.Parent() {
		target = p
	}
	prev := target.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	if x.fileDoc != nil && prev.StartByte() == x.fileDoc.StartByte() {
		return ""
	}
	text := x.text(prev)
	if !isDocComment(text) {
		return ""
	}
	return text
}

func isDocComment(text string) bool {
	return strings.HasPrefix(text, "/**") && text != "/**/"
}

// modifierTokens are keyword children copied onto node modifiers.
var modifierTokens = map[string]string{
	"static":   "static",
	"async":    "async",
	"readonly": "readonly",
	"abstract": "abstract",
	"declare":  "declare",
	"const":    "const",
	"?":        "optional",
	"...":      "rest",
}

// modifiers returns base plus the modifier keywords among n's direct
// children.
func (x *extractor) modifiers(n *sitter.Node, base []string) []string {
	mods := slices.Clone(base)
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		var m string
		switch {
		case c.Type() == "accessibility_modifier":
			m = x.text(c)
		case !c.IsNamed():
			m = modifierTokens[c.Type()]
		}
		if m != "" {
			mods = appendMod(mods, m)
		}
	}
	return mods
}

func appendMod(mods []string, m string) []string {
	if slices.Contains(mods, m) {
		return mods
	}
	return append(slices.Clone(mods), m)
}

func hasToken(n *sitter.Node, token string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Type() == token {
			return true
		}
	}
	return false
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'' || s[0] == '`') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
