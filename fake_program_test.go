package docmodel

import (
	"context"
	"path/filepath"

	"github.com/jward/docmodel/internal/semantic"
)

// fakeProgram is an in-memory Program for engine tests.
type fakeProgram struct {
	opts    ProgramOptions
	roots   []string
	files   map[string]*fakeFile
	decls   map[int64][]*Node
	members map[int64][]*Symbol
	exports map[int64][]*Symbol
	types   map[*Node]*SemanticType
	nextID  int64
}

type fakeFile struct {
	file   *SourceFile
	module *Symbol
	legacy *Symbol
}

func newFakeProgram() *fakeProgram {
	return &fakeProgram{
		files:   make(map[string]*fakeFile),
		decls:   make(map[int64][]*Node),
		members: make(map[int64][]*Symbol),
		exports: make(map[int64][]*Symbol),
		types:   make(map[*Node]*SemanticType),
	}
}

func (p *fakeProgram) id() int64 {
	p.nextID++
	return p.nextID
}

// addModule registers an ES module file.
func (p *fakeProgram) addModule(name, doc string) *fakeFile {
	f := &fakeFile{
		file:   &SourceFile{ID: p.id(), FileName: name, Language: "typescript", Doc: doc},
		module: &Symbol{ID: p.id(), Name: name},
	}
	p.files[name] = f
	p.roots = append(p.roots, name)
	return f
}

// addScript registers a CommonJS script file with a legacy export table.
func (p *fakeProgram) addScript(name string) *fakeFile {
	f := &fakeFile{
		file:   &SourceFile{ID: p.id(), FileName: name, Language: "javascript", IsScript: true},
		legacy: &Symbol{ID: p.id(), Name: "exports"},
	}
	p.files[name] = f
	p.roots = append(p.roots, name)
	return f
}

// addGlobal registers a file with no module syntax.
func (p *fakeProgram) addGlobal(name string) *fakeFile {
	f := &fakeFile{file: &SourceFile{ID: p.id(), FileName: name, Language: "typescript"}}
	p.files[name] = f
	p.roots = append(p.roots, name)
	return f
}

func (p *fakeProgram) symbol(name string, decls ...*Node) *Symbol {
	sym := &Symbol{ID: p.id(), Name: name}
	for _, d := range decls {
		if d.Name == "" {
			d.Name = name
		}
	}
	p.decls[sym.ID] = decls
	return sym
}

// export adds a symbol to the file's exports.
func (p *fakeProgram) export(f *fakeFile, name string, decls ...*Node) *Symbol {
	sym := p.symbol(name, decls...)
	owner := f.module
	if owner == nil {
		owner = f.legacy
	}
	p.exports[owner.ID] = append(p.exports[owner.ID], sym)
	return sym
}

// member adds a member symbol to owner.
func (p *fakeProgram) member(owner *Symbol, name string, decls ...*Node) *Symbol {
	sym := p.symbol(name, decls...)
	p.members[owner.ID] = append(p.members[owner.ID], sym)
	return sym
}

func (p *fakeProgram) Options() ProgramOptions { return p.opts }
func (p *fakeProgram) RootFileNames() []string { return p.roots }

func (p *fakeProgram) SourceFile(name string) (*SourceFile, bool) {
	f, ok := p.files[name]
	if !ok {
		return nil, false
	}
	return f.file, true
}

func (p *fakeProgram) find(file *SourceFile) *fakeFile {
	for _, f := range p.files {
		if f.file == file {
			return f
		}
	}
	return nil
}

func (p *fakeProgram) ModuleSymbol(file *SourceFile) (*Symbol, bool) {
	f := p.find(file)
	if f == nil || f.module == nil {
		return nil, false
	}
	return f.module, true
}

func (p *fakeProgram) LegacyExportsTable(file *SourceFile) (*Symbol, bool) {
	f := p.find(file)
	if f == nil || f.legacy == nil {
		return nil, false
	}
	return f.legacy, true
}

func (p *fakeProgram) ExportsOfModule(module *Symbol) []*Symbol { return p.exports[module.ID] }
func (p *fakeProgram) Declarations(symbol *Symbol) []*Node      { return p.decls[symbol.ID] }
func (p *fakeProgram) Members(symbol *Symbol) []*Symbol         { return p.members[symbol.ID] }
func (p *fakeProgram) ResolveType(node *Node) *SemanticType     { return p.types[node] }

func (p *fakeProgram) SynthesizeAnnotation(t *SemanticType) (*Node, bool) {
	if t.Origin == nil {
		return nil, false
	}
	return t.Origin, true
}

func (p *fakeProgram) TypeToString(t *SemanticType) string {
	if t.Name == "" {
		return "<anonymous>"
	}
	return t.Name
}

// Node builders.

func at(file string, line int) semantic.Position {
	return semantic.Position{File: file, Line: line, Column: 1}
}

func fnDecl(file string, line int, doc string, params ...*Node) *Node {
	return &Node{
		Kind:       semantic.FunctionDeclaration,
		Doc:        doc,
		Pos:        at(file, line),
		HasBody:    true,
		Modifiers:  []string{"export"},
		Parameters: params,
		ReturnType: keyword(semantic.VoidKeyword),
	}
}

func param(name string, typ *Node) *Node {
	return &Node{Kind: semantic.Parameter, Name: name, Type: typ}
}

func keyword(k SyntaxKind) *Node {
	return &Node{Kind: k, Text: k.Keyword()}
}

func ref(name string, args ...*Node) *Node {
	return &Node{Kind: semantic.TypeReference, Name: name, Text: name, Children: args}
}

func decl(kind SyntaxKind, file string, line int, doc string) *Node {
	return &Node{Kind: kind, Doc: doc, Pos: at(file, line), HasBody: true}
}

// staticInfo returns a ProjectInfoFunc that records the root it was given.
func staticInfo(name string, gotRoot *string) ProjectInfoFunc {
	return func(_ context.Context, rootDir string, _ ProjectOptions) (ProjectInfo, error) {
		if gotRoot != nil {
			*gotRoot = rootDir
		}
		return ProjectInfo{Name: name, Version: "1.0.0"}, nil
	}
}

func abs(p string) string {
	a, err := filepath.Abs(p)
	if err != nil {
		panic(err)
	}
	return a
}
