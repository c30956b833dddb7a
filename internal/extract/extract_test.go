package extract

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docmodel/internal/semantic"
	"github.com/jward/docmodel/internal/store"
)

type testEnv struct {
	t     *testing.T
	store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return &testEnv{t: t, store: s}
}

// add extracts src as path through a batch, the way the indexer does.
func (e *testEnv) add(path, src string) *Result {
	e.t.Helper()
	lang, ok := LanguageForFile(path)
	require.True(e.t, ok, "language for %s", path)
	f := &store.File{Path: path, Language: lang}
	_, err := e.store.InsertFile(f)
	require.NoError(e.t, err)

	batch := store.NewBatchedStore()
	res, err := Extract(context.Background(), batch, f, []byte(src))
	require.NoError(e.t, err)
	require.NoError(e.t, e.store.CommitBatch(batch))

	f.Doc, f.IsScript = res.Doc, res.IsScript
	require.NoError(e.t, e.store.UpdateFile(f))
	return res
}

func (e *testEnv) program() *store.Program {
	e.t.Helper()
	p, err := store.NewProgram(e.store, semantic.ProgramOptions{})
	require.NoError(e.t, err)
	return p
}

// exports returns the exported symbols of path by name, in order.
func exports(t *testing.T, p *store.Program, path string) ([]string, map[string]*semantic.Symbol) {
	t.Helper()
	sf, ok := p.SourceFile(path)
	require.True(t, ok, "source file %s", path)
	var names []string
	byName := make(map[string]*semantic.Symbol)
	for _, s := range semantic.ExportedSymbols(p, sf) {
		names = append(names, s.Name)
		byName[s.Name] = s
	}
	return names, byName
}

func members(p *store.Program, sym *semantic.Symbol) map[string][]*semantic.Node {
	out := make(map[string][]*semantic.Node)
	for _, m := range p.Members(sym) {
		out[m.Name] = p.Declarations(m)
	}
	return out
}

func TestLanguageForFile(t *testing.T) {
	t.Parallel()
	for path, want := range map[string]string{
		"a.ts": LangTypeScript, "a.d.ts": LangTypeScript, "a.mts": LangTypeScript,
		"a.tsx": LangTSX, "a.js": LangJavaScript, "a.cjs": LangJavaScript,
	} {
		got, ok := LanguageForFile(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := LanguageForFile("a.go")
	assert.False(t, ok)
	assert.Equal(t, []string{LangJavaScript, LangTSX, LangTypeScript}, Languages())
}

func TestExtract_Function(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	res := env.add("/src/greet.ts", `
/** Greets someone. */
export function greet(name: string, times = 1, ...rest: number[]): string {
  return name;
}

function helper() {}
`)
	assert.True(t, res.Module)
	assert.False(t, res.IsScript)

	p := env.program()
	names, syms := exports(t, p, "/src/greet.ts")
	assert.Equal(t, []string{"greet"}, names)

	decls := p.Declarations(syms["greet"])
	require.Len(t, decls, 1)
	fn := decls[0]
	assert.Equal(t, semantic.FunctionDeclaration, fn.Kind)
	assert.Equal(t, "/** Greets someone. */", fn.Doc)
	assert.True(t, fn.HasModifier("export"))
	assert.True(t, fn.HasBody)
	assert.Equal(t, 3, fn.Pos.Line)

	require.Len(t, fn.Parameters, 3)
	assert.Equal(t, "name", fn.Parameters[0].Name)
	require.NotNil(t, fn.Parameters[0].Type)
	assert.Equal(t, semantic.StringKeyword, fn.Parameters[0].Type.Kind)

	times := fn.Parameters[1]
	assert.Equal(t, "1", times.Text)
	assert.Equal(t, "number", times.Inferred)
	assert.True(t, times.HasModifier("optional"))

	rest := fn.Parameters[2]
	assert.Equal(t, "rest", rest.Name)
	assert.True(t, rest.HasModifier("rest"))
	require.NotNil(t, rest.Type)
	assert.Equal(t, semantic.ArrayType, rest.Type.Kind)

	require.NotNil(t, fn.ReturnType)
	assert.Equal(t, semantic.StringKeyword, fn.ReturnType.Kind)
}

func TestExtract_Overloads(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/parse.ts", `
export function parse(x: string): number;
export function parse(x: number): number;
export function parse(x: any): number { return 0; }
`)
	p := env.program()
	_, syms := exports(t, p, "/src/parse.ts")
	decls := p.Declarations(syms["parse"])
	require.Len(t, decls, 3)
	assert.False(t, decls[0].HasBody)
	assert.False(t, decls[1].HasBody)
	assert.True(t, decls[2].HasBody)
}

func TestExtract_Class(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/shape.ts", `
export interface Named { name: string }

/** A circle. */
export class Circle<T = number> extends Shape<T> implements Named {
  static count = 0;
  name: string = "circle";
  #secret = 1;

  constructor(private readonly radius: number) { super(); }

  /** The area. */
  area(): number { return 0; }

  get size(): number { return this.radius; }
  set size(v: number) {}
}
`)
	p := env.program()
	names, syms := exports(t, p, "/src/shape.ts")
	assert.Equal(t, []string{"Named", "Circle"}, names)

	decls := p.Declarations(syms["Circle"])
	require.Len(t, decls, 1)
	cls := decls[0]
	assert.Equal(t, semantic.ClassDeclaration, cls.Kind)
	assert.Equal(t, "/** A circle. */", cls.Doc)
	require.Len(t, cls.TypeParameters, 1)
	assert.Equal(t, "T", cls.TypeParameters[0].Name)
	require.Len(t, cls.TypeParameters[0].Children, 1)
	assert.Equal(t, semantic.NumberKeyword, cls.TypeParameters[0].Children[0].Kind)

	ext := cls.Clause("extends")
	require.NotNil(t, ext)
	require.Len(t, ext.Children, 1)
	assert.Equal(t, "Shape", ext.Children[0].Name)
	assert.Len(t, ext.Children[0].Children, 1)
	impl := cls.Clause("implements")
	require.NotNil(t, impl)
	require.Len(t, impl.Children, 1)
	assert.Equal(t, "Named", impl.Children[0].Name)

	m := members(p, syms["Circle"])
	require.Len(t, m["count"], 1)
	assert.True(t, m["count"][0].HasModifier("static"))
	assert.Equal(t, "number", m["count"][0].Inferred)

	require.Len(t, m["name"], 1)
	assert.Equal(t, semantic.PropertyDeclaration, m["name"][0].Kind)
	assert.Equal(t, `"circle"`, m["name"][0].Text)

	require.Len(t, m["#secret"], 1)
	assert.True(t, m["#secret"][0].HasModifier("private"))

	require.Len(t, m["constructor"], 1)
	assert.Equal(t, semantic.Constructor, m["constructor"][0].Kind)

	// Parameter property.
	require.Len(t, m["radius"], 1)
	assert.Equal(t, semantic.PropertyDeclaration, m["radius"][0].Kind)
	assert.True(t, m["radius"][0].HasModifier("private"))
	assert.True(t, m["radius"][0].HasModifier("readonly"))

	require.Len(t, m["area"], 1)
	assert.Equal(t, "/** The area. */", m["area"][0].Doc)

	require.Len(t, m["size"], 2)
	assert.Equal(t, semantic.GetAccessor, m["size"][0].Kind)
	assert.Equal(t, semantic.SetAccessor, m["size"][1].Kind)
}

func TestExtract_ClassInterfaceMerge(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/merge.ts", `
export class Box { a = 1; }
export interface Box { b: string; }
`)
	p := env.program()
	names, syms := exports(t, p, "/src/merge.ts")
	assert.Equal(t, []string{"Box"}, names)
	decls := p.Declarations(syms["Box"])
	assert.Equal(t, []semantic.SyntaxKind{semantic.ClassDeclaration, semantic.InterfaceDeclaration}, semantic.Kinds(decls))
	m := members(p, syms["Box"])
	assert.Contains(t, m, "a")
	assert.Contains(t, m, "b")
}

func TestExtract_Interface(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/opts.ts", `
export interface Options extends Base, Other<string> {
  /** Port to bind. */
  port?: number;
  readonly host: string;
  mode: "dev" | "prod" | "test";
  start(cb: () => void): Promise<void>;
}
`)
	p := env.program()
	_, syms := exports(t, p, "/src/opts.ts")
	decls := p.Declarations(syms["Options"])
	require.Len(t, decls, 1)
	ext := decls[0].Clause("extends")
	require.NotNil(t, ext)
	require.Len(t, ext.Children, 2)
	assert.Equal(t, "Base", ext.Children[0].Name)
	assert.Equal(t, "Other", ext.Children[1].Name)

	m := members(p, syms["Options"])
	port := m["port"][0]
	assert.Equal(t, semantic.PropertySignature, port.Kind)
	assert.True(t, port.HasModifier("optional"))
	assert.Equal(t, "/** Port to bind. */", port.Doc)

	assert.True(t, m["host"][0].HasModifier("readonly"))

	mode := m["mode"][0].Type
	require.NotNil(t, mode)
	assert.Equal(t, semantic.UnionType, mode.Kind)
	require.Len(t, mode.Children, 3)
	assert.Equal(t, semantic.LiteralType, mode.Children[2].Kind)
	assert.Equal(t, `"test"`, mode.Children[2].Text)

	start := m["start"][0]
	assert.Equal(t, semantic.MethodSignature, start.Kind)
	require.Len(t, start.Parameters, 1)
	assert.Equal(t, semantic.FunctionType, start.Parameters[0].Type.Kind)
	require.NotNil(t, start.ReturnType)
	assert.Equal(t, "Promise", start.ReturnType.Name)
	require.Len(t, start.ReturnType.Children, 1)
	assert.Equal(t, semantic.VoidKeyword, start.ReturnType.Children[0].Kind)
}

func TestExtract_EnumValues(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/color.ts", `
export enum Color { Red, Green = 5, Blue, Named = "n" }
`)
	p := env.program()
	_, syms := exports(t, p, "/src/color.ts")
	var got []string
	for _, m := range p.Members(syms["Color"]) {
		decls := p.Declarations(m)
		require.Len(t, decls, 1)
		assert.Equal(t, semantic.EnumMember, decls[0].Kind)
		got = append(got, m.Name+"="+decls[0].Text)
	}
	assert.Equal(t, []string{"Red=0", "Green=5", "Blue=6", `Named="n"`}, got)
}

func TestExtract_Variables(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/vars.ts", `
export const name = "app";
export let count = 3;
export const typed: Map<string, number[]> = new Map();
export const config = { port: 8080, host: "localhost", nested: { on: true } };
export const add = (a: number, b: number): number => a + b;
export const made = new Widget();
`)
	p := env.program()
	names, syms := exports(t, p, "/src/vars.ts")
	assert.Equal(t, []string{"name", "count", "typed", "config", "add", "made"}, names)

	name := p.Declarations(syms["name"])[0]
	assert.Equal(t, semantic.VariableDeclaration, name.Kind)
	assert.True(t, name.HasModifier("const"))
	assert.Equal(t, `"app"`, name.Inferred)

	count := p.Declarations(syms["count"])[0]
	assert.True(t, count.HasModifier("let"))
	assert.Equal(t, "number", count.Inferred)

	typed := p.Declarations(syms["typed"])[0]
	require.NotNil(t, typed.Type)
	assert.Equal(t, semantic.TypeReference, typed.Type.Kind)
	assert.Equal(t, "Map", typed.Type.Name)
	require.Len(t, typed.Type.Children, 2)
	assert.Equal(t, semantic.ArrayType, typed.Type.Children[1].Kind)
	assert.Empty(t, typed.Inferred)

	config := p.Declarations(syms["config"])[0]
	require.NotNil(t, config.Type)
	assert.Equal(t, semantic.TypeLiteral, config.Type.Kind)
	require.Len(t, config.Type.Children, 3)
	port := config.Type.Children[0]
	assert.Equal(t, "port", port.Name)
	require.NotNil(t, port.Type)
	assert.Equal(t, semantic.NumberKeyword, port.Type.Kind)
	nested := config.Type.Children[2]
	require.NotNil(t, nested.Type)
	assert.Equal(t, semantic.TypeLiteral, nested.Type.Kind)

	add := p.Declarations(syms["add"])[0]
	assert.Equal(t, semantic.FunctionDeclaration, add.Kind)
	assert.False(t, add.HasModifier("const"))
	require.Len(t, add.Parameters, 2)
	require.NotNil(t, add.ReturnType)

	made := p.Declarations(syms["made"])[0]
	assert.Equal(t, "Widget", made.Inferred)
}

func TestExtract_ExportForms(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/lib.ts", `
export function one() {}
export const two = 2;
`)
	env.add("/src/index.ts", `
import { two as deux } from "./lib";

function local() {}
class Hidden {}

export { local, local as alias, deux };
export { one } from "./lib";
export * from "./lib";
export default Hidden;
`)
	p := env.program()
	names, syms := exports(t, p, "/src/index.ts")
	assert.Equal(t, []string{"local", "alias", "deux", "one", "two", "default"}, names)

	for name, want := range map[string]string{
		"local": "local", "alias": "local", "deux": "two", "one": "one", "default": "Hidden", "two": "two",
	} {
		decls := p.Declarations(syms[name])
		require.NotEmpty(t, decls, name)
		assert.Equal(t, want, decls[0].Name, name)
	}
}

func TestExtract_DefaultDeclarations(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/a.ts", `export default function run() {}`)
	env.add("/src/b.ts", `export default { answer: 42 };`)

	p := env.program()
	names, syms := exports(t, p, "/src/a.ts")
	assert.Equal(t, []string{"default"}, names)
	decls := p.Declarations(syms["default"])
	require.Len(t, decls, 1)
	assert.Equal(t, semantic.FunctionDeclaration, decls[0].Kind)
	assert.Equal(t, "run", decls[0].Name)

	names, syms = exports(t, p, "/src/b.ts")
	assert.Equal(t, []string{"default"}, names)
	decls = p.Declarations(syms["default"])
	require.Len(t, decls, 1)
	assert.Equal(t, semantic.VariableDeclaration, decls[0].Kind)
	require.NotNil(t, decls[0].Type)
	assert.Equal(t, semantic.TypeLiteral, decls[0].Type.Kind)
}

func TestExtract_Namespace(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.add("/src/ns.ts", `
export namespace Outer.Inner {
  export const visible = 1;
  const hidden = 2;
}
export function merged() {}
export namespace merged { export const extra = true; }
`)
	p := env.program()
	names, syms := exports(t, p, "/src/ns.ts")
	assert.Equal(t, []string{"Outer", "merged"}, names)

	outer := p.Members(syms["Outer"])
	require.Len(t, outer, 1)
	assert.Equal(t, "Inner", outer[0].Name)
	inner := p.Members(outer[0])
	require.Len(t, inner, 1)
	assert.Equal(t, "visible", inner[0].Name)

	decls := p.Declarations(syms["merged"])
	assert.Equal(t, []semantic.SyntaxKind{semantic.FunctionDeclaration, semantic.ModuleDeclaration}, semantic.Kinds(decls))
	extra := p.Members(syms["merged"])
	require.Len(t, extra, 1)
	assert.Equal(t, "extra", extra[0].Name)
}

func TestExtract_CommonJS(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	res := env.add("/src/legacy.js", `
function helper() {}
/** The answer. */
exports.answer = 42;
module.exports.greet = function (name) {};
exports.help = helper;
`)
	assert.True(t, res.IsScript)
	assert.False(t, res.Module)

	p := env.program()
	names, syms := exports(t, p, "/src/legacy.js")
	assert.Equal(t, []string{"answer", "greet", "help"}, names)

	answer := p.Declarations(syms["answer"])[0]
	assert.Equal(t, semantic.VariableDeclaration, answer.Kind)
	assert.Equal(t, "/** The answer. */", answer.Doc)
	greet := p.Declarations(syms["greet"])[0]
	assert.Equal(t, semantic.FunctionDeclaration, greet.Kind)
	require.Len(t, greet.Parameters, 1)
	assert.Equal(t, "helper", p.Declarations(syms["help"])[0].Name)
}

func TestExtract_GlobalFile(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	res := env.add("/src/globals.ts", `declare const VERSION: string;
interface Window { app: string }
`)
	assert.False(t, res.Module)
	assert.False(t, res.IsScript)

	p := env.program()
	names, _ := exports(t, p, "/src/globals.ts")
	assert.Empty(t, names)

	// Global declarations still resolve as type references.
	ref := p.ResolveType(&semantic.Node{Kind: semantic.TypeReference, Name: "Window", Pos: semantic.Position{File: "/src/globals.ts"}})
	require.NotNil(t, ref.Symbol)
	assert.Equal(t, "Window", ref.Symbol.Name)
}

func TestExtract_FileComment(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	res := env.add("/src/documented.ts", `/**
 * Utilities for shapes.
 * @packageDocumentation
 */
/** Attached to the function. */
export function f() {}
`)
	assert.Contains(t, res.Doc, "Utilities for shapes.")

	res = env.add("/src/gap.ts", `/** File level. */

export const x = 1;
`)
	assert.Equal(t, "/** File level. */", res.Doc)

	res = env.add("/src/attached.ts", `/** Only the function. */
export function g() {}
`)
	assert.Empty(t, res.Doc)

	p := env.program()
	_, syms := exports(t, p, "/src/documented.ts")
	assert.Equal(t, "/** Attached to the function. */", p.Declarations(syms["f"])[0].Doc)
	_, syms = exports(t, p, "/src/gap.ts")
	assert.Empty(t, p.Declarations(syms["x"])[0].Doc)
	_, syms = exports(t, p, "/src/attached.ts")
	assert.Equal(t, "/** Only the function. */", p.Declarations(syms["g"])[0].Doc)
}

func TestExtract_UnsupportedLanguage(t *testing.T) {
	t.Parallel()
	_, err := Extract(context.Background(), store.NewBatchedStore(), &store.File{Path: "/a.go", Language: "go"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}
