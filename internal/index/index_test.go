package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docmodel/internal/extract"
	"github.com/jward/docmodel/internal/semantic"
	"github.com/jward/docmodel/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })
	return s
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeProject lays out a small TypeScript project and returns its root.
func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "shapes.ts"), `
/** A shape. */
export interface Shape { area(): number }
export class Square implements Shape {
  constructor(public side: number) {}
  area(): number { return this.side * this.side; }
}
`)
	writeFile(t, filepath.Join(root, "src", "index.ts"), `export * from "./shapes";
export const VERSION = "1.0";
`)
	writeFile(t, filepath.Join(root, "src", "legacy.js"), "exports.answer = 42;\n")
	writeFile(t, filepath.Join(root, "README.md"), "# demo\n")
	return root
}

func exportedNames(t *testing.T, s *store.Store, path string) []string {
	t.Helper()
	p, err := store.NewProgram(s, semantic.ProgramOptions{})
	require.NoError(t, err)
	sf, ok := p.SourceFile(path)
	require.True(t, ok, path)
	var names []string
	for _, sym := range semantic.ExportedSymbols(p, sf) {
		names = append(names, sym.Name)
	}
	return names
}

func TestIndexDirectory(t *testing.T) {
	t.Parallel()
	for _, parallel := range []bool{true, false} {
		s := newTestStore(t)
		root := writeProject(t)
		ix := New(s, WithParallel(parallel), WithWorkers(2))

		res, err := ix.IndexDirectory(context.Background(), root)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Indexed, "parallel=%v", parallel)
		assert.Equal(t, 0, res.Unchanged)
		assert.Positive(t, res.Bytes)
		assert.Equal(t, []string{
			filepath.Join(root, "src", "index.ts"),
			filepath.Join(root, "src", "legacy.js"),
			filepath.Join(root, "src", "shapes.ts"),
		}, res.Files)

		assert.Equal(t, []string{"Shape", "Square", "VERSION"},
			exportedNames(t, s, filepath.Join(root, "src", "index.ts")))
		assert.Equal(t, []string{"answer"},
			exportedNames(t, s, filepath.Join(root, "src", "legacy.js")))

		f, err := s.FileByPath(filepath.Join(root, "src", "legacy.js"))
		require.NoError(t, err)
		require.NotNil(t, f)
		assert.True(t, f.IsScript)
		assert.Equal(t, extract.LangJavaScript, f.Language)
	}
}

func TestIndexFiles_SkipsUnchanged(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	root := writeProject(t)
	ix := New(s)

	_, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)
	before, err := s.Stats()
	require.NoError(t, err)

	res, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Indexed)
	assert.Equal(t, 3, res.Unchanged)
	assert.Len(t, res.Files, 3)

	after, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestIndexFiles_ReindexesChanged(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	root := writeProject(t)
	ix := New(s)
	_, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)

	shapes := writeFile(t, filepath.Join(root, "src", "shapes.ts"), "export type Circle = { r: number };\n")
	res, err := ix.IndexFiles(context.Background(), []string{shapes})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Indexed)

	f, err := s.FileByPath(shapes)
	require.NoError(t, err)
	assert.Equal(t, store.ContentHash([]byte("export type Circle = { r: number };\n")), f.Hash)
	assert.Equal(t, []string{"Circle"}, exportedNames(t, s, shapes))
	assert.Equal(t, []string{"Circle", "VERSION"},
		exportedNames(t, s, filepath.Join(root, "src", "index.ts")))
}

func TestIndexFiles_IgnoresUnsupported(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "notes.txt"), "hello")

	res, err := New(s).IndexFiles(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Empty(t, res.Files)

	f, err := s.FileByPath(path)
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestIndexFiles_MissingFile(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	_, err := New(s).IndexFiles(context.Background(), []string{filepath.Join(t.TempDir(), "gone.ts")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read file")
}

func TestWithLanguages(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	root := writeProject(t)

	res, err := New(s, WithLanguages(extract.LangJavaScript)).IndexDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "src", "legacy.js")}, res.Files)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, st.Files)
}

func TestIndexDirectory_PrunesRemovedFiles(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	root := writeProject(t)
	ix := New(s)
	_, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "src", "legacy.js")))
	res, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Removed)

	f, err := s.FileByPath(filepath.Join(root, "src", "legacy.js"))
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestListFiles_SkipsExcludedDirs(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.ts"), "export const a = 1;")
	for _, dir := range []string{".cache", "node_modules", "vendor"} {
		writeFile(t, filepath.Join(root, dir, "lib.ts"), "export const b = 2;")
	}

	paths, err := New(newTestStore(t)).ListFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "main.ts")}, paths)
}

func TestStale(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ix := New(s)
	assert.True(t, ix.Stale())

	_, err := ix.IndexFiles(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, ix.Stale())

	require.NoError(t, s.SetMetadata(metaExtractorVersion, "0"))
	assert.True(t, ix.Stale())
}

func TestIndexFiles_StaleForcesReextract(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	root := writeProject(t)
	ix := New(s)
	_, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)

	require.NoError(t, s.SetMetadata(metaExtractorVersion, "0"))
	res, err := ix.IndexDirectory(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Indexed)
	assert.Equal(t, 0, res.Unchanged)
}

func TestIndex_MixedEntries(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	root := writeProject(t)
	single := writeFile(t, filepath.Join(t.TempDir(), "extra.ts"), "export function extra() {}\n")

	res, err := New(s).Index(context.Background(), []string{filepath.Join(root, "src"), single})
	require.NoError(t, err)
	assert.Len(t, res.Files, 4)
	assert.Contains(t, res.Files, single)
}
