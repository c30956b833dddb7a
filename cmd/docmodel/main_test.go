package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/docmodel/internal/model"
)

const widgetSource = `/** Greets someone. */
export function greet(name: string): string { return name; }

/** Shapes we can draw. */
export enum Shape { Square, Circle = 4 }

export class Widget {
  /** Current size. */
  size: number = 1;
}
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeProject creates a package with one TypeScript entry under src/.
func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "widgets", "version": "1.4.0"}`)
	writeFile(t, filepath.Join(dir, "README.md"), "# Widgets\n")
	writeFile(t, filepath.Join(dir, "src", "index.ts"), widgetSource)
	return dir
}

// resetFlags restores every flag to its default so commands can run more
// than once in a process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	stdout, stderr = &out, &errOut
	t.Cleanup(func() {
		stdout, stderr = os.Stdout, os.Stderr
	})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

type projectEnvelope struct {
	Command string     `json:"command"`
	Results CLIProject `json:"results"`
}

func childNamed(r CLIReflection, name string) *CLIReflection {
	for i := range r.Children {
		if r.Children[i].Name == name {
			return &r.Children[i]
		}
	}
	return nil
}

func TestValidateFormat(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validateFormat("json"))
	assert.NoError(t, validateFormat("text"))
	err := validateFormat("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "yaml"`)
}

func TestResolvePaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	got, err := resolvePaths([]string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, got)

	_, err = resolvePaths([]string{filepath.Join(dir, "missing")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path not found")
}

func TestToCLIReflection(t *testing.T) {
	t.Parallel()
	fn := model.NewFunction("greet")
	fn.SetFlag(model.FlagExported)
	fn.SetComment(&model.Comment{Summary: "Hi."})
	sig := model.NewSignature("greet")
	p := model.NewParameter("name")
	p.Type = &model.IntrinsicType{Name: "string"}
	sig.AddParameter(p)
	sig.Return = &model.IntrinsicType{Name: "void"}
	fn.AddSignature(sig)

	got := toCLIReflection(fn)
	assert.Equal(t, "greet", got.Name)
	assert.Equal(t, "function", got.Kind)
	assert.Equal(t, []string{"exported"}, got.Flags)
	require.NotNil(t, got.Comment)
	assert.Equal(t, "Hi.", got.Comment.Summary)
	require.Len(t, got.Signatures, 1)
	assert.Equal(t, "void", got.Signatures[0].Returns)
	require.Len(t, got.Signatures[0].Parameters, 1)
	assert.Equal(t, "string", got.Signatures[0].Parameters[0].Type)

	assert.Equal(t, "function greet  // Hi.", reflectionLabel(got))
	assert.Equal(t, "signature greet(name: string): void", reflectionLabel(got.Signatures[0]))
}

func TestToCLIReflection_EmptyCommentOmitted(t *testing.T) {
	t.Parallel()
	v := model.NewVariable("x")
	v.SetComment(&model.Comment{})
	assert.Nil(t, toCLIReflection(v).Comment)
}

func TestFormatIndexSummaryText(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	formatIndexSummaryText(&buf, CLIIndexSummary{
		Database: "/tmp/x.db", Files: 1200, Indexed: 3, Unchanged: 1197, Bytes: 2048, DurationMS: 1500,
	})
	out := buf.String()
	assert.Contains(t, out, "Indexed 1,200 files (2.0 kB) in 1.5s")
	assert.Contains(t, out, "extracted: 3, unchanged: 1197, removed: 0")
	assert.Contains(t, out, "Database: /tmp/x.db")
}

func TestConvertCommand_JSON(t *testing.T) {
	dir := writeProject(t)
	db := filepath.Join(t.TempDir(), "index.db")

	out, err := execute(t, "convert", dir, "--db", db, "--include-version")
	require.NoError(t, err)

	var env projectEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "convert", env.Command)

	proj := env.Results
	assert.Equal(t, "widgets - v1.4.0", proj.Name)
	assert.Equal(t, "project", proj.Kind)
	assert.Equal(t, "1.4.0", proj.Version)
	assert.Equal(t, "# Widgets\n", proj.Readme)

	require.Len(t, proj.Children, 1)
	mod := proj.Children[0]
	assert.Equal(t, "module", mod.Kind)
	assert.Equal(t, "index", mod.Name)

	greet := childNamed(mod, "greet")
	require.NotNil(t, greet)
	assert.Equal(t, "function", greet.Kind)
	require.NotNil(t, greet.Comment)
	assert.Equal(t, "Greets someone.", greet.Comment.Summary)
	require.Len(t, greet.Signatures, 1)
	assert.Equal(t, "string", greet.Signatures[0].Returns)

	shape := childNamed(mod, "Shape")
	require.NotNil(t, shape)
	assert.Equal(t, "enum", shape.Kind)
	circle := childNamed(*shape, "Circle")
	require.NotNil(t, circle)
	assert.Equal(t, "4", circle.Value)

	widget := childNamed(mod, "Widget")
	require.NotNil(t, widget)
	size := childNamed(*widget, "size")
	require.NotNil(t, size)
	assert.Equal(t, "number", size.Type)
}

func TestConvertCommand_Plugin(t *testing.T) {
	dir := writeProject(t)
	db := filepath.Join(t.TempDir(), "index.db")
	plugin := filepath.Join(t.TempDir(), "categorize.risor")
	writeFile(t, plugin, `
if event == "reflection" && reflection["kind"] == "function" {
    assert(len(symbols_by_name(reflection["name"])) == 1, "symbol is indexed")
    add_tag("category", "Functions")
}
`)

	out, err := execute(t, "convert", dir, "--db", db, "--plugin", plugin)
	require.NoError(t, err)

	var env projectEnvelope
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	require.Len(t, env.Results.Children, 1)
	greet := childNamed(env.Results.Children[0], "greet")
	require.NotNil(t, greet)
	require.NotNil(t, greet.Comment)
	assert.Contains(t, greet.Comment.BlockTags, model.Tag{Name: "@category", Text: "Functions"})
}

func TestConvertCommand_FailingPlugin(t *testing.T) {
	dir := writeProject(t)
	plugin := filepath.Join(t.TempDir(), "broken.risor")
	writeFile(t, plugin, `set_flag("sparkly")`)

	_, err := execute(t, "convert", dir, "--db", filepath.Join(t.TempDir(), "index.db"), "--plugin", plugin)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plugin broken")
}

func TestConvertCommand_Text(t *testing.T) {
	dir := writeProject(t)

	out, err := execute(t, "convert", dir, "--db", filepath.Join(t.TempDir(), "index.db"), "--format", "text", "--name", "Gadgets")
	require.NoError(t, err)

	assert.Contains(t, out, "Gadgets (1.4.0)")
	assert.Contains(t, out, "module index")
	assert.Contains(t, out, "function greet  // Greets someone.")
	assert.Contains(t, out, "signature greet(name: string): string")
	assert.Contains(t, out, "enumMember Circle = 4")
}

func TestConvertCommand_ConfigFile(t *testing.T) {
	dir := writeProject(t)
	writeFile(t, filepath.Join(dir, "docmodel.yaml"), "name: FromConfig\nformat: text\nserial: true\n")

	out, err := execute(t, "convert", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "FromConfig (1.4.0)")
	assert.FileExists(t, filepath.Join(dir, ".docmodel", "index.db"))
}

func TestIndexCommand(t *testing.T) {
	dir := writeProject(t)
	db := filepath.Join(t.TempDir(), "index.db")

	out, err := execute(t, "index", dir, "--db", db)
	require.NoError(t, err)

	var env struct {
		Command string          `json:"command"`
		Results CLIIndexSummary `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Equal(t, "index", env.Command)
	assert.Equal(t, db, env.Results.Database)
	assert.Equal(t, 1, env.Results.Files)
	assert.Equal(t, 1, env.Results.Indexed)

	out, err = execute(t, "index", dir, "--db", db, "--format", "text", "--serial")
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 files")
	assert.Contains(t, out, "extracted: 0, unchanged: 1, removed: 0")
}

func TestKindsCommand(t *testing.T) {
	out, err := execute(t, "kinds", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "ClassDeclaration")
	assert.Contains(t, out, "TypeReference")
	assert.Contains(t, out, "Type converter priorities:")

	out, err = execute(t, "kinds")
	require.NoError(t, err)
	var env struct {
		Results CLIKinds `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &env))
	assert.Contains(t, env.Results.Declarations, "FunctionDeclaration")
	assert.NotEmpty(t, env.Results.TypeConverterPriorities)
}

func TestRoot_InvalidFormat(t *testing.T) {
	_, err := execute(t, "kinds", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConvertCommand_MissingPath(t *testing.T) {
	_, err := execute(t, "convert", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
