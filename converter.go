package docmodel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jward/docmodel/internal/comments"
	"github.com/jward/docmodel/internal/event"
	"github.com/jward/docmodel/internal/model"
	"github.com/jward/docmodel/internal/project"
	"github.com/jward/docmodel/internal/semantic"
)

// ErrConversionInProgress is returned by Convert when another pass on the
// same Converter has not finished.
var ErrConversionInProgress = errors.New("docmodel: conversion already in progress")

// CommentFunc turns the raw documentation comments of a declaration's nodes
// into a Comment. It returns nil when none of them documents anything.
type CommentFunc func(docs []string) *Comment

// ProjectInfoFunc resolves the project identity for a documentation root.
type ProjectInfoFunc func(ctx context.Context, rootDir string, opts ProjectOptions) (ProjectInfo, error)

// Converter turns a semantic Program into a reflection tree. Converters are
// reusable but run one pass at a time.
type Converter struct {
	logger      *slog.Logger
	projectOpts ProjectOptions
	rootDir     string
	projectInfo ProjectInfoFunc
	comments    CommentFunc

	registry registry

	begin             event.Hook[BeginEvent]
	moduleCreated     event.Hook[ModuleCreatedEvent]
	reflectionCreated event.Hook[ReflectionCreatedEvent]
	end               event.Hook[EndEvent]

	// pass state, set for the duration of Convert
	mu      sync.RWMutex
	active  bool
	program Program
	project *ProjectReflection
	root    string
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger for pass diagnostics. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = l
	}
}

// WithProjectOptions sets the name, readme and includeVersion options
// passed to project discovery.
func WithProjectOptions(opts ProjectOptions) Option {
	return func(c *Converter) {
		c.projectOpts = opts
	}
}

// WithRootDir overrides the documentation root. Without it the root is
// taken from the program's BaseURL, then RootDir, then the common
// directory of the entry files.
func WithRootDir(dir string) Option {
	return func(c *Converter) {
		c.rootDir = dir
	}
}

// WithProjectInfo replaces package.json based project discovery.
func WithProjectInfo(fn ProjectInfoFunc) Option {
	return func(c *Converter) {
		c.projectInfo = fn
	}
}

// WithCommentFunc replaces the JSDoc comment parser.
func WithCommentFunc(fn CommentFunc) Option {
	return func(c *Converter) {
		c.comments = fn
	}
}

// New creates a Converter with the built-in declaration, type-node and type
// converters registered.
func New(opts ...Option) *Converter {
	c := &Converter{
		logger:      slog.New(slog.DiscardHandler),
		projectInfo: project.Discover,
		comments:    comments.ForDocs,
	}
	c.registry.init()
	for _, opt := range opts {
		opt(c)
	}
	addDeclarationConverters(c)
	addTypeNodeConverters(c)
	addTypeConverters(c)
	return c
}

// Program returns the program of the running pass. It panics when no
// conversion is in progress.
func (c *Converter) Program() Program {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active {
		panic("docmodel: program may only be accessed while conversion is in progress")
	}
	return c.program
}

// Project returns the project reflection of the running pass. It panics
// when no conversion is in progress.
func (c *Converter) Project() *ProjectReflection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.active || c.project == nil {
		panic("docmodel: project may only be accessed while conversion is in progress")
	}
	return c.project
}

// Logger returns the converter's logger.
func (c *Converter) Logger() *slog.Logger {
	return c.logger
}

func (c *Converter) inPass() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Converter) rootDirOfPass() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.root
}

func (c *Converter) startPass(program Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active {
		return ErrConversionInProgress
	}
	c.active = true
	c.program = program
	return nil
}

func (c *Converter) endPass() {
	c.mu.Lock()
	c.active = false
	c.program = nil
	c.project = nil
	c.root = ""
	c.mu.Unlock()
}

// resolveRootDir picks the documentation root for a pass.
func (c *Converter) resolveRootDir(program Program, entries []string) (string, error) {
	opts := program.Options()
	dir := c.rootDir
	if dir == "" {
		dir = opts.BaseURL
	}
	if dir == "" {
		dir = opts.RootDir
	}
	if dir == "" {
		files := entries
		if len(files) == 0 {
			files = program.RootFileNames()
		}
		dir = commonDirectory(files)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("docmodel: resolve root dir %q: %w", dir, err)
	}
	return abs, nil
}

// Convert runs one conversion pass over entries, in order, and returns the
// project reflection. Each entry becomes a module whose exported symbols
// are converted sequentially.
func (c *Converter) Convert(ctx context.Context, program Program, entries []string) (*ProjectReflection, error) {
	if err := c.startPass(program); err != nil {
		return nil, err
	}
	defer c.endPass()
	start := time.Now()

	rootDir, err := c.resolveRootDir(program, entries)
	if err != nil {
		return nil, err
	}
	info, err := c.projectInfo(ctx, rootDir, c.projectOpts)
	if err != nil {
		return nil, fmt.Errorf("docmodel: discover project info: %w", err)
	}

	proj := model.NewProject(info.Name)
	proj.Readme = info.Readme
	proj.Version = info.Version

	c.mu.Lock()
	c.project = proj
	c.root = rootDir
	c.mu.Unlock()

	if err := c.begin.Emit(ctx, BeginEvent{Project: proj, Program: program}); err != nil {
		return nil, fmt.Errorf("docmodel: begin listener: %w", err)
	}

	root := Context{program: program, container: proj, converter: c}
	for _, entry := range entries {
		if err := c.convertEntry(ctx, root, rootDir, entry); err != nil {
			return nil, err
		}
	}

	if err := c.end.Emit(ctx, EndEvent{Project: proj}); err != nil {
		return nil, fmt.Errorf("docmodel: end listener: %w", err)
	}
	c.logger.DebugContext(ctx, "[Perf] conversion finished", "modules", len(proj.Children()), "duration", time.Since(start))
	return proj, nil
}

func (c *Converter) convertEntry(ctx context.Context, root Context, rootDir, entry string) error {
	entryStart := time.Now()
	c.logger.DebugContext(ctx, "first pass", "entry", entry)

	program := root.Program()
	file, ok := program.SourceFile(entry)
	if !ok {
		c.logger.DebugContext(ctx, "no source file for entry point", "entry", entry)
		return nil
	}

	name := moduleName(rootDir, file.FileName)
	module := model.NewModule(name)
	if cm := c.comments([]string{file.Doc}); cm != nil {
		module.SetComment(cm)
	}
	module.AddSource(SourceReference{FileName: relativeSource(rootDir, file.FileName), Line: 1, Column: 1})
	root.Container().AddChild(module)

	if err := c.moduleCreated.Emit(ctx, ModuleCreatedEvent{Module: module, File: file}); err != nil {
		return fmt.Errorf("docmodel: module %q: moduleCreated listener: %w", name, err)
	}

	moduleCtx := root.WithContainer(module)
	for _, sym := range semantic.ExportedSymbols(program, file) {
		if err := c.ConvertSymbol(ctx, sym, moduleCtx); err != nil {
			return fmt.Errorf("docmodel: module %q: %w", name, err)
		}
	}

	c.logger.DebugContext(ctx, "[Perf] converted module", "module", name, "duration", time.Since(entryStart))
	return nil
}

type converted struct {
	reflection Reflection
	nodes      []*Node
}

// ConvertSymbol converts symbol into one reflection per surviving
// declaration kind and attaches them to cc's container. Kinds are converted
// concurrently; attachment and reflectionCreated events follow the merged
// kind order once all converters have returned.
func (c *Converter) ConvertSymbol(ctx context.Context, symbol *Symbol, cc Context) error {
	program := c.Program()
	c.logger.DebugContext(ctx, "converting symbol", "symbol", symbol.Name)

	decls := program.Declarations(symbol)
	kinds := MergeKinds(semantic.Kinds(decls))

	results := make([]converted, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		conv, ok := c.registry.declaration(kind)
		if !ok {
			c.logger.DebugContext(ctx, "missing converter", "symbol", symbol.Name, "kind", kind.String())
			continue
		}
		nodes := declarationsFor(kind, decls)
		g.Go(func() error {
			refl, err := conv(gctx, cc, symbol, nodes)
			if err != nil {
				return fmt.Errorf("docmodel: convert symbol %q (%s): %w", symbol.Name, kind, err)
			}
			results[i] = converted{reflection: refl, nodes: nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		if r.reflection == nil {
			continue
		}
		c.decorate(r.reflection, r.nodes)
		cc.Container().AddChild(r.reflection)
		if err := c.reflectionCreated.Emit(ctx, ReflectionCreatedEvent{
			Reflection: r.reflection,
			Symbol:     symbol,
			Nodes:      r.nodes,
		}); err != nil {
			return fmt.Errorf("docmodel: symbol %q: reflectionCreated listener: %w", symbol.Name, err)
		}
	}
	return nil
}

// decorate sets the comment and source references derived from nodes.
func (c *Converter) decorate(r Reflection, nodes []*Node) {
	if cm := c.commentFor(nodes); cm != nil {
		r.SetComment(cm)
	}
	root := c.rootDirOfPass()
	for _, n := range nodes {
		if n.Pos.File == "" {
			continue
		}
		r.AddSource(SourceReference{
			FileName: relativeSource(root, n.Pos.File),
			Line:     n.Pos.Line,
			Column:   n.Pos.Column,
		})
	}
}

func (c *Converter) commentFor(nodes []*Node) *Comment {
	docs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, n.Doc)
	}
	return c.comments(docs)
}
