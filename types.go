package docmodel

import (
	"github.com/jward/docmodel/internal/model"
	"github.com/jward/docmodel/internal/project"
	"github.com/jward/docmodel/internal/semantic"
)

// Public aliases for the reflection model and the semantic-model contract.
// These are Go type aliases (=), so values move between the public API and
// internal packages without conversion.

type Reflection = model.Reflection
type Container = model.Container
type Comment = model.Comment
type SourceReference = model.SourceReference
type ReflectionKind = model.Kind
type ReflectionFlags = model.Flags
type Type = model.Type

type ProjectReflection = model.ProjectReflection
type ModuleReflection = model.ModuleReflection
type ObjectReflection = model.ObjectReflection

type Program = semantic.Program
type ProgramOptions = semantic.ProgramOptions
type SourceFile = semantic.SourceFile
type Symbol = semantic.Symbol
type Node = semantic.Node
type SemanticType = semantic.Type
type SyntaxKind = semantic.SyntaxKind

type ProjectOptions = project.Options
type ProjectInfo = project.Info
