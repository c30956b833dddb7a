// Package docmodel builds a documentation model from a resolved semantic
// model of a TypeScript or JavaScript program. It walks the exported
// symbols of each entry file and produces a reflection tree:
//
//	project
//	└── module (one per entry file)
//	    └── class, interface, function, variable, enum, namespace, ...
//	        └── members, signatures, parameters
//
// with type values attached to every typed reflection.
//
// # Conversion
//
// A [Converter] holds three registries that drive dispatch:
//
//   - declaration converters, keyed by [SyntaxKind], build one reflection
//     per declaration kind of a symbol;
//   - type-node converters, keyed by the kind of a type annotation;
//   - an ordered list of predicate-based type converters for types that
//     have no annotation. The first matching converter wins.
//
// Built-in converters are registered by [New]. Registering a kind twice
// panics.
//
// Before dispatch, the kinds of a symbol are merged: a class absorbs
// same-named interface declarations and a getter absorbs its setter, so
// each yields a single reflection (see [MergeKinds]).
//
// # Usage
//
//	conv := docmodel.New(docmodel.WithLogger(logger))
//	conv.OnReflectionCreated(func(ctx context.Context, e docmodel.ReflectionCreatedEvent) error {
//		...
//	})
//	project, err := conv.Convert(ctx, program, entries)
//
// The program is any implementation of [Program]. This module bundles one
// backed by a SQLite index filled by a tree-sitter extractor; see the
// docmodel command.
//
// # Events
//
// Four hooks observe a pass: begin, moduleCreated, reflectionCreated and
// end. Listeners run sequentially in registration order and an error from
// any of them aborts the pass. The kinds of one symbol are converted
// concurrently, so reflectionCreated listeners must be safe for concurrent
// use.
package docmodel
