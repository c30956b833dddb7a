package docmodel

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// DeclarationConverter builds the reflection for one declaration kind of a
// symbol. nodes are the symbol's declarations of that kind (for classes,
// followed by any merged interface declarations). Returning a nil
// reflection and nil error skips the symbol.
type DeclarationConverter func(ctx context.Context, cc Context, symbol *Symbol, nodes []*Node) (Reflection, error)

// TypeNodeConverter converts a type annotation. t is the resolved type of
// node and may be nil.
type TypeNodeConverter func(c *Converter, node *Node, t *SemanticType) Type

// TypePredicate reports whether a type converter handles t.
type TypePredicate func(t *SemanticType, program Program) bool

// TypeConvertFunc converts a resolved type that has no annotation.
type TypeConvertFunc func(c *Converter, t *SemanticType) Type

type typeConverter struct {
	priority int
	supports TypePredicate
	convert  TypeConvertFunc
}

type registry struct {
	mu        sync.RWMutex
	decls     map[SyntaxKind]DeclarationConverter
	typeNodes map[SyntaxKind]TypeNodeConverter
	types     []typeConverter
}

func (r *registry) init() {
	r.decls = make(map[SyntaxKind]DeclarationConverter)
	r.typeNodes = make(map[SyntaxKind]TypeNodeConverter)
}

func (r *registry) declaration(kind SyntaxKind) (DeclarationConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.decls[kind]
	return conv, ok
}

func (r *registry) typeNode(kind SyntaxKind) (TypeNodeConverter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.typeNodes[kind]
	return conv, ok
}

func (r *registry) typeConverters() []typeConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.types
}

func (c *Converter) assertNotConverting(what string) {
	if c.inPass() {
		panic(fmt.Sprintf("docmodel: cannot register %s while conversion is in progress", what))
	}
}

// RegisterDeclarationConverter claims kinds for conv. It panics if any kind
// already has a declaration converter or a pass is running; on panic no
// kind is registered.
func (c *Converter) RegisterDeclarationConverter(conv DeclarationConverter, kinds ...SyntaxKind) {
	c.assertNotConverting("declaration converter")
	r := &c.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kind := range kinds {
		if _, ok := r.decls[kind]; ok {
			panic(fmt.Sprintf("docmodel: duplicate declaration converter for %s", kind))
		}
	}
	for _, kind := range kinds {
		r.decls[kind] = conv
	}
}

// RegisterTypeNodeConverter claims type-node kinds for conv, with the same
// contract as RegisterDeclarationConverter.
func (c *Converter) RegisterTypeNodeConverter(conv TypeNodeConverter, kinds ...SyntaxKind) {
	c.assertNotConverting("type node converter")
	r := &c.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, kind := range kinds {
		if _, ok := r.typeNodes[kind]; ok {
			panic(fmt.Sprintf("docmodel: duplicate type node converter for %s", kind))
		}
	}
	for _, kind := range kinds {
		r.typeNodes[kind] = conv
	}
}

// RegisterTypeConverter adds a predicate-based converter. Converters are
// consulted in ascending priority; equal priorities keep registration order.
func (c *Converter) RegisterTypeConverter(priority int, supports TypePredicate, conv TypeConvertFunc) {
	c.assertNotConverting("type converter")
	r := &c.registry
	r.mu.Lock()
	defer r.mu.Unlock()
	i := len(r.types)
	for i > 0 && r.types[i-1].priority > priority {
		i--
	}
	types := make([]typeConverter, 0, len(r.types)+1)
	types = append(types, r.types[:i]...)
	types = append(types, typeConverter{priority: priority, supports: supports, convert: conv})
	types = append(types, r.types[i:]...)
	r.types = types
}

// Registrations describes what a Converter can dispatch on.
type Registrations struct {
	Declarations []SyntaxKind
	TypeNodes    []SyntaxKind

	// TypeConverterPriorities lists type converter priorities in
	// consultation order.
	TypeConverterPriorities []int
}

// RegisteredKinds reports the registered kinds, sorted by kind value.
func (c *Converter) RegisteredKinds() Registrations {
	r := &c.registry
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out Registrations
	for k := range r.decls {
		out.Declarations = append(out.Declarations, k)
	}
	for k := range r.typeNodes {
		out.TypeNodes = append(out.TypeNodes, k)
	}
	slices.Sort(out.Declarations)
	slices.Sort(out.TypeNodes)
	for _, t := range r.types {
		out.TypeConverterPriorities = append(out.TypeConverterPriorities, t.priority)
	}
	return out
}
