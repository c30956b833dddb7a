// Package model holds the reflection tree produced by a conversion pass:
// project, modules, declarations and their members, plus the immutable type
// values attached to them.
package model

import (
	"fmt"
	"sync"
)

// SourceReference points at one declaration of a reflection.
type SourceReference struct {
	FileName string `json:"fileName"`
	Line     int    `json:"line"`
	Column   int    `json:"character"`
}

// Reflection is one node of the documentation tree.
type Reflection interface {
	Name() string
	Kind() Kind
	Parent() Reflection

	Comment() *Comment
	SetComment(c *Comment)

	Sources() []SourceReference
	AddSource(src SourceReference)

	Flags() Flags
	SetFlag(f Flags)

	base() *Base
}

// Container is a reflection that owns an ordered list of children.
type Container interface {
	Reflection
	Children() []Reflection
	AddChild(child Reflection)
}

// Base carries the fields shared by every reflection. Name and kind are
// fixed by the constructor.
type Base struct {
	name   string
	kind   Kind
	parent Reflection

	mu      sync.RWMutex
	comment *Comment
	sources []SourceReference
	flags   Flags
}

func (b *Base) init(name string, kind Kind) {
	b.name = name
	b.kind = kind
}

func (b *Base) base() *Base        { return b }
func (b *Base) Name() string       { return b.name }
func (b *Base) Kind() Kind         { return b.kind }
func (b *Base) Parent() Reflection { return b.parent }

func (b *Base) Comment() *Comment {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.comment
}

func (b *Base) SetComment(c *Comment) {
	b.mu.Lock()
	b.comment = c
	b.mu.Unlock()
}

func (b *Base) Sources() []SourceReference {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]SourceReference(nil), b.sources...)
}

func (b *Base) AddSource(src SourceReference) {
	b.mu.Lock()
	b.sources = append(b.sources, src)
	b.mu.Unlock()
}

func (b *Base) Flags() Flags {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.flags
}

func (b *Base) SetFlag(f Flags) {
	b.mu.Lock()
	b.flags |= f
	b.mu.Unlock()
}

// ContainerBase implements Container for the embedding reflection. owner is
// the outer value so attached children point at it rather than at the
// embedded struct.
type ContainerBase struct {
	Base
	owner Container

	childMu  sync.Mutex
	children []Reflection
}

func (c *ContainerBase) initContainer(name string, kind Kind, owner Container) {
	c.init(name, kind)
	c.owner = owner
}

// Children returns a snapshot of the children in insertion order.
func (c *ContainerBase) Children() []Reflection {
	c.childMu.Lock()
	defer c.childMu.Unlock()
	return append([]Reflection(nil), c.children...)
}

// AddChild appends child and sets its parent. A reflection can be attached
// once.
func (c *ContainerBase) AddChild(child Reflection) {
	adopt(c.owner, child)
	c.childMu.Lock()
	c.children = append(c.children, child)
	c.childMu.Unlock()
}

// adopt points child at owner, enforcing a single parent.
func adopt(owner, child Reflection) {
	b := child.base()
	if b.parent != nil {
		panic(fmt.Sprintf("model: %s %q is already attached to %q", b.kind, b.name, b.parent.Name()))
	}
	b.parent = owner
}

// ChildrenOfKind filters the children of c by kind mask.
func ChildrenOfKind(c Container, mask Kind) []Reflection {
	var out []Reflection
	for _, child := range c.Children() {
		if child.Kind().Is(mask) {
			out = append(out, child)
		}
	}
	return out
}

// FullName joins the names from the outermost non-project ancestor down to
// r with ".".
func FullName(r Reflection) string {
	name := r.Name()
	for p := r.Parent(); p != nil && p.Kind() != KindProject; p = p.Parent() {
		name = p.Name() + "." + name
	}
	return name
}

// Walk visits r and its descendants depth-first in child order. Returning
// false from fn skips the children of that reflection.
func Walk(r Reflection, fn func(Reflection) bool) {
	if !fn(r) {
		return
	}
	if c, ok := r.(Container); ok {
		for _, child := range c.Children() {
			Walk(child, fn)
		}
	}
}
