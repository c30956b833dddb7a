package docmodel

import "context"

// BeginEvent fires once per pass after the project reflection exists and
// before any module is created.
type BeginEvent struct {
	Project *ProjectReflection
	Program Program
}

// ModuleCreatedEvent fires after a module reflection is attached to the
// project and before its exports are converted.
type ModuleCreatedEvent struct {
	Module *ModuleReflection
	File   *SourceFile
}

// ReflectionCreatedEvent fires for every reflection produced from a symbol,
// after it is attached to its container. It does not fire for the project
// or for modules.
type ReflectionCreatedEvent struct {
	Reflection Reflection
	Symbol     *Symbol
	Nodes      []*Node
}

// EndEvent fires once after every entry has been converted.
type EndEvent struct {
	Project *ProjectReflection
}

// OnBegin registers fn for BeginEvent and returns a function removing it.
func (c *Converter) OnBegin(fn func(context.Context, BeginEvent) error) (remove func()) {
	return c.begin.On(fn)
}

// OnModuleCreated registers fn for ModuleCreatedEvent.
func (c *Converter) OnModuleCreated(fn func(context.Context, ModuleCreatedEvent) error) (remove func()) {
	return c.moduleCreated.On(fn)
}

// OnReflectionCreated registers fn for ReflectionCreatedEvent. Members of a
// declaration are converted inside its converter, so fn may be called from
// several goroutines at once.
func (c *Converter) OnReflectionCreated(fn func(context.Context, ReflectionCreatedEvent) error) (remove func()) {
	return c.reflectionCreated.On(fn)
}

// OnEnd registers fn for EndEvent.
func (c *Converter) OnEnd(fn func(context.Context, EndEvent) error) (remove func()) {
	return c.end.On(fn)
}
