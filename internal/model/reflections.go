package model

import "sync"

// ProjectReflection is the root of a converted tree.
type ProjectReflection struct {
	ContainerBase
	Readme  string
	Version string
}

func NewProject(name string) *ProjectReflection {
	p := &ProjectReflection{}
	p.initContainer(name, KindProject, p)
	return p
}

// Modules returns the module children in conversion order.
func (p *ProjectReflection) Modules() []*ModuleReflection {
	var out []*ModuleReflection
	for _, child := range p.Children() {
		if m, ok := child.(*ModuleReflection); ok {
			out = append(out, m)
		}
	}
	return out
}

type ModuleReflection struct {
	ContainerBase
}

func NewModule(name string) *ModuleReflection {
	m := &ModuleReflection{}
	m.initContainer(name, KindModule, m)
	return m
}

type NamespaceReflection struct {
	ContainerBase
}

func NewNamespace(name string) *NamespaceReflection {
	n := &NamespaceReflection{}
	n.initContainer(name, KindNamespace, n)
	return n
}

// ClassReflection holds a class, optionally merged with same-named
// interfaces. Implements collects both explicit implements clauses and
// the extends clauses of merged interfaces.
type ClassReflection struct {
	ContainerBase
	Extends        []Type
	Implements     []Type
	TypeParameters []*TypeParameterReflection
}

func NewClass(name string) *ClassReflection {
	c := &ClassReflection{}
	c.initContainer(name, KindClass, c)
	return c
}

type InterfaceReflection struct {
	ContainerBase
	Extends        []Type
	TypeParameters []*TypeParameterReflection
}

func NewInterface(name string) *InterfaceReflection {
	i := &InterfaceReflection{}
	i.initContainer(name, KindInterface, i)
	return i
}

type EnumReflection struct {
	ContainerBase
}

func NewEnum(name string) *EnumReflection {
	e := &EnumReflection{}
	e.initContainer(name, KindEnum, e)
	return e
}

// ObjectReflection stands in for an anonymous object type whose members
// are documented as children.
type ObjectReflection struct {
	ContainerBase
}

func NewObject(name string) *ObjectReflection {
	o := &ObjectReflection{}
	o.initContainer(name, KindObjectLiteral, o)
	return o
}

type EnumMemberReflection struct {
	Base
	Value string
}

func NewEnumMember(name, value string) *EnumMemberReflection {
	e := &EnumMemberReflection{Value: value}
	e.init(name, KindEnumMember)
	return e
}

// signatures is the signature list shared by callable reflections.
type signatures struct {
	mu   sync.Mutex
	list []*SignatureReflection
}

func (s *signatures) add(owner Reflection, sig *SignatureReflection) {
	adopt(owner, sig)
	s.mu.Lock()
	s.list = append(s.list, sig)
	s.mu.Unlock()
}

func (s *signatures) get() []*SignatureReflection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*SignatureReflection(nil), s.list...)
}

type FunctionReflection struct {
	Base
	sigs signatures
}

func NewFunction(name string) *FunctionReflection {
	f := &FunctionReflection{}
	f.init(name, KindFunction)
	return f
}

func (f *FunctionReflection) AddSignature(sig *SignatureReflection) { f.sigs.add(f, sig) }
func (f *FunctionReflection) Signatures() []*SignatureReflection    { return f.sigs.get() }

type MethodReflection struct {
	Base
	sigs signatures
}

func NewMethod(name string) *MethodReflection {
	m := &MethodReflection{}
	m.init(name, KindMethod)
	return m
}

func (m *MethodReflection) AddSignature(sig *SignatureReflection) { m.sigs.add(m, sig) }
func (m *MethodReflection) Signatures() []*SignatureReflection    { return m.sigs.get() }

type ConstructorReflection struct {
	Base
	sigs signatures
}

func NewConstructor() *ConstructorReflection {
	c := &ConstructorReflection{}
	c.init("constructor", KindConstructor)
	return c
}

func (c *ConstructorReflection) AddSignature(sig *SignatureReflection) { c.sigs.add(c, sig) }
func (c *ConstructorReflection) Signatures() []*SignatureReflection    { return c.sigs.get() }

// AccessorReflection joins the getter and setter of one property.
type AccessorReflection struct {
	Base
	GetSignature *SignatureReflection
	SetSignature *SignatureReflection
}

func NewAccessor(name string) *AccessorReflection {
	a := &AccessorReflection{}
	a.init(name, KindAccessor)
	return a
}

// SetGetter attaches sig as the getter.
func (a *AccessorReflection) SetGetter(sig *SignatureReflection) {
	adopt(a, sig)
	a.GetSignature = sig
}

// SetSetter attaches sig as the setter.
func (a *AccessorReflection) SetSetter(sig *SignatureReflection) {
	adopt(a, sig)
	a.SetSignature = sig
}

// PropertyReflection has either a Type or, for inline object literal
// annotations, an Object placeholder.
type PropertyReflection struct {
	Base
	Type         Type
	Object       *ObjectReflection
	DefaultValue string
}

func NewProperty(name string) *PropertyReflection {
	p := &PropertyReflection{}
	p.init(name, KindProperty)
	return p
}

// SetObject attaches o as the inline object type of p.
func (p *PropertyReflection) SetObject(o *ObjectReflection) {
	adopt(p, o)
	p.Object = o
}

type VariableReflection struct {
	Base
	Type         Type
	Object       *ObjectReflection
	DefaultValue string
}

func NewVariable(name string) *VariableReflection {
	v := &VariableReflection{}
	v.init(name, KindVariable)
	return v
}

// SetObject attaches o as the inline object type of v.
func (v *VariableReflection) SetObject(o *ObjectReflection) {
	adopt(v, o)
	v.Object = o
}

type TypeAliasReflection struct {
	Base
	Type           Type
	TypeParameters []*TypeParameterReflection
}

func NewTypeAlias(name string) *TypeAliasReflection {
	t := &TypeAliasReflection{}
	t.init(name, KindTypeAlias)
	return t
}

// SignatureReflection is one call signature. Its name repeats the owner's.
type SignatureReflection struct {
	Base
	Parameters     []*ParameterReflection
	TypeParameters []*TypeParameterReflection
	Return         Type
}

func NewSignature(name string) *SignatureReflection {
	s := &SignatureReflection{}
	s.init(name, KindSignature)
	return s
}

// AddParameter appends p and adopts it.
func (s *SignatureReflection) AddParameter(p *ParameterReflection) {
	adopt(s, p)
	s.Parameters = append(s.Parameters, p)
}

// AddTypeParameter appends tp and adopts it.
func (s *SignatureReflection) AddTypeParameter(tp *TypeParameterReflection) {
	adopt(s, tp)
	s.TypeParameters = append(s.TypeParameters, tp)
}

type ParameterReflection struct {
	Base
	Type         Type
	DefaultValue string
}

func NewParameter(name string) *ParameterReflection {
	p := &ParameterReflection{}
	p.init(name, KindParameter)
	return p
}

type TypeParameterReflection struct {
	Base
	Constraint Type
	Default    Type
}

func NewTypeParameter(name string) *TypeParameterReflection {
	t := &TypeParameterReflection{}
	t.init(name, KindTypeParameter)
	return t
}

// AdoptTypeParameters attaches tps to owner and returns them.
func AdoptTypeParameters(owner Reflection, tps []*TypeParameterReflection) []*TypeParameterReflection {
	for _, tp := range tps {
		adopt(owner, tp)
	}
	return tps
}
