package model

import (
	"fmt"
	"math/bits"
	"strings"
)

// Kind distinguishes reflection variants. Values are single bits so that
// sets of kinds can be expressed as masks.
type Kind uint32

const (
	KindProject Kind = 1 << iota
	KindModule
	KindNamespace
	KindEnum
	KindEnumMember
	KindVariable
	KindFunction
	KindClass
	KindInterface
	KindConstructor
	KindProperty
	KindMethod
	KindAccessor
	KindTypeAlias
	KindObjectLiteral
	KindSignature
	KindParameter
	KindTypeParameter
)

// KindContainer is the mask of kinds that own children.
const KindContainer = KindProject | KindModule | KindNamespace | KindEnum |
	KindClass | KindInterface | KindObjectLiteral

var kindNames = map[Kind]string{
	KindProject:       "Project",
	KindModule:        "Module",
	KindNamespace:     "Namespace",
	KindEnum:          "Enum",
	KindEnumMember:    "EnumMember",
	KindVariable:      "Variable",
	KindFunction:      "Function",
	KindClass:         "Class",
	KindInterface:     "Interface",
	KindConstructor:   "Constructor",
	KindProperty:      "Property",
	KindMethod:        "Method",
	KindAccessor:      "Accessor",
	KindTypeAlias:     "TypeAlias",
	KindObjectLiteral: "ObjectLiteral",
	KindSignature:     "Signature",
	KindParameter:     "Parameter",
	KindTypeParameter: "TypeParameter",
}

// String returns the lower-camel name of a single kind ("enumMember").
// It panics when k is not exactly one known kind.
func (k Kind) String() string {
	if bits.OnesCount32(uint32(k)) != 1 {
		panic(fmt.Sprintf("model: kind string requested for %d, which is not an exact kind", uint32(k)))
	}
	name, ok := kindNames[k]
	if !ok {
		panic(fmt.Sprintf("model: kind string requested for %d, which does not exist", uint32(k)))
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// Is reports whether k is one of the kinds in mask.
func (k Kind) Is(mask Kind) bool {
	return k&mask != 0
}

// Flags decorate a reflection with modifiers.
type Flags uint32

const (
	FlagExported Flags = 1 << iota
	FlagStatic
	FlagPrivate
	FlagProtected
	FlagPublic
	FlagOptional
	FlagReadonly
	FlagAbstract
	FlagConst
	FlagLet
	FlagRest
	FlagAsync
	FlagDefault
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagExported, "exported"},
	{FlagStatic, "static"},
	{FlagPrivate, "private"},
	{FlagProtected, "protected"},
	{FlagPublic, "public"},
	{FlagOptional, "optional"},
	{FlagReadonly, "readonly"},
	{FlagAbstract, "abstract"},
	{FlagConst, "const"},
	{FlagLet, "let"},
	{FlagRest, "rest"},
	{FlagAsync, "async"},
	{FlagDefault, "default"},
}

// Has reports whether all bits of check are set.
func (f Flags) Has(check Flags) bool {
	return f&check == check
}

// HasAny reports whether any bit of check is set.
func (f Flags) HasAny(check Flags) bool {
	return f&check != 0
}

// Without returns f with the bits of remove cleared.
func (f Flags) Without(remove Flags) Flags {
	return (f ^ remove) & f
}

// Names lists the set flags in declaration order.
func (f Flags) Names() []string {
	var out []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			out = append(out, fn.name)
		}
	}
	return out
}

// FlagByName maps a flag or modifier name to its flag.
func FlagByName(name string) (Flags, bool) {
	for _, fn := range flagNames {
		if fn.name == name {
			return fn.flag, true
		}
	}
	return 0, false
}
