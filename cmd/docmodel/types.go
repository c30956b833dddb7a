package main

import (
	"github.com/jward/docmodel/internal/model"
)

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIProject is the JSON form of a converted project.
type CLIProject struct {
	CLIReflection
	Readme  string `json:"readme,omitempty"`
	Version string `json:"version,omitempty"`
}

// CLIReflection is a JSON-friendly reflection. Only the fields that apply
// to the reflection's kind are set.
type CLIReflection struct {
	Name    string                  `json:"name"`
	Kind    string                  `json:"kind"`
	Flags   []string                `json:"flags,omitempty"`
	Comment *model.Comment          `json:"comment,omitempty"`
	Sources []model.SourceReference `json:"sources,omitempty"`

	Type         string         `json:"type,omitempty"`
	Object       *CLIReflection `json:"object,omitempty"`
	DefaultValue string         `json:"defaultValue,omitempty"`
	Value        string         `json:"value,omitempty"`
	Constraint   string         `json:"constraint,omitempty"`
	Default      string         `json:"default,omitempty"`

	Extends        []string        `json:"extends,omitempty"`
	Implements     []string        `json:"implements,omitempty"`
	TypeParameters []CLIReflection `json:"typeParameters,omitempty"`

	Signatures   []CLIReflection `json:"signatures,omitempty"`
	Parameters   []CLIReflection `json:"parameters,omitempty"`
	Returns      string          `json:"returns,omitempty"`
	GetSignature *CLIReflection  `json:"getSignature,omitempty"`
	SetSignature *CLIReflection  `json:"setSignature,omitempty"`

	Children []CLIReflection `json:"children,omitempty"`
}

// CLIIndexSummary reports one indexing run.
type CLIIndexSummary struct {
	Database   string `json:"database"`
	Files      int    `json:"files"`
	Indexed    int    `json:"indexed"`
	Unchanged  int    `json:"unchanged"`
	Removed    int    `json:"removed"`
	Bytes      int64  `json:"bytes"`
	DurationMS int64  `json:"duration_ms"`
}

// CLIKinds lists what the converter dispatches on.
type CLIKinds struct {
	Declarations            []string `json:"declarations"`
	TypeNodes               []string `json:"type_nodes"`
	TypeConverterPriorities []int    `json:"type_converter_priorities"`
}

type signatured interface {
	Signatures() []*model.SignatureReflection
}

func toCLIProject(p *model.ProjectReflection) CLIProject {
	return CLIProject{
		CLIReflection: toCLIReflection(p),
		Readme:        p.Readme,
		Version:       p.Version,
	}
}

func toCLIReflection(r model.Reflection) CLIReflection {
	out := CLIReflection{
		Name:    r.Name(),
		Kind:    r.Kind().String(),
		Flags:   r.Flags().Names(),
		Sources: r.Sources(),
	}
	if c := r.Comment(); !c.IsEmpty() {
		out.Comment = c
	}

	switch v := r.(type) {
	case *model.ClassReflection:
		out.Extends = typeStrings(v.Extends)
		out.Implements = typeStrings(v.Implements)
		out.TypeParameters = toCLITypeParameters(v.TypeParameters)
	case *model.InterfaceReflection:
		out.Extends = typeStrings(v.Extends)
		out.TypeParameters = toCLITypeParameters(v.TypeParameters)
	case *model.EnumMemberReflection:
		out.Value = v.Value
	case *model.PropertyReflection:
		out.Type = typeString(v.Type)
		out.Object = toCLIObject(v.Object)
		out.DefaultValue = v.DefaultValue
	case *model.VariableReflection:
		out.Type = typeString(v.Type)
		out.Object = toCLIObject(v.Object)
		out.DefaultValue = v.DefaultValue
	case *model.TypeAliasReflection:
		out.Type = typeString(v.Type)
		out.TypeParameters = toCLITypeParameters(v.TypeParameters)
	case *model.AccessorReflection:
		if v.GetSignature != nil {
			sig := toCLIReflection(v.GetSignature)
			out.GetSignature = &sig
		}
		if v.SetSignature != nil {
			sig := toCLIReflection(v.SetSignature)
			out.SetSignature = &sig
		}
	case *model.SignatureReflection:
		for _, p := range v.Parameters {
			out.Parameters = append(out.Parameters, toCLIReflection(p))
		}
		out.TypeParameters = toCLITypeParameters(v.TypeParameters)
		out.Returns = typeString(v.Return)
	case *model.ParameterReflection:
		out.Type = typeString(v.Type)
		out.DefaultValue = v.DefaultValue
	case *model.TypeParameterReflection:
		out.Constraint = typeString(v.Constraint)
		out.Default = typeString(v.Default)
	}

	if s, ok := r.(signatured); ok {
		for _, sig := range s.Signatures() {
			out.Signatures = append(out.Signatures, toCLIReflection(sig))
		}
	}
	if c, ok := r.(model.Container); ok {
		for _, child := range c.Children() {
			out.Children = append(out.Children, toCLIReflection(child))
		}
	}
	return out
}

func toCLIObject(o *model.ObjectReflection) *CLIReflection {
	if o == nil {
		return nil
	}
	obj := toCLIReflection(o)
	return &obj
}

func toCLITypeParameters(tps []*model.TypeParameterReflection) []CLIReflection {
	var out []CLIReflection
	for _, tp := range tps {
		out = append(out, toCLIReflection(tp))
	}
	return out
}

func typeString(t model.Type) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func typeStrings(ts []model.Type) []string {
	var out []string
	for _, t := range ts {
		out = append(out, typeString(t))
	}
	return out
}
