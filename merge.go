package docmodel

import (
	"slices"

	"github.com/jward/docmodel/internal/semantic"
)

// MergeKinds decides which declaration kinds of one symbol get their own
// reflection. Duplicates collapse to the first occurrence. A class absorbs
// its same-named interfaces, and a getter absorbs its setter.
func MergeKinds(kinds []SyntaxKind) []SyntaxKind {
	out := make([]SyntaxKind, 0, len(kinds))
	for _, k := range kinds {
		if !slices.Contains(out, k) {
			out = append(out, k)
		}
	}
	if slices.Contains(out, semantic.ClassDeclaration) {
		out = slices.DeleteFunc(out, func(k SyntaxKind) bool { return k == semantic.InterfaceDeclaration })
	}
	if slices.Contains(out, semantic.GetAccessor) {
		out = slices.DeleteFunc(out, func(k SyntaxKind) bool { return k == semantic.SetAccessor })
	}
	return out
}

// declarationsFor selects the nodes handed to the converter for kind. The
// class converter also receives interface declarations merged into it.
func declarationsFor(kind SyntaxKind, decls []*Node) []*Node {
	var nodes []*Node
	for _, d := range decls {
		if d.Kind == kind {
			nodes = append(nodes, d)
		}
	}
	if kind == semantic.ClassDeclaration {
		for _, d := range decls {
			if d.Kind == semantic.InterfaceDeclaration {
				nodes = append(nodes, d)
			}
		}
	}
	return nodes
}
