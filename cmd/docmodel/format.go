package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/list"
	"github.com/jedib0t/go-pretty/v6/table"
)

// validFormats lists accepted values for --format.
var validFormats = []string{"json", "text"}

// validateFormat checks that the --format flag value is recognized.
func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format %q: must be %s", format, strings.Join(validFormats, " or "))
}

// outputResult writes result to w in the requested format.
func outputResult(w io.Writer, format string, result CLIResult) error {
	if format == "text" {
		return outputResultText(w, result)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// outputResultText dispatches to the text formatter for the result type.
func outputResultText(w io.Writer, result CLIResult) error {
	switch v := result.Results.(type) {
	case CLIProject:
		formatProjectText(w, v)
	case CLIIndexSummary:
		formatIndexSummaryText(w, v)
	case CLIKinds:
		formatKindsText(w, v)
	case nil:
	default:
		return fmt.Errorf("unsupported result type for text format: %T", v)
	}
	return nil
}

// formatProjectText renders the reflection tree as an indented list.
func formatProjectText(w io.Writer, p CLIProject) {
	l := list.NewWriter()
	l.SetOutputMirror(w)
	l.SetStyle(list.StyleConnectedLight)

	title := p.Name
	if p.Version != "" {
		title += " (" + p.Version + ")"
	}
	l.AppendItem(title)
	l.Indent()
	for _, child := range p.Children {
		appendReflection(l, child)
	}
	l.Render()
}

func appendReflection(l list.Writer, r CLIReflection) {
	l.AppendItem(reflectionLabel(r))

	var nested []CLIReflection
	nested = append(nested, r.Signatures...)
	if r.GetSignature != nil {
		nested = append(nested, *r.GetSignature)
	}
	if r.SetSignature != nil {
		nested = append(nested, *r.SetSignature)
	}
	if r.Object != nil {
		nested = append(nested, r.Object.Children...)
	}
	nested = append(nested, r.Children...)
	if len(nested) == 0 {
		return
	}
	l.Indent()
	for _, n := range nested {
		appendReflection(l, n)
	}
	l.UnIndent()
}

// reflectionLabel renders one line: kind, flags, name and its type.
func reflectionLabel(r CLIReflection) string {
	var b strings.Builder
	b.WriteString(r.Kind)
	for _, f := range r.Flags {
		if f != "exported" {
			b.WriteString(" " + f)
		}
	}
	b.WriteString(" ")
	b.WriteString(r.Name)

	switch {
	case r.Kind == "signature":
		params := make([]string, len(r.Parameters))
		for i, p := range r.Parameters {
			params[i] = p.Name
			if p.Type != "" {
				params[i] += ": " + p.Type
			}
		}
		b.WriteString("(" + strings.Join(params, ", ") + ")")
		if r.Returns != "" {
			b.WriteString(": " + r.Returns)
		}
	case r.Type != "":
		b.WriteString(": " + r.Type)
	case r.Value != "":
		b.WriteString(" = " + r.Value)
	}
	if len(r.Extends) > 0 {
		b.WriteString(" extends " + strings.Join(r.Extends, ", "))
	}
	if len(r.Implements) > 0 {
		b.WriteString(" implements " + strings.Join(r.Implements, ", "))
	}
	if r.Comment != nil && r.Comment.Summary != "" {
		summary, _, _ := strings.Cut(r.Comment.Summary, "\n")
		b.WriteString("  // " + summary)
	}
	return b.String()
}

func formatIndexSummaryText(w io.Writer, s CLIIndexSummary) {
	fmt.Fprintf(w, "Indexed %s files (%s) in %s\n",
		humanize.Comma(int64(s.Files)),
		humanize.Bytes(uint64(s.Bytes)),
		(time.Duration(s.DurationMS) * time.Millisecond).String(),
	)
	fmt.Fprintf(w, "  extracted: %d, unchanged: %d, removed: %d\n", s.Indexed, s.Unchanged, s.Removed)
	fmt.Fprintf(w, "Database: %s\n", s.Database)
}

func formatKindsText(w io.Writer, k CLIKinds) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Registry", "Kind"})
	for _, kind := range k.Declarations {
		t.AppendRow(table.Row{"declaration", kind})
	}
	for _, kind := range k.TypeNodes {
		t.AppendRow(table.Row{"type node", kind})
	}
	t.Render()

	prios := make([]string, len(k.TypeConverterPriorities))
	for i, p := range k.TypeConverterPriorities {
		prios[i] = fmt.Sprint(p)
	}
	fmt.Fprintf(w, "Type converter priorities: %s\n", strings.Join(prios, ", "))
}
