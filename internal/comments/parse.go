// Package comments parses JSDoc-style documentation comments into
// model.Comment values.
package comments

import (
	"strings"

	"github.com/jward/docmodel/internal/model"
)

// modifierTags are tags that carry no content of their own.
var modifierTags = map[string]bool{
	"@abstract":             true,
	"@alpha":                true,
	"@beta":                 true,
	"@deprecated":           true,
	"@event":                true,
	"@experimental":         true,
	"@hidden":               true,
	"@ignore":               true,
	"@internal":             true,
	"@override":             true,
	"@packageDocumentation": true,
	"@private":              true,
	"@protected":            true,
	"@public":               true,
	"@readonly":             true,
	"@sealed":               true,
	"@virtual":              true,
}

// paramTags name a parameter before their text.
var paramTags = map[string]bool{
	"@param":     true,
	"@typeParam": true,
	"@template":  true,
	"@property":  true,
	"@prop":      true,
}

// IsModifierTag reports whether tag (with leading "@") is a modifier tag.
func IsModifierTag(tag string) bool {
	return modifierTags[tag]
}

// Parse parses one raw comment, delimiters included. It returns nil for
// anything that is not a "/**" block comment.
func Parse(raw string) *model.Comment {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "/**") || !strings.HasSuffix(raw, "*/") || raw == "/**/" {
		return nil
	}
	body := strings.TrimSuffix(strings.TrimPrefix(raw, "/**"), "*/")

	c := &model.Comment{}
	var summary []string
	var current *model.Tag
	var text []string

	flush := func() {
		if current == nil {
			return
		}
		current.Text = joinLines(text)
		c.BlockTags = append(c.BlockTags, *current)
		current = nil
		text = nil
	}

	for _, line := range cleanLines(body) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "@") {
			tag, rest, _ := strings.Cut(trimmed, " ")
			tag = strings.TrimRight(tag, ":")
			if modifierTags[tag] {
				flush()
				if !hasModifier(c, tag) {
					c.ModifierTags = append(c.ModifierTags, tag)
				}
				// Content after a modifier tag continues the summary.
				if rest = strings.TrimSpace(rest); rest != "" {
					summary = append(summary, rest)
				}
				continue
			}
			flush()
			current = &model.Tag{Name: tag}
			rest = strings.TrimSpace(rest)
			if paramTags[tag] {
				current.Param, rest = splitParam(rest)
			}
			text = []string{rest}
			continue
		}
		if current != nil {
			if current.Name == "@example" {
				text = append(text, line)
			} else {
				text = append(text, trimmed)
			}
		} else {
			summary = append(summary, line)
		}
	}
	flush()

	c.Summary = joinLines(summary)
	return c
}

// cleanLines strips the leading "*" decoration of each comment line.
func cleanLines(body string) []string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t\r")
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "*") {
			trimmed = strings.TrimPrefix(trimmed, "*")
			trimmed = strings.TrimPrefix(trimmed, " ")
		}
		out = append(out, trimmed)
	}
	return out
}

// splitParam separates "{type} [name=default] - text" into name and text.
func splitParam(s string) (string, string) {
	if strings.HasPrefix(s, "{") {
		if end := strings.Index(s, "}"); end >= 0 {
			s = strings.TrimSpace(s[end+1:])
		}
	}
	name, rest, _ := strings.Cut(s, " ")
	if strings.HasPrefix(name, "[") {
		name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
		name, _, _ = strings.Cut(name, "=")
	}
	rest = strings.TrimSpace(rest)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, "-"))
	return name, rest
}

// joinLines trims surrounding blank lines and collapses runs of blank lines
// to a single paragraph break.
func joinLines(lines []string) string {
	var b strings.Builder
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank = b.Len() > 0
			continue
		}
		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteByte('\n')
			}
		}
		blank = false
		b.WriteString(line)
	}
	return b.String()
}

func hasModifier(c *model.Comment, tag string) bool {
	for _, m := range c.ModifierTags {
		if m == tag {
			return true
		}
	}
	return false
}

// ForDocs parses the first non-empty documentation comment among docs.
// Declarations merged from several nodes take the comment of the earliest
// documented one.
func ForDocs(docs []string) *model.Comment {
	for _, doc := range docs {
		if c := Parse(doc); c != nil && !c.IsEmpty() {
			return c
		}
	}
	return nil
}
