package model

import "strings"

// Tag is a block tag such as "@param name text" or "@returns text". Param
// is set only for tags that name a parameter.
type Tag struct {
	Name  string `json:"tag"`
	Param string `json:"param,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Comment is the parsed documentation attached to a reflection.
type Comment struct {
	Summary      string   `json:"summary,omitempty"`
	BlockTags    []Tag    `json:"blockTags,omitempty"`
	ModifierTags []string `json:"modifierTags,omitempty"`
}

// IsEmpty reports whether c carries no content.
func (c *Comment) IsEmpty() bool {
	return c == nil || (c.Summary == "" && len(c.BlockTags) == 0 && len(c.ModifierTags) == 0)
}

// HasModifier reports whether c carries the modifier tag name (with or
// without the leading "@").
func (c *Comment) HasModifier(name string) bool {
	if c == nil {
		return false
	}
	name = "@" + strings.TrimPrefix(name, "@")
	for _, m := range c.ModifierTags {
		if m == name {
			return true
		}
	}
	return false
}

// Tag returns the first block tag called name.
func (c *Comment) Tag(name string) (Tag, bool) {
	if c == nil {
		return Tag{}, false
	}
	name = "@" + strings.TrimPrefix(name, "@")
	for _, t := range c.BlockTags {
		if t.Name == name {
			return t, true
		}
	}
	return Tag{}, false
}

// ParamTag returns the @param tag for the named parameter.
func (c *Comment) ParamTag(param string) (Tag, bool) {
	if c == nil {
		return Tag{}, false
	}
	for _, t := range c.BlockTags {
		if t.Name == "@param" && t.Param == param {
			return t, true
		}
	}
	return Tag{}, false
}

// Clone returns a deep copy.
func (c *Comment) Clone() *Comment {
	if c == nil {
		return nil
	}
	out := &Comment{Summary: c.Summary}
	out.BlockTags = append(out.BlockTags, c.BlockTags...)
	out.ModifierTags = append(out.ModifierTags, c.ModifierTags...)
	return out
}
