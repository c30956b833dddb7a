package runtime

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"

	"github.com/jward/docmodel/internal/model"
)

// reflectionFuncs returns the host functions that edit r:
//
//	set_summary(text)
//	add_tag(tag, text)
//	add_modifier(tag)
//	set_flag(name)
//	has_flag(name) → bool
//
// Comment edits copy the current comment, so a reflection sharing its
// comment with another is not affected.
func reflectionFuncs(r model.Reflection) map[string]any {
	return map[string]any{
		"set_summary": object.NewBuiltin("set_summary", func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.NewArgsError("set_summary", 1, len(args))
			}
			text, err := toString(args[0])
			if err != nil {
				return object.Errorf("set_summary: %v", err)
			}
			editComment(r, func(c *model.Comment) { c.Summary = text })
			return object.Nil
		}),
		"add_tag": object.NewBuiltin("add_tag", func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 2 {
				return object.NewArgsError("add_tag", 2, len(args))
			}
			tag, err := toString(args[0])
			if err != nil {
				return object.Errorf("add_tag: %v", err)
			}
			text, err := toString(args[1])
			if err != nil {
				return object.Errorf("add_tag: %v", err)
			}
			editComment(r, func(c *model.Comment) {
				c.BlockTags = append(c.BlockTags, model.Tag{Name: tagName(tag), Text: text})
			})
			return object.Nil
		}),
		"add_modifier": object.NewBuiltin("add_modifier", func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.NewArgsError("add_modifier", 1, len(args))
			}
			tag, err := toString(args[0])
			if err != nil {
				return object.Errorf("add_modifier: %v", err)
			}
			editComment(r, func(c *model.Comment) {
				if !c.HasModifier(tag) {
					c.ModifierTags = append(c.ModifierTags, tagName(tag))
				}
			})
			return object.Nil
		}),
		"set_flag": object.NewBuiltin("set_flag", func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.NewArgsError("set_flag", 1, len(args))
			}
			name, err := toString(args[0])
			if err != nil {
				return object.Errorf("set_flag: %v", err)
			}
			f, ok := model.FlagByName(name)
			if !ok {
				return object.Errorf("set_flag: unknown flag %q", name)
			}
			r.SetFlag(f)
			return object.Nil
		}),
		"has_flag": object.NewBuiltin("has_flag", func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.NewArgsError("has_flag", 1, len(args))
			}
			name, err := toString(args[0])
			if err != nil {
				return object.Errorf("has_flag: %v", err)
			}
			f, ok := model.FlagByName(name)
			return object.NewBool(ok && r.Flags().Has(f))
		}),
	}
}

func editComment(r model.Reflection, edit func(*model.Comment)) {
	c := r.Comment().Clone()
	if c == nil {
		c = &model.Comment{}
	}
	edit(c)
	r.SetComment(c)
}

func tagName(tag string) string {
	if tag != "" && tag[0] != '@' {
		return "@" + tag
	}
	return tag
}

// reflectionToMap describes r to a script.
func reflectionToMap(r model.Reflection) *object.Map {
	m := map[string]object.Object{
		"name":      object.NewString(r.Name()),
		"kind":      object.NewString(r.Kind().String()),
		"full_name": object.NewString(model.FullName(r)),
		"flags":     stringList(r.Flags().Names()),
		"summary":   object.NewString(""),
		"modifiers": stringList(nil),
		"tags":      object.NewList([]object.Object{}),
		"parent":    object.Nil,
	}
	if c := r.Comment(); c != nil {
		m["summary"] = object.NewString(c.Summary)
		m["modifiers"] = stringList(c.ModifierTags)
		tags := make([]object.Object, 0, len(c.BlockTags))
		for _, t := range c.BlockTags {
			tags = append(tags, object.NewMap(map[string]object.Object{
				"tag":   object.NewString(t.Name),
				"param": object.NewString(t.Param),
				"text":  object.NewString(t.Text),
			}))
		}
		m["tags"] = object.NewList(tags)
	}
	if p := r.Parent(); p != nil {
		m["parent"] = object.NewString(p.Name())
	}
	sources := r.Sources()
	srcs := make([]object.Object, 0, len(sources))
	for _, s := range sources {
		srcs = append(srcs, object.NewMap(map[string]object.Object{
			"file": object.NewString(s.FileName),
			"line": object.NewInt(int64(s.Line)),
		}))
	}
	m["sources"] = object.NewList(srcs)
	return object.NewMap(m)
}

func stringList(ss []string) *object.List {
	items := make([]object.Object, 0, len(ss))
	for _, s := range ss {
		items = append(items, object.NewString(s))
	}
	return object.NewList(items)
}

// newLogModule provides log.debug/info/warn/error for Risor scripts,
// forwarding to logger.
func newLogModule(logger *slog.Logger) *object.Module {
	level := func(name string, lvl slog.Level) *object.Builtin {
		return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
			if len(args) != 1 {
				return object.NewArgsError("log."+name, 1, len(args))
			}
			msg, ok := args[0].(*object.String)
			if !ok {
				logger.Log(ctx, lvl, args[0].Inspect())
				return object.Nil
			}
			logger.Log(ctx, lvl, msg.Value())
			return object.Nil
		})
	}
	return object.NewBuiltinsModule("log", map[string]object.Object{
		"debug": level("debug", slog.LevelDebug),
		"info":  level("info", slog.LevelInfo),
		"warn":  level("warn", slog.LevelWarn),
		"error": level("error", slog.LevelError),
	})
}
