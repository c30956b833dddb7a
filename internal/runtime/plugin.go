package runtime

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor/object"

	"github.com/jward/docmodel"
	"github.com/jward/docmodel/internal/model"
)

// Event names a plugin sees in its `event` global.
const (
	EventBegin      = "begin"
	EventModule     = "module"
	EventReflection = "reflection"
	EventEnd        = "end"
)

// Plugin is a Risor script run once per conversion event. The script
// branches on the `event` global; for module and reflection events the
// `reflection` global describes the subject and the editing host functions
// (set_summary, add_tag, add_modifier, set_flag, has_flag) apply to it. For
// begin and end events they apply to the project.
//
// Every global is defined on every event and is nil where it does not
// apply: project (begin, end), roots (begin), file (module) and modules
// (end).
type Plugin struct {
	Name   string
	Source string
}

// LoadPlugin reads the script at path.
func (r *Runtime) LoadPlugin(path string) (Plugin, error) {
	src, err := r.LoadScript(path)
	if err != nil {
		return Plugin{}, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Plugin{Name: name, Source: src}, nil
}

// Attach registers p on every hook of conv and returns a function that
// removes it again.
func (r *Runtime) Attach(conv *docmodel.Converter, p Plugin) (remove func()) {
	removers := []func(){
		conv.OnBegin(func(ctx context.Context, e docmodel.BeginEvent) error {
			return r.runPlugin(ctx, p, EventBegin, e.Project, map[string]any{
				"project": reflectionToMap(e.Project),
				"roots":   stringList(e.Program.RootFileNames()),
			})
		}),
		conv.OnModuleCreated(func(ctx context.Context, e docmodel.ModuleCreatedEvent) error {
			var extra map[string]any
			if e.File != nil {
				extra = map[string]any{"file": object.NewString(e.File.FileName)}
			}
			return r.runPlugin(ctx, p, EventModule, e.Module, extra)
		}),
		conv.OnReflectionCreated(func(ctx context.Context, e docmodel.ReflectionCreatedEvent) error {
			return r.runPlugin(ctx, p, EventReflection, e.Reflection, nil)
		}),
		conv.OnEnd(func(ctx context.Context, e docmodel.EndEvent) error {
			modules := e.Project.Modules()
			names := make([]string, 0, len(modules))
			for _, m := range modules {
				names = append(names, m.Name())
			}
			return r.runPlugin(ctx, p, EventEnd, e.Project, map[string]any{
				"project": reflectionToMap(e.Project),
				"modules": stringList(names),
			})
		}),
	}
	return func() {
		for _, rm := range removers {
			rm()
		}
	}
}

// eventGlobals are the per-event globals a plugin may name.
var eventGlobals = []string{"project", "roots", "file", "modules"}

func (r *Runtime) runPlugin(ctx context.Context, p Plugin, event string, subject model.Reflection, extra map[string]any) error {
	globals := reflectionFuncs(subject)
	globals["event"] = object.NewString(event)
	globals["reflection"] = reflectionToMap(subject)
	for _, name := range eventGlobals {
		globals[name] = object.Nil
	}
	for k, v := range extra {
		globals[k] = v
	}
	if err := r.eval(ctx, p.Source, p.Name, globals); err != nil {
		return fmt.Errorf("plugin %s on %s: %w", p.Name, event, err)
	}
	return nil
}
