package generator

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/mlwelles/graphqlOpsGen/config"
	"github.com/mlwelles/graphqlOpsGen/model"
)

// Plugin produces one section of an output file.
type Plugin interface {
	Name() string
	Render(rc *RenderContext) (*Output, error)
}

// Output is what one plugin contributes. Imports of all plugins are merged and
// hoisted to the top of the file; contents are concatenated in pipeline order.
type Output struct {
	Imports imports
	Content string
}

// RenderContext is everything a plugin may look at while rendering one target.
// It is owned by a single target, so plugins may record into it freely.
type RenderContext struct {
	Config *config.Config
	Target *config.Target
	Schema *ast.Schema
	Docs   *model.TargetDocuments

	// EnumModule is the module enums are imported from, empty to declare them.
	EnumModule string

	fragments map[string]*ast.FragmentDefinition
	unmapped  map[string]bool
}

func newRenderContext(cfg *config.Config, t *config.Target, schema *ast.Schema, docs *model.TargetDocuments) *RenderContext {
	return &RenderContext{
		Config:     cfg,
		Target:     t,
		Schema:     schema,
		Docs:       docs,
		EnumModule: cfg.EnumModule(t),
		fragments:  docs.FragmentIndex(),
		unmapped:   make(map[string]bool),
	}
}

// export returns the declaration prefix for exported symbols.
func (rc *RenderContext) export() string {
	if rc.Target.Config.NoExport {
		return ""
	}
	return "export "
}

// TypeName applies the type naming convention.
func (rc *RenderContext) TypeName(name string) string {
	return convertName(rc.Config.Naming.TypeNames, rc.Config.Naming.TransformUnderscore, name)
}

// EnumValueName applies the enum value naming convention.
func (rc *RenderContext) EnumValueName(name string) string {
	return convertName(rc.Config.Naming.EnumValues, rc.Config.Naming.TransformUnderscore, name)
}

// builtinScalars are the GraphQL scalars every schema has.
var builtinScalars = map[string]string{
	"ID":      "string",
	"String":  "string",
	"Boolean": "boolean",
	"Int":     "number",
	"Float":   "number",
}

// scalarType resolves a scalar to its TypeScript type. When record is set, a
// custom scalar without a mapping is remembered for reporting.
func (rc *RenderContext) scalarType(name string, record bool) string {
	if t, ok := rc.Config.Scalars[name]; ok {
		return t
	}
	if t, ok := builtinScalars[name]; ok {
		return t
	}
	if record {
		rc.unmapped[name] = true
	}
	return "any"
}

// Unmapped returns the custom scalars operations referenced without a mapping.
func (rc *RenderContext) Unmapped() []string {
	out := make([]string, 0, len(rc.unmapped))
	for k := range rc.unmapped {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// userTypes returns the non built-in schema definitions of kind, sorted by name.
func (rc *RenderContext) userTypes(kind ast.DefinitionKind) []*ast.Definition {
	var out []*ast.Definition
	for name, def := range rc.Schema.Types {
		if def.Kind != kind || def.BuiltIn || strings.HasPrefix(name, "__") {
			continue
		}
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Registry resolves pipeline entries to plugins.
type Registry struct {
	plugins map[string]Plugin
}

// NewRegistry returns a registry holding plugins.
func NewRegistry(plugins ...Plugin) *Registry {
	r := &Registry{plugins: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		r.Register(p)
	}
	return r
}

// DefaultRegistry holds the built-in plugins.
func DefaultRegistry() *Registry {
	return NewRegistry(
		extractPlugin{},
		typescriptPlugin{},
		operationsPlugin{},
		apolloHelpersPlugin{},
	)
}

// Register adds or replaces p.
func (r *Registry) Register(p Plugin) {
	r.plugins[p.Name()] = p
}

// Resolve finds the plugin for id. Built-in names match directly; a path
// resolves by its base name without extension, so
// "client/shared/dev/extractGraphQlOperationCodegenPlugin.js" finds the plugin
// registered as "extractGraphQlOperationCodegenPlugin".
func (r *Registry) Resolve(id config.PluginID) (Plugin, error) {
	if p, ok := r.plugins[string(id)]; ok {
		return p, nil
	}
	base := filepath.Base(string(id))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if p, ok := r.plugins[base]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("unknown plugin %q", id)
}

// Pipeline resolves every entry of p, failing on the first unknown one.
func (r *Registry) Pipeline(p config.Pipeline) ([]Plugin, error) {
	out := make([]Plugin, 0, len(p))
	for _, id := range p {
		plugin, err := r.Resolve(id)
		if err != nil {
			return nil, err
		}
		out = append(out, plugin)
	}
	return out, nil
}
