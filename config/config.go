// Package config assembles the declarative description of an operation type
// generation run: which source files to scan, against which schema, producing
// which typed output files, using which plugins and scalar mappings.
//
// Assembly is pure. Build takes the repository root explicitly and never touches
// the filesystem, so the whole description can be inspected and tested without a
// checkout.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// TargetID identifies one output target.
type TargetID string

const (
	SharedTarget  TargetID = "shared"
	WebTarget     TargetID = "web"
	BrowserTarget TargetID = "browser"
)

// Built-in plugin identifiers. The extraction plugin is addressed by file path,
// see Layout.ExtractPlugin.
const (
	PluginTypeScript           PluginID = "typescript"
	PluginTypeScriptOperations PluginID = "typescript-operations"
	PluginApolloClientHelpers  PluginID = "typescript-apollo-client-helpers"
)

// SharedModule is the import specifier under which the shared target's output is
// visible to the web and browser trees.
const SharedModule = "@sourcegraph/shared/src/graphql-operations"

// ErrInvalid is returned (wrapped) by Validate for every structural problem.
var ErrInvalid = errors.New("invalid generator config")

// Layout holds the fixed locations derived from the repository root.
type Layout struct {
	Root    string
	Shared  string
	Web     string
	Browser string
	Schema  string // glob, all matches merge into one schema document
}

// NewLayout resolves the fixed subtree roots relative to root.
func NewLayout(root string) Layout {
	root = filepath.Clean(root)
	return Layout{
		Root:    root,
		Shared:  filepath.Join(root, "client", "shared"),
		Web:     filepath.Join(root, "client", "web"),
		Browser: filepath.Join(root, "client", "browser"),
		Schema:  filepath.Join(root, "cmd", "frontend", "graphqlbackend", "*.graphql"),
	}
}

// ExtractPlugin is the path of the custom plugin that emits the aggregate
// operations interface.
func (l Layout) ExtractPlugin() PluginID {
	return PluginID(filepath.Join(l.Shared, "dev", "extractGraphQlOperationCodegenPlugin.js"))
}

// OutputPath is where the generated declarations for a subtree are written.
func OutputPath(subtree string) string {
	return filepath.Join(subtree, "src", "graphql-operations.ts")
}

// NamingConvention controls how schema names become TypeScript identifiers.
type NamingConvention struct {
	TypeNames           string `yaml:"typeNames"`
	EnumValues          string `yaml:"enumValues"`
	TransformUnderscore bool   `yaml:"transformUnderscore"`
}

// NamingConventions are the supported case conversions. Each may also be
// written with the "change-case-all#" prefix.
var NamingConventions = []string{"keep", "pascalCase", "upperCase", "lowerCase"}

// KnownNamingConvention reports whether conv is supported. Empty means keep.
func KnownNamingConvention(conv string) bool {
	conv = strings.TrimPrefix(conv, "change-case-all#")
	return conv == "" || slices.Contains(NamingConventions, conv)
}

// AvoidOptionals selects which positions are emitted as required members even
// when the schema allows null.
type AvoidOptionals struct {
	Field      bool `yaml:"field"`
	InputValue bool `yaml:"inputValue"`
	Object     bool `yaml:"object"`
}

// Hooks are shell commands run after generation.
type Hooks struct {
	// AfterOneFileWrite runs once per written file with the path appended.
	AfterOneFileWrite []string `yaml:"afterOneFileWrite"`
}

// TargetConfig holds the per-target overrides.
type TargetConfig struct {
	OnlyOperationTypes bool
	NoExport           bool
	// EnumValuesFrom names the target whose module enums are imported from
	// instead of being declared again. Empty means declare locally.
	EnumValuesFrom TargetID
	// InterfaceName is the name of the aggregate operations interface.
	InterfaceName string
}

// Target is one (output file, document set, plugin pipeline, overrides) tuple.
type Target struct {
	ID        TargetID
	Output    string
	Module    string // import specifier of Output, empty when not importable
	Documents GlobSet
	Plugins   Pipeline
	Config    TargetConfig
}

// Config is the complete, immutable description of one generation run.
type Config struct {
	Layout Layout

	Schema       string
	Scalars      ScalarMap
	BasePipeline Pipeline
	Targets      []Target
	AllDocuments GlobSet

	PreResolveTypes       bool
	OperationResultSuffix string
	OmitOperationSuffix   bool
	Naming                NamingConvention
	DeclarationKind       string
	AvoidOptionals        AvoidOptionals

	ErrorsOnly    bool
	StrictScalars bool
	Hooks         Hooks
}

// DefaultScalars is the fixed scalar mapping table.
func DefaultScalars() ScalarMap {
	return ScalarMap{
		"DateTime":       "string",
		"JSON":           "object",
		"JSONValue":      "unknown",
		"GitObjectID":    "string",
		"JSONCString":    "string",
		"PublishedValue": "boolean | 'draft'",
		"BigInt":         "string",
	}
}

// SharedDocuments returns the document globs of the shared tree.
func (l Layout) SharedDocuments() GlobSet {
	return GlobSet{
		l.Shared + "/src/**/*.{ts,tsx}",
		"!" + l.Shared + "/src/testing/**/*.*",
		"!" + l.Shared + "/src/graphql/schema.ts",
	}
}

// WebDocuments returns the document globs of the web tree.
func (l Layout) WebDocuments() GlobSet {
	return GlobSet{
		l.Web + "/src/**/*.{ts,tsx}",
		"!" + l.Web + "/src/regression/**/*.*",
		"!" + l.Web + "/src/end-to-end/**/*.*",
	}
}

// BrowserDocuments returns the document globs of the browser extension tree.
func (l Layout) BrowserDocuments() GlobSet {
	return GlobSet{
		l.Browser + "/src/**/*.{ts,tsx}",
		"!" + l.Browser + "/src/end-to-end/**/*.*",
		"!**/*.d.ts",
	}
}

// Build assembles and validates the configuration for the repository at root.
func Build(root string) (*Config, error) {
	l := NewLayout(root)
	base := Pipeline{l.ExtractPlugin(), PluginTypeScript, PluginTypeScriptOperations}

	shared, web, browser := l.SharedDocuments(), l.WebDocuments(), l.BrowserDocuments()

	cfg := &Config{
		Layout:       l,
		Schema:       l.Schema,
		Scalars:      DefaultScalars(),
		BasePipeline: base,
		AllDocuments: Union(shared, web, browser),

		PreResolveTypes:       true,
		OperationResultSuffix: "Result",
		OmitOperationSuffix:   true,
		Naming: NamingConvention{
			TypeNames:           "keep",
			EnumValues:          "keep",
			TransformUnderscore: true,
		},
		DeclarationKind: "interface",
		AvoidOptionals: AvoidOptionals{
			Field:      true,
			InputValue: false,
			Object:     true,
		},

		ErrorsOnly: true,
		Hooks: Hooks{
			AfterOneFileWrite: []string{"prettier", "--write"},
		},

		Targets: []Target{
			{
				ID:        BrowserTarget,
				Output:    OutputPath(l.Browser),
				Documents: browser,
				Plugins:   base.With(),
				Config: TargetConfig{
					OnlyOperationTypes: true,
					EnumValuesFrom:     SharedTarget,
					InterfaceName:      "BrowserGraphQlOperations",
				},
			},
			{
				ID:        WebTarget,
				Output:    OutputPath(l.Web),
				Documents: web,
				Plugins:   base.With(),
				Config: TargetConfig{
					OnlyOperationTypes: true,
					EnumValuesFrom:     SharedTarget,
					InterfaceName:      "WebGraphQlOperations",
				},
			},
			{
				ID:        SharedTarget,
				Output:    OutputPath(l.Shared),
				Module:    SharedModule,
				Documents: shared,
				Plugins:   base.With(PluginApolloClientHelpers),
				Config: TargetConfig{
					OnlyOperationTypes: true,
					InterfaceName:      "SharedGraphQlOperations",
				},
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Target returns the target with the given id.
func (c *Config) Target(id TargetID) (*Target, bool) {
	for i := range c.Targets {
		if c.Targets[i].ID == id {
			return &c.Targets[i], true
		}
	}
	return nil, false
}

// EnumModule resolves the module enums of t are imported from, or "" when t
// declares its own enums.
func (c *Config) EnumModule(t *Target) string {
	if t.Config.EnumValuesFrom == "" {
		return ""
	}
	ref, ok := c.Target(t.Config.EnumValuesFrom)
	if !ok {
		return ""
	}
	return ref.Module
}

// Validate checks the structural invariants of the configuration: unique target
// ids and outputs, resolvable cross-target references, and that every pipeline
// begins with the base pipeline.
func (c *Config) Validate() error {
	var errs []error
	if c.Schema == "" {
		errs = append(errs, fmt.Errorf("%w: schema locator is empty", ErrInvalid))
	}
	if len(c.BasePipeline) == 0 {
		errs = append(errs, fmt.Errorf("%w: base pipeline is empty", ErrInvalid))
	}
	if err := c.Scalars.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}

	switch c.DeclarationKind {
	case "interface", "type":
	default:
		errs = append(errs, fmt.Errorf("%w: declaration kind %q is neither interface nor type", ErrInvalid, c.DeclarationKind))
	}
	for _, conv := range []string{c.Naming.TypeNames, c.Naming.EnumValues} {
		if !KnownNamingConvention(conv) {
			errs = append(errs, fmt.Errorf("%w: unknown naming convention %q", ErrInvalid, conv))
		}
	}

	ids := make(map[TargetID]bool, len(c.Targets))
	outputs := make(map[string]TargetID, len(c.Targets))
	for _, t := range c.Targets {
		if t.ID == "" {
			errs = append(errs, fmt.Errorf("%w: target with empty id", ErrInvalid))
			continue
		}
		if ids[t.ID] {
			errs = append(errs, fmt.Errorf("%w: duplicate target %q", ErrInvalid, t.ID))
		}
		ids[t.ID] = true
		if other, ok := outputs[t.Output]; ok {
			errs = append(errs, fmt.Errorf("%w: targets %q and %q write the same file %s", ErrInvalid, other, t.ID, t.Output))
		}
		outputs[t.Output] = t.ID
		if !filepath.IsAbs(t.Output) {
			errs = append(errs, fmt.Errorf("%w: target %q output %q is not absolute", ErrInvalid, t.ID, t.Output))
		}
		if !t.Plugins.HasPrefix(c.BasePipeline) {
			errs = append(errs, fmt.Errorf("%w: target %q pipeline %v does not start with %v", ErrInvalid, t.ID, t.Plugins, c.BasePipeline))
		}
		if t.Config.InterfaceName == "" {
			errs = append(errs, fmt.Errorf("%w: target %q has no operations interface name", ErrInvalid, t.ID))
		}
	}

	for _, t := range c.Targets {
		ref := t.Config.EnumValuesFrom
		if ref == "" {
			continue
		}
		switch {
		case ref == t.ID:
			errs = append(errs, fmt.Errorf("%w: target %q takes enum values from itself", ErrInvalid, t.ID))
		case !ids[ref]:
			errs = append(errs, fmt.Errorf("%w: target %q references unknown target %q", ErrInvalid, t.ID, ref))
		default:
			if r, _ := c.Target(ref); r.Module == "" {
				errs = append(errs, fmt.Errorf("%w: target %q references %q which has no module specifier", ErrInvalid, t.ID, ref))
			}
		}
	}
	return errors.Join(errs...)
}
