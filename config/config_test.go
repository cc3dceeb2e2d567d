package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLayout(t *testing.T) {
	root := filepath.FromSlash("/repo")
	cfg, err := Build(root)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "cmd", "frontend", "graphqlbackend", "*.graphql"), cfg.Schema)

	want := map[TargetID]struct {
		output, iface string
	}{
		BrowserTarget: {filepath.Join(root, "client", "browser", "src", "graphql-operations.ts"), "BrowserGraphQlOperations"},
		WebTarget:     {filepath.Join(root, "client", "web", "src", "graphql-operations.ts"), "WebGraphQlOperations"},
		SharedTarget:  {filepath.Join(root, "client", "shared", "src", "graphql-operations.ts"), "SharedGraphQlOperations"},
	}
	require.Len(t, cfg.Targets, len(want))
	for id, w := range want {
		tgt, ok := cfg.Target(id)
		require.True(t, ok, "target %s", id)
		assert.Equal(t, w.output, tgt.Output)
		assert.Equal(t, w.iface, tgt.Config.InterfaceName)
		assert.True(t, tgt.Config.OnlyOperationTypes)
		assert.False(t, tgt.Config.NoExport)
	}
}

func TestAllDocumentsIsDedupedUnion(t *testing.T) {
	cfg, err := Build("/repo")
	require.NoError(t, err)
	l := cfg.Layout

	seen := make(map[string]int)
	for _, p := range cfg.AllDocuments {
		seen[p]++
	}
	for p, n := range seen {
		assert.Equal(t, 1, n, "pattern %q repeated", p)
	}

	var expected []string
	for _, set := range []GlobSet{l.SharedDocuments(), l.WebDocuments(), l.BrowserDocuments()} {
		expected = append(expected, set...)
	}
	assert.ElementsMatch(t, uniq(expected), []string(cfg.AllDocuments))
}

func TestUnion(t *testing.T) {
	tests := []struct {
		name string
		sets []GlobSet
		want GlobSet
	}{
		{"empty", nil, nil},
		{"disjoint", []GlobSet{{"a"}, {"b"}}, GlobSet{"a", "b"}},
		{"overlap keeps first", []GlobSet{{"a", "!**/*.d.ts"}, {"!**/*.d.ts", "b"}}, GlobSet{"a", "!**/*.d.ts", "b"}},
		{"repeat within one set", []GlobSet{{"a", "a"}}, GlobSet{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Union(tt.sets...))
		})
	}
}

func TestGlobSetSplit(t *testing.T) {
	set := GlobSet{"/r/src/**/*.ts", "!/r/src/testing/**", "!**/*.d.ts"}
	assert.Equal(t, []string{"/r/src/**/*.ts"}, set.Includes())
	assert.Equal(t, []string{"/r/src/testing/**", "**/*.d.ts"}, set.Excludes())
}

func TestPipelinesStartWithBase(t *testing.T) {
	cfg, err := Build("/repo")
	require.NoError(t, err)

	base := cfg.BasePipeline
	require.Equal(t, Pipeline{cfg.Layout.ExtractPlugin(), PluginTypeScript, PluginTypeScriptOperations}, base)

	for _, tgt := range cfg.Targets {
		assert.True(t, tgt.Plugins.HasPrefix(base), "target %s pipeline %v", tgt.ID, tgt.Plugins)
	}
	shared, _ := cfg.Target(SharedTarget)
	assert.Equal(t, base.With(PluginApolloClientHelpers), shared.Plugins)
	web, _ := cfg.Target(WebTarget)
	assert.Equal(t, base, web.Plugins)
}

func TestPipelineWithDoesNotAlias(t *testing.T) {
	base := make(Pipeline, 2, 8)
	base[0], base[1] = "a", "b"
	x := base.With("x")
	y := base.With("y")
	assert.Equal(t, Pipeline{"a", "b", "x"}, x)
	assert.Equal(t, Pipeline{"a", "b", "y"}, y)
}

func TestScalars(t *testing.T) {
	cfg, err := Build("/repo")
	require.NoError(t, err)
	assert.Len(t, cfg.Scalars, 7)
	assert.Equal(t, "string", cfg.Scalars["DateTime"])
	assert.Equal(t, "object", cfg.Scalars["JSON"])
	assert.Equal(t, "boolean | 'draft'", cfg.Scalars["PublishedValue"])
}

func TestEnumModule(t *testing.T) {
	cfg, err := Build("/repo")
	require.NoError(t, err)

	web, _ := cfg.Target(WebTarget)
	browser, _ := cfg.Target(BrowserTarget)
	shared, _ := cfg.Target(SharedTarget)
	assert.Equal(t, SharedModule, cfg.EnumModule(web))
	assert.Equal(t, SharedModule, cfg.EnumModule(browser))
	assert.Empty(t, cfg.EnumModule(shared))
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown reference", func(c *Config) { c.Targets[0].Config.EnumValuesFrom = "desktop" }},
		{"self reference", func(c *Config) { c.Targets[2].Config.EnumValuesFrom = SharedTarget }},
		{"reference without module", func(c *Config) { c.Targets[2].Module = "" }},
		{"pipeline missing base plugin", func(c *Config) { c.Targets[1].Plugins = Pipeline{PluginTypeScript, PluginTypeScriptOperations} }},
		{"pipeline out of order", func(c *Config) {
			c.Targets[1].Plugins = Pipeline{PluginTypeScript, c.Layout.ExtractPlugin(), PluginTypeScriptOperations}
		}},
		{"duplicate target", func(c *Config) { c.Targets[1].ID = BrowserTarget }},
		{"shared output", func(c *Config) { c.Targets[1].Output = c.Targets[0].Output }},
		{"relative output", func(c *Config) { c.Targets[0].Output = "src/graphql-operations.ts" }},
		{"missing interface name", func(c *Config) { c.Targets[0].Config.InterfaceName = "" }},
		{"empty scalar type", func(c *Config) { c.Scalars = ScalarMap{"DateTime": " "} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Build("/repo")
			require.NoError(t, err)
			require.Equal(t, SharedTarget, cfg.Targets[2].ID)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
		})
	}
}

func uniq(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
