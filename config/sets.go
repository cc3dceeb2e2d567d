package config

import (
	"fmt"
	"sort"
	"strings"
)

// GlobSet is an ordered list of file glob patterns. Patterns starting with "!"
// exclude matches of the inclusion patterns.
type GlobSet []string

// Includes returns the inclusion patterns.
func (g GlobSet) Includes() []string {
	var out []string
	for _, p := range g {
		if !strings.HasPrefix(p, "!") {
			out = append(out, p)
		}
	}
	return out
}

// Excludes returns the exclusion patterns with the leading "!" removed.
func (g GlobSet) Excludes() []string {
	var out []string
	for _, p := range g {
		if rest, ok := strings.CutPrefix(p, "!"); ok {
			out = append(out, rest)
		}
	}
	return out
}

// Union concatenates the sets, dropping repeated patterns. First occurrence wins.
func Union(sets ...GlobSet) GlobSet {
	seen := make(map[string]bool)
	var out GlobSet
	for _, s := range sets {
		for _, p := range s {
			if seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// PluginID is either a built-in plugin name or the path of a custom plugin.
type PluginID string

// Pipeline is the ordered list of plugins producing one output file. Order is
// composition order.
type Pipeline []PluginID

// With returns a copy of p with extra appended. p is never aliased.
func (p Pipeline) With(extra ...PluginID) Pipeline {
	out := make(Pipeline, 0, len(p)+len(extra))
	out = append(out, p...)
	return append(out, extra...)
}

// HasPrefix reports whether p begins with base.
func (p Pipeline) HasPrefix(base Pipeline) bool {
	if len(p) < len(base) {
		return false
	}
	for i := range base {
		if p[i] != base[i] {
			return false
		}
	}
	return true
}

// ScalarMap maps a GraphQL scalar name to a TypeScript type expression.
type ScalarMap map[string]string

// Names returns the mapped scalar names in sorted order.
func (m ScalarMap) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new map holding m overlaid with extra.
func (m ScalarMap) Merge(extra ScalarMap) ScalarMap {
	out := make(ScalarMap, len(m)+len(extra))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// Validate rejects empty scalar names and empty type expressions.
func (m ScalarMap) Validate() error {
	for _, k := range m.Names() {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("scalar mapping with empty name")
		}
		if strings.TrimSpace(m[k]) == "" {
			return fmt.Errorf("scalar %q maps to an empty type", k)
		}
	}
	return nil
}
